package orchestrator

// State is a step of a factoring round.
type State int

const (
	Sampling State = iota
	ClassicalCheck
	QuantumDispatch
	PeriodExtraction
	FactorTest
	Success
	Retry
)

func (s State) String() string {
	switch s {
	case Sampling:
		return "SAMPLING"
	case ClassicalCheck:
		return "CLASSICAL_CHECK"
	case QuantumDispatch:
		return "QUANTUM_DISPATCH"
	case PeriodExtraction:
		return "PERIOD_EXTRACTION"
	case FactorTest:
		return "FACTOR_TEST"
	case Success:
		return "SUCCESS"
	case Retry:
		return "RETRY"
	default:
		return "UNKNOWN"
	}
}

// Method records how a factor pair was found.
type Method string

const (
	MethodClassical Method = "classical"
	MethodQuantum   Method = "quantum"
)
