package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/G-Research/qfactor/internal/circuit"
	"github.com/G-Research/qfactor/internal/common/logging"
	"github.com/G-Research/qfactor/internal/common/util"
)

// Backend executes a circuit and returns its measurement histogram. Any error is treated as transient.
type Backend interface {
	Run(ctx context.Context, descriptor *circuit.Descriptor, shots int) (circuit.Counts, error)
}

// Gateway submits batches of circuits to a Backend through a bounded worker pool, retrying failed
// submissions according to a RetryPolicy.
type Gateway struct {
	backend Backend
	// Decides how many times and how long to wait between submissions of a failing circuit
	retryPolicy RetryPolicy
	// Maximum number of submissions in flight at once
	maxParallelJobs int
	// Used for backoff waits. Injected here so that we can mock out for testing
	clock clock.Clock
}

func New(backend Backend, retryPolicy RetryPolicy, maxParallelJobs int) *Gateway {
	if retryPolicy.MaxAttempts < 1 {
		retryPolicy.MaxAttempts = 1
	}
	if maxParallelJobs < 1 {
		maxParallelJobs = 1
	}
	return &Gateway{
		backend:         backend,
		retryPolicy:     retryPolicy,
		maxParallelJobs: maxParallelJobs,
		clock:           clock.RealClock{},
	}
}

// ExecuteBatch runs every descriptor and returns one histogram per descriptor, in input order. It only
// returns once the whole batch has finished. A circuit whose submissions all failed gets an empty
// histogram; errors are logged and never returned.
func (g *Gateway) ExecuteBatch(ctx context.Context, descriptors []*circuit.Descriptor, shots int) []circuit.Counts {
	results := make([]circuit.Counts, len(descriptors))
	util.ProcessItemsWithThreadPool(ctx, g.maxParallelJobs, descriptors, func(i int, descriptor *circuit.Descriptor) {
		results[i] = g.execute(ctx, descriptor, shots)
	})
	for i := range results {
		if results[i] == nil {
			results[i] = circuit.Counts{}
		}
	}
	return results
}

func (g *Gateway) execute(ctx context.Context, descriptor *circuit.Descriptor, shots int) circuit.Counts {
	logger := log.WithFields(log.Fields{
		"submission": uuid.NewString(),
		"circuit":    descriptor.Name,
	})

	var result error
	for attempt := 0; attempt < g.retryPolicy.MaxAttempts; attempt++ {
		outcome := g.submit(ctx, descriptor, shots, attempt)
		if outcome.Succeeded() {
			attemptsCounter.WithLabelValues("success").Inc()
			if attempt > 0 {
				logger.Infof("Circuit succeeded on attempt %d", attempt+1)
			}
			if outcome.Counts == nil {
				return circuit.Counts{}
			}
			return outcome.Counts
		}

		attemptsCounter.WithLabelValues("failure").Inc()
		result = multierror.Append(result, errors.WithMessagef(outcome.Err, "attempt %d", attempt+1))
		delay := g.retryPolicy.Backoff(attempt, outcome.Err)
		logger.WithError(outcome.Err).Warnf("Attempt %d of %d failed, backing off for %s", attempt+1, g.retryPolicy.MaxAttempts, delay)
		if !g.wait(ctx, delay) {
			logger.Warn("Context done during backoff, abandoning circuit")
			break
		}

		if !g.retryPolicy.ShouldRetry(attempt, outcome.Err) {
			break
		}
	}

	exhaustedCounter.Inc()
	logging.WithStacktrace(logger, result).Error("Giving up on circuit, returning empty histogram")
	return circuit.Counts{}
}

// wait blocks for delay on the gateway clock. It returns false if ctx finished first.
func (g *Gateway) wait(ctx context.Context, delay time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-g.clock.After(delay):
		return true
	}
}

func (g *Gateway) submit(ctx context.Context, descriptor *circuit.Descriptor, shots int, attempt int) (outcome Attempt) {
	outcome.Number = attempt
	start := g.clock.Now()
	defer func() {
		submissionLatency.Observe(g.clock.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = errors.New(fmt.Sprintf("backend panicked: %v", r))
		}
	}()

	outcome.Counts, outcome.Err = g.backend.Run(ctx, descriptor, shots)
	return outcome
}
