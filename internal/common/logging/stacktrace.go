package logging

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const Stacktrace = "stacktrace"

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Satisfied by *multierror.Error.
type errorList interface {
	WrappedErrors() []error
}

// WithStacktrace adds err and, if one can be found, its stack trace to the entry.
func WithStacktrace(logger *log.Entry, err error) *log.Entry {
	logger = logger.WithError(err)
	if stack := ExtractStack(err); stack != nil {
		logger = logger.WithField(Stacktrace, stack)
	}
	return logger
}

// ExtractStack returns the first errors.StackTrace found by walking the causes of err depth first. Each error of
// an accumulated error list is searched in order. It returns nil if there is no stack trace.
func ExtractStack(err error) errors.StackTrace {
	if err == nil {
		return nil
	}
	if stackErr, ok := err.(stackTracer); ok {
		return stackErr.StackTrace()
	}
	if list, ok := err.(errorList); ok {
		for _, wrapped := range list.WrappedErrors() {
			if stack := ExtractStack(wrapped); stack != nil {
				return stack
			}
		}
		return nil
	}
	return ExtractStack(errors.Unwrap(err))
}
