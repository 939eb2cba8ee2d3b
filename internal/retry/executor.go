package retry

import (
	"context"
	"time"

	"github.com/artugro/load-flow/pkg/loadflow"
)

// Classifier decides whether an error is worth another attempt.
type Classifier interface {
	IsTransient(err error) bool
}

// Backoff calculates the delay before each retry.
type Backoff interface {
	// NextDelay returns the wait before retry number attempt (zero-indexed).
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the number of retries after the first attempt
	// (0 = none, negative = unlimited).
	MaxAttempts() int
}

// Executor runs an operation until it succeeds, fails fatally, or exhausts
// its retries. Safe for concurrent use; WithLogger returns a copy.
type Executor struct {
	classifier Classifier
	backoff    Backoff
	logger     loadflow.Logger
}

// NewExecutor creates an executor. Panics if classifier or backoff is nil.
func NewExecutor(classifier Classifier, backoff Backoff) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if backoff == nil {
		panic("backoff cannot be nil")
	}
	return &Executor{classifier: classifier, backoff: backoff}
}

// WithLogger returns a copy of the executor that reports each retry.
func (e *Executor) WithLogger(logger loadflow.Logger) *Executor {
	clone := *e
	clone.logger = logger
	return &clone
}

// Execute runs operation, retrying transient failures.
// Returns nil, the first fatal error, the last transient error, or the
// context's error when cancelled while waiting.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.backoff.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}

		delay := e.backoff.NextDelay(attempt)
		if e.logger != nil {
			e.logger.Info("Transient error (%v); retry %d in %v", err, attempt+1, delay.Round(time.Millisecond))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
