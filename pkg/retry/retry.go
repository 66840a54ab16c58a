package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Config struct {
	// MaxAttempts counts every try, including the first.
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Retrier struct {
	config Config
	sleep  SleepFunc
}

// AttemptError is returned once every attempt has failed.
type AttemptError struct {
	Attempts int
	Err      error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("gave up after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Permanent marks an error that must not be retried.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		Multiplier:   2.0,
	}
}

func New(config Config, sleep SleepFunc) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay == 0 {
		config.InitialDelay = time.Second
	}
	if config.Multiplier == 0 {
		config.Multiplier = 2.0
	}
	if sleep == nil {
		sleep = Sleep
	}

	return &Retrier{
		config: config,
		sleep:  sleep,
	}
}

func (r *Retrier) Config() Config {
	return r.config
}

// Do calls op until it succeeds, returns a Permanent error, or MaxAttempts
// is reached. The n-th failure is followed by a delay of
// InitialDelay * Multiplier^(n-1); no delay follows the last attempt.
func (r *Retrier) Do(ctx context.Context, op func(attempt int) error) error {
	schedule := r.schedule()

	var err error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err = op(attempt)
		if err == nil {
			return nil
		}

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		delay := schedule.NextBackOff()
		if sleepErr := r.sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}

	return &AttemptError{Attempts: r.config.MaxAttempts, Err: err}
}

// schedule is a fresh, jitter-free exponential sequence; one per Do call.
func (r *Retrier) schedule() backoff.BackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     r.config.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          r.config.Multiplier,
		MaxInterval:         time.Duration(math.MaxInt64),
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
