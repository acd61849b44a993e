package retry

import (
	"context"
	"math/rand"
	"time"
)

type Operation = func(ctx context.Context) error

type Config struct {
	MaxRetries    int
	BackoffFactor float64
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	Jitter        time.Duration
	// Retryable reports whether err is worth another attempt. Nil means every error is.
	Retryable func(err error) bool
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxRetries:    5,
		BackoffFactor: 2,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      30 * time.Second,
		Jitter:        100 * time.Millisecond,
	}
}

type Retrier struct {
	config *Config
	rnd    *rand.Rand
}

func NewRetrier(config *Config) *Retrier {
	return &Retrier{
		config: config,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func NewDefaultRetrier() *Retrier {
	return NewRetrier(NewDefaultConfig())
}

// Do runs op until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done.
func (r *Retrier) Do(ctx context.Context, op Operation) error {
	var err error
	delay := r.config.InitialDelay

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		err = op(ctx)
		if err == nil {
			return nil
		}
		if r.config.Retryable != nil && !r.config.Retryable(err) {
			return err
		}
		if attempt == r.config.MaxRetries {
			return err
		}

		wait := delay
		if wait > r.config.MaxDelay {
			wait = r.config.MaxDelay
		}
		if r.config.Jitter > 0 {
			wait += time.Duration(r.rnd.Int63n(int64(r.config.Jitter)))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * r.config.BackoffFactor)
	}
	return err
}
