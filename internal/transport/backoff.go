package transport

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// BackoffConfig defines connect retry behavior.
type BackoffConfig struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		Attempts:     1,
		InitialDelay: 250 * time.Millisecond,
		Multiplier:   2.0,
		MaxDelay:     5 * time.Second,
	}
}

// NextBackoffDelay returns the retry delay for attempt N (1-based).
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 1 {
		return cfg.InitialDelay
	}
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		f := 0.5
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay = delay * f
	}
	return time.Duration(delay)
}

// RetryOpener retries open up to cfg.Attempts times. Only the open
// itself is retried; exchanges are never replayed.
func RetryOpener(open Opener, cfg BackoffConfig) Opener {
	if cfg.Attempts <= 1 {
		return open
	}
	return func(ctx context.Context) (Transport, error) {
		var lastErr error
		for attempt := 1; attempt <= cfg.Attempts; attempt++ {
			t, err := open(ctx)
			if err == nil {
				return t, nil
			}
			lastErr = err
			if attempt == cfg.Attempts {
				break
			}
			log.Warn().Err(err).Int("attempt", attempt).Int("attempts", cfg.Attempts).Msg("greetd connect failed, retrying")
			if err := waitBackoff(ctx, cfg, attempt); err != nil {
				return nil, err
			}
		}
		return nil, lastErr
	}
}

func waitBackoff(ctx context.Context, cfg BackoffConfig, attempt int) error {
	timer := time.NewTimer(NextBackoffDelay(cfg, attempt, nil))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
