package providers

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const maxRetryDelay = 30 * time.Second

// GuardConfig tunes the protection around one provider
type GuardConfig struct {
	Name             string
	MaxRetries       int
	RetryDelay       time.Duration
	RateLimit        float64 // requests per second, <= 0 disables limiting
	BreakerThreshold int     // consecutive failures before the breaker opens
	BreakerTimeout   time.Duration
}

// Guard wraps provider calls with rate limiting, a circuit breaker and
// retries with backoff. Safe for concurrent use.
type Guard struct {
	name       string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
	logger     *logrus.Logger
}

// NewGuard creates a guard for one provider
func NewGuard(cfg GuardConfig, logger *logrus.Logger) *Guard {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	threshold := cfg.BreakerThreshold
	if threshold < 1 {
		threshold = 1
	}
	timeout := cfg.BreakerTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		// A malformed body still means the provider answered
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			kind, ok := KindOf(err)
			return ok && kind == KindMalformedResponse
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"provider":  name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Guard{
		name:       cfg.Name,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    breaker,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// Name returns the provider name the guard protects
func (g *Guard) Name() string {
	return g.name
}

// State returns the breaker state: "closed", "half-open" or "open"
func (g *Guard) State() string {
	return g.breaker.State().String()
}

// Do runs fn, retrying retryable provider errors up to MaxRetries times with
// exponential backoff. Errors fn returns that are not *Error are treated as
// unreachable.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	delay := g.retryDelay

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.WithFields(logrus.Fields{
				"provider": g.name,
				"attempt":  attempt + 1,
				"delay":    delay.String(),
				"error":    lastErr,
			}).Warn("Retrying provider call")

			select {
			case <-ctx.Done():
				return Unreachable(g.name, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}

		if err := g.limiter.Wait(ctx); err != nil {
			return Unreachable(g.name, err)
		}

		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		if err == nil {
			return nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Unreachable(g.name, err)
		}

		var pe *Error
		if !errors.As(err, &pe) {
			pe = Unreachable(g.name, err)
		}
		lastErr = pe
		if !pe.Retryable() {
			return pe
		}
	}

	return lastErr
}
