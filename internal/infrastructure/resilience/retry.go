package resilience

import (
	"coin-market-service/internal/infrastructure/logging"
	"coin-market-service/internal/infrastructure/metrics"
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryPolicy decide si el intento fallido número attempt (desde 1) debe reintentarse
type RetryPolicy func(attempt int, err error) bool

// RetryAll reintenta cualquier fallo salvo la cancelación del llamador
func RetryAll(_ int, err error) bool {
	return !errors.Is(err, context.Canceled)
}

// Retrier ejecuta una operación hasta MaxRetries+1 veces con un delay fijo entre intentos
type Retrier struct {
	name       string
	maxRetries int
	delay      time.Duration
	policy     RetryPolicy
	timer      retry.Timer
}

// RetrierOption configura un Retrier
type RetrierOption func(*Retrier)

// WithPolicy reemplaza la política por defecto (RetryAll)
func WithPolicy(policy RetryPolicy) RetrierOption {
	return func(r *Retrier) {
		if policy != nil {
			r.policy = policy
		}
	}
}

// WithTimer permite sustituir el reloj de los delays (tests)
func WithTimer(timer retry.Timer) RetrierOption {
	return func(r *Retrier) {
		r.timer = timer
	}
}

// NewRetrier crea un Retrier; name se usa en logs y métricas
func NewRetrier(name string, maxRetries int, delay time.Duration, opts ...RetrierOption) *Retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	r := &Retrier{
		name:       name,
		maxRetries: maxRetries,
		delay:      delay,
		policy:     RetryAll,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxAttempts total de invocaciones posibles
func (r *Retrier) MaxAttempts() int {
	return r.maxRetries + 1
}

// Do invoca fn hasta agotar los intentos. Al agotarlos devuelve el error del último intento sin envolver.
func Do[T any](ctx context.Context, r *Retrier, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	attempt := 0

	opts := []retry.Option{
		retry.Attempts(uint(r.MaxAttempts())),
		retry.Delay(r.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.RetryIf(func(err error) bool {
			return r.policy(attempt, err)
		}),
		retry.OnRetry(func(n uint, err error) {
			if int(n)+1 >= r.MaxAttempts() {
				return
			}
			metrics.RecordExternalAPIRetry(r.name, int(n)+1)
			logging.WarnWithError(ctx, "Provider attempt failed, retrying", err, logging.Fields{
				"service":      r.name,
				"attempt":      n + 1,
				"max_attempts": r.MaxAttempts(),
				"retry_delay":  r.delay.String(),
			})
		}),
	}
	if r.timer != nil {
		opts = append(opts, retry.WithTimer(r.timer))
	}

	return retry.DoWithData(func() (T, error) {
		attempt++
		return fn(ctx, attempt)
	}, opts...)
}
