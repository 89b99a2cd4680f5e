// Package resilience agrupa los mecanismos de timeout y reintento usados contra proveedores externos.
package resilience

import (
	"coin-market-service/internal/domain/fault"
	"context"
	"errors"
	"fmt"
	"time"
)

// Run ejecuta fn con un deadline propio. Si fn no termina a tiempo se cancela su
// contexto y se devuelve *fault.TimeoutError; un resultado tardío se descarta.
// La cancelación del contexto padre se propaga tal cual.
func Run[T any](ctx context.Context, op string, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if timeout <= 0 {
		return fn(ctx)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%s: panic recovered: %v", op, r)}
			}
		}()
		v, err := fn(runCtx)
		done <- result{value: v, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return zero, &fault.TimeoutError{Op: op, After: timeout}
		}
		return res.value, res.err
	case <-runCtx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, &fault.TimeoutError{Op: op, After: timeout}
	}
}
