package reconciler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

// retry runs fn until it succeeds, fails with an error gds does not consider
// recoverable, or MaxAttempts is reached.
func retry[T any](ctx context.Context, s *Service, op string, fn func(context.Context) (T, error)) (T, error) {
	attempt := 0
	return backoff.RetryNotifyWithData[T](func() (T, error) {
		attempt++
		v, err := fn(ctx)
		if err != nil && !gds.IsRecoverable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, s.newBackOff(ctx), func(err error, next time.Duration) {
		s.log.WarnObj("gds call failed; retrying", "reconcile_retry", map[string]any{
			"op":       op,
			"attempt":  attempt,
			"max":      s.opts.MaxAttempts,
			"retry_in": next.String(),
			"error":    err.Error(),
		})
	})
}

func (s *Service) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.opts.InitialBackoff
	exp.MaxInterval = s.opts.MaxBackoff
	exp.MaxElapsedTime = 0
	exp.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(s.opts.MaxAttempts-1)), ctx)
}
