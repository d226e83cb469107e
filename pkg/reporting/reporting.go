// Package reporting forwards operator-level errors to Sentry when a DSN is
// configured. With an empty DSN every call is a no-op, so callers never need
// to branch on whether reporting is enabled.
package reporting

import (
	"time"

	"github.com/getsentry/sentry-go"
)

type Reporter struct {
	enabled bool
}

func New(dsn, environment string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
	}); err != nil {
		return nil, err
	}

	return &Reporter{enabled: true}, nil
}

func (r *Reporter) CaptureError(err error) {
	if !r.enabled || err == nil {
		return
	}
	sentry.CaptureException(err)
}

func (r *Reporter) Close() {
	if !r.enabled {
		return
	}
	sentry.Flush(2 * time.Second)
}
