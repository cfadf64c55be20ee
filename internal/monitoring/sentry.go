package monitoring

import (
	"fmt"
	"github.com/getsentry/sentry-go"
	"time"
)

const flushTimeout = 2 * time.Second

// InitSentry enables error reporting, nothing is reported until it is called
func InitSentry(dsn, environment string) error {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     "leads@" + Version,
	})
	if err != nil {
		return fmt.Errorf("sentry initialization failed - %w", err)
	}
	return nil
}

func FlushSentry() {
	sentry.Flush(flushTimeout)
}

func CaptureError(err error, extra map[string]any) {
	hub := sentry.CurrentHub()
	if hub == nil || hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		hub.CaptureException(err)
	})
}
