package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

const sentryFlushTimeout = 2 * time.Second

// InitSentry is a no-op when no DSN is configured; the auth service runs
// fine without error reporting, it just loses visibility into panics and
// unexpected login faults.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	}); err != nil {
		return err
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "secure-login")
	})
	return nil
}

func FlushSentry() {
	sentry.Flush(sentryFlushTimeout)
}
