// Package telemetry reports internal failures to Sentry when the operator
// opts in through telemetry.sentry.enabled.
package telemetry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sheriffhq/sheriff/internal/conf"
	"github.com/sheriffhq/sheriff/internal/errors"
	"github.com/sheriffhq/sheriff/internal/logger"
)

// DefaultFlushTimeout bounds how long shutdown waits for queued events.
const DefaultFlushTimeout = 2 * time.Second

// Categories describing caller mistakes rather than faults in sheriff.
var ignoredCategories = map[errors.ErrorCategory]bool{
	errors.CategoryValidation:   true,
	errors.CategoryNotFound:     true,
	errors.CategoryConflict:     true,
	errors.CategoryCancellation: true,
}

// Reporter forwards built errors to Sentry. A nil Reporter is valid and
// does nothing.
type Reporter struct {
	hub *sentry.Hub
}

// Option adjusts the Sentry client before it is created
type Option func(*sentry.ClientOptions)

// WithTransport replaces the HTTP transport, mainly for tests
func WithTransport(transport sentry.Transport) Option {
	return func(o *sentry.ClientOptions) { o.Transport = transport }
}

// Setup creates a Sentry client and registers it as an error hook. It
// returns a nil Reporter when reporting is disabled.
func Setup(settings conf.SentrySettings, version string, opts ...Option) (*Reporter, error) {
	if !settings.Enabled {
		return nil, nil
	}

	options := sentry.ClientOptions{
		Dsn:         settings.DSN,
		Environment: settings.Environment,
		Release:     fmt.Sprintf("sheriff@%s", version),
		BeforeSend:  scrubEvent,
	}
	for _, opt := range opts {
		opt(&options)
	}

	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, errors.New(err).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Context("environment", settings.Environment).
			Build()
	}

	r := &Reporter{hub: sentry.NewHub(client, sentry.NewScope())}
	errors.AddErrorHook(r.capture)

	logger.Global().Module("telemetry").Info("sentry error reporting enabled",
		logger.String("environment", settings.Environment))
	return r, nil
}

func (r *Reporter) capture(ee *errors.EnhancedError) {
	if ee == nil || ee.Err == nil || ignoredCategories[ee.Category] {
		return
	}

	hub := r.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.GetComponent())
		scope.SetTag("category", ee.GetCategory())
		if ctx := ee.GetContext(); len(ctx) > 0 {
			scope.SetContext("error", sentry.Context(ctx))
		}
		scope.SetFingerprint([]string{ee.GetComponent(), ee.GetCategory(), ee.GetMessage()})
	})
	hub.CaptureException(ee.Err)
}

// Flush waits up to timeout for queued events
func (r *Reporter) Flush(timeout time.Duration) bool {
	if r == nil {
		return true
	}
	return r.hub.Flush(timeout)
}

// Close stops capturing errors and flushes what is queued
func (r *Reporter) Close() {
	if r == nil {
		return
	}
	errors.ClearErrorHooks()
	r.hub.Flush(DefaultFlushTimeout)
}

// scrubEvent strips host and user details sentry attaches by default
func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.ServerName = ""
	event.User = sentry.User{}
	if event.Request != nil {
		event.Request.Cookies = ""
		event.Request.Headers = nil
	}
	return event
}
