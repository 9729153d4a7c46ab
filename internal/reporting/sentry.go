// Package reporting forwards errors that are otherwise only logged to Sentry.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
)

type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

// Nop drops everything.
type Nop struct{}

func (Nop) Report(context.Context, error, map[string]string) {}

type Sentry struct {
	hub *sentry.Hub
}

// New returns a Sentry reporter, or Nop when no DSN is configured.
func New(cfg *config.SentryConfig) (Reporter, error) {
	if cfg.DSN == "" {
		return Nop{}, nil
	}
	return newWithOptions(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
}

func newWithOptions(opts sentry.ClientOptions) (*Sentry, error) {
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("sentry.NewClient: %w", err)
	}
	return &Sentry{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

func (s *Sentry) Report(ctx context.Context, err error, tags map[string]string) {
	if err == nil {
		return
	}
	hub := s.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if id, ok := requestID(ctx); ok {
			scope.SetTag("aws_request_id", id)
		}
		hub.CaptureException(err)
	})
}

// Flush blocks until buffered events are sent or timeout passes. Lambda
// freezes the process after the handler returns, so call it per invocation.
func (s *Sentry) Flush(timeout time.Duration) bool {
	return s.hub.Flush(timeout)
}

// Flush flushes r when it buffers events.
func Flush(r Reporter, timeout time.Duration) {
	if f, ok := r.(interface{ Flush(time.Duration) bool }); ok {
		f.Flush(timeout)
	}
}
