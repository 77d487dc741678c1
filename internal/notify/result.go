// Package notify delivers best-effort lead notifications: the workflow webhook
// and an optional email alert. Nothing here ever fails a submission; callers get a
// Result they must acknowledge and drop.
package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/onetriage/leadintake/pkg/logging"
)

// ErrNotConfigured is reported when a channel has no destination for the route.
var ErrNotConfigured = errors.New("notify: channel not configured for route")

// Notifier sends payload for a route (the form type).
type Notifier interface {
	Notify(ctx context.Context, route string, payload any) Result
}

// Result is the outcome of one notification attempt.
type Result struct {
	Channel    string
	Route      string
	StatusCode int
	Body       string
	Err        error
}

// OK reports whether the notification was delivered without a transport error.
func (r Result) OK() bool { return r.Err == nil }

// Log acknowledges the result. Failures and error statuses log at warn.
func (r Result) Log(logger *logging.Logger) {
	if logger == nil {
		logger = logging.Default()
	}
	args := []any{"channel", r.Channel, "route", r.Route}
	if r.StatusCode > 0 {
		args = append(args, "status", r.StatusCode)
	}
	switch {
	case r.Err != nil:
		logger.Warn("lead notification failed", append(args, "error", r.Err)...)
	case r.StatusCode >= 400:
		logger.Warn("lead notification rejected", append(args, "body", r.Body)...)
	default:
		logger.Info("lead notification sent", append(args, "body", r.Body)...)
	}
}

// Fanout sends to every notifier in order and folds the results: errors are
// joined, the first status code wins.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, route string, payload any) Result {
	out := Result{Channel: "fanout", Route: route}
	var errs []error
	var channels []string
	for _, n := range f {
		if n == nil {
			continue
		}
		res := n.Notify(ctx, route, payload)
		channels = append(channels, res.Channel)
		if out.StatusCode == 0 {
			out.StatusCode = res.StatusCode
			out.Body = res.Body
		}
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	if len(channels) > 0 {
		out.Channel = strings.Join(channels, "+")
	}
	out.Err = errors.Join(errs...)
	return out
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Notify(_ context.Context, route string, _ any) Result {
	return Result{Channel: "noop", Route: route}
}
