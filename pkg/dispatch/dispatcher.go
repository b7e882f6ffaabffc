package dispatch

import (
	"context"
	"log/slog"
	"time"
)

// Dispatcher validates a request, builds its payload and makes exactly one
// provider call. It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	provider Provider
	observer Observer
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithObserver reports every outcome to o.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// NewDispatcher wires the provider the dispatcher sends through.
func NewDispatcher(provider Provider, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		provider: provider,
		logger:   logger.With("component", "Dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one notification. On failure the returned error is always a *Error.
// The provider call inherits ctx's deadline; no timeout is added here.
func (d *Dispatcher) Dispatch(ctx context.Context, req NotificationRequest) (*Result, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		d.logger.Warn("Rejected notification request", "reason", err.Error(),
			"has_title", req.Title != "", "has_body", req.Body != "", "has_token", req.Token != "")
		d.observe(err, start)
		return nil, err
	}

	tokenRef := HashToken(req.Token)[:12]
	payload := BuildPayload(req)
	d.logger.Debug("Sending notification", "token_ref", tokenRef, "title", payload.Title)

	messageID, err := d.provider.Send(ctx, req.Token, payload)
	if err != nil {
		derr := Internal(err)
		d.logger.Error("Provider send failed", "token_ref", tokenRef, "err", err)
		d.observe(derr, start)
		return nil, derr
	}

	d.logger.Info("Notification sent", "token_ref", tokenRef, "message_id", messageID)
	d.observe(nil, start)
	return &Result{Success: true, MessageID: messageID}, nil
}

func (d *Dispatcher) observe(err error, start time.Time) {
	if d.observer == nil {
		return
	}
	d.observer.ObserveDispatch(err, time.Since(start))
}
