// Package receipts records dispatch outcomes without letting storage
// failures affect the outcome itself.
package receipts

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// Recorder is a fire-and-forget front for a dispatch.ReceiptStore.
// A nil *Recorder, or one with a nil store, makes every method a no-op.
type Recorder struct {
	store     dispatch.ReceiptStore
	onFailure func()
	logger    *slog.Logger
}

// NewRecorder wraps store. onFailure, if set, runs on every failed write.
func NewRecorder(store dispatch.ReceiptStore, onFailure func(), logger *slog.Logger) *Recorder {
	return &Recorder{
		store:     store,
		onFailure: onFailure,
		logger:    logger.With("component", "ReceiptRecorder"),
	}
}

// Enabled reports whether a store is configured.
func (r *Recorder) Enabled() bool {
	return r != nil && r.store != nil
}

// Store returns the underlying store (nil when disabled).
func (r *Recorder) Store() dispatch.ReceiptStore {
	if r == nil {
		return nil
	}
	return r.store
}

// Record persists the receipt, logging any failure.
func (r *Recorder) Record(ctx context.Context, receipt dispatch.Receipt) {
	if !r.Enabled() {
		return
	}
	if err := r.store.Record(ctx, receipt); err != nil {
		r.logger.Warn("Failed to record receipt", "request_id", receipt.RequestID, "err", err)
		if r.onFailure != nil {
			r.onFailure()
		}
	}
}

// AlreadyDelivered reports whether requestID has a successful receipt.
// Lookup errors other than not-found are logged and treated as "not delivered".
func (r *Recorder) AlreadyDelivered(ctx context.Context, requestID string) (*dispatch.Receipt, bool) {
	if !r.Enabled() || requestID == "" {
		return nil, false
	}
	receipt, err := r.store.Lookup(ctx, requestID)
	if err != nil {
		if !errors.Is(err, dispatch.ErrReceiptNotFound) {
			r.logger.Warn("Receipt lookup failed", "request_id", requestID, "err", err)
		}
		return nil, false
	}
	return receipt, receipt.Success
}
