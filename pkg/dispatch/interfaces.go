package dispatch

import (
	"context"
	"time"
)

// Provider defines the contract for a component that can deliver a single
// notification payload to one destination token on an external platform
// (e.g., Google's FCM, Apple's APNS, a Web Push service).
type Provider interface {
	// Send submits the payload exactly once and returns the provider-assigned message ID.
	Send(ctx context.Context, token string, payload Payload) (string, error)
}

// ReceiptStore defines the contract for recording dispatch outcomes.
// Receipts are an audit trail; they are never used to build a caller's Result.
type ReceiptStore interface {
	// Record stores (or overwrites) the receipt keyed by its RequestID.
	Record(ctx context.Context, receipt Receipt) error

	// Lookup returns the receipt for a request ID, or ErrReceiptNotFound.
	Lookup(ctx context.Context, requestID string) (*Receipt, error)

	// ListByToken returns the most recent receipts for a destination token, newest first.
	ListByToken(ctx context.Context, token string, limit int) ([]Receipt, error)
}

// Observer receives the outcome of every dispatch attempt. err is nil on success.
type Observer interface {
	ObserveDispatch(err error, latency time.Duration)
}

// Sender is what the transport surfaces (HTTP, Pub/Sub) depend on.
// *Dispatcher satisfies it.
type Sender interface {
	Dispatch(ctx context.Context, req NotificationRequest) (*Result, error)
}
