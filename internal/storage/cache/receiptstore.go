package cache

import (
	"context"
	"time"

	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// ReceiptCache is the keyed receipt cache the decorator reads and fills.
// GetReceipt returns dispatch.ErrReceiptNotFound on a miss.
type ReceiptCache interface {
	GetReceipt(ctx context.Context, requestID string) (*dispatch.Receipt, error)
	PutReceipt(ctx context.Context, r dispatch.Receipt, ttl time.Duration) error
}

// CachedReceiptStore is a Decorator that adds read-aside caching of Lookup to any ReceiptStore.
// Lookup runs once per Pub/Sub delivery.
type CachedReceiptStore struct {
	realStore dispatch.ReceiptStore
	cache     ReceiptCache
	ttl       time.Duration
}

func NewCachedReceiptStore(realStore dispatch.ReceiptStore, cache ReceiptCache, ttl time.Duration) *CachedReceiptStore {
	return &CachedReceiptStore{
		realStore: realStore,
		cache:     cache,
		ttl:       ttl,
	}
}

// --- READ PATH (Read-Aside) ---

func (s *CachedReceiptStore) Lookup(ctx context.Context, requestID string) (*dispatch.Receipt, error) {
	if cached, err := s.cache.GetReceipt(ctx, requestID); err == nil {
		return cached, nil
	}

	fresh, err := s.realStore.Lookup(ctx, requestID)
	if err != nil {
		// Misses are not cached; a receipt may be written moments later.
		return nil, err
	}

	// A failed refill only means the next read goes to the store.
	_ = s.cache.PutReceipt(ctx, *fresh, s.ttl)
	return fresh, nil
}

// ListByToken is not cached.
func (s *CachedReceiptStore) ListByToken(ctx context.Context, token string, limit int) ([]dispatch.Receipt, error) {
	return s.realStore.ListByToken(ctx, token, limit)
}

// --- WRITE PATH (Write-Through) ---

func (s *CachedReceiptStore) Record(ctx context.Context, r dispatch.Receipt) error {
	if err := s.realStore.Record(ctx, r); err != nil {
		return err
	}
	_ = s.cache.PutReceipt(ctx, r, s.ttl)
	return nil
}
