package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// DefaultCollection is the root collection receipts are written to.
const DefaultCollection = "push_receipts"

// FirestoreStore implements dispatch.ReceiptStore using Google Cloud Firestore.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

// receiptRecord is the internal DB representation.
type receiptRecord struct {
	RequestID    string    `firestore:"request_id"`
	TokenHash    string    `firestore:"token_hash"`
	Source       string    `firestore:"source"`
	RequestedBy  string    `firestore:"requested_by,omitempty"`
	Success      bool      `firestore:"success"`
	MessageID    string    `firestore:"message_id,omitempty"`
	ErrorKind    string    `firestore:"error_kind,omitempty"`
	ErrorMessage string    `firestore:"error_message,omitempty"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func (s *FirestoreStore) Record(ctx context.Context, r dispatch.Receipt) error {
	if r.RequestID == "" {
		return fmt.Errorf("receipt has no request id")
	}
	_, err := s.client.Collection(s.collection).Doc(r.RequestID).Set(ctx, toRecord(r))
	if err != nil {
		return fmt.Errorf("firestore receipt write failed: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Lookup(ctx context.Context, requestID string) (*dispatch.Receipt, error) {
	doc, err := s.client.Collection(s.collection).Doc(requestID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, dispatch.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("firestore receipt read failed: %w", err)
	}

	var rec receiptRecord
	if err := doc.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("corrupt receipt %s: %w", requestID, err)
	}
	r := fromRecord(rec)
	return &r, nil
}

// ListByToken requires a composite index on (token_hash ASC, created_at DESC).
func (s *FirestoreStore) ListByToken(ctx context.Context, token string, limit int) ([]dispatch.Receipt, error) {
	iter := s.client.Collection(s.collection).
		Where("token_hash", "==", dispatch.HashToken(token)).
		OrderBy("created_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	receipts := make([]dispatch.Receipt, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}

		var rec receiptRecord
		if err := doc.DataTo(&rec); err != nil {
			// Skip corrupt rows.
			continue
		}
		receipts = append(receipts, fromRecord(rec))
	}

	return receipts, nil
}

func toRecord(r dispatch.Receipt) receiptRecord {
	return receiptRecord{
		RequestID:    r.RequestID,
		TokenHash:    r.TokenHash,
		Source:       string(r.Source),
		RequestedBy:  r.RequestedBy,
		Success:      r.Success,
		MessageID:    r.MessageID,
		ErrorKind:    string(r.ErrorKind),
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}

func fromRecord(rec receiptRecord) dispatch.Receipt {
	return dispatch.Receipt{
		RequestID:    rec.RequestID,
		TokenHash:    rec.TokenHash,
		Source:       dispatch.Source(rec.Source),
		RequestedBy:  rec.RequestedBy,
		Success:      rec.Success,
		MessageID:    rec.MessageID,
		ErrorKind:    dispatch.Kind(rec.ErrorKind),
		ErrorMessage: rec.ErrorMessage,
		CreatedAt:    rec.CreatedAt,
	}
}
