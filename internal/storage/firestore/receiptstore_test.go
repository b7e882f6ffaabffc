//go:build integration

package firestore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/go-test/emulators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fs "github.com/tinywideclouds/go-push-service/internal/storage/firestore"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

func setupSuite(t *testing.T) (context.Context, *fs.FirestoreStore) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	projectID := "test-receipt-store"
	conn := emulators.SetupFirestoreEmulator(t, ctx, emulators.GetDefaultFirestoreConfig(projectID))
	client, err := firestore.NewClient(ctx, projectID, conn.ClientOptions...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return ctx, fs.NewFirestoreStore(client, "")
}

func TestReceiptStore_Integration(t *testing.T) {
	ctx, store := setupSuite(t)
	req := dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "token-ios-1"}

	t.Run("Record then Lookup", func(t *testing.T) {
		r := dispatch.NewReceipt("req-1", dispatch.SourceCallable, req, &dispatch.Result{Success: true, MessageID: "m-1"}, nil)
		require.NoError(t, store.Record(ctx, r))

		got, err := store.Lookup(ctx, "req-1")
		require.NoError(t, err)
		assert.True(t, got.Success)
		assert.Equal(t, "m-1", got.MessageID)
		assert.Equal(t, dispatch.SourceCallable, got.Source)
		assert.Equal(t, dispatch.HashToken("token-ios-1"), got.TokenHash)
	})

	t.Run("Lookup missing", func(t *testing.T) {
		_, err := store.Lookup(ctx, "does-not-exist")
		assert.True(t, errors.Is(err, dispatch.ErrReceiptNotFound))
	})

	t.Run("ListByToken newest first", func(t *testing.T) {
		older := dispatch.NewReceipt("req-list-1", dispatch.SourcePubsub, req, nil, dispatch.Internal(errors.New("quota exceeded")))
		older.CreatedAt = time.Now().Add(-time.Minute).UTC()
		newer := dispatch.NewReceipt("req-list-2", dispatch.SourcePubsub, req, &dispatch.Result{Success: true, MessageID: "m-2"}, nil)
		require.NoError(t, store.Record(ctx, older))
		require.NoError(t, store.Record(ctx, newer))

		receipts, err := store.ListByToken(ctx, "token-ios-1", 10)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(receipts), 2)
		assert.False(t, receipts[0].CreatedAt.Before(receipts[1].CreatedAt))
	})
}
