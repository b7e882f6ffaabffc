package dispatch_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
	"google.golang.org/grpc/codes"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, dispatch.Kind(""), dispatch.KindOf(nil))
	assert.Equal(t, dispatch.KindInternal, dispatch.KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("pipeline: %w", dispatch.InvalidArgument("missing"))
	assert.Equal(t, dispatch.KindInvalidArgument, dispatch.KindOf(wrapped))
}

func TestKindMappings(t *testing.T) {
	assert.Equal(t, codes.InvalidArgument, dispatch.KindInvalidArgument.Code())
	assert.Equal(t, codes.Internal, dispatch.KindInternal.Code())

	assert.Equal(t, "INVALID_ARGUMENT", dispatch.KindInvalidArgument.Status())
	assert.Equal(t, "INTERNAL", dispatch.KindInternal.Status())

	assert.Equal(t, http.StatusBadRequest, dispatch.KindInvalidArgument.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, dispatch.KindInternal.HTTPStatus())
}

func TestNewReceipt(t *testing.T) {
	req := dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "abc"}

	t.Run("Success", func(t *testing.T) {
		r := dispatch.NewReceipt("req-1", dispatch.SourceCallable, req, &dispatch.Result{Success: true, MessageID: "m-1"}, nil)

		assert.Equal(t, "req-1", r.RequestID)
		assert.Equal(t, dispatch.HashToken("abc"), r.TokenHash)
		assert.NotContains(t, r.TokenHash, "abc")
		assert.True(t, r.Success)
		assert.Equal(t, "m-1", r.MessageID)
		assert.Empty(t, r.ErrorKind)
	})

	t.Run("Failure", func(t *testing.T) {
		err := dispatch.Internal(errors.New("quota exceeded"))
		r := dispatch.NewReceipt("req-2", dispatch.SourcePubsub, req, nil, err)

		assert.False(t, r.Success)
		assert.Equal(t, dispatch.KindInternal, r.ErrorKind)
		assert.Equal(t, "Failed to send notification: quota exceeded", r.ErrorMessage)
	})
}
