package web_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-service/internal/platform/web"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-push-service/pushservice/config"
)

// subscriptionToken builds a syntactically valid browser subscription for endpoint.
func subscriptionToken(t *testing.T, endpoint string) string {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	tok, err := json.Marshal(webpush.Subscription{
		Endpoint: endpoint,
		Keys: webpush.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	})
	require.NoError(t, err)
	return string(tok)
}

func TestSend_Lifecycle(t *testing.T) {
	// 1. Setup Mock Push Service (Simulates Google/Mozilla Push Server)
	mockServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("Authorization"))

		switch r.URL.Path {
		case "/success":
			w.Header().Set("Location", "https://push.example/m/42")
			w.WriteHeader(http.StatusCreated)
		case "/expired":
			w.WriteHeader(http.StatusGone)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer mockServer.Close()

	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	provider := web.NewProvider(config.VapidConfig{
		PrivateKey:      privateKey,
		PublicKey:       publicKey,
		SubscriberEmail: "mailto:test-runner@tinywideclouds.com",
	}, mockServer.Client(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	payload := dispatch.BuildPayload(dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "x"})

	t.Run("Success returns Location as message ID", func(t *testing.T) {
		id, err := provider.Send(ctx, subscriptionToken(t, mockServer.URL+"/success"), payload)
		require.NoError(t, err)
		assert.Equal(t, "https://push.example/m/42", id)
	})

	t.Run("Expired subscription", func(t *testing.T) {
		_, err := provider.Send(ctx, subscriptionToken(t, mockServer.URL+"/expired"), payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "410")
	})

	t.Run("Server error", func(t *testing.T) {
		_, err := provider.Send(ctx, subscriptionToken(t, mockServer.URL+"/error"), payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("Token is not a subscription", func(t *testing.T) {
		_, err := provider.Send(ctx, "plain-fcm-token", payload)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a web push subscription")
	})
}

func TestNewMessage(t *testing.T) {
	payload := dispatch.BuildPayload(dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "x"})

	raw, err := web.NewMessage(payload)
	require.NoError(t, err)

	assert.JSONEq(t, `{"notification":{"title":"Hi","body":"There"},"data":{"click_action":"FLUTTER_NOTIFICATION_CLICK"}}`, string(raw))
}
