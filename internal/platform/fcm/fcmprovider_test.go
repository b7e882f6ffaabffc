package fcm_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-service/internal/platform/fcm"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// MockClient satisfies the MessagingClient interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewMessage(t *testing.T) {
	payload := dispatch.BuildPayload(dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "abc"})

	msg := fcm.NewMessage("abc", payload)

	assert.Equal(t, "abc", msg.Token)
	require.NotNil(t, msg.Notification)
	assert.Equal(t, "Hi", msg.Notification.Title)
	assert.Equal(t, "There", msg.Notification.Body)

	require.NotNil(t, msg.Android)
	assert.Equal(t, "high", msg.Android.Priority)
	require.NotNil(t, msg.Android.Notification)
	assert.Equal(t, "default", msg.Android.Notification.ChannelID)
	assert.Equal(t, messaging.PriorityHigh, msg.Android.Notification.Priority)
	assert.True(t, msg.Android.Notification.DefaultSound)
	assert.Equal(t, "FLUTTER_NOTIFICATION_CLICK", msg.Android.Notification.ClickAction)

	require.NotNil(t, msg.APNS)
	assert.Equal(t, "10", msg.APNS.Headers["apns-priority"])
	aps := msg.APNS.Payload.Aps
	require.NotNil(t, aps)
	assert.Equal(t, "Hi", aps.Alert.Title)
	assert.Equal(t, "There", aps.Alert.Body)
	assert.Equal(t, "default", aps.Sound)
	require.NotNil(t, aps.Badge)
	assert.Equal(t, 1, *aps.Badge)
}

func TestNewMessage_UnknownPriority(t *testing.T) {
	payload := dispatch.BuildPayload(dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "abc"})
	payload.Android.NotificationPriority = "urgent"

	msg := fcm.NewMessage("abc", payload)

	require.NotNil(t, msg.Android.Notification)
	assert.Equal(t, messaging.AndroidNotificationPriority(0), msg.Android.Notification.Priority)
	assert.NotEqual(t, messaging.PriorityHigh, msg.Android.Notification.Priority)
}

func TestFCMSend_Lifecycle(t *testing.T) {
	logger := newTestLogger()
	ctx := context.Background()
	payload := dispatch.BuildPayload(dispatch.NotificationRequest{Title: "Hi", Body: "There", Token: "abc"})

	t.Run("Happy Path", func(t *testing.T) {
		mockClient := new(MockClient)
		provider := fcm.NewProvider(mockClient, logger)

		mockClient.On("Send", ctx, mock.MatchedBy(func(m *messaging.Message) bool {
			return m.Token == "abc"
		})).Return("projects/test/messages/0:123", nil).Once()

		id, err := provider.Send(ctx, "abc", payload)

		require.NoError(t, err)
		assert.Equal(t, "projects/test/messages/0:123", id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Failure returns provider error verbatim", func(t *testing.T) {
		mockClient := new(MockClient)
		provider := fcm.NewProvider(mockClient, logger)
		mockClient.On("Send", ctx, mock.Anything).Return("", errors.New("quota exceeded")).Once()

		_, err := provider.Send(ctx, "abc", payload)

		require.Error(t, err)
		assert.Equal(t, "quota exceeded", err.Error())
		mockClient.AssertNumberOfCalls(t, "Send", 1)
	})
}
