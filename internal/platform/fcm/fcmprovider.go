// Package fcm delivers notifications through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// MessagingClient defines the subset of the Firebase Messaging API we use.
// *messaging.Client satisfies it.
type MessagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type Provider struct {
	client MessagingClient
	logger *slog.Logger
}

func NewProvider(client MessagingClient, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		logger: logger.With("component", "FCMProvider"),
	}
}

// Send makes a single FCM send. Errors are returned unwrapped so their text
// reaches the caller verbatim.
func (p *Provider) Send(ctx context.Context, token string, payload dispatch.Payload) (string, error) {
	if _, ok := androidNotificationPriority(payload.Android.NotificationPriority); !ok {
		p.logger.Warn("Unknown Android notification priority; FCM default applies",
			"priority", payload.Android.NotificationPriority)
	}
	msg := NewMessage(token, payload)

	name, err := p.client.Send(ctx, msg)
	if err != nil {
		if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
			p.logger.Warn("FCM rejected token", "err", err)
		}
		return "", err
	}
	return name, nil
}

// NewMessage maps the payload onto an FCM message addressed to token.
func NewMessage(token string, payload dispatch.Payload) *messaging.Message {
	badge := payload.Apple.Badge
	notificationPriority, _ := androidNotificationPriority(payload.Android.NotificationPriority)
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: payload.Title,
			Body:  payload.Body,
		},
		Android: &messaging.AndroidConfig{
			Priority: payload.Android.Priority,
			Notification: &messaging.AndroidNotification{
				ChannelID:    payload.Android.ChannelID,
				Priority:     notificationPriority,
				DefaultSound: payload.Android.DefaultSound,
				ClickAction:  payload.Android.ClickAction,
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: payload.Apple.Headers(),
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: payload.Apple.AlertTitle,
						Body:  payload.Apple.AlertBody,
					},
					Sound: payload.Apple.Sound,
					Badge: &badge,
				},
			},
		},
	}
}

// androidNotificationPriority maps a priority name onto FCM's enum. Unknown
// names map to the zero value, which FCM omits from the request.
func androidNotificationPriority(p string) (messaging.AndroidNotificationPriority, bool) {
	switch p {
	case "min":
		return messaging.PriorityMin, true
	case "low":
		return messaging.PriorityLow, true
	case "default":
		return messaging.PriorityDefault, true
	case "high":
		return messaging.PriorityHigh, true
	case "max":
		return messaging.PriorityMax, true
	default:
		return 0, false
	}
}
