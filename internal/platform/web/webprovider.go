// Package web delivers notifications to browsers through the Web Push protocol (VAPID).
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-push-service/pushservice/config"
)

const defaultTTL = 60

type Provider struct {
	subscriber string
	privateKey string
	publicKey  string
	logger     *slog.Logger
	httpClient *http.Client
}

// NewProvider builds a VAPID provider. A nil httpClient uses a default client.
func NewProvider(cfg config.VapidConfig, httpClient *http.Client, logger *slog.Logger) *Provider {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Provider{
		privateKey: cfg.PrivateKey,
		publicKey:  cfg.PublicKey,
		subscriber: cfg.SubscriberEmail,
		logger:     logger.With("component", "WebPushProvider"),
		httpClient: httpClient,
	}
}

// Send treats token as a JSON-encoded PushSubscription
// ({"endpoint": "...", "keys": {"p256dh": "...", "auth": "..."}}).
func (p *Provider) Send(ctx context.Context, token string, payload dispatch.Payload) (string, error) {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(token), &sub); err != nil {
		return "", fmt.Errorf("token is not a web push subscription: %w", err)
	}
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return "", fmt.Errorf("incomplete web push subscription")
	}

	body, err := NewMessage(payload)
	if err != nil {
		return "", err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &sub, &webpush.Options{
		Subscriber:      p.subscriber,
		VAPIDPublicKey:  p.publicKey,
		VAPIDPrivateKey: p.privateKey,
		TTL:             defaultTTL,
		Urgency:         webpush.UrgencyHigh,
		HTTPClient:      p.httpClient,
	})
	if err != nil {
		p.logger.Error("WebPush transport error", "endpoint", sub.Endpoint, "err", err)
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK, http.StatusAccepted:
		if loc := resp.Header.Get("Location"); loc != "" {
			return loc, nil
		}
		return uuid.NewString(), nil
	case http.StatusGone, http.StatusNotFound:
		p.logger.Warn("WebPush subscription expired", "status", resp.StatusCode, "endpoint", sub.Endpoint)
		return "", fmt.Errorf("web push subscription expired (status %d)", resp.StatusCode)
	default:
		p.logger.Warn("WebPush rejected", "status", resp.StatusCode, "endpoint", sub.Endpoint)
		return "", fmt.Errorf("web push rejected (status %d)", resp.StatusCode)
	}
}

// NewMessage renders the service-worker message body.
func NewMessage(payload dispatch.Payload) ([]byte, error) {
	b, err := json.Marshal(map[string]interface{}{
		"notification": map[string]string{
			"title": payload.Title,
			"body":  payload.Body,
		},
		"data": map[string]string{
			"click_action": payload.Android.ClickAction,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return b, nil
}
