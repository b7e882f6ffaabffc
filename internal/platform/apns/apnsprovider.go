// Package apns provides the client for the Apple Push Notification Service.
package apns

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// APNSClient defines the subset of the apns2.Client methods we use.
// This allows mocking for unit tests.
type APNSClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

type Provider struct {
	client APNSClient
	topic  string // The App Bundle ID (e.g. com.tinywide.messenger)
	logger *slog.Logger
}

// Config holds the credentials required to sign APNs tokens.
type Config struct {
	KeyID    string
	TeamID   string
	BundleID string
	// P8KeyContent is the raw string content of the .p8 file
	P8KeyContent string
	// Development routes sends to the sandbox gateway.
	Development bool
}

// NewProvider creates a configured APNs provider.
// It parses the P8 key immediately to fail fast on startup if credentials are bad.
func NewProvider(cfg Config, logger *slog.Logger) (*Provider, error) {
	authKey, err := token.AuthKeyFromBytes([]byte(cfg.P8KeyContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse APNs P8 key: %w", err)
	}

	tokenSource := &token.Token{
		AuthKey: authKey,
		KeyID:   cfg.KeyID,
		TeamID:  cfg.TeamID,
	}

	client := apns2.NewTokenClient(tokenSource)
	if cfg.Development {
		client = client.Development()
	} else {
		client = client.Production()
	}

	return newProvider(client, cfg.BundleID, logger), nil
}

func newProvider(client APNSClient, topic string, logger *slog.Logger) *Provider {
	return &Provider{
		client: client,
		topic:  topic,
		logger: logger.With("component", "APNSProvider"),
	}
}

// Send pushes the Apple block of the payload to one device token.
// The request is bound to ctx.
func (p *Provider) Send(ctx context.Context, deviceToken string, pl dispatch.Payload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	n := NewNotification(deviceToken, p.topic, pl)

	res, err := p.client.PushWithContext(ctx, n)
	if err != nil {
		p.logger.Error("APNs transport failed", "err", err)
		return "", err
	}

	if !res.Sent() {
		// See: https://developer.apple.com/documentation/usernotifications/handling-notification-responses-from-apns
		switch res.Reason {
		case apns2.ReasonBadDeviceToken, apns2.ReasonUnregistered, apns2.ReasonDeviceTokenNotForTopic:
			p.logger.Warn("APNs rejected device token", "reason", res.Reason, "status", res.StatusCode)
		default:
			p.logger.Warn("APNs rejected notification", "reason", res.Reason, "status", res.StatusCode)
		}
		return "", fmt.Errorf("apns rejected notification: %s (status %d)", res.Reason, res.StatusCode)
	}

	return res.ApnsID, nil
}

// NewNotification builds the apns2 notification from the payload's Apple block.
func NewNotification(deviceToken, topic string, pl dispatch.Payload) *apns2.Notification {
	body := payload.NewPayload().
		AlertTitle(pl.Apple.AlertTitle).
		AlertBody(pl.Apple.AlertBody).
		Sound(pl.Apple.Sound).
		Badge(pl.Apple.Badge)

	return &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       topic,
		Payload:     body,
		Priority:    pl.Apple.Priority,
		PushType:    apns2.PushTypeAlert,
	}
}
