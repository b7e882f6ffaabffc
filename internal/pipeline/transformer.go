// Package pipeline contains the Pub/Sub message processing components for the service.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// NotificationRequestTransformer is a dataflow Transformer that unmarshals a raw
// message payload into a dispatch.NotificationRequest.
// Field validation happens in the Dispatcher.
func NotificationRequestTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*dispatch.NotificationRequest, bool, error) {
	var req dispatch.NotificationRequest

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		// skip=true with an error lets the StreamingService Nack, so the
		// subscription's DeadLetterPolicy eventually parks the message.
		return nil, true, fmt.Errorf("failed to unmarshal notification request from message %s: %w", msg.ID, err)
	}

	return &req, false, nil
}
