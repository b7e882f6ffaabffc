package pipeline

import (
	"context"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-push-service/internal/receipts"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// NewProcessor creates the stream processor that hands each request to the dispatcher.
//
// Outcomes map onto Pub/Sub acknowledgement:
//   - success: Ack
//   - invalid-argument: Ack and drop
//   - internal: Nack; the subscription's retry and DLQ policy decide what happens next
//
// A message ID that already has a successful receipt is acked without sending again.
func NewProcessor(
	sender dispatch.Sender,
	recorder *receipts.Recorder,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[dispatch.NotificationRequest] {

	return func(ctx context.Context, original messagepipeline.Message, request *dispatch.NotificationRequest) error {
		procLogger := logger.With("pubsub_msg_id", original.ID)

		if prior, done := recorder.AlreadyDelivered(ctx, original.ID); done {
			procLogger.Info("Duplicate delivery; already sent", "message_id", prior.MessageID)
			return nil
		}

		result, err := sender.Dispatch(ctx, *request)
		recorder.Record(ctx, dispatch.NewReceipt(original.ID, dispatch.SourcePubsub, *request, result, err))

		if err != nil {
			if dispatch.KindOf(err) == dispatch.KindInvalidArgument {
				procLogger.Warn("Dropping invalid notification request", "err", err)
				return nil
			}
			procLogger.Error("Dispatch failed", "err", err)
			return err
		}

		procLogger.Info("Dispatched", "message_id", result.MessageID)
		return nil
	}
}
