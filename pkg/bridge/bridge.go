package bridge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
)

// Bridge is the message-channel endpoint on the application side. The
// publisher/subscriber handles are injected per deployment; a disabled bridge
// turns every post into a no-op so callers never need to know whether a host
// is embedding them.
type Bridge struct {
	enabled    bool
	publisher  message.Publisher
	subscriber message.Subscriber
	reconciler *reconcile.Reconciler
	logger     *slog.Logger
}

// NewBridge creates a bridge over the given pub/sub handles.
func NewBridge(
	enabled bool,
	publisher message.Publisher,
	subscriber message.Subscriber,
	reconciler *reconcile.Reconciler,
	logger *slog.Logger,
) *Bridge {
	return &Bridge{
		enabled:    enabled,
		publisher:  publisher,
		subscriber: subscriber,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Enabled reports whether an embedding host is attached.
func (b *Bridge) Enabled() bool {
	return b.enabled
}

// PostUpdate sends the current workflow state to the host. The document is
// serialized through the degradation tiers first; if the envelope itself
// still fails to marshal, it is rebuilt once around the skeleton form before
// giving up. Transport failures are returned, not retried.
func (b *Bridge) PostUpdate(ctx context.Context, doc *models.Workflow, shouldSave bool, executionData, executionTiming map[string]any) error {
	if !b.enabled {
		return nil
	}

	envelope := UpdateEnvelope{
		Type:            MessageTypeWorkflowUpdate,
		Workflow:        Serialize(doc),
		ShouldSave:      shouldSave,
		ExecutionData:   executionData,
		ExecutionTiming: executionTiming,
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		envelope.Workflow = Skeleton(doc.Name)
		envelope.ExecutionData = nil
		envelope.ExecutionTiming = nil

		payload, err = json.Marshal(envelope)
		if err != nil {
			return err
		}
	}

	msg := message.NewMessage(watermill.NewULID(), payload)

	return b.publisher.Publish(UpdatesTopic, msg)
}

// Listen subscribes to the inbound sync topic and reconciles each incoming
// document, answering every message with a completion or error reply. It
// returns after the subscription is established; message handling continues
// until ctx is cancelled.
func (b *Bridge) Listen(ctx context.Context) error {
	if !b.enabled {
		return nil
	}

	messages, err := b.subscriber.Subscribe(ctx, SyncTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			b.handleSync(ctx, msg)
			msg.Ack()
		}
	}()

	return nil
}

func (b *Bridge) handleSync(ctx context.Context, msg *message.Message) {
	var envelope SyncEnvelope

	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		b.logger.ErrorContext(ctx, "Failed to decode sync envelope", "message_id", msg.UUID, "error", err)
		b.reply(ctx, Reply{Command: CommandError, Message: "invalid sync envelope", Error: err.Error()})

		return
	}

	result, err := b.reconciler.Sync(ctx, envelope.Workflow)
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to sync workflow from host", "message_id", msg.UUID, "error", err)
		b.reply(ctx, Reply{Command: CommandError, Message: "workflow sync failed", Error: err.Error()})

		return
	}

	b.reply(ctx, Reply{
		Command:      CommandSyncComplete,
		WorkflowID:   result.Workflow.ID,
		WorkflowName: result.Workflow.Name,
		Action:       result.Action,
	})
}

func (b *Bridge) reply(ctx context.Context, reply Reply) {
	payload, err := json.Marshal(reply)
	if err != nil {
		b.logger.ErrorContext(ctx, "Failed to encode reply", "error", err)

		return
	}

	msg := message.NewMessage(watermill.NewULID(), payload)

	if err := b.publisher.Publish(RepliesTopic, msg); err != nil {
		b.logger.ErrorContext(ctx, "Failed to publish reply", "error", err)
	}
}
