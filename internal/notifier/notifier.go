package notifier

import (
	"context"

	"github.com/google/uuid"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier stages notifications for delivery. Notify is best-effort by
// contract: the triggering workflow has already committed its primary writes,
// so a failed enqueue is logged and swallowed, never surfaced to the caller.
type Notifier struct {
	outbox repositories.OutboxRepository
	logger *zap.Logger
}

// New creates a Notifier
func New(outbox repositories.OutboxRepository, logger *zap.Logger) *Notifier {
	return &Notifier{outbox: outbox, logger: logger}
}

// Notify enqueues a notification for recipientID. senderID is nil for system
// notices; relatedID is interpreted by the consumer according to the type.
// Each call gets a fresh operation id, which keys the eventual mailbox insert.
func (n *Notifier) Notify(ctx context.Context, recipientID primitive.ObjectID, senderID *primitive.ObjectID, notifType, message string, relatedID *primitive.ObjectID) {
	entry := &models.OutboxEntry{
		OpID:        uuid.NewString(),
		RecipientID: recipientID,
		SenderID:    senderID,
		Type:        notifType,
		Message:     message,
		RelatedID:   relatedID,
	}
	if err := n.outbox.Enqueue(ctx, entry); err != nil {
		n.logger.Error("notification enqueue failed",
			zap.String("type", notifType),
			zap.String("recipient_id", recipientID.Hex()),
			zap.Error(err))
	}
}
