package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outbox entry states.
const (
	OutboxStatusPending   = "pending"
	OutboxStatusDelivered = "delivered"
	OutboxStatusFailed    = "failed"
)

// OutboxEntry is a staged notification (MongoDB, "notification_outbox"
// collection). Engines append entries after their primary writes succeed; the
// dispatcher delivers them at least once. OpID makes delivery idempotent: the
// notification insert is keyed by it, so a redelivered entry never produces a
// second mailbox document.
type OutboxEntry struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OpID        string              `bson:"op_id" json:"op_id"`
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID    *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"`
	Type        string              `bson:"type" json:"type"`
	Message     string              `bson:"message" json:"message"`
	RelatedID   *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`
	Status      string              `bson:"status" json:"status"`
	Attempts    int                 `bson:"attempts" json:"attempts"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	DeliveredAt *time.Time          `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
}
