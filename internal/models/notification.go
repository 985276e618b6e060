package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types consumed by the presentation layer. RelatedID is
// interpreted per type: a user id for friend_request, a campaign id for the
// campaign types, a request id for request_fulfillment, a report id for
// report_update.
const (
	NotificationFriendRequest      = "friend_request"
	NotificationCampaignApproved   = "campaign_approved"
	NotificationCampaignRejected   = "campaign_rejected"
	NotificationCampaignRevision   = "campaign_revision"
	NotificationRequestFulfillment = "request_fulfillment"
	NotificationReportUpdate       = "report_update"
)

// Notification represents a mailbox entry (MongoDB, "notifications"
// collection). Created only by the outbox dispatcher; after creation the only
// permitted mutation is is_read false -> true.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OpID        string              `bson:"op_id" json:"-"` // dedup key, unique index
	RecipientID primitive.ObjectID  `bson:"recipient_id" json:"recipient_id"`
	SenderID    *primitive.ObjectID `bson:"sender_id,omitempty" json:"sender_id,omitempty"` // nil for system notices
	Type        string              `bson:"type" json:"type"`
	Message     string              `bson:"message" json:"message"`
	RelatedID   *primitive.ObjectID `bson:"related_id,omitempty" json:"related_id,omitempty"`
	IsRead      bool                `bson:"is_read" json:"is_read"`
	Date        time.Time           `bson:"date" json:"date"`
}

// RegisterDeviceRequest defines the request body for push token registration
type RegisterDeviceRequest struct {
	Token string `json:"token" validate:"required"`
}
