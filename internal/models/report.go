package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report actions. ActionNone only ever transitions forward; a resolved report
// never goes back to none.
const (
	ReportActionNone      = "none"
	ReportActionWarned    = "warned"
	ReportActionSuspended = "suspended"
	ReportActionRemoved   = "removed"
)

// Report represents a user report against a post, campaign or request
// (MongoDB, "reports" collection). Exactly one of the target references is set.
type Report struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"` // reporter
	PostID       *primitive.ObjectID `bson:"post_id,omitempty" json:"post_id,omitempty"`
	CampaignID   *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaign_id,omitempty"`
	RequestID    *primitive.ObjectID `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Reason       string              `bson:"reason,omitempty" json:"reason,omitempty"`
	ActionTaken  string              `bson:"action_taken" json:"action_taken"`
	DateReported time.Time           `bson:"date_reported" json:"date_reported"`
}

// ResolveReportRequest defines the request body for taking action on a report
type ResolveReportRequest struct {
	Action string `json:"action" validate:"required,oneof=warned suspended removed"`
}
