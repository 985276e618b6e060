package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign review states. Revision-requested is its own status so the review
// state machine has no hidden sub-state behind admin_feedback.
const (
	CampaignStatusPending           = "pending"
	CampaignStatusRevisionRequested = "revision_requested"
	CampaignStatusApproved          = "approved"
	CampaignStatusRejected          = "rejected"
)

// Campaign represents a fundraising campaign (MongoDB, "campaigns" collection).
// ApprovedByID is set if and only if Status is approved; Raised only ever
// grows, and only through verified donations.
type Campaign struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	DonationType  string              `bson:"donation_type,omitempty" json:"donation_type,omitempty"` // Digital, Items
	TargetAmount  float64             `bson:"target_amount" json:"target_amount"`
	Raised        float64             `bson:"raised" json:"raised"`
	Status        string              `bson:"status" json:"status"`
	AdminFeedback string              `bson:"admin_feedback,omitempty" json:"admin_feedback,omitempty"`
	ApprovedBy    string              `bson:"approved_by,omitempty" json:"approved_by,omitempty"` // name snapshot for display
	ApprovedByID  *primitive.ObjectID `bson:"approved_by_id,omitempty" json:"approved_by_id,omitempty"`
	DateApproved  *time.Time          `bson:"date_approved,omitempty" json:"date_approved,omitempty"`
	DateCreated   time.Time           `bson:"date_created" json:"date_created"`
}

// RejectCampaignRequest carries the rejection reason
type RejectCampaignRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ReviseCampaignRequest carries the revision feedback
type ReviseCampaignRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}
