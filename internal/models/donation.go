package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation verification states.
const (
	DonationStatusPending  = "pending"
	DonationStatusVerified = "verified"
	DonationStatusRejected = "rejected"
)

// Donation represents a pledged contribution to a campaign (MongoDB,
// "donations" collection). The amount is credited to the campaign's raised
// total exactly once, when the status flips pending -> verified.
type Donation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CampaignID   primitive.ObjectID `bson:"campaign_id" json:"campaign_id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Amount       float64            `bson:"amount,omitempty" json:"amount,omitempty"`
	ItemType     string             `bson:"item_type,omitempty" json:"item_type,omitempty"`
	Receipt      string             `bson:"receipt,omitempty" json:"receipt,omitempty"` // opaque receipt reference
	Status       string             `bson:"status" json:"status"`
	Date         time.Time          `bson:"date" json:"date"`
	DateVerified *time.Time         `bson:"date_verified,omitempty" json:"date_verified,omitempty"`
}

// SubmitDonationRequest defines the request body for pledging a donation.
// Either an amount or an item type must be present; the handler enforces that.
type SubmitDonationRequest struct {
	Amount   float64 `json:"amount" validate:"omitempty,gt=0"`
	ItemType string  `json:"item_type,omitempty"`
	Receipt  string  `json:"receipt,omitempty"`
}
