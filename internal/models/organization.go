package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Organization verification states.
const (
	OrganizationStatusPending  = "pending"
	OrganizationStatusApproved = "approved"
)

// Organization represents a campus organization awaiting verification
// (MongoDB, "organizations" collection)
type Organization struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	RepresentativeUserID primitive.ObjectID `bson:"representative_user_id" json:"representative_user_id"`
	Status               string             `bson:"status" json:"status"`
	DateCreated          time.Time          `bson:"date_created" json:"date_created"`
}
