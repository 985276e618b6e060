package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fulfillment is one "I'm interested" registration on a resource request,
// at most one per distinct user.
type Fulfillment struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date   time.Time          `bson:"date" json:"date"`
}

// Request represents a resource ask (MongoDB, "requests" collection)
type Request struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Fulfillments []Fulfillment      `bson:"fulfillments" json:"fulfillments"`
	DateCreated  time.Time          `bson:"date_created" json:"date_created"`
}
