package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles and account states.
const (
	RoleStudent = "student"
	RoleFaculty = "faculty"
	RoleAdmin   = "admin"

	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

// Friend request entry directions, stored on both sides of a pending pair.
const (
	FriendRequestSent     = "sent"
	FriendRequestReceived = "received"
)

// FriendRequestEntry is one outstanding friend request on a user document.
// The pair {A,B} has at most one entry on each side: a "received" entry on
// the target and a matching "sent" entry on the sender.
type FriendRequestEntry struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Direction string             `bson:"direction" json:"direction"`
	Date      time.Time          `bson:"date" json:"date"`
}

// User represents a platform member (MongoDB, "users" collection)
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Name           string               `bson:"name" json:"name"`
	Password       string               `bson:"password" json:"-"` // bcrypt hash, never serialized
	Role           string               `bson:"role" json:"role"`
	Status         string               `bson:"status" json:"status"`
	College        string               `bson:"college,omitempty" json:"college,omitempty"`
	ProfilePicture string               `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	Friends        []primitive.ObjectID `bson:"friends" json:"friends"`
	FriendRequests []FriendRequestEntry `bson:"friend_requests" json:"friend_requests"`
	DeviceTokens   []string             `bson:"device_tokens,omitempty" json:"-"`
	DateCreated    time.Time            `bson:"date_created" json:"date_created"`
}

// UserCompact is the trimmed representation embedded in other responses
type UserCompact struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Name           string             `json:"name"`
	ProfilePicture string             `json:"profile_picture,omitempty"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
	}
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Password string `json:"password" validate:"required,min=8"`
	College  string `json:"college,omitempty"`
}

// SigninRequest authenticates by username or email
type SigninRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"user_id"` // ObjectID hex
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
