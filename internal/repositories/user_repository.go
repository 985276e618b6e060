package repositories

import (
	"context"
	"time"

	"github.com/trailfund/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository defines the interface for user data operations. The friend
// mutations are single-document conditional updates so duplicate requests and
// double-adds are rejected by the store, not by an application-level check.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error)
	PushFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID, direction string) error
	PullFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID) error
	AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error
	ToggleBan(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	AddDeviceToken(ctx context.Context, id primitive.ObjectID, token string) error
}

// MongoUserRepository implements UserRepository for MongoDB
type MongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new MongoUserRepository
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{collection: db.Collection("users")}
}

// CreateUser creates a new user. The unique indexes on username and email
// turn duplicate signups into ErrConflict.
func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.DateCreated = time.Now()
	if user.Friends == nil {
		user.Friends = []primitive.ObjectID{}
	}
	if user.FriendRequests == nil {
		user.FriendRequests = []models.FriendRequestEntry{}
	}
	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

// GetUserByID retrieves a user by ID
func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByIdentifier retrieves a user by username or email
func (r *MongoUserRepository) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}
	var user models.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// PushFriendRequest appends a friend_requests entry for otherID. The filter
// only matches when the pair is not already friends and has no outstanding
// entry, so a concurrent duplicate loses the race and gets ErrConflict.
func (r *MongoUserRepository) PushFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID, direction string) error {
	filter := bson.M{
		"_id":                     userID,
		"friends":                 bson.M{"$ne": otherID},
		"friend_requests.user_id": bson.M{"$ne": otherID},
	}
	update := bson.M{"$push": bson.M{"friend_requests": models.FriendRequestEntry{
		UserID:    otherID,
		Direction: direction,
		Date:      time.Now(),
	}}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// PullFriendRequest removes the friend_requests entry matching otherID,
// wherever it sits in the sequence. Removing an absent entry is a no-op.
func (r *MongoUserRepository) PullFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	update := bson.M{"$pull": bson.M{"friend_requests": bson.M{"user_id": otherID}}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFriend adds friendID to the friends set and clears the pair's pending
// entry in one document update. $addToSet keeps the operation idempotent.
func (r *MongoUserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"friends": friendID},
		"$pull":     bson.M{"friend_requests": bson.M{"user_id": friendID}},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleBan flips a user between active and banned and returns the updated user
func (r *MongoUserRepository) ToggleBan(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := models.UserStatusBanned
	if user.Status == models.UserStatusBanned {
		next = models.UserStatusActive
	}
	// Guard on the status we read so concurrent toggles cannot double-flip.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": user.Status},
		bson.M{"$set": bson.M{"status": next}})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrConflict
	}
	user.Status = next
	return user, nil
}

// AddDeviceToken registers a push token on the user document
func (r *MongoUserRepository) AddDeviceToken(ctx context.Context, id primitive.ObjectID, token string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"device_tokens": token}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
