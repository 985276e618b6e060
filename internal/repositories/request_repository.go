package repositories

import (
	"context"
	"time"

	"github.com/trailfund/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RequestRepository defines the interface for resource-request data operations
type RequestRepository interface {
	GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error)
	AddFulfillment(ctx context.Context, requestID, userID primitive.ObjectID) (*models.Request, error)
}

// MongoRequestRepository implements RequestRepository for MongoDB
type MongoRequestRepository struct {
	collection *mongo.Collection
}

// NewMongoRequestRepository creates a new MongoRequestRepository
func NewMongoRequestRepository(db *mongo.Database) *MongoRequestRepository {
	return &MongoRequestRepository{collection: db.Collection("requests")}
}

// GetRequestByID retrieves a request by ID
func (r *MongoRequestRepository) GetRequestByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var request models.Request
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// AddFulfillment registers a user's interest exactly once. The filter
// excludes documents that already carry the user, so a duplicate registration
// returns ErrConflict even under concurrent callers.
func (r *MongoRequestRepository) AddFulfillment(ctx context.Context, requestID, userID primitive.ObjectID) (*models.Request, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var request models.Request
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": requestID, "fulfillments.user_id": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"fulfillments": models.Fulfillment{UserID: userID, Date: time.Now()}}},
		opts).Decode(&request)
	if err == mongo.ErrNoDocuments {
		if getErr := r.collection.FindOne(ctx, bson.M{"_id": requestID}).Err(); getErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}
