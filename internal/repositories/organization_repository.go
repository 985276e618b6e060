package repositories

import (
	"context"

	"github.com/trailfund/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrganizationRepository defines the interface for organization verification
type OrganizationRepository interface {
	GetPendingOrganizations(ctx context.Context) ([]models.Organization, error)
	Approve(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
}

// MongoOrganizationRepository implements OrganizationRepository for MongoDB
type MongoOrganizationRepository struct {
	collection *mongo.Collection
}

// NewMongoOrganizationRepository creates a new MongoOrganizationRepository
func NewMongoOrganizationRepository(db *mongo.Database) *MongoOrganizationRepository {
	return &MongoOrganizationRepository{collection: db.Collection("organizations")}
}

// GetPendingOrganizations retrieves organizations awaiting verification
func (r *MongoOrganizationRepository) GetPendingOrganizations(ctx context.Context) ([]models.Organization, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.OrganizationStatusPending})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []models.Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Approve transitions a pending organization to approved
func (r *MongoOrganizationRepository) Approve(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var org models.Organization
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.OrganizationStatusPending},
		bson.M{"$set": bson.M{"status": models.OrganizationStatusApproved}}, opts).Decode(&org)
	if err == mongo.ErrNoDocuments {
		if getErr := r.collection.FindOne(ctx, bson.M{"_id": id}).Err(); getErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}
