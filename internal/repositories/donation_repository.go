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

// DonationRepository defines the interface for donation data operations
type DonationRepository interface {
	CreateDonation(ctx context.Context, donation *models.Donation) error
	GetDonationsByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Donation, error)
	MarkVerified(ctx context.Context, campaignID, donationID primitive.ObjectID) (*models.Donation, error)
	MarkRejected(ctx context.Context, campaignID, donationID primitive.ObjectID) (*models.Donation, error)
}

// MongoDonationRepository implements DonationRepository for MongoDB
type MongoDonationRepository struct {
	collection *mongo.Collection
}

// NewMongoDonationRepository creates a new MongoDonationRepository
func NewMongoDonationRepository(db *mongo.Database) *MongoDonationRepository {
	return &MongoDonationRepository{collection: db.Collection("donations")}
}

// CreateDonation creates a donation in pending state
func (r *MongoDonationRepository) CreateDonation(ctx context.Context, donation *models.Donation) error {
	donation.ID = primitive.NewObjectID()
	donation.Status = models.DonationStatusPending
	donation.Date = time.Now()
	_, err := r.collection.InsertOne(ctx, donation)
	return err
}

// GetDonationsByCampaign retrieves a campaign's donations, newest first
func (r *MongoDonationRepository) GetDonationsByCampaign(ctx context.Context, campaignID primitive.ObjectID) ([]models.Donation, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"campaign_id": campaignID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var donations []models.Donation
	if err = cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

// settle flips a pending donation to the given terminal status. The filter
// matches only pending documents, so verifying an already-verified donation
// returns ErrConflict and the aggregate is never credited twice.
func (r *MongoDonationRepository) settle(ctx context.Context, campaignID, donationID primitive.ObjectID, status string) (*models.Donation, error) {
	now := time.Now()
	set := bson.M{"status": status}
	if status == models.DonationStatusVerified {
		set["date_verified"] = now
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var donation models.Donation
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": donationID, "campaign_id": campaignID, "status": models.DonationStatusPending},
		bson.M{"$set": set}, opts).Decode(&donation)
	if err == mongo.ErrNoDocuments {
		countErr := r.collection.FindOne(ctx, bson.M{"_id": donationID, "campaign_id": campaignID}).Err()
		if countErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// MarkVerified transitions a pending donation to verified
func (r *MongoDonationRepository) MarkVerified(ctx context.Context, campaignID, donationID primitive.ObjectID) (*models.Donation, error) {
	return r.settle(ctx, campaignID, donationID, models.DonationStatusVerified)
}

// MarkRejected transitions a pending donation to rejected
func (r *MongoDonationRepository) MarkRejected(ctx context.Context, campaignID, donationID primitive.ObjectID) (*models.Donation, error) {
	return r.settle(ctx, campaignID, donationID, models.DonationStatusRejected)
}
