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

// CampaignRepository defines the interface for campaign data operations.
// The review transitions are status-guarded single-document updates, so
// attribution fields and status always change together and a campaign that
// already left review cannot be re-reviewed.
type CampaignRepository interface {
	GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error)
	GetCampaignsUnderReview(ctx context.Context) ([]models.Campaign, error)
	Approve(ctx context.Context, id, adminID primitive.ObjectID, adminName string) (*models.Campaign, error)
	Reject(ctx context.Context, id primitive.ObjectID, reason string) (*models.Campaign, error)
	RequestRevision(ctx context.Context, id primitive.ObjectID, feedback string) (*models.Campaign, error)
	IncrementRaised(ctx context.Context, id primitive.ObjectID, amount float64) error
}

// MongoCampaignRepository implements CampaignRepository for MongoDB
type MongoCampaignRepository struct {
	collection *mongo.Collection
}

// NewMongoCampaignRepository creates a new MongoCampaignRepository
func NewMongoCampaignRepository(db *mongo.Database) *MongoCampaignRepository {
	return &MongoCampaignRepository{collection: db.Collection("campaigns")}
}

// statusUnderReview matches campaigns still in the review loop
var statusUnderReview = bson.M{"$in": bson.A{
	models.CampaignStatusPending,
	models.CampaignStatusRevisionRequested,
}}

// GetCampaignByID retrieves a campaign by ID
func (r *MongoCampaignRepository) GetCampaignByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetCampaignsUnderReview retrieves pending and revision-requested campaigns, newest first
func (r *MongoCampaignRepository) GetCampaignsUnderReview(ctx context.Context) ([]models.Campaign, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date_created", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"status": statusUnderReview}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var campaigns []models.Campaign
	if err = cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// transition applies a status-guarded review transition and returns the
// updated campaign. ErrConflict means the campaign exists but has already
// left review; ErrNotFound means there is no such campaign.
func (r *MongoCampaignRepository) transition(ctx context.Context, id primitive.ObjectID, set bson.M, unset bson.M) (*models.Campaign, error) {
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var campaign models.Campaign
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": statusUnderReview}, update, opts).Decode(&campaign)
	if err == mongo.ErrNoDocuments {
		if _, getErr := r.GetCampaignByID(ctx, id); getErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Approve transitions a campaign under review to approved, recording the
// reviewing admin and the approval date in the same update.
func (r *MongoCampaignRepository) Approve(ctx context.Context, id, adminID primitive.ObjectID, adminName string) (*models.Campaign, error) {
	now := time.Now()
	return r.transition(ctx, id,
		bson.M{
			"status":         models.CampaignStatusApproved,
			"approved_by":    adminName,
			"approved_by_id": adminID,
			"date_approved":  now,
		},
		bson.M{"admin_feedback": ""},
	)
}

// Reject transitions a campaign under review to rejected with the reason as feedback
func (r *MongoCampaignRepository) Reject(ctx context.Context, id primitive.ObjectID, reason string) (*models.Campaign, error) {
	return r.transition(ctx, id,
		bson.M{
			"status":         models.CampaignStatusRejected,
			"admin_feedback": reason,
		},
		nil,
	)
}

// RequestRevision moves a campaign under review to revision_requested,
// replacing any prior feedback. Repeatable; no feedback history is kept.
func (r *MongoCampaignRepository) RequestRevision(ctx context.Context, id primitive.ObjectID, feedback string) (*models.Campaign, error) {
	return r.transition(ctx, id,
		bson.M{
			"status":         models.CampaignStatusRevisionRequested,
			"admin_feedback": feedback,
		},
		nil,
	)
}

// IncrementRaised adds a verified donation's amount to the raised aggregate
func (r *MongoCampaignRepository) IncrementRaised(ctx context.Context, id primitive.ObjectID, amount float64) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"raised": amount}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
