package repositories

import (
	"context"

	"github.com/trailfund/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReportRepository defines the interface for report data operations
type ReportRepository interface {
	GetReports(ctx context.Context) ([]models.Report, error)
	Resolve(ctx context.Context, id primitive.ObjectID, action string) (*models.Report, error)
}

// MongoReportRepository implements ReportRepository for MongoDB
type MongoReportRepository struct {
	collection *mongo.Collection
}

// NewMongoReportRepository creates a new MongoReportRepository
func NewMongoReportRepository(db *mongo.Database) *MongoReportRepository {
	return &MongoReportRepository{collection: db.Collection("reports")}
}

// GetReports retrieves all reports, newest first
func (r *MongoReportRepository) GetReports(ctx context.Context) ([]models.Report, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date_reported", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err = cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Resolve records the action taken on a report. Only reports still at
// action_taken=none match; a second resolution attempt returns ErrConflict
// and leaves the original action in place.
func (r *MongoReportRepository) Resolve(ctx context.Context, id primitive.ObjectID, action string) (*models.Report, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var report models.Report
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "action_taken": models.ReportActionNone},
		bson.M{"$set": bson.M{"action_taken": action}}, opts).Decode(&report)
	if err == mongo.ErrNoDocuments {
		if getErr := r.collection.FindOne(ctx, bson.M{"_id": id}).Err(); getErr == nil {
			return nil, ErrConflict
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
