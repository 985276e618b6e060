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

// OutboxRepository defines the interface for the notification outbox
type OutboxRepository interface {
	Enqueue(ctx context.Context, entry *models.OutboxEntry) error
	NextBatch(ctx context.Context, limit int64) ([]models.OutboxEntry, error)
	MarkDelivered(ctx context.Context, id primitive.ObjectID) error
	MarkFailed(ctx context.Context, id primitive.ObjectID) error
}

// MongoOutboxRepository implements OutboxRepository for MongoDB
type MongoOutboxRepository struct {
	collection *mongo.Collection
}

// NewMongoOutboxRepository creates a new MongoOutboxRepository
func NewMongoOutboxRepository(db *mongo.Database) *MongoOutboxRepository {
	return &MongoOutboxRepository{collection: db.Collection("notification_outbox")}
}

// Enqueue stages an entry for delivery
func (r *MongoOutboxRepository) Enqueue(ctx context.Context, entry *models.OutboxEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.Status = models.OutboxStatusPending
	entry.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

// NextBatch claims up to limit pending entries, oldest first, bumping their
// attempt counters. Claimed entries stay pending until marked, so a crashed
// dispatcher run redelivers them on the next pass.
func (r *MongoOutboxRepository) NextBatch(ctx context.Context, limit int64) ([]models.OutboxEntry, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.OutboxStatusPending}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []models.OutboxEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}

	for i := range entries {
		if _, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": entries[i].ID},
			bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
			return nil, err
		}
		entries[i].Attempts++
	}
	return entries, nil
}

// MarkDelivered finalizes a delivered entry
func (r *MongoOutboxRepository) MarkDelivered(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.OutboxStatusDelivered, "delivered_at": now}})
	return err
}

// MarkFailed parks an entry that exhausted its attempt budget
func (r *MongoOutboxRepository) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": models.OutboxStatusFailed}})
	return err
}
