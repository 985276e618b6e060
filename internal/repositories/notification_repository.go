package repositories

import (
	"context"

	"github.com/trailfund/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for the mailbox surface.
// Insertion happens only via the outbox dispatcher; the read-state flips are
// idempotent single-document updates.
type NotificationRepository interface {
	InsertFromOutbox(ctx context.Context, entry *models.OutboxEntry) error
	GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
	MarkAsRead(ctx context.Context, notificationID primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

// InsertFromOutbox materializes an outbox entry as a mailbox document. The
// unique index on op_id makes redelivery safe: a duplicate insert reports
// ErrConflict, which the dispatcher treats as already delivered.
func (r *MongoNotificationRepository) InsertFromOutbox(ctx context.Context, entry *models.OutboxEntry) error {
	notification := models.Notification{
		ID:          primitive.NewObjectID(),
		OpID:        entry.OpID,
		RecipientID: entry.RecipientID,
		SenderID:    entry.SenderID,
		Type:        entry.Type,
		Message:     entry.Message,
		RelatedID:   entry.RelatedID,
		IsRead:      false,
		Date:        entry.CreatedAt,
	}
	_, err := r.collection.InsertOne(ctx, notification)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	return err
}

// GetByRecipientID retrieves a page of a user's notifications, newest first
func (r *MongoNotificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient_id": recipientID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// GetUnreadCount counts a user's unread notifications
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

// MarkAsRead flips is_read to true. Already-read notifications are a no-op,
// not an error; an unknown id is ErrNotFound.
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, notificationID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": notificationID},
		bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllAsRead flips all of one recipient's unread notifications
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"recipient_id": recipientID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}})
	return err
}
