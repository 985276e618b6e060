package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memOutbox struct {
	entries []*models.OutboxEntry
}

func (m *memOutbox) Enqueue(ctx context.Context, entry *models.OutboxEntry) error {
	entry.ID = primitive.NewObjectID()
	entry.Status = models.OutboxStatusPending
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memOutbox) NextBatch(ctx context.Context, limit int64) ([]models.OutboxEntry, error) {
	var out []models.OutboxEntry
	for _, entry := range m.entries {
		if entry.Status != models.OutboxStatusPending {
			continue
		}
		entry.Attempts++
		out = append(out, *entry)
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (m *memOutbox) MarkDelivered(ctx context.Context, id primitive.ObjectID) error {
	for _, entry := range m.entries {
		if entry.ID == id {
			now := time.Now()
			entry.Status = models.OutboxStatusDelivered
			entry.DeliveredAt = &now
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memOutbox) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	for _, entry := range m.entries {
		if entry.ID == id {
			entry.Status = models.OutboxStatusFailed
			return nil
		}
	}
	return repositories.ErrNotFound
}

// memMailbox is a NotificationRepository that only supports the dispatcher's
// write path. insertErr, when set, makes every insert fail.
type memMailbox struct {
	notifications []*models.Notification
	opIDs         map[string]bool
	insertErr     error
}

func newMemMailbox() *memMailbox {
	return &memMailbox{opIDs: make(map[string]bool)}
}

func (m *memMailbox) InsertFromOutbox(ctx context.Context, entry *models.OutboxEntry) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.opIDs[entry.OpID] {
		return repositories.ErrConflict
	}
	m.opIDs[entry.OpID] = true
	m.notifications = append(m.notifications, &models.Notification{
		ID:          primitive.NewObjectID(),
		OpID:        entry.OpID,
		RecipientID: entry.RecipientID,
		SenderID:    entry.SenderID,
		Type:        entry.Type,
		Message:     entry.Message,
		RelatedID:   entry.RelatedID,
		Date:        time.Now(),
	})
	return nil
}

func (m *memMailbox) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID, page, limit int64) ([]models.Notification, int64, error) {
	return nil, 0, nil
}

func (m *memMailbox) GetUnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return 0, nil
}

func (m *memMailbox) MarkAsRead(ctx context.Context, notificationID primitive.ObjectID) error {
	return nil
}

func (m *memMailbox) MarkAllAsRead(ctx context.Context, recipientID primitive.ObjectID) error {
	return nil
}

type memUsers struct{}

func (memUsers) CreateUser(ctx context.Context, user *models.User) error { return nil }
func (memUsers) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (memUsers) GetUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (memUsers) PushFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID, direction string) error {
	return nil
}
func (memUsers) PullFriendRequest(ctx context.Context, userID, otherID primitive.ObjectID) error {
	return nil
}
func (memUsers) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error { return nil }
func (memUsers) ToggleBan(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (memUsers) AddDeviceToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return nil
}

func newTestDispatcher(outbox *memOutbox, mailbox *memMailbox) *Dispatcher {
	return NewDispatcher(outbox, mailbox, memUsers{}, nil, time.Millisecond, zap.NewNop())
}

func TestNotifyAssignsDistinctOpIDs(t *testing.T) {
	outbox := &memOutbox{}
	n := New(outbox, zap.NewNop())

	recipient := primitive.NewObjectID()
	n.Notify(context.Background(), recipient, nil, models.NotificationReportUpdate, "one", nil)
	n.Notify(context.Background(), recipient, nil, models.NotificationReportUpdate, "one", nil)

	require.Len(t, outbox.entries, 2)
	assert.NotEmpty(t, outbox.entries[0].OpID)
	assert.NotEqual(t, outbox.entries[0].OpID, outbox.entries[1].OpID)
	assert.Equal(t, models.OutboxStatusPending, outbox.entries[0].Status)
}

func TestDrainDeliversPending(t *testing.T) {
	outbox := &memOutbox{}
	mailbox := newMemMailbox()
	n := New(outbox, zap.NewNop())

	recipient := primitive.NewObjectID()
	sender := primitive.NewObjectID()
	n.Notify(context.Background(), recipient, &sender, models.NotificationFriendRequest, "sent you a friend request", &sender)

	d := newTestDispatcher(outbox, mailbox)
	require.NoError(t, d.Drain(context.Background()))

	require.Len(t, mailbox.notifications, 1)
	got := mailbox.notifications[0]
	assert.Equal(t, recipient, got.RecipientID)
	assert.Equal(t, models.NotificationFriendRequest, got.Type)
	assert.False(t, got.IsRead)

	assert.Equal(t, models.OutboxStatusDelivered, outbox.entries[0].Status)
	assert.NotNil(t, outbox.entries[0].DeliveredAt)

	// Nothing left to do on the next tick.
	require.NoError(t, d.Drain(context.Background()))
	assert.Len(t, mailbox.notifications, 1)
}

func TestDrainRedeliveryDoesNotDuplicate(t *testing.T) {
	outbox := &memOutbox{}
	mailbox := newMemMailbox()
	n := New(outbox, zap.NewNop())

	n.Notify(context.Background(), primitive.NewObjectID(), nil, models.NotificationReportUpdate, "resolved", nil)

	// Simulate a crash between the mailbox insert and the delivered mark: the
	// notification exists but the entry is still pending.
	require.NoError(t, mailbox.InsertFromOutbox(context.Background(), outbox.entries[0]))
	require.Len(t, mailbox.notifications, 1)

	d := newTestDispatcher(outbox, mailbox)
	require.NoError(t, d.Drain(context.Background()))

	assert.Len(t, mailbox.notifications, 1)
	assert.Equal(t, models.OutboxStatusDelivered, outbox.entries[0].Status)
}

func TestDrainRetriesUntilMaxAttempts(t *testing.T) {
	outbox := &memOutbox{}
	mailbox := newMemMailbox()
	mailbox.insertErr = errors.New("mailbox unavailable")
	n := New(outbox, zap.NewNop())

	n.Notify(context.Background(), primitive.NewObjectID(), nil, models.NotificationReportUpdate, "resolved", nil)

	d := newTestDispatcher(outbox, mailbox)
	for i := 0; i < maxAttempts-1; i++ {
		require.NoError(t, d.Drain(context.Background()))
		assert.Equal(t, models.OutboxStatusPending, outbox.entries[0].Status)
	}

	// The attempt that reaches the cap parks the entry as failed.
	require.NoError(t, d.Drain(context.Background()))
	assert.Equal(t, maxAttempts, outbox.entries[0].Attempts)
	assert.Equal(t, models.OutboxStatusFailed, outbox.entries[0].Status)
	assert.Empty(t, mailbox.notifications)

	// Recovery after the store comes back: failed entries stay parked.
	mailbox.insertErr = nil
	require.NoError(t, d.Drain(context.Background()))
	assert.Empty(t, mailbox.notifications)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	outbox := &memOutbox{}
	mailbox := newMemMailbox()
	d := newTestDispatcher(outbox, mailbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
}
