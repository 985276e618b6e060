package notifier

import (
	"context"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	defaultBatchSize = 50
	maxAttempts      = 10
)

// Dispatcher drains the notification outbox. Delivery is at-least-once: an
// entry is only marked delivered after the mailbox insert succeeds, and the
// insert itself is idempotent on op_id, so redelivering after a crash cannot
// duplicate a mailbox document. Push delivery is strictly best-effort on top.
type Dispatcher struct {
	outbox        repositories.OutboxRepository
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	push          *messaging.Client // nil when push is not configured
	interval      time.Duration
	logger        *zap.Logger
}

// NewDispatcher creates a Dispatcher. push may be nil.
func NewDispatcher(outbox repositories.OutboxRepository, notifications repositories.NotificationRepository, users repositories.UserRepository, push *messaging.Client, interval time.Duration, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:        outbox,
		notifications: notifications,
		users:         users,
		push:          push,
		interval:      interval,
		logger:        logger,
	}
}

// Run polls the outbox until ctx is cancelled
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Drain(ctx); err != nil {
				d.logger.Error("outbox drain failed", zap.Error(err))
			}
		}
	}
}

// Drain delivers one batch of pending entries
func (d *Dispatcher) Drain(ctx context.Context) error {
	entries, err := d.outbox.NextBatch(ctx, defaultBatchSize)
	if err != nil {
		return err
	}

	for i := range entries {
		entry := &entries[i]
		if err := d.deliver(ctx, entry); err != nil {
			d.logger.Warn("outbox delivery failed",
				zap.String("op_id", entry.OpID),
				zap.Int("attempts", entry.Attempts),
				zap.Error(err))
			if entry.Attempts >= maxAttempts {
				if err := d.outbox.MarkFailed(ctx, entry.ID); err != nil {
					d.logger.Error("outbox mark-failed failed", zap.String("op_id", entry.OpID), zap.Error(err))
				}
			}
		}
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, entry *models.OutboxEntry) error {
	err := d.notifications.InsertFromOutbox(ctx, entry)
	if err != nil && err != repositories.ErrConflict {
		return err
	}
	// ErrConflict means an earlier attempt already materialized this op_id;
	// the entry just needs to be finalized.
	if err == nil {
		d.sendPush(ctx, entry)
	}
	return d.outbox.MarkDelivered(ctx, entry.ID)
}

// sendPush forwards the notification to the recipient's registered devices
func (d *Dispatcher) sendPush(ctx context.Context, entry *models.OutboxEntry) {
	if d.push == nil {
		return
	}

	recipient, err := d.users.GetUserByID(ctx, entry.RecipientID)
	if err != nil || len(recipient.DeviceTokens) == 0 {
		return
	}

	_, err = d.push.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: recipient.DeviceTokens,
		Notification: &messaging.Notification{
			Title: "TrailFund",
			Body:  entry.Message,
		},
		Data: map[string]string{"type": entry.Type},
	})
	if err != nil {
		d.logger.Warn("push send failed",
			zap.String("op_id", entry.OpID),
			zap.String("recipient_id", entry.RecipientID.Hex()),
			zap.Error(err))
	}
}
