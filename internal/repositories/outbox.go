package repositories

import (
	"context"
	"fmt"
	"time"

	"vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OutboxRepository is the dispatcher's view of the notification outbox.
type OutboxRepository interface {
	FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error)
	MarkDelivered(ctx context.Context, id uint) error
	MarkFailed(ctx context.Context, id uint, reason string) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// staleClaimAge is how long an event may sit in processing before another
// dispatcher assumes its claimant died and requeues it.
const staleClaimAge = 5 * time.Minute

// FetchPending claims a batch of undelivered events by flipping them to
// processing in one transaction. The row lock only covers the claim, so the
// status change is what keeps concurrent dispatchers off a batch while it is
// being delivered; SKIP LOCKED lets them poll without blocking on each other.
// Claims older than staleClaimAge are requeued first, which keeps delivery
// at-least-once when a dispatcher crashes mid-batch.
func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	var events []models.NotificationEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.NotificationEvent{}).
			Where("status = ? AND updated_at < ?", models.OutboxStatusProcessing, time.Now().Add(-staleClaimAge)).
			Update("status", models.OutboxStatusPending).Error; err != nil {
			return err
		}

		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", models.OutboxStatusPending).
			Order("created_at ASC").
			Limit(limit).
			Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		ids := make([]uint, len(events))
		for i, e := range events {
			ids[i] = e.ID
		}
		return tx.Model(&models.NotificationEvent{}).
			Where("id IN ?", ids).
			Update("status", models.OutboxStatusProcessing).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", err)
	}
	return events, nil
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, id uint) error {
	now := time.Now()
	err := r.db.WithContext(ctx).
		Model(&models.NotificationEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       models.OutboxStatusDelivered,
			"delivered_at": now,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark event delivered: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	err := r.db.WithContext(ctx).
		Model(&models.NotificationEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.OutboxStatusPending, // stays eligible for retry
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	return nil
}
