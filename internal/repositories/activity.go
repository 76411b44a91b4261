package repositories

import (
	"errors"
	"fmt"
	"time"

	"vendora/internal/models"

	"gorm.io/gorm"
)

// ActivityRepository persists the per-user action records backing the rules
// engine: check-in streaks, referrals, and paid contact reveals. Uniqueness is
// enforced by database indexes, not application checks; Create methods surface
// the corresponding sentinel on a duplicate insert.
type ActivityRepository interface {
	GetLatestCheckIn(userID uint) (*models.CheckInRecord, error)
	CreateCheckIn(rec *models.CheckInRecord) error

	CreateReferral(rec *models.ReferralRecord) error

	HasRevealToday(viewerID, merchantID uint, day time.Time) (bool, error)
	CreateReveal(rec *models.ContactReveal) error

	WithTx(tx *gorm.DB) ActivityRepository
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) GetLatestCheckIn(userID uint) (*models.CheckInRecord, error) {
	var rec models.CheckInRecord
	err := r.db.Where("user_id = ?", userID).
		Order("check_in_date DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest check-in: %w", err)
	}
	return &rec, nil
}

func (r *activityRepository) CreateCheckIn(rec *models.CheckInRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyCheckedIn
		}
		return fmt.Errorf("failed to create check-in: %w", err)
	}
	return nil
}

func (r *activityRepository) CreateReferral(rec *models.ReferralRecord) error {
	if err := r.db.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyReferred
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *activityRepository) HasRevealToday(viewerID, merchantID uint, day time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.ContactReveal{}).
		Where("viewer_id = ? AND merchant_id = ? AND reveal_date = ?", viewerID, merchantID, day).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check reveal: %w", err)
	}
	return count > 0, nil
}

func (r *activityRepository) CreateReveal(rec *models.ContactReveal) error {
	if err := r.db.Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyRevealed
		}
		return fmt.Errorf("failed to create reveal record: %w", err)
	}
	return nil
}

func (r *activityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	return &activityRepository{db: tx}
}
