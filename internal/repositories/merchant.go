package repositories

import (
	"errors"
	"fmt"

	"vendora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MerchantRepository interface {
	Create(merchant *models.Merchant) error
	GetByID(id uint) (*models.Merchant, error)
	GetByUserID(userID uint) (*models.Merchant, error)
	GetForUpdate(id uint) (*models.Merchant, error)
	Update(merchant *models.Merchant) error
	WithTx(tx *gorm.DB) MerchantRepository
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) Create(merchant *models.Merchant) error {
	if err := r.db.Create(merchant).Error; err != nil {
		return fmt.Errorf("failed to create merchant: %w", err)
	}
	return nil
}

func (r *merchantRepository) GetByID(id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.First(&merchant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

func (r *merchantRepository) GetByUserID(userID uint) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.Where("user_id = ?", userID).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to get merchant: %w", err)
	}
	return &merchant, nil
}

// GetForUpdate locks the merchant row; used by escrow transitions and
// promotion stacking so concurrent updates serialize.
func (r *merchantRepository) GetForUpdate(id uint) (*models.Merchant, error) {
	var merchant models.Merchant
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&merchant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("failed to lock merchant: %w", err)
	}
	return &merchant, nil
}

func (r *merchantRepository) Update(merchant *models.Merchant) error {
	if err := r.db.Save(merchant).Error; err != nil {
		return fmt.Errorf("failed to update merchant: %w", err)
	}
	return nil
}

func (r *merchantRepository) WithTx(tx *gorm.DB) MerchantRepository {
	return &merchantRepository{db: tx}
}
