package repositories

import (
	"errors"
	"fmt"

	"vendora/internal/models"

	"gorm.io/gorm"
)

// ApplicationRepository persists the three admin-mediated application kinds.
// The Create methods return ErrDuplicatePending when the partial unique index
// on pending status rejects a second concurrent submission.
type ApplicationRepository interface {
	CreateDepositApplication(app *models.DepositApplication) error
	GetDepositApplication(id uint) (*models.DepositApplication, error)
	UpdateDepositApplication(app *models.DepositApplication) error

	CreateTopUpApplication(app *models.DepositTopUpApplication) error
	GetTopUpApplication(id uint) (*models.DepositTopUpApplication, error)
	UpdateTopUpApplication(app *models.DepositTopUpApplication) error

	CreateRefundApplication(app *models.DepositRefundApplication) error
	GetRefundApplication(id uint) (*models.DepositRefundApplication, error)
	UpdateRefundApplication(app *models.DepositRefundApplication) error

	CreateViolation(v *models.DepositViolation) error

	// CreateOutboxEvent enqueues a notification in the same transaction as
	// the escrow transition it describes.
	CreateOutboxEvent(event *models.NotificationEvent) error

	WithTx(tx *gorm.DB) ApplicationRepository
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

// wrapCreate maps the duplicate-key translation from the pending partial
// index to ErrDuplicatePending.
func wrapCreate(err error, kind string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePending
	}
	return fmt.Errorf("failed to create %s application: %w", kind, err)
}

func (r *applicationRepository) CreateDepositApplication(app *models.DepositApplication) error {
	return wrapCreate(r.db.Create(app).Error, "deposit")
}

func (r *applicationRepository) GetDepositApplication(id uint) (*models.DepositApplication, error) {
	var app models.DepositApplication
	if err := r.db.First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get deposit application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) UpdateDepositApplication(app *models.DepositApplication) error {
	if err := r.db.Save(app).Error; err != nil {
		return fmt.Errorf("failed to update deposit application: %w", err)
	}
	return nil
}

func (r *applicationRepository) CreateTopUpApplication(app *models.DepositTopUpApplication) error {
	return wrapCreate(r.db.Create(app).Error, "top-up")
}

func (r *applicationRepository) GetTopUpApplication(id uint) (*models.DepositTopUpApplication, error) {
	var app models.DepositTopUpApplication
	if err := r.db.First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get top-up application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) UpdateTopUpApplication(app *models.DepositTopUpApplication) error {
	if err := r.db.Save(app).Error; err != nil {
		return fmt.Errorf("failed to update top-up application: %w", err)
	}
	return nil
}

func (r *applicationRepository) CreateRefundApplication(app *models.DepositRefundApplication) error {
	return wrapCreate(r.db.Create(app).Error, "refund")
}

func (r *applicationRepository) GetRefundApplication(id uint) (*models.DepositRefundApplication, error) {
	var app models.DepositRefundApplication
	if err := r.db.First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get refund application: %w", err)
	}
	return &app, nil
}

func (r *applicationRepository) UpdateRefundApplication(app *models.DepositRefundApplication) error {
	if err := r.db.Save(app).Error; err != nil {
		return fmt.Errorf("failed to update refund application: %w", err)
	}
	return nil
}

func (r *applicationRepository) CreateViolation(v *models.DepositViolation) error {
	if err := r.db.Create(v).Error; err != nil {
		return fmt.Errorf("failed to create violation record: %w", err)
	}
	return nil
}

func (r *applicationRepository) CreateOutboxEvent(event *models.NotificationEvent) error {
	if err := r.db.Create(event).Error; err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

func (r *applicationRepository) WithTx(tx *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: tx}
}
