package repositories

import (
	"context"
	"errors"
	"fmt"

	"vendora/internal/config"
	"vendora/internal/models"

	"gorm.io/gorm"
)

// SettingsRepository exposes the platform settings row as immutable
// snapshots. Services read exactly one snapshot per logical operation.
type SettingsRepository interface {
	Snapshot(ctx context.Context) (config.Settings, error)
	Seed() error
}

type settingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Snapshot(ctx context.Context) (config.Settings, error) {
	var row models.PlatformSettings
	if err := r.db.WithContext(ctx).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return config.Settings{}, ErrSettingsNotFound
		}
		return config.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	return config.Settings{
		Version:                     row.Version,
		RegistrationBonus:           row.RegistrationBonus,
		CheckInBase:                 row.CheckInBase,
		CheckInWeeklyBonus:          row.CheckInWeeklyBonus,
		CheckInMonthlyBonus:         row.CheckInMonthlyBonus,
		ContactRevealCustomerCost:   row.ContactRevealCustomerCost,
		ContactRevealMerchantCost:   row.ContactRevealMerchantCost,
		ContactRevealMerchantDeduct: row.ContactRevealMerchantDeduct,
		ReferralInviterReward:       row.ReferralInviterReward,
		ReferralInviteeReward:       row.ReferralInviteeReward,
		PromotionCostPerDay:         row.PromotionCostPerDay,
		DepositDailyReward:          row.DepositDailyReward,
		DepositApprovalBonus:        row.DepositApprovalBonus,
		RefundFeeRateEarly:          row.RefundFeeRateEarly,
		RefundFeeRateLate:           row.RefundFeeRateLate,
		RefundFeeTierMonths:         row.RefundFeeTierMonths,
		ViolationPlatformShare:      row.ViolationPlatformShare,
	}, nil
}

// Seed inserts the default settings row if none exists.
func (r *settingsRepository) Seed() error {
	var count int64
	if err := r.db.Model(&models.PlatformSettings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count settings rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	defaults := config.DefaultSettings()
	row := models.PlatformSettings{
		Version:                     defaults.Version,
		RegistrationBonus:           defaults.RegistrationBonus,
		CheckInBase:                 defaults.CheckInBase,
		CheckInWeeklyBonus:          defaults.CheckInWeeklyBonus,
		CheckInMonthlyBonus:         defaults.CheckInMonthlyBonus,
		ContactRevealCustomerCost:   defaults.ContactRevealCustomerCost,
		ContactRevealMerchantCost:   defaults.ContactRevealMerchantCost,
		ContactRevealMerchantDeduct: defaults.ContactRevealMerchantDeduct,
		ReferralInviterReward:       defaults.ReferralInviterReward,
		ReferralInviteeReward:       defaults.ReferralInviteeReward,
		PromotionCostPerDay:         defaults.PromotionCostPerDay,
		DepositDailyReward:          defaults.DepositDailyReward,
		DepositApprovalBonus:        defaults.DepositApprovalBonus,
		RefundFeeRateEarly:          defaults.RefundFeeRateEarly,
		RefundFeeRateLate:           defaults.RefundFeeRateLate,
		RefundFeeTierMonths:         defaults.RefundFeeTierMonths,
		ViolationPlatformShare:      defaults.ViolationPlatformShare,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	return nil
}
