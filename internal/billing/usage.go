package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/database"
)

// UsageDB defines the database operations needed by UsageChecker.
type UsageDB interface {
	GetShopByID(ctx context.Context, id uuid.UUID) (*database.Shop, error)
	CountShopRunsSince(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error)
}

// UsageChecker provides methods to check and enforce usage limits.
type UsageChecker struct {
	db UsageDB
}

// NewUsageChecker creates a new usage checker.
func NewUsageChecker(db UsageDB) *UsageChecker {
	return &UsageChecker{db: db}
}

// UsageStats contains current usage information for a shop.
type UsageStats struct {
	ShopID        uuid.UUID `json:"shop_id"`
	Tier          string    `json:"tier"`
	UsedThisMonth int       `json:"used_this_month"`
	Limit         int       `json:"limit"`
	Remaining     int       `json:"remaining"`
	ResetDate     time.Time `json:"reset_date"`
}

// GetUsageStats returns current usage statistics for a shop.
func (uc *UsageChecker) GetUsageStats(ctx context.Context, shopID uuid.UUID) (*UsageStats, error) {
	shop, err := uc.db.GetShopByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if shop == nil {
		return nil, fmt.Errorf("shop not found: %s", shopID)
	}

	// Limits reset on the first of each month.
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	count, err := uc.db.CountShopRunsSince(ctx, shopID, monthStart)
	if err != nil {
		return nil, err
	}

	limit := UsageLimits[shop.Tier]
	remaining := limit - count
	if limit == -1 {
		remaining = -1 // Unlimited
	} else if remaining < 0 {
		remaining = 0
	}

	return &UsageStats{
		ShopID:        shopID,
		Tier:          shop.Tier,
		UsedThisMonth: count,
		Limit:         limit,
		Remaining:     remaining,
		ResetDate:     nextMonth,
	}, nil
}

// CanDiagnose checks if a shop can run another diagnosis.
func (uc *UsageChecker) CanDiagnose(ctx context.Context, shopID uuid.UUID) (bool, error) {
	stats, err := uc.GetUsageStats(ctx, shopID)
	if err != nil {
		return false, err
	}

	// Unlimited tier
	if stats.Limit == -1 {
		return true, nil
	}

	return stats.Remaining > 0, nil
}

// CheckLimit verifies usage limits and returns an error if exceeded.
// This should be called before running a diagnosis.
func (uc *UsageChecker) CheckLimit(ctx context.Context, shopID uuid.UUID) error {
	can, err := uc.CanDiagnose(ctx, shopID)
	if err != nil {
		return err
	}
	if !can {
		stats, _ := uc.GetUsageStats(ctx, shopID)
		return &LimitExceededError{
			ShopID:    shopID,
			Tier:      stats.Tier,
			Limit:     stats.Limit,
			Used:      stats.UsedThisMonth,
			ResetDate: stats.ResetDate,
		}
	}
	return nil
}

// LimitExceededError is returned when a shop exceeds their usage limit.
type LimitExceededError struct {
	ShopID    uuid.UUID
	Tier      string
	Limit     int
	Used      int
	ResetDate time.Time
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf(
		"usage limit exceeded: %d/%d diagnoses used this month (tier: %s, resets: %s)",
		e.Used, e.Limit, e.Tier, e.ResetDate.Format("2006-01-02"),
	)
}

// IsLimitExceeded checks if an error is a LimitExceededError.
func IsLimitExceeded(err error) bool {
	_, ok := err.(*LimitExceededError)
	return ok
}
