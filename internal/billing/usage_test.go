package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilpajak/crankshaft/internal/database"
)

func TestGetUsageStats_FreeTier(t *testing.T) {
	shopID := uuid.New()
	db := &MockUsageDB{
		GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
			return &database.Shop{ID: id, Tier: TierFree}, nil
		},
		CountShopRunsSinceFn: func(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error) {
			return 10, nil
		},
	}

	uc := NewUsageChecker(db)
	stats, err := uc.GetUsageStats(context.Background(), shopID)
	require.NoError(t, err)

	assert.Equal(t, TierFree, stats.Tier)
	assert.Equal(t, 10, stats.UsedThisMonth)
	assert.Equal(t, 25, stats.Limit)
	assert.Equal(t, 15, stats.Remaining)
}

func TestGetUsageStats_Unlimited(t *testing.T) {
	db := &MockUsageDB{
		GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
			return &database.Shop{ID: id, Tier: TierEnterprise}, nil
		},
		CountShopRunsSinceFn: func(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error) {
			return 99999, nil
		},
	}

	uc := NewUsageChecker(db)
	stats, err := uc.GetUsageStats(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, -1, stats.Limit)
	assert.Equal(t, -1, stats.Remaining)
}

func TestGetUsageStats_OverLimit(t *testing.T) {
	db := &MockUsageDB{
		GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
			return &database.Shop{ID: id, Tier: TierFree}, nil
		},
		CountShopRunsSinceFn: func(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error) {
			return 30, nil
		},
	}

	uc := NewUsageChecker(db)
	stats, err := uc.GetUsageStats(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 0, stats.Remaining)
}

func TestGetUsageStats_ShopNotFound(t *testing.T) {
	db := &MockUsageDB{
		GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
			return nil, nil
		},
	}

	uc := NewUsageChecker(db)
	_, err := uc.GetUsageStats(context.Background(), uuid.New())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "shop not found")
}

func TestCanDiagnose(t *testing.T) {
	tests := []struct {
		name string
		tier string
		used int
		want bool
	}{
		{"free under limit", TierFree, 5, true},
		{"free at limit", TierFree, 25, false},
		{"free over limit", TierFree, 40, false},
		{"team under limit", TierTeam, 999, true},
		{"team at limit", TierTeam, 1000, false},
		{"enterprise always", TierEnterprise, 1000000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &MockUsageDB{
				GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
					return &database.Shop{ID: id, Tier: tt.tier}, nil
				},
				CountShopRunsSinceFn: func(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error) {
					return tt.used, nil
				},
			}

			uc := NewUsageChecker(db)
			can, err := uc.CanDiagnose(context.Background(), uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tt.want, can)
		})
	}
}

func TestCheckLimit_Exceeded(t *testing.T) {
	db := &MockUsageDB{
		GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
			return &database.Shop{ID: id, Tier: TierFree}, nil
		},
		CountShopRunsSinceFn: func(ctx context.Context, shopID uuid.UUID, since time.Time) (int, error) {
			return 25, nil
		},
	}

	uc := NewUsageChecker(db)
	err := uc.CheckLimit(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, IsLimitExceeded(err))

	var limitErr *LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, TierFree, limitErr.Tier)
	assert.Equal(t, 25, limitErr.Used)
}

func TestCheckLimit_DBError(t *testing.T) {
	db := &MockUsageDB{
		GetShopByIDFn: func(ctx context.Context, id uuid.UUID) (*database.Shop, error) {
			return nil, fmt.Errorf("connection refused")
		},
	}

	uc := NewUsageChecker(db)
	err := uc.CheckLimit(context.Background(), uuid.New())
	require.Error(t, err)
	assert.False(t, IsLimitExceeded(err))
}

func TestIsLimitExceeded_OtherError(t *testing.T) {
	assert.False(t, IsLimitExceeded(fmt.Errorf("some error")))
	assert.False(t, IsLimitExceeded(nil))
}
