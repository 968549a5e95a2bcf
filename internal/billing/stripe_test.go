package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testConfig() Config {
	return Config{
		SecretKey:     "sk_test_fake",
		WebhookSecret: "whsec_fake",
		PriceIDs: PriceIDs{
			Team:       "price_team_123",
			Enterprise: "price_ent_456",
		},
	}
}

func TestTierFromPriceID(t *testing.T) {
	client := NewClientWithProvider(testConfig(), &MockStripeProvider{})

	assert.Equal(t, TierTeam, client.TierFromPriceID("price_team_123"))
	assert.Equal(t, TierEnterprise, client.TierFromPriceID("price_ent_456"))
	assert.Equal(t, TierFree, client.TierFromPriceID("price_unknown"))
	assert.Equal(t, TierFree, client.TierFromPriceID(""))
}

func TestPriceIDFromTier(t *testing.T) {
	client := NewClientWithProvider(testConfig(), &MockStripeProvider{})

	assert.Equal(t, "price_team_123", client.PriceIDFromTier(TierTeam))
	assert.Equal(t, "price_ent_456", client.PriceIDFromTier(TierEnterprise))
	assert.Empty(t, client.PriceIDFromTier(TierFree))
	assert.Empty(t, client.PriceIDFromTier("bogus"))
}

func TestUsageLimits(t *testing.T) {
	assert.Equal(t, 25, UsageLimits[TierFree])
	assert.Equal(t, 1000, UsageLimits[TierTeam])
	assert.Equal(t, -1, UsageLimits[TierEnterprise])
}
