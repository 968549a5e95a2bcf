package billing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func subscriptionEvent(t *testing.T, eventType string) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"id":       "sub_123",
		"status":   "active",
		"customer": map[string]any{"id": "cus_123"},
		"items": map[string]any{
			"data": []map[string]any{
				{"price": map[string]any{"id": "price_team_123"}},
			},
		},
		"metadata": map[string]string{"shop_id": "shop_abc"},
	})
	require.NoError(t, err)
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestWebhook_InvalidSignature(t *testing.T) {
	client := NewClientWithProvider(testConfig(), &MockStripeProvider{})
	verifier := &MockWebhookVerifier{
		ConstructEventFn: func(payload []byte, header, secret string) (stripe.Event, error) {
			return stripe.Event{}, fmt.Errorf("signature mismatch")
		},
	}
	handler := NewWebhookHandlerWithVerifier(client, verifier, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader("{}"))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhook_SubscriptionUpdated(t *testing.T) {
	client := NewClientWithProvider(testConfig(), &MockStripeProvider{})
	verifier := &MockWebhookVerifier{
		ConstructEventFn: func(payload []byte, header, secret string) (stripe.Event, error) {
			return subscriptionEvent(t, "customer.subscription.updated"), nil
		},
	}

	var got WebhookEvent
	handler := NewWebhookHandlerWithVerifier(client, verifier, func(event WebhookEvent) error {
		got = event
		return nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader("{}"))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "customer.subscription.updated", got.Type)
	assert.Equal(t, "cus_123", got.CustomerID)
	assert.Equal(t, "sub_123", got.SubscriptionID)
	assert.Equal(t, "active", got.SubscriptionStatus)
	assert.Equal(t, "price_team_123", got.PriceID)
	assert.Equal(t, "shop_abc", got.ShopID)
}

func TestWebhook_UnhandledEventType(t *testing.T) {
	client := NewClientWithProvider(testConfig(), &MockStripeProvider{})
	verifier := &MockWebhookVerifier{
		ConstructEventFn: func(payload []byte, header, secret string) (stripe.Event, error) {
			return stripe.Event{Type: "customer.created", Data: &stripe.EventData{Raw: []byte("{}")}}, nil
		},
	}

	called := false
	handler := NewWebhookHandlerWithVerifier(client, verifier, func(event WebhookEvent) error {
		called = true
		return nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader("{}"))
	handler.ServeHTTP(rec, req)

	// Unhandled types are acknowledged without invoking the callback.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called)
}

func TestWebhook_HandlerError(t *testing.T) {
	client := NewClientWithProvider(testConfig(), &MockStripeProvider{})
	verifier := &MockWebhookVerifier{
		ConstructEventFn: func(payload []byte, header, secret string) (stripe.Event, error) {
			return subscriptionEvent(t, "customer.subscription.deleted"), nil
		},
	}
	handler := NewWebhookHandlerWithVerifier(client, verifier, func(event WebhookEvent) error {
		return fmt.Errorf("db write failed")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader("{}"))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRelevantEventTypes(t *testing.T) {
	types := RelevantEventTypes()
	assert.Contains(t, types, "checkout.session.completed")
	assert.Contains(t, types, "customer.subscription.deleted")
	assert.Len(t, types, 6)
}
