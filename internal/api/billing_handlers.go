package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/billing"
)

// handleGetUsage returns usage statistics for a shop.
func (s *Server) handleGetUsage(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.requireShopOwner(w, r)
	if !ok {
		return
	}

	stats, err := s.usageChecker.GetUsageStats(r.Context(), sc.Shop.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get usage stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tier":            stats.Tier,
		"used_this_month": stats.UsedThisMonth,
		"limit":           stats.Limit,
		"remaining":       stats.Remaining,
		"reset_date":      stats.ResetDate,
	})
}

// handleCreateCheckout creates a Stripe checkout session.
func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopID     string `json:"shop_id"`
		Tier       string `json:"tier"`
		SuccessURL string `json:"success_url"`
		CancelURL  string `json:"cancel_url"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc, ok := s.requireShopOwnerID(w, r, req.ShopID)
	if !ok {
		return
	}

	customerID := ""
	if sc.Shop.StripeCustomerID != nil {
		customerID = *sc.Shop.StripeCustomerID
	}

	session, err := s.billingClient.CreateCheckoutSession(billing.CreateCheckoutParams{
		CustomerID: customerID,
		Email:      sc.User.Email,
		ShopID:     sc.Shop.ID.String(),
		Tier:       req.Tier,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create checkout session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"checkout_url": session.URL,
	})
}

// handleCreatePortal creates a Stripe billing portal session.
func (s *Server) handleCreatePortal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopID    string `json:"shop_id"`
		ReturnURL string `json:"return_url"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sc, ok := s.requireShopOwnerID(w, r, req.ShopID)
	if !ok {
		return
	}

	if sc.Shop.StripeCustomerID == nil || *sc.Shop.StripeCustomerID == "" {
		writeError(w, http.StatusBadRequest, "shop has no billing account")
		return
	}

	session, err := s.billingClient.CreatePortalSession(*sc.Shop.StripeCustomerID, req.ReturnURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create portal session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"portal_url": session.URL,
	})
}

// createWebhookHandler returns the Stripe webhook handler.
func (s *Server) createWebhookHandler() http.Handler {
	return billing.NewWebhookHandler(s.billingClient, func(event billing.WebhookEvent) error {
		ctx := context.Background()

		switch event.Type {
		case "checkout.session.completed":
			if event.ShopID == "" || event.CustomerID == "" {
				return nil
			}
			shopID, err := uuid.Parse(event.ShopID)
			if err != nil {
				return nil
			}
			tier := s.billingClient.TierFromPriceID(event.PriceID)
			return s.db.UpdateShopStripe(ctx, shopID, event.CustomerID, event.SubscriptionID, tier)

		case "customer.subscription.updated":
			return s.updateTierByCustomer(ctx, event.CustomerID, s.billingClient.TierFromPriceID(event.PriceID))

		case "customer.subscription.deleted":
			return s.updateTierByCustomer(ctx, event.CustomerID, billing.TierFree)
		}

		return nil
	})
}

// updateTierByCustomer resolves a shop from its Stripe customer ID and
// updates the tier. Unknown customers are ignored.
func (s *Server) updateTierByCustomer(ctx context.Context, customerID, tier string) error {
	if customerID == "" {
		return nil
	}
	shop, err := s.db.GetShopByStripeCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if shop == nil {
		return nil
	}
	return s.db.UpdateShopTier(ctx, shop.ID, tier)
}
