package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/auth"
	"github.com/kamilpajak/crankshaft/internal/database"
)

// shopContext holds the validated shop context for a request.
type shopContext struct {
	User *database.User
	Shop *database.Shop
}

// requireShopOwner validates the user is authenticated and owns the shop.
// It extracts shopID from the "shopID" path parameter.
func (s *Server) requireShopOwner(w http.ResponseWriter, r *http.Request) (*shopContext, bool) {
	return s.requireShopOwnerID(w, r, r.PathValue("shopID"))
}

// requireShopOwnerID validates ownership for a shop ID given as a string,
// e.g. from a request body field.
func (s *Server) requireShopOwnerID(w http.ResponseWriter, r *http.Request, shopIDStr string) (*shopContext, bool) {
	ctx := r.Context()

	user, err := s.getCurrentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return nil, false
	}

	shopID, err := uuid.Parse(shopIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shop ID")
		return nil, false
	}

	shop, err := s.db.GetShopByID(ctx, shopID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return nil, false
	}
	if shop == nil {
		writeError(w, http.StatusNotFound, "shop not found")
		return nil, false
	}
	if shop.OwnerUserID != user.ID {
		writeError(w, http.StatusForbidden, "not the owner of this shop")
		return nil, false
	}

	return &shopContext{
		User: user,
		Shop: shop,
	}, true
}

// getCurrentUser returns the database user for the authenticated request.
func (s *Server) getCurrentUser(r *http.Request) (*database.User, error) {
	ctx := r.Context()
	authUserID := auth.UserID(ctx)
	if authUserID == "" {
		return nil, &authError{"not authenticated"}
	}

	user, err := s.db.GetUserByAuthID(ctx, authUserID)
	if err != nil {
		return nil, &authError{"database error"}
	}
	if user == nil {
		return nil, &authError{"user not found - call /api/auth/sync first"}
	}

	return user, nil
}

type authError struct {
	message string
}

func (e *authError) Error() string {
	return e.message
}

// parseRunID parses the run ID from the path parameter.
func parseRunID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue("runID"))
}
