package api

import (
	"net/http"

	"github.com/kamilpajak/crankshaft/internal/auth"
)

// handleAuthSync syncs the authenticated user to the database.
// This should be called after login to ensure the user exists in our DB.
func (s *Server) handleAuthSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := auth.Claims(ctx)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	authUserID := claims.Subject
	email := claims.Email

	if email == "" {
		writeError(w, http.StatusBadRequest, "email not available in token")
		return
	}

	user, err := s.db.GetOrCreateUser(ctx, authUserID, email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sync user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"auth_id":    user.AuthID,
		"email":      user.Email,
		"created_at": user.CreatedAt,
	})
}

// handleGetMe returns the current user's information.
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := auth.Claims(ctx)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := s.db.GetUserByAuthID(ctx, claims.Subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found - call /api/auth/sync first")
		return
	}

	shops, err := s.db.ListUserShops(ctx, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shops")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":         user.ID,
		"auth_id":    user.AuthID,
		"email":      user.Email,
		"name":       claims.Name,
		"created_at": user.CreatedAt,
		"shops":      shops,
	})
}
