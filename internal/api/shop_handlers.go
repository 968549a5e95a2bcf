package api

import (
	"net/http"
)

// handleListShops returns all shops owned by the user.
func (s *Server) handleListShops(w http.ResponseWriter, r *http.Request) {
	user, err := s.getCurrentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	shops, err := s.db.ListUserShops(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shops")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"shops": shops,
	})
}

// handleCreateShop creates a new shop owned by the user.
func (s *Server) handleCreateShop(w http.ResponseWriter, r *http.Request) {
	user, err := s.getCurrentUser(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	shop, err := s.db.CreateShop(r.Context(), req.Name, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create shop")
		return
	}

	writeJSON(w, http.StatusCreated, shop)
}

// handleGetShop returns a single shop.
func (s *Server) handleGetShop(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.requireShopOwner(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sc.Shop)
}
