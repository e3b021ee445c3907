package handler

import (
	"fmt"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// AdminHandler handles user administration requests.
type AdminHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(service service.UserService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		logger:  logger.With().Str("handler", "admin").Logger(),
	}
}

// ListUsers handles GET /admin/get/all/users requests.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser handles GET /admin/get/user/{id} requests.
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SetBalance handles PATCH /admin/update/balance/{id} requests.
func (h *AdminHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	var req model.SetBalanceRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.SetBalance(r.Context(), id, req.NewBalance)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /admin/delete/user/{id} requests.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Message: fmt.Sprintf("User %s is deleted", id),
	})
}
