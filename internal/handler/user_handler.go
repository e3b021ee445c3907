package handler

import (
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// UserHandler handles account HTTP requests.
type UserHandler struct {
	service service.UserService
	authn   auth.Authenticator
	logger  zerolog.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service service.UserService, authn auth.Authenticator, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		authn:   authn,
		logger:  logger.With().Str("handler", "user").Logger(),
	}
}

// Register handles POST /users/register requests.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		Message: "Registration successful",
		UserID:  user.ID,
	})
}

// Login handles POST /users/login requests. It accepts an OAuth2 password form
// (username, password) or a JSON body (email, password).
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, "invalid form body", h.logger)
			return
		}
		req.Email = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
		if err := validate.Struct(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidInput, validationMessage(err), h.logger)
			return
		}
	} else if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	token, err := h.authn.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// Me handles GET /users/me requests.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Deposit handles PATCH /users/add/balance requests.
func (h *UserHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.DepositRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	balance, err := h.service.Deposit(r.Context(), user.ID, req.Amount)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.DepositResponse{
		Message:    fmt.Sprintf("Balance updated by %g $", req.Amount),
		NewBalance: balance,
	})
}

// ChangePassword handles PATCH /users/change/password requests.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ChangePasswordRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), user, &req); err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Password changed"})
}

// ChangeEmail handles PATCH /users/change/email requests. Tokens issued for the
// old email stop resolving.
func (h *UserHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.ChangeEmailRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.service.ChangeEmail(r.Context(), user.ID, req.NewEmail); err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Message: fmt.Sprintf("Email changed, new email: %s", strings.TrimSpace(req.NewEmail)),
	})
}

// Delete handles DELETE /users/delete requests.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(r.Context(), user.ID); err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Message: fmt.Sprintf("User %s is deleted", user.Email),
	})
}
