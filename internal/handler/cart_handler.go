package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles cart and order history requests for the current user.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// AddItem handles POST /orders/cart/add requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.service.AddItem(r.Context(), user.ID, req.ProductID, req.Quantity)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// GetCart handles GET /orders/get requests.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(r.Context(), user.ID)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// UpdateItem handles PATCH /orders/cart/update/{itemID} requests.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	itemID, ok := pathID(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	var req model.UpdateItemRequest
	if !decodeJSON(w, r, &req, h.logger) {
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(), user.ID, itemID, *req.Quantity)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// DeleteItem handles DELETE /orders/item/cart/delete/{itemID} requests.
func (h *CartHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	itemID, ok := pathID(w, r, "itemID", h.logger)
	if !ok {
		return
	}

	cart, err := h.service.DeleteItem(r.Context(), user.ID, itemID)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, cart)
}

// Checkout handles POST /orders/checkout requests.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	order, err := h.service.Checkout(r.Context(), user.ID)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// History handles GET /orders/history requests.
func (h *CartHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r, h.logger)
	if !ok {
		return
	}

	orders, err := h.service.History(r.Context(), user.ID)
	if err != nil {
		RespondError(w, r, err, h.logger)
		return
	}
	if orders == nil {
		orders = []model.OrderResponse{}
	}

	writeJSON(w, http.StatusOK, orders)
}
