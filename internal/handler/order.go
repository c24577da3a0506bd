package handler

import (
	"context"
	"errors"
	"net/http"

	"farmlink-be/internal/checkout"
	"farmlink-be/internal/events"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/order"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

// PlaceOrder runs checkout: validation, the simulated payment and order placement.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.sessionWithRole(w, r, user.RoleBuyer)
	if !ok {
		return
	}

	var req checkoutRequest
	if !decode(w, r, &req) {
		return
	}

	receipt, err := h.Checkout.Checkout(r.Context(), u, req.toCheckout())
	switch {
	case err == nil:
		utils.WriteJSON(w, http.StatusCreated, receipt)
	case errors.Is(err, checkout.ErrListingNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, checkout.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrMissingAddress),
		errors.Is(err, checkout.ErrInvalidPaymentMethod):
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, checkout.ErrInsufficientStock):
		utils.WriteJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.FromCtx(r.Context()).Info("checkout abandoned by client")
	default:
		utils.WriteJSONError(w, "checkout failed", http.StatusInternalServerError)
	}
}

// ListOrders returns the orders the caller sold (farmers) or bought (others),
// newest first.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(order.ForUser(h.Store.Orders(), u)))
}

// UpdateOrderStatus lets the order's farmer move it to any status.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.session(w, r)
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decode(w, r, &req) {
		return
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		utils.WriteJSONError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	id := r.PathValue("id")
	existing, ok := h.Store.Order(id)
	if !ok {
		utils.WriteJSONError(w, order.ErrOrderNotFound.Error(), http.StatusNotFound)
		return
	}
	if existing.FarmerID != u.ID {
		utils.WriteJSONError(w, order.ErrNotOrderOwner.Error(), http.StatusForbidden)
		return
	}

	updated, ok := h.Store.UpdateOrderStatus(id, status)
	if !ok {
		utils.WriteJSONError(w, order.ErrOrderNotFound.Error(), http.StatusNotFound)
		return
	}

	logger.FromCtx(r.Context()).Info("order status changed",
		zap.String("layer", "handler"),
		zap.String("order_id", id),
		zap.String("from", string(existing.Status)),
		zap.String("to", string(status)),
	)
	events.PublishOrder(r.Context(), h.Publisher, order.NewEvent(order.EventStatusChanged, updated, h.now()))

	utils.WriteJSON(w, http.StatusOK, updated)
}
