package handler

import (
	"net/http"

	"farmlink-be/internal/utils"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, nonNil(sess.Cart()))
}

// AddToCart answers 201 when the listing was added and 200 when it was
// already in the cart.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addToCartRequest
	if !decode(w, r, &req) {
		return
	}

	l, ok := h.Store.Listing(req.ListingID)
	if !ok {
		utils.WriteJSONError(w, "listing not found", http.StatusNotFound)
		return
	}

	code := http.StatusOK
	if sess.AddToCart(l) {
		code = http.StatusCreated
	}
	utils.WriteJSON(w, code, sess.Cart())
}
