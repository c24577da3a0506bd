package handler

import (
	"net/http"
	"strings"

	"farmlink-be/internal/logger"
	"farmlink-be/internal/market"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

// ListListings serves the marketplace view: active listings from other
// farmers, filtered by ?q=. With ?scope=mine it returns the caller's own
// listings instead.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := utils.GetUserIDFromContext(r.Context())
	listings := h.Store.Listings()

	if r.URL.Query().Get("scope") == "mine" {
		if viewerID == "" {
			utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		utils.WriteJSON(w, http.StatusOK, nonNil(market.ListingsByFarmer(listings, viewerID)))
		return
	}

	utils.WriteJSON(w, http.StatusOK, market.BrowseListings(listings, viewerID, r.URL.Query().Get("q")))
}

func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.sessionWithRole(w, r, user.RoleFarmer)
	if !ok {
		return
	}

	var req createListingRequest
	if !decode(w, r, &req) {
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = u.Location
	}

	l := market.CropListing{
		ID:           utils.NewID("l"),
		FarmerID:     u.ID,
		FarmerName:   u.Name,
		CropName:     strings.TrimSpace(req.CropName),
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		PricePerUnit: req.PricePerUnit,
		Location:     location,
		ImageURL:     req.ImageURL,
		Description:  req.Description,
		QualityGrade: market.Grade(req.QualityGrade),
		Status:       market.ListingActive,
		CreatedAt:    h.now(),
	}
	h.Store.AddListing(l)

	logger.FromCtx(r.Context()).Info("listing created",
		zap.String("layer", "handler"),
		zap.String("listing_id", l.ID),
		zap.String("crop", l.CropName),
	)
	utils.WriteJSON(w, http.StatusCreated, l)
}

// PurchaseListing decrements stock directly, without creating an order.
func (h *Handler) PurchaseListing(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.session(w, r); !ok {
		return
	}

	var req purchaseRequest
	if !decode(w, r, &req) {
		return
	}

	l, ok := h.Store.PurchaseListing(r.PathValue("id"), req.Quantity)
	if !ok {
		utils.WriteJSONError(w, "listing not found", http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, l)
}

// ListRequests mirrors ListListings for buyer requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	viewerID, _ := utils.GetUserIDFromContext(r.Context())
	requests := h.Store.Requests()

	if r.URL.Query().Get("scope") == "mine" {
		if viewerID == "" {
			utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		utils.WriteJSON(w, http.StatusOK, nonNil(market.RequestsByBuyer(requests, viewerID)))
		return
	}

	utils.WriteJSON(w, http.StatusOK, market.BrowseRequests(requests, viewerID, r.URL.Query().Get("q")))
}

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.sessionWithRole(w, r, user.RoleBuyer)
	if !ok {
		return
	}

	var req createRequestRequest
	if !decode(w, r, &req) {
		return
	}

	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = u.Location
	}

	br := market.BuyerRequest{
		ID:             utils.NewID("r"),
		BuyerID:        u.ID,
		BuyerName:      u.Name,
		CropName:       strings.TrimSpace(req.CropName),
		QuantityNeeded: req.QuantityNeeded,
		MaxBudget:      req.MaxBudget,
		Location:       location,
		Status:         market.RequestOpen,
		CreatedAt:      h.now(),
	}
	h.Store.AddRequest(br)

	utils.WriteJSON(w, http.StatusCreated, br)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
