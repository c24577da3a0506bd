package handler

import (
	"net/http"
	"strings"

	"farmlink-be/internal/ai"
	"farmlink-be/internal/utils"
)

// The AI endpoints always answer 200; a null result means no suggestion.

func (h *Handler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.session(w, r); !ok {
		return
	}

	var req analyzeImageRequest
	if !decode(w, r, &req) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, analyzeImageResponse{
		Analysis: h.Gateway.AnalyzeCropImage(r.Context(), req.Image, req.MimeType),
	})
}

func (h *Handler) PredictPrice(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.session(w, r); !ok {
		return
	}

	var req predictPriceRequest
	if !decode(w, r, &req) {
		return
	}

	utils.WriteJSON(w, http.StatusOK, predictPriceResponse{
		Prediction: h.Gateway.PredictPrice(r.Context(), req.Crop, req.Location, req.Season),
	})
}

// Assist is a stateless assistant call; prior turns come from the client.
func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := h.session(w, r); !ok {
		return
	}

	var req assistRequest
	if !decode(w, r, &req) {
		return
	}

	history := make([]ai.Turn, 0, len(req.History))
	for _, text := range req.History {
		history = append(history, ai.Turn{Text: text})
	}

	utils.WriteJSON(w, http.StatusOK, assistResponse{
		Reply: h.Gateway.ChatAssistance(r.Context(), history, strings.TrimSpace(req.Message)),
	})
}
