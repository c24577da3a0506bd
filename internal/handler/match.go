package handler

import (
	"errors"
	"net/http"

	"farmlink-be/internal/ai"
	"farmlink-be/internal/match"
	"farmlink-be/internal/utils"
)

// StartMatching launches background matching tied to the caller's session.
func (h *Handler) StartMatching(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return
	}

	if !h.Matcher.Start(sess.Context(), u) {
		utils.WriteJSON(w, http.StatusOK, match.Result{State: match.StateDone, Matches: []ai.Match{}, UpdatedAt: h.now()})
		return
	}

	res, err := h.Matcher.Result(u.ID)
	if err != nil {
		res = match.Result{State: match.StateRunning, Matches: []ai.Match{}, UpdatedAt: h.now()}
	}
	utils.WriteJSON(w, http.StatusAccepted, res)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.session(w, r)
	if !ok {
		return
	}

	res, err := h.Matcher.Result(u.ID)
	if errors.Is(err, match.ErrNoResult) {
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, res)
}
