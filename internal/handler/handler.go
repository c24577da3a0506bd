// Package handler exposes the marketplace over HTTP/JSON.
package handler

import (
	"net/http"
	"time"

	"farmlink-be/internal/ai"
	"farmlink-be/internal/chat"
	"farmlink-be/internal/checkout"
	"farmlink-be/internal/events"
	"farmlink-be/internal/logger"
	"farmlink-be/internal/match"
	"farmlink-be/internal/metrics"
	"farmlink-be/internal/store"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

type Deps struct {
	Store     *store.Store
	Sessions  *store.Registry
	Tokens    *user.TokenManager
	Checkout  *checkout.Service
	Matcher   *match.Service
	Gateway   ai.Gateway
	Hub       *chat.Hub
	Publisher events.Publisher
	Metrics   *metrics.Metrics

	// SecureCookies marks the session cookie Secure; off for plain-HTTP development.
	SecureCookies bool
}

type Handler struct {
	Deps
	now func() time.Time
}

func New(d Deps) *Handler {
	if d.Publisher == nil {
		d.Publisher = events.NewNopPublisher()
	}
	if d.Hub == nil {
		d.Hub = chat.NewHub()
	}
	h := &Handler{Deps: d, now: time.Now}
	if d.Sessions != nil {
		d.Sessions.OnExpire(h.sessionExpired)
	}
	return h
}

// sessionExpired releases what a session held once its token ran out.
func (h *Handler) sessionExpired(sess *store.Session) {
	if u, ok := sess.CurrentUser(); ok {
		h.Matcher.Forget(u.ID)
	}
	h.Metrics.SessionEnded()
	logger.L().Info("session expired", zap.String("session_id", sess.ID))
}

// session resolves the authenticated session, writing 401 when there is none.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*store.Session, user.User, bool) {
	sess, ok := h.Sessions.Get(utils.GetSessionIDFromContext(r.Context()))
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return nil, user.User{}, false
	}
	u, ok := sess.CurrentUser()
	if !ok {
		utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
		return nil, user.User{}, false
	}
	return sess, u, true
}

// sessionWithRole is session plus a role check that writes 403.
func (h *Handler) sessionWithRole(w http.ResponseWriter, r *http.Request, roles ...user.Role) (*store.Session, user.User, bool) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return nil, user.User{}, false
	}
	for _, role := range roles {
		if u.Role == role {
			return sess, u, true
		}
	}
	utils.WriteJSONError(w, "not allowed for role "+string(u.Role), http.StatusForbidden)
	return nil, user.User{}, false
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"ai_available": h.Gateway.Available(),
	})
}
