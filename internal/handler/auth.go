package handler

import (
	"net/http"
	"strings"
	"time"

	"farmlink-be/internal/logger"
	"farmlink-be/internal/middleware"
	"farmlink-be/internal/store"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}

	sess := h.Store.NewSession()
	u, err := sess.Signup(r.Context(), strings.TrimSpace(req.Name), req.Identifier, req.Password, user.Role(req.Role))
	if err != nil {
		utils.WriteJSONError(w, "could not create account", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, sess, u, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	sess := h.Store.NewSession()
	u, ok := sess.Login(r.Context(), req.Identifier, req.Password, user.Role(req.Role))
	if !ok {
		utils.WriteJSONError(w, user.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	h.startSession(w, r, sess, u, http.StatusOK)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, sess *store.Session, u user.User, code int) {
	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("method", "startSession"),
	)

	token, expiresAt, err := h.Tokens.Generate(u, sess.ID)
	if err != nil {
		log.Error("failed to issue token", zap.Error(err))
		sess.Logout()
		utils.WriteJSONError(w, "could not start session", http.StatusInternalServerError)
		return
	}

	h.Sessions.Add(sess, expiresAt)
	h.Metrics.SessionStarted()

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("session started", zap.String("user_id", u.ID), zap.String("session_id", sess.ID))
	utils.WriteJSON(w, code, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		User:      publicUser(u),
	})
}

// Logout ends the session: current user and cart are cleared and background
// matching for the user stops.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := h.session(w, r)
	if !ok {
		return
	}

	h.Sessions.End(sess.ID)
	h.Matcher.Forget(u.ID)
	h.Metrics.SessionEnded()

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	logger.FromCtx(r.Context()).Info("session ended", zap.String("session_id", sess.ID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	_, u, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, publicUser(u))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := h.session(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decode(w, r, &req) {
		return
	}

	u, ok := sess.UpdateProfile(r.Context(), req.toUpdate())
	if !ok {
		utils.WriteJSONError(w, user.ErrUserNotFound.Error(), http.StatusNotFound)
		return
	}
	utils.WriteJSON(w, http.StatusOK, publicUser(u))
}
