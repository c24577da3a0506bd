package middleware

import (
	"net/http"

	"farmlink-be/internal/logger"
	"farmlink-be/internal/store"
	"farmlink-be/internal/user"
	"farmlink-be/internal/utils"

	"go.uber.org/zap"
)

// Auth resolves the request's token to a live session and stores the
// identity in the context. Requests without a token pass through anonymous;
// a token that fails verification or names an ended session is rejected.
func Auth(tokens *user.TokenManager, sessions *store.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.FromCtx(r.Context()).With(zap.String("layer", "middleware"))

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				log.Info("rejected token", zap.Error(err))
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			sess, ok := sessions.Get(claims.SessionID)
			if !ok {
				log.Info("token for ended session", zap.String("session_id", claims.SessionID))
				utils.WriteJSONError(w, "session has ended", http.StatusUnauthorized)
				return
			}

			current, ok := sess.CurrentUser()
			if !ok || current.ID != claims.UserID {
				log.Info("session no longer holds token user", zap.String("session_id", claims.SessionID))
				utils.WriteJSONError(w, "session has ended", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), current.ID, string(current.Role), sess.ID)
			ctx = logger.WithUserID(ctx, current.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
