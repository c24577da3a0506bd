package utils

import "context"

type contextKey string

const (
	userIDKey   contextKey = "user_id"
	userRoleKey contextKey = "role"
	sessionKey  contextKey = "session_id"
)

// SetUserContext stores the authenticated identity (called by the auth middleware).
func SetUserContext(ctx context.Context, userID, role, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	ctx = context.WithValue(ctx, sessionKey, sessionID)
	return ctx
}

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(userRoleKey).(string)
	return role
}

func GetSessionIDFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionKey).(string)
	return sid
}
