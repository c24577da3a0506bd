package middleware

import (
	"net/http"
	"strings"
)

const AccessTokenCookie = "access_token"

// ExtractAccessToken reads the session token from the cookie, then the
// Authorization header, then the "token" query parameter used by websocket
// clients that cannot set headers.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	if r.URL.Path == "/ws" {
		return r.URL.Query().Get("token")
	}
	return ""
}
