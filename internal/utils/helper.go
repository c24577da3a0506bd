package utils

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// NewID returns a prefixed random identifier, e.g. "ord-3f2a...".
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func StrPtr(s string) *string {
	return &s
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	WriteJSON(w, code, map[string]string{"error": message})
}
