package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"acesoftware.in/marketing-web/internal/observability"
)

type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status code.
func WriteJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		observability.FromContext(r.Context()).Warn("write json", zap.Error(err))
	}
}

// WriteError answers htmx and JSON clients with {"error": msg} and
// everyone else with plain text.
func WriteError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if IsHTMX(r.Context()) || wantsJSON(r) {
		WriteJSON(w, r, code, errorResponse{Error: msg})
		return
	}
	http.Error(w, msg, code)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
