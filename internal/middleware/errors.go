package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API's standard error envelope. Middleware cannot use
// the handler package's helper without an import cycle, so the shape is
// duplicated here.
func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}
