package httphandler

import (
	"encoding/json"
	"net/http"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the fixed liveness document served on GET /.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AckResponse acknowledges a webhook delivery. Event and Delivery echo the
// request headers and are null when the header was absent.
type AckResponse struct {
	OK       bool    `json:"ok"`
	Event    *string `json:"event"`
	Delivery *string `json:"delivery"`
}

// optional returns nil for the empty string so it encodes as JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
