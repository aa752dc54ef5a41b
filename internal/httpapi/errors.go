package httpapi

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, message, details string) {
	WriteJSON(w, status, APIError{
		Error:     message,
		Details:   details,
		RequestID: RequestIDFrom(r.Context()),
	})
}
