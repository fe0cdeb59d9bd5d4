package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ErrorResponse struct {
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string, details any) {
	reqID := chimw.GetReqID(r.Context())
	WriteJSON(w, status, ErrorResponse{
		Message:   msg,
		Details:   details,
		RequestID: reqID,
	})
}

// WriteFault renders a 500. The cause is only included when expose is set.
func WriteFault(w http.ResponseWriter, r *http.Request, msg string, cause error, expose bool) {
	var details any
	if expose && cause != nil {
		details = map[string]any{"error": cause.Error()}
	}
	WriteError(w, r, http.StatusInternalServerError, msg, details)
}
