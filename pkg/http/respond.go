package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the uniform response body: every endpoint, success or failure,
// answers with {success, message, data?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// WriteJSON writes an envelope with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, success bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	// Log-free best effort; encoding an Envelope cannot realistically fail
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: success,
		Message: message,
		Data:    data,
	})
}

func WriteSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	WriteJSON(w, statusCode, true, message, data)
}

// Common error writers for consistency
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, false, message, nil)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, false, message, nil)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusForbidden, false, message, nil)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusNotFound, false, message, nil)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusConflict, false, message, nil)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusTooManyRequests, false, message, nil)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusInternalServerError, false, message, nil)
}
