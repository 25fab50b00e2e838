package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
)

// Envelope is the JSON shape of every API response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
}

// WriteJSONResponse writes payload as JSON with the given status
func WriteJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

// RespondSuccess writes a successful envelope
func RespondSuccess(w http.ResponseWriter, status int, data interface{}, message string) {
	WriteJSONResponse(w, status, Envelope{Success: true, Data: data, Message: message})
}

// RespondError writes a failed envelope; causes of 500s are logged, not returned
func RespondError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	message := "Internal server error"

	var appErr *AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		log.Printf("❌ Unhandled error: %v", err)
	}

	WriteJSONResponse(w, status, Envelope{Success: false, Message: message})
}
