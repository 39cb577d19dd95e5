// Package respond is the single response formatter for the HTTP API: JSON
// bodies on success and the uniform {err:{status,message}} envelope on
// failure.
package respond

import (
	"encoding/json"
	"log"
	"net/http"
)

// Envelope is the error body shape shared by every endpoint, the gate
// included.
type Envelope struct {
	Err Payload `json:"err"`
}

// Payload carries the HTTP status and a client-safe message.
type Payload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error writes the error envelope. A zero status defaults to 500.
func Error(w http.ResponseWriter, status int, message string) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encode(w, Envelope{Err: Payload{Status: status, Message: message}})
}

// Internal writes the generic 500 envelope. Underlying error text never
// reaches the client; cause goes to the server log only.
func Internal(w http.ResponseWriter, cause error) {
	if cause != nil {
		log.Printf("internal error: %v", cause)
	}
	Error(w, http.StatusInternalServerError, "Internal Server Error")
}

// JSON writes v with a 200 status.
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	encode(w, v)
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func encode(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
