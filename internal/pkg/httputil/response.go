// Package httputil provides HTTP response helpers and middleware.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Envelope is the response wrapper used by every API endpoint.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 response with {"status":"success","message":...,"data":...}.
func Success(w http.ResponseWriter, message string, data interface{}) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error writes an error response with {"status":"error","message":...}.
func Error(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, Envelope{
		Status:  "error",
		Message: message,
	})
}

// ValidationError writes a 400 response describing the failed fields.
func ValidationError(w http.ResponseWriter, err error) {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, e.Field()+" ("+e.Tag()+")")
		}
		Error(w, http.StatusBadRequest, "validation error: "+strings.Join(fields, ", "))
		return
	}
	Error(w, http.StatusBadRequest, "validation error: "+err.Error())
}

// JSON writes a raw JSON response without the envelope.
// Used for endpoints outside the API surface (version, health helpers).
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response envelope", "error", err)
	}
}
