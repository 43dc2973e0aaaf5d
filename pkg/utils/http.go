package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

func WriteJSON(w http.ResponseWriter, payload any, code int) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(payload)
}

func DecodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// ErrorResponse describes a standard error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func WriteError(w http.ResponseWriter, message string, code int) error {
	return WriteJSON(w, ErrorResponse{Error: message}, code)
}

func WriteErrorDetails(w http.ResponseWriter, message string, details any, code int) error {
	return WriteJSON(w, ErrorResponse{Error: message, Details: details}, code)
}

// WriteRetryable answers 503 with a Retry-After hint.
func WriteRetryable(w http.ResponseWriter, message string, after time.Duration) error {
	w.Header().Set("Retry-After", strconv.Itoa(int(after.Seconds())))
	return WriteError(w, message, http.StatusServiceUnavailable)
}

// WriteValidationError reports field-specific validation failures as
// {"error": "invalid request", "details": {"<field>": "<tag>"}}.
func WriteValidationError(w http.ResponseWriter, err error) error {
	fields := make(map[string]string)

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, err := range ve {
			fields[err.Namespace()] = err.Tag()
		}
	}

	return WriteErrorDetails(w, "invalid request", fields, http.StatusBadRequest)
}
