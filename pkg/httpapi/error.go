package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transapp/opct/pkg/serrors"
)

// ErrorEnvelope standardizes JSON error responses across API controllers.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}

// WriteServiceError unwraps a *serrors.ServiceError and renders it with
// its own status and code. Anything else becomes a 500.
func WriteServiceError(w http.ResponseWriter, err error) error {
	var svcErr *serrors.ServiceError
	if errors.As(err, &svcErr) {
		return WriteError(w, svcErr.Status, svcErr.Code, svcErr.Message, nil)
	}
	return WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
}
