package serrors

import (
	"fmt"
	"net/http"
)

// ServiceError is a coded error carried from the service layer to the
// HTTP surface. Status is the HTTP status to respond with; Code is a
// stable machine-readable identifier.
type ServiceError struct {
	Status  int
	Code    string
	Message string
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func New(status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Status: status, Code: code, Message: message, Cause: cause}
}

func NotFound(code, message string, cause error) *ServiceError {
	return New(http.StatusNotFound, code, message, cause)
}

func Conflict(code, message string, cause error) *ServiceError {
	return New(http.StatusConflict, code, message, cause)
}

func Validation(code, message string, cause error) *ServiceError {
	return New(http.StatusBadRequest, code, message, cause)
}

func Unauthorized(code, message string, cause error) *ServiceError {
	return New(http.StatusUnauthorized, code, message, cause)
}

func Forbidden(code, message string, cause error) *ServiceError {
	return New(http.StatusForbidden, code, message, cause)
}

func Internal(message string, cause error) *ServiceError {
	return New(http.StatusInternalServerError, "INTERNAL", message, cause)
}
