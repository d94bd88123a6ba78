package services

import (
	"fmt"
	"net/http"
)

// Error codes rendered alongside the message.
const (
	CodeEmptyCart            = "EmptyCart"
	CodeProductMissing       = "ProductMissing"
	CodeInsufficientStock    = "InsufficientStock"
	CodeOutOfStock           = "OutOfStock"
	CodeNotFound             = "NotFound"
	CodeForbidden            = "Forbidden"
	CodeInvalidState         = "InvalidState"
	CodeInvalidStatus        = "InvalidStatus"
	CodeInvalidTransition    = "InvalidTransition"
	CodeMissingPaymentFields = "MissingPaymentFields"
	CodeInvalidSignature     = "InvalidSignature"
	CodeMissingSignature     = "MissingSignature"
	CodeInvalidAmount        = "InvalidAmount"
	CodeCategoryExists       = "CategoryExists"
	CodeValidationFailed     = "ValidationFailed"
	CodeInternal             = "Internal"
)

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func badRequest(code, format string, args ...interface{}) *ServiceError {
	return &ServiceError{StatusCode: http.StatusBadRequest, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusNotFound, Code: CodeNotFound, Message: message}
}

func forbidden(message string) *ServiceError {
	return &ServiceError{StatusCode: http.StatusForbidden, Code: CodeForbidden, Message: message}
}

// internal passes the underlying message through, as the storefront expects.
func internal(err error) *ServiceError {
	return &ServiceError{StatusCode: http.StatusInternalServerError, Code: CodeInternal, Message: err.Error()}
}
