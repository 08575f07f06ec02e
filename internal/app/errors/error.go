package errors

import (
	"net/http"
	"reflect"

	"github.com/sirupsen/logrus"
)

// Machine-readable error codes returned alongside the HTTP status so
// clients can distinguish retryable failures from permanent ones.
const (
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidState        = "INVALID_STATE"
	CodeExpired             = "EXPIRED"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeConflict            = "CONFLICT"
	CodeGatewayError        = "GATEWAY_ERROR"
	CodeSignatureInvalid    = "SIGNATURE_INVALID"
	CodeConfigurationError  = "CONFIGURATION_ERROR"
	CodeBadRequest          = "BAD_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternal            = "INTERNAL_ERROR"
)

type AppError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(statusCode int, code, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message)
}

func NewUnauthorizedError(message ...string) *AppError {
	if len(message) > 0 {
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message[0])
	}
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message)
}

func NewInvalidStateError(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeInvalidState, message)
}

func NewExpiredError(message string) *AppError {
	return NewAppError(http.StatusGone, CodeExpired, message)
}

func NewInsufficientBalanceError(message string) *AppError {
	return NewAppError(http.StatusUnprocessableEntity, CodeInsufficientBalance, message)
}

func NewInvalidQuantityError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidQuantity, message)
}

// NewConflictError marks an optimistic-concurrency loss. Retryable: the
// caller should re-validate against fresh state before resubmitting.
func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message)
}

// NewGatewayError passes the gateway's own code and message through
// unchanged rather than reinterpreting them.
func NewGatewayError(gatewayCode, message string) *AppError {
	return &AppError{
		StatusCode: http.StatusBadGateway,
		Code:       CodeGatewayError,
		Message:    gatewayCode + ": " + message,
	}
}

func NewSignatureInvalidError(reason string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeSignatureInvalid, reason)
}

func NewConfigurationError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, CodeConfigurationError, message)
}

func NewTooManyRequestsError(message string) *AppError {
	return NewAppError(http.StatusTooManyRequests, CodeTooManyRequests, message)
}

func NewInternalServerError(originalError error, message string) *AppError {
	if originalError != nil {
		logrus.Errorf("[%s] %s", reflect.TypeOf(originalError).String(), originalError)
	}
	return NewAppError(http.StatusInternalServerError, CodeInternal, message)
}
