package errors

import "net/http"

// Principal-specific error types
const (
	ErrorTypeTokenExpired ErrorType = "token_expired"
	ErrorTypeTokenInvalid ErrorType = "token_invalid"
)

// NewTokenExpiredError reports an expired principal token
func NewTokenExpiredError() *AppError {
	return &AppError{
		Type:    ErrorTypeTokenExpired,
		Message: "token has expired",
		Code:    http.StatusUnauthorized,
	}
}

// NewTokenInvalidError reports a malformed or badly signed principal token
func NewTokenInvalidError(details ...string) *AppError {
	return newAppError(ErrorTypeTokenInvalid, http.StatusUnauthorized, "invalid token", details)
}
