package users

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrUserInactive    = errors.New("account not activated")
	ErrEmailRegistered = errors.New("email already registered")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrWeakPassword    = errors.New("password too weak")
)

// Validation error codes reported by the field validators. Handlers match on
// Code to place the message on the right form field.
const (
	CodeInvalidUsername        = "invalid_username"
	CodeUsernameBoundary       = "underscore_start_end"
	CodeUsernameLeadingDigit   = "digit_start"
	CodeConsecutiveUnderscores = "consecutive_underscores"
	CodeUsernameTooShort       = "too_short"
	CodeUnderage               = "underage"
)

// ValidationError is a recoverable field-rule violation, shown inline on the
// originating form.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationError(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}
