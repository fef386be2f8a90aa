package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
	ErrorTypeRateLimit    ErrorType = "RATE_LIMIT"
)

type ErrorCode string

const (
	ErrCodeValidationFailed          ErrorCode = "VALIDATION_FAILED"
	ErrCodePasswordFailedChecks      ErrorCode = "PASSWORD_FAILED_CHECKS"
	ErrCodeEmailTaken                ErrorCode = "EMAIL_TAKEN"
	ErrCodeOrgNameTaken              ErrorCode = "ORG_NAME_TAKEN"
	ErrCodeInvalidUpgradeRole        ErrorCode = "INVALID_UPGRADE_ROLE"
	ErrCodeEmailVerificationExpired  ErrorCode = "EMAIL_VERIFICATION_EXPIRED"
	ErrCodePasswordResetTokenExpired ErrorCode = "PASSWORD_RESET_TOKEN_EXPIRED"
	ErrCodeDuplicateRecord           ErrorCode = "DUPLICATE_RECORD"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeNoToken            ErrorCode = "NO_TOKEN"
	ErrCodeSessionRevoked     ErrorCode = "SESSION_REVOKED"

	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeForbiddenRole     ErrorCode = "FORBIDDEN_ROLE"
	ErrCodeOwnershipRequired ErrorCode = "OWNERSHIP_REQUIRED"

	ErrCodeUpstreamFailure ErrorCode = "UPSTREAM_FAILURE"
	ErrCodeRateLimited     ErrorCode = "RATE_LIMITED"
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError is the single error shape the HTTP layer knows how to render:
// {message, status, errorCode?, exception?}.
type AppError struct {
	Type       ErrorType
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    interface{}
	Exception  interface{}
	Cause      error
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on the stable error code so sentinels survive WithCause copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.StatusCode == e.StatusCode
}

// The With* helpers return copies; sentinels below are shared.

func (e *AppError) WithCause(cause error) *AppError {
	c := *e
	c.Cause = cause
	return &c
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	c := *e
	c.Details = details
	return &c
}

func (e *AppError) WithException(exception interface{}) *AppError {
	c := *e
	c.Exception = exception
	return &c
}

func (e *AppError) WithMessage(message string) *AppError {
	c := *e
	c.Message = message
	return &c
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// NewUpstreamError wraps a failed call to a third-party API; body is the
// upstream response kept for diagnostics.
func NewUpstreamError(message string, body interface{}, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       ErrCodeUpstreamFailure,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Exception:  body,
		Cause:      cause,
	}
}

var (
	ErrNotFound          = NewNotFoundError("Item Not Found", ErrCodeNotFound)
	ErrForbiddenRole     = NewForbiddenError("You are not in the correct role for this resource", ErrCodeForbiddenRole)
	ErrOwnershipRequired = NewForbiddenError("You are only allowed to modify items that you own", ErrCodeOwnershipRequired)

	ErrEmailTaken           = NewValidationError("This email is already taken", ErrCodeEmailTaken)
	ErrOrgNameTaken         = NewValidationError("An organization with that name already exists", ErrCodeOrgNameTaken)
	ErrInvalidUpgradeRole   = NewValidationError("You can only upgrade to specific roles. This isn't one of them", ErrCodeInvalidUpgradeRole)
	ErrDuplicateRecord      = NewValidationError("A record with that name already exists", ErrCodeDuplicateRecord)

	ErrEmailVerificationExpired  = NewValidationError("This email verification has expired", ErrCodeEmailVerificationExpired)
	ErrPasswordResetTokenExpired = NewValidationError("This password reset token has expired", ErrCodePasswordResetTokenExpired)

	ErrInvalidCredentials = NewUnauthorizedError("Authentication failed. Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Failed to authenticate token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrNoToken            = NewForbiddenError("No token provided", ErrCodeNoToken)
	ErrSessionRevoked     = NewUnauthorizedError("The user must login again to refresh their credentials", ErrCodeSessionRevoked)

	ErrRateLimited = &AppError{
		Type:       ErrorTypeRateLimit,
		Code:       ErrCodeRateLimited,
		Message:    "Rate limit exceeded, try again later",
		StatusCode: http.StatusTooManyRequests,
	}
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	exception := e.Exception
	if exception == nil && e.Details != nil {
		exception = e.Details
	}
	return json.Marshal(struct {
		Message   string      `json:"message"`
		Status    int         `json:"status"`
		ErrorCode ErrorCode   `json:"errorCode,omitempty"`
		Exception interface{} `json:"exception,omitempty"`
	}{
		Message:   e.Message,
		Status:    e.StatusCode,
		ErrorCode: e.Code,
		Exception: exception,
	})
}
