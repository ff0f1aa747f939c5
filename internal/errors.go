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
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCurrency  ErrorCode = "INVALID_CURRENCY"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidItemType  ErrorCode = "INVALID_ITEM_TYPE"
	ErrCodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	ErrCodeCourseNotFound      ErrorCode = "COURSE_NOT_FOUND"
	ErrCodeWorkshopNotFound    ErrorCode = "WORKSHOP_NOT_FOUND"
	ErrCodeServiceNotFound     ErrorCode = "SERVICE_NOT_FOUND"
	ErrCodePostNotFound        ErrorCode = "POST_NOT_FOUND"
	ErrCodeItemInactive        ErrorCode = "ITEM_INACTIVE"
	ErrCodeWorkshopFull        ErrorCode = "WORKSHOP_FULL"
	ErrCodeAlreadyEnrolled     ErrorCode = "ALREADY_ENROLLED"
	ErrCodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeBookingNotFound     ErrorCode = "BOOKING_NOT_FOUND"
	ErrCodeContactNotFound     ErrorCode = "CONTACT_NOT_FOUND"
	ErrCodeSlugTaken           ErrorCode = "SLUG_TAKEN"

	ErrCodePaymentNotFound         ErrorCode = "PAYMENT_NOT_FOUND"
	ErrCodePaymentAlreadyCompleted ErrorCode = "PAYMENT_ALREADY_COMPLETED"
	ErrCodeInvalidPaymentStatus    ErrorCode = "INVALID_PAYMENT_STATUS"
	ErrCodeInvalidSignature        ErrorCode = "INVALID_SIGNATURE"
	ErrCodeOrderMismatch           ErrorCode = "ORDER_MISMATCH"
	ErrCodeGatewayUnavailable      ErrorCode = "GATEWAY_UNAVAILABLE"

	ErrCodeSubscriberNotFound ErrorCode = "SUBSCRIBER_NOT_FOUND"
	ErrCodeAlreadySubscribed  ErrorCode = "ALREADY_SUBSCRIBED"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
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
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			messages := make([]string, len(validationErrors.Errors))
			for i, err := range validationErrors.Errors {
				messages[i] = err.Message
			}
			return strings.Join(messages, "; ")
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches two AppErrors by code so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Type == t.Type
}

// WithCause returns a copy so shared sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
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
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
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
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewExternalError reports a failed call to a third party (gateway, mail API).
func NewExternalError(message string, code ErrorCode, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

var (
	ErrCourseNotFound      = NewNotFoundError("Course not found", ErrCodeCourseNotFound)
	ErrWorkshopNotFound    = NewNotFoundError("Workshop not found", ErrCodeWorkshopNotFound)
	ErrServiceNotFound     = NewNotFoundError("Service not found", ErrCodeServiceNotFound)
	ErrPostNotFound        = NewNotFoundError("Post not found", ErrCodePostNotFound)
	ErrApplicationNotFound = NewNotFoundError("Workshop application not found", ErrCodeApplicationNotFound)
	ErrBookingNotFound     = NewNotFoundError("Service booking not found", ErrCodeBookingNotFound)
	ErrContactNotFound     = NewNotFoundError("Contact message not found", ErrCodeContactNotFound)
	ErrItemInactive        = NewValidationError("This item is not available", ErrCodeItemInactive)
	ErrWorkshopFull        = NewValidationError("Workshop is full", ErrCodeWorkshopFull)
	ErrAlreadyEnrolled     = NewConflictError("Already enrolled in this course", ErrCodeAlreadyEnrolled)
	ErrSlugTaken           = NewConflictError("Slug is already in use", ErrCodeSlugTaken)

	ErrPaymentNotFound         = NewNotFoundError("Payment not found", ErrCodePaymentNotFound)
	ErrPaymentAlreadyCompleted = NewValidationError("Payment already completed", ErrCodePaymentAlreadyCompleted)
	ErrInvalidPaymentStatus    = NewValidationError("Payment is not pending", ErrCodeInvalidPaymentStatus)
	ErrInvalidSignature        = NewValidationError("Payment verification failed", ErrCodeInvalidSignature)
	ErrOrderMismatch           = NewValidationError("Gateway order does not match payment", ErrCodeOrderMismatch)
	ErrGatewayUnavailable      = NewExternalError("Payment gateway unavailable, please try again later", ErrCodeGatewayUnavailable, nil)

	ErrSubscriberNotFound = NewNotFoundError("Invalid or expired link", ErrCodeSubscriberNotFound)
	ErrAlreadySubscribed  = NewConflictError("Email is already subscribed", ErrCodeAlreadySubscribed)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
