package appErrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a business outcome independent of transport.
type ErrorCode string

// AppError is the single error shape every core operation returns for
// expected business conditions. HTTPCode is the status the API layer maps
// the error to; the core itself never inspects it.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two AppErrors by code, so sentinels below can be
// compared against copies carrying details.
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if stderrors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

// WithDetails returns a copy of the error carrying extra context, leaving
// the shared sentinel untouched.
func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	type alias struct {
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}
	return json.Marshal(&alias{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Predeclared errors.
var (
	// Validation
	ErrValidationFailed  = New(CodeValidationFailed, "Validation failed", http.StatusBadRequest)
	ErrInvalidTimeWindow = New(CodeInvalidTimeWindow, "Shift end time must be after start time", http.StatusBadRequest)
	ErrInvalidRate       = New(CodeInvalidRate, "Hourly rate must be positive", http.StatusBadRequest)

	// Resources
	ErrShiftNotFound       = New(CodeShiftNotFound, "Shift not found", http.StatusNotFound)
	ErrApplicationNotFound = New(CodeApplicationNotFound, "Application not found", http.StatusNotFound)

	// Shift state machine
	ErrInvalidShiftStatus    = New(CodeInvalidShiftStatus, "Shift status does not allow this transition", http.StatusConflict)
	ErrApplicationNotPending = New(CodeApplicationNotPending, "Application is no longer pending", http.StatusConflict)
	ErrDuplicateApplication  = New(CodeDuplicateApplication, "Caregiver already has an active application for this shift", http.StatusConflict)
	ErrNotCandidate          = New(CodeNotCandidate, "Application does not hold the candidate slot for this shift", http.StatusConflict)
	ErrNoAcceptedCandidate   = New(CodeNoAcceptedCandidate, "Shift has no accepted candidate to confirm", http.StatusConflict)
	ErrAlreadyAssigned       = New(CodeAlreadyAssigned, "Shift is already assigned to a different caregiver", http.StatusConflict)
	ErrStaleVersion          = New(CodeStaleVersion, "Shift was modified concurrently, retry the operation", http.StatusConflict)

	// Scheduling
	ErrScheduleOverlap = New(CodeScheduleOverlap, "Caregiver has an overlapping commitment in this time window", http.StatusConflict)

	// Authorization
	ErrForbidden = New(CodeForbidden, "Access denied", http.StatusForbidden)
)

// Helpers

func ValidationError(details interface{}) *AppError {
	return ErrValidationFailed.WithDetails(details)
}

func InternalError(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

func DatabaseError(err error) *AppError {
	return Wrap(err, CodeDatabaseError, "Database operation failed", http.StatusInternalServerError)
}

func NewForbiddenError(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}
