package services

import (
	"errors"

	apperrors "github.com/celprep/practice-service/internal/errors"
	"github.com/celprep/practice-service/internal/session"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionAccessDenied = errors.New("access denied to session")
	ErrSessionNotCompleted = errors.New("session is not completed yet")
	ErrSectionRequired     = errors.New("either a section or full_test is required")

	// Auth specific errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Content specific errors
	ErrQuestionNotFound = errors.New("question not found")
	ErrImportEmpty      = errors.New("import file contains no questions")
)

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrQuestionNotFound)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSessionAccessDenied) ||
		errors.Is(err, ErrInvalidCredentials)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrSectionRequired) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsConflict checks if error represents a resource or state conflict. The
// session engine's guard errors land here: they are normal control flow the
// client resolves with another request, not failures.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrSessionNotCompleted) ||
		errors.Is(err, session.ErrSessionCompleted) ||
		errors.Is(err, session.ErrConfirmationRequired) ||
		errors.Is(err, session.ErrRetreatNotAllowed) ||
		errors.Is(err, session.ErrTaskInProgress) ||
		errors.Is(err, session.ErrResponseLocked) ||
		errors.Is(err, session.ErrItemNotActive) ||
		errors.Is(err, session.ErrNotAnswering) ||
		errors.Is(err, session.ErrMicrophoneDenied) ||
		errors.Is(err, session.ErrNotRecording)
}
