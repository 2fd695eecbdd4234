package services

import (
	"errors"
	"fmt"

	apperrors "github.com/nexora-edu/learning-service/internal/errors"
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

	// User specific errors
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrUserNotApproved    = errors.New("account is pending approval")
	ErrUserInactive       = errors.New("account has been deactivated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSelfModification   = errors.New("cannot modify your own role or active status")
	ErrInvalidRole        = errors.New("invalid user role")

	// Task specific errors
	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskAccessDenied   = errors.New("access denied to task")
	ErrTaskNotAssigned    = errors.New("you are not assigned to this task")
	ErrInvalidAssignees   = errors.New("some assigned users are invalid or not students")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("you have already submitted this task")
	ErrInvalidReview      = errors.New("status must be approved or rejected")

	// Quiz specific errors
	ErrQuizNotFound       = errors.New("quiz not found")
	ErrQuizAccessDenied   = errors.New("access denied to quiz")
	ErrQuizNoQuestions    = errors.New("quiz has no questions")
	ErrAlreadyAttempted   = errors.New("you have already completed this quiz")
	ErrAnswerCountInvalid = errors.New("answers do not match quiz questions")

	// Module specific errors
	ErrModuleNotFound     = errors.New("module not found")
	ErrModuleAccessDenied = errors.New("access denied to module")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type PermissionError struct {
	UserID     uint   `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %d cannot %s %s %d - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewPermissionError(userID, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTaskNotFound) ||
		errors.Is(err, ErrSubmissionNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrModuleNotFound)
}

// IsForbidden checks if error represents a role or ownership violation
func IsForbidden(err error) bool {
	if errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrTaskAccessDenied) ||
		errors.Is(err, ErrTaskNotAssigned) ||
		errors.Is(err, ErrQuizAccessDenied) ||
		errors.Is(err, ErrModuleAccessDenied) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsUnauthorized checks if error represents a failed authentication
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrUserNotApproved) ||
		errors.Is(err, ErrUserInactive)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrInvalidReview) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidAssignees) ||
		errors.Is(err, ErrAnswerCountInvalid) ||
		errors.Is(err, ErrQuizNoQuestions) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *apperrors.ValidationError
	return errors.As(err, &single)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrAlreadyAttempted) ||
		errors.Is(err, ErrSelfModification)
}
