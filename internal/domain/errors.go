package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a referenced question does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrDimensionNotFound indicates a referenced dimension does not exist.
	ErrDimensionNotFound = errors.New("dimension not found")
	// ErrValidationFailed is wrapped by every *ValidationError.
	ErrValidationFailed = errors.New("validation failed")
	// ErrQuizUnavailable is returned when a quiz exists but is not public and active.
	ErrQuizUnavailable = errors.New("quiz is not available")
	// ErrRepairInProgress is returned when a quiz is locked by an integrity repair.
	ErrRepairInProgress = errors.New("quiz repair in progress")
)

// Issue is a machine-readable validation finding.
type Issue struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Code + ": " + i.Message
	}
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Message, i.Code)
}

// ValidationError carries the issues that rejected a definition or payload.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// Codes returns the reason codes in issue order.
func (e *ValidationError) Codes() []string {
	codes := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}
