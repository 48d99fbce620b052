package services

import (
	"errors"
	"fmt"

	"github.com/cppla/bootcamp-tracker/models"
)

var (
	// ErrNotFound is returned when a user or submission does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks bad enum values or malformed identifiers.
	ErrValidation = errors.New("validation failed")
	// ErrForbidden is returned when the caller may not modify a submission.
	ErrForbidden = errors.New("forbidden")
)

// DuplicateSubmissionError reports that the daily limit for Type was already reached on Date.
type DuplicateSubmissionError struct {
	Type models.SubmissionType
	Date models.Date
}

func (e *DuplicateSubmissionError) Error() string {
	return fmt.Sprintf("%s already submitted for %s", e.Type, e.Date)
}
