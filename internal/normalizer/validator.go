package normalizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"regdocs/internal/models"
)

// Validation errors.
var (
	ErrNilRecord             = errors.New("record is nil")
	ErrEmptyFullText         = errors.New("record full_text is empty")
	ErrInvalidResolutionDate = errors.New("record resolution_date is not YYYY-MM-DD")
	ErrInvalidProcessDate    = errors.New("record process_date is not YYYY-MM-DD")
	ErrEmptyField            = errors.New("record field is present but empty")
)

// Validator checks that a record is structurally complete. It does not
// judge the extracted text itself.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks if the record meets the batch requirements.
func (v *Validator) Validate(rec *models.ExtractedRecord) error {
	if rec == nil {
		return ErrNilRecord
	}

	if strings.TrimSpace(rec.FullText) == "" {
		return ErrEmptyFullText
	}

	if !isDate(rec.ProcessDate) {
		return fmt.Errorf("%w: %q", ErrInvalidProcessDate, rec.ProcessDate)
	}

	if rec.ResolutionDate != nil && !isDate(*rec.ResolutionDate) {
		return fmt.Errorf("%w: %q", ErrInvalidResolutionDate, *rec.ResolutionDate)
	}

	// Nil means "not found"; an empty string would be a silent extraction bug.
	if rec.Name != nil && strings.TrimSpace(*rec.Name) == "" {
		return fmt.Errorf("%w: name", ErrEmptyField)
	}

	if rec.Concept != nil && strings.TrimSpace(*rec.Concept) == "" {
		return fmt.Errorf("%w: concept", ErrEmptyField)
	}

	return nil
}

func isDate(s string) bool {
	_, err := time.Parse(models.DateLayout, s)

	return err == nil && len(s) == len(models.DateLayout)
}
