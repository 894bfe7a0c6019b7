package normalizer

import (
	"errors"
	"testing"

	"regdocs/internal/models"
)

func validRecord() *models.ExtractedRecord {
	return &models.ExtractedRecord{
		Name:           models.StringPtr("RESOLUCION No. 101 045 DE 2024"),
		ResolutionDate: models.StringPtr("2024-06-19"),
		Concept:        models.StringPtr("Por la cual se modifica"),
		FullText:       "RESOLUCION No. 101 045 DE 2024\n(19.JUN.2024)",
		ProcessDate:    "2024-07-01",
	}
}

func TestNewValidator(t *testing.T) {
	v := NewValidator()
	if v == nil {
		t.Fatal("NewValidator returned nil")
	}
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(validRecord()); err != nil {
		t.Errorf("Validate returned unexpected error for valid record: %v", err)
	}

	nullable := validRecord()
	nullable.Name = nil
	nullable.ResolutionDate = nil
	nullable.Concept = nil

	if err := v.Validate(nullable); err != nil {
		t.Errorf("Validate rejected record with null metadata: %v", err)
	}
}

func TestValidator_Validate_Errors(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		mutate  func(r *models.ExtractedRecord) *models.ExtractedRecord
		wantErr error
	}{
		{
			name:    "Nil record",
			mutate:  func(*models.ExtractedRecord) *models.ExtractedRecord { return nil },
			wantErr: ErrNilRecord,
		},
		{
			name: "Blank full text",
			mutate: func(r *models.ExtractedRecord) *models.ExtractedRecord {
				r.FullText = " \n "
				return r
			},
			wantErr: ErrEmptyFullText,
		},
		{
			name: "Bad process date",
			mutate: func(r *models.ExtractedRecord) *models.ExtractedRecord {
				r.ProcessDate = "01/07/2024"
				return r
			},
			wantErr: ErrInvalidProcessDate,
		},
		{
			name: "Bad resolution date",
			mutate: func(r *models.ExtractedRecord) *models.ExtractedRecord {
				r.ResolutionDate = models.StringPtr("2024-6-19")
				return r
			},
			wantErr: ErrInvalidResolutionDate,
		},
		{
			name: "Empty name",
			mutate: func(r *models.ExtractedRecord) *models.ExtractedRecord {
				r.Name = models.StringPtr("")
				return r
			},
			wantErr: ErrEmptyField,
		},
		{
			name: "Empty concept",
			mutate: func(r *models.ExtractedRecord) *models.ExtractedRecord {
				r.Concept = models.StringPtr("  ")
				return r
			},
			wantErr: ErrEmptyField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.mutate(validRecord()))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
