package models

// DateLayout is the ISO-8601 calendar date layout used by every record date.
const DateLayout = "2006-01-02"

// ExtractedRecord is the canonical shape of one resolution.
// Name, ResolutionDate and Concept are nil when a tolerant extractor
// could not recover them; they serialize as JSON null.
type ExtractedRecord struct {
	Name           *string `json:"name"`
	ResolutionDate *string `json:"resolution_date"`
	Concept        *string `json:"concept"`
	FullText       string  `json:"full_text"`
	ProcessDate    string  `json:"process_date"`
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
