package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StringList is a JSONB-persisted list of short text items used for
// the categorized report fields
type StringList []string

// Value implements driver.Valuer for JSONB
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*l = nil
		return nil
	}

	if len(bytes) == 0 {
		*l = nil
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Report is a generated strategic analysis for a dispute. Reports are
// immutable once written; several can coexist per dispute.
type Report struct {
	ID         uuid.UUID `json:"id"`
	DisputeID  uuid.UUID `json:"dispute_id"`
	UserID     uuid.UUID `json:"user_id"`
	ReportType string    `json:"report_type"`
	Title      string    `json:"title"`
	Summary    *string   `json:"summary,omitempty"`

	Strengths             StringList `json:"strengths,omitempty"`
	Weaknesses            StringList `json:"weaknesses,omitempty"`
	Opportunities         StringList `json:"opportunities,omitempty"`
	Risks                 StringList `json:"risks,omitempty"`
	NegotiationStrategies StringList `json:"negotiation_strategies,omitempty"`
	KeyTerms              StringList `json:"key_terms,omitempty"`
	Recommendations       StringList `json:"recommendations,omitempty"`

	// Human-readable reference list, present when retrieval context
	// was cited during generation
	References StringList `json:"references,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
