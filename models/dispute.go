package models

import (
	"time"

	"github.com/google/uuid"
)

// DisputeStatus represents the status of a dispute
type DisputeStatus string

const (
	DisputeStatusActive   DisputeStatus = "active"
	DisputeStatusPending  DisputeStatus = "pending"
	DisputeStatusResolved DisputeStatus = "resolved"
)

// Urgency levels accepted on a dispute
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Dispute represents a dispute case entity. Documents, reports,
// conversations and collaborators all hang off a dispute and are
// removed with it.
type Dispute struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"user_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	DisputeType   *string       `json:"dispute_type,omitempty"`
	OpposingParty *string       `json:"opposing_party,omitempty"`
	DisputeValue  *float64      `json:"dispute_value,omitempty"`
	Urgency       *string       `json:"urgency,omitempty"`
	Status        DisputeStatus `json:"status"`
	DocumentCount int           `json:"document_count"`
	ReportCount   int           `json:"report_count"`
	CreatedAt     time.Time     `json:"created_at"`
	LastModified  time.Time     `json:"last_modified"`
}
