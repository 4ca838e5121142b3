package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionConfidence grades how sure the document-info extraction
// was about its answer
type ExtractionConfidence string

const (
	ConfidenceHigh   ExtractionConfidence = "high"
	ConfidenceMedium ExtractionConfidence = "medium"
	ConfidenceLow    ExtractionConfidence = "low"
)

// Document represents an uploaded file belonging to a dispute
type Document struct {
	ID          uuid.UUID  `json:"id"`
	DisputeID   uuid.UUID  `json:"dispute_id"`
	UserID      uuid.UUID  `json:"user_id"`
	FileName    string     `json:"file_name"`
	StoragePath string     `json:"storage_path"`
	FileSize    int64      `json:"file_size"`
	MimeType    string     `json:"mime_type"`
	UploadedAt  time.Time  `json:"uploaded_at"`

	// Populated by AI document-info extraction, empty until processed
	DocumentType         *string               `json:"document_type,omitempty"`
	ExtractedDate        *time.Time            `json:"extracted_date,omitempty"`
	ExtractionConfidence *ExtractionConfidence `json:"extraction_confidence,omitempty"`
	ProcessedAt          *time.Time            `json:"processed_at,omitempty"`
}
