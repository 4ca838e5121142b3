package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"disputedesk-backend/ai"
	"disputedesk-backend/logger"
	"disputedesk-backend/models"
	"disputedesk-backend/storage"

	"github.com/google/uuid"
)

var ErrMissingFile = errors.New("file name and content are required")

// DocumentStore persists document records
type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByDisputeID(ctx context.Context, disputeID uuid.UUID) ([]*models.Document, error)
	UpdateProcessingResult(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DocumentCounter refreshes the denormalized document count on a
// dispute
type DocumentCounter interface {
	RefreshDocumentCount(ctx context.Context, disputeID uuid.UUID) error
}

// DocumentInfoExtractor classifies a document and guesses its date
type DocumentInfoExtractor interface {
	ExtractDocumentInfo(ctx context.Context, content, fileName string) (*ai.DocumentInfo, error)
}

// UploadDocumentRequest carries an uploaded file and its owner
type UploadDocumentRequest struct {
	DisputeID uuid.UUID
	UserID    uuid.UUID
	FileName  string
	MimeType  string
	FileSize  int64
	Data      io.Reader
}

// DocumentService owns document upload, AI processing and deletion
type DocumentService struct {
	documents DocumentStore
	counter   DocumentCounter
	extractor DocumentInfoExtractor
	files     storage.Storage
	log       *logger.Logger
}

// DocumentOption is a functional option for DocumentService
type DocumentOption func(*DocumentService)

// DocumentWithCounter sets the dispute document counter
func DocumentWithCounter(counter DocumentCounter) DocumentOption {
	return func(s *DocumentService) {
		s.counter = counter
	}
}

// DocumentWithExtractor sets the AI document-info extractor. Without
// one, ProcessDocument returns an error.
func DocumentWithExtractor(extractor DocumentInfoExtractor) DocumentOption {
	return func(s *DocumentService) {
		s.extractor = extractor
	}
}

// DocumentWithLogger sets the logger
func DocumentWithLogger(log *logger.Logger) DocumentOption {
	return func(s *DocumentService) {
		s.log = log
	}
}

// NewDocumentService creates a document service
func NewDocumentService(documents DocumentStore, files storage.Storage, opts ...DocumentOption) *DocumentService {
	s := &DocumentService{
		documents: documents,
		files:     files,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload stores the file bytes, creates the document record and
// refreshes the dispute's document count
func (s *DocumentService) Upload(ctx context.Context, req UploadDocumentRequest) (*models.Document, error) {
	if req.FileName == "" || req.Data == nil {
		return nil, ErrMissingFile
	}

	doc := &models.Document{
		DisputeID: req.DisputeID,
		UserID:    req.UserID,
		FileName:  req.FileName,
		FileSize:  req.FileSize,
		MimeType:  req.MimeType,
	}

	storagePath, err := s.files.Upload(ctx, req.DisputeID, req.FileName, req.Data)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}
	doc.StoragePath = storagePath

	if err := s.documents.Create(ctx, doc); err != nil {
		// Orphaned file cleanup, best effort
		if delErr := s.files.Delete(ctx, storagePath); delErr != nil {
			s.log.Warn("failed to remove orphaned file", "path", storagePath, "error", delErr)
		}
		return nil, fmt.Errorf("create document record: %w", err)
	}

	s.refreshCount(ctx, req.DisputeID)

	s.log.Info("document uploaded", "document_id", doc.ID, "dispute_id", req.DisputeID)

	return doc, nil
}

// Get returns a document owned by the user
func (s *DocumentService) Get(ctx context.Context, userID, documentID uuid.UUID) (*models.Document, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, ErrNotOwner
	}
	return doc, nil
}

// List returns a dispute's documents, newest first
func (s *DocumentService) List(ctx context.Context, disputeID uuid.UUID) ([]*models.Document, error) {
	return s.documents.ListByDisputeID(ctx, disputeID)
}

// Download opens a document's stored bytes
func (s *DocumentService) Download(ctx context.Context, userID, documentID uuid.UUID) (*models.Document, io.ReadCloser, error) {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.files.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return doc, reader, nil
}

// Delete removes the document record, its stored bytes and its chunks
// (via cascade), then refreshes the dispute's document count
func (s *DocumentService) Delete(ctx context.Context, userID, documentID uuid.UUID) error {
	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return err
	}

	if err := s.documents.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}

	// The record is gone; a stuck file is a cleanup problem, not a failure
	if err := s.files.Delete(ctx, doc.StoragePath); err != nil {
		s.log.Warn("failed to remove stored file", "path", doc.StoragePath, "error", err)
	}

	s.refreshCount(ctx, doc.DisputeID)

	return nil
}

// datePrefix matches a YYYY-MM-DD_ prefix added by earlier processing
var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_`)

// ProcessDocument runs AI document-info extraction over the document's
// text and records the result. When a date is found, the file is
// renamed to carry a YYYY-MM-DD_ prefix.
func (s *DocumentService) ProcessDocument(ctx context.Context, userID, documentID uuid.UUID, content string) (*models.Document, error) {
	if s.extractor == nil {
		return nil, errors.New("document processing is not configured")
	}

	doc, err := s.Get(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	info, err := s.extractor.ExtractDocumentInfo(ctx, content, doc.FileName)
	if err != nil {
		return nil, fmt.Errorf("extract document info: %w", err)
	}

	doc.DocumentType = &info.DocumentType
	confidence := models.ExtractionConfidence(info.Confidence)
	doc.ExtractionConfidence = &confidence

	if info.Date != "" {
		if parsed, err := time.Parse("2006-01-02", info.Date); err == nil {
			doc.ExtractedDate = &parsed
			doc.FileName = renameWithDate(doc.FileName, info.Date)
		}
	}

	if err := s.documents.UpdateProcessingResult(ctx, doc); err != nil {
		return nil, fmt.Errorf("record processing result: %w", err)
	}

	s.log.Info("document processed",
		"document_id", doc.ID,
		"type", info.DocumentType,
		"confidence", info.Confidence)

	return doc, nil
}

// renameWithDate prefixes the file name with the extracted date,
// replacing any date prefix a previous run added
func renameWithDate(fileName, date string) string {
	base := datePrefix.ReplaceAllString(fileName, "")
	return date + "_" + base
}

func (s *DocumentService) refreshCount(ctx context.Context, disputeID uuid.UUID) {
	if s.counter == nil || disputeID == uuid.Nil {
		return
	}
	if err := s.counter.RefreshDocumentCount(ctx, disputeID); err != nil {
		s.log.Warn("failed to refresh document count", "dispute_id", disputeID, "error", err)
	}
}

// ExtractText returns the plain text of an uploaded file. Real PDF and
// Word parsing happens in a worker outside this service; text files
// are read directly and other types get a placeholder so ingestion can
// proceed.
func ExtractText(fileName, mimeType string, data []byte) string {
	switch {
	case strings.HasPrefix(mimeType, "text/"),
		strings.HasSuffix(strings.ToLower(fileName), ".txt"),
		strings.HasSuffix(strings.ToLower(fileName), ".md"):
		return string(data)
	default:
		return fmt.Sprintf("Document: %s (%s). Text extraction for this file type is handled asynchronously.", fileName, mimeType)
	}
}
