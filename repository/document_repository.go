package repository

import (
	"context"

	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository handles database operations for documents
type DocumentRepository struct {
	db *pgxpool.Pool
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create creates a new document record
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO user_documents (
			dispute_id, user_id, file_name, storage_path, file_size, mime_type
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, uploaded_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.DisputeID,
		doc.UserID,
		doc.FileName,
		doc.StoragePath,
		doc.FileSize,
		doc.MimeType,
	).Scan(&doc.ID, &doc.UploadedAt)

	return err
}

// GetByID retrieves a document by ID
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	doc := &models.Document{}
	query := `
		SELECT id, dispute_id, user_id, file_name, storage_path, file_size,
			mime_type, uploaded_at, document_type, extracted_date,
			extraction_confidence, processed_at
		FROM user_documents
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.DisputeID,
		&doc.UserID,
		&doc.FileName,
		&doc.StoragePath,
		&doc.FileSize,
		&doc.MimeType,
		&doc.UploadedAt,
		&doc.DocumentType,
		&doc.ExtractedDate,
		&doc.ExtractionConfidence,
		&doc.ProcessedAt,
	)

	if err != nil {
		return nil, err
	}

	return doc, nil
}

// ListByDisputeID retrieves all documents for a dispute, newest first
func (r *DocumentRepository) ListByDisputeID(ctx context.Context, disputeID uuid.UUID) ([]*models.Document, error) {
	query := `
		SELECT id, dispute_id, user_id, file_name, storage_path, file_size,
			mime_type, uploaded_at, document_type, extracted_date,
			extraction_confidence, processed_at
		FROM user_documents
		WHERE dispute_id = $1
		ORDER BY uploaded_at DESC`

	rows, err := r.db.Query(ctx, query, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.DisputeID,
			&doc.UserID,
			&doc.FileName,
			&doc.StoragePath,
			&doc.FileSize,
			&doc.MimeType,
			&doc.UploadedAt,
			&doc.DocumentType,
			&doc.ExtractedDate,
			&doc.ExtractionConfidence,
			&doc.ProcessedAt,
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// UpdateProcessingResult records the outcome of AI document-info
// extraction, including a possible rename
func (r *DocumentRepository) UpdateProcessingResult(ctx context.Context, doc *models.Document) error {
	query := `
		UPDATE user_documents SET
			file_name = $2,
			storage_path = $3,
			document_type = $4,
			extracted_date = $5,
			extraction_confidence = $6,
			processed_at = NOW()
		WHERE id = $1
		RETURNING processed_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.ID,
		doc.FileName,
		doc.StoragePath,
		doc.DocumentType,
		doc.ExtractedDate,
		doc.ExtractionConfidence,
	).Scan(&doc.ProcessedAt)

	return err
}

// Delete deletes a document record. Its chunks cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM user_documents WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
