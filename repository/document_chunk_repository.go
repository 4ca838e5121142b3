package repository

import (
	"context"
	"fmt"
	"strings"

	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentChunkRepository handles database operations for document
// chunks and the vector similarity search over them
type DocumentChunkRepository struct {
	db *pgxpool.Pool
}

// NewDocumentChunkRepository creates a new document chunk repository
func NewDocumentChunkRepository(db *pgxpool.Pool) *DocumentChunkRepository {
	return &DocumentChunkRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(embedding))
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// InsertBatch stores chunks for a document. Every chunk embedding must
// carry the fixed dimensionality.
func (r *DocumentChunkRepository) InsertBatch(ctx context.Context, chunks []*models.DocumentChunk) error {
	for _, chunk := range chunks {
		if len(chunk.Embedding) != models.EmbeddingDimensions {
			return fmt.Errorf("chunk %d: embedding must be %d dimensions, got %d",
				chunk.ChunkIndex, models.EmbeddingDimensions, len(chunk.Embedding))
		}
	}

	query := `
		INSERT INTO user_document_chunks (
			document_id, user_id, content, embedding, page_number, chunk_index
		) VALUES ($1, $2, $3, $4::vector, $5, $6)
		RETURNING id, created_at`

	for _, chunk := range chunks {
		err := r.db.QueryRow(
			ctx, query,
			chunk.DocumentID,
			chunk.UserID,
			chunk.Content,
			formatVector(chunk.Embedding),
			chunk.PageNumber,
			chunk.ChunkIndex,
		).Scan(&chunk.ID, &chunk.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}

	return nil
}

// DeleteByDocumentID removes all chunks for a document, used before
// re-ingesting its content
func (r *DocumentChunkRepository) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	query := `DELETE FROM user_document_chunks WHERE document_id = $1`
	_, err := r.db.Exec(ctx, query, documentID)
	return err
}

// CountByDocumentID returns the number of stored chunks for a document
func (r *DocumentChunkRepository) CountByDocumentID(ctx context.Context, documentID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_document_chunks WHERE document_id = $1`,
		documentID,
	).Scan(&count)
	return count, err
}

// Search returns up to limit passages ranked by descending cosine
// similarity to the query embedding. Tie order is whatever the index
// scan produces; callers must not depend on insertion order.
func (r *DocumentChunkRepository) Search(ctx context.Context, embedding []float64, limit int) ([]models.SearchResult, error) {
	if len(embedding) != models.EmbeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d",
			models.EmbeddingDimensions, len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			c.id,
			c.document_id,
			c.content,
			COALESCE(c.page_number, 0),
			1 - (c.embedding <=> $1::vector) AS similarity,
			d.file_name
		FROM user_document_chunks c
		JOIN user_documents d ON d.id = c.document_id
		ORDER BY c.embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query document chunks: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var result models.SearchResult
		err := rows.Scan(
			&result.ChunkID,
			&result.DocumentID,
			&result.Content,
			&result.PageNumber,
			&result.Similarity,
			&result.DocumentTitle,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
