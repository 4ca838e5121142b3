package models

import (
	"time"

	"github.com/google/uuid"
)

// EmbeddingDimensions is the fixed dimensionality of every stored
// chunk embedding. All chunks in the knowledge base must share it.
const EmbeddingDimensions = 768

// DocumentChunk is a bounded-length text segment of a document with
// its embedding vector. Chunks are written once during ingestion and
// deleted with their parent document.
type DocumentChunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	UserID     uuid.UUID `json:"user_id"`
	Content    string    `json:"content"`
	Embedding  []float64 `json:"-"`
	ChunkIndex int       `json:"chunk_index"`
	PageNumber *int      `json:"page_number,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SearchResult is one passage returned by the vector similarity
// search, carrying provenance for citation display
type SearchResult struct {
	ChunkID       uuid.UUID `json:"chunk_id"`
	DocumentID    uuid.UUID `json:"document_id"`
	Content       string    `json:"content"`
	PageNumber    int       `json:"page_number"`
	Similarity    float64   `json:"similarity"`
	DocumentTitle string    `json:"document_title"`
}
