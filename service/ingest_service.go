package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"disputedesk-backend/logger"
	"disputedesk-backend/models"

	"github.com/google/uuid"
)

var ErrEmptyContent = errors.New("document content is required")

// ChunkStore persists document chunks and their embeddings
type ChunkStore interface {
	InsertBatch(ctx context.Context, chunks []*models.DocumentChunk) error
	DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error
}

// IngestRequest asks for a document's text to be chunked, embedded
// and stored for retrieval
type IngestRequest struct {
	DocumentID uuid.UUID
	UserID     uuid.UUID
	Content    string
	PageNumber *int
}

// IngestResult reports how many chunks were stored
type IngestResult struct {
	ChunkCount int `json:"chunk_count"`
}

// IngestService turns document text into searchable embedded chunks.
// Unlike chat retrieval, an embedding failure here is fatal: a
// document with no chunks is invisible to search, so the caller must
// know ingestion did not happen.
type IngestService struct {
	embedder EmbeddingProvider
	chunks   ChunkStore
	log      *logger.Logger
}

// IngestOption is a functional option for IngestService
type IngestOption func(*IngestService)

// IngestWithLogger sets the logger
func IngestWithLogger(log *logger.Logger) IngestOption {
	return func(s *IngestService) {
		s.log = log
	}
}

// NewIngestService creates an ingest service
func NewIngestService(embedder EmbeddingProvider, chunks ChunkStore, opts ...IngestOption) *IngestService {
	s := &IngestService{
		embedder: embedder,
		chunks:   chunks,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmbeddings chunks the content, embeds every chunk in one batch
// and replaces any previously stored chunks for the document
func (s *IngestService) CreateEmbeddings(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	texts := SplitIntoChunks(req.Content, DefaultChunkSize)
	if len(texts) == 0 {
		return &IngestResult{ChunkCount: 0}, nil
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedded %d chunks, expected %d", len(embeddings), len(texts))
	}

	chunks := make([]*models.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &models.DocumentChunk{
			DocumentID: req.DocumentID,
			UserID:     req.UserID,
			Content:    text,
			Embedding:  embeddings[i],
			PageNumber: req.PageNumber,
			ChunkIndex: i,
		})
	}

	// Re-ingestion replaces, never duplicates
	if err := s.chunks.DeleteByDocumentID(ctx, req.DocumentID); err != nil {
		return nil, fmt.Errorf("clear existing chunks: %w", err)
	}
	if err := s.chunks.InsertBatch(ctx, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}

	s.log.Info("document ingested", "document_id", req.DocumentID, "chunks", len(chunks))

	return &IngestResult{ChunkCount: len(chunks)}, nil
}
