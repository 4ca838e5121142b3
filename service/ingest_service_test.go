package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"disputedesk-backend/models"

	"github.com/google/uuid"
)

type fakeChunkStore struct {
	deleted   []uuid.UUID
	inserted  []*models.DocumentChunk
	deleteErr error
	insertErr error
}

func (f *fakeChunkStore) InsertBatch(ctx context.Context, chunks []*models.DocumentChunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, chunks...)
	return nil
}

func (f *fakeChunkStore) DeleteByDocumentID(ctx context.Context, documentID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, documentID)
	return nil
}

func TestCreateEmbeddingsStoresIndexedChunks(t *testing.T) {
	store := &fakeChunkStore{}
	svc := NewIngestService(&fakeEmbedder{vec: []float64{0.5}}, store)

	docID := uuid.New()
	content := strings.TrimSpace(strings.Repeat("This is one reasonably sized sentence about the dispute. ", 40))

	result, err := svc.CreateEmbeddings(context.Background(), IngestRequest{
		DocumentID: docID,
		UserID:     uuid.New(),
		Content:    content,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ChunkCount < 2 {
		t.Fatalf("expected multiple chunks, got %d", result.ChunkCount)
	}
	if len(store.deleted) != 1 || store.deleted[0] != docID {
		t.Error("existing chunks were not cleared before insert")
	}
	if len(store.inserted) != result.ChunkCount {
		t.Fatalf("stored %d chunks, reported %d", len(store.inserted), result.ChunkCount)
	}
	for i, chunk := range store.inserted {
		if chunk.ChunkIndex != i {
			t.Errorf("chunk %d has index %d", i, chunk.ChunkIndex)
		}
		if chunk.DocumentID != docID {
			t.Errorf("chunk %d bound to wrong document", i)
		}
		if len(chunk.Embedding) == 0 {
			t.Errorf("chunk %d has no embedding", i)
		}
	}
}

func TestCreateEmbeddingsFailsOnEmbeddingError(t *testing.T) {
	store := &fakeChunkStore{}
	svc := NewIngestService(&fakeEmbedder{batchErr: errors.New("quota exceeded")}, store)

	_, err := svc.CreateEmbeddings(context.Background(), IngestRequest{
		DocumentID: uuid.New(),
		Content:    "Some document content.",
	})
	if err == nil {
		t.Fatal("expected error when embedding fails")
	}
	if len(store.deleted) != 0 || len(store.inserted) != 0 {
		t.Error("store must be untouched when embedding fails")
	}
}

func TestCreateEmbeddingsRejectsEmptyContent(t *testing.T) {
	svc := NewIngestService(&fakeEmbedder{}, &fakeChunkStore{})

	_, err := svc.CreateEmbeddings(context.Background(), IngestRequest{
		DocumentID: uuid.New(),
		Content:    "   ",
	})
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("expected ErrEmptyContent, got %v", err)
	}
}
