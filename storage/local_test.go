package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	ctx := context.Background()
	disputeID := uuid.New()

	path, err := store.Upload(ctx, disputeID, "contract draft.pdf", strings.NewReader("file bytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.HasPrefix(path, "disputes/"+disputeID.String()+"/") {
		t.Errorf("path not grouped by dispute: %q", path)
	}
	if strings.Contains(path, " ") {
		t.Errorf("path not sanitized: %q", path)
	}

	reader, err := store.Download(ctx, path)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "file bytes" {
		t.Errorf("content mismatch: %q", data)
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Download(ctx, path); err == nil {
		t.Error("expected download to fail after delete")
	}
}

func TestLocalStorageDeleteMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	if err := store.Delete(context.Background(), "disputes/nope/missing.pdf"); err != nil {
		t.Errorf("deleting a missing file should not error: %v", err)
	}
}

func TestLocalStorageUniquePaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	ctx := context.Background()
	disputeID := uuid.New()

	first, err := store.Upload(ctx, disputeID, "same.txt", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	second, err := store.Upload(ctx, disputeID, "same.txt", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if first == second {
		t.Errorf("same-named uploads collided on path %q", first)
	}
}
