package ai

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
	)
	return client, srv
}

func TestEmbedQueryNormalizes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":embedContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("missing api key header, got %q", got)
		}
		w.Write([]byte(`{"embedding":{"values":[3,4]}}`))
	})

	vec, err := client.EmbedQuery(context.Background(), "query text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("expected 2 values, got %d", len(vec))
	}
	// [3,4] has norm 5, so the unit vector is [0.6,0.8]
	if math.Abs(vec[0]-0.6) > 1e-9 || math.Abs(vec[1]-0.8) > 1e-9 {
		t.Errorf("vector not normalized: %v", vec)
	}
}

func TestEmbedQueryEmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embedding":{"values":[]}}`))
	})

	_, err := client.EmbedQuery(context.Background(), "query")
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Errorf("expected ErrEmbeddingFailed, got %v", err)
	}
}

func TestEmbedDocumentsCountMismatch(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"embeddings":[{"values":[1,0]}]}`))
	})

	_, err := client.EmbedDocuments(context.Background(), []string{"one", "two"})
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed on count mismatch, got %v", err)
	}
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for empty input")
	})

	vecs, err := client.EmbedDocuments(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("expected nil, nil for empty input, got %v, %v", vecs, err)
	}
}

func TestEmbeddingRetriesServerErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"embedding":{"values":[1,0]}}`))
	})

	_, err := client.EmbedQuery(context.Background(), "query")
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 attempts, got %d", got)
	}
}

func TestEmbeddingDoesNotRetryBadRequest(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := client.EmbedQuery(context.Background(), "query")
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("expected ErrEmbeddingFailed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("400 must not be retried, got %d attempts", got)
	}
}

func TestCompleteReturnsText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"generated "},{"text":"answer"}]},"finishReason":"STOP"}]}`))
	})

	text, err := client.Complete(context.Background(), GenerateRequest{
		System:      "be helpful",
		Messages:    []ChatMessage{{Role: RoleUser, Text: "hello"}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "generated answer" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestCompleteDoesNotRetry(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), GenerateRequest{
		Messages: []ChatMessage{{Role: RoleUser, Text: "hello"}},
	})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("expected ErrCompletionFailed, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("completion must make exactly one attempt, got %d", got)
	}
}

func TestCompleteBlockedPrompt(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	})

	_, err := client.Complete(context.Background(), GenerateRequest{
		Messages: []ChatMessage{{Role: RoleUser, Text: "hello"}},
	})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Errorf("expected ErrCompletionFailed for blocked prompt, got %v", err)
	}
}

func TestCompleteEmptyCandidates(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.Complete(context.Background(), GenerateRequest{
		Messages: []ChatMessage{{Role: RoleUser, Text: "hello"}},
	})
	if !errors.Is(err, ErrCompletionFailed) {
		t.Errorf("expected ErrCompletionFailed for empty candidates, got %v", err)
	}
}

func TestCompleteMapsAssistantRole(t *testing.T) {
	var body string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body = string(buf)
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	})

	_, err := client.Complete(context.Background(), GenerateRequest{
		Messages: []ChatMessage{
			{Role: RoleUser, Text: "question"},
			{Role: RoleAssistant, Text: "prior answer"},
			{Role: RoleUser, Text: "follow-up"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(body, `"role":"model"`) {
		t.Error("assistant role was not mapped to model on the wire")
	}
	if strings.Contains(body, `"role":"assistant"`) {
		t.Error("raw assistant role leaked onto the wire")
	}
}
