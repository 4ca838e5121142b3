package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"disputedesk-backend/ai"
	"disputedesk-backend/models"

	"github.com/google/uuid"
)

type fakeEmbedder struct {
	vec      []float64
	batchErr error
	queryErr error
	calls    int
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	f.calls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.vec, nil
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

type fakeCompleter struct {
	response string
	err      error
	lastReq  ai.GenerateRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req ai.GenerateRequest) (string, error) {
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeSearcher struct {
	results []models.SearchResult
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, embedding []float64, limit int) ([]models.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.results) {
		return f.results[:limit], nil
	}
	return f.results, nil
}

type fakeConversations struct {
	conv      *models.Conversation
	getErr    error
	appendErr error
	messages  []*models.Message
}

func (f *fakeConversations) GetOrCreate(ctx context.Context, disputeID, userID uuid.UUID) (*models.Conversation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.conv == nil {
		f.conv = &models.Conversation{ID: uuid.New(), DisputeID: disputeID, UserID: userID}
	}
	return f.conv, nil
}

func (f *fakeConversations) AppendMessage(ctx context.Context, msg *models.Message) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.messages = append(f.messages, msg)
	return nil
}

func TestChatRespondBindsSourcesInOrder(t *testing.T) {
	searcher := &fakeSearcher{results: samplePassages(2)}
	completer := &fakeCompleter{response: "Based on [1] and [2], negotiate."}
	svc := NewChatService(&fakeEmbedder{vec: []float64{0.1}}, completer, searcher)

	result, err := svc.Respond(context.Background(), ChatRequest{
		UserID:    uuid.New(),
		DisputeID: uuid.New(),
		Message:   "what now?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}
	if result.Sources[0].Source != "contract-1.pdf" || result.Sources[1].Source != "contract-2.pdf" {
		t.Errorf("sources out of retrieval order: %+v", result.Sources)
	}
	if result.Degraded {
		t.Error("result marked degraded despite successful retrieval")
	}
	if !strings.Contains(completer.lastReq.Messages[0].Text, "[2]") {
		t.Error("passages were not numbered in the prompt")
	}
}

func TestChatRespondDegradesOnRetrievalFailure(t *testing.T) {
	embedder := &fakeEmbedder{queryErr: errors.New("embedding down")}
	completer := &fakeCompleter{response: "general advice"}
	svc := NewChatService(embedder, completer, &fakeSearcher{})

	result, err := svc.Respond(context.Background(), ChatRequest{
		UserID:    uuid.New(),
		DisputeID: uuid.New(),
		Message:   "what now?",
	})
	if err != nil {
		t.Fatalf("retrieval failure must not fail the turn: %v", err)
	}

	if result.Content != "general advice" {
		t.Errorf("unexpected content: %q", result.Content)
	}
	if len(result.Sources) != 0 {
		t.Errorf("degraded answer must carry no sources, got %d", len(result.Sources))
	}
	if !result.Degraded {
		t.Error("result not marked degraded")
	}
	if strings.Contains(completer.lastReq.Messages[0].Text, "Relevant passages") {
		t.Error("prompt contains passage block despite failed retrieval")
	}
}

func TestChatRespondSearchFailureAlsoDegrades(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("pgvector down")}
	svc := NewChatService(&fakeEmbedder{vec: []float64{0.1}}, &fakeCompleter{response: "ok"}, searcher)

	result, err := svc.Respond(context.Background(), ChatRequest{Message: "question"})
	if err != nil {
		t.Fatalf("search failure must not fail the turn: %v", err)
	}
	if !result.Degraded || len(result.Sources) != 0 {
		t.Errorf("expected degraded sourceless result, got %+v", result)
	}
}

func TestChatRespondAbortsOnCompletionFailure(t *testing.T) {
	completer := &fakeCompleter{err: ai.ErrCompletionFailed}
	svc := NewChatService(&fakeEmbedder{vec: []float64{0.1}}, completer, &fakeSearcher{})

	result, err := svc.Respond(context.Background(), ChatRequest{Message: "question"})
	if err == nil {
		t.Fatal("expected error on completion failure")
	}
	if !errors.Is(err, ai.ErrCompletionFailed) {
		t.Errorf("error should wrap the completion failure: %v", err)
	}
	if result != nil {
		t.Errorf("no result expected on completion failure, got %+v", result)
	}
}

func TestChatRespondPersistsTurn(t *testing.T) {
	store := &fakeConversations{}
	svc := NewChatService(
		&fakeEmbedder{vec: []float64{0.1}},
		&fakeCompleter{response: "answer [1]"},
		&fakeSearcher{results: samplePassages(1)},
		ChatWithConversations(store),
	)

	disputeID := uuid.New()
	result, err := svc.Respond(context.Background(), ChatRequest{
		UserID:    uuid.New(),
		DisputeID: disputeID,
		Message:   "question",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PersistWarning != "" {
		t.Errorf("unexpected persist warning: %q", result.PersistWarning)
	}
	if len(store.messages) != 2 {
		t.Fatalf("expected user and assistant messages, got %d", len(store.messages))
	}
	if store.messages[0].Role != models.RoleUser || store.messages[0].Content != "question" {
		t.Errorf("first saved message should be the user turn: %+v", store.messages[0])
	}
	if store.messages[1].Role != models.RoleAssistant {
		t.Errorf("second saved message should be the assistant turn: %+v", store.messages[1])
	}
	if len(store.messages[1].Sources) != 1 {
		t.Errorf("assistant message should carry bound sources, got %d", len(store.messages[1].Sources))
	}
	if result.ConversationID != store.conv.ID {
		t.Error("result missing conversation id")
	}
}

func TestChatRespondWarnsOnPersistenceFailure(t *testing.T) {
	store := &fakeConversations{appendErr: errors.New("db down")}
	svc := NewChatService(
		&fakeEmbedder{vec: []float64{0.1}},
		&fakeCompleter{response: "answer"},
		&fakeSearcher{},
		ChatWithConversations(store),
	)

	result, err := svc.Respond(context.Background(), ChatRequest{
		UserID:    uuid.New(),
		DisputeID: uuid.New(),
		Message:   "question",
	})
	if err != nil {
		t.Fatalf("persistence failure must not fail the turn: %v", err)
	}
	if result.Content != "answer" {
		t.Errorf("answer discarded: %q", result.Content)
	}
	if result.PersistWarning == "" {
		t.Error("expected a persist warning")
	}
}

func TestChatRespondRejectsEmptyMessage(t *testing.T) {
	svc := NewChatService(&fakeEmbedder{}, &fakeCompleter{}, &fakeSearcher{})

	_, err := svc.Respond(context.Background(), ChatRequest{Message: "   "})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}
