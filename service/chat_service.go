package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"disputedesk-backend/ai"
	"disputedesk-backend/logger"
	"disputedesk-backend/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyMessage = errors.New("message is required")
)

// chatRetrievalLimit is how many passages back a chat answer
const chatRetrievalLimit = 3

// EmbeddingProvider produces embeddings for queries and documents
type EmbeddingProvider interface {
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
	EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error)
}

// CompletionProvider generates text from an assembled prompt
type CompletionProvider interface {
	Complete(ctx context.Context, req ai.GenerateRequest) (string, error)
}

// VectorSearcher ranks stored chunks by similarity to an embedding
type VectorSearcher interface {
	Search(ctx context.Context, embedding []float64, limit int) ([]models.SearchResult, error)
}

// ConversationStore persists chat conversations and their messages
type ConversationStore interface {
	GetOrCreate(ctx context.Context, disputeID, userID uuid.UUID) (*models.Conversation, error)
	AppendMessage(ctx context.Context, msg *models.Message) error
}

// RetrievalResult is the explicit outcome of the retrieval stage. A
// failed retrieval is a valid outcome, not an abort: the pipeline
// continues without passages.
type RetrievalResult struct {
	Passages []models.SearchResult
	Err      error
}

// Degraded reports whether retrieval failed and the answer was
// generated without document context
func (r RetrievalResult) Degraded() bool {
	return r.Err != nil
}

// ChatRequest is one user turn against a dispute
type ChatRequest struct {
	UserID    uuid.UUID
	DisputeID uuid.UUID
	Message   string
	Details   DisputeDetails
	History   []ChatTurn
}

// ChatResult is the answer to one chat turn. Sources lists the
// passages shown to the model, in marker order. PersistWarning is set
// when the turn could not be saved but the answer is still usable.
type ChatResult struct {
	Content        string          `json:"content"`
	Sources        []models.Source `json:"sources"`
	ConversationID uuid.UUID       `json:"conversation_id,omitempty"`
	Degraded       bool            `json:"degraded,omitempty"`
	PersistWarning string          `json:"persist_warning,omitempty"`
}

// ChatService runs the retrieval-augmented chat pipeline: embed the
// query, search stored chunks, assemble the prompt, generate, bind
// sources, persist the turn.
type ChatService struct {
	embedder      EmbeddingProvider
	completer     CompletionProvider
	searcher      VectorSearcher
	conversations ConversationStore
	log           *logger.Logger
}

// ChatOption is a functional option for ChatService
type ChatOption func(*ChatService)

// ChatWithConversations sets the conversation store. Without one,
// turns are answered but not persisted.
func ChatWithConversations(store ConversationStore) ChatOption {
	return func(s *ChatService) {
		s.conversations = store
	}
}

// ChatWithLogger sets the logger
func ChatWithLogger(log *logger.Logger) ChatOption {
	return func(s *ChatService) {
		s.log = log
	}
}

// NewChatService creates a chat service
func NewChatService(embedder EmbeddingProvider, completer CompletionProvider, searcher VectorSearcher, opts ...ChatOption) *ChatService {
	s := &ChatService{
		embedder:  embedder,
		completer: completer,
		searcher:  searcher,
		log:       logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Respond answers one chat turn. Retrieval failures degrade to an
// uncontextualized answer; completion failures abort the turn;
// persistence failures return the answer with a warning.
func (s *ChatService) Respond(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	retrieval := s.retrieve(ctx, req)
	if retrieval.Degraded() {
		s.log.Warn("retrieval failed, answering without document context",
			"dispute_id", req.DisputeID, "error", retrieval.Err)
	}

	prompt := BuildChatPrompt(req.Details, req.History, req.Message, retrieval.Passages)

	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	result := &ChatResult{
		Content:  content,
		Sources:  BindSources(retrieval.Passages),
		Degraded: retrieval.Degraded(),
	}

	s.persistTurn(ctx, req, result)

	return result, nil
}

// retrieve embeds the search query and ranks stored chunks. The query
// folds in the dispute title and description so short messages still
// land near the right documents.
func (s *ChatService) retrieve(ctx context.Context, req ChatRequest) RetrievalResult {
	query := req.Message
	if req.Details.Title != "" {
		query += " " + req.Details.Title
	}
	if req.Details.Description != "" {
		query += " " + req.Details.Description
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return RetrievalResult{Err: fmt.Errorf("embed query: %w", err)}
	}

	passages, err := s.searcher.Search(ctx, embedding, chatRetrievalLimit)
	if err != nil {
		return RetrievalResult{Err: fmt.Errorf("search chunks: %w", err)}
	}

	return RetrievalResult{Passages: passages}
}

// persistTurn saves the user and assistant messages. Failure here
// never discards the generated answer; the result carries a warning
// instead.
func (s *ChatService) persistTurn(ctx context.Context, req ChatRequest, result *ChatResult) {
	if s.conversations == nil || req.DisputeID == uuid.Nil {
		return
	}

	conv, err := s.conversations.GetOrCreate(ctx, req.DisputeID, req.UserID)
	if err != nil {
		s.log.Error("failed to load conversation", "dispute_id", req.DisputeID, "error", err)
		result.PersistWarning = "conversation could not be saved"
		return
	}
	result.ConversationID = conv.ID

	userMsg := &models.Message{
		ConversationID: conv.ID,
		DisputeID:      req.DisputeID,
		UserID:         req.UserID,
		Role:           models.RoleUser,
		Content:        req.Message,
	}
	if err := s.conversations.AppendMessage(ctx, userMsg); err != nil {
		s.log.Error("failed to save user message", "conversation_id", conv.ID, "error", err)
		result.PersistWarning = "conversation could not be saved"
		return
	}

	assistantMsg := &models.Message{
		ConversationID: conv.ID,
		DisputeID:      req.DisputeID,
		UserID:         req.UserID,
		Role:           models.RoleAssistant,
		Content:        result.Content,
		Sources:        result.Sources,
	}
	if err := s.conversations.AppendMessage(ctx, assistantMsg); err != nil {
		s.log.Error("failed to save assistant message", "conversation_id", conv.ID, "error", err)
		result.PersistWarning = "conversation could not be saved"
	}
}
