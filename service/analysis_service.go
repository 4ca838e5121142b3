package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"disputedesk-backend/logger"
	"disputedesk-backend/models"

	"github.com/google/uuid"
)

var (
	ErrNoDocuments     = errors.New("at least one document is required")
	ErrMissingAnalysis = errors.New("project description, dispute reason and desired outcome are required")
)

// analysisRetrievalLimit is how many passages feed a full analysis
const analysisRetrievalLimit = 5

// ReportStore persists generated analysis reports
type ReportStore interface {
	Create(ctx context.Context, report *models.Report) error
}

// ReportCounter refreshes the denormalized report count on a dispute
type ReportCounter interface {
	RefreshReportCount(ctx context.Context, disputeID uuid.UUID) error
}

// AnalyzeRequest asks for a full structured analysis of a dispute's
// documents
type AnalyzeRequest struct {
	UserID    uuid.UUID
	DisputeID uuid.UUID
	Title     string
	Details   DisputeDetails
	Documents []AnalysisDocument
}

// AnalyzeResult is the structured analysis plus the persisted report
// row when saving succeeded
type AnalyzeResult struct {
	Report         *models.Report  `json:"report"`
	Sources        []models.Source `json:"sources"`
	Degraded       bool            `json:"degraded,omitempty"`
	PersistWarning string          `json:"persist_warning,omitempty"`
}

// StrategicRequest asks for a quick strategic read on a newly
// described dispute, before any documents are uploaded
type StrategicRequest struct {
	ProjectDescription string `json:"project_description"`
	DisputeReason      string `json:"dispute_reason"`
	DesiredOutcome     string `json:"desired_outcome"`
}

// StrategicResult carries the generated strategic analysis text
type StrategicResult struct {
	Analysis string `json:"analysis"`
}

// AnalysisService generates dispute analyses: full structured reports
// over uploaded documents, and quick strategic reads from a text
// description
type AnalysisService struct {
	embedder  EmbeddingProvider
	completer CompletionProvider
	searcher  VectorSearcher
	reports   ReportStore
	counter   ReportCounter
	log       *logger.Logger
}

// AnalysisOption is a functional option for AnalysisService
type AnalysisOption func(*AnalysisService)

// AnalysisWithReports sets the report store. Without one, analyses are
// returned but not persisted.
func AnalysisWithReports(store ReportStore) AnalysisOption {
	return func(s *AnalysisService) {
		s.reports = store
	}
}

// AnalysisWithReportCounter sets the dispute report counter
func AnalysisWithReportCounter(counter ReportCounter) AnalysisOption {
	return func(s *AnalysisService) {
		s.counter = counter
	}
}

// AnalysisWithLogger sets the logger
func AnalysisWithLogger(log *logger.Logger) AnalysisOption {
	return func(s *AnalysisService) {
		s.log = log
	}
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(embedder EmbeddingProvider, completer CompletionProvider, searcher VectorSearcher, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
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

// reportPayload is the JSON shape the model is asked to produce
type reportPayload struct {
	Summary               string   `json:"summary"`
	Strengths             []string `json:"strengths"`
	Weaknesses            []string `json:"weaknesses"`
	Opportunities         []string `json:"opportunities"`
	Risks                 []string `json:"risks"`
	NegotiationStrategies []string `json:"negotiationStrategies"`
	KeyTerms              []string `json:"keyTerms"`
	Recommendations       []string `json:"recommendations"`
}

// Analyze runs the full analysis pipeline over the supplied documents.
// Retrieval failures degrade to an analysis without passages; a
// completion failure aborts; a persistence failure returns the report
// with a warning.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if len(req.Documents) == 0 {
		return nil, ErrNoDocuments
	}

	retrieval := s.retrieve(ctx, req)
	if retrieval.Degraded() {
		s.log.Warn("retrieval failed, analyzing without passage context",
			"dispute_id", req.DisputeID, "error", retrieval.Err)
	}

	prompt := BuildAnalysisPrompt(req.Details, req.Documents, retrieval.Passages)

	raw, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analysis completion: %w", err)
	}

	sources := BindSources(retrieval.Passages)
	report := s.buildReport(req, raw, sources)

	result := &AnalyzeResult{
		Report:   report,
		Sources:  sources,
		Degraded: retrieval.Degraded(),
	}

	if s.reports != nil {
		if err := s.reports.Create(ctx, report); err != nil {
			s.log.Error("failed to save report", "dispute_id", req.DisputeID, "error", err)
			result.PersistWarning = "analysis could not be saved"
		} else if s.counter != nil && req.DisputeID != uuid.Nil {
			if err := s.counter.RefreshReportCount(ctx, req.DisputeID); err != nil {
				s.log.Warn("failed to refresh report count", "dispute_id", req.DisputeID, "error", err)
			}
		}
	}

	return result, nil
}

// GenerateStrategic produces the quick strategic analysis. No
// retrieval is involved; the caller supplies all context as text.
func (s *AnalysisService) GenerateStrategic(ctx context.Context, req StrategicRequest) (*StrategicResult, error) {
	if strings.TrimSpace(req.ProjectDescription) == "" ||
		strings.TrimSpace(req.DisputeReason) == "" ||
		strings.TrimSpace(req.DesiredOutcome) == "" {
		return nil, ErrMissingAnalysis
	}

	prompt := BuildStrategicPrompt(req.ProjectDescription, req.DisputeReason, req.DesiredOutcome)

	analysis, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("strategic analysis completion: %w", err)
	}

	return &StrategicResult{Analysis: analysis}, nil
}

// retrieve embeds a query built from the dispute context and document
// names, then ranks stored chunks
func (s *AnalysisService) retrieve(ctx context.Context, req AnalyzeRequest) RetrievalResult {
	parts := []string{req.Details.Title, req.Details.Description}
	for _, doc := range req.Documents {
		parts = append(parts, doc.Name)
	}
	query := strings.TrimSpace(strings.Join(parts, " "))
	if query == "" {
		return RetrievalResult{}
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return RetrievalResult{Err: fmt.Errorf("embed query: %w", err)}
	}

	passages, err := s.searcher.Search(ctx, embedding, analysisRetrievalLimit)
	if err != nil {
		return RetrievalResult{Err: fmt.Errorf("search chunks: %w", err)}
	}

	return RetrievalResult{Passages: passages}
}

// buildReport parses the model's JSON into a report row. Output that
// is not valid JSON is kept verbatim as the summary rather than
// discarded. References come from the bound sources, never from the
// generated text.
func (s *AnalysisService) buildReport(req AnalyzeRequest, raw string, sources []models.Source) *models.Report {
	title := req.Title
	if title == "" {
		title = "Dispute Analysis"
	}

	report := &models.Report{
		DisputeID:  req.DisputeID,
		UserID:     req.UserID,
		ReportType: "analysis",
		Title:      title,
		References: referenceList(sources),
	}

	var payload reportPayload
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &payload); err != nil {
		s.log.Warn("analysis output was not valid JSON, keeping raw text", "error", err)
		report.Summary = &raw
		return report
	}

	if payload.Summary != "" {
		report.Summary = &payload.Summary
	}
	report.Strengths = payload.Strengths
	report.Weaknesses = payload.Weaknesses
	report.Opportunities = payload.Opportunities
	report.Risks = payload.Risks
	report.NegotiationStrategies = payload.NegotiationStrategies
	report.KeyTerms = payload.KeyTerms
	report.Recommendations = payload.Recommendations

	return report
}

// referenceList renders the human-readable reference entries matching
// the [1]..[K] markers
func referenceList(sources []models.Source) models.StringList {
	if len(sources) == 0 {
		return nil
	}
	refs := make(models.StringList, 0, len(sources))
	for i, src := range sources {
		refs = append(refs, fmt.Sprintf("[%d] %s, page %d", i+1, src.Source, src.Page))
	}
	return refs
}

// stripCodeFence unwraps a ```json ... ``` fenced block if the model
// added one despite instructions
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
