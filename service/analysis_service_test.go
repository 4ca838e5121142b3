package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"disputedesk-backend/models"

	"github.com/google/uuid"
)

type fakeReportStore struct {
	created []*models.Report
	err     error
}

func (f *fakeReportStore) Create(ctx context.Context, report *models.Report) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, report)
	return nil
}

const analysisJSON = `{
	"summary": "The position is strong.",
	"strengths": ["signed contract"],
	"weaknesses": ["late notice"],
	"opportunities": ["settlement"],
	"risks": ["counterclaim"],
	"negotiationStrategies": ["anchor high"],
	"keyTerms": ["clause 7"],
	"recommendations": ["send demand letter"]
}`

func analyzeRequest() AnalyzeRequest {
	return AnalyzeRequest{
		UserID:    uuid.New(),
		DisputeID: uuid.New(),
		Details:   DisputeDetails{Title: "Contract dispute", Description: "Unpaid work"},
		Documents: []AnalysisDocument{{Name: "contract.pdf", Content: "the contract text"}},
	}
}

func TestAnalyzeParsesStructuredReport(t *testing.T) {
	store := &fakeReportStore{}
	svc := NewAnalysisService(
		&fakeEmbedder{vec: []float64{0.1}},
		&fakeCompleter{response: analysisJSON},
		&fakeSearcher{results: samplePassages(2)},
		AnalysisWithReports(store),
	)

	result, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := result.Report
	if report.Summary == nil || *report.Summary != "The position is strong." {
		t.Errorf("summary not parsed: %v", report.Summary)
	}
	if len(report.Strengths) != 1 || report.Strengths[0] != "signed contract" {
		t.Errorf("strengths not parsed: %v", report.Strengths)
	}
	if len(report.References) != 2 {
		t.Fatalf("expected 2 references from 2 passages, got %d", len(report.References))
	}
	if !strings.HasPrefix(report.References[0], "[1] contract-1.pdf") {
		t.Errorf("reference not bound to passage order: %q", report.References[0])
	}
	if len(store.created) != 1 {
		t.Fatalf("report was not persisted")
	}
	if result.PersistWarning != "" {
		t.Errorf("unexpected persist warning: %q", result.PersistWarning)
	}
}

func TestAnalyzeHandlesFencedJSON(t *testing.T) {
	svc := NewAnalysisService(
		&fakeEmbedder{vec: []float64{0.1}},
		&fakeCompleter{response: "```json\n" + analysisJSON + "\n```"},
		&fakeSearcher{},
	)

	result, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Report.Summary == nil || *result.Report.Summary != "The position is strong." {
		t.Errorf("fenced JSON not parsed: %v", result.Report.Summary)
	}
}

func TestAnalyzeKeepsRawTextOnBadJSON(t *testing.T) {
	raw := "The model rambled in prose instead of JSON."
	svc := NewAnalysisService(
		&fakeEmbedder{vec: []float64{0.1}},
		&fakeCompleter{response: raw},
		&fakeSearcher{},
	)

	result, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("invalid JSON must not fail the analysis: %v", err)
	}
	if result.Report.Summary == nil || *result.Report.Summary != raw {
		t.Errorf("raw text not preserved as summary: %v", result.Report.Summary)
	}
}

func TestAnalyzeDegradesOnRetrievalFailure(t *testing.T) {
	svc := NewAnalysisService(
		&fakeEmbedder{queryErr: errors.New("embedding down")},
		&fakeCompleter{response: analysisJSON},
		&fakeSearcher{},
	)

	result, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("retrieval failure must not fail the analysis: %v", err)
	}
	if !result.Degraded {
		t.Error("result not marked degraded")
	}
	if len(result.Report.References) != 0 {
		t.Errorf("degraded analysis must carry no references, got %v", result.Report.References)
	}
}

func TestAnalyzeWarnsOnPersistenceFailure(t *testing.T) {
	store := &fakeReportStore{err: errors.New("db down")}
	svc := NewAnalysisService(
		&fakeEmbedder{vec: []float64{0.1}},
		&fakeCompleter{response: analysisJSON},
		&fakeSearcher{},
		AnalysisWithReports(store),
	)

	result, err := svc.Analyze(context.Background(), analyzeRequest())
	if err != nil {
		t.Fatalf("persistence failure must not discard the analysis: %v", err)
	}
	if result.PersistWarning == "" {
		t.Error("expected a persist warning")
	}
	if result.Report.Summary == nil {
		t.Error("analysis content discarded")
	}
}

func TestAnalyzeRequiresDocuments(t *testing.T) {
	svc := NewAnalysisService(&fakeEmbedder{}, &fakeCompleter{}, &fakeSearcher{})

	req := analyzeRequest()
	req.Documents = nil
	_, err := svc.Analyze(context.Background(), req)
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestGenerateStrategic(t *testing.T) {
	completer := &fakeCompleter{response: "Open with a firm anchor."}
	svc := NewAnalysisService(&fakeEmbedder{}, completer, &fakeSearcher{})

	result, err := svc.GenerateStrategic(context.Background(), StrategicRequest{
		ProjectDescription: "Kitchen renovation",
		DisputeReason:      "Work abandoned halfway",
		DesiredOutcome:     "Refund of deposit",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Analysis != "Open with a firm anchor." {
		t.Errorf("unexpected analysis: %q", result.Analysis)
	}
	for _, want := range []string{"Kitchen renovation", "Work abandoned halfway", "Refund of deposit"} {
		if !strings.Contains(completer.lastReq.Messages[0].Text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerateStrategicRequiresAllFields(t *testing.T) {
	svc := NewAnalysisService(&fakeEmbedder{}, &fakeCompleter{}, &fakeSearcher{})

	_, err := svc.GenerateStrategic(context.Background(), StrategicRequest{
		ProjectDescription: "only this",
	})
	if !errors.Is(err, ErrMissingAnalysis) {
		t.Errorf("expected ErrMissingAnalysis, got %v", err)
	}
}
