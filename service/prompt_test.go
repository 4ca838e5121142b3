package service

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"disputedesk-backend/ai"
	"disputedesk-backend/models"
)

func samplePassages(n int) []models.SearchResult {
	passages := make([]models.SearchResult, 0, n)
	for i := 0; i < n; i++ {
		passages = append(passages, models.SearchResult{
			Content:       fmt.Sprintf("passage content %d", i+1),
			PageNumber:    i + 1,
			DocumentTitle: fmt.Sprintf("contract-%d.pdf", i+1),
			Similarity:    0.9 - float64(i)*0.1,
		})
	}
	return passages
}

func TestBuildChatPromptNumbersPassages(t *testing.T) {
	req := BuildChatPrompt(DisputeDetails{Title: "Contract dispute"}, nil, "What are my options?", samplePassages(3))

	if len(req.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(req.Messages))
	}
	user := req.Messages[0].Text
	for i := 1; i <= 3; i++ {
		marker := fmt.Sprintf("[%d]", i)
		if !strings.Contains(user, marker) {
			t.Errorf("user message missing passage marker %s", marker)
		}
	}
	if !strings.Contains(req.System, "[1]") {
		t.Error("system instruction should explain citation markers when passages exist")
	}
}

func TestBuildChatPromptOmitsCitationsWithoutPassages(t *testing.T) {
	req := BuildChatPrompt(DisputeDetails{Title: "Contract dispute"}, nil, "What are my options?", nil)

	if strings.Contains(req.System, "cite") || strings.Contains(req.System, "[1]") {
		t.Error("citation instruction present despite empty passages")
	}
	if strings.Contains(req.Messages[0].Text, "Relevant passages") {
		t.Error("passage block present despite empty passages")
	}
}

func TestBuildChatPromptCapsHistory(t *testing.T) {
	history := []ChatTurn{
		{Role: models.RoleSystem, Content: "system turn to drop"},
	}
	for i := 0; i < 8; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		history = append(history, ChatTurn{Role: role, Content: fmt.Sprintf("turn %d", i)})
	}

	req := BuildChatPrompt(DisputeDetails{}, history, "latest question", nil)

	// 5 history turns plus the current message
	if len(req.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Text != "turn 3" {
		t.Errorf("expected history to start at turn 3, got %q", req.Messages[0].Text)
	}
	for _, msg := range req.Messages {
		if strings.Contains(msg.Text, "system turn") {
			t.Error("system-role turn leaked into prompt")
		}
	}
	if req.Messages[5].Role != ai.RoleUser || req.Messages[5].Text != "latest question" {
		t.Errorf("current message must come last, got %+v", req.Messages[5])
	}
}

func TestBuildChatPromptDeterministic(t *testing.T) {
	details := DisputeDetails{Title: "T", Description: "D", Urgency: "high"}
	history := []ChatTurn{{Role: models.RoleUser, Content: "earlier"}}
	passages := samplePassages(2)

	a := BuildChatPrompt(details, history, "question", passages)
	b := BuildChatPrompt(details, history, "question", passages)

	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different prompts")
	}
}

func TestBuildChatPromptIncludesDetails(t *testing.T) {
	details := DisputeDetails{
		Title:         "Unpaid invoices",
		OpposingParty: "Acme Corp",
		Urgency:       "high",
	}

	req := BuildChatPrompt(details, nil, "hello", nil)

	for _, want := range []string{"Unpaid invoices", "Acme Corp", "high"} {
		if !strings.Contains(req.System, want) {
			t.Errorf("system instruction missing %q", want)
		}
	}
	if strings.Contains(req.System, "Dispute value:") {
		t.Error("empty detail field should be omitted")
	}
}

func TestBuildAnalysisPromptStructure(t *testing.T) {
	docs := []AnalysisDocument{{Name: "contract.pdf", Content: "the contract text"}}

	req := BuildAnalysisPrompt(DisputeDetails{Title: "T"}, docs, samplePassages(2))

	if !strings.Contains(req.System, `"summary"`) {
		t.Error("system instruction missing JSON schema")
	}
	user := req.Messages[0].Text
	if !strings.Contains(user, "contract.pdf") || !strings.Contains(user, "the contract text") {
		t.Error("document content missing from prompt")
	}
	if !strings.Contains(user, "[1]") || !strings.Contains(user, "[2]") {
		t.Error("passage markers missing from prompt")
	}
	if req.MaxTokens != analysisMaxTokens {
		t.Errorf("expected max tokens %d, got %d", analysisMaxTokens, req.MaxTokens)
	}
}

func TestBindSources(t *testing.T) {
	passages := samplePassages(3)

	sources := BindSources(passages)

	if len(sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sources))
	}
	for i, src := range sources {
		if src.Content != passages[i].Content {
			t.Errorf("source %d content mismatch: %q", i, src.Content)
		}
		if src.Source != passages[i].DocumentTitle {
			t.Errorf("source %d title mismatch: %q", i, src.Source)
		}
		if src.Page != passages[i].PageNumber {
			t.Errorf("source %d page mismatch: %d", i, src.Page)
		}
	}

	if got := BindSources(nil); got != nil {
		t.Errorf("expected nil sources for no passages, got %v", got)
	}
}
