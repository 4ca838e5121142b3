package service

import (
	"fmt"
	"strings"

	"disputedesk-backend/ai"
	"disputedesk-backend/models"
)

// Generation parameters per endpoint. Chat answers stay short;
// structured analyses get room for the full JSON payload.
const (
	chatTemperature = 0.7
	chatMaxTokens   = 500

	analysisTemperature = 0.7
	analysisMaxTokens   = 2000

	strategicTemperature = 0.7
	strategicMaxTokens   = 1000

	// historyLimit caps how many prior turns are replayed to the model
	historyLimit = 5
)

// DisputeDetails is the dispute metadata block included in prompts.
// Fields are plain strings as supplied by the caller; empty fields are
// omitted from the rendered context.
type DisputeDetails struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	DisputeType   string `json:"dispute_type"`
	OpposingParty string `json:"opposing_party"`
	DisputeValue  string `json:"dispute_value"`
	Urgency       string `json:"urgency"`
}

// ChatTurn is one prior conversation turn supplied with a chat request
type ChatTurn struct {
	Role    models.MessageRole `json:"role"`
	Content string             `json:"content"`
}

// AnalysisDocument is one uploaded document's extracted text supplied
// to the analysis endpoint
type AnalysisDocument struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// BuildChatPrompt assembles the chat completion request: a strategist
// system instruction with the dispute context, the capped prior
// history, and the user message with numbered passages appended. The
// citation instruction is present exactly when passages is non-empty.
// Identical inputs produce a byte-identical request.
func BuildChatPrompt(details DisputeDetails, history []ChatTurn, message string, passages []models.SearchResult) ai.GenerateRequest {
	var system strings.Builder
	system.WriteString("You are an expert negotiation strategist and dispute resolution advisor. ")
	system.WriteString("You apply game theory, leverage analysis and practical negotiation tactics ")
	system.WriteString("to help the user resolve their dispute on favorable terms.\n\n")
	system.WriteString("Dispute context:\n")
	system.WriteString(renderDetails(details))
	system.WriteString("\nGive concrete, actionable advice grounded in the dispute context. ")
	system.WriteString("Keep answers focused and concise.")
	if len(passages) > 0 {
		system.WriteString("\n\nThe user message includes numbered passages retrieved from the ")
		system.WriteString("user's own documents. When your answer relies on a passage, cite it ")
		system.WriteString("inline with its number in square brackets, e.g. [1] or [2]. ")
		system.WriteString("Only cite passages that are actually provided.")
	}

	messages := appendHistory(nil, history)

	var user strings.Builder
	user.WriteString(message)
	if len(passages) > 0 {
		user.WriteString("\n\nRelevant passages from your documents:\n")
		user.WriteString(renderPassages(passages))
	}
	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Text: user.String()})

	return ai.GenerateRequest{
		System:      system.String(),
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	}
}

// BuildAnalysisPrompt assembles the structured dispute analysis
// request. The model is instructed to answer with a single JSON object
// matching the report category fields.
func BuildAnalysisPrompt(details DisputeDetails, docs []AnalysisDocument, passages []models.SearchResult) ai.GenerateRequest {
	var system strings.Builder
	system.WriteString("You are an expert dispute analyst. Analyze the dispute and its ")
	system.WriteString("documents, then respond with a single JSON object and nothing else, ")
	system.WriteString("using exactly this structure:\n")
	system.WriteString(`{"summary": "string", "strengths": ["string"], "weaknesses": ["string"], "opportunities": ["string"], "risks": ["string"], "negotiationStrategies": ["string"], "keyTerms": ["string"], "recommendations": ["string"]}`)
	if len(passages) > 0 {
		system.WriteString("\n\nNumbered passages from the user's wider document base are ")
		system.WriteString("provided. When a finding relies on a passage, cite it inline with ")
		system.WriteString("its number in square brackets, e.g. [1]. Only cite passages that ")
		system.WriteString("are actually provided.")
	}

	var user strings.Builder
	user.WriteString("Dispute context:\n")
	user.WriteString(renderDetails(details))
	user.WriteString("\nDocuments to analyze:\n")
	for _, doc := range docs {
		user.WriteString("--- ")
		user.WriteString(doc.Name)
		user.WriteString(" ---\n")
		user.WriteString(doc.Content)
		user.WriteString("\n")
	}
	if len(passages) > 0 {
		user.WriteString("\nRelevant passages from your documents:\n")
		user.WriteString(renderPassages(passages))
	}

	return ai.GenerateRequest{
		System:      system.String(),
		Messages:    []ai.ChatMessage{{Role: ai.RoleUser, Text: user.String()}},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
	}
}

// BuildStrategicPrompt assembles the quick strategic analysis request
// used when a dispute is first described, before any documents exist
func BuildStrategicPrompt(projectDescription, disputeReason, desiredOutcome string) ai.GenerateRequest {
	system := "You are an expert negotiation strategist. Given a new dispute, outline " +
		"the negotiation position: key leverage points, likely counterarguments, " +
		"and the recommended opening approach."

	var user strings.Builder
	user.WriteString("Project or relationship background:\n")
	user.WriteString(projectDescription)
	user.WriteString("\n\nWhat the dispute is about:\n")
	user.WriteString(disputeReason)
	user.WriteString("\n\nDesired outcome:\n")
	user.WriteString(desiredOutcome)

	return ai.GenerateRequest{
		System:      system,
		Messages:    []ai.ChatMessage{{Role: ai.RoleUser, Text: user.String()}},
		Temperature: strategicTemperature,
		MaxTokens:   strategicMaxTokens,
	}
}

// BindSources derives the citation source list from the retrieved
// passages: one source per passage, in retrieval order, so Sources[i]
// is the passage the model was shown as [i+1]. Sources are never
// parsed out of the generated text.
func BindSources(passages []models.SearchResult) []models.Source {
	if len(passages) == 0 {
		return nil
	}
	sources := make([]models.Source, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, models.Source{
			Content: p.Content,
			Source:  p.DocumentTitle,
			Page:    p.PageNumber,
		})
	}
	return sources
}

// renderDetails renders the dispute metadata block, skipping fields
// the caller left empty
func renderDetails(details DisputeDetails) string {
	var b strings.Builder
	writeDetail(&b, "Title", details.Title)
	writeDetail(&b, "Description", details.Description)
	writeDetail(&b, "Dispute type", details.DisputeType)
	writeDetail(&b, "Opposing party", details.OpposingParty)
	writeDetail(&b, "Dispute value", details.DisputeValue)
	writeDetail(&b, "Urgency", details.Urgency)
	return b.String()
}

func writeDetail(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// renderPassages numbers passages [1]..[K] in retrieval order
func renderPassages(passages []models.SearchResult) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] (from %s, page %d) %s\n\n", i+1, p.DocumentTitle, p.PageNumber, p.Content)
	}
	return b.String()
}

// appendHistory appends prior turns to messages, dropping system-role
// turns and keeping only the most recent historyLimit turns
func appendHistory(messages []ai.ChatMessage, history []ChatTurn) []ai.ChatMessage {
	filtered := make([]ChatTurn, 0, len(history))
	for _, turn := range history {
		if turn.Role == models.RoleSystem {
			continue
		}
		filtered = append(filtered, turn)
	}
	if len(filtered) > historyLimit {
		filtered = filtered[len(filtered)-historyLimit:]
	}

	for _, turn := range filtered {
		role := ai.RoleUser
		if turn.Role == models.RoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.ChatMessage{Role: role, Text: turn.Content})
	}
	return messages
}
