package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"disputedesk-backend/logger"

	"github.com/google/generative-ai-go/genai"
)

const (
	defaultBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	embeddingModel  = "gemini-embedding-001"
	generationModel = "gemini-2.5-flash"
	extractionModel = "gemini-2.5-flash"

	// Embedding calls are idempotent reads and get bounded retry.
	// Completion calls are never retried: re-generated text may differ
	// and duplicate billing.
	maxRetries     = 3
	initialBackoff = time.Second

	// EmbeddingDimensions requested from the embedding endpoint
	EmbeddingDimensions = 768
)

var (
	ErrEmbeddingFailed  = errors.New("embedding service failed")
	ErrCompletionFailed = errors.New("completion service failed")
)

// Role tags a chat message for the completion endpoint
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged turn in a completion request
type ChatMessage struct {
	Role Role
	Text string
}

// GenerateRequest is an assembled prompt for the completion endpoint
type GenerateRequest struct {
	System      string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// Client wraps the Gemini embedding and generation endpoints. Raw
// HTTP is used for embeddings and chat completions; the genai SDK
// client handles the structured document-info extraction.
type Client struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	genaiClient *genai.Client
	log         *logger.Logger
}

// ClientOption is a functional option for Client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for raw API calls
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithGenaiClient sets the SDK client used for document-info extraction
func WithGenaiClient(gc *genai.Client) ClientOption {
	return func(c *Client) {
		c.genaiClient = gc
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new AI client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding embeddingValues `json:"embedding"`
}

type embeddingValues struct {
	Values []float64 `json:"values"`
}

type batchEmbeddingRequest struct {
	Requests []embeddingRequest `json:"requests"`
}

// The batch API returns values directly, without a nested "embedding" key
type batchEmbeddingResponse struct {
	Embeddings []embeddingValues `json:"embeddings"`
}

// EmbedQuery returns a normalized embedding for a retrieval query
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model: "models/" + embeddingModel,
		Content: contentInput{
			Parts: []partInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: EmbeddingDimensions,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrEmbeddingFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, embeddingModel)

	var apiResp embeddingResponse
	if err := c.postWithRetry(ctx, url, jsonData, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	if len(apiResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding returned", ErrEmbeddingFailed)
	}

	return normalize(apiResp.Embedding.Values), nil
}

// EmbedDocuments returns one normalized embedding per input text, in
// input order. A count mismatch from the upstream API is an error.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := batchEmbeddingRequest{
		Requests: make([]embeddingRequest, 0, len(texts)),
	}
	for _, text := range texts {
		reqBody.Requests = append(reqBody.Requests, embeddingRequest{
			Model: "models/" + embeddingModel,
			Content: contentInput{
				Parts: []partInput{{Text: text}},
			},
			TaskType:             "RETRIEVAL_DOCUMENT",
			OutputDimensionality: EmbeddingDimensions,
		})
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrEmbeddingFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", c.baseURL, embeddingModel)

	var apiResp batchEmbeddingResponse
	if err := c.postWithRetry(ctx, url, jsonData, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	if len(apiResp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: requested %d embeddings, got %d",
			ErrEmbeddingFailed, len(texts), len(apiResp.Embeddings))
	}

	embeddings := make([][]float64, 0, len(texts))
	for _, item := range apiResp.Embeddings {
		embeddings = append(embeddings, normalize(item.Values))
	}

	return embeddings, nil
}

// postWithRetry sends a JSON POST with bounded retry and doubling
// backoff. 400 and 401 responses are not retried.
func (c *Client) postWithRetry(ctx context.Context, url string, body []byte, out interface{}) error {
	backoff := initialBackoff
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to send request: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("failed to decode response: %w", err)
				continue
			}
			return nil
		}

		resp.Body.Close()

		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("API error: %d", resp.StatusCode)
		}

		lastErr = fmt.Errorf("API error: %d", resp.StatusCode)
	}

	return fmt.Errorf("after %d attempts: %w", maxRetries, lastErr)
}

type generateContentRequest struct {
	SystemInstruction *contentInput    `json:"systemInstruction,omitempty"`
	Contents          []wireContent    `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type wireContent struct {
	Role  string      `json:"role"`
	Parts []partInput `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// Complete sends an assembled prompt to the generation endpoint and
// returns the generated text. It makes exactly one attempt.
func (c *Client) Complete(ctx context.Context, req GenerateRequest) (string, error) {
	wireReq := generateContentRequest{
		Contents: make([]wireContent, 0, len(req.Messages)),
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.System != "" {
		wireReq.SystemInstruction = &contentInput{
			Parts: []partInput{{Text: req.System}},
		}
	}
	for _, msg := range req.Messages {
		role := "user"
		if msg.Role == RoleAssistant {
			role = "model"
		}
		wireReq.Contents = append(wireReq.Contents, wireContent{
			Role:  role,
			Parts: []partInput{{Text: msg.Text}},
		})
	}

	jsonData, err := json.Marshal(wireReq)
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrCompletionFailed, err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, generationModel)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrCompletionFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: send request: %v", ErrCompletionFailed, err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		c.log.Error("generation API error", "status", resp.StatusCode, "body", string(bodyBytes))
		return "", fmt.Errorf("%w: status %d", ErrCompletionFailed, resp.StatusCode)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrCompletionFailed, err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("%w: %s (code %d)", ErrCompletionFailed, apiResp.Error.Message, apiResp.Error.Code)
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", ErrCompletionFailed, apiResp.PromptFeedback.BlockReason)
	}
	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrCompletionFailed)
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			c.log.Warn("candidate finished abnormally", "index", i, "reason", candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("%w: empty content returned", ErrCompletionFailed)
	}

	return result, nil
}

// DocumentInfo is the structured result of AI document-info extraction
type DocumentInfo struct {
	DocumentType string
	Date         string // YYYY-MM-DD, empty when unknown
	Confidence   string // high, medium or low
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ExtractDocumentInfo asks the model to classify a document and guess
// its production date, returning validated structured output
func (c *Client) ExtractDocumentInfo(ctx context.Context, content, fileName string) (*DocumentInfo, error) {
	if c.genaiClient == nil {
		return nil, errors.New("genai client not set")
	}

	excerpt := content
	if len(excerpt) > 3000 {
		excerpt = excerpt[:3000]
	}

	prompt := fmt.Sprintf(`Analyze this document and answer:
1) What type of document is this?
2) What date was this document produced, from the pages you can read?
3) If you can't find a date, take a guess based on context clues.

Filename: %s
Content excerpt: %s

Respond with JSON in exactly this structure:
{"documentType": "string describing the type of document", "date": "YYYY-MM-DD or null", "confidence": "high" | "medium" | "low"}`,
		fileName, excerpt)

	model := c.genaiClient.GenerativeModel(extractionModel)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("document info extraction failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("document info extraction returned no candidates")
	}

	var raw strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			raw.WriteString(string(text))
		}
	}

	var parsed struct {
		DocumentType string `json:"documentType"`
		Date         string `json:"date"`
		Confidence   string `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw.String()), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	info := &DocumentInfo{
		DocumentType: parsed.DocumentType,
		Confidence:   parsed.Confidence,
	}
	if info.DocumentType == "" {
		info.DocumentType = "Unknown Document"
	}
	if datePattern.MatchString(parsed.Date) {
		info.Date = parsed.Date
	}
	switch info.Confidence {
	case "high", "medium", "low":
	default:
		info.Confidence = "low"
	}

	return info, nil
}

// normalize scales a vector to unit length
func normalize(embedding []float64) []float64 {
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}
	return embedding
}
