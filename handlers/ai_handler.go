package handlers

import (
	"errors"
	"io"
	"net/http"

	"disputedesk-backend/ai"
	"disputedesk-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AIHandler handles HTTP requests for the AI endpoints: chat,
// analysis, embeddings and document text extraction
type AIHandler struct {
	chatService     *service.ChatService
	analysisService *service.AnalysisService
	ingestService   *service.IngestService
	documentService *service.DocumentService
}

// NewAIHandler creates a new AI handler
func NewAIHandler(chatService *service.ChatService, analysisService *service.AnalysisService, ingestService *service.IngestService, documentService *service.DocumentService) *AIHandler {
	return &AIHandler{
		chatService:     chatService,
		analysisService: analysisService,
		ingestService:   ingestService,
		documentService: documentService,
	}
}

// ChatRequest represents the request body for the chat endpoint
type ChatRequest struct {
	UserID         string                 `json:"user_id" binding:"required"`
	DisputeID      string                 `json:"dispute_id"`
	Message        string                 `json:"message" binding:"required"`
	DisputeDetails service.DisputeDetails `json:"dispute_details"`
	History        []service.ChatTurn     `json:"history"`
}

// Chat handles POST /api/dispute-chat
func (h *AIHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	var disputeID uuid.UUID
	if req.DisputeID != "" {
		disputeID, err = uuid.Parse(req.DisputeID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_DISPUTE_ID",
					"message": "Invalid dispute_id format",
				},
			})
			return
		}
	}

	result, err := h.chatService.Respond(c.Request.Context(), service.ChatRequest{
		UserID:    userID,
		DisputeID: disputeID,
		Message:   req.Message,
		Details:   req.DisputeDetails,
		History:   req.History,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, ai.ErrCompletionFailed) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHAT_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// AnalyzeRequest represents the request body for the analysis endpoint
type AnalyzeRequest struct {
	UserID         string                     `json:"user_id" binding:"required"`
	DisputeID      string                     `json:"dispute_id" binding:"required"`
	Title          string                     `json:"title"`
	DisputeDetails service.DisputeDetails     `json:"dispute_details"`
	Documents      []service.AnalysisDocument `json:"documents" binding:"required"`
}

// Analyze handles POST /api/analyze
func (h *AIHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	disputeID, err := uuid.Parse(req.DisputeID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DISPUTE_ID",
				"message": "Invalid dispute_id format",
			},
		})
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), service.AnalyzeRequest{
		UserID:    userID,
		DisputeID: disputeID,
		Title:     req.Title,
		Details:   req.DisputeDetails,
		Documents: req.Documents,
	})
	if err != nil {
		if errors.Is(err, service.ErrNoDocuments) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NO_DOCUMENTS",
					"message": err.Error(),
				},
			})
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, ai.ErrCompletionFailed) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// GenerateAnalysisRequest represents the request body for the quick
// strategic analysis endpoint
type GenerateAnalysisRequest struct {
	ProjectDescription string `json:"project_description" binding:"required"`
	DisputeReason      string `json:"dispute_reason" binding:"required"`
	DesiredOutcome     string `json:"desired_outcome" binding:"required"`
}

// GenerateAnalysis handles POST /api/generate-analysis
func (h *AIHandler) GenerateAnalysis(c *gin.Context) {
	var req GenerateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.analysisService.GenerateStrategic(c.Request.Context(), service.StrategicRequest{
		ProjectDescription: req.ProjectDescription,
		DisputeReason:      req.DisputeReason,
		DesiredOutcome:     req.DesiredOutcome,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingAnalysis) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, ai.ErrCompletionFailed) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ANALYSIS_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// CreateEmbeddingsRequest represents the request body for document
// ingestion
type CreateEmbeddingsRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	DocumentID string `json:"document_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
	PageNumber *int   `json:"page_number"`
}

// CreateEmbeddings handles POST /api/embeddings/create
func (h *AIHandler) CreateEmbeddings(c *gin.Context) {
	var req CreateEmbeddingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document_id format",
			},
		})
		return
	}

	result, err := h.ingestService.CreateEmbeddings(c.Request.Context(), service.IngestRequest{
		DocumentID: documentID,
		UserID:     userID,
		Content:    req.Content,
		PageNumber: req.PageNumber,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyContent) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMBEDDING_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// ExtractText handles POST /api/ai/extract-pdf and
// POST /api/ai/extract-doc. The file arrives as multipart form data;
// plain-text formats are read directly, binary formats get a
// placeholder until the async extraction worker handles them.
func (h *AIHandler) ExtractText(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "file is required",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	text := service.ExtractText(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"text":      text,
			"file_name": fileHeader.Filename,
		},
	})
}

// ExtractDocumentInfoRequest represents the request body for AI
// document classification
type ExtractDocumentInfoRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	DocumentID string `json:"document_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

// ExtractDocumentInfo handles POST /api/ai/extract-document-info
func (h *AIHandler) ExtractDocumentInfo(c *gin.Context) {
	var req ExtractDocumentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	documentID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document_id format",
			},
		})
		return
	}

	doc, err := h.documentService.ProcessDocument(c.Request.Context(), userID, documentID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROCESSING_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    doc,
	})
}
