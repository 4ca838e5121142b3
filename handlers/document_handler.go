package handlers

import (
	"errors"
	"net/http"

	"disputedesk-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DocumentHandler handles HTTP requests for dispute documents
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// UploadDocument handles POST /api/disputes/:id/documents. The file
// arrives as multipart form data alongside a user_id field.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DISPUTE_ID",
				"message": "Invalid dispute id format",
			},
		})
		return
	}

	userID, err := uuid.Parse(c.PostForm("user_id"))
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
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(c.Request.Context(), service.UploadDocumentRequest{
		DisputeID: disputeID,
		UserID:    userID,
		FileName:  fileHeader.Filename,
		MimeType:  fileHeader.Header.Get("Content-Type"),
		FileSize:  fileHeader.Size,
		Data:      file,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingFile) {
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
				"code":    "UPLOAD_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    doc,
	})
}

// ListDocuments handles GET /api/disputes/:id/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DISPUTE_ID",
				"message": "Invalid dispute id format",
			},
		})
		return
	}

	docs, err := h.documentService.List(c.Request.Context(), disputeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
		"count":   len(docs),
	})
}

// DownloadDocument handles GET /api/documents/:id/download
func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document id format",
			},
		})
		return
	}

	userID, ok := parseUserIDQuery(c)
	if !ok {
		return
	}

	doc, reader, err := h.documentService.Download(c.Request.Context(), userID, documentID)
	if err != nil {
		respondDocumentError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.MimeType, reader, nil)
}

// DeleteDocument handles DELETE /api/documents/:id. Stored bytes and
// embedded chunks go with the record.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_DOCUMENT_ID",
				"message": "Invalid document id format",
			},
		})
		return
	}

	userID, ok := parseUserIDQuery(c)
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), userID, documentID); err != nil {
		respondDocumentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}

// respondDocumentError maps common lookup failures onto HTTP statuses
func respondDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": err.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			},
		})
	}
}
