package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"disputedesk-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DisputeHandler handles HTTP requests for disputes
type DisputeHandler struct {
	disputeService *service.DisputeService
}

// NewDisputeHandler creates a new dispute handler
func NewDisputeHandler(disputeService *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeService: disputeService}
}

// CreateDisputeRequest represents the request body for creating a
// dispute
type CreateDisputeRequest struct {
	UserID        string   `json:"user_id" binding:"required"`
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	DisputeType   *string  `json:"dispute_type"`
	OpposingParty *string  `json:"opposing_party"`
	DisputeValue  *float64 `json:"dispute_value"`
	Urgency       *string  `json:"urgency"`
}

// CreateDispute handles POST /api/disputes
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	var req CreateDisputeRequest
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

	dispute, err := h.disputeService.Create(c.Request.Context(), service.CreateDisputeRequest{
		UserID:        userID,
		Title:         req.Title,
		Description:   req.Description,
		DisputeType:   req.DisputeType,
		OpposingParty: req.OpposingParty,
		DisputeValue:  req.DisputeValue,
		Urgency:       req.Urgency,
	})
	if err != nil {
		if errors.Is(err, service.ErrMissingDisputeFields) {
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
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dispute,
	})
}

// GetDispute handles GET /api/disputes/:id
func (h *DisputeHandler) GetDispute(c *gin.Context) {
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

	userID, ok := parseUserIDQuery(c)
	if !ok {
		return
	}

	dispute, err := h.disputeService.Get(c.Request.Context(), userID, disputeID)
	if err != nil {
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dispute,
	})
}

// ListDisputes handles GET /api/disputes
func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	userID, ok := parseUserIDQuery(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	disputes, err := h.disputeService.List(c.Request.Context(), service.ListDisputesRequest{
		UserID: userID,
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_STATUS",
					"message": err.Error(),
				},
			})
			return
		}
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
		"data":    disputes,
		"count":   len(disputes),
	})
}

// UpdateDispute handles PUT /api/disputes/:id
func (h *DisputeHandler) UpdateDispute(c *gin.Context) {
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

	var body struct {
		UserID string `json:"user_id" binding:"required"`
		service.UpdateDisputeRequest
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	userID, err := uuid.Parse(body.UserID)
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

	dispute, err := h.disputeService.Update(c.Request.Context(), userID, disputeID, body.UpdateDisputeRequest)
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatus) || errors.Is(err, service.ErrMissingDisputeFields) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_REQUEST",
					"message": err.Error(),
				},
			})
			return
		}
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dispute,
	})
}

// DeleteDispute handles DELETE /api/disputes/:id. Documents, chunks,
// reports, conversations and collaborators go with it.
func (h *DisputeHandler) DeleteDispute(c *gin.Context) {
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

	userID, ok := parseUserIDQuery(c)
	if !ok {
		return
	}

	if err := h.disputeService.Delete(c.Request.Context(), userID, disputeID); err != nil {
		respondDisputeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"deleted": true,
		},
	})
}

// parseUserIDQuery reads and validates the user_id query parameter,
// writing the error response itself on failure
func parseUserIDQuery(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Query("user_id")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "user_id query parameter is required",
			},
		})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return uuid.Nil, false
	}
	return userID, true
}

// respondDisputeError maps common lookup failures onto HTTP statuses
func respondDisputeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Dispute not found",
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
