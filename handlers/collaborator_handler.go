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

// CollaboratorHandler handles HTTP requests for dispute collaboration
type CollaboratorHandler struct {
	collaboratorService *service.CollaboratorService
}

// NewCollaboratorHandler creates a new collaborator handler
func NewCollaboratorHandler(collaboratorService *service.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{collaboratorService: collaboratorService}
}

// InviteRequest represents the request body for inviting a collaborator
type InviteRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// Invite handles POST /api/disputes/:id/collaborators
func (h *CollaboratorHandler) Invite(c *gin.Context) {
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

	var req InviteRequest
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

	collab, err := h.collaboratorService.Invite(c.Request.Context(), service.InviteRequest{
		DisputeID: disputeID,
		InvitedBy: userID,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) || errors.Is(err, service.ErrMissingEmail) {
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
				"code":    "INVITE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    collab,
	})
}

// List handles GET /api/disputes/:id/collaborators
func (h *CollaboratorHandler) List(c *gin.Context) {
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

	collabs, err := h.collaboratorService.List(c.Request.Context(), disputeID)
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
		"data":    collabs,
		"count":   len(collabs),
	})
}

// UpdateRoleRequest represents the request body for a role change
type UpdateRoleRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// UpdateRole handles PUT /api/collaborators/:id/role
func (h *CollaboratorHandler) UpdateRole(c *gin.Context) {
	collaboratorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_COLLABORATOR_ID",
				"message": "Invalid collaborator id format",
			},
		})
		return
	}

	var req UpdateRoleRequest
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

	collab, err := h.collaboratorService.UpdateRole(c.Request.Context(), userID, collaboratorID, req.Role)
	if err != nil {
		respondCollaboratorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    collab,
	})
}

// RespondRequest represents the request body for accepting or
// declining an invitation
type RespondRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Accept handles POST /api/collaborators/:id/accept
func (h *CollaboratorHandler) Accept(c *gin.Context) {
	collaboratorID, userID, ok := h.parseRespond(c)
	if !ok {
		return
	}

	collab, err := h.collaboratorService.Accept(c.Request.Context(), collaboratorID, userID)
	if err != nil {
		respondCollaboratorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    collab,
	})
}

// Decline handles POST /api/collaborators/:id/decline
func (h *CollaboratorHandler) Decline(c *gin.Context) {
	collaboratorID, userID, ok := h.parseRespond(c)
	if !ok {
		return
	}

	if err := h.collaboratorService.Decline(c.Request.Context(), collaboratorID, userID); err != nil {
		respondCollaboratorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"declined": true,
		},
	})
}

// Remove handles DELETE /api/collaborators/:id
func (h *CollaboratorHandler) Remove(c *gin.Context) {
	collaboratorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_COLLABORATOR_ID",
				"message": "Invalid collaborator id format",
			},
		})
		return
	}

	userID, ok := parseUserIDQuery(c)
	if !ok {
		return
	}

	if err := h.collaboratorService.Remove(c.Request.Context(), userID, collaboratorID); err != nil {
		respondCollaboratorError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"removed": true,
		},
	})
}

// Activities handles GET /api/disputes/:id/activities
func (h *CollaboratorHandler) Activities(c *gin.Context) {
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

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	activities, err := h.collaboratorService.Activities(c.Request.Context(), disputeID, limit)
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
		"data":    activities,
		"count":   len(activities),
	})
}

func (h *CollaboratorHandler) parseRespond(c *gin.Context) (collaboratorID, userID uuid.UUID, ok bool) {
	collaboratorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_COLLABORATOR_ID",
				"message": "Invalid collaborator id format",
			},
		})
		return uuid.Nil, uuid.Nil, false
	}

	var req RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return uuid.Nil, uuid.Nil, false
	}

	userID, err = uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return uuid.Nil, uuid.Nil, false
	}

	return collaboratorID, userID, true
}

// respondCollaboratorError maps common failures onto HTTP statuses
func respondCollaboratorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Collaborator not found",
			},
		})
	case errors.Is(err, service.ErrInvalidRole), errors.Is(err, service.ErrInviteNotPending):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
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
