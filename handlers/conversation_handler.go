package handlers

import (
	"net/http"

	"disputedesk-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConversationHandler handles read access to chat history
type ConversationHandler struct {
	conversations *repository.ConversationRepository
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(conversations *repository.ConversationRepository) *ConversationHandler {
	return &ConversationHandler{conversations: conversations}
}

// ListConversations handles GET /api/disputes/:id/conversations
func (h *ConversationHandler) ListConversations(c *gin.Context) {
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

	convs, err := h.conversations.ListByDisputeID(c.Request.Context(), disputeID)
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
		"data":    convs,
		"count":   len(convs),
	})
}

// ListMessages handles GET /api/conversations/:id/messages. Messages
// come back in creation order.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CONVERSATION_ID",
				"message": "Invalid conversation id format",
			},
		})
		return
	}

	messages, err := h.conversations.ListMessages(c.Request.Context(), conversationID)
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
		"data":    messages,
		"count":   len(messages),
	})
}
