package handlers

import (
	"errors"
	"net/http"

	"disputedesk-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ReportHandler handles read access to generated analysis reports
type ReportHandler struct {
	reports *repository.ReportRepository
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *repository.ReportRepository) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListReports handles GET /api/disputes/:id/reports
func (h *ReportHandler) ListReports(c *gin.Context) {
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

	reports, err := h.reports.ListByDisputeID(c.Request.Context(), disputeID)
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
		"data":    reports,
		"count":   len(reports),
	})
}

// GetReport handles GET /api/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REPORT_ID",
				"message": "Invalid report id format",
			},
		})
		return
	}

	report, err := h.reports.GetByID(c.Request.Context(), reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "NOT_FOUND",
					"message": "Report not found",
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    report,
	})
}
