package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"disputedesk-backend/logger"
	"disputedesk-backend/models"

	"github.com/google/uuid"
)

var (
	ErrMissingDisputeFields = errors.New("title and description are required")
	ErrInvalidStatus        = errors.New("invalid dispute status")
	ErrNotOwner             = errors.New("dispute does not belong to this user")
)

// DisputeStore persists disputes
type DisputeStore interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	Update(ctx context.Context, dispute *models.Dispute) error
	ListByUserID(ctx context.Context, userID uuid.UUID, status *models.DisputeStatus, limit, offset int) ([]*models.Dispute, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateDisputeRequest carries the fields for a new dispute
type CreateDisputeRequest struct {
	UserID        uuid.UUID
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DisputeType   *string  `json:"dispute_type"`
	OpposingParty *string  `json:"opposing_party"`
	DisputeValue  *float64 `json:"dispute_value"`
	Urgency       *string  `json:"urgency"`
}

// UpdateDisputeRequest carries a partial update; nil fields are left
// unchanged
type UpdateDisputeRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	DisputeType   *string  `json:"dispute_type"`
	OpposingParty *string  `json:"opposing_party"`
	DisputeValue  *float64 `json:"dispute_value"`
	Urgency       *string  `json:"urgency"`
	Status        *string  `json:"status"`
}

// ListDisputesRequest filters and pages a user's disputes
type ListDisputesRequest struct {
	UserID uuid.UUID
	Status string
	Limit  int
	Offset int
}

// DisputeService owns dispute lifecycle and ownership checks
type DisputeService struct {
	disputes DisputeStore
	log      *logger.Logger
}

// DisputeOption is a functional option for DisputeService
type DisputeOption func(*DisputeService)

// DisputeWithLogger sets the logger
func DisputeWithLogger(log *logger.Logger) DisputeOption {
	return func(s *DisputeService) {
		s.log = log
	}
}

// NewDisputeService creates a dispute service
func NewDisputeService(disputes DisputeStore, opts ...DisputeOption) *DisputeService {
	s := &DisputeService{
		disputes: disputes,
		log:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new dispute. New disputes start active.
func (s *DisputeService) Create(ctx context.Context, req CreateDisputeRequest) (*models.Dispute, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, ErrMissingDisputeFields
	}

	dispute := &models.Dispute{
		UserID:        req.UserID,
		Title:         req.Title,
		Description:   req.Description,
		DisputeType:   req.DisputeType,
		OpposingParty: req.OpposingParty,
		DisputeValue:  req.DisputeValue,
		Urgency:       req.Urgency,
		Status:        models.DisputeStatusActive,
	}

	if err := s.disputes.Create(ctx, dispute); err != nil {
		return nil, fmt.Errorf("create dispute: %w", err)
	}

	s.log.Info("dispute created", "dispute_id", dispute.ID, "user_id", req.UserID)

	return dispute, nil
}

// Get returns a dispute after checking it belongs to the user
func (s *DisputeService) Get(ctx context.Context, userID, disputeID uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if dispute.UserID != userID {
		return nil, ErrNotOwner
	}
	return dispute, nil
}

// Update applies a partial update to an owned dispute
func (s *DisputeService) Update(ctx context.Context, userID, disputeID uuid.UUID, req UpdateDisputeRequest) (*models.Dispute, error) {
	dispute, err := s.Get(ctx, userID, disputeID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrMissingDisputeFields
		}
		dispute.Title = *req.Title
	}
	if req.Description != nil {
		dispute.Description = *req.Description
	}
	if req.DisputeType != nil {
		dispute.DisputeType = req.DisputeType
	}
	if req.OpposingParty != nil {
		dispute.OpposingParty = req.OpposingParty
	}
	if req.DisputeValue != nil {
		dispute.DisputeValue = req.DisputeValue
	}
	if req.Urgency != nil {
		dispute.Urgency = req.Urgency
	}
	if req.Status != nil {
		status := models.DisputeStatus(*req.Status)
		switch status {
		case models.DisputeStatusActive, models.DisputeStatusPending, models.DisputeStatusResolved:
			dispute.Status = status
		default:
			return nil, ErrInvalidStatus
		}
	}

	if err := s.disputes.Update(ctx, dispute); err != nil {
		return nil, fmt.Errorf("update dispute: %w", err)
	}

	return dispute, nil
}

// List returns the user's disputes, optionally filtered by status
func (s *DisputeService) List(ctx context.Context, req ListDisputesRequest) ([]*models.Dispute, error) {
	var status *models.DisputeStatus
	if req.Status != "" {
		parsed := models.DisputeStatus(req.Status)
		switch parsed {
		case models.DisputeStatusActive, models.DisputeStatusPending, models.DisputeStatusResolved:
			status = &parsed
		default:
			return nil, ErrInvalidStatus
		}
	}

	return s.disputes.ListByUserID(ctx, req.UserID, status, req.Limit, req.Offset)
}

// Delete removes an owned dispute and everything hanging off it
func (s *DisputeService) Delete(ctx context.Context, userID, disputeID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, disputeID); err != nil {
		return err
	}

	if err := s.disputes.Delete(ctx, disputeID); err != nil {
		return fmt.Errorf("delete dispute: %w", err)
	}

	s.log.Info("dispute deleted", "dispute_id", disputeID, "user_id", userID)

	return nil
}
