package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"disputedesk-backend/logger"
	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidRole      = errors.New("invalid collaborator role")
	ErrMissingEmail     = errors.New("email is required")
	ErrInviteNotPending = errors.New("invitation is not pending")
)

// CollaboratorStore persists collaborators and their activity log
type CollaboratorStore interface {
	Create(ctx context.Context, collab *models.Collaborator) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Collaborator, error)
	ListByDisputeID(ctx context.Context, disputeID uuid.UUID) ([]*models.Collaborator, error)
	GetAccepted(ctx context.Context, disputeID, userID uuid.UUID) (*models.Collaborator, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.CollaboratorRole, permissions models.PermissionList) error
	Accept(ctx context.Context, id, userID uuid.UUID) error
	Decline(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	LogActivity(ctx context.Context, activity *models.CollaboratorActivity) error
	ListActivities(ctx context.Context, disputeID uuid.UUID, limit int) ([]*models.CollaboratorActivity, error)
}

// InviteRequest invites an email address to collaborate on a dispute
type InviteRequest struct {
	DisputeID uuid.UUID
	InvitedBy uuid.UUID
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// CollaboratorService owns the collaboration invite lifecycle and the
// activity audit log. Permission sets are always derived from the
// role; callers never supply them.
type CollaboratorService struct {
	collaborators CollaboratorStore
	log           *logger.Logger
}

// CollaboratorOption is a functional option for CollaboratorService
type CollaboratorOption func(*CollaboratorService)

// CollaboratorWithLogger sets the logger
func CollaboratorWithLogger(log *logger.Logger) CollaboratorOption {
	return func(s *CollaboratorService) {
		s.log = log
	}
}

// NewCollaboratorService creates a collaborator service
func NewCollaboratorService(collaborators CollaboratorStore, opts ...CollaboratorOption) *CollaboratorService {
	s := &CollaboratorService{
		collaborators: collaborators,
		log:           logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invite creates a pending invitation with permissions derived from
// the role, and logs the event
func (s *CollaboratorService) Invite(ctx context.Context, req InviteRequest) (*models.Collaborator, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" {
		return nil, ErrMissingEmail
	}

	role := models.CollaboratorRole(req.Role)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	collab := &models.Collaborator{
		DisputeID:   req.DisputeID,
		Email:       email,
		Role:        role,
		Permissions: models.PermissionsForRole(role),
		Status:      models.InviteStatusPending,
		InvitedBy:   req.InvitedBy,
	}

	if err := s.collaborators.Create(ctx, collab); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.logActivity(ctx, req.DisputeID, req.InvitedBy, "collaborator_invited",
		fmt.Sprintf("Invited %s as %s", email, role),
		models.Metadata{"email": email, "role": string(role)})

	return collab, nil
}

// List returns a dispute's collaborators, most recently invited first
func (s *CollaboratorService) List(ctx context.Context, disputeID uuid.UUID) ([]*models.Collaborator, error) {
	return s.collaborators.ListByDisputeID(ctx, disputeID)
}

// UpdateRole changes a collaborator's role. The permission set is
// re-derived from the new role.
func (s *CollaboratorService) UpdateRole(ctx context.Context, actorID, collaboratorID uuid.UUID, newRole string) (*models.Collaborator, error) {
	role := models.CollaboratorRole(newRole)
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	collab, err := s.collaborators.GetByID(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}

	permissions := models.PermissionsForRole(role)
	if err := s.collaborators.UpdateRole(ctx, collaboratorID, role, permissions); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.logActivity(ctx, collab.DisputeID, actorID, "role_changed",
		fmt.Sprintf("Changed %s from %s to %s", collab.Email, collab.Role, role),
		models.Metadata{"email": collab.Email, "from": string(collab.Role), "to": string(role)})

	collab.Role = role
	collab.Permissions = permissions

	return collab, nil
}

// Accept marks a pending invitation accepted and binds it to the
// accepting user
func (s *CollaboratorService) Accept(ctx context.Context, collaboratorID, userID uuid.UUID) (*models.Collaborator, error) {
	collab, err := s.collaborators.GetByID(ctx, collaboratorID)
	if err != nil {
		return nil, err
	}
	if collab.Status != models.InviteStatusPending {
		return nil, ErrInviteNotPending
	}

	if err := s.collaborators.Accept(ctx, collaboratorID, userID); err != nil {
		return nil, fmt.Errorf("accept invitation: %w", err)
	}

	s.logActivity(ctx, collab.DisputeID, userID, "invitation_accepted",
		fmt.Sprintf("%s joined as %s", collab.Email, collab.Role),
		models.Metadata{"email": collab.Email, "role": string(collab.Role)})

	collab.Status = models.InviteStatusAccepted
	collab.UserID = &userID

	return collab, nil
}

// Decline marks a pending invitation declined
func (s *CollaboratorService) Decline(ctx context.Context, collaboratorID, userID uuid.UUID) error {
	collab, err := s.collaborators.GetByID(ctx, collaboratorID)
	if err != nil {
		return err
	}
	if collab.Status != models.InviteStatusPending {
		return ErrInviteNotPending
	}

	if err := s.collaborators.Decline(ctx, collaboratorID); err != nil {
		return fmt.Errorf("decline invitation: %w", err)
	}

	s.logActivity(ctx, collab.DisputeID, userID, "invitation_declined",
		fmt.Sprintf("%s declined the invitation", collab.Email),
		models.Metadata{"email": collab.Email})

	return nil
}

// Remove deletes a collaborator from a dispute
func (s *CollaboratorService) Remove(ctx context.Context, actorID, collaboratorID uuid.UUID) error {
	collab, err := s.collaborators.GetByID(ctx, collaboratorID)
	if err != nil {
		return err
	}

	if err := s.collaborators.Delete(ctx, collaboratorID); err != nil {
		return fmt.Errorf("remove collaborator: %w", err)
	}

	s.logActivity(ctx, collab.DisputeID, actorID, "collaborator_removed",
		fmt.Sprintf("Removed %s", collab.Email),
		models.Metadata{"email": collab.Email})

	return nil
}

// HasPermission reports whether the user holds the permission on the
// dispute through an accepted collaboration
func (s *CollaboratorService) HasPermission(ctx context.Context, disputeID, userID uuid.UUID, permission string) (bool, error) {
	collab, err := s.collaborators.GetAccepted(ctx, disputeID, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return collab.Permissions.Contains(permission), nil
}

// Activities returns recent collaboration activity for a dispute
func (s *CollaboratorService) Activities(ctx context.Context, disputeID uuid.UUID, limit int) ([]*models.CollaboratorActivity, error) {
	return s.collaborators.ListActivities(ctx, disputeID, limit)
}

// logActivity records an audit entry. Audit failures are logged, never
// surfaced.
func (s *CollaboratorService) logActivity(ctx context.Context, disputeID, userID uuid.UUID, activityType, description string, metadata models.Metadata) {
	activity := &models.CollaboratorActivity{
		DisputeID:    disputeID,
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		Metadata:     metadata,
	}
	if err := s.collaborators.LogActivity(ctx, activity); err != nil {
		s.log.Warn("failed to record activity", "dispute_id", disputeID, "type", activityType, "error", err)
	}
}
