package repository

import (
	"context"

	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CollaboratorRepository handles database operations for dispute
// collaborators and their activity log
type CollaboratorRepository struct {
	db *pgxpool.Pool
}

// NewCollaboratorRepository creates a new collaborator repository
func NewCollaboratorRepository(db *pgxpool.Pool) *CollaboratorRepository {
	return &CollaboratorRepository{db: db}
}

// Create creates a new collaborator invitation
func (r *CollaboratorRepository) Create(ctx context.Context, collab *models.Collaborator) error {
	query := `
		INSERT INTO dispute_collaborators (
			dispute_id, user_id, email, role, permissions, status, invited_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, invited_at`

	err := r.db.QueryRow(
		ctx, query,
		collab.DisputeID,
		collab.UserID,
		collab.Email,
		collab.Role,
		collab.Permissions,
		collab.Status,
		collab.InvitedBy,
	).Scan(&collab.ID, &collab.InvitedAt)

	return err
}

// GetByID retrieves a collaborator by ID
func (r *CollaboratorRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Collaborator, error) {
	collab := &models.Collaborator{}
	query := `
		SELECT id, dispute_id, user_id, email, role, permissions, status,
			invited_by, invited_at, accepted_at
		FROM dispute_collaborators
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&collab.ID,
		&collab.DisputeID,
		&collab.UserID,
		&collab.Email,
		&collab.Role,
		&collab.Permissions,
		&collab.Status,
		&collab.InvitedBy,
		&collab.InvitedAt,
		&collab.AcceptedAt,
	)

	if err != nil {
		return nil, err
	}

	return collab, nil
}

// ListByDisputeID retrieves all collaborators for a dispute, most
// recently invited first
func (r *CollaboratorRepository) ListByDisputeID(ctx context.Context, disputeID uuid.UUID) ([]*models.Collaborator, error) {
	query := `
		SELECT id, dispute_id, user_id, email, role, permissions, status,
			invited_by, invited_at, accepted_at
		FROM dispute_collaborators
		WHERE dispute_id = $1
		ORDER BY invited_at DESC`

	rows, err := r.db.Query(ctx, query, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collabs []*models.Collaborator
	for rows.Next() {
		collab := &models.Collaborator{}
		err := rows.Scan(
			&collab.ID,
			&collab.DisputeID,
			&collab.UserID,
			&collab.Email,
			&collab.Role,
			&collab.Permissions,
			&collab.Status,
			&collab.InvitedBy,
			&collab.InvitedAt,
			&collab.AcceptedAt,
		)
		if err != nil {
			return nil, err
		}
		collabs = append(collabs, collab)
	}

	return collabs, rows.Err()
}

// GetAccepted returns the accepted collaborator row for a user on a
// dispute, if any
func (r *CollaboratorRepository) GetAccepted(ctx context.Context, disputeID, userID uuid.UUID) (*models.Collaborator, error) {
	collab := &models.Collaborator{}
	query := `
		SELECT id, dispute_id, user_id, email, role, permissions, status,
			invited_by, invited_at, accepted_at
		FROM dispute_collaborators
		WHERE dispute_id = $1 AND user_id = $2 AND status = $3`

	err := r.db.QueryRow(ctx, query, disputeID, userID, models.InviteStatusAccepted).Scan(
		&collab.ID,
		&collab.DisputeID,
		&collab.UserID,
		&collab.Email,
		&collab.Role,
		&collab.Permissions,
		&collab.Status,
		&collab.InvitedBy,
		&collab.InvitedAt,
		&collab.AcceptedAt,
	)

	if err != nil {
		return nil, err
	}

	return collab, nil
}

// UpdateRole changes a collaborator's role and permission set
func (r *CollaboratorRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.CollaboratorRole, permissions models.PermissionList) error {
	query := `
		UPDATE dispute_collaborators SET
			role = $2,
			permissions = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, role, permissions)
	return err
}

// Accept marks an invitation accepted and binds it to the accepting user
func (r *CollaboratorRepository) Accept(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		UPDATE dispute_collaborators SET
			status = $2,
			user_id = $3,
			accepted_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.InviteStatusAccepted, userID)
	return err
}

// Decline marks an invitation declined
func (r *CollaboratorRepository) Decline(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE dispute_collaborators SET status = $2 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id, models.InviteStatusDeclined)
	return err
}

// Delete removes a collaborator
func (r *CollaboratorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM dispute_collaborators WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// LogActivity records a collaboration audit entry
func (r *CollaboratorRepository) LogActivity(ctx context.Context, activity *models.CollaboratorActivity) error {
	query := `
		INSERT INTO collaborator_activities (
			dispute_id, user_id, activity_type, description, metadata
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		activity.DisputeID,
		activity.UserID,
		activity.ActivityType,
		activity.Description,
		activity.Metadata,
	).Scan(&activity.ID, &activity.CreatedAt)

	return err
}

// ListActivities retrieves recent collaboration activity for a dispute
func (r *CollaboratorRepository) ListActivities(ctx context.Context, disputeID uuid.UUID, limit int) ([]*models.CollaboratorActivity, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, dispute_id, user_id, activity_type, description, metadata, created_at
		FROM collaborator_activities
		WHERE dispute_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, disputeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*models.CollaboratorActivity
	for rows.Next() {
		activity := &models.CollaboratorActivity{}
		err := rows.Scan(
			&activity.ID,
			&activity.DisputeID,
			&activity.UserID,
			&activity.ActivityType,
			&activity.Description,
			&activity.Metadata,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}

	return activities, rows.Err()
}
