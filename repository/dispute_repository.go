package repository

import (
	"context"
	"fmt"

	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DisputeRepository handles database operations for disputes
type DisputeRepository struct {
	db *pgxpool.Pool
}

// NewDisputeRepository creates a new dispute repository
func NewDisputeRepository(db *pgxpool.Pool) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create creates a new dispute
func (r *DisputeRepository) Create(ctx context.Context, dispute *models.Dispute) error {
	query := `
		INSERT INTO disputes (
			user_id, title, description, dispute_type, opposing_party,
			dispute_value, urgency, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, document_count, report_count, created_at, last_modified`

	err := r.db.QueryRow(
		ctx, query,
		dispute.UserID,
		dispute.Title,
		dispute.Description,
		dispute.DisputeType,
		dispute.OpposingParty,
		dispute.DisputeValue,
		dispute.Urgency,
		dispute.Status,
	).Scan(&dispute.ID, &dispute.DocumentCount, &dispute.ReportCount, &dispute.CreatedAt, &dispute.LastModified)

	return err
}

// GetByID retrieves a dispute by ID
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	dispute := &models.Dispute{}
	query := `
		SELECT id, user_id, title, description, dispute_type, opposing_party,
			dispute_value, urgency, status, document_count, report_count,
			created_at, last_modified
		FROM disputes
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&dispute.ID,
		&dispute.UserID,
		&dispute.Title,
		&dispute.Description,
		&dispute.DisputeType,
		&dispute.OpposingParty,
		&dispute.DisputeValue,
		&dispute.Urgency,
		&dispute.Status,
		&dispute.DocumentCount,
		&dispute.ReportCount,
		&dispute.CreatedAt,
		&dispute.LastModified,
	)

	if err != nil {
		return nil, err
	}

	return dispute, nil
}

// Update updates a dispute
func (r *DisputeRepository) Update(ctx context.Context, dispute *models.Dispute) error {
	query := `
		UPDATE disputes SET
			title = $2,
			description = $3,
			dispute_type = $4,
			opposing_party = $5,
			dispute_value = $6,
			urgency = $7,
			status = $8,
			last_modified = NOW()
		WHERE id = $1
		RETURNING last_modified`

	err := r.db.QueryRow(
		ctx, query,
		dispute.ID,
		dispute.Title,
		dispute.Description,
		dispute.DisputeType,
		dispute.OpposingParty,
		dispute.DisputeValue,
		dispute.Urgency,
		dispute.Status,
	).Scan(&dispute.LastModified)

	return err
}

// ListByUserID retrieves disputes for a user, newest first
func (r *DisputeRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.DisputeStatus, limit, offset int) ([]*models.Dispute, error) {
	query := `
		SELECT id, user_id, title, description, dispute_type, opposing_party,
			dispute_value, urgency, status, document_count, report_count,
			created_at, last_modified
		FROM disputes
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY last_modified DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var disputes []*models.Dispute
	for rows.Next() {
		dispute := &models.Dispute{}
		err := rows.Scan(
			&dispute.ID,
			&dispute.UserID,
			&dispute.Title,
			&dispute.Description,
			&dispute.DisputeType,
			&dispute.OpposingParty,
			&dispute.DisputeValue,
			&dispute.Urgency,
			&dispute.Status,
			&dispute.DocumentCount,
			&dispute.ReportCount,
			&dispute.CreatedAt,
			&dispute.LastModified,
		)
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, dispute)
	}

	return disputes, rows.Err()
}

// Delete deletes a dispute. Documents, chunks, reports, conversations,
// messages and collaborators cascade via foreign keys.
func (r *DisputeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM disputes WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

// RefreshDocumentCount recomputes the denormalized document count and
// bumps last_modified
func (r *DisputeRepository) RefreshDocumentCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE disputes SET
			document_count = (SELECT COUNT(*) FROM user_documents WHERE dispute_id = $1),
			last_modified = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	return err
}

// RefreshReportCount recomputes the denormalized report count and
// bumps last_modified
func (r *DisputeRepository) RefreshReportCount(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE disputes SET
			report_count = (SELECT COUNT(*) FROM dispute_reports WHERE dispute_id = $1),
			last_modified = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id)
	return err
}
