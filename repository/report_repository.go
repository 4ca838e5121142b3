package repository

import (
	"context"

	"disputedesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportRepository handles database operations for dispute reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create creates a new report. Reports are immutable after creation.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
		INSERT INTO dispute_reports (
			dispute_id, user_id, report_type, title, summary,
			strengths, weaknesses, opportunities, risks,
			negotiation_strategies, key_terms, recommendations, "references"
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		report.DisputeID,
		report.UserID,
		report.ReportType,
		report.Title,
		report.Summary,
		report.Strengths,
		report.Weaknesses,
		report.Opportunities,
		report.Risks,
		report.NegotiationStrategies,
		report.KeyTerms,
		report.Recommendations,
		report.References,
	).Scan(&report.ID, &report.CreatedAt)

	return err
}

// GetByID retrieves a report by ID
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	report := &models.Report{}
	query := `
		SELECT id, dispute_id, user_id, report_type, title, summary,
			strengths, weaknesses, opportunities, risks,
			negotiation_strategies, key_terms, recommendations, "references",
			created_at
		FROM dispute_reports
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&report.ID,
		&report.DisputeID,
		&report.UserID,
		&report.ReportType,
		&report.Title,
		&report.Summary,
		&report.Strengths,
		&report.Weaknesses,
		&report.Opportunities,
		&report.Risks,
		&report.NegotiationStrategies,
		&report.KeyTerms,
		&report.Recommendations,
		&report.References,
		&report.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return report, nil
}

// ListByDisputeID retrieves all reports for a dispute, newest first
func (r *ReportRepository) ListByDisputeID(ctx context.Context, disputeID uuid.UUID) ([]*models.Report, error) {
	query := `
		SELECT id, dispute_id, user_id, report_type, title, summary,
			strengths, weaknesses, opportunities, risks,
			negotiation_strategies, key_terms, recommendations, "references",
			created_at
		FROM dispute_reports
		WHERE dispute_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, disputeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		report := &models.Report{}
		err := rows.Scan(
			&report.ID,
			&report.DisputeID,
			&report.UserID,
			&report.ReportType,
			&report.Title,
			&report.Summary,
			&report.Strengths,
			&report.Weaknesses,
			&report.Opportunities,
			&report.Risks,
			&report.NegotiationStrategies,
			&report.KeyTerms,
			&report.Recommendations,
			&report.References,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}
