// internal/gate/repository.go
// Persistence for the one-per-user gate assessment

package gate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines persistence for gate assessments
type Repository interface {
	Create(ctx context.Context, a *Assessment) error
	GetByUserID(ctx context.Context, userID int64) (*Assessment, error)
	GetByUUID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	Update(ctx context.Context, a *Assessment) error
	ListByStatus(ctx context.Context, status GateStatus, limit, offset int) ([]*Assessment, error)
	CountByStatus(ctx context.Context) (map[GateStatus]int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates a PostgreSQL-backed gate repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, a *Assessment) error {
	if a.UUID == uuid.Nil {
		a.UUID = uuid.New()
	}
	if a.GateStatus == "" {
		a.GateStatus = StatusPendingAssessment
	}

	query := `
		INSERT INTO gate_assessments (
			uuid, user_id, income_bracket, wealth_bracket, primary_income_source,
			owns_rental_property, employs_others, lives_off_capital,
			economic_class, economic_values_score, political_orientation,
			wealth_redistribution_view, worker_ownership_view, universal_services_view,
			housing_rights_view, billionaire_view, meritocracy_view,
			wealth_contribution_view, verification_applicable, reproductive_view,
			verification_status, verification_doc_url, verified_at,
			explanation, explanation_reviewed, review_notes,
			gate_status, rejection_reason, created_at, completed_at
		) VALUES (
			:uuid, :user_id, :income_bracket, :wealth_bracket, :primary_income_source,
			:owns_rental_property, :employs_others, :lives_off_capital,
			:economic_class, :economic_values_score, :political_orientation,
			:wealth_redistribution_view, :worker_ownership_view, :universal_services_view,
			:housing_rights_view, :billionaire_view, :meritocracy_view,
			:wealth_contribution_view, :verification_applicable, :reproductive_view,
			:verification_status, :verification_doc_url, :verified_at,
			:explanation, :explanation_reviewed, :review_notes,
			:gate_status, :rejection_reason, NOW(), :completed_at
		) RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to create gate assessment: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&a.ID, &a.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan gate assessment id: %w", err)
		}
	}

	return nil
}

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) (*Assessment, error) {
	var a Assessment
	err := r.db.GetContext(ctx, &a,
		`SELECT * FROM gate_assessments WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get gate assessment: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	var a Assessment
	err := r.db.GetContext(ctx, &a,
		`SELECT * FROM gate_assessments WHERE uuid = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to get gate assessment: %w", err)
	}
	return &a, nil
}

func (r *postgresRepository) Update(ctx context.Context, a *Assessment) error {
	query := `
		UPDATE gate_assessments SET
			income_bracket = :income_bracket,
			wealth_bracket = :wealth_bracket,
			primary_income_source = :primary_income_source,
			owns_rental_property = :owns_rental_property,
			employs_others = :employs_others,
			lives_off_capital = :lives_off_capital,
			economic_class = :economic_class,
			economic_values_score = :economic_values_score,
			political_orientation = :political_orientation,
			wealth_redistribution_view = :wealth_redistribution_view,
			worker_ownership_view = :worker_ownership_view,
			universal_services_view = :universal_services_view,
			housing_rights_view = :housing_rights_view,
			billionaire_view = :billionaire_view,
			meritocracy_view = :meritocracy_view,
			wealth_contribution_view = :wealth_contribution_view,
			verification_applicable = :verification_applicable,
			reproductive_view = :reproductive_view,
			verification_status = :verification_status,
			verification_doc_url = :verification_doc_url,
			verified_at = :verified_at,
			explanation = :explanation,
			explanation_reviewed = :explanation_reviewed,
			review_notes = :review_notes,
			gate_status = :gate_status,
			rejection_reason = :rejection_reason,
			completed_at = :completed_at,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("failed to update gate assessment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrAssessmentNotFound
	}

	return nil
}

func (r *postgresRepository) ListByStatus(ctx context.Context, status GateStatus, limit, offset int) ([]*Assessment, error) {
	assessments := []*Assessment{}
	err := r.db.SelectContext(ctx, &assessments,
		`SELECT * FROM gate_assessments
		 WHERE gate_status = $1
		 ORDER BY updated_at ASC NULLS FIRST, created_at ASC
		 LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list gate assessments: %w", err)
	}
	return assessments, nil
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[GateStatus]int64, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT gate_status, COUNT(*) FROM gate_assessments GROUP BY gate_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count gate assessments: %w", err)
	}
	defer rows.Close()

	counts := make(map[GateStatus]int64)
	for rows.Next() {
		var status GateStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}
