// internal/assessment/repository.go
// Persistence for questions, responses and cached pair scores

package assessment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines persistence for the assessment module
type Repository interface {
	// Questions
	CreateQuestion(ctx context.Context, q *Question) error
	QuestionExists(ctx context.Context, externalID string) (bool, error)
	GetQuestionByExternalID(ctx context.Context, externalID string) (*Question, error)
	ListQuestions(ctx context.Context, category Category) ([]*Question, error)
	CountQuestionsByCategory(ctx context.Context) (map[Category]int64, error)

	// Responses
	UpsertResponse(ctx context.Context, r *Response) error
	ListResponsesByUser(ctx context.Context, userID int64) ([]*Response, error)
	CountResponsesByCategory(ctx context.Context, userID int64) (map[Category]int64, error)
	LastResponseChange(ctx context.Context, userID int64) (time.Time, error)
	DeleteResponses(ctx context.Context, userID int64, category Category) error

	// Pair scores
	GetScore(ctx context.Context, userA, userB int64) (*PairScore, error)
	InsertScore(ctx context.Context, s *PairScore) error
	UpdateScore(ctx context.Context, s *PairScore) error
}

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates a PostgreSQL-backed assessment repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateQuestion(ctx context.Context, q *Question) error {
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}

	query := `
		INSERT INTO assessment_questions (
			uuid, external_id, text, category, subcategory, response_scale,
			inverse, severity, display_order, active, created_at
		) VALUES (
			:uuid, :external_id, :text, :category, :subcategory, :response_scale,
			:inverse, :severity, :display_order, :active, NOW()
		) RETURNING id, created_at`

	rows, err := r.db.NamedQueryContext(ctx, query, q)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&q.ID, &q.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan question id: %w", err)
		}
	}

	return nil
}

func (r *postgresRepository) QuestionExists(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM assessment_questions WHERE external_id = $1)`, externalID)
	if err != nil {
		return false, fmt.Errorf("failed to check question existence: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) GetQuestionByExternalID(ctx context.Context, externalID string) (*Question, error) {
	var q Question
	err := r.db.GetContext(ctx, &q,
		`SELECT * FROM assessment_questions WHERE external_id = $1`, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

func (r *postgresRepository) ListQuestions(ctx context.Context, category Category) ([]*Question, error) {
	questions := []*Question{}
	err := r.db.SelectContext(ctx, &questions,
		`SELECT * FROM assessment_questions
		 WHERE category = $1 AND active = TRUE
		 ORDER BY display_order ASC`,
		category)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

func (r *postgresRepository) CountQuestionsByCategory(ctx context.Context) (map[Category]int64, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT category, COUNT(*) FROM assessment_questions
		 WHERE active = TRUE GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	defer rows.Close()

	counts := make(map[Category]int64)
	for rows.Next() {
		var category Category
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan question count: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}

func (r *postgresRepository) UpsertResponse(ctx context.Context, resp *Response) error {
	query := `
		INSERT INTO assessment_responses (
			user_id, question_id, category, numeric_answer, text_answer,
			importance, acceptable_answers, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id, question_id) DO UPDATE SET
			numeric_answer = EXCLUDED.numeric_answer,
			text_answer = EXCLUDED.text_answer,
			importance = EXCLUDED.importance,
			acceptable_answers = EXCLUDED.acceptable_answers,
			updated_at = NOW()
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		resp.UserID, resp.QuestionID, resp.Category, resp.NumericAnswer,
		resp.TextAnswer, resp.Importance, pq.Int64Array(resp.Acceptable),
	).Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListResponsesByUser(ctx context.Context, userID int64) ([]*Response, error) {
	responses := []*Response{}
	err := r.db.SelectContext(ctx, &responses,
		`SELECT * FROM assessment_responses WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	return responses, nil
}

func (r *postgresRepository) CountResponsesByCategory(ctx context.Context, userID int64) (map[Category]int64, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT category, COUNT(*) FROM assessment_responses
		 WHERE user_id = $1 GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}
	defer rows.Close()

	counts := make(map[Category]int64)
	for rows.Next() {
		var category Category
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan response count: %w", err)
		}
		counts[category] = count
	}

	return counts, rows.Err()
}

func (r *postgresRepository) LastResponseChange(ctx context.Context, userID int64) (time.Time, error) {
	var last sql.NullTime
	err := r.db.GetContext(ctx, &last,
		`SELECT MAX(GREATEST(created_at, COALESCE(updated_at, created_at)))
		 FROM assessment_responses WHERE user_id = $1`, userID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last response change: %w", err)
	}
	if !last.Valid {
		return time.Time{}, nil
	}
	return last.Time, nil
}

func (r *postgresRepository) DeleteResponses(ctx context.Context, userID int64, category Category) error {
	var err error
	if category == "" {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM assessment_responses WHERE user_id = $1`, userID)
	} else {
		_, err = r.db.ExecContext(ctx,
			`DELETE FROM assessment_responses WHERE user_id = $1 AND category = $2`,
			userID, category)
	}
	if err != nil {
		return fmt.Errorf("failed to delete responses: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetScore(ctx context.Context, userA, userB int64) (*PairScore, error) {
	a, b := CanonicalPair(userA, userB)

	var s PairScore
	err := r.db.GetContext(ctx, &s,
		`SELECT * FROM compatibility_scores WHERE user_a_id = $1 AND user_b_id = $2`, a, b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to get compatibility score: %w", err)
	}
	return &s, nil
}

func (r *postgresRepository) InsertScore(ctx context.Context, s *PairScore) error {
	if s.UUID == uuid.Nil {
		s.UUID = uuid.New()
	}
	s.UserAID, s.UserBID = CanonicalPair(s.UserAID, s.UserBID)
	s.Version = 1

	query := `
		INSERT INTO compatibility_scores (
			uuid, user_a_id, user_b_id, overall,
			values_score, lifestyle_score, personality_score, attachment_score, political_score,
			satisfaction_a, satisfaction_b, shared_questions, has_enough_data,
			has_mandatory_conflict, conflict_question_ids,
			profile_a_updated_at, profile_b_updated_at, calculated_at, version
		) VALUES (
			:uuid, :user_a_id, :user_b_id, :overall,
			:values_score, :lifestyle_score, :personality_score, :attachment_score, :political_score,
			:satisfaction_a, :satisfaction_b, :shared_questions, :has_enough_data,
			:has_mandatory_conflict, :conflict_question_ids,
			:profile_a_updated_at, :profile_b_updated_at, :calculated_at, :version
		) RETURNING id`

	rows, err := r.db.NamedQueryContext(ctx, query, s)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("failed to insert compatibility score: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&s.ID); err != nil {
			return fmt.Errorf("failed to scan score id: %w", err)
		}
	}

	return nil
}

// UpdateScore writes back a recomputed score. The version check makes
// concurrent recomputes lose cleanly instead of clobbering each other.
func (r *postgresRepository) UpdateScore(ctx context.Context, s *PairScore) error {
	query := `
		UPDATE compatibility_scores SET
			overall = :overall,
			values_score = :values_score,
			lifestyle_score = :lifestyle_score,
			personality_score = :personality_score,
			attachment_score = :attachment_score,
			political_score = :political_score,
			satisfaction_a = :satisfaction_a,
			satisfaction_b = :satisfaction_b,
			shared_questions = :shared_questions,
			has_enough_data = :has_enough_data,
			has_mandatory_conflict = :has_mandatory_conflict,
			conflict_question_ids = :conflict_question_ids,
			profile_a_updated_at = :profile_a_updated_at,
			profile_b_updated_at = :profile_b_updated_at,
			calculated_at = :calculated_at,
			version = version + 1
		WHERE id = :id AND version = :version`

	result, err := r.db.NamedExecContext(ctx, query, s)
	if err != nil {
		return fmt.Errorf("failed to update compatibility score: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrConflict
	}

	s.Version++
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
