// internal/matchwindow/repository.go
// Persistence for match windows, keyed on the canonical user pair

package matchwindow

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

// Repository defines persistence for match windows
type Repository interface {
	Create(ctx context.Context, w *Window) error
	GetByUUID(ctx context.Context, id uuid.UUID) (*Window, error)
	ExistsActive(ctx context.Context, userA, userB int64) (bool, error)
	Update(ctx context.Context, w *Window) error
	ListPendingForUser(ctx context.Context, userID int64) ([]*Window, error)
	ListWaitingForUser(ctx context.Context, userID int64) ([]*Window, error)
	ListConfirmedForUser(ctx context.Context, userID int64) ([]*Window, error)
	CountPendingForUser(ctx context.Context, userID int64) (int64, error)
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*Window, error)
	ListExpiringSoon(ctx context.Context, from, until time.Time, limit int) ([]*Window, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

// pendingStatuses matches every non-terminal state in SQL filters
const pendingStatuses = `('PENDING_BOTH', 'PENDING_USER_A', 'PENDING_USER_B', 'EXTENSION_PENDING')`

type postgresRepository struct {
	db *sqlx.DB
}

// NewRepository creates a PostgreSQL-backed window repository
func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, w *Window) error {
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	if w.Status == "" {
		w.Status = StatusPendingBoth
	}

	query := `
		INSERT INTO match_windows (
			uuid, user_a_id, user_b_id, status,
			user_a_confirmed, user_b_confirmed,
			user_a_confirmed_at, user_b_confirmed_at,
			expires_at, extension_used, extension_requested_by,
			match_percentage, category_breakdown, has_mandatory_conflict,
			conversation_id, created_at, version
		) VALUES (
			:uuid, :user_a_id, :user_b_id, :status,
			:user_a_confirmed, :user_b_confirmed,
			:user_a_confirmed_at, :user_b_confirmed_at,
			:expires_at, :extension_used, :extension_requested_by,
			:match_percentage, :category_breakdown, :has_mandatory_conflict,
			:conversation_id, NOW(), 1
		) RETURNING id, created_at, version`

	rows, err := r.db.NamedQueryContext(ctx, query, w)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrWindowExists
		}
		return fmt.Errorf("failed to create match window: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&w.ID, &w.CreatedAt, &w.Version); err != nil {
			return fmt.Errorf("failed to scan match window id: %w", err)
		}
	}

	return nil
}

func (r *postgresRepository) GetByUUID(ctx context.Context, id uuid.UUID) (*Window, error) {
	var w Window
	err := r.db.GetContext(ctx, &w,
		`SELECT * FROM match_windows WHERE uuid = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, fmt.Errorf("failed to get match window: %w", err)
	}
	return &w, nil
}

func (r *postgresRepository) ExistsActive(ctx context.Context, userA, userB int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM match_windows
			WHERE user_a_id = $1 AND user_b_id = $2
			  AND status IN `+pendingStatuses+`
		)`, userA, userB)
	if err != nil {
		return false, fmt.Errorf("failed to check active window: %w", err)
	}
	return exists, nil
}

// Update persists a window guarded by its version. A stale version
// means a concurrent writer committed first and yields ErrConflict.
func (r *postgresRepository) Update(ctx context.Context, w *Window) error {
	query := `
		UPDATE match_windows SET
			status = :status,
			user_a_confirmed = :user_a_confirmed,
			user_b_confirmed = :user_b_confirmed,
			user_a_confirmed_at = :user_a_confirmed_at,
			user_b_confirmed_at = :user_b_confirmed_at,
			expires_at = :expires_at,
			extension_used = :extension_used,
			extension_requested_by = :extension_requested_by,
			conversation_id = :conversation_id,
			updated_at = NOW(),
			version = version + 1
		WHERE id = :id AND version = :version`

	result, err := r.db.NamedExecContext(ctx, query, w)
	if err != nil {
		return fmt.Errorf("failed to update match window: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return ErrConflict
	}

	w.Version++
	return nil
}

func (r *postgresRepository) ListPendingForUser(ctx context.Context, userID int64) ([]*Window, error) {
	windows := []*Window{}
	err := r.db.SelectContext(ctx, &windows,
		`SELECT * FROM match_windows
		 WHERE (user_a_id = $1 OR user_b_id = $1)
		   AND status IN `+pendingStatuses+`
		   AND NOT ((user_a_id = $1 AND user_a_confirmed) OR (user_b_id = $1 AND user_b_confirmed))
		 ORDER BY expires_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending windows: %w", err)
	}
	return windows, nil
}

func (r *postgresRepository) ListWaitingForUser(ctx context.Context, userID int64) ([]*Window, error) {
	windows := []*Window{}
	err := r.db.SelectContext(ctx, &windows,
		`SELECT * FROM match_windows
		 WHERE (user_a_id = $1 OR user_b_id = $1)
		   AND status IN `+pendingStatuses+`
		   AND ((user_a_id = $1 AND user_a_confirmed) OR (user_b_id = $1 AND user_b_confirmed))
		 ORDER BY expires_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting windows: %w", err)
	}
	return windows, nil
}

func (r *postgresRepository) ListConfirmedForUser(ctx context.Context, userID int64) ([]*Window, error) {
	windows := []*Window{}
	err := r.db.SelectContext(ctx, &windows,
		`SELECT * FROM match_windows
		 WHERE (user_a_id = $1 OR user_b_id = $1) AND status = 'CONFIRMED'
		 ORDER BY updated_at DESC NULLS LAST`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed windows: %w", err)
	}
	return windows, nil
}

func (r *postgresRepository) CountPendingForUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM match_windows
		 WHERE (user_a_id = $1 OR user_b_id = $1)
		   AND status IN `+pendingStatuses+`
		   AND NOT ((user_a_id = $1 AND user_a_confirmed) OR (user_b_id = $1 AND user_b_confirmed))`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending windows: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*Window, error) {
	windows := []*Window{}
	err := r.db.SelectContext(ctx, &windows,
		`SELECT * FROM match_windows
		 WHERE status IN `+pendingStatuses+` AND expires_at < $1
		 ORDER BY expires_at ASC
		 LIMIT $2`, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired windows: %w", err)
	}
	return windows, nil
}

func (r *postgresRepository) ListExpiringSoon(ctx context.Context, from, until time.Time, limit int) ([]*Window, error) {
	windows := []*Window{}
	err := r.db.SelectContext(ctx, &windows,
		`SELECT * FROM match_windows
		 WHERE status IN `+pendingStatuses+`
		   AND expires_at >= $1 AND expires_at < $2
		 ORDER BY expires_at ASC
		 LIMIT $3`, from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring windows: %w", err)
	}
	return windows, nil
}

func (r *postgresRepository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	rows, err := r.db.QueryxContext(ctx,
		`SELECT status, COUNT(*) FROM match_windows GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count match windows: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int64)
	for rows.Next() {
		var status Status
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	return counts, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
