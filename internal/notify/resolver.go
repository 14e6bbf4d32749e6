// internal/notify/resolver.go

package notify

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// PostgresResolver looks up delivery addresses in the users table
type PostgresResolver struct {
	db *sqlx.DB
}

func NewPostgresResolver(db *sqlx.DB) *PostgresResolver {
	return &PostgresResolver{db: db}
}

func (r *PostgresResolver) ResolveRecipient(ctx context.Context, userID int64) (*Recipient, error) {
	var row struct {
		Email sql.NullString `db:"email"`
		Phone sql.NullString `db:"phone"`
	}
	err := r.db.GetContext(ctx, &row,
		`SELECT email, phone FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown user means no reachable channel, not a failure
			return &Recipient{}, nil
		}
		return nil, fmt.Errorf("failed to resolve recipient: %w", err)
	}

	return &Recipient{
		Email: row.Email.String,
		Phone: row.Phone.String,
	}, nil
}
