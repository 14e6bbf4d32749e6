// internal/conversation/conversation.go
// Minimal conversation bootstrap for confirmed matches. The chat
// product owns the rest of the conversation lifecycle; matching only
// needs an idempotent "open a conversation for this pair".

package conversation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Creator opens direct conversations between matched users. Creation
// is idempotent per pair: an existing conversation is returned
// instead of a duplicate, even under concurrent calls.
type Creator struct {
	db *sqlx.DB
}

func NewCreator(db *sqlx.DB) *Creator {
	return &Creator{db: db}
}

func (c *Creator) CreateConversation(ctx context.Context, userAID, userBID int64) (int64, error) {
	if userAID > userBID {
		userAID, userBID = userBID, userAID
	}

	// The no-op DO UPDATE makes RETURNING yield the surviving row on
	// conflict, so racing creators converge on one conversation
	var id int64
	err := c.db.GetContext(ctx, &id,
		`INSERT INTO match_conversations (uuid, user_a_id, user_b_id, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_a_id, user_b_id)
		 DO UPDATE SET user_a_id = EXCLUDED.user_a_id
		 RETURNING id`,
		uuid.New(), userAID, userBID)
	if err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}

	return id, nil
}
