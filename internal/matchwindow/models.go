// internal/matchwindow/models.go
// The 24-hour match decision window and its state machine

package matchwindow

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

// Sentinel errors surfaced by the match window service
var (
	ErrWindowNotFound  = errors.New("match window not found")
	ErrNotParticipant  = errors.New("user is not part of this match")
	ErrWindowExpired   = errors.New("match window has expired")
	ErrWindowClosed    = errors.New("match window is already closed")
	ErrAlreadyExtended = errors.New("match window has already been extended")
	ErrWindowExists    = errors.New("a match window already exists for this pair")
	ErrConflict        = errors.New("window was modified concurrently, retry")
)

// Status is a window's lifecycle state. The persisted values double as
// the client-facing enumeration.
type Status string

const (
	StatusPendingBoth      Status = "PENDING_BOTH"
	StatusPendingUserA     Status = "PENDING_USER_A"
	StatusPendingUserB     Status = "PENDING_USER_B"
	StatusConfirmed        Status = "CONFIRMED"
	StatusDeclinedByA      Status = "DECLINED_BY_A"
	StatusDeclinedByB      Status = "DECLINED_BY_B"
	StatusExpired          Status = "EXPIRED"
	StatusExtensionPending Status = "EXTENSION_PENDING"
)

// Terminal reports whether the window can no longer change state
func (s Status) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusDeclinedByA, StatusDeclinedByB, StatusExpired:
		return true
	}
	return false
}

// Pending reports whether the window is still awaiting a decision
func (s Status) Pending() bool {
	switch s {
	case StatusPendingBoth, StatusPendingUserA, StatusPendingUserB, StatusExtensionPending:
		return true
	}
	return false
}

// Window is the time-boxed mutual-confirmation period between a
// signaled mutual interest and either a confirmed match or expiry.
// UserAID < UserBID always holds.
type Window struct {
	ID      int64     `db:"id" json:"-"`
	UUID    uuid.UUID `db:"uuid" json:"id"`
	UserAID int64     `db:"user_a_id" json:"user_a_id"`
	UserBID int64     `db:"user_b_id" json:"user_b_id"`

	Status Status `db:"status" json:"status"`

	UserAConfirmed   bool       `db:"user_a_confirmed" json:"user_a_confirmed"`
	UserBConfirmed   bool       `db:"user_b_confirmed" json:"user_b_confirmed"`
	UserAConfirmedAt *time.Time `db:"user_a_confirmed_at" json:"user_a_confirmed_at,omitempty"`
	UserBConfirmedAt *time.Time `db:"user_b_confirmed_at" json:"user_b_confirmed_at,omitempty"`

	ExpiresAt            time.Time `db:"expires_at" json:"expires_at"`
	ExtensionUsed        bool      `db:"extension_used" json:"extension_used"`
	ExtensionRequestedBy *int64    `db:"extension_requested_by" json:"extension_requested_by,omitempty"`

	// Compatibility snapshot cached at creation for display during the
	// decision period
	MatchPercentage      float64        `db:"match_percentage" json:"match_percentage"`
	CategoryBreakdown    types.JSONText `db:"category_breakdown" json:"category_breakdown,omitempty"`
	HasMandatoryConflict bool           `db:"has_mandatory_conflict" json:"has_mandatory_conflict"`

	// Set exactly once when both users confirm
	ConversationID *int64 `db:"conversation_id" json:"conversation_id,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`

	Version int `db:"version" json:"-"`
}

// IsParticipant reports whether the user is one of the window's pair
func (w *Window) IsParticipant(userID int64) bool {
	return userID == w.UserAID || userID == w.UserBID
}

// OtherUser returns the partner's ID for a participant
func (w *Window) OtherUser(userID int64) int64 {
	if userID == w.UserAID {
		return w.UserBID
	}
	return w.UserAID
}

// HasConfirmed reports whether a participant has confirmed interest
func (w *Window) HasConfirmed(userID int64) bool {
	if userID == w.UserAID {
		return w.UserAConfirmed
	}
	return w.UserBConfirmed
}

// BothConfirmed reports whether both sides confirmed
func (w *Window) BothConfirmed() bool {
	return w.UserAConfirmed && w.UserBConfirmed
}

// ExpiredAt reports whether the deadline has passed at the given instant
func (w *Window) ExpiredAt(now time.Time) bool {
	return now.After(w.ExpiresAt)
}

// CanExtend reports whether a one-time extension is still available
func (w *Window) CanExtend() bool {
	return !w.ExtensionUsed && w.Status.Pending()
}

// MinutesRemaining is the time left on the window, floored at zero
func (w *Window) MinutesRemaining(now time.Time) int {
	diff := w.ExpiresAt.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(diff / time.Minute)
}
