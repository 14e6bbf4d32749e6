// internal/matchwindow/service.go
// Match window lifecycle: creation with a cached compatibility
// snapshot, dual confirmation, one-time extension, and lazy expiry.

package matchwindow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/auradating/aura-backend/internal/assessment"
	"github.com/auradating/aura-backend/internal/common/clock"
	"github.com/auradating/aura-backend/internal/notify"
)

// sweepBatchSize bounds how many windows one sweep pass touches
const sweepBatchSize = 500

// ConversationCreator opens the conversation for a confirmed match.
// Implementations must be idempotent per pair: when a conversation
// already exists between the two users, return its ID instead of
// creating another.
type ConversationCreator interface {
	CreateConversation(ctx context.Context, userAID, userBID int64) (int64, error)
}

// Policy holds the window timing rules
type Policy struct {
	InitialWindow   time.Duration
	Extension       time.Duration
	ReminderHorizon time.Duration
}

// Service defines the match window business logic
type Service interface {
	Create(ctx context.Context, userA, userB int64) (*Window, error)
	CreateBatch(ctx context.Context, userID int64, candidateIDs []int64, minOverall float64) ([]*Window, error)
	Get(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error)
	Confirm(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error)
	Decline(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error)
	Extend(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error)
	PendingDecisions(ctx context.Context, userID int64) ([]*Window, error)
	WaitingMatches(ctx context.Context, userID int64) ([]*Window, error)
	ConfirmedMatches(ctx context.Context, userID int64) ([]*Window, error)
	PendingCount(ctx context.Context, userID int64) (int64, error)
	ExpireDueWindows(ctx context.Context) error
	SendExpiryReminders(ctx context.Context) error
	Stats(ctx context.Context) (map[Status]int64, error)
}

type service struct {
	repo          Repository
	scores        assessment.Service
	conversations ConversationCreator
	notifier      notify.Service
	clock         clock.Clock
	policy        Policy
}

// NewService creates a new match window service
func NewService(repo Repository, scores assessment.Service, conversations ConversationCreator,
	notifier notify.Service, clk clock.Clock, policy Policy) Service {
	return &service{
		repo:          repo,
		scores:        scores,
		conversations: conversations,
		notifier:      notifier,
		clock:         clk,
		policy:        policy,
	}
}

// Create opens a decision window for a pair, snapshotting their
// compatibility for display. Both users must have an approved gate;
// the score call enforces that.
func (s *service) Create(ctx context.Context, userA, userB int64) (*Window, error) {
	score, err := s.scores.ComputeCompatibility(ctx, userA, userB)
	if err != nil {
		return nil, err
	}
	return s.createFromScore(ctx, score)
}

// CreateBatch opens windows for every candidate whose compatibility
// clears the threshold. Per-candidate failures are logged and skipped
// so one blocked pair cannot sink the batch.
func (s *service) CreateBatch(ctx context.Context, userID int64, candidateIDs []int64, minOverall float64) ([]*Window, error) {
	created := []*Window{}

	for _, candidateID := range candidateIDs {
		score, err := s.scores.ComputeCompatibility(ctx, userID, candidateID)
		if err != nil {
			log.Printf("matchwindow: skipping pair (%d, %d): %v", userID, candidateID, err)
			continue
		}
		if score.Overall < minOverall || score.HasMandatoryConflict {
			continue
		}

		window, err := s.createFromScore(ctx, score)
		if err != nil {
			if !errors.Is(err, ErrWindowExists) {
				log.Printf("matchwindow: could not create window for pair (%d, %d): %v", userID, candidateID, err)
			}
			continue
		}
		created = append(created, window)
	}

	return created, nil
}

func (s *service) createFromScore(ctx context.Context, score *assessment.PairScore) (*Window, error) {
	exists, err := s.repo.ExistsActive(ctx, score.UserAID, score.UserBID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrWindowExists
	}

	breakdown, err := json.Marshal(score.CategoryScores())
	if err != nil {
		return nil, fmt.Errorf("failed to encode category breakdown: %w", err)
	}

	now := s.clock.Now()
	window := &Window{
		UserAID:              score.UserAID,
		UserBID:              score.UserBID,
		Status:               StatusPendingBoth,
		ExpiresAt:            now.Add(s.policy.InitialWindow),
		MatchPercentage:      score.Overall,
		CategoryBreakdown:    breakdown,
		HasMandatoryConflict: score.HasMandatoryConflict,
	}

	if err := s.repo.Create(ctx, window); err != nil {
		return nil, err
	}

	RecordCreated()
	log.Printf("matchwindow: opened window %s for users %d and %d (%.1f%% compatible)",
		window.UUID, window.UserAID, window.UserBID, window.MatchPercentage)

	subject := "You have a new match"
	body := fmt.Sprintf("You matched at %.0f%% compatibility. You have %d hours to decide.",
		window.MatchPercentage, int(s.policy.InitialWindow.Hours()))
	s.send(ctx, window.UserAID, notify.EventWindowOpened, subject, body)
	s.send(ctx, window.UserBID, notify.EventWindowOpened, subject, body)

	return window, nil
}

// Get returns the window for a participant, lazily expiring it first
func (s *service) Get(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	for attempt := 0; ; attempt++ {
		window, err := s.load(ctx, windowID, userID)
		if err != nil {
			return nil, err
		}

		err = s.expireIfDue(ctx, window)
		if err == nil || errors.Is(err, ErrWindowExpired) {
			return window, nil
		}
		if !errors.Is(err, ErrConflict) || attempt > 0 {
			return nil, err
		}
	}
}

// Confirm records a participant's interest. When the partner already
// confirmed, the window closes as confirmed and the conversation is
// created exactly once.
func (s *service) Confirm(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	return s.mutate(ctx, windowID, userID, s.applyConfirm)
}

// Decline closes the window permanently
func (s *service) Decline(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	return s.mutate(ctx, windowID, userID, s.applyDecline)
}

// Extend pushes the deadline out once per window
func (s *service) Extend(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	return s.mutate(ctx, windowID, userID, s.applyExtend)
}

// mutate runs one state transition with a single retry when a
// concurrent writer commits first. The second conflict is surfaced to
// the caller as retryable.
func (s *service) mutate(ctx context.Context, windowID uuid.UUID, userID int64,
	apply func(context.Context, *Window, int64) (*Window, error)) (*Window, error) {

	for attempt := 0; ; attempt++ {
		window, err := s.load(ctx, windowID, userID)
		if err != nil {
			return nil, err
		}

		window, err = apply(ctx, window, userID)
		if err == nil {
			return window, nil
		}
		if !errors.Is(err, ErrConflict) || attempt > 0 {
			return nil, err
		}
	}
}

func (s *service) load(ctx context.Context, windowID uuid.UUID, userID int64) (*Window, error) {
	window, err := s.repo.GetByUUID(ctx, windowID)
	if err != nil {
		return nil, err
	}
	if !window.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return window, nil
}

// expireIfDue applies the lazy expiry check every operation runs
// first: a past-due non-terminal window transitions to expired before
// anything else may proceed.
func (s *service) expireIfDue(ctx context.Context, w *Window) error {
	if w.Status.Terminal() || !w.ExpiredAt(s.clock.Now()) {
		return nil
	}

	w.Status = StatusExpired
	if err := s.repo.Update(ctx, w); err != nil {
		return err
	}

	RecordTransition(StatusExpired)
	log.Printf("matchwindow: window %s expired", w.UUID)
	s.notifyExpired(ctx, w)
	return ErrWindowExpired
}

func (s *service) applyConfirm(ctx context.Context, w *Window, userID int64) (*Window, error) {
	if err := s.expireIfDue(ctx, w); err != nil {
		return nil, err
	}
	if w.Status == StatusConfirmed {
		// Already mutual: confirming again changes nothing and must
		// not create a second conversation
		return w, nil
	}
	if w.Status.Terminal() {
		return nil, ErrWindowClosed
	}
	if w.HasConfirmed(userID) {
		return w, nil
	}

	now := s.clock.Now()
	if userID == w.UserAID {
		w.UserAConfirmed = true
		w.UserAConfirmedAt = &now
	} else {
		w.UserBConfirmed = true
		w.UserBConfirmedAt = &now
	}

	if w.BothConfirmed() {
		w.Status = StatusConfirmed
		if w.ConversationID == nil {
			conversationID, err := s.conversations.CreateConversation(ctx, w.UserAID, w.UserBID)
			if err != nil {
				return nil, fmt.Errorf("failed to create conversation: %w", err)
			}
			w.ConversationID = &conversationID
			RecordConversationCreated()
		}
	} else if w.UserAConfirmed {
		w.Status = StatusPendingUserB
	} else {
		w.Status = StatusPendingUserA
	}

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	RecordTransition(w.Status)

	if w.Status == StatusConfirmed {
		log.Printf("matchwindow: window %s confirmed by both users", w.UUID)
		subject := "It's a match"
		body := "You both confirmed. Your conversation is open."
		s.send(ctx, w.UserAID, notify.EventMatchConfirmed, subject, body)
		s.send(ctx, w.UserBID, notify.EventMatchConfirmed, subject, body)
	} else {
		s.send(ctx, w.OtherUser(userID), notify.EventPartnerConfirmed,
			"Your match confirmed interest",
			"Your match confirmed. The window is waiting on you.")
	}

	return w, nil
}

func (s *service) applyDecline(ctx context.Context, w *Window, userID int64) (*Window, error) {
	if err := s.expireIfDue(ctx, w); err != nil {
		return nil, err
	}

	declined := StatusDeclinedByB
	if userID == w.UserAID {
		declined = StatusDeclinedByA
	}
	if w.Status == declined {
		return w, nil
	}
	if w.Status.Terminal() {
		return nil, ErrWindowClosed
	}

	w.Status = declined
	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	RecordTransition(w.Status)
	log.Printf("matchwindow: user %d declined window %s", userID, w.UUID)
	return w, nil
}

func (s *service) applyExtend(ctx context.Context, w *Window, userID int64) (*Window, error) {
	if err := s.expireIfDue(ctx, w); err != nil {
		return nil, err
	}
	if w.Status.Terminal() {
		return nil, ErrWindowClosed
	}
	if w.ExtensionUsed {
		return nil, ErrAlreadyExtended
	}

	w.ExpiresAt = w.ExpiresAt.Add(s.policy.Extension)
	w.ExtensionUsed = true
	w.ExtensionRequestedBy = &userID

	if err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}

	log.Printf("matchwindow: user %d extended window %s by %s", userID, w.UUID, s.policy.Extension)
	s.send(ctx, w.OtherUser(userID), notify.EventWindowExtended,
		"Your match window was extended",
		fmt.Sprintf("Your match extended the decision window by %d hours.", int(s.policy.Extension.Hours())))

	return w, nil
}

// PendingDecisions lists windows still waiting on this user. Past-due
// rows the sweep has not reached yet are filtered out here so callers
// never act on an expired window.
func (s *service) PendingDecisions(ctx context.Context, userID int64) ([]*Window, error) {
	windows, err := s.repo.ListPendingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dropExpired(windows), nil
}

// WaitingMatches lists windows where this user confirmed and the
// partner has not decided yet
func (s *service) WaitingMatches(ctx context.Context, userID int64) ([]*Window, error) {
	windows, err := s.repo.ListWaitingForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dropExpired(windows), nil
}

// ConfirmedMatches lists mutually confirmed windows
func (s *service) ConfirmedMatches(ctx context.Context, userID int64) ([]*Window, error) {
	return s.repo.ListConfirmedForUser(ctx, userID)
}

// PendingCount is the badge count of decisions awaiting this user
func (s *service) PendingCount(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountPendingForUser(ctx, userID)
}

func (s *service) dropExpired(windows []*Window) []*Window {
	now := s.clock.Now()
	active := windows[:0]
	for _, w := range windows {
		if !w.ExpiredAt(now) {
			active = append(active, w)
		}
	}
	return active
}

// ExpireDueWindows persists the expired state for past-due windows.
// The sweep is an optimization over lazy expiry, not a correctness
// requirement; conflicts mean someone else got there first and are
// skipped.
func (s *service) ExpireDueWindows(ctx context.Context) error {
	due, err := s.repo.ListExpired(ctx, s.clock.Now(), sweepBatchSize)
	if err != nil {
		return err
	}

	expired := 0
	for _, w := range due {
		w.Status = StatusExpired
		if err := s.repo.Update(ctx, w); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return err
		}
		expired++
		RecordTransition(StatusExpired)
		s.notifyExpired(ctx, w)
	}

	if expired > 0 {
		RecordSweepExpired(expired)
		log.Printf("matchwindow: expired %d windows", expired)
	}
	return nil
}

// SendExpiryReminders nudges users who have not decided on windows
// closing within the reminder horizon
func (s *service) SendExpiryReminders(ctx context.Context) error {
	now := s.clock.Now()
	closing, err := s.repo.ListExpiringSoon(ctx, now, now.Add(s.policy.ReminderHorizon), sweepBatchSize)
	if err != nil {
		return err
	}

	for _, w := range closing {
		subject := "Your match window is closing soon"
		body := fmt.Sprintf("Only %d minutes left to decide on your match.", w.MinutesRemaining(now))
		if !w.UserAConfirmed {
			s.send(ctx, w.UserAID, notify.EventExpiringSoon, subject, body)
			RecordExpiryReminder()
		}
		if !w.UserBConfirmed {
			s.send(ctx, w.UserBID, notify.EventExpiringSoon, subject, body)
			RecordExpiryReminder()
		}
	}

	return nil
}

func (s *service) Stats(ctx context.Context) (map[Status]int64, error) {
	return s.repo.CountByStatus(ctx)
}

func (s *service) notifyExpired(ctx context.Context, w *Window) {
	subject := "Your match window expired"
	body := "The decision window for your match has closed."
	s.send(ctx, w.UserAID, notify.EventWindowExpired, subject, body)
	s.send(ctx, w.UserBID, notify.EventWindowExpired, subject, body)
}

func (s *service) send(ctx context.Context, userID int64, event notify.Event, subject, body string) {
	if s.notifier == nil {
		return
	}
	err := s.notifier.Notify(ctx, &notify.Notification{
		UserID:  userID,
		Event:   event,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		log.Printf("matchwindow: failed to notify user %d: %v", userID, err)
	}
}
