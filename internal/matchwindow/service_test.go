package matchwindow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/auradating/aura-backend/internal/assessment"
	"github.com/auradating/aura-backend/internal/common/clock"
	"github.com/auradating/aura-backend/internal/notify"
)

// fakeRepo is an in-memory repository with real optimistic locking:
// it hands out copies and rejects updates carrying a stale version.
type fakeRepo struct {
	windows      map[uuid.UUID]*Window
	nextID       int64
	conflictOnce bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{windows: make(map[uuid.UUID]*Window)}
}

func (r *fakeRepo) Create(ctx context.Context, w *Window) error {
	if w.UUID == uuid.Nil {
		w.UUID = uuid.New()
	}
	for _, existing := range r.windows {
		if existing.UserAID == w.UserAID && existing.UserBID == w.UserBID {
			return ErrWindowExists
		}
	}
	r.nextID++
	w.ID = r.nextID
	w.Version = 1
	stored := *w
	r.windows[w.UUID] = &stored
	return nil
}

func (r *fakeRepo) GetByUUID(ctx context.Context, id uuid.UUID) (*Window, error) {
	stored, ok := r.windows[id]
	if !ok {
		return nil, ErrWindowNotFound
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeRepo) ExistsActive(ctx context.Context, userA, userB int64) (bool, error) {
	for _, w := range r.windows {
		if w.UserAID == userA && w.UserBID == userB && w.Status.Pending() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) Update(ctx context.Context, w *Window) error {
	if r.conflictOnce {
		r.conflictOnce = false
		return ErrConflict
	}
	stored, ok := r.windows[w.UUID]
	if !ok || stored.Version != w.Version {
		return ErrConflict
	}
	w.Version++
	copied := *w
	r.windows[w.UUID] = &copied
	return nil
}

func (r *fakeRepo) ListPendingForUser(ctx context.Context, userID int64) ([]*Window, error) {
	out := []*Window{}
	for _, w := range r.windows {
		if w.IsParticipant(userID) && w.Status.Pending() && !w.HasConfirmed(userID) {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListWaitingForUser(ctx context.Context, userID int64) ([]*Window, error) {
	out := []*Window{}
	for _, w := range r.windows {
		if w.IsParticipant(userID) && w.Status.Pending() && w.HasConfirmed(userID) {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListConfirmedForUser(ctx context.Context, userID int64) ([]*Window, error) {
	out := []*Window{}
	for _, w := range r.windows {
		if w.IsParticipant(userID) && w.Status == StatusConfirmed {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountPendingForUser(ctx context.Context, userID int64) (int64, error) {
	pending, err := r.ListPendingForUser(ctx, userID)
	return int64(len(pending)), err
}

func (r *fakeRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*Window, error) {
	out := []*Window{}
	for _, w := range r.windows {
		if w.Status.Pending() && now.After(w.ExpiresAt) {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListExpiringSoon(ctx context.Context, from, until time.Time, limit int) ([]*Window, error) {
	out := []*Window{}
	for _, w := range r.windows {
		if w.Status.Pending() && !w.ExpiresAt.Before(from) && w.ExpiresAt.Before(until) {
			copied := *w
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	counts := make(map[Status]int64)
	for _, w := range r.windows {
		counts[w.Status]++
	}
	return counts, nil
}

// fakeConversations counts creations and is idempotent per pair
type fakeConversations struct {
	created map[string]int64
	calls   int
	nextID  int64
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{created: make(map[string]int64)}
}

func (c *fakeConversations) CreateConversation(ctx context.Context, userAID, userBID int64) (int64, error) {
	c.calls++
	key := fmt.Sprintf("%d:%d", userAID, userBID)
	if id, ok := c.created[key]; ok {
		return id, nil
	}
	c.nextID++
	c.created[key] = c.nextID
	return c.nextID, nil
}

// stubScores serves a canned compatibility score
type stubScores struct {
	assessment.Service
	score *assessment.PairScore
	err   error
}

func (s *stubScores) ComputeCompatibility(ctx context.Context, userA, userB int64) (*assessment.PairScore, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.score, nil
}

type fixture struct {
	service       Service
	repo          *fakeRepo
	conversations *fakeConversations
	notifier      *notify.MockService
	clock         *clock.Fixed
	scores        *stubScores
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:          newFakeRepo(),
		conversations: newFakeConversations(),
		notifier:      notify.NewMockService(),
		clock:         &clock.Fixed{Current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		scores: &stubScores{score: &assessment.PairScore{
			UserAID: 1,
			UserBID: 2,
			Overall: 87.5,
		}},
	}
	f.service = NewService(f.repo, f.scores, f.conversations, f.notifier, f.clock, Policy{
		InitialWindow:   24 * time.Hour,
		Extension:       12 * time.Hour,
		ReminderHorizon: 4 * time.Hour,
	})
	return f
}

func (f *fixture) seedWindow(t *testing.T) *Window {
	t.Helper()
	window, err := f.service.Create(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("create window: %v", err)
	}
	f.notifier.Sent = nil
	return window
}

func (f *fixture) sentEvents() []notify.Event {
	events := []notify.Event{}
	for _, n := range f.notifier.Sent {
		events = append(events, n.Event)
	}
	return events
}

func TestCreateSnapshotsCompatibility(t *testing.T) {
	f := newFixture(t)

	window, err := f.service.Create(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("create window: %v", err)
	}

	if window.UserAID != 1 || window.UserBID != 2 {
		t.Errorf("pair = (%d, %d), want canonical (1, 2)", window.UserAID, window.UserBID)
	}
	if window.Status != StatusPendingBoth {
		t.Errorf("status = %s, want %s", window.Status, StatusPendingBoth)
	}
	if window.MatchPercentage != 87.5 {
		t.Errorf("match percentage = %v, want 87.5", window.MatchPercentage)
	}
	wantExpiry := f.clock.Now().Add(24 * time.Hour)
	if !window.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiresAt = %v, want %v", window.ExpiresAt, wantExpiry)
	}
	if len(f.notifier.Sent) != 2 {
		t.Fatalf("sent %d notifications, want 2", len(f.notifier.Sent))
	}
	for _, n := range f.notifier.Sent {
		if n.Event != notify.EventWindowOpened {
			t.Errorf("event = %s, want %s", n.Event, notify.EventWindowOpened)
		}
	}

	if _, err := f.service.Create(context.Background(), 1, 2); !errors.Is(err, ErrWindowExists) {
		t.Errorf("second create err = %v, want ErrWindowExists", err)
	}
}

func TestCreateRequiresApprovedGates(t *testing.T) {
	f := newFixture(t)
	f.scores.err = assessment.ErrGateNotApproved

	if _, err := f.service.Create(context.Background(), 1, 2); !errors.Is(err, assessment.ErrGateNotApproved) {
		t.Errorf("err = %v, want ErrGateNotApproved", err)
	}
}

func TestConfirmBySingleUserMovesToPendingPartner(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	updated, err := f.service.Confirm(context.Background(), window.UUID, 1)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if updated.Status != StatusPendingUserB {
		t.Errorf("status = %s, want %s", updated.Status, StatusPendingUserB)
	}
	if !updated.UserAConfirmed || updated.UserAConfirmedAt == nil {
		t.Error("user A confirmation flag and timestamp should be set")
	}
	if updated.UserBConfirmed {
		t.Error("user B should not be confirmed yet")
	}
	if f.conversations.calls != 0 {
		t.Error("no conversation should exist before mutual confirmation")
	}
	if len(f.notifier.Sent) != 1 || f.notifier.Sent[0].UserID != 2 ||
		f.notifier.Sent[0].Event != notify.EventPartnerConfirmed {
		t.Errorf("want one PARTNER_CONFIRMED notification to user 2, got %+v", f.notifier.Sent)
	}
}

func TestMutualConfirmCreatesConversationOnce(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	if _, err := f.service.Confirm(context.Background(), window.UUID, 1); err != nil {
		t.Fatalf("confirm A: %v", err)
	}
	updated, err := f.service.Confirm(context.Background(), window.UUID, 2)
	if err != nil {
		t.Fatalf("confirm B: %v", err)
	}

	if updated.Status != StatusConfirmed {
		t.Errorf("status = %s, want %s", updated.Status, StatusConfirmed)
	}
	if updated.ConversationID == nil {
		t.Fatal("conversation should be linked")
	}
	if f.conversations.calls != 1 {
		t.Errorf("conversation created %d times, want 1", f.conversations.calls)
	}

	// Confirming again must not open a second conversation
	again, err := f.service.Confirm(context.Background(), window.UUID, 1)
	if err != nil {
		t.Fatalf("repeat confirm: %v", err)
	}
	if f.conversations.calls != 1 {
		t.Errorf("conversation created %d times after repeat confirm, want 1", f.conversations.calls)
	}
	if *again.ConversationID != *updated.ConversationID {
		t.Error("repeat confirm changed the conversation reference")
	}
}

func TestConfirmRetriesOnceOnConflict(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)
	f.repo.conflictOnce = true

	updated, err := f.service.Confirm(context.Background(), window.UUID, 1)
	if err != nil {
		t.Fatalf("confirm should survive one conflict: %v", err)
	}
	if updated.Status != StatusPendingUserB {
		t.Errorf("status = %s, want %s", updated.Status, StatusPendingUserB)
	}
}

func TestConfirmAfterExpiryIsRejected(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	f.clock.Advance(25 * time.Hour)

	if _, err := f.service.Confirm(context.Background(), window.UUID, 1); !errors.Is(err, ErrWindowExpired) {
		t.Fatalf("err = %v, want ErrWindowExpired", err)
	}

	stored, err := f.repo.GetByUUID(context.Background(), window.UUID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != StatusExpired {
		t.Errorf("stored status = %s, want %s", stored.Status, StatusExpired)
	}
	for _, event := range f.sentEvents() {
		if event != notify.EventWindowExpired {
			t.Errorf("unexpected event %s after expiry", event)
		}
	}
}

func TestExtendOnceThenRejected(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)
	originalExpiry := window.ExpiresAt

	extended, err := f.service.Extend(context.Background(), window.UUID, 1)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}

	wantExpiry := originalExpiry.Add(12 * time.Hour)
	if !extended.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiresAt = %v, want %v", extended.ExpiresAt, wantExpiry)
	}
	if !extended.ExtensionUsed {
		t.Error("extensionUsed should be set")
	}
	if extended.ExtensionRequestedBy == nil || *extended.ExtensionRequestedBy != 1 {
		t.Error("extension requester should be recorded")
	}

	if _, err := f.service.Extend(context.Background(), window.UUID, 2); !errors.Is(err, ErrAlreadyExtended) {
		t.Fatalf("second extend err = %v, want ErrAlreadyExtended", err)
	}

	stored, _ := f.repo.GetByUUID(context.Background(), window.UUID)
	if !stored.ExpiresAt.Equal(wantExpiry) {
		t.Errorf("expiresAt changed by failed extension: %v, want %v", stored.ExpiresAt, wantExpiry)
	}
}

func TestExtensionKeepsWindowAlivePastOriginalDeadline(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	if _, err := f.service.Extend(context.Background(), window.UUID, 2); err != nil {
		t.Fatalf("extend: %v", err)
	}

	// Past the original 24h deadline but inside the extension
	f.clock.Advance(30 * time.Hour)

	updated, err := f.service.Confirm(context.Background(), window.UUID, 1)
	if err != nil {
		t.Fatalf("confirm inside extension: %v", err)
	}
	if updated.Status != StatusPendingUserB {
		t.Errorf("status = %s, want %s", updated.Status, StatusPendingUserB)
	}
}

func TestDeclineIsTerminal(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	declined, err := f.service.Decline(context.Background(), window.UUID, 2)
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if declined.Status != StatusDeclinedByB {
		t.Errorf("status = %s, want %s", declined.Status, StatusDeclinedByB)
	}

	if _, err := f.service.Confirm(context.Background(), window.UUID, 1); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("confirm after decline err = %v, want ErrWindowClosed", err)
	}
	if _, err := f.service.Extend(context.Background(), window.UUID, 1); !errors.Is(err, ErrWindowClosed) {
		t.Errorf("extend after decline err = %v, want ErrWindowClosed", err)
	}
	if f.conversations.calls != 0 {
		t.Error("declined window must never create a conversation")
	}
}

func TestNonParticipantIsRejected(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	if _, err := f.service.Confirm(context.Background(), window.UUID, 99); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("err = %v, want ErrNotParticipant", err)
	}
}

func TestExpireDueWindowsSweep(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	f.clock.Advance(25 * time.Hour)

	if err := f.service.ExpireDueWindows(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	stored, _ := f.repo.GetByUUID(context.Background(), window.UUID)
	if stored.Status != StatusExpired {
		t.Errorf("status = %s, want %s", stored.Status, StatusExpired)
	}
	if len(f.notifier.Sent) != 2 {
		t.Errorf("sent %d notifications, want 2", len(f.notifier.Sent))
	}
}

func TestExpiryRemindersTargetUndecidedUsers(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	if _, err := f.service.Confirm(context.Background(), window.UUID, 1); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	f.notifier.Sent = nil

	// 2 hours left, inside the 4-hour reminder horizon
	f.clock.Advance(22 * time.Hour)

	if err := f.service.SendExpiryReminders(context.Background()); err != nil {
		t.Fatalf("reminders: %v", err)
	}

	if len(f.notifier.Sent) != 1 {
		t.Fatalf("sent %d reminders, want 1", len(f.notifier.Sent))
	}
	if f.notifier.Sent[0].UserID != 2 || f.notifier.Sent[0].Event != notify.EventExpiringSoon {
		t.Errorf("reminder = %+v, want EXPIRING_SOON for user 2", f.notifier.Sent[0])
	}
}

func TestPendingAndWaitingQueries(t *testing.T) {
	f := newFixture(t)
	window := f.seedWindow(t)

	if _, err := f.service.Confirm(context.Background(), window.UUID, 1); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	pending, err := f.service.PendingDecisions(context.Background(), 2)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("user 2 pending = %d, want 1", len(pending))
	}

	waiting, err := f.service.WaitingMatches(context.Background(), 1)
	if err != nil {
		t.Fatalf("waiting: %v", err)
	}
	if len(waiting) != 1 {
		t.Errorf("user 1 waiting = %d, want 1", len(waiting))
	}

	count, err := f.service.PendingCount(context.Background(), 1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("user 1 pending count = %d, want 0 after confirming", count)
	}

	// Past-due windows vanish from the lists even before the sweep runs
	f.clock.Advance(25 * time.Hour)
	pending, err = f.service.PendingDecisions(context.Background(), 2)
	if err != nil {
		t.Fatalf("pending after expiry: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("user 2 pending = %d after deadline, want 0", len(pending))
	}
}
