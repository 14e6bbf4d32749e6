// internal/assessment/service.go
// Assessment business logic: response submission, progress, and the
// gate-checked compatibility computation with its cache.

package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/auradating/aura-backend/internal/common/clock"
)

// GateFacts is what the aggregator needs to know about one user's gate
type GateFacts struct {
	Approved            bool
	EconomicValuesScore *float64
	ChangedAt           time.Time
}

// GateReader exposes gate facts without coupling scoring to the gate's
// internals
type GateReader interface {
	GateFacts(ctx context.Context, userID int64) (*GateFacts, error)
}

// Service defines the assessment business logic
type Service interface {
	SubmitResponses(ctx context.Context, userID int64, responses []*ResponseSubmission) (*SubmitResult, error)
	GetQuestions(ctx context.Context, userID int64, category Category) (*QuestionList, error)
	GetProgress(ctx context.Context, userID int64) (*Progress, error)
	ResetResponses(ctx context.Context, userID int64, category Category) error
	ComputeCompatibility(ctx context.Context, userA, userB int64) (*PairScore, error)
	QuestionStats(ctx context.Context) (map[Category]int64, error)
}

// ResponseSubmission is one answer in a submit batch
type ResponseSubmission struct {
	QuestionID        string  `json:"question_id" validate:"required"`
	NumericAnswer     *int    `json:"numeric_answer"`
	TextAnswer        string  `json:"text_answer"`
	Importance        string  `json:"importance" validate:"required"`
	AcceptableAnswers []int64 `json:"acceptable_answers"`
}

// SubmitResult reports what a submit batch saved
type SubmitResult struct {
	Saved   int      `json:"saved"`
	Skipped []string `json:"skipped,omitempty"`
}

// QuestionList is a category's questions with the user's answered set
type QuestionList struct {
	Category  Category    `json:"category"`
	Questions []*Question `json:"questions"`
	Answered  int         `json:"answered"`
	Total     int         `json:"total"`
}

// Progress summarizes per-category completion
type Progress struct {
	Categories map[Category]*CategoryProgress `json:"categories"`
}

// CategoryProgress is one category's completion state
type CategoryProgress struct {
	Total      int64   `json:"total"`
	Answered   int64   `json:"answered"`
	Percentage float64 `json:"percentage"`
}

type service struct {
	repo     Repository
	gates    GateReader
	cache    *redis.Client
	clock    clock.Clock
	weights  Weights
	cap      float64
	minShare int
	cacheTTL time.Duration
}

// NewService creates a new assessment service. The redis client may be
// nil; caching then degrades to the database-backed score table alone.
func NewService(repo Repository, gates GateReader, cache *redis.Client, clk clock.Clock,
	weights Weights, dealbreakerCap float64, minShared int, cacheTTL time.Duration) Service {
	return &service{
		repo:     repo,
		gates:    gates,
		cache:    cache,
		clock:    clk,
		weights:  weights,
		cap:      dealbreakerCap,
		minShare: minShared,
		cacheTTL: cacheTTL,
	}
}

func (s *service) SubmitResponses(ctx context.Context, userID int64, submissions []*ResponseSubmission) (*SubmitResult, error) {
	result := &SubmitResult{}

	for _, sub := range submissions {
		question, err := s.repo.GetQuestionByExternalID(ctx, sub.QuestionID)
		if err != nil {
			if errors.Is(err, ErrQuestionNotFound) {
				log.Printf("assessment: question not found: %s", sub.QuestionID)
				result.Skipped = append(result.Skipped, sub.QuestionID)
				continue
			}
			return nil, err
		}

		importance := Importance(sub.Importance)
		if !importance.Valid() {
			result.Skipped = append(result.Skipped, sub.QuestionID)
			continue
		}

		resp := &Response{
			UserID:     userID,
			QuestionID: question.ID,
			Category:   question.Category,
			Importance: importance,
			Acceptable: sub.AcceptableAnswers,
		}
		if question.Scale == ScaleFreeText {
			resp.TextAnswer = sub.TextAnswer
		} else {
			resp.NumericAnswer = sub.NumericAnswer
		}

		if err := s.repo.UpsertResponse(ctx, resp); err != nil {
			return nil, err
		}
		result.Saved++
	}

	RecordResponsesSubmitted(result.Saved)
	return result, nil
}

func (s *service) GetQuestions(ctx context.Context, userID int64, category Category) (*QuestionList, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category: %s", category)
	}

	questions, err := s.repo.ListQuestions(ctx, category)
	if err != nil {
		return nil, err
	}

	counts, err := s.repo.CountResponsesByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &QuestionList{
		Category:  category,
		Questions: questions,
		Answered:  int(counts[category]),
		Total:     len(questions),
	}, nil
}

func (s *service) GetProgress(ctx context.Context, userID int64) (*Progress, error) {
	totals, err := s.repo.CountQuestionsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	answered, err := s.repo.CountResponsesByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress := &Progress{Categories: make(map[Category]*CategoryProgress)}
	for category, total := range totals {
		cp := &CategoryProgress{
			Total:    total,
			Answered: answered[category],
		}
		if total > 0 {
			cp.Percentage = float64(cp.Answered) * 100 / float64(total)
		}
		progress.Categories[category] = cp
	}

	return progress, nil
}

func (s *service) ResetResponses(ctx context.Context, userID int64, category Category) error {
	if category != "" && !category.Valid() {
		return fmt.Errorf("unknown category: %s", category)
	}
	return s.repo.DeleteResponses(ctx, userID, category)
}

func (s *service) QuestionStats(ctx context.Context) (map[Category]int64, error) {
	return s.repo.CountQuestionsByCategory(ctx)
}

// ComputeCompatibility returns the pair's score, recomputing when
// either side's profile changed after the cached calculation. Gating
// is a hard precondition: both users must be approved.
func (s *service) ComputeCompatibility(ctx context.Context, userA, userB int64) (*PairScore, error) {
	if userA == userB {
		return nil, ErrSameUser
	}
	a, b := CanonicalPair(userA, userB)

	factsA, err := s.gates.GateFacts(ctx, a)
	if err != nil {
		return nil, err
	}
	factsB, err := s.gates.GateFacts(ctx, b)
	if err != nil {
		return nil, err
	}
	if !factsA.Approved || !factsB.Approved {
		return nil, ErrGateNotApproved
	}

	changedA, err := s.lastProfileChange(ctx, a, factsA)
	if err != nil {
		return nil, err
	}
	changedB, err := s.lastProfileChange(ctx, b, factsB)
	if err != nil {
		return nil, err
	}

	// Fast path: redis copy of the stored score, if still fresh
	if cached := s.cacheGet(ctx, a, b); cached != nil && s.fresh(cached, changedA, changedB) {
		RecordCacheHit()
		return cached, nil
	}

	stored, err := s.repo.GetScore(ctx, a, b)
	if err != nil && !errors.Is(err, ErrScoreNotFound) {
		return nil, err
	}
	if stored != nil && s.fresh(stored, changedA, changedB) {
		s.cacheSet(ctx, stored)
		return stored, nil
	}

	score, err := s.recompute(ctx, a, b, factsA, factsB, changedA, changedB, stored)
	if err != nil {
		if !errors.Is(err, ErrConflict) {
			return nil, err
		}
		// Concurrent recompute won the race: retry once against the
		// committed row, then surface the conflict as retryable.
		stored, gerr := s.repo.GetScore(ctx, a, b)
		if gerr != nil {
			return nil, gerr
		}
		if s.fresh(stored, changedA, changedB) {
			return stored, nil
		}
		score, err = s.recompute(ctx, a, b, factsA, factsB, changedA, changedB, stored)
		if err != nil {
			return nil, err
		}
	}

	s.cacheSet(ctx, score)
	return score, nil
}

func (s *service) recompute(ctx context.Context, a, b int64, factsA, factsB *GateFacts,
	changedA, changedB time.Time, stored *PairScore) (*PairScore, error) {

	responsesA, err := s.repo.ListResponsesByUser(ctx, a)
	if err != nil {
		return nil, err
	}
	responsesB, err := s.repo.ListResponsesByUser(ctx, b)
	if err != nil {
		return nil, err
	}

	result := Aggregate(AggregateInput{
		ResponsesA:         responsesA,
		ResponsesB:         responsesB,
		EconomicValuesA:    factsA.EconomicValuesScore,
		EconomicValuesB:    factsB.EconomicValuesScore,
		Weights:            s.weights,
		DealbreakerCap:     s.cap,
		MinSharedQuestions: s.minShare,
	})

	score := &PairScore{
		UserAID:              a,
		UserBID:              b,
		Overall:              result.Overall,
		SatisfactionA:        result.SatisfactionA,
		SatisfactionB:        result.SatisfactionB,
		SharedQuestions:      result.SharedQuestions,
		HasEnoughData:        result.HasEnoughData,
		HasMandatoryConflict: result.HasMandatoryConflict,
		ConflictQuestionIDs:  result.ConflictQuestionIDs,
		ProfileAUpdatedAt:    changedA,
		ProfileBUpdatedAt:    changedB,
		CalculatedAt:         s.clock.Now(),
	}
	assignCategory := func(dst **float64, c Category) {
		if v, ok := result.Categories[c]; ok {
			val := v
			*dst = &val
		}
	}
	assignCategory(&score.ValuesScore, CategoryValues)
	assignCategory(&score.LifestyleScore, CategoryLifestyle)
	assignCategory(&score.PersonalityScore, CategoryPersonality)
	assignCategory(&score.AttachmentScore, CategoryAttachment)
	assignCategory(&score.PoliticalScore, CategoryPolitical)

	if stored == nil {
		err = s.repo.InsertScore(ctx, score)
	} else {
		score.ID = stored.ID
		score.UUID = stored.UUID
		score.Version = stored.Version
		err = s.repo.UpdateScore(ctx, score)
	}
	if err != nil {
		return nil, err
	}

	RecordComputation(score.Overall)
	return score, nil
}

// lastProfileChange is the later of the user's last response change and
// their gate assessment change
func (s *service) lastProfileChange(ctx context.Context, userID int64, facts *GateFacts) (time.Time, error) {
	responseChange, err := s.repo.LastResponseChange(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if facts.ChangedAt.After(responseChange) {
		return facts.ChangedAt, nil
	}
	return responseChange, nil
}

func (s *service) fresh(score *PairScore, changedA, changedB time.Time) bool {
	return !changedA.After(score.ProfileAUpdatedAt) && !changedB.After(score.ProfileBUpdatedAt)
}

func cacheKey(a, b int64) string {
	return fmt.Sprintf("compat:%d:%d", a, b)
}

func (s *service) cacheGet(ctx context.Context, a, b int64) *PairScore {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, cacheKey(a, b)).Bytes()
	if err != nil {
		return nil
	}
	var score PairScore
	if err := json.Unmarshal(data, &score); err != nil {
		return nil
	}
	return &score
}

func (s *service) cacheSet(ctx context.Context, score *PairScore) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(score)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(score.UserAID, score.UserBID), data, s.cacheTTL).Err(); err != nil {
		log.Printf("assessment: failed to cache score: %v", err)
	}
}
