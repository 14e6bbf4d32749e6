// internal/assessment/models.go
// Question bank, responses and cached pair scores

package assessment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Sentinel errors surfaced by the assessment service
var (
	ErrQuestionNotFound = errors.New("assessment question not found")
	ErrScoreNotFound    = errors.New("compatibility score not found")
	ErrGateNotApproved  = errors.New("gate status is not approved for one or both users")
	ErrSameUser         = errors.New("cannot score a user against themselves")
	ErrConflict         = errors.New("score was modified concurrently, retry")
)

// Category is a question category. The persisted values double as the
// client-facing enumeration.
type Category string

const (
	CategoryPersonality Category = "PERSONALITY_TRAIT"
	CategoryAttachment  Category = "ATTACHMENT"
	CategoryDealbreaker Category = "DEALBREAKER"
	CategoryValues      Category = "VALUES"
	CategoryLifestyle   Category = "LIFESTYLE"
	CategoryRedFlag     Category = "RED_FLAG"

	// CategoryPolitical is a synthetic aggregate category derived from the
	// gate's economic values scores, not from question responses.
	CategoryPolitical Category = "POLITICAL"
)

// ScoredCategories are the response-backed categories the scorer runs over
var ScoredCategories = []Category{
	CategoryValues,
	CategoryLifestyle,
	CategoryPersonality,
	CategoryAttachment,
}

// Valid reports whether the category is a known question category
func (c Category) Valid() bool {
	switch c {
	case CategoryPersonality, CategoryAttachment, CategoryDealbreaker,
		CategoryValues, CategoryLifestyle, CategoryRedFlag:
		return true
	}
	return false
}

// ResponseScale describes how a question is answered
type ResponseScale string

const (
	ScaleLikert5    ResponseScale = "LIKERT_5"
	ScaleAgreement5 ResponseScale = "AGREEMENT_5"
	ScaleFrequency5 ResponseScale = "FREQUENCY_5"
	ScaleBinary     ResponseScale = "BINARY"
	ScaleFreeText   ResponseScale = "FREE_TEXT"
)

// Severity grades dealbreaker questions
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Importance is how much a mismatch on a question matters to the user.
// The persisted keys double as the weight-table keys.
type Importance string

const (
	ImportanceIrrelevant Importance = "irrelevant"
	ImportanceALittle    Importance = "a_little"
	ImportanceSomewhat   Importance = "somewhat"
	ImportanceVery       Importance = "very"
	ImportanceMandatory  Importance = "mandatory"
)

// importanceWeights is the OkCupid-style weight table
var importanceWeights = map[Importance]float64{
	ImportanceIrrelevant: 0,
	ImportanceALittle:    1,
	ImportanceSomewhat:   10,
	ImportanceVery:       50,
	ImportanceMandatory:  250,
}

// Weight returns the numeric multiplier for an importance level.
// Unknown values default to "somewhat".
func (i Importance) Weight() float64 {
	if w, ok := importanceWeights[i]; ok {
		return w
	}
	return importanceWeights[ImportanceSomewhat]
}

// Valid reports whether the importance is a known level
func (i Importance) Valid() bool {
	_, ok := importanceWeights[i]
	return ok
}

// Question is immutable reference data, created by seed or admin
type Question struct {
	ID           int64         `db:"id" json:"-"`
	UUID         uuid.UUID     `db:"uuid" json:"id"`
	ExternalID   string        `db:"external_id" json:"external_id"`
	Text         string        `db:"text" json:"text"`
	Category     Category      `db:"category" json:"category"`
	Subcategory  string        `db:"subcategory" json:"subcategory,omitempty"`
	Scale        ResponseScale `db:"response_scale" json:"response_scale"`
	Inverse      bool          `db:"inverse" json:"inverse"`
	Severity     Severity      `db:"severity" json:"severity,omitempty"`
	DisplayOrder int           `db:"display_order" json:"display_order"`
	Active       bool          `db:"active" json:"active"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// Response is a user's answer to one question, unique per (user, question).
// AcceptableAnswers is the set of partner answers the user tolerates; empty
// means "same value only".
type Response struct {
	ID            int64         `db:"id" json:"-"`
	UserID        int64         `db:"user_id" json:"user_id"`
	QuestionID    int64         `db:"question_id" json:"question_id"`
	Category      Category      `db:"category" json:"category"`
	NumericAnswer *int          `db:"numeric_answer" json:"numeric_answer,omitempty"`
	TextAnswer    string        `db:"text_answer" json:"text_answer,omitempty"`
	Importance    Importance    `db:"importance" json:"importance"`
	Acceptable    pq.Int64Array `db:"acceptable_answers" json:"acceptable_answers,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     *time.Time    `db:"updated_at" json:"updated_at,omitempty"`
}

// Accepts reports whether a partner's numeric answer falls inside this
// response's acceptable set. Missing answers cannot be compared and
// count as acceptable.
func (r *Response) Accepts(theirAnswer *int) bool {
	if r.NumericAnswer == nil || theirAnswer == nil {
		return true
	}
	if len(r.Acceptable) == 0 {
		return *theirAnswer == *r.NumericAnswer
	}
	for _, v := range r.Acceptable {
		if int(v) == *theirAnswer {
			return true
		}
	}
	return false
}

// PairScore is the cached compatibility result for a canonical pair.
// UserAID < UserBID always holds.
type PairScore struct {
	ID      int64     `db:"id" json:"-"`
	UUID    uuid.UUID `db:"uuid" json:"id"`
	UserAID int64     `db:"user_a_id" json:"user_a_id"`
	UserBID int64     `db:"user_b_id" json:"user_b_id"`

	Overall              float64  `db:"overall" json:"overall"`
	ValuesScore          *float64 `db:"values_score" json:"values_score,omitempty"`
	LifestyleScore       *float64 `db:"lifestyle_score" json:"lifestyle_score,omitempty"`
	PersonalityScore     *float64 `db:"personality_score" json:"personality_score,omitempty"`
	AttachmentScore      *float64 `db:"attachment_score" json:"attachment_score,omitempty"`
	PoliticalScore       *float64 `db:"political_score" json:"political_score,omitempty"`
	SatisfactionA        float64  `db:"satisfaction_a" json:"satisfaction_a"`
	SatisfactionB        float64  `db:"satisfaction_b" json:"satisfaction_b"`
	SharedQuestions      int      `db:"shared_questions" json:"shared_questions"`
	HasEnoughData        bool     `db:"has_enough_data" json:"has_enough_data"`
	HasMandatoryConflict bool     `db:"has_mandatory_conflict" json:"has_mandatory_conflict"`

	ConflictQuestionIDs pq.Int64Array `db:"conflict_question_ids" json:"conflict_question_ids,omitempty"`

	// Staleness tracking: when each side's profile last changed at the
	// time this score was computed
	ProfileAUpdatedAt time.Time `db:"profile_a_updated_at" json:"profile_a_updated_at"`
	ProfileBUpdatedAt time.Time `db:"profile_b_updated_at" json:"profile_b_updated_at"`
	CalculatedAt      time.Time `db:"calculated_at" json:"calculated_at"`

	Version int `db:"version" json:"-"`
}

// CategoryScores flattens the per-category scores for API responses
func (s *PairScore) CategoryScores() map[Category]float64 {
	out := make(map[Category]float64)
	put := func(c Category, v *float64) {
		if v != nil {
			out[c] = *v
		}
	}
	put(CategoryValues, s.ValuesScore)
	put(CategoryLifestyle, s.LifestyleScore)
	put(CategoryPersonality, s.PersonalityScore)
	put(CategoryAttachment, s.AttachmentScore)
	put(CategoryPolitical, s.PoliticalScore)
	return out
}

// CanonicalPair orders an unordered user pair so storage keys are unique
func CanonicalPair(userA, userB int64) (int64, int64) {
	if userA > userB {
		return userB, userA
	}
	return userA, userB
}
