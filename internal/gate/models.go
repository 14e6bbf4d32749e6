// internal/gate/models.go
// Economic/political assessment aggregate and its enumerations

package gate

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors surfaced by the gate service
var (
	ErrAssessmentNotFound  = errors.New("gate assessment not found")
	ErrInvalidBracket      = errors.New("invalid bracket value")
	ErrExplanationTooShort = errors.New("explanation does not meet the minimum length")
	ErrNothingToReview     = errors.New("no submission awaiting review")
	ErrConflict            = errors.New("assessment was modified concurrently, retry")
)

// IncomeBracket is a self-reported annual income range
type IncomeBracket string

const (
	IncomeUnder25K  IncomeBracket = "UNDER_25K"
	Income25K50K    IncomeBracket = "BRACKET_25K_50K"
	Income50K75K    IncomeBracket = "BRACKET_50K_75K"
	Income75K100K   IncomeBracket = "BRACKET_75K_100K"
	Income100K150K  IncomeBracket = "BRACKET_100K_150K"
	Income150K250K  IncomeBracket = "BRACKET_150K_250K"
	Income250K500K  IncomeBracket = "BRACKET_250K_500K"
	Income500K1M    IncomeBracket = "BRACKET_500K_1M"
	IncomeOver1M    IncomeBracket = "OVER_1M"
)

// Midpoint estimates the dollar value at the center of the bracket.
// Unknown or empty brackets count as zero so evaluation never fails
// on missing data.
func (b IncomeBracket) Midpoint() int {
	switch b {
	case IncomeUnder25K:
		return 15000
	case Income25K50K:
		return 37500
	case Income50K75K:
		return 62500
	case Income75K100K:
		return 87500
	case Income100K150K:
		return 125000
	case Income150K250K:
		return 200000
	case Income250K500K:
		return 375000
	case Income500K1M:
		return 750000
	case IncomeOver1M:
		return 1500000
	default:
		return 0
	}
}

// Valid reports whether the bracket is a known value
func (b IncomeBracket) Valid() bool {
	switch b {
	case IncomeUnder25K, Income25K50K, Income50K75K, Income75K100K,
		Income100K150K, Income150K250K, Income250K500K, Income500K1M, IncomeOver1M:
		return true
	}
	return false
}

// WealthBracket is a self-reported net worth range
type WealthBracket string

const (
	WealthNegative  WealthBracket = "NEGATIVE"
	WealthUnder10K  WealthBracket = "UNDER_10K"
	Wealth10K50K    WealthBracket = "BRACKET_10K_50K"
	Wealth50K100K   WealthBracket = "BRACKET_50K_100K"
	Wealth100K250K  WealthBracket = "BRACKET_100K_250K"
	Wealth250K500K  WealthBracket = "BRACKET_250K_500K"
	Wealth500K1M    WealthBracket = "BRACKET_500K_1M"
	Wealth1M5M      WealthBracket = "BRACKET_1M_5M"
	Wealth5M10M     WealthBracket = "BRACKET_5M_10M"
	WealthOver10M   WealthBracket = "OVER_10M"
)

// Midpoint estimates the dollar value at the center of the bracket
func (b WealthBracket) Midpoint() int {
	switch b {
	case WealthNegative:
		return -10000
	case WealthUnder10K:
		return 5000
	case Wealth10K50K:
		return 30000
	case Wealth50K100K:
		return 75000
	case Wealth100K250K:
		return 175000
	case Wealth250K500K:
		return 375000
	case Wealth500K1M:
		return 750000
	case Wealth1M5M:
		return 3000000
	case Wealth5M10M:
		return 7500000
	case WealthOver10M:
		return 15000000
	default:
		return 0
	}
}

// Valid reports whether the bracket is a known value
func (b WealthBracket) Valid() bool {
	switch b {
	case WealthNegative, WealthUnder10K, Wealth10K50K, Wealth50K100K,
		Wealth100K250K, Wealth250K500K, Wealth500K1M, Wealth1M5M,
		Wealth5M10M, WealthOver10M:
		return true
	}
	return false
}

// IncomeSource is the primary source of a user's income
type IncomeSource string

const (
	SourceWagesSalary      IncomeSource = "WAGES_SALARY"
	SourceSelfEmployedSolo IncomeSource = "SELF_EMPLOYED_SOLO"
	SourceBusinessOwner    IncomeSource = "BUSINESS_OWNER"
	SourceInvestments      IncomeSource = "INVESTMENTS_DIVIDENDS"
	SourceRentalIncome     IncomeSource = "RENTAL_INCOME"
	SourceInheritance      IncomeSource = "INHERITANCE_TRUST"
	SourceMultiple         IncomeSource = "MULTIPLE_SOURCES"
	SourceUnemployed       IncomeSource = "UNEMPLOYED_STUDENT"
	SourceRetired          IncomeSource = "RETIRED"
)

// EconomicClass is derived, never self-reported
type EconomicClass string

const (
	ClassWorking      EconomicClass = "WORKING_CLASS"
	ClassProfessional EconomicClass = "PROFESSIONAL_CLASS"
	ClassSmallBiz     EconomicClass = "SMALL_BUSINESS_OWNER"
	ClassPetiteBourg  EconomicClass = "PETITE_BOURGEOISIE"
	ClassCapital      EconomicClass = "CAPITAL_CLASS"
)

// PoliticalOrientation is self-reported
type PoliticalOrientation string

const (
	OrientationSocialist    PoliticalOrientation = "SOCIALIST"
	OrientationProgressive  PoliticalOrientation = "PROGRESSIVE"
	OrientationLiberal      PoliticalOrientation = "LIBERAL"
	OrientationModerate     PoliticalOrientation = "MODERATE"
	OrientationConservative PoliticalOrientation = "CONSERVATIVE"
	OrientationLibertarian  PoliticalOrientation = "LIBERTARIAN"
	OrientationApolitical   PoliticalOrientation = "APOLITICAL"
	OrientationOther        PoliticalOrientation = "OTHER"
)

// WealthContributionView answers the key gating question: do the
// wealthy contribute enough to society?
type WealthContributionView string

const (
	ContributeEnough    WealthContributionView = "CONTRIBUTE_ENOUGH"
	ContributeTooLittle WealthContributionView = "CONTRIBUTE_TOO_LITTLE"
	ContributeTooMuch   WealthContributionView = "CONTRIBUTE_TOO_MUCH"
	ContributeNotSure   WealthContributionView = "NOT_SURE"
	SystemIsFine        WealthContributionView = "SYSTEM_IS_FINE"
)

// ReproductiveView is the self-reported reproductive rights position
type ReproductiveView string

const (
	ViewFullAutonomy     ReproductiveView = "FULL_BODILY_AUTONOMY"
	ViewSentienceBased   ReproductiveView = "SENTIENCE_BASED"
	ViewSomeRestrictions ReproductiveView = "SOME_RESTRICTIONS_OK"
	ViewOpposed          ReproductiveView = "FORCED_BIRTH"
	ViewUndecided        ReproductiveView = "UNDECIDED"
	ViewPreferNotToSay   ReproductiveView = "PREFER_NOT_TO_SAY"
)

// VerificationStatus tracks the reproductive-view document check
type VerificationStatus string

const (
	VerificationNotApplicable VerificationStatus = "NOT_APPLICABLE"
	VerificationNotVerified   VerificationStatus = "NOT_VERIFIED"
	VerificationPending       VerificationStatus = "VERIFICATION_PENDING"
	VerificationVerified      VerificationStatus = "VERIFIED"
	VerificationDeclined      VerificationStatus = "DECLINED"
)

// GateStatus is the eligibility state that gates matching
type GateStatus string

const (
	StatusPendingAssessment   GateStatus = "PENDING_ASSESSMENT"
	StatusApproved            GateStatus = "APPROVED"
	StatusPendingExplanation  GateStatus = "PENDING_EXPLANATION"
	StatusPendingVerification GateStatus = "PENDING_VERIFICATION"
	StatusRejected            GateStatus = "REJECTED"
	StatusRedirectElsewhere   GateStatus = "REDIRECT_ELSEWHERE"
	StatusUnderReview         GateStatus = "UNDER_REVIEW"
)

// Terminal reports whether the status can never change through
// re-evaluation alone
func (s GateStatus) Terminal() bool {
	return s == StatusRejected || s == StatusRedirectElsewhere
}

// Message returns the client-facing copy for a status
func (s GateStatus) Message() string {
	switch s {
	case StatusPendingAssessment:
		return "Complete your values assessment to start matching."
	case StatusApproved:
		return "You're all set. Welcome to Aura."
	case StatusPendingExplanation:
		return "Tell us more about your views before we can continue (at least a short paragraph)."
	case StatusPendingVerification:
		return "We need a verification document before you can match."
	case StatusRejected:
		return "Aura isn't the right platform for you."
	case StatusRedirectElsewhere:
		return "You may be happier on a platform built for your circles."
	case StatusUnderReview:
		return "Your submission is being reviewed. We'll let you know soon."
	default:
		return ""
	}
}

// RejectionReason records why a gate decided against a user
type RejectionReason string

const (
	ReasonCapitalConservative   RejectionReason = "CAPITAL_CLASS_CONSERVATIVE"
	ReasonUnexplained           RejectionReason = "UNEXPLAINED_CONSERVATIVE"
	ReasonUnverifiedView        RejectionReason = "UNVERIFIED_REPRODUCTIVE_VIEW"
	ReasonAboveMedianDefender   RejectionReason = "ABOVE_MEDIAN_WEALTH_DEFENDER"
	ReasonPolicyViolation       RejectionReason = "POLICY_VIOLATION"
)

// Assessment is the one-per-user economic/political assessment aggregate
type Assessment struct {
	ID     int64     `db:"id" json:"-"`
	UUID   uuid.UUID `db:"uuid" json:"id"`
	UserID int64     `db:"user_id" json:"user_id"`

	// Raw economic inputs
	IncomeBracket       IncomeBracket `db:"income_bracket" json:"income_bracket,omitempty"`
	WealthBracket       WealthBracket `db:"wealth_bracket" json:"wealth_bracket,omitempty"`
	PrimaryIncomeSource IncomeSource  `db:"primary_income_source" json:"primary_income_source,omitempty"`
	OwnsRentalProperty  bool          `db:"owns_rental_property" json:"owns_rental_property"`
	EmploysOthers       bool          `db:"employs_others" json:"employs_others"`
	LivesOffCapital     bool          `db:"lives_off_capital" json:"lives_off_capital"`

	// Derived, set only by recompute
	EconomicClass       EconomicClass `db:"economic_class" json:"economic_class,omitempty"`
	EconomicValuesScore *float64      `db:"economic_values_score" json:"economic_values_score,omitempty"`

	// Political inputs
	PoliticalOrientation PoliticalOrientation `db:"political_orientation" json:"political_orientation,omitempty"`

	// Belief answers, 1-5 scale
	WealthRedistributionView *int `db:"wealth_redistribution_view" json:"wealth_redistribution_view,omitempty"`
	WorkerOwnershipView      *int `db:"worker_ownership_view" json:"worker_ownership_view,omitempty"`
	UniversalServicesView    *int `db:"universal_services_view" json:"universal_services_view,omitempty"`
	HousingRightsView        *int `db:"housing_rights_view" json:"housing_rights_view,omitempty"`
	BillionaireView          *int `db:"billionaire_view" json:"billionaire_view,omitempty"`
	MeritocracyView          *int `db:"meritocracy_view" json:"meritocracy_view,omitempty"`

	WealthContributionView WealthContributionView `db:"wealth_contribution_view" json:"wealth_contribution_view,omitempty"`

	// Reproductive-view verification; applies only when the user's
	// self-reported demographic flag says so
	VerificationApplicable bool               `db:"verification_applicable" json:"verification_applicable"`
	ReproductiveView       ReproductiveView   `db:"reproductive_view" json:"reproductive_view,omitempty"`
	VerificationStatus     VerificationStatus `db:"verification_status" json:"verification_status,omitempty"`
	VerificationDocURL     string             `db:"verification_doc_url" json:"-"`
	VerifiedAt             *time.Time         `db:"verified_at" json:"verified_at,omitempty"`

	// Explanation flow
	Explanation         string `db:"explanation" json:"-"`
	ExplanationReviewed bool   `db:"explanation_reviewed" json:"explanation_reviewed"`
	ReviewNotes         string `db:"review_notes" json:"-"`

	// Gate result
	GateStatus      GateStatus      `db:"gate_status" json:"gate_status"`
	RejectionReason RejectionReason `db:"rejection_reason" json:"rejection_reason,omitempty"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}
