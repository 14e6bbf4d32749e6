// internal/gate/service.go
// Gate service: accepts raw inputs, recomputes derived fields, and
// runs the evaluator. Derived fields are never set by callers.

package gate

import (
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"github.com/auradating/aura-backend/internal/common/clock"
)

// Service defines the gate business logic
type Service interface {
	GetOrCreate(ctx context.Context, userID int64) (*Assessment, error)
	SubmitEconomicInputs(ctx context.Context, userID int64, req *EconomicInputsRequest) (*Assessment, error)
	SubmitPoliticalValues(ctx context.Context, userID int64, req *PoliticalValuesRequest) (*Assessment, error)
	SubmitReproductiveView(ctx context.Context, userID int64, req *ReproductiveViewRequest) (*Assessment, error)
	SubmitExplanation(ctx context.Context, userID int64, explanation string) (*Assessment, error)
	SubmitVerificationDocument(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*Assessment, error)
	Evaluate(ctx context.Context, userID int64) (GateStatus, error)
	Status(ctx context.Context, userID int64) (*StatusResponse, error)

	// Admin operations
	ReviewExplanation(ctx context.Context, userID int64, approve bool, notes string) (*Assessment, error)
	ReviewVerification(ctx context.Context, userID int64, approve bool, notes string) (*Assessment, error)
	ListPendingReview(ctx context.Context, limit, offset int) ([]*Assessment, error)
	Stats(ctx context.Context) (map[GateStatus]int64, error)
}

// EconomicInputsRequest carries the raw economic-class inputs
type EconomicInputsRequest struct {
	IncomeBracket       string `json:"income_bracket" validate:"required"`
	WealthBracket       string `json:"wealth_bracket" validate:"required"`
	PrimaryIncomeSource string `json:"primary_income_source" validate:"required"`
	OwnsRentalProperty  bool   `json:"owns_rental_property"`
	EmploysOthers       bool   `json:"employs_others"`
	LivesOffCapital     bool   `json:"lives_off_capital"`
}

// PoliticalValuesRequest carries the belief-scale answers
type PoliticalValuesRequest struct {
	PoliticalOrientation     string `json:"political_orientation" validate:"required"`
	WealthRedistributionView *int   `json:"wealth_redistribution_view" validate:"omitempty,gte=1,lte=5"`
	WorkerOwnershipView      *int   `json:"worker_ownership_view" validate:"omitempty,gte=1,lte=5"`
	UniversalServicesView    *int   `json:"universal_services_view" validate:"omitempty,gte=1,lte=5"`
	HousingRightsView        *int   `json:"housing_rights_view" validate:"omitempty,gte=1,lte=5"`
	BillionaireView          *int   `json:"billionaire_view" validate:"omitempty,gte=1,lte=5"`
	MeritocracyView          *int   `json:"meritocracy_view" validate:"omitempty,gte=1,lte=5"`
	WealthContributionView   string `json:"wealth_contribution_view" validate:"required"`
}

// ReproductiveViewRequest carries the reproductive-rights position
type ReproductiveViewRequest struct {
	Applicable bool   `json:"applicable"`
	View       string `json:"view" validate:"required"`
}

// StatusResponse is the client-facing gate state
type StatusResponse struct {
	Status  GateStatus      `json:"status"`
	Reason  RejectionReason `json:"reason,omitempty"`
	Message string          `json:"message"`
}

type service struct {
	repo    Repository
	uploads UploadService
	policy  Policy
	clock   clock.Clock
}

// NewService creates a new gate service
func NewService(repo Repository, uploads UploadService, policy Policy, clk clock.Clock) Service {
	return &service{
		repo:    repo,
		uploads: uploads,
		policy:  policy,
		clock:   clk,
	}
}

func (s *service) GetOrCreate(ctx context.Context, userID int64) (*Assessment, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return a, nil
	}
	if err != ErrAssessmentNotFound {
		return nil, err
	}

	a = &Assessment{
		UserID:             userID,
		GateStatus:         StatusPendingAssessment,
		VerificationStatus: VerificationNotApplicable,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *service) SubmitEconomicInputs(ctx context.Context, userID int64, req *EconomicInputsRequest) (*Assessment, error) {
	income := IncomeBracket(req.IncomeBracket)
	wealth := WealthBracket(req.WealthBracket)
	if !income.Valid() || !wealth.Valid() {
		return nil, ErrInvalidBracket
	}

	a, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.IncomeBracket = income
	a.WealthBracket = wealth
	a.PrimaryIncomeSource = IncomeSource(req.PrimaryIncomeSource)
	a.OwnsRentalProperty = req.OwnsRentalProperty
	a.EmploysOthers = req.EmploysOthers
	a.LivesOffCapital = req.LivesOffCapital

	return s.recompute(ctx, a)
}

func (s *service) SubmitPoliticalValues(ctx context.Context, userID int64, req *PoliticalValuesRequest) (*Assessment, error) {
	a, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.PoliticalOrientation = PoliticalOrientation(req.PoliticalOrientation)
	a.WealthRedistributionView = req.WealthRedistributionView
	a.WorkerOwnershipView = req.WorkerOwnershipView
	a.UniversalServicesView = req.UniversalServicesView
	a.HousingRightsView = req.HousingRightsView
	a.BillionaireView = req.BillionaireView
	a.MeritocracyView = req.MeritocracyView
	a.WealthContributionView = WealthContributionView(req.WealthContributionView)

	return s.recompute(ctx, a)
}

func (s *service) SubmitReproductiveView(ctx context.Context, userID int64, req *ReproductiveViewRequest) (*Assessment, error) {
	a, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.VerificationApplicable = req.Applicable
	a.ReproductiveView = ReproductiveView(req.View)

	if !req.Applicable ||
		a.ReproductiveView == ViewFullAutonomy ||
		a.ReproductiveView == ViewSentienceBased {
		a.VerificationStatus = VerificationNotApplicable
	} else if a.VerificationStatus == VerificationNotApplicable || a.VerificationStatus == "" {
		a.VerificationStatus = VerificationNotVerified
	}

	return s.recompute(ctx, a)
}

func (s *service) SubmitExplanation(ctx context.Context, userID int64, explanation string) (*Assessment, error) {
	if len(explanation) < s.policy.MinExplanationLength {
		return nil, ErrExplanationTooShort
	}

	a, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	a.Explanation = explanation
	a.ExplanationReviewed = false

	return s.recompute(ctx, a)
}

func (s *service) SubmitVerificationDocument(ctx context.Context, userID int64, file multipart.File, header *multipart.FileHeader) (*Assessment, error) {
	a, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploads.UploadDocument(ctx, file, header, "verification")
	if err != nil {
		return nil, fmt.Errorf("failed to store verification document: %w", err)
	}

	a.VerificationDocURL = url
	a.VerificationStatus = VerificationPending
	RecordVerificationUpload()

	return s.recompute(ctx, a)
}

func (s *service) Evaluate(ctx context.Context, userID int64) (GateStatus, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}

	a, err = s.recompute(ctx, a)
	if err != nil {
		return "", err
	}

	return a.GateStatus, nil
}

func (s *service) Status(ctx context.Context, userID int64) (*StatusResponse, error) {
	a, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &StatusResponse{
		Status:  a.GateStatus,
		Reason:  a.RejectionReason,
		Message: a.GateStatus.Message(),
	}, nil
}

func (s *service) ReviewExplanation(ctx context.Context, userID int64, approve bool, notes string) (*Assessment, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if a.Explanation == "" {
		return nil, ErrNothingToReview
	}

	a.ReviewNotes = notes
	if approve {
		a.ExplanationReviewed = true
	} else {
		// Rejected explanation sends the user back to write a new one
		a.Explanation = ""
		a.ExplanationReviewed = false
	}
	RecordAdminReview("explanation", approve)

	return s.recompute(ctx, a)
}

func (s *service) ReviewVerification(ctx context.Context, userID int64, approve bool, notes string) (*Assessment, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if a.VerificationStatus != VerificationPending {
		return nil, ErrNothingToReview
	}

	a.ReviewNotes = notes
	if approve {
		now := s.clock.Now()
		a.VerificationStatus = VerificationVerified
		a.VerifiedAt = &now
	} else {
		a.VerificationStatus = VerificationDeclined
	}
	RecordAdminReview("verification", approve)

	return s.recompute(ctx, a)
}

func (s *service) ListPendingReview(ctx context.Context, limit, offset int) ([]*Assessment, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByStatus(ctx, StatusUnderReview, limit, offset)
}

func (s *service) Stats(ctx context.Context) (map[GateStatus]int64, error) {
	return s.repo.CountByStatus(ctx)
}

// recompute re-derives class and values score, re-runs the evaluator,
// and persists the result. The whole pipeline runs on every mutation so
// the stored decision never lags the inputs.
func (s *service) recompute(ctx context.Context, a *Assessment) (*Assessment, error) {
	a.EconomicClass = DeriveEconomicClass(a)
	a.EconomicValuesScore = ComputeEconomicValuesScore(a)
	RecordEvaluation()

	previous := a.GateStatus
	decision := Evaluate(a, s.policy)
	a.GateStatus = decision.Status
	a.RejectionReason = decision.Reason

	if a.GateStatus == StatusApproved && a.CompletedAt == nil {
		now := s.clock.Now()
		a.CompletedAt = &now
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	if previous != a.GateStatus {
		log.Printf("gate: user %d moved %s -> %s", a.UserID, previous, a.GateStatus)
		RecordTransition(string(a.GateStatus))
	}

	return a, nil
}

// LastChangedAt reports when the assessment last changed, used for
// compatibility staleness checks
func LastChangedAt(a *Assessment) time.Time {
	if a.UpdatedAt != nil {
		return *a.UpdatedAt
	}
	return a.CreatedAt
}
