package gate

import (
	"strings"
	"testing"
)

func longExplanation() string {
	return strings.Repeat("my circumstances are complicated ", 5)
}

func TestEvaluateCascade(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name       string
		a          Assessment
		wantStatus GateStatus
		wantReason RejectionReason
	}{
		{
			name:       "missing inputs pends assessment",
			a:          Assessment{},
			wantStatus: StatusPendingAssessment,
		},
		{
			name: "missing orientation pends assessment",
			a: Assessment{
				EconomicClass: ClassWorking,
			},
			wantStatus: StatusPendingAssessment,
		},
		{
			name: "above median defender is redirected",
			a: Assessment{
				EconomicClass:          ClassProfessional,
				PoliticalOrientation:   OrientationModerate,
				WealthContributionView: ContributeEnough,
				IncomeBracket:          Income100K150K,
				WealthBracket:          Wealth250K500K,
			},
			wantStatus: StatusRedirectElsewhere,
			wantReason: ReasonAboveMedianDefender,
		},
		{
			name: "below median defender without explanation pends",
			a: Assessment{
				EconomicClass:          ClassWorking,
				PoliticalOrientation:   OrientationModerate,
				WealthContributionView: SystemIsFine,
				IncomeBracket:          Income25K50K,
				WealthBracket:          WealthUnder10K,
			},
			wantStatus: StatusPendingExplanation,
		},
		{
			name: "contribute-too-little view skips the wealth gate",
			a: Assessment{
				EconomicClass:          ClassProfessional,
				PoliticalOrientation:   OrientationProgressive,
				WealthContributionView: ContributeTooLittle,
				IncomeBracket:          Income250K500K,
				WealthBracket:          Wealth1M5M,
			},
			wantStatus: StatusApproved,
		},
		{
			name: "capital conservative is rejected",
			a: Assessment{
				EconomicClass:        ClassCapital,
				PoliticalOrientation: OrientationConservative,
			},
			wantStatus: StatusRejected,
			wantReason: ReasonCapitalConservative,
		},
		{
			name: "capital libertarian is rejected",
			a: Assessment{
				EconomicClass:        ClassCapital,
				PoliticalOrientation: OrientationLibertarian,
			},
			wantStatus: StatusRejected,
			wantReason: ReasonCapitalConservative,
		},
		{
			name: "capital progressive passes the conservative gate",
			a: Assessment{
				EconomicClass:        ClassCapital,
				PoliticalOrientation: OrientationProgressive,
			},
			wantStatus: StatusApproved,
		},
		{
			name: "working conservative without explanation pends",
			a: Assessment{
				EconomicClass:        ClassWorking,
				PoliticalOrientation: OrientationConservative,
			},
			wantStatus: StatusPendingExplanation,
		},
		{
			name: "working conservative with unreviewed explanation is under review",
			a: Assessment{
				EconomicClass:        ClassWorking,
				PoliticalOrientation: OrientationConservative,
				Explanation:          longExplanation(),
			},
			wantStatus: StatusUnderReview,
		},
		{
			name: "working conservative with reviewed explanation is approved",
			a: Assessment{
				EconomicClass:        ClassWorking,
				PoliticalOrientation: OrientationConservative,
				Explanation:          longExplanation(),
				ExplanationReviewed:  true,
			},
			wantStatus: StatusApproved,
		},
		{
			name: "restricted reproductive view without verification pends",
			a: Assessment{
				EconomicClass:          ClassWorking,
				PoliticalOrientation:   OrientationModerate,
				VerificationApplicable: true,
				ReproductiveView:       ViewOpposed,
				VerificationStatus:     VerificationNotVerified,
			},
			wantStatus: StatusPendingVerification,
			wantReason: ReasonUnverifiedView,
		},
		{
			name: "declined verification stays pending verification",
			a: Assessment{
				EconomicClass:          ClassWorking,
				PoliticalOrientation:   OrientationModerate,
				VerificationApplicable: true,
				ReproductiveView:       ViewUndecided,
				VerificationStatus:     VerificationDeclined,
			},
			wantStatus: StatusPendingVerification,
			wantReason: ReasonUnverifiedView,
		},
		{
			name: "submitted document awaits review",
			a: Assessment{
				EconomicClass:          ClassWorking,
				PoliticalOrientation:   OrientationModerate,
				VerificationApplicable: true,
				ReproductiveView:       ViewSomeRestrictions,
				VerificationStatus:     VerificationPending,
			},
			wantStatus: StatusUnderReview,
		},
		{
			name: "verified document passes the gate",
			a: Assessment{
				EconomicClass:          ClassWorking,
				PoliticalOrientation:   OrientationModerate,
				VerificationApplicable: true,
				ReproductiveView:       ViewOpposed,
				VerificationStatus:     VerificationVerified,
			},
			wantStatus: StatusApproved,
		},
		{
			name: "full autonomy view never needs verification",
			a: Assessment{
				EconomicClass:          ClassWorking,
				PoliticalOrientation:   OrientationModerate,
				VerificationApplicable: true,
				ReproductiveView:       ViewFullAutonomy,
			},
			wantStatus: StatusApproved,
		},
		{
			name: "verification gate skipped when not applicable",
			a: Assessment{
				EconomicClass:        ClassWorking,
				PoliticalOrientation: OrientationModerate,
				ReproductiveView:     ViewOpposed,
				VerificationStatus:   VerificationNotVerified,
			},
			wantStatus: StatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(&tt.a, p)
			if got.Status != tt.wantStatus {
				t.Errorf("Evaluate() status = %v, want %v", got.Status, tt.wantStatus)
			}
			if got.Reason != tt.wantReason {
				t.Errorf("Evaluate() reason = %v, want %v", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	p := testPolicy()
	a := Assessment{
		EconomicClass:          ClassWorking,
		PoliticalOrientation:   OrientationConservative,
		WealthContributionView: ContributeTooLittle,
		Explanation:            longExplanation(),
	}

	first := Evaluate(&a, p)
	second := Evaluate(&a, p)

	if first != second {
		t.Errorf("re-evaluation changed the decision: %+v then %+v", first, second)
	}
}

func TestWealthGateRunsBeforeConservativeGates(t *testing.T) {
	p := testPolicy()

	// A capital-class conservative who also defends the wealthy from above
	// the median must be redirected, not rejected: the wealth gate decides
	// first and later rules are not consulted.
	a := Assessment{
		EconomicClass:          ClassCapital,
		PoliticalOrientation:   OrientationConservative,
		WealthContributionView: ContributeEnough,
		WealthBracket:          WealthOver10M,
	}

	got := Evaluate(&a, p)
	if got.Status != StatusRedirectElsewhere {
		t.Errorf("status = %v, want %v", got.Status, StatusRedirectElsewhere)
	}
	if got.Reason != ReasonAboveMedianDefender {
		t.Errorf("reason = %v, want %v", got.Reason, ReasonAboveMedianDefender)
	}
}
