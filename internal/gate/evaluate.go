// internal/gate/evaluate.go
// The gate evaluator: an ordered cascade over the assessment.
// Pure and idempotent; re-running with unchanged inputs yields the
// same decision.

package gate

import "strings"

// Policy holds the gate's tunable thresholds. The values are policy
// choices, so they come from configuration rather than constants.
type Policy struct {
	MedianWealthThreshold   int
	MedianIncomeThreshold   int
	MedianWealthFloor       int
	MedianCombinedThreshold int
	MinExplanationLength    int
}

// Decision is the outcome of one evaluator run
type Decision struct {
	Status GateStatus
	Reason RejectionReason
}

// Evaluate runs the gate cascade. The first matching rule decides;
// later rules are not re-checked once an earlier one fires.
func Evaluate(a *Assessment, p Policy) Decision {
	// Rule 1: required inputs missing
	if a.EconomicClass == "" || a.PoliticalOrientation == "" {
		return Decision{Status: StatusPendingAssessment}
	}

	// Rule 2: wealth-contribution gate. Every view except "the wealthy
	// contribute too little" triggers the income/wealth check.
	if a.WealthContributionView != "" && a.WealthContributionView != ContributeTooLittle {
		if AboveMedianWealth(a, p) {
			return Decision{
				Status: StatusRedirectElsewhere,
				Reason: ReasonAboveMedianDefender,
			}
		}

		// Below median but defends the wealthy: needs an explanation
		if !hasExplanation(a, p) {
			return Decision{Status: StatusPendingExplanation}
		}
	}

	// Rule 3: capital class + conservative-leaning orientation
	if a.EconomicClass == ClassCapital &&
		(a.PoliticalOrientation == OrientationConservative ||
			a.PoliticalOrientation == OrientationLibertarian) {
		return Decision{
			Status: StatusRejected,
			Reason: ReasonCapitalConservative,
		}
	}

	// Rule 4: working/professional conservative needs a reviewed explanation
	if (a.EconomicClass == ClassWorking || a.EconomicClass == ClassProfessional) &&
		a.PoliticalOrientation == OrientationConservative {
		if !hasExplanation(a, p) {
			return Decision{Status: StatusPendingExplanation}
		}
		if !a.ExplanationReviewed {
			return Decision{Status: StatusUnderReview}
		}
	}

	// Rule 5: reproductive-view verification. Applies only to users whose
	// demographic flag makes the check relevant; any view short of full
	// autonomy or sentience-based requires a verified document.
	if a.VerificationApplicable && a.ReproductiveView != "" &&
		a.ReproductiveView != ViewFullAutonomy &&
		a.ReproductiveView != ViewSentienceBased {

		switch a.VerificationStatus {
		case VerificationVerified:
			// verified, fall through
		case VerificationPending:
			return Decision{Status: StatusUnderReview}
		default:
			// missing, not verified, or declined
			return Decision{
				Status: StatusPendingVerification,
				Reason: ReasonUnverifiedView,
			}
		}
	}

	return Decision{Status: StatusApproved}
}

func hasExplanation(a *Assessment, p Policy) bool {
	return len(strings.TrimSpace(a.Explanation)) >= p.MinExplanationLength
}
