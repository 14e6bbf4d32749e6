// internal/gate/class.go
// Economic class derivation and values scoring.
// Pure functions over the assessment's raw inputs.

package gate

// DeriveEconomicClass classifies the user from income, wealth and
// ownership inputs. Priority cascade: the first matching rule decides.
// Missing data falls through to WORKING_CLASS so evaluation never
// fails on an incomplete form.
func DeriveEconomicClass(a *Assessment) EconomicClass {
	// Capital class: lives primarily off capital, or is a landlord who
	// also employs others, or holds very high wealth with investment income
	if a.LivesOffCapital {
		return ClassCapital
	}

	if a.OwnsRentalProperty && a.EmploysOthers {
		return ClassCapital
	}

	if (a.WealthBracket == WealthOver10M || a.WealthBracket == Wealth5M10M) &&
		a.PrimaryIncomeSource == SourceInvestments {
		return ClassCapital
	}

	// Petite bourgeoisie: small landlords
	if a.OwnsRentalProperty || a.PrimaryIncomeSource == SourceRentalIncome {
		return ClassPetiteBourg
	}

	// Small business: owns a business or employs others
	if a.PrimaryIncomeSource == SourceBusinessOwner || a.EmploysOthers {
		return ClassSmallBiz
	}

	// Professional: high income but still wage-dependent
	if a.IncomeBracket.Midpoint() >= Income100K150K.Midpoint() &&
		(a.PrimaryIncomeSource == SourceWagesSalary ||
			a.PrimaryIncomeSource == SourceSelfEmployedSolo) {
		return ClassProfessional
	}

	return ClassWorking
}

// ComputeEconomicValuesScore averages the answered 1-5 belief questions
// onto a 0-100 scale. Returns nil when nothing is answered.
func ComputeEconomicValuesScore(a *Assessment) *float64 {
	var total float64
	var count int

	for _, v := range []*int{
		a.WealthRedistributionView,
		a.WorkerOwnershipView,
		a.UniversalServicesView,
		a.HousingRightsView,
		a.BillionaireView,
		a.MeritocracyView,
	} {
		if v != nil {
			total += float64(*v)
			count++
		}
	}

	if count == 0 {
		return nil
	}

	score := (total / float64(count) / 5.0) * 100
	return &score
}

// AboveMedianWealth estimates whether combined income and wealth put
// the user above the median household, using bracket midpoints.
// Missing brackets count as zero, so incomplete data reads as below
// median.
func AboveMedianWealth(a *Assessment, p Policy) bool {
	income := a.IncomeBracket.Midpoint()
	wealth := a.WealthBracket.Midpoint()

	if wealth >= p.MedianWealthThreshold {
		return true
	}
	if income >= p.MedianIncomeThreshold && wealth >= p.MedianWealthFloor {
		return true
	}
	if income+wealth > p.MedianCombinedThreshold {
		return true
	}

	return false
}
