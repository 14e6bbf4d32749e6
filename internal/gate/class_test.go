package gate

import "testing"

func testPolicy() Policy {
	return Policy{
		MedianWealthThreshold:   200000,
		MedianIncomeThreshold:   100000,
		MedianWealthFloor:       100000,
		MedianCombinedThreshold: 275000,
		MinExplanationLength:    100,
	}
}

func TestDeriveEconomicClass(t *testing.T) {
	tests := []struct {
		name string
		a    Assessment
		want EconomicClass
	}{
		{
			name: "lives off capital short-circuits everything",
			a: Assessment{
				LivesOffCapital:     true,
				IncomeBracket:       IncomeUnder25K,
				PrimaryIncomeSource: SourceWagesSalary,
			},
			want: ClassCapital,
		},
		{
			name: "landlord who employs others is capital",
			a: Assessment{
				OwnsRentalProperty: true,
				EmploysOthers:      true,
			},
			want: ClassCapital,
		},
		{
			name: "very high wealth with investment income is capital",
			a: Assessment{
				WealthBracket:       Wealth5M10M,
				PrimaryIncomeSource: SourceInvestments,
			},
			want: ClassCapital,
		},
		{
			name: "rental property alone is petite bourgeoisie",
			a: Assessment{
				OwnsRentalProperty: true,
			},
			want: ClassPetiteBourg,
		},
		{
			name: "rental income source is petite bourgeoisie",
			a: Assessment{
				PrimaryIncomeSource: SourceRentalIncome,
			},
			want: ClassPetiteBourg,
		},
		{
			name: "business owner is small business",
			a: Assessment{
				PrimaryIncomeSource: SourceBusinessOwner,
			},
			want: ClassSmallBiz,
		},
		{
			name: "employing others without rentals is small business",
			a: Assessment{
				EmploysOthers: true,
			},
			want: ClassSmallBiz,
		},
		{
			name: "high income wage earner is professional",
			a: Assessment{
				IncomeBracket:       Income100K150K,
				PrimaryIncomeSource: SourceWagesSalary,
			},
			want: ClassProfessional,
		},
		{
			name: "high income self-employed solo is professional",
			a: Assessment{
				IncomeBracket:       Income250K500K,
				PrimaryIncomeSource: SourceSelfEmployedSolo,
			},
			want: ClassProfessional,
		},
		{
			name: "low income wage earner is working class",
			a: Assessment{
				IncomeBracket:       Income25K50K,
				PrimaryIncomeSource: SourceWagesSalary,
			},
			want: ClassWorking,
		},
		{
			name: "empty assessment defaults to working class",
			a:    Assessment{},
			want: ClassWorking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveEconomicClass(&tt.a); got != tt.want {
				t.Errorf("DeriveEconomicClass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAboveMedianWealth(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name   string
		income IncomeBracket
		wealth WealthBracket
		want   bool
	}{
		{
			name:   "wealth midpoint alone above threshold",
			income: Income100K150K,
			wealth: Wealth250K500K, // midpoint 375000
			want:   true,
		},
		{
			name:   "income and wealth both above floors",
			income: Income100K150K, // midpoint 125000
			wealth: Wealth100K250K, // midpoint 175000
			want:   true,
		},
		{
			name:   "combined above threshold",
			income: Income150K250K, // midpoint 200000
			wealth: Wealth50K100K,  // midpoint 75000
			want:   true,
		},
		{
			name:   "modest income and wealth below median",
			income: Income50K75K,
			wealth: Wealth10K50K,
			want:   false,
		},
		{
			name:   "missing brackets read as below median",
			income: "",
			wealth: "",
			want:   false,
		},
		{
			name:   "negative wealth offsets decent income",
			income: Income75K100K,
			wealth: WealthNegative,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Assessment{IncomeBracket: tt.income, WealthBracket: tt.wealth}
			if got := AboveMedianWealth(a, p); got != tt.want {
				t.Errorf("AboveMedianWealth() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeEconomicValuesScore(t *testing.T) {
	intp := func(v int) *int { return &v }

	t.Run("averages answered questions onto 0-100 scale", func(t *testing.T) {
		a := &Assessment{
			WealthRedistributionView: intp(5),
			WorkerOwnershipView:      intp(4),
			UniversalServicesView:    intp(3),
		}
		got := ComputeEconomicValuesScore(a)
		if got == nil {
			t.Fatal("expected a score, got nil")
		}
		want := (12.0 / 3.0 / 5.0) * 100
		if *got != want {
			t.Errorf("score = %v, want %v", *got, want)
		}
	})

	t.Run("no answers yields nil", func(t *testing.T) {
		if got := ComputeEconomicValuesScore(&Assessment{}); got != nil {
			t.Errorf("expected nil, got %v", *got)
		}
	})
}
