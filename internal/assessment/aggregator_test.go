package assessment

import (
	"math"
	"testing"
)

func floatp(v float64) *float64 { return &v }

func testWeights() Weights {
	return Weights{
		Values:      0.30,
		Lifestyle:   0.20,
		Personality: 0.20,
		Attachment:  0.15,
		Political:   0.15,
	}
}

func catResp(questionID int64, category Category, answer int, importance Importance) *Response {
	r := resp(questionID, answer, importance)
	r.Category = category
	return r
}

func TestAggregateOmitsIncompleteCategoriesAndReweights(t *testing.T) {
	// Only the values category has responses on both sides; the rest are
	// incomplete and must be omitted, not scored as zero.
	responsesA := []*Response{
		catResp(1, CategoryValues, 3, ImportanceVery),
		catResp(2, CategoryValues, 2, ImportanceSomewhat),
	}
	responsesB := []*Response{
		catResp(1, CategoryValues, 3, ImportanceVery),
		catResp(2, CategoryValues, 2, ImportanceSomewhat),
	}

	result := Aggregate(AggregateInput{
		ResponsesA:         responsesA,
		ResponsesB:         responsesB,
		Weights:            testWeights(),
		DealbreakerCap:     10,
		MinSharedQuestions: 10,
	})

	if len(result.Categories) != 1 {
		t.Fatalf("categories = %v, want only VALUES", result.Categories)
	}
	// Perfect agreement: reweighted overall equals the single category score
	if result.Overall != 100 {
		t.Errorf("overall = %v, want 100", result.Overall)
	}
	if result.HasEnoughData {
		t.Error("2 shared questions should not count as enough data")
	}
}

func TestAggregateMandatoryConflictCapsOverall(t *testing.T) {
	responsesA := []*Response{
		catResp(1, CategoryValues, 3, ImportanceVery),
		catResp(2, CategoryDealbreaker, 1, ImportanceMandatory),
	}
	responsesB := []*Response{
		catResp(1, CategoryValues, 3, ImportanceVery),
		catResp(2, CategoryDealbreaker, 5, ImportanceALittle),
	}

	result := Aggregate(AggregateInput{
		ResponsesA:         responsesA,
		ResponsesB:         responsesB,
		Weights:            testWeights(),
		DealbreakerCap:     10,
		MinSharedQuestions: 1,
	})

	if !result.HasMandatoryConflict {
		t.Fatal("expected a mandatory conflict")
	}
	if result.Overall > 10 {
		t.Errorf("overall = %v, want <= 10 under mandatory conflict", result.Overall)
	}
	if len(result.ConflictQuestionIDs) != 1 || result.ConflictQuestionIDs[0] != 2 {
		t.Errorf("conflict IDs = %v, want [2]", result.ConflictQuestionIDs)
	}
}

func TestAggregatePoliticalCategory(t *testing.T) {
	result := Aggregate(AggregateInput{
		EconomicValuesA:    floatp(80),
		EconomicValuesB:    floatp(60),
		Weights:            testWeights(),
		DealbreakerCap:     10,
		MinSharedQuestions: 1,
	})

	political, ok := result.Categories[CategoryPolitical]
	if !ok {
		t.Fatal("expected a political category score")
	}
	if political != 80 {
		t.Errorf("political = %v, want 80 (100 - |80-60|)", political)
	}
	// Political is the only complete category, so overall equals it
	if result.Overall != 80 {
		t.Errorf("overall = %v, want 80", result.Overall)
	}
}

func TestAggregatePoliticalIncompleteWhenScoreMissing(t *testing.T) {
	result := Aggregate(AggregateInput{
		EconomicValuesA:    floatp(80),
		Weights:            testWeights(),
		DealbreakerCap:     10,
		MinSharedQuestions: 1,
	})

	if _, ok := result.Categories[CategoryPolitical]; ok {
		t.Error("political category should be omitted when either score is missing")
	}
	if result.Overall != 0 {
		t.Errorf("overall = %v, want 0 with no complete categories", result.Overall)
	}
}

func TestAggregateWeightedAverage(t *testing.T) {
	// Values agrees fully (100), political differs by 40 (60). With the
	// configured weights the overall is the renormalized weighted mean.
	responsesA := []*Response{catResp(1, CategoryValues, 3, ImportanceVery)}
	responsesB := []*Response{catResp(1, CategoryValues, 3, ImportanceVery)}

	result := Aggregate(AggregateInput{
		ResponsesA:         responsesA,
		ResponsesB:         responsesB,
		EconomicValuesA:    floatp(100),
		EconomicValuesB:    floatp(60),
		Weights:            testWeights(),
		DealbreakerCap:     10,
		MinSharedQuestions: 1,
	})

	want := (100*0.30 + 60*0.15) / (0.30 + 0.15)
	if math.Abs(result.Overall-math.Round(want*10)/10) > 1e-9 {
		t.Errorf("overall = %v, want %v", result.Overall, math.Round(want*10)/10)
	}
}

func TestAggregateRoundTripPrecision(t *testing.T) {
	responsesA := []*Response{
		catResp(1, CategoryValues, 3, ImportanceVery),
		catResp(2, CategoryValues, 1, ImportanceSomewhat),
		catResp(3, CategoryLifestyle, 4, ImportanceALittle),
	}
	responsesB := []*Response{
		catResp(1, CategoryValues, 3, ImportanceALittle),
		catResp(2, CategoryValues, 2, ImportanceVery),
		catResp(3, CategoryLifestyle, 4, ImportanceMandatory),
	}

	in := AggregateInput{
		ResponsesA:         responsesA,
		ResponsesB:         responsesB,
		Weights:            testWeights(),
		DealbreakerCap:     10,
		MinSharedQuestions: 1,
	}

	first := Aggregate(in)
	second := Aggregate(in)

	if math.Abs(first.Overall-second.Overall) > 1e-6 {
		t.Errorf("overall drifted: %v vs %v", first.Overall, second.Overall)
	}
	for c, v := range first.Categories {
		if math.Abs(v-second.Categories[c]) > 1e-6 {
			t.Errorf("category %s drifted: %v vs %v", c, v, second.Categories[c])
		}
	}
}
