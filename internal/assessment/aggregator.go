// internal/assessment/aggregator.go
// Combines per-category scores into one overall percentage.
// Gate checking happens in the service; this stays pure.

package assessment

import "math"

// Weights is the per-category weight table. The five entries must sum
// to 1.0; callers take them from configuration.
type Weights struct {
	Values      float64
	Lifestyle   float64
	Personality float64
	Attachment  float64
	Political   float64
}

// AggregateInput carries everything the aggregator needs for one pair
type AggregateInput struct {
	ResponsesA []*Response
	ResponsesB []*Response

	// Economic values scores from the gate assessments, 0-100. Nil when
	// the user hasn't answered the belief questions; the political
	// category is then incomplete.
	EconomicValuesA *float64
	EconomicValuesB *float64

	Weights            Weights
	DealbreakerCap     float64
	MinSharedQuestions int
}

// AggregateResult is the computed compatibility for one pair
type AggregateResult struct {
	Overall              float64
	Categories           map[Category]float64
	SatisfactionA        float64
	SatisfactionB        float64
	SharedQuestions      int
	HasEnoughData        bool
	HasMandatoryConflict bool
	ConflictQuestionIDs  []int64
}

// Aggregate computes the pair's overall score: per-category geometric
// means weighted by the category table, incomplete categories omitted
// with the remaining weights renormalized, then the dealbreaker cap.
func Aggregate(in AggregateInput) AggregateResult {
	byCategoryA := ByCategory(in.ResponsesA)
	byCategoryB := ByCategory(in.ResponsesB)

	categories := make(map[Category]float64)
	var weightedSum, weightTotal float64

	include := func(c Category, weight float64, score float64) {
		categories[c] = round1(score)
		weightedSum += score * weight
		weightTotal += weight
	}

	for _, c := range ScoredCategories {
		result := ScoreCategory(byCategoryA[c], byCategoryB[c])
		if result.Incomplete {
			continue
		}
		include(c, categoryWeight(in.Weights, c), result.Score)
	}

	// Political category: distance between the two economic values scores
	if in.EconomicValuesA != nil && in.EconomicValuesB != nil {
		score := 100 - math.Abs(*in.EconomicValuesA-*in.EconomicValuesB)
		include(CategoryPolitical, in.Weights.Political, score)
	}

	var overall float64
	if weightTotal > 0 {
		overall = weightedSum / weightTotal
	}

	// Whole-profile satisfaction and conflict scan run over all shared
	// questions, not per category
	mapA := AsMap(in.ResponsesA)
	mapB := AsMap(in.ResponsesB)

	shared := countShared(mapA, mapB)
	satA := Satisfaction(mapA, mapB)
	satB := Satisfaction(mapB, mapA)

	conflicts := DetectConflicts(mapA, mapB)
	if conflicts.HasMandatoryConflict && overall > in.DealbreakerCap {
		overall = in.DealbreakerCap
	}

	return AggregateResult{
		Overall:              round1(overall),
		Categories:           categories,
		SatisfactionA:        round1(satA * 100),
		SatisfactionB:        round1(satB * 100),
		SharedQuestions:      shared,
		HasEnoughData:        shared >= in.MinSharedQuestions,
		HasMandatoryConflict: conflicts.HasMandatoryConflict,
		ConflictQuestionIDs:  conflicts.QuestionIDs,
	}
}

func categoryWeight(w Weights, c Category) float64 {
	switch c {
	case CategoryValues:
		return w.Values
	case CategoryLifestyle:
		return w.Lifestyle
	case CategoryPersonality:
		return w.Personality
	case CategoryAttachment:
		return w.Attachment
	case CategoryPolitical:
		return w.Political
	default:
		return 0
	}
}

func countShared(mapA, mapB map[int64]*Response) int {
	count := 0
	for id := range mapA {
		if _, ok := mapB[id]; ok {
			count++
		}
	}
	return count
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
