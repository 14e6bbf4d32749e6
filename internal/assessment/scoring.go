// internal/assessment/scoring.go
// Weighted response scoring.
// Pure functions over in-memory response maps keyed by question ID.

package assessment

import "math"

// Satisfaction computes how satisfied the owner of mine would be with
// the owner of theirs, over the questions both answered. Returns a
// value in [0,1]: the importance-weighted share of acceptable answers.
// Zero shared weight yields 0.
func Satisfaction(mine, theirs map[int64]*Response) float64 {
	var totalWeight, satisfiedWeight float64

	for questionID, myResponse := range mine {
		theirResponse, ok := theirs[questionID]
		if !ok {
			continue
		}

		weight := myResponse.Importance.Weight()
		if weight == 0 {
			continue
		}

		totalWeight += weight
		if myResponse.Accepts(theirResponse.NumericAnswer) {
			satisfiedWeight += weight
		}
	}

	if totalWeight == 0 {
		return 0
	}
	return satisfiedWeight / totalWeight
}

// CategoryResult is the outcome of scoring one category for a pair
type CategoryResult struct {
	Score      float64
	Incomplete bool
}

// ScoreCategory computes the pair's 0-100 category score as the
// geometric mean of both directional satisfactions. A category is
// incomplete when either user has no weighted response in it; an
// incomplete category must be omitted from the aggregate rather than
// scored as zero.
func ScoreCategory(responsesA, responsesB map[int64]*Response) CategoryResult {
	if !hasWeightedResponse(responsesA) || !hasWeightedResponse(responsesB) {
		return CategoryResult{Incomplete: true}
	}

	satA := Satisfaction(responsesA, responsesB)
	satB := Satisfaction(responsesB, responsesA)

	return CategoryResult{Score: math.Sqrt(satA*satB) * 100}
}

func hasWeightedResponse(responses map[int64]*Response) bool {
	for _, r := range responses {
		if r.Importance.Weight() > 0 {
			return true
		}
	}
	return false
}

// ByCategory splits a user's responses into per-category maps keyed by
// question ID
func ByCategory(responses []*Response) map[Category]map[int64]*Response {
	out := make(map[Category]map[int64]*Response)
	for _, r := range responses {
		m, ok := out[r.Category]
		if !ok {
			m = make(map[int64]*Response)
			out[r.Category] = m
		}
		m[r.QuestionID] = r
	}
	return out
}

// AsMap keys a user's responses by question ID
func AsMap(responses []*Response) map[int64]*Response {
	out := make(map[int64]*Response, len(responses))
	for _, r := range responses {
		out[r.QuestionID] = r
	}
	return out
}
