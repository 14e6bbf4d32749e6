package assessment

import (
	"math"
	"testing"
)

func intp(v int) *int { return &v }

func resp(questionID int64, answer int, importance Importance, acceptable ...int64) *Response {
	return &Response{
		QuestionID:    questionID,
		NumericAnswer: intp(answer),
		Importance:    importance,
		Acceptable:    acceptable,
	}
}

func respMap(responses ...*Response) map[int64]*Response {
	m := make(map[int64]*Response)
	for _, r := range responses {
		m[r.QuestionID] = r
	}
	return m
}

func TestSatisfactionBounds(t *testing.T) {
	mine := respMap(
		resp(1, 3, ImportanceVery),
		resp(2, 1, ImportanceMandatory, 1, 2),
		resp(3, 5, ImportanceALittle),
	)
	theirs := respMap(
		resp(1, 3, ImportanceSomewhat),
		resp(2, 4, ImportanceSomewhat),
		resp(3, 5, ImportanceSomewhat),
	)

	got := Satisfaction(mine, theirs)
	if got < 0 || got > 1 {
		t.Fatalf("satisfaction out of bounds: %v", got)
	}

	// q1 (50) accepted, q2 (250) rejected, q3 (1) accepted
	want := 51.0 / 301.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("satisfaction = %v, want %v", got, want)
	}
}

func TestSatisfactionNoSharedQuestionsIsZero(t *testing.T) {
	mine := respMap(resp(1, 3, ImportanceVery))
	theirs := respMap(resp(2, 3, ImportanceVery))

	if got := Satisfaction(mine, theirs); got != 0 {
		t.Errorf("satisfaction = %v, want 0", got)
	}
}

func TestSatisfactionIgnoresIrrelevantAnswers(t *testing.T) {
	mine := respMap(
		resp(1, 1, ImportanceIrrelevant),
		resp(2, 2, ImportanceSomewhat),
	)
	theirs := respMap(
		resp(1, 5, ImportanceSomewhat),
		resp(2, 2, ImportanceSomewhat),
	)

	// The irrelevant mismatch contributes no weight either way
	if got := Satisfaction(mine, theirs); got != 1 {
		t.Errorf("satisfaction = %v, want 1", got)
	}
}

func TestAcceptableDefaultsToSameValue(t *testing.T) {
	mine := resp(1, 3, ImportanceSomewhat)

	if !mine.Accepts(intp(3)) {
		t.Error("same answer should be acceptable by default")
	}
	if mine.Accepts(intp(4)) {
		t.Error("different answer should not be acceptable without an explicit set")
	}
}

func TestAcceptableSetIsHonored(t *testing.T) {
	mine := resp(1, 2, ImportanceSomewhat, 1, 2, 3)

	for _, answer := range []int{1, 2, 3} {
		if !mine.Accepts(intp(answer)) {
			t.Errorf("answer %d should be in the acceptable set", answer)
		}
	}
	if mine.Accepts(intp(4)) {
		t.Error("answer 4 should be outside the acceptable set")
	}
}

func TestAcceptableMissingAnswers(t *testing.T) {
	noAnswer := &Response{QuestionID: 1, Importance: ImportanceSomewhat}

	if !noAnswer.Accepts(intp(5)) {
		t.Error("missing own answer cannot be compared, should accept")
	}
	if !resp(1, 3, ImportanceSomewhat).Accepts(nil) {
		t.Error("missing partner answer cannot be compared, should accept")
	}
}

func TestScoreCategorySymmetry(t *testing.T) {
	responsesA := respMap(
		resp(1, 3, ImportanceVery),
		resp(2, 2, ImportanceSomewhat, 1, 2, 3),
		resp(3, 5, ImportanceMandatory),
	)
	responsesB := respMap(
		resp(1, 4, ImportanceALittle),
		resp(2, 1, ImportanceVery),
		resp(3, 5, ImportanceSomewhat),
	)

	ab := ScoreCategory(responsesA, responsesB)
	ba := ScoreCategory(responsesB, responsesA)

	if ab.Incomplete || ba.Incomplete {
		t.Fatal("categories should be complete")
	}
	if math.Abs(ab.Score-ba.Score) > 1e-9 {
		t.Errorf("category score not symmetric: %v vs %v", ab.Score, ba.Score)
	}
	if ab.Score < 0 || ab.Score > 100 {
		t.Errorf("category score out of bounds: %v", ab.Score)
	}
}

func TestScoreCategoryIncompleteWithoutWeightedResponses(t *testing.T) {
	weighted := respMap(resp(1, 3, ImportanceVery))
	onlyIrrelevant := respMap(resp(1, 3, ImportanceIrrelevant))

	if got := ScoreCategory(weighted, onlyIrrelevant); !got.Incomplete {
		t.Error("category should be incomplete when one side has no weighted responses")
	}
	if got := ScoreCategory(respMap(), weighted); !got.Incomplete {
		t.Error("category should be incomplete when one side has no responses at all")
	}
	if got := ScoreCategory(weighted, weighted); got.Incomplete {
		t.Error("category should be complete when both sides have weighted responses")
	}
}
