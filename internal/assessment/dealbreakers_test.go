package assessment

import (
	"reflect"
	"testing"
)

func TestDetectConflicts(t *testing.T) {
	t.Run("mandatory mismatch from either side conflicts", func(t *testing.T) {
		responsesA := respMap(
			resp(1, 1, ImportanceMandatory), // B answers 5, outside default set
			resp(2, 3, ImportanceSomewhat),
		)
		responsesB := respMap(
			resp(1, 5, ImportanceALittle),
			resp(2, 3, ImportanceMandatory), // same answer, no conflict
		)

		report := DetectConflicts(responsesA, responsesB)
		if !report.HasMandatoryConflict {
			t.Fatal("expected a mandatory conflict")
		}
		if !reflect.DeepEqual(report.QuestionIDs, []int64{1}) {
			t.Errorf("conflict IDs = %v, want [1]", report.QuestionIDs)
		}
	})

	t.Run("non-mandatory mismatches never conflict", func(t *testing.T) {
		responsesA := respMap(resp(1, 1, ImportanceVery))
		responsesB := respMap(resp(1, 5, ImportanceVery))

		if report := DetectConflicts(responsesA, responsesB); report.HasMandatoryConflict {
			t.Error("very importance should not raise a mandatory conflict")
		}
	})

	t.Run("mandatory within acceptable set passes", func(t *testing.T) {
		responsesA := respMap(resp(1, 1, ImportanceMandatory, 1, 2, 3))
		responsesB := respMap(resp(1, 3, ImportanceSomewhat))

		if report := DetectConflicts(responsesA, responsesB); report.HasMandatoryConflict {
			t.Error("answer inside the acceptable set should not conflict")
		}
	})

	t.Run("both sides conflicting lists each question once", func(t *testing.T) {
		responsesA := respMap(
			resp(1, 1, ImportanceMandatory),
			resp(2, 1, ImportanceMandatory),
		)
		responsesB := respMap(
			resp(1, 5, ImportanceMandatory),
			resp(2, 5, ImportanceSomewhat),
		)

		report := DetectConflicts(responsesA, responsesB)
		if !reflect.DeepEqual(report.QuestionIDs, []int64{1, 2}) {
			t.Errorf("conflict IDs = %v, want [1 2]", report.QuestionIDs)
		}
	})

	t.Run("unanswered partner question is skipped", func(t *testing.T) {
		responsesA := respMap(resp(1, 1, ImportanceMandatory))
		responsesB := respMap(resp(2, 5, ImportanceMandatory))

		if report := DetectConflicts(responsesA, responsesB); report.HasMandatoryConflict {
			t.Error("questions only one side answered cannot conflict")
		}
	})
}
