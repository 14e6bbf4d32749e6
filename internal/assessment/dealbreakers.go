// internal/assessment/dealbreakers.go
// Mandatory-importance conflict detection

package assessment

import "sort"

// ConflictReport is the dealbreaker scan result. QuestionIDs lists
// every conflicting question so clients can explain the cap.
type ConflictReport struct {
	HasMandatoryConflict bool
	QuestionIDs          []int64
}

// DetectConflicts scans all shared answered questions where either
// user's importance is mandatory and the partner's answer falls
// outside the acceptable set. A single hit caps the overall score.
func DetectConflicts(responsesA, responsesB map[int64]*Response) ConflictReport {
	conflictSet := make(map[int64]struct{})

	scan := func(mine, theirs map[int64]*Response) {
		for questionID, myResponse := range mine {
			if myResponse.Importance != ImportanceMandatory {
				continue
			}
			theirResponse, ok := theirs[questionID]
			if !ok {
				continue
			}
			if !myResponse.Accepts(theirResponse.NumericAnswer) {
				conflictSet[questionID] = struct{}{}
			}
		}
	}

	scan(responsesA, responsesB)
	scan(responsesB, responsesA)

	if len(conflictSet) == 0 {
		return ConflictReport{}
	}

	ids := make([]int64, 0, len(conflictSet))
	for id := range conflictSet {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ConflictReport{
		HasMandatoryConflict: true,
		QuestionIDs:          ids,
	}
}
