// internal/assessment/gatereader.go
// Adapter from the gate module to the GateFacts the scorer needs

package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/auradating/aura-backend/internal/gate"
)

type gateReader struct {
	repo gate.Repository
}

// NewGateReader adapts a gate repository into a GateReader
func NewGateReader(repo gate.Repository) GateReader {
	return &gateReader{repo: repo}
}

func (g *gateReader) GateFacts(ctx context.Context, userID int64) (*GateFacts, error) {
	a, err := g.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gate.ErrAssessmentNotFound) {
			// No assessment yet: not approved, never changed
			return &GateFacts{Approved: false, ChangedAt: time.Time{}}, nil
		}
		return nil, err
	}

	return &GateFacts{
		Approved:            a.GateStatus == gate.StatusApproved,
		EconomicValuesScore: a.EconomicValuesScore,
		ChangedAt:           gate.LastChangedAt(a),
	}, nil
}
