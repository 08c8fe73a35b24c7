package manager

import (
	"time"

	"podd/internal/pricing"
	"podd/pkg/types"
)

// CostSummary aggregates spend across every tracked pod, terminated
// included.
func (m *Manager) CostSummary() types.CostSummary {
	return pricing.Summary(m.ListPods(), time.Now())
}

// PodCost returns the detailed cost view for one pod.
func (m *Manager) PodCost(id string) (types.CostBreakdown, error) {
	rec, ok := m.GetPod(id)
	if !ok {
		return types.CostBreakdown{}, errNotFound(id)
	}
	// Breakdown re-derives the effective rate, so hand it the base one.
	base := rec.HourlyRate
	if !rec.Config.Interruptible {
		base = rec.HourlyRate / pricing.OnDemandMultiplier
	}
	bd := pricing.Breakdown(base, rec.CreatedAt, rec.Config.Interruptible, time.Now())
	if rec.Status.Terminal() || rec.Status == types.StatusStopped {
		bd.TotalCost = rec.CostSoFar
		bd.ElapsedHours = 0
		if rec.HourlyRate > 0 {
			bd.ElapsedHours = round2(rec.CostSoFar / rec.HourlyRate)
		}
	}
	return bd, nil
}

// Estimate prices a hypothetical pod without creating anything.
func (m *Manager) Estimate(req types.EstimateRequest) (types.EstimateResponse, error) {
	g, ok := m.specs.Get(req.GPUID)
	if !ok {
		return types.EstimateResponse{}, errValidationf("unknown GPU ID %q", req.GPUID)
	}
	hours := req.Hours
	if hours <= 0 {
		hours = 1
	}
	interruptible := true
	if req.Interruptible != nil {
		interruptible = *req.Interruptible
	}
	rate := pricing.HourlyRate(g.CostPerHour, interruptible)
	cloud := "Secure Cloud"
	if interruptible {
		cloud = "Community Cloud"
	}
	return types.EstimateResponse{
		GPUID:         g.ID,
		GPUName:       g.DisplayName,
		Hours:         hours,
		HourlyRate:    rate,
		EstimatedCost: pricing.Projection(rate, hours),
		Interruptible: interruptible,
		CloudType:     cloud,
	}, nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
