package pricing

import (
	"math"
	"testing"
	"time"

	"podd/pkg/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestHourlyRateMultiplier(t *testing.T) {
	if got := HourlyRate(0.07, true); !almostEqual(got, 0.07) {
		t.Fatalf("interruptible rate=%v want 0.07", got)
	}
	if got := HourlyRate(0.07, false); !almostEqual(got, 0.14) {
		t.Fatalf("on-demand rate=%v want 0.14", got)
	}
}

func TestAccruedOneHour(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := created.Add(time.Hour)
	if got := Accrued(created, now, 0.07); !almostEqual(got, 0.07) {
		t.Fatalf("accrued=%v want 0.07", got)
	}
}

func TestAccruedRoundsToFourDecimals(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := created.Add(10 * time.Minute)
	// 0.34/h for 1/6 h = 0.056666... -> 0.0567
	if got := Accrued(created, now, 0.34); !almostEqual(got, 0.0567) {
		t.Fatalf("accrued=%v want 0.0567", got)
	}
}

func TestAccruedClampsNegativeElapsed(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := created.Add(-time.Hour)
	if got := Accrued(created, now, 0.34); got != 0 {
		t.Fatalf("accrued=%v want 0 for future created_at", got)
	}
}

func TestProjectionHorizons(t *testing.T) {
	if got := Projection(0.07, 24); !almostEqual(got, 1.68) {
		t.Fatalf("24h projection=%v want 1.68", got)
	}
	if got := Projection(0.07, 24*30); !almostEqual(got, 50.4) {
		t.Fatalf("30d projection=%v want 50.4", got)
	}
}

func TestBreakdownCloudType(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	created := now.Add(-2 * time.Hour)

	bd := Breakdown(0.07, created, true, now)
	if bd.CloudType != "Community Cloud" {
		t.Fatalf("cloud=%q want Community Cloud", bd.CloudType)
	}
	if !almostEqual(bd.HourlyRate, 0.07) {
		t.Fatalf("rate=%v", bd.HourlyRate)
	}
	if !almostEqual(bd.TotalCost, 0.14) {
		t.Fatalf("total=%v want 0.14", bd.TotalCost)
	}

	bd = Breakdown(0.07, created, false, now)
	if bd.CloudType != "Secure Cloud" {
		t.Fatalf("cloud=%q want Secure Cloud", bd.CloudType)
	}
	if !almostEqual(bd.HourlyRate, 0.14) {
		t.Fatalf("rate=%v", bd.HourlyRate)
	}
	if !almostEqual(bd.Projections.Hours24, 3.36) {
		t.Fatalf("24h=%v want 3.36", bd.Projections.Hours24)
	}
}

func TestTotalCostMixesLiveAndFrozen(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	pods := []types.Pod{
		{Status: types.StatusRunning, CreatedAt: now.Add(-time.Hour), HourlyRate: 0.34},
		{Status: types.StatusTerminated, CostSoFar: 1.5},
		{Status: types.StatusStopped, CostSoFar: 0.25},
	}
	if got := TotalCost(pods, now); !almostEqual(got, 2.09) {
		t.Fatalf("total=%v want 2.09", got)
	}
}

func TestSummaryGroupsByGPU(t *testing.T) {
	now := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	pods := []types.Pod{
		{GPUID: "rtx-4090", Status: types.StatusTerminated, CostSoFar: 1.0},
		{GPUID: "rtx-4090", Status: types.StatusTerminated, CostSoFar: 0.5},
		{GPUID: "a100-80gb", Status: types.StatusTerminated, CostSoFar: 3.0},
	}
	sum := Summary(pods, now)
	if sum.TotalPods != 3 {
		t.Fatalf("total pods=%d", sum.TotalPods)
	}
	if !almostEqual(sum.TotalCost, 4.5) {
		t.Fatalf("total=%v want 4.5", sum.TotalCost)
	}
	if c := sum.ByGPU["rtx-4090"]; c.Count != 2 || !almostEqual(c.Cost, 1.5) {
		t.Fatalf("rtx-4090 group=%+v", c)
	}
	if c := sum.ByGPU["a100-80gb"]; c.Count != 1 || !almostEqual(c.Cost, 3.0) {
		t.Fatalf("a100-80gb group=%+v", c)
	}
}
