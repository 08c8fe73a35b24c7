// Package pricing implements the pure cost model: hourly rates, accrued
// cost from wall-clock elapsed time, and fixed-horizon projections. It has
// no state; callers supply the base rate from the GPU spec table.
package pricing

import (
	"math"
	"time"

	"podd/pkg/types"
)

// OnDemandMultiplier is the surcharge for non-interruptible capacity.
const OnDemandMultiplier = 2.0

// HourlyRate returns the effective USD/hour for a base rate and tier.
func HourlyRate(baseRate float64, interruptible bool) float64 {
	if interruptible {
		return baseRate
	}
	return baseRate * OnDemandMultiplier
}

// Accrued returns cost accumulated between createdAt and now at hourlyRate,
// rounded to 4 decimals. Negative elapsed time counts as zero.
func Accrued(createdAt, now time.Time, hourlyRate float64) float64 {
	elapsed := now.Sub(createdAt).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	return round(hourlyRate*elapsed/3600, 4)
}

// Projection returns the cost of running for horizonHours at hourlyRate,
// independent of any live pod.
func Projection(hourlyRate, horizonHours float64) float64 {
	return round(hourlyRate*horizonHours, 2)
}

// Breakdown builds the detailed per-pod cost view.
func Breakdown(baseRate float64, createdAt time.Time, interruptible bool, now time.Time) types.CostBreakdown {
	rate := HourlyRate(baseRate, interruptible)
	elapsed := now.Sub(createdAt).Hours()
	if elapsed < 0 {
		elapsed = 0
	}
	cloud := "Secure Cloud"
	if interruptible {
		cloud = "Community Cloud"
	}
	return types.CostBreakdown{
		HourlyRate:    round(rate, 4),
		ElapsedHours:  round(elapsed, 2),
		TotalCost:     round(Accrued(createdAt, now, rate), 2),
		Interruptible: interruptible,
		CloudType:     cloud,
		Projections: types.CostProjections{
			Hours24: Projection(rate, 24),
			Days7:   Projection(rate, 24*7),
			Days30:  Projection(rate, 24*30),
		},
	}
}

// podCost returns the cost attributed to one pod at the given instant:
// live pods accrue in real time, terminal and stopped pods keep the value
// frozen at their last transition.
func podCost(p types.Pod, now time.Time) float64 {
	switch p.Status {
	case types.StatusRunning, types.StatusInitializing:
		return Accrued(p.CreatedAt, now, p.HourlyRate)
	default:
		return p.CostSoFar
	}
}

// TotalCost sums podCost across all pods, rounded to 2 decimals.
func TotalCost(pods []types.Pod, now time.Time) float64 {
	var total float64
	for _, p := range pods {
		total += podCost(p, now)
	}
	return round(total, 2)
}

// Summary aggregates cost across a set of pods, grouped by GPU type.
// Terminated pods retain their frozen value and still contribute.
func Summary(pods []types.Pod, now time.Time) types.CostSummary {
	byGPU := make(map[string]types.GPUCost)
	for _, p := range pods {
		c := byGPU[p.GPUID]
		c.Count++
		c.Cost = round(c.Cost+podCost(p, now), 2)
		byGPU[p.GPUID] = c
	}
	return types.CostSummary{
		TotalCost: TotalCost(pods, now),
		TotalPods: len(pods),
		ByGPU:     byGPU,
	}
}

func round(v float64, places int) float64 {
	shift := math.Pow(10, float64(places))
	return math.Round(v*shift) / shift
}
