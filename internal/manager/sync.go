package manager

import (
	"context"
	"fmt"
	"time"

	"podd/internal/pricing"
	"podd/internal/provider"
	"podd/pkg/types"
)

// SyncFromProvider imports pods that already exist at the provider but are
// unknown locally, typically after a daemon restart. Known pods are left
// alone; the monitor reconciles their status on its own schedule.
func (m *Manager) SyncFromProvider(ctx context.Context) (int, error) {
	infos, err := m.gateway.ListPods(ctx)
	if err != nil {
		return 0, errProvisioning(provider.Reason(err))
	}

	adopted := 0
	for _, info := range infos {
		if info.ID == "" {
			continue
		}
		m.mu.RLock()
		_, known := m.pods[info.ID]
		m.mu.RUnlock()
		if known {
			continue
		}

		rec := m.recoverRecord(ctx, info)

		m.mu.Lock()
		if _, dup := m.pods[info.ID]; dup {
			m.mu.Unlock()
			continue
		}
		m.pods[info.ID] = &podState{
			rec:          rec,
			setupStarted: rec.CreatedAt,
		}
		m.refreshPodGauges()
		m.mu.Unlock()

		adopted++
		m.log.Info().Str("pod_id", rec.ID).Str("status", string(rec.Status)).Msg("adopted pod from provider")
	}
	return adopted, nil
}

// recoverRecord rebuilds a local record from provider state alone. Fields
// the provider does not report are filled with conservative estimates.
func (m *Manager) recoverRecord(ctx context.Context, info provider.PodInfo) types.Pod {
	now := time.Now()

	name := info.Name
	if name == "" {
		short := info.ID
		if len(short) > 8 {
			short = short[:8]
		}
		name = "pod-" + short
	}

	gpuID := "unknown"
	if len(info.GPUTypeIDs) > 0 {
		gpuID = info.GPUTypeIDs[0]
	}

	status := types.Status(provider.StatusForProvider(info.DesiredStatus))
	if status == "" {
		status = types.StatusStopped
	}

	createdAt, ok := provider.ParseCreatedAt(info.CreatedAt)
	if !ok {
		createdAt = now
	}

	rate := info.CostPerHr
	if rate == 0 {
		if g, ok := m.specs.Get(gpuID); ok {
			rate = pricing.HourlyRate(g.CostPerHour, true)
		}
	}

	cfg := types.DefaultPodConfig()

	var cost float64
	switch status {
	case types.StatusRunning, types.StatusInitializing:
		cost = pricing.Accrued(createdAt, now, rate)
	default:
		// No record of when the pod stopped, so charge a nominal
		// tenth of an hour rather than the full wall-clock span.
		cost = pricing.Accrued(createdAt, createdAt.Add(6*time.Minute), rate)
	}

	rec := types.Pod{
		ID:            info.ID,
		Name:          name,
		GPUID:         gpuID,
		Status:        status,
		Config:        cfg,
		CreatedAt:     createdAt,
		HourlyRate:    rate,
		CostSoFar:     cost,
		LastHeartbeat: now,
		SetupLogs: []string{
			fmt.Sprintf("[%s] adopted from provider during startup sync", now.Format("15:04:05")),
		},
	}
	if status == types.StatusRunning {
		rec.SetupProgress = 100
		rec.EndpointURL = m.gateway.EndpointURL(ctx, info.ID, cfg.Port, cfg.PublicIP)
	}
	return rec
}
