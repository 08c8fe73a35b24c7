package manager

import (
	"context"
	"time"

	"podd/internal/events"
	"podd/internal/pricing"
	"podd/internal/provider"
	"podd/pkg/types"
)

// Create validates the request, provisions the pod through the gateway,
// and stores the new record in initializing state. On gateway failure
// nothing is stored and the provider's reason is surfaced.
func (m *Manager) Create(ctx context.Context, req types.CreatePodRequest) (types.Pod, error) {
	if err := validateName(req.Name); err != nil {
		return types.Pod{}, err
	}
	gpu, ok := m.specs.Get(req.GPUID)
	if !ok {
		return types.Pod{}, errValidationf("invalid GPU ID: %s", req.GPUID)
	}
	cfg := req.Config.Apply(types.DefaultPodConfig())
	if err := validateConfig(cfg); err != nil {
		return types.Pod{}, err
	}

	m.log.Info().Str("name", req.Name).Str("gpu", req.GPUID).Msg("creating pod")

	info, err := m.gateway.CreatePod(ctx, provider.CreateRequest{
		Name:            req.Name,
		GPUTypeID:       req.GPUID,
		Interruptible:   cfg.Interruptible,
		PublicIP:        cfg.PublicIP,
		ContainerDiskGB: cfg.ContainerDiskGB,
		VolumeDiskGB:    cfg.VolumeDiskGB,
		Port:            cfg.Port,
	})
	if err != nil {
		m.log.Error().Err(err).Str("name", req.Name).Msg("pod creation failed")
		return types.Pod{}, errProvisioning(provider.Reason(err))
	}

	now := time.Now()
	createdAt, ok := provider.ParseCreatedAt(info.CreatedAt)
	if !ok {
		createdAt = now
	}

	st := &podState{
		rec: types.Pod{
			ID:            info.ID,
			Name:          req.Name,
			GPUID:         req.GPUID,
			Status:        types.StatusInitializing,
			Config:        cfg,
			CreatedAt:     createdAt,
			HourlyRate:    pricing.HourlyRate(gpu.CostPerHour, cfg.Interruptible),
			LastHeartbeat: now,
			SetupLogs:     []string{},
		},
		setupStarted: now,
	}

	m.mu.Lock()
	if _, dup := m.pods[info.ID]; dup {
		m.mu.Unlock()
		return types.Pod{}, errProvisioning("provider returned duplicate pod id " + info.ID)
	}
	m.pods[info.ID] = st
	rec := st.copyRec()
	m.refreshPodGauges()
	m.mu.Unlock()
	podsCreatedTotal.Inc()

	m.pub.Publish(events.New(events.TypePodCreated, events.PodCreatedData{
		PodID: rec.ID,
		Name:  rec.Name,
		GPUID: rec.GPUID,
	}))
	m.log.Info().Str("pod_id", rec.ID).Msg("pod created")
	return rec, nil
}
