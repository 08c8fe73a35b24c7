package manager

import (
	"context"
	"time"

	"podd/internal/events"
	"podd/internal/pricing"
	"podd/pkg/types"
)

// Terminate requests teardown from the provider and, on success, marks the
// record terminated immediately without waiting for the monitor to confirm.
// If the provider's teardown later fails silently the record stays
// terminal; the startup sync is what reconciles such divergence.
//
// Terminating an already terminated pod is idempotent: the existing record
// is returned without a second provider call.
func (m *Manager) Terminate(ctx context.Context, id string) (types.Pod, error) {
	m.mu.RLock()
	st, ok := m.pods[id]
	var rec types.Pod
	if ok {
		rec = st.copyRec()
	}
	m.mu.RUnlock()
	if !ok {
		return types.Pod{}, errNotFound(id)
	}
	if rec.Status == types.StatusTerminated {
		return rec, nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.pollTimeout)
	defer cancel()
	if err := m.gateway.TerminatePod(ctx, id); err != nil {
		m.log.Error().Err(err).Str("pod_id", id).Msg("terminate failed")
		return types.Pod{}, err
	}

	// Freeze cost at the moment of termination.
	now := time.Now()
	var cost *float64
	if rec.Status == types.StatusRunning || rec.Status == types.StatusInitializing {
		cost = f64Of(pricing.Accrued(rec.CreatedAt, now, rec.HourlyRate))
	}
	out, err := m.applyUpdate(id, podUpdate{
		status:     statusOf(types.StatusTerminated),
		cost:       cost,
		appendLogs: []string{"pod terminated"},
		heartbeat:  true,
	})
	if err != nil {
		// Lost a race with the monitor reaching a terminal state first;
		// the provider call already succeeded, so report current state.
		cur, found := m.GetPod(id)
		if !found {
			return types.Pod{}, errNotFound(id)
		}
		return cur, nil
	}

	m.pub.Publish(events.New(events.TypePodTerminated, events.PodTerminatedData{PodID: id}))
	m.log.Info().Str("pod_id", id).Msg("pod terminated")
	return out, nil
}

// Resume restarts a stopped pod. The record goes back to initializing and
// the monitor picks it up on the next tick.
func (m *Manager) Resume(ctx context.Context, id string) (types.Pod, error) {
	rec, ok := m.GetPod(id)
	if !ok {
		return types.Pod{}, errNotFound(id)
	}
	if rec.Status != types.StatusStopped {
		return types.Pod{}, errValidationf("pod %s is %s, only stopped pods can be resumed", id, rec.Status)
	}

	ctx, cancel := context.WithTimeout(ctx, m.pollTimeout)
	defer cancel()
	if err := m.gateway.ResumePod(ctx, id); err != nil {
		m.log.Error().Err(err).Str("pod_id", id).Msg("resume failed")
		return types.Pod{}, err
	}

	out, err := m.applyUpdate(id, podUpdate{
		status:     statusOf(types.StatusInitializing),
		appendLogs: []string{"pod resuming"},
		heartbeat:  true,
	})
	if err != nil {
		return types.Pod{}, err
	}

	m.pub.Publish(events.New(events.TypePodStatus, events.PodStatusData{
		PodID:  id,
		Status: string(types.StatusInitializing),
	}))
	m.log.Info().Str("pod_id", id).Msg("pod resuming")
	return out, nil
}
