package manager

import (
	"context"
	"fmt"
	"strings"
	"time"

	"podd/internal/events"
	"podd/internal/pricing"
	"podd/internal/provider"
	"podd/pkg/types"
)

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("lifecycle monitor stopped")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick launches one poll goroutine per non-terminal pod. A pod with a poll
// still in flight is skipped, so a slow provider call never stacks up or
// delays the other pods.
func (m *Manager) tick(ctx context.Context) {
	m.mu.Lock()
	var due []string
	for id, st := range m.pods {
		if st.rec.Status.Terminal() || st.polling {
			continue
		}
		st.polling = true
		due = append(due, id)
	}
	m.mu.Unlock()

	for _, id := range due {
		m.wg.Add(1)
		go m.pollPod(ctx, id)
	}
}

// pollPod queries the provider for one pod and applies the delta through
// the registry's update path. Transient errors retry on the next tick;
// after failureThreshold consecutive errors the pod is marked failed.
func (m *Manager) pollPod(ctx context.Context, id string) {
	defer m.wg.Done()
	defer func() {
		m.mu.Lock()
		if st, ok := m.pods[id]; ok {
			st.polling = false
		}
		m.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, m.pollTimeout)
	defer cancel()

	m.mu.RLock()
	st, ok := m.pods[id]
	if !ok {
		m.mu.RUnlock()
		return
	}
	rec := st.copyRec()
	lastLogCount := st.lastLogCount
	setupStarted := st.setupStarted
	failures := st.failures
	m.mu.RUnlock()

	if rec.Status == types.StatusInitializing && time.Since(setupStarted) > m.setupTimeout {
		m.failPod(id, rec, fmt.Sprintf("setup timed out after %s", m.setupTimeout))
		return
	}

	info, err := m.gateway.GetPod(ctx, id)
	if err != nil {
		failures++
		m.mu.Lock()
		if st, ok := m.pods[id]; ok {
			st.failures = failures
		}
		m.mu.Unlock()
		pollFailuresTotal.Inc()
		if failures >= m.failureThreshold {
			m.failPod(id, rec, fmt.Sprintf("provider unreachable after %d consecutive polls: %s", failures, provider.Reason(err)))
			return
		}
		m.log.Warn().Err(err).Str("pod_id", id).Int("failures", failures).Msg("poll failed, retrying next tick")
		return
	}
	m.mu.Lock()
	if st, ok := m.pods[id]; ok {
		st.failures = 0
	}
	m.mu.Unlock()

	upd := podUpdate{heartbeat: true}
	now := time.Now()

	// Setup log tail, absorbed only while initializing.
	var newLogs []string
	if rec.Status == types.StatusInitializing {
		if lines, lerr := m.gateway.GetPodLogs(ctx, id); lerr == nil && len(lines) > lastLogCount {
			for _, e := range lines[lastLogCount:] {
				if l := strings.TrimSpace(e.Line); l != "" {
					newLogs = append(newLogs, l)
				}
			}
			m.mu.Lock()
			if st, ok := m.pods[id]; ok {
				st.lastLogCount = len(lines)
			}
			m.mu.Unlock()
			upd.appendLogs = newLogs
		}
	}

	mapped := types.Status(provider.StatusForProvider(info.DesiredStatus))
	statusChanged := mapped != "" && mapped != rec.Status
	var endpoint string
	if statusChanged {
		upd.status = statusOf(mapped)
		switch mapped {
		case types.StatusRunning:
			endpoint = m.gateway.EndpointURL(ctx, id, rec.Config.Port, rec.Config.PublicIP)
			upd.endpointURL = strOf(endpoint)
			upd.appendLogs = append(upd.appendLogs, "workload is running", "endpoint: "+endpoint)
		case types.StatusFailed:
			upd.errorMsg = strOf("provider reported pod failure")
			upd.appendLogs = append(upd.appendLogs, "setup failed: provider reported pod failure")
		}
	}

	// Cost accrues while active; when this update also reaches a terminal
	// or stopped state the value written here is the frozen one.
	active := rec.Status == types.StatusRunning || rec.Status == types.StatusInitializing
	if active {
		upd.cost = f64Of(pricing.Accrued(rec.CreatedAt, now, rec.HourlyRate))
	}
	if rec.Status == types.StatusInitializing && !statusChanged && len(newLogs) > 0 {
		upd.progress = f64Of(estimateProgress(append(rec.SetupLogs, newLogs...)))
	}

	out, err := m.applyUpdate(id, upd)
	if err != nil {
		if IsInvalidTransition(err) {
			// Registry state wins over a late-arriving poll result.
			m.log.Warn().Err(err).Str("pod_id", id).Str("provider_status", info.DesiredStatus).Msg("dropping stale provider read")
			staleReadsTotal.Inc()
			out, err = m.applyUpdate(id, podUpdate{heartbeat: true, cost: upd.cost})
			if err != nil {
				return
			}
			statusChanged = false
		} else {
			return
		}
	}

	if statusChanged {
		data := events.PodStatusData{PodID: id, Status: string(mapped)}
		switch mapped {
		case types.StatusRunning:
			data.EndpointURL = endpoint
			data.Uptime = formatUptime(now.Sub(rec.CreatedAt))
		case types.StatusFailed:
			data.Error = out.ErrorMessage
		}
		m.pub.Publish(events.New(events.TypePodStatus, data))
		if mapped == types.StatusTerminated {
			m.pub.Publish(events.New(events.TypePodTerminated, events.PodTerminatedData{PodID: id}))
		}
		m.log.Info().Str("pod_id", id).Str("from", string(rec.Status)).Str("to", string(mapped)).Msg("pod status changed")
	}

	if len(newLogs) > 0 && out.Status == types.StatusInitializing {
		m.pub.Publish(events.New(events.TypeSetupProgress, events.SetupProgressData{
			PodID:   id,
			Step:    "Installing",
			Percent: out.SetupProgress,
			Logs:    logTail(out.SetupLogs, 10),
		}))
	}

	if upd.cost != nil {
		emit := false
		m.mu.Lock()
		if st, ok := m.pods[id]; ok && now.Sub(st.lastCostEvent) >= m.costUpdateInterval {
			st.lastCostEvent = now
			emit = true
		}
		m.mu.Unlock()
		if emit {
			m.pub.Publish(events.New(events.TypeCostUpdate, events.CostUpdateData{
				PodID:       id,
				CostSoFar:   out.CostSoFar,
				RatePerHour: out.HourlyRate,
			}))
		}
	}
}

// failPod transitions a pod into failed with a descriptive message and
// freezes its cost. Polling stops because failed is terminal.
func (m *Manager) failPod(id string, rec types.Pod, msg string) {
	var cost *float64
	if rec.Status == types.StatusRunning || rec.Status == types.StatusInitializing {
		cost = f64Of(pricing.Accrued(rec.CreatedAt, time.Now(), rec.HourlyRate))
	}
	out, err := m.applyUpdate(id, podUpdate{
		status:     statusOf(types.StatusFailed),
		errorMsg:   strOf(msg),
		cost:       cost,
		appendLogs: []string{"setup failed: " + msg},
		heartbeat:  true,
	})
	if err != nil {
		m.log.Warn().Err(err).Str("pod_id", id).Msg("could not mark pod failed")
		return
	}
	m.log.Error().Str("pod_id", id).Str("reason", msg).Msg("pod failed")
	m.pub.Publish(events.New(events.TypePodStatus, events.PodStatusData{
		PodID:  id,
		Status: string(types.StatusFailed),
		Error:  out.ErrorMessage,
	}))
	m.pub.Publish(events.New(events.TypeError, events.ErrorData{Message: msg, PodID: id}))
}

func logTail(logs []string, n int) []string {
	if len(logs) <= n {
		return logs
	}
	return logs[len(logs)-n:]
}
