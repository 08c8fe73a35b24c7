package manager

import (
	"time"

	"podd/pkg/types"
)

// podUpdate is a partial mutation applied atomically by applyUpdate. Nil
// fields are left untouched.
type podUpdate struct {
	status      *types.Status
	endpointURL *string
	progress    *float64
	appendLogs  []string
	errorMsg    *string
	cost        *float64
	heartbeat   bool
}

func statusOf(s types.Status) *types.Status { return &s }
func strOf(s string) *string                { return &s }
func f64Of(f float64) *float64              { return &f }

// applyUpdate is the sole mutation path for existing records. It either
// applies the whole update or, when the status change is illegal or the
// record is frozen, rejects it without touching anything.
func (m *Manager) applyUpdate(id string, u podUpdate) (types.Pod, error) {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.pods[id]
	if !ok {
		return types.Pod{}, errNotFound(id)
	}
	cur := st.rec.Status

	// Terminal records are frozen, except that a failed record still admits
	// its teardown transition from the state table.
	if cur.Terminal() {
		to := cur
		if u.status != nil {
			to = *u.status
		}
		if !(cur == types.StatusFailed && to == types.StatusTerminated) {
			return types.Pod{}, errInvalidTransition(id, cur, to)
		}
	}
	if u.status != nil && !canTransition(cur, *u.status) {
		return types.Pod{}, errInvalidTransition(id, cur, *u.status)
	}

	if u.status != nil && *u.status != cur {
		st.rec.Status = *u.status
		defer m.refreshPodGauges()
		if *u.status == types.StatusTerminated {
			podsTerminatedTotal.Inc()
		}
		switch *u.status {
		case types.StatusRunning:
			st.rec.SetupProgress = 100
		case types.StatusInitializing:
			// A resume starts a fresh setup cycle.
			st.rec.SetupProgress = 0
			st.failures = 0
			st.lastLogCount = 0
			st.setupStarted = now
		}
		// endpoint_url is populated only while running.
		if *u.status != types.StatusRunning {
			st.rec.EndpointURL = ""
		}
	}
	if u.endpointURL != nil && st.rec.Status == types.StatusRunning {
		st.rec.EndpointURL = *u.endpointURL
	}
	if u.progress != nil {
		// setup_progress never moves backwards.
		p := *u.progress
		if p > 100 {
			p = 100
		}
		if p > st.rec.SetupProgress {
			st.rec.SetupProgress = p
		}
	}
	for _, line := range u.appendLogs {
		st.addLog(now, line)
	}
	if u.errorMsg != nil {
		st.rec.ErrorMessage = *u.errorMsg
	}
	if u.cost != nil {
		st.rec.CostSoFar = *u.cost
	}
	if u.heartbeat {
		st.rec.LastHeartbeat = now
	}
	return st.copyRec(), nil
}
