package manager

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"podd/internal/events"
	"podd/internal/gpuspec"
	"podd/internal/pricing"
	"podd/internal/provider"
	"podd/pkg/types"
)

// Manager is the pod registry and the single writer of pod state. HTTP
// handlers and the CLI read through it; the lifecycle monitor mutates
// through applyUpdate only.
type Manager struct {
	mu      sync.RWMutex
	pods    map[string]*podState
	gateway provider.Gateway
	specs   *gpuspec.Table
	pub     events.Publisher
	log     zerolog.Logger

	pollInterval       time.Duration
	pollTimeout        time.Duration
	costUpdateInterval time.Duration
	failureThreshold   int
	setupTimeout       time.Duration

	startTime time.Time
	started   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// Start launches the monitor loop. It returns immediately; the loop stops
// when ctx is canceled or Close is called.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.started = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx)
	m.log.Info().Dur("interval", m.pollInterval).Msg("lifecycle monitor started")
}

// Close stops the monitor and waits for in-flight polls to release their
// goroutines. Pending provider calls are abandoned via context, never
// awaited past their timeout.
func (m *Manager) Close() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Ready reports whether the monitor loop is running.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.started
}

// GetPod returns a copy of one pod record.
func (m *Manager) GetPod(id string) (types.Pod, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.pods[id]
	if !ok {
		return types.Pod{}, false
	}
	return st.copyRec(), true
}

// ListPods returns copies of every tracked pod. Order is unspecified;
// callers sort if they need to.
func (m *Manager) ListPods() []types.Pod {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Pod, 0, len(m.pods))
	for _, st := range m.pods {
		out = append(out, st.copyRec())
	}
	return out
}

// Status builds the aggregate health report.
func (m *Manager) Status() types.StatusResponse {
	pods := m.ListPods()
	active := 0
	for _, p := range pods {
		if p.Status == types.StatusRunning || p.Status == types.StatusInitializing {
			active++
		}
	}
	now := time.Now()
	return types.StatusResponse{
		Status:         "healthy",
		TotalPods:      len(pods),
		ActivePods:     active,
		TotalCost:      pricing.TotalCost(pods, now),
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
	}
}
