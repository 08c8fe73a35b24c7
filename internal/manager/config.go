package manager

import (
	"time"

	"github.com/rs/zerolog"

	"podd/internal/events"
	"podd/internal/gpuspec"
	"podd/internal/provider"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultPollInterval         = 5 * time.Second
	defaultPollTimeout          = 30 * time.Second
	defaultCostUpdateInterval   = 60 * time.Second
	defaultPollFailureThreshold = 3
	defaultSetupTimeout         = 15 * time.Minute
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Gateway provider.Gateway
	Specs   *gpuspec.Table
	// Publisher receives lifecycle events; nil means drop them.
	Publisher events.Publisher
	Logger    zerolog.Logger

	// PollInterval is the monitor tick period.
	PollInterval time.Duration
	// PollTimeout bounds each provider call issued by the monitor.
	PollTimeout time.Duration
	// CostUpdateInterval rate-limits cost_update events per pod.
	CostUpdateInterval time.Duration
	// PollFailureThreshold is the number of consecutive failed polls after
	// which a pod is marked failed and polling stops.
	PollFailureThreshold int
	// SetupTimeout bounds how long a pod may stay initializing.
	SetupTimeout time.Duration
}

// NewWithConfig constructs a Manager from ManagerConfig. The monitor loop
// does not run until Start is called.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		pods:    make(map[string]*podState),
		gateway: cfg.Gateway,
		specs:   cfg.Specs,
		pub:     cfg.Publisher,
		log:     cfg.Logger,

		pollInterval:       cfg.PollInterval,
		pollTimeout:        cfg.PollTimeout,
		costUpdateInterval: cfg.CostUpdateInterval,
		failureThreshold:   cfg.PollFailureThreshold,
		setupTimeout:       cfg.SetupTimeout,

		startTime: time.Now(),
	}
	if m.pub == nil {
		m.pub = events.NopPublisher{}
	}
	if m.pollInterval <= 0 {
		m.pollInterval = defaultPollInterval
	}
	if m.pollTimeout <= 0 {
		m.pollTimeout = defaultPollTimeout
	}
	if m.costUpdateInterval <= 0 {
		m.costUpdateInterval = defaultCostUpdateInterval
	}
	if m.failureThreshold <= 0 {
		m.failureThreshold = defaultPollFailureThreshold
	}
	if m.setupTimeout <= 0 {
		m.setupTimeout = defaultSetupTimeout
	}
	return m
}
