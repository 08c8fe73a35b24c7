// Package events defines the lifecycle event vocabulary and the broadcaster
// that fans events out to connected observers.
package events

import "time"

// Type discriminates the event union. Every event on the wire carries
// exactly one of these.
type Type string

const (
	TypeConnected     Type = "connected"
	TypePodStatus     Type = "pod_status"
	TypeSetupProgress Type = "setup_progress"
	TypeCostUpdate    Type = "cost_update"
	TypePodCreated    Type = "pod_created"
	TypePodTerminated Type = "pod_terminated"
	TypeError         Type = "error"
)

// Event is the envelope delivered to every subscriber: a tag, a typed
// payload, and the publish instant in unix seconds.
type Event struct {
	Type      Type  `json:"type"`
	Data      any   `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

// ConnectedData acknowledges a new subscription; it is synthetic and always
// the first message on a subscription.
type ConnectedData struct {
	Message string `json:"message"`
}

// PodStatusData announces a lifecycle state change.
type PodStatusData struct {
	PodID       string `json:"pod_id"`
	Status      string `json:"status"`
	EndpointURL string `json:"endpoint_url,omitempty"`
	Uptime      string `json:"uptime,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SetupProgressData reports setup advancement while a pod initializes.
type SetupProgressData struct {
	PodID   string   `json:"pod_id"`
	Step    string   `json:"step"`
	Percent float64  `json:"percent"`
	Logs    []string `json:"logs"`
}

// CostUpdateData carries the periodically recomputed accrued cost.
type CostUpdateData struct {
	PodID       string  `json:"pod_id"`
	CostSoFar   float64 `json:"cost_so_far"`
	RatePerHour float64 `json:"rate_per_hour"`
}

// PodCreatedData announces a newly provisioned pod.
type PodCreatedData struct {
	PodID string `json:"pod_id"`
	Name  string `json:"name"`
	GPUID string `json:"gpu_id"`
}

// PodTerminatedData announces permanent teardown.
type PodTerminatedData struct {
	PodID string `json:"pod_id"`
}

// ErrorData carries an operational error worth surfacing to observers.
type ErrorData struct {
	Message string `json:"message"`
	PodID   string `json:"pod_id,omitempty"`
}

// New wraps a payload in an envelope stamped with the current time.
func New(t Type, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().Unix()}
}

// Publisher receives events from the registry and monitor. Implementations
// must be lightweight and non-blocking; Publish must not panic.
type Publisher interface {
	Publish(Event)
}

// NopPublisher drops events; it is the default when no broadcaster is wired.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
