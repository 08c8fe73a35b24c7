// Package provider is the gateway to the external GPU compute API. The
// core only depends on the Gateway interface; Client implements it against
// the RunPod-style REST surface.
package provider

import "context"

// CreateRequest carries everything needed to provision one pod.
type CreateRequest struct {
	Name            string
	GPUTypeID       string
	Interruptible   bool
	PublicIP        bool
	ContainerDiskGB int
	VolumeDiskGB    int
	Port            int
	// StartCmd overrides the default workload bootstrap script when set.
	StartCmd string
}

// PodInfo is the raw provider record for one pod.
type PodInfo struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	DesiredStatus string                 `json:"desiredStatus"`
	CreatedAt     string                 `json:"createdAt"`
	CostPerHr     float64                `json:"costPerHr"`
	GPUTypeIDs    []string               `json:"gpuTypeIds"`
	PortMappings  map[string]PortMapping `json:"portMappings"`
	Machine       *MachineInfo           `json:"machine,omitempty"`
}

// PortMapping is one internal->external port assignment.
type PortMapping struct {
	InternalPort int    `json:"internalPort"`
	ExternalPort int    `json:"externalPort"`
	ExternalIP   string `json:"externalIp"`
}

// MachineInfo is the subset of host metadata the daemon cares about.
type MachineInfo struct {
	GPUDisplayName string `json:"gpuDisplayName"`
}

// LogEntry is one line of pod setup/runtime output.
type LogEntry struct {
	Line string `json:"line"`
}

// Gateway issues create/status/terminate calls against the compute
// provider. Implementations must be safe for concurrent use; every call is
// bounded by the supplied context.
type Gateway interface {
	// CreatePod provisions a new instance and returns the raw record.
	CreatePod(ctx context.Context, req CreateRequest) (*PodInfo, error)
	// GetPod fetches the current provider record for one pod.
	GetPod(ctx context.Context, podID string) (*PodInfo, error)
	// GetPodLogs returns the full ordered log output so far. A nil slice
	// with nil error means logs are not available yet.
	GetPodLogs(ctx context.Context, podID string) ([]LogEntry, error)
	// ListPods returns every pod the account currently owns.
	ListPods(ctx context.Context) ([]PodInfo, error)
	// TerminatePod requests permanent teardown.
	TerminatePod(ctx context.Context, podID string) error
	// ResumePod restarts a stopped pod.
	ResumePod(ctx context.Context, podID string) error
	// EndpointURL resolves the externally reachable workload URL.
	EndpointURL(ctx context.Context, podID string, port int, publicIP bool) string
}

// StatusForProvider maps a provider desiredStatus onto the internal
// lifecycle state. Unknown values map to the empty string.
func StatusForProvider(desired string) string {
	switch desired {
	case "PENDING", "CREATED":
		return "initializing"
	case "RUNNING":
		return "running"
	case "EXITED":
		// EXITED pods can be started again.
		return "stopped"
	case "FAILED":
		return "failed"
	case "TERMINATED":
		return "terminated"
	}
	return ""
}
