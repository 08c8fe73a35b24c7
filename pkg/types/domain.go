package types

import "time"

// Status is the lifecycle state of a pod.
type Status string

const (
	StatusInitializing Status = "initializing"
	StatusRunning      Status = "running"
	StatusFailed       Status = "failed"
	StatusStopped      Status = "stopped"
	StatusTerminated   Status = "terminated"
)

// Terminal reports whether no further transitions are permitted from s.
func (s Status) Terminal() bool {
	return s == StatusFailed || s == StatusTerminated
}

// GPU describes one entry of the read-only GPU price/spec table.
type GPU struct {
	// Stable identifier used in creation requests.
	// example: rtx-3070
	ID string `json:"id" example:"rtx-3070"`
	// Human-friendly name.
	// example: NVIDIA GeForce RTX 3070
	DisplayName string `json:"display_name" example:"NVIDIA GeForce RTX 3070"`
	// VRAM in gigabytes.
	// example: 8
	VRAMGB int `json:"vram_gb" example:"8"`
	// Base (interruptible) price per hour in USD.
	// example: 0.07
	CostPerHour float64 `json:"cost_per_hour" example:"0.07"`
	// Hardware tier (consumer, pro, datacenter).
	// example: consumer
	Tier string `json:"tier" example:"consumer"`
}

// PodConfig carries the per-pod provisioning options fixed at creation.
type PodConfig struct {
	// Expose the workload port on a public IP instead of the provider proxy.
	PublicIP bool `json:"public_ip"`
	// Interruptible capacity is billed at the base rate; on-demand at 2x.
	Interruptible bool `json:"interruptible"`
	// Container disk size in GB (50-500).
	ContainerDiskGB int `json:"container_disk_gb"`
	// Persistent volume size in GB (1-1000).
	VolumeDiskGB int `json:"volume_disk_gb"`
	// Port the workload listens on inside the pod (1024-65535).
	Port int `json:"port"`
}

// DefaultPodConfig returns the creation defaults applied when a request
// omits config fields.
func DefaultPodConfig() PodConfig {
	return PodConfig{
		Interruptible:   true,
		ContainerDiskGB: 70,
		VolumeDiskGB:    50,
		Port:            8188,
	}
}

// Pod is the externally visible record of one deployed instance. Callers
// always receive copies; the registry keeps the authoritative state.
type Pod struct {
	// Provider-assigned identifier, immutable once set.
	ID string `json:"pod_id"`
	// Operator-chosen label, immutable after creation.
	Name string `json:"name"`
	// Reference into the GPU spec table.
	GPUID string `json:"gpu_id"`
	// Current lifecycle state.
	Status Status `json:"status"`
	// Provisioning options fixed at creation.
	Config PodConfig `json:"config"`
	// Creation timestamp; basis for all elapsed-time cost computation.
	CreatedAt time.Time `json:"created_at"`
	// Workload URL; non-empty only while the pod is running.
	EndpointURL string `json:"endpoint_url,omitempty"`
	// Effective price per hour in USD (base rate x pricing tier).
	HourlyRate float64 `json:"hourly_rate"`
	// Accrued cost in USD; frozen once a terminal state is reached.
	CostSoFar float64 `json:"cost_so_far"`
	// Setup completion estimate, 0-100, monotone while initializing.
	SetupProgress float64 `json:"setup_progress"`
	// Last time the monitor observed the pod.
	LastHeartbeat time.Time `json:"last_heartbeat"`
	// Setup log tail, append-only.
	SetupLogs []string `json:"setup_logs"`
	// Set once on the transition into failed.
	ErrorMessage string `json:"error_message,omitempty"`
}
