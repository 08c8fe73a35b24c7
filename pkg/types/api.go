package types

// CreatePodRequest is the POST /api/pods payload.
type CreatePodRequest struct {
	// Pod name: 3-50 chars, letters, digits, hyphen, underscore.
	// example: comfyui-pod
	Name string `json:"name" example:"comfyui-pod"`
	// GPU type id from the catalog.
	// example: rtx-3070
	GPUID string `json:"gpu_id" example:"rtx-3070"`
	// Optional overrides; omitted fields take creation defaults.
	Config *PodConfigPatch `json:"config,omitempty"`
}

// PodConfigPatch is a partial PodConfig; nil fields keep the default.
type PodConfigPatch struct {
	PublicIP        *bool `json:"public_ip,omitempty"`
	Interruptible   *bool `json:"interruptible,omitempty"`
	ContainerDiskGB *int  `json:"container_disk_gb,omitempty"`
	VolumeDiskGB    *int  `json:"volume_disk_gb,omitempty"`
	Port            *int  `json:"port,omitempty"`
}

// Apply merges the patch over base and returns the result.
func (p *PodConfigPatch) Apply(base PodConfig) PodConfig {
	if p == nil {
		return base
	}
	if p.PublicIP != nil {
		base.PublicIP = *p.PublicIP
	}
	if p.Interruptible != nil {
		base.Interruptible = *p.Interruptible
	}
	if p.ContainerDiskGB != nil {
		base.ContainerDiskGB = *p.ContainerDiskGB
	}
	if p.VolumeDiskGB != nil {
		base.VolumeDiskGB = *p.VolumeDiskGB
	}
	if p.Port != nil {
		base.Port = *p.Port
	}
	return base
}

// PodsResponse wraps the pod listing returned by GET /api/pods.
type PodsResponse struct {
	Pods []Pod `json:"pods"`
	// Number of tracked pods.
	// example: 2
	Count int `json:"count" example:"2"`
	// Accrued cost across all tracked pods in USD.
	// example: 1.37
	TotalCost float64 `json:"total_cost" example:"1.37"`
}

// GPUsResponse wraps the GPU catalog returned by GET /api/gpus.
type GPUsResponse struct {
	GPUs  []GPU `json:"gpus"`
	Count int   `json:"count"`
}

// TerminateResponse is returned by DELETE /api/pods/{id}.
type TerminateResponse struct {
	Success bool   `json:"success"`
	PodID   string `json:"pod_id"`
	Message string `json:"message"`
}

// EstimateRequest is the POST /api/estimate payload.
type EstimateRequest struct {
	// GPU type id from the catalog.
	GPUID string `json:"gpu_id"`
	// Horizon in hours; defaults to 1.
	Hours float64 `json:"hours,omitempty"`
	// Pricing tier; defaults to interruptible.
	Interruptible *bool `json:"interruptible,omitempty"`
}

// EstimateResponse is the pre-deployment cost projection.
type EstimateResponse struct {
	GPUID         string  `json:"gpu_id"`
	GPUName       string  `json:"gpu_name"`
	Hours         float64 `json:"hours"`
	Interruptible bool    `json:"interruptible"`
	CloudType     string  `json:"cloud_type"`
	HourlyRate    float64 `json:"hourly_rate"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// PodDetail is the single-pod view: the record plus its cost breakdown.
type PodDetail struct {
	Pod
	Cost CostBreakdown `json:"cost"`
}

// CostProjections are fixed-horizon spend projections at the current rate.
type CostProjections struct {
	Hours24 float64 `json:"24_hours"`
	Days7   float64 `json:"7_days"`
	Days30  float64 `json:"30_days"`
}

// CostBreakdown details accrued and projected cost for one pod.
type CostBreakdown struct {
	HourlyRate    float64         `json:"hourly_rate"`
	ElapsedHours  float64         `json:"elapsed_hours"`
	TotalCost     float64         `json:"total_cost"`
	Interruptible bool            `json:"interruptible"`
	CloudType     string          `json:"cloud_type"`
	Projections   CostProjections `json:"projections"`
}

// GPUCost aggregates cost per GPU type for the summary view.
type GPUCost struct {
	Count int     `json:"count"`
	Cost  float64 `json:"cost"`
}

// CostSummary is returned by GET /api/cost/summary.
type CostSummary struct {
	TotalCost float64            `json:"total_cost"`
	TotalPods int                `json:"total_pods"`
	ByGPU     map[string]GPUCost `json:"by_gpu"`
}

// StatusResponse is the daemon health report returned by GET /api/status.
type StatusResponse struct {
	// Overall daemon health.
	// example: healthy
	Status string `json:"status" example:"healthy"`
	// Build version string.
	Version string `json:"version"`
	// Number of tracked pods.
	TotalPods int `json:"total_pods"`
	// Pods currently initializing or running.
	ActivePods int `json:"active_pods"`
	// Connected event-stream subscribers.
	SSEClients int `json:"sse_clients"`
	// Accrued cost across all tracked pods in USD.
	TotalCost float64 `json:"total_cost"`
	// Uptime of the daemon in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: pod not found
	Error string `json:"error" example:"pod not found"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
