package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the provider's REST endpoint.
const DefaultBaseURL = "https://rest.runpod.io/v1"

const defaultRequestTimeout = 30 * time.Second

// ClientConfig holds Client construction parameters. Zero values take
// package defaults.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	// CreateTimeout bounds pod creation, which the provider can hold open
	// far longer than status queries.
	CreateTimeout time.Duration
	// RequestTimeout bounds every other call.
	RequestTimeout time.Duration
	// Image is the container image started on new pods.
	Image  string
	Logger zerolog.Logger
}

// Client implements Gateway against the REST API.
type Client struct {
	apiKey        string
	baseURL       string
	createTimeout time.Duration
	http          *http.Client
	image         string
	log           zerolog.Logger
}

// NewClient builds a Client. The API key is required.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required")
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	reqTimeout := cfg.RequestTimeout
	if reqTimeout <= 0 {
		reqTimeout = defaultRequestTimeout
	}
	createTimeout := cfg.CreateTimeout
	if createTimeout <= 0 {
		createTimeout = 800 * time.Second
	}
	image := cfg.Image
	if image == "" {
		image = "runpod/pytorch:2.1.0-py3.10-cuda11.8.0-devel-ubuntu22.04"
	}
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       strings.TrimRight(base, "/"),
		createTimeout: createTimeout,
		http:          &http.Client{Timeout: reqTimeout},
		image:         image,
		log:           cfg.Logger,
	}, nil
}

// createPayload is the provider's pod creation body.
type createPayload struct {
	Name              string   `json:"name"`
	ImageName         string   `json:"imageName"`
	ComputeType       string   `json:"computeType"`
	GPUTypeIDs        []string `json:"gpuTypeIds"`
	GPUTypePriority   string   `json:"gpuTypePriority"`
	GPUCount          int      `json:"gpuCount"`
	VCPUCount         int      `json:"vcpuCount"`
	VolumeInGB        int      `json:"volumeInGb"`
	VolumeMountPath   string   `json:"volumeMountPath"`
	ContainerDiskInGB int      `json:"containerDiskInGb"`
	Ports             []string `json:"ports"`
	SupportPublicIP   bool     `json:"supportPublicIp"`
	CloudType         string   `json:"cloudType"`
	DockerStartCmd    []string `json:"dockerStartCmd"`
}

func (c *Client) CreatePod(ctx context.Context, req CreateRequest) (*PodInfo, error) {
	ports := []string{fmt.Sprintf("%d/http", req.Port), "22/tcp"}
	if req.PublicIP {
		ports = []string{fmt.Sprintf("%d/tcp", req.Port), "22/tcp"}
	}
	cloud := "SECURE"
	if req.Interruptible {
		cloud = "COMMUNITY"
	}
	startCmd := req.StartCmd
	if startCmd == "" {
		startCmd = buildStartScript(req.Port)
	}
	payload := createPayload{
		Name:              req.Name,
		ImageName:         c.image,
		ComputeType:       "GPU",
		GPUTypeIDs:        []string{req.GPUTypeID},
		GPUTypePriority:   "availability",
		GPUCount:          1,
		VCPUCount:         2,
		VolumeInGB:        req.VolumeDiskGB,
		VolumeMountPath:   "/workspace",
		ContainerDiskInGB: req.ContainerDiskGB,
		Ports:             ports,
		SupportPublicIP:   req.PublicIP,
		CloudType:         cloud,
		DockerStartCmd:    []string{"/bin/bash", "-c", startCmd},
	}

	c.log.Info().Str("name", req.Name).Str("gpu", req.GPUTypeID).Msg("creating pod")
	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	var info PodInfo
	if err := c.do(ctx, http.MethodPost, "/pods", payload, &info); err != nil {
		return nil, c.rewriteCreateError(err, req.GPUTypeID)
	}
	if info.ID == "" {
		return nil, &APIError{Message: "pod creation returned no pod id"}
	}
	c.log.Info().Str("pod_id", info.ID).Msg("pod created")
	return &info, nil
}

// rewriteCreateError turns the provider's capacity message into a friendlier
// one; everything else passes through verbatim.
func (c *Client) rewriteCreateError(err error, gpuTypeID string) error {
	var ae *APIError
	if asAPIError(err, &ae) && strings.Contains(strings.ToLower(ae.Message), "no instances currently available") {
		return &APIError{
			StatusCode: ae.StatusCode,
			Message:    fmt.Sprintf("GPU not available: %s has no available instances, try a different GPU type", gpuTypeID),
		}
	}
	return err
}

func (c *Client) GetPod(ctx context.Context, podID string) (*PodInfo, error) {
	var info PodInfo
	if err := c.do(ctx, http.MethodGet, "/pods/"+podID, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) GetPodLogs(ctx context.Context, podID string) ([]LogEntry, error) {
	var resp struct {
		Logs []LogEntry `json:"logs"`
	}
	err := c.do(ctx, http.MethodGet, "/pods/"+podID+"/logs", nil, &resp)
	if err != nil {
		// Logs lag pod creation; a 404 just means none yet.
		var ae *APIError
		if asAPIError(err, &ae) && ae.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return resp.Logs, nil
}

func (c *Client) ListPods(ctx context.Context) ([]PodInfo, error) {
	body, err := c.raw(ctx, http.MethodGet, "/pods", nil)
	if err != nil {
		return nil, err
	}
	// The API returns either a bare list or {"pods": [...]}.
	var list []PodInfo
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Pods []PodInfo `json:"pods"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode pod listing: %w", err)
	}
	return wrapped.Pods, nil
}

func (c *Client) TerminatePod(ctx context.Context, podID string) error {
	c.log.Info().Str("pod_id", podID).Msg("terminating pod")
	return c.do(ctx, http.MethodDelete, "/pods/"+podID, nil, nil)
}

func (c *Client) ResumePod(ctx context.Context, podID string) error {
	c.log.Info().Str("pod_id", podID).Msg("resuming pod")
	return c.do(ctx, http.MethodPost, "/pods/"+podID+"/start", nil, nil)
}

func (c *Client) EndpointURL(ctx context.Context, podID string, port int, publicIP bool) string {
	if publicIP {
		if info, err := c.GetPod(ctx, podID); err == nil {
			for _, m := range info.PortMappings {
				if m.InternalPort == port && m.ExternalIP != "" && m.ExternalPort != 0 {
					return fmt.Sprintf("http://%s:%d", m.ExternalIP, m.ExternalPort)
				}
			}
		}
	}
	// Fallback to the provider's HTTP proxy.
	return fmt.Sprintf("https://%s-%d.proxy.runpod.net", podID, port)
}

// do issues one JSON request and decodes the response into out (when out
// is non-nil and the response has a body).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	body, err := c.raw(ctx, method, path, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, path string, in any) ([]byte, error) {
	var rdr io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: apiMessage(body, resp.StatusCode)}
	}
	return body, nil
}

// apiMessage pulls the provider's error field out of an error body.
func apiMessage(body []byte, status int) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return http.StatusText(status)
}

func asAPIError(err error, target **APIError) bool {
	ae, ok := err.(*APIError)
	if ok {
		*target = ae
	}
	return ok
}

// buildStartScript renders the workload bootstrap executed on the pod. It
// installs the runtime, then serves on the given port; the setup monitor
// tracks its output to estimate progress.
func buildStartScript(port int) string {
	return strings.TrimSpace(fmt.Sprintf(`
set -e

apt-get update && apt-get install -y git wget curl python3 python3-pip sudo

id -u worker &>/dev/null || useradd -m -s /bin/bash worker
mkdir -p /opt/workload
chown -R worker:worker /opt/workload
export HOME=/home/worker
export PATH=/home/worker/.local/bin:$PATH

if [ ! -d /opt/workload/.git ]; then
    sudo -E -u worker git clone https://github.com/comfyanonymous/ComfyUI /opt/workload
fi

cd /opt/workload
python3 -m pip install --upgrade pip
pip install -r requirements.txt

echo "setup complete, starting workload"
sudo -E -u worker python3 main.py --listen 0.0.0.0 --port %d
`, port))
}

// ParseCreatedAt parses the provider's UTC timestamp format, e.g.
// "2025-11-27 17:56:21.701466089 +0000 UTC". A zero time and false are
// returned when the value is missing or malformed.
func ParseCreatedAt(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02 15:04:05 -0700 MST", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
