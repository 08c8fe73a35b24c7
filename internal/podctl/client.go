package podctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podd/pkg/types"
)

// apiClient is a thin wrapper over the daemon's HTTP API.
type apiClient struct {
	base string
	hc   *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr types.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, path)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) listPods(ctx context.Context) (types.PodsResponse, error) {
	var out types.PodsResponse
	err := c.do(ctx, http.MethodGet, "/api/pods", nil, &out)
	return out, err
}

func (c *apiClient) createPod(ctx context.Context, req types.CreatePodRequest) (types.Pod, error) {
	var out types.Pod
	err := c.do(ctx, http.MethodPost, "/api/pods", req, &out)
	return out, err
}

func (c *apiClient) getPod(ctx context.Context, id string) (types.Pod, error) {
	var out types.Pod
	err := c.do(ctx, http.MethodGet, "/api/pods/"+id, nil, &out)
	return out, err
}

func (c *apiClient) terminatePod(ctx context.Context, id string) (types.TerminateResponse, error) {
	var out types.TerminateResponse
	err := c.do(ctx, http.MethodDelete, "/api/pods/"+id, nil, &out)
	return out, err
}

func (c *apiClient) resumePod(ctx context.Context, id string) (types.Pod, error) {
	var out types.Pod
	err := c.do(ctx, http.MethodPost, "/api/pods/"+id+"/resume", nil, &out)
	return out, err
}

type podLogs struct {
	PodID  string   `json:"pod_id"`
	Status string   `json:"status"`
	Logs   []string `json:"logs"`
}

func (c *apiClient) getPodLogs(ctx context.Context, id string) (podLogs, error) {
	var out podLogs
	err := c.do(ctx, http.MethodGet, "/api/pods/"+id+"/logs", nil, &out)
	return out, err
}

func (c *apiClient) listGPUs(ctx context.Context, tier string) (types.GPUsResponse, error) {
	path := "/api/gpus"
	if tier != "" {
		path += "?tier=" + tier
	}
	var out types.GPUsResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *apiClient) costSummary(ctx context.Context) (types.CostSummary, error) {
	var out types.CostSummary
	err := c.do(ctx, http.MethodGet, "/api/cost/summary", nil, &out)
	return out, err
}

func (c *apiClient) podCost(ctx context.Context, id string) (types.CostBreakdown, error) {
	var out types.CostBreakdown
	err := c.do(ctx, http.MethodGet, "/api/cost/pod/"+id, nil, &out)
	return out, err
}

func (c *apiClient) estimate(ctx context.Context, req types.EstimateRequest) (types.EstimateResponse, error) {
	var out types.EstimateResponse
	err := c.do(ctx, http.MethodPost, "/api/estimate", req, &out)
	return out, err
}

func (c *apiClient) status(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &out)
	return out, err
}
