package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c, srv
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatalf("expected error for missing API key")
	}
}

func TestCreatePodSendsPayloadAndAuth(t *testing.T) {
	var gotAuth string
	var gotPayload createPayload
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/pods" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		json.NewEncoder(w).Encode(PodInfo{ID: "pod42", DesiredStatus: "PENDING"})
	})

	info, err := c.CreatePod(context.Background(), CreateRequest{
		Name:            "comfy-main",
		GPUTypeID:       "rtx-3070",
		Interruptible:   true,
		ContainerDiskGB: 70,
		VolumeDiskGB:    50,
		Port:            8188,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if info.ID != "pod42" {
		t.Fatalf("id=%q", info.ID)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth=%q", gotAuth)
	}
	if gotPayload.CloudType != "COMMUNITY" {
		t.Fatalf("cloudType=%q want COMMUNITY for interruptible", gotPayload.CloudType)
	}
	if len(gotPayload.GPUTypeIDs) != 1 || gotPayload.GPUTypeIDs[0] != "rtx-3070" {
		t.Fatalf("gpuTypeIds=%v", gotPayload.GPUTypeIDs)
	}
	if gotPayload.Ports[0] != "8188/http" {
		t.Fatalf("ports=%v want proxy-routed http port", gotPayload.Ports)
	}
	if gotPayload.ContainerDiskInGB != 70 || gotPayload.VolumeInGB != 50 {
		t.Fatalf("disks=%d/%d", gotPayload.ContainerDiskInGB, gotPayload.VolumeInGB)
	}
	if len(gotPayload.DockerStartCmd) != 3 || gotPayload.DockerStartCmd[0] != "/bin/bash" {
		t.Fatalf("dockerStartCmd=%v", gotPayload.DockerStartCmd)
	}
}

func TestCreatePodPublicIPUsesTCPAndSecureCloud(t *testing.T) {
	var gotPayload createPayload
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(PodInfo{ID: "pod43"})
	})
	_, err := c.CreatePod(context.Background(), CreateRequest{
		Name: "direct-pod", GPUTypeID: "a40", PublicIP: true, Port: 8188,
		ContainerDiskGB: 70, VolumeDiskGB: 50,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotPayload.Ports[0] != "8188/tcp" || !gotPayload.SupportPublicIP {
		t.Fatalf("payload=%+v", gotPayload)
	}
	if gotPayload.CloudType != "SECURE" {
		t.Fatalf("cloudType=%q want SECURE for non-interruptible", gotPayload.CloudType)
	}
}

func TestCreatePodRewritesCapacityError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "There are no instances currently available"})
	})
	_, err := c.CreatePod(context.Background(), CreateRequest{Name: "x", GPUTypeID: "h100", Port: 8188})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsAPIError(err) {
		t.Fatalf("err=%T want APIError", err)
	}
	if !strings.Contains(err.Error(), "h100") {
		t.Fatalf("capacity error not rewritten: %v", err)
	}
}

func TestGetPodAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid api key"})
	})
	_, err := c.GetPod(context.Background(), "p1")
	var ae *APIError
	if !asAPIError(err, &ae) {
		t.Fatalf("err=%T want APIError", err)
	}
	if ae.StatusCode != http.StatusUnauthorized || !strings.Contains(ae.Message, "invalid api key") {
		t.Fatalf("apiError=%+v", ae)
	}
}

func TestGetPodLogs404MeansNoLogsYet(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	logs, err := c.GetPodLogs(context.Background(), "p1")
	if err != nil {
		t.Fatalf("err=%v want nil for 404 logs", err)
	}
	if logs != nil {
		t.Fatalf("logs=%v want nil", logs)
	}
}

func TestListPodsAcceptsBothShapes(t *testing.T) {
	bare, _ := json.Marshal([]PodInfo{{ID: "a"}, {ID: "b"}})
	wrapped, _ := json.Marshal(map[string][]PodInfo{"pods": {{ID: "c"}}})

	for name, body := range map[string][]byte{"bare list": bare, "wrapped": wrapped} {
		payload := body
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write(payload)
		})
		pods, err := c.ListPods(context.Background())
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if len(pods) == 0 {
			t.Fatalf("%s: empty result", name)
		}
	}
}

func TestResumePodHitsStartEndpoint(t *testing.T) {
	var gotPath, gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
	})
	if err := c.ResumePod(context.Background(), "p1"); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/pods/p1/start" {
		t.Fatalf("request=%s %s", gotMethod, gotPath)
	}
}

func TestEndpointURLPrefersPublicMapping(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(PodInfo{
			ID: "p1",
			PortMappings: map[string]PortMapping{
				"8188": {InternalPort: 8188, ExternalPort: 30123, ExternalIP: "1.2.3.4"},
			},
		})
	})
	if got := c.EndpointURL(context.Background(), "p1", 8188, true); got != "http://1.2.3.4:30123" {
		t.Fatalf("url=%q", got)
	}
	// Proxy fallback for pods without a public mapping.
	if got := c.EndpointURL(context.Background(), "p1", 8188, false); got != "https://p1-8188.proxy.runpod.net" {
		t.Fatalf("url=%q", got)
	}
}

func TestStatusForProviderMapping(t *testing.T) {
	cases := map[string]string{
		"PENDING":    "initializing",
		"CREATED":    "initializing",
		"RUNNING":    "running",
		"EXITED":     "stopped",
		"FAILED":     "failed",
		"TERMINATED": "terminated",
		"WEIRD":      "",
	}
	for in, want := range cases {
		if got := StatusForProvider(in); got != want {
			t.Fatalf("StatusForProvider(%q)=%q want %q", in, got, want)
		}
	}
}

func TestParseCreatedAt(t *testing.T) {
	ts, ok := ParseCreatedAt("2025-11-27 17:56:21.701466089 +0000 UTC")
	if !ok {
		t.Fatalf("parse failed")
	}
	if ts.Year() != 2025 || ts.Month() != 11 || ts.Second() != 21 {
		t.Fatalf("parsed=%v", ts)
	}
	if _, ok := ParseCreatedAt(""); ok {
		t.Fatalf("empty string parsed")
	}
	if _, ok := ParseCreatedAt("yesterday"); ok {
		t.Fatalf("garbage parsed")
	}
}
