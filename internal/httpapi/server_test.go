package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"podd/internal/events"
	"podd/internal/gpuspec"
	"podd/pkg/types"
)

type mockService struct {
	pods      []types.Pod
	createErr error
	termErr   error
	resumeErr error
	ready     bool
}

func (m *mockService) Create(ctx context.Context, req types.CreatePodRequest) (types.Pod, error) {
	if m.createErr != nil {
		return types.Pod{}, m.createErr
	}
	return types.Pod{ID: "new1", Name: req.Name, GPUID: req.GPUID, Status: types.StatusInitializing}, nil
}

func (m *mockService) GetPod(id string) (types.Pod, bool) {
	for _, p := range m.pods {
		if p.ID == id {
			return p, true
		}
	}
	return types.Pod{}, false
}

func (m *mockService) ListPods() []types.Pod { return append([]types.Pod(nil), m.pods...) }

func (m *mockService) Terminate(ctx context.Context, id string) (types.Pod, error) {
	if m.termErr != nil {
		return types.Pod{}, m.termErr
	}
	p, ok := m.GetPod(id)
	if !ok {
		return types.Pod{}, notFoundErr{id}
	}
	p.Status = types.StatusTerminated
	return p, nil
}

func (m *mockService) Resume(ctx context.Context, id string) (types.Pod, error) {
	if m.resumeErr != nil {
		return types.Pod{}, m.resumeErr
	}
	p, _ := m.GetPod(id)
	p.Status = types.StatusInitializing
	return p, nil
}

func (m *mockService) Status() types.StatusResponse {
	return types.StatusResponse{Status: "healthy", TotalPods: len(m.pods)}
}

func (m *mockService) CostSummary() types.CostSummary {
	return types.CostSummary{TotalPods: len(m.pods), TotalCost: 1.25}
}

func (m *mockService) PodCost(id string) (types.CostBreakdown, error) {
	if _, ok := m.GetPod(id); !ok {
		return types.CostBreakdown{}, notFoundErr{id}
	}
	return types.CostBreakdown{HourlyRate: 0.07, TotalCost: 0.14}, nil
}

func (m *mockService) Estimate(req types.EstimateRequest) (types.EstimateResponse, error) {
	return types.EstimateResponse{GPUID: req.GPUID, EstimatedCost: 0.56}, nil
}

func (m *mockService) Ready() bool { return m.ready }

// notFoundErr satisfies the HTTPError mapping without importing manager
// internals.
type notFoundErr struct{ id string }

func (e notFoundErr) Error() string   { return "pod " + e.id + " not found" }
func (e notFoundErr) StatusCode() int { return http.StatusNotFound }

func testTable(t *testing.T) *gpuspec.Table {
	t.Helper()
	p := filepath.Join(t.TempDir(), "gpus.json")
	content := `{"gpus": [
		{"id": "rtx-3070", "display_name": "RTX 3070", "vram_gb": 8, "cost_per_hour": 0.07, "tier": "consumer"},
		{"id": "h100", "display_name": "H100", "vram_gb": 80, "cost_per_hour": 1.99, "tier": "datacenter"}
	]}`
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write specs: %v", err)
	}
	tbl, err := gpuspec.Load(p)
	if err != nil {
		t.Fatalf("load specs: %v", err)
	}
	return tbl
}

func newTestMux(t *testing.T, svc Service) (http.Handler, *events.Broadcaster) {
	t.Helper()
	b := events.NewBroadcaster(zerolog.Nop())
	return NewMux(svc, testTable(t), b), b
}

func TestListPodsHandler(t *testing.T) {
	svc := &mockService{pods: []types.Pod{{ID: "a"}, {ID: "b"}}}
	mux, _ := newTestMux(t, svc)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pods", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.PodsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Count != 2 || len(body.Pods) != 2 {
		t.Fatalf("count=%d pods=%d", body.Count, len(body.Pods))
	}
	if body.TotalCost != 1.25 {
		t.Fatalf("total=%v", body.TotalCost)
	}
}

func TestCreatePodHandler(t *testing.T) {
	svc := &mockService{}
	mux, _ := newTestMux(t, svc)
	req := httptest.NewRequest(http.MethodPost, "/api/pods", strings.NewReader(`{"name": "comfy-main", "gpu_id": "rtx-3070"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var pod types.Pod
	if err := json.Unmarshal(w.Body.Bytes(), &pod); err != nil {
		t.Fatalf("json: %v", err)
	}
	if pod.ID != "new1" || pod.Name != "comfy-main" {
		t.Fatalf("pod=%+v", pod)
	}
}

func TestCreatePodRejectsWrongContentType(t *testing.T) {
	mux, _ := newTestMux(t, &mockService{})
	req := httptest.NewRequest(http.MethodPost, "/api/pods", strings.NewReader(`name=x`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d want 415", w.Code)
	}
}

func TestCreatePodRejectsMalformedJSON(t *testing.T) {
	mux, _ := newTestMux(t, &mockService{})
	req := httptest.NewRequest(http.MethodPost, "/api/pods", strings.NewReader(`{broken`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400", w.Code)
	}
	var er types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("error payload not JSON: %v", err)
	}
	if er.Code != http.StatusBadRequest || er.Error == "" {
		t.Fatalf("error payload=%+v", er)
	}
}

func TestGetPodHandler(t *testing.T) {
	svc := &mockService{pods: []types.Pod{{ID: "p1", Name: "one"}}}
	mux, _ := newTestMux(t, svc)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pods/p1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var detail types.PodDetail
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("json: %v", err)
	}
	if detail.ID != "p1" || detail.Cost.HourlyRate != 0.07 {
		t.Fatalf("detail=%+v", detail)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/pods/ghost", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", w.Code)
	}
}

func TestTerminateHandler(t *testing.T) {
	svc := &mockService{pods: []types.Pod{{ID: "p1", Status: types.StatusRunning}}}
	mux, _ := newTestMux(t, svc)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/pods/p1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp types.TerminateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !resp.Success || resp.PodID != "p1" {
		t.Fatalf("resp=%+v", resp)
	}
}

func TestErrorMappingFromHTTPError(t *testing.T) {
	svc := &mockService{termErr: notFoundErr{"p9"}}
	mux, _ := newTestMux(t, svc)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/pods/p9", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", w.Code)
	}
}

func TestErrorMappingDefaultsTo500(t *testing.T) {
	svc := &mockService{termErr: errors.New("boom")}
	mux, _ := newTestMux(t, svc)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/pods/p1", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d want 500", w.Code)
	}
}

func TestGPUsHandler(t *testing.T) {
	mux, _ := newTestMux(t, &mockService{})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gpus", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body types.GPUsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Count != 2 {
		t.Fatalf("count=%d want 2", body.Count)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gpus?tier=datacenter", nil))
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Count != 1 || body.GPUs[0].ID != "h100" {
		t.Fatalf("tier filter result=%+v", body)
	}
}

func TestCostEndpoints(t *testing.T) {
	svc := &mockService{pods: []types.Pod{{ID: "p1"}}}
	mux, _ := newTestMux(t, svc)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cost/summary", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("summary status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cost/pod/p1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("pod cost status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cost/pod/ghost", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing pod cost status=%d", w.Code)
	}
}

func TestStatusHandlerIncludesSSEClients(t *testing.T) {
	mux, b := newTestMux(t, &mockService{})
	sub := b.Subscribe()
	defer b.Unsubscribe(sub.ID)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("json: %v", err)
	}
	if st.SSEClients != 1 {
		t.Fatalf("sse clients=%d want 1", st.SSEClients)
	}
	if st.Version == "" {
		t.Fatalf("version missing")
	}
}

func TestHealthAndReady(t *testing.T) {
	svc := &mockService{ready: false}
	mux, _ := newTestMux(t, svc)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("healthz=%d", w.Code)
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz=%d want 503 before Start", w.Code)
	}

	svc.ready = true
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("readyz=%d want 200", w.Code)
	}
}
