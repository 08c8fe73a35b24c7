package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"podd/internal/events"
	"podd/internal/gpuspec"
	"podd/pkg/types"
)

// Service defines the methods the HTTP API layer requires from the pod
// manager.
type Service interface {
	Create(ctx context.Context, req types.CreatePodRequest) (types.Pod, error)
	GetPod(id string) (types.Pod, bool)
	ListPods() []types.Pod
	Terminate(ctx context.Context, id string) (types.Pod, error)
	Resume(ctx context.Context, id string) (types.Pod, error)
	Status() types.StatusResponse
	CostSummary() types.CostSummary
	PodCost(id string) (types.CostBreakdown, error)
	Estimate(req types.EstimateRequest) (types.EstimateResponse, error)
	Ready() bool
}

type server struct {
	svc    Service
	specs  *gpuspec.Table
	events *events.Broadcaster
}

// NewMux builds the HTTP handler tree.
func NewMux(svc Service, specs *gpuspec.Table, b *events.Broadcaster) http.Handler {
	s := &server{svc: svc, specs: specs, events: b}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	r.Use(accessLog)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/pods", s.handleListPods)
		r.Post("/pods", s.handleCreatePod)
		r.Get("/pods/{id}", s.handleGetPod)
		r.Delete("/pods/{id}", s.handleTerminatePod)
		r.Post("/pods/{id}/resume", s.handleResumePod)
		r.Get("/pods/{id}/logs", s.handlePodLogs)
		r.Get("/gpus", s.handleListGPUs)
		r.Get("/cost/summary", s.handleCostSummary)
		r.Get("/cost/pod/{id}", s.handlePodCost)
		r.Post("/estimate", s.handleEstimate)
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("starting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// decodeJSON enforces content type and body size before decoding into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *server) handleListPods(w http.ResponseWriter, r *http.Request) {
	pods := s.svc.ListPods()
	writeJSON(w, http.StatusOK, types.PodsResponse{
		Pods:      pods,
		Count:     len(pods),
		TotalCost: s.svc.CostSummary().TotalCost,
	})
}

func (s *server) handleCreatePod(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	pod, err := s.svc.Create(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pod)
}

func (s *server) handleGetPod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pod, ok := s.svc.GetPod(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "pod "+id+" not found")
		return
	}
	detail := types.PodDetail{Pod: pod}
	if bd, err := s.svc.PodCost(id); err == nil {
		detail.Cost = bd
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *server) handleTerminatePod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if _, err := s.svc.Terminate(ctx, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.TerminateResponse{
		Success: true,
		PodID:   id,
		Message: "pod terminated",
	})
}

func (s *server) handleResumePod(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	pod, err := s.svc.Resume(ctx, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pod)
}

func (s *server) handlePodLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pod, ok := s.svc.GetPod(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "pod "+id+" not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pod_id": pod.ID,
		"status": pod.Status,
		"logs":   pod.SetupLogs,
	})
}

func (s *server) handleListGPUs(w http.ResponseWriter, r *http.Request) {
	gpus := s.specs.List()
	if tier := r.URL.Query().Get("tier"); tier != "" {
		gpus = s.specs.ByTier(tier)
	}
	writeJSON(w, http.StatusOK, types.GPUsResponse{GPUs: gpus, Count: len(gpus)})
}

func (s *server) handleCostSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CostSummary())
}

func (s *server) handlePodCost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	bd, err := s.svc.PodCost(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bd)
}

func (s *server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req types.EstimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	est, err := s.svc.Estimate(req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Status()
	st.Version = serverVersion
	st.SSEClients = s.events.ClientCount()
	writeJSON(w, http.StatusOK, st)
}
