package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"podd/internal/config"
	"podd/internal/events"
	"podd/internal/gpuspec"
	"podd/internal/httpapi"
	"podd/internal/manager"
	"podd/internal/provider"
)

var version = "dev"

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// Flags with environment variable defaults
	addr := flag.String("addr", envOr("PODD_ADDR", ":1445"), "HTTP listen address, e.g. :1445")
	configPath := flag.String("config", envOr("PODD_CONFIG", ""), "Optional config file (.yaml/.json/.toml)")
	specsFile := flag.String("gpu-specs", envOr("PODD_GPU_SPECS", "data/gpu_specs.json"), "Path to the GPU spec table")
	apiKey := flag.String("api-key", os.Getenv("RUNPOD_API_KEY"), "Provider API key")
	apiBase := flag.String("api-base", os.Getenv("RUNPOD_API_BASE"), "Provider API base URL")
	image := flag.String("image", envOr("PODD_IMAGE", ""), "Container image for new pods")
	pollSec := flag.Int("poll-interval", envIntOr("PODD_POLL_INTERVAL", 0), "Monitor poll interval in seconds")
	corsOrigins := flag.String("cors-origins", envOr("PODD_CORS_ORIGINS", "*"), "Comma-separated allowed CORS origins, empty disables CORS")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Str("component", "podd").Logger()

	// A config file fills in anything the flags left at their defaults.
	var cfg config.Config
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
		}
	}
	if cfg.Addr != "" && *addr == ":1445" {
		*addr = cfg.Addr
	}
	if cfg.GPUSpecsFile != "" && *specsFile == "data/gpu_specs.json" {
		*specsFile = cfg.GPUSpecsFile
	}
	if *apiKey == "" {
		*apiKey = cfg.APIKey
	}
	if *apiBase == "" {
		*apiBase = cfg.APIBase
	}
	if *image == "" {
		*image = cfg.Image
	}
	if *pollSec == 0 {
		*pollSec = cfg.PollIntervalSeconds
	}

	specs, err := gpuspec.Load(*specsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *specsFile).Msg("failed to load GPU specs")
	}
	logger.Info().Int("gpus", specs.Len()).Str("path", *specsFile).Msg("loaded GPU spec table")

	gateway, err := provider.NewClient(provider.ClientConfig{
		APIKey:  *apiKey,
		BaseURL: *apiBase,
		Image:   *image,
		Logger:  logger.With().Str("component", "provider").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("provider client init failed")
	}

	broadcaster := events.NewBroadcaster(logger.With().Str("component", "events").Logger())

	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Gateway:              gateway,
		Specs:                specs,
		Publisher:            broadcaster,
		Logger:               logger.With().Str("component", "manager").Logger(),
		PollInterval:         time.Duration(*pollSec) * time.Second,
		PollTimeout:          time.Duration(cfg.PollTimeoutSeconds) * time.Second,
		CostUpdateInterval:   time.Duration(cfg.CostUpdateIntervalSeconds) * time.Second,
		PollFailureThreshold: cfg.PollFailureThreshold,
		SetupTimeout:         time.Duration(cfg.SetupTimeoutSeconds) * time.Second,
	})

	// Adopt pods that survived a previous daemon run. Best effort; the
	// daemon still serves local state when the provider is down.
	syncCtx, syncCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if n, err := mgr.SyncFromProvider(syncCtx); err != nil {
		logger.Warn().Err(err).Msg("startup sync with provider failed")
	} else if n > 0 {
		logger.Info().Int("adopted", n).Msg("startup sync complete")
	}
	syncCancel()

	baseCtx, baseCancel := context.WithCancel(context.Background())
	mgr.Start(baseCtx)

	httpapi.SetLogger(logger.With().Str("component", "http").Logger())
	httpapi.SetVersion(version)
	if cfg.KeepaliveSeconds > 0 {
		httpapi.SetKeepaliveInterval(time.Duration(cfg.KeepaliveSeconds) * time.Second)
	}
	origins := *corsOrigins
	if origins == "" {
		origins = cfg.CORSOrigins
	}
	if origins != "" {
		httpapi.SetCORSOptions(true,
			strings.Split(origins, ","),
			[]string{"GET", "POST", "DELETE", "OPTIONS"},
			[]string{"Accept", "Content-Type", "Last-Event-ID"},
		)
	}
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(mgr, specs, broadcaster)
	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *addr).Str("version", version).Msg("podd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")

	baseCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown error")
	}
	mgr.Close()
}
