package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// handleEvents streams lifecycle events to the client as server-sent
// events. The stream stays open until the client disconnects or the
// server shuts down; periodic keepalive comments hold idle connections
// open through proxies.
func (s *server) handleEvents(w http.ResponseWriter, r *http.Request) {
	fl, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fl.Flush()

	sub := s.events.Subscribe()
	defer s.events.Unsubscribe(sub.ID)

	if zlog != nil {
		z := zlog.Info().Str("subscriber", sub.ID)
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			z = z.Str("request_id", rid)
		}
		z.Msg("sse client connected")
	}

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	keep := time.NewTicker(keepaliveInterval)
	defer keep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-sub.Events():
			if !open {
				// Evicted by the broadcaster for falling behind.
				if zlog != nil {
					zlog.Warn().Str("subscriber", sub.ID).Msg("sse client evicted")
				}
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: ")); err != nil {
				return
			}
			if _, err := w.Write(b); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			fl.Flush()
		case <-keep.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			fl.Flush()
		}
	}
}
