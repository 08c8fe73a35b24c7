package httpapi

import "time"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// keepaliveInterval is the cadence of SSE keepalive comments. Browsers and
// intermediary proxies drop idle connections without them.
var keepaliveInterval = 30 * time.Second

// SetKeepaliveInterval configures the SSE keepalive cadence.
func SetKeepaliveInterval(d time.Duration) {
	if d <= 0 {
		keepaliveInterval = 30 * time.Second
		return
	}
	keepaliveInterval = d
}

// serverVersion is reported on /api/status.
var serverVersion = "dev"

// SetVersion sets the version string reported by the status endpoint.
func SetVersion(v string) {
	if v != "" {
		serverVersion = v
	}
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
