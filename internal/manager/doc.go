// Package manager owns the authoritative pod registry and the lifecycle
// monitor. All mutation funnels through a single update path that enforces
// the lifecycle state machine; every caller-facing read returns copies.
package manager
