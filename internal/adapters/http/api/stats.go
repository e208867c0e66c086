package api

import (
	"net/http"
	"time"
)

// StatsProvider reports the service state shown under /stats.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
	now      func() time.Time
}

// NewStatsHandler creates a stats handler. The uptime counts from now.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now(), now: time.Now}
}

// HandleStats writes the provider stats plus the handler uptime.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := make(map[string]interface{})
	for k, v := range h.provider.GetStats() {
		stats[k] = v
	}
	stats["uptime_seconds"] = int64(h.now().Sub(h.started).Seconds())
	writeJSON(w, http.StatusOK, stats)
}
