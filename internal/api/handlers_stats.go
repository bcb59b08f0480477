package api

import (
	"net/http"

	"github.com/dgallion1/docoutline/internal/stats"
)

func (s *Server) handleExtractStats(w http.ResponseWriter, r *http.Request) {
	var latency stats.Snapshot
	if s.latency != nil {
		latency = s.latency.Snapshot()
	}
	cached, err := s.cache.Count(r.Context())
	if err != nil {
		s.log.Warn("cache count failed", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"latency":       latency,
		"cache_entries": cached,
		"cache_enabled": s.cache != nil,
		"queue_depth":   s.orchestrator.QueueDepth(),
		"jobs":          s.orchestrator.JobCount(),
	})
}
