package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/agentstation/rankmap/internal/server/response"
	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/logging"
)

// HandleRebuild handles POST /api/v1/rebuild.
//
// The build runs to completion even if the client disconnects; only the
// build timeout bounds it. The query cache is flushed by the snapshot hook
// once the new catalog is published.
func (h *Handlers) HandleRebuild(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), constants.BuildTimeout)
	defer cancel()

	result, err := h.client.Rebuild(ctx)
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("Rebuild failed")
		response.InternalError(w, err)
		return
	}

	failed := make([]string, 0, len(result.Failed))
	for _, f := range result.Failed {
		failed = append(failed, f.Source)
	}

	response.OK(w, map[string]any{
		"status":      "completed",
		"build_id":    result.ID,
		"colleges":    result.Catalog.Len(),
		"derived":     result.Derived(),
		"sources":     result.Merge.Used(),
		"failed":      failed,
		"rows":        result.Merge.Rows(),
		"skipped":     result.Merge.Skipped(),
		"duration_ms": result.Duration().Milliseconds(),
	})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	snap := h.client.Snapshot()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	updated := ""
	if !snap.UpdatedAt.IsZero() {
		updated = snap.UpdatedAt.UTC().Format(time.RFC3339)
	}

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
			"memory_sys_mb":  memStats.Sys / 1024 / 1024,
		},
		"snapshot": map[string]any{
			"build_id":     snap.BuildID,
			"last_updated": updated,
		},
		"catalog": snap.Catalog.Stats(),
		"cache":   h.cache.GetStats(),
	})
}
