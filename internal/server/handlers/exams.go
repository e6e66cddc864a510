package handlers

import (
	"net/http"

	"github.com/agentstation/rankmap/internal/server/response"
	"github.com/agentstation/rankmap/pkg/catalogs"
)

// ExamInfo describes one registered exam in the current snapshot.
type ExamInfo struct {
	ID        catalogs.ExamType `json:"id"`
	Ceiling   int               `json:"ceiling"`
	Coverage  bool              `json:"coverage"`
	MaxCutoff int               `json:"max_cutoff"`
	Colleges  int               `json:"colleges"`
}

// HandleExams handles GET /api/v1/exams.
func (h *Handlers) HandleExams(w http.ResponseWriter, _ *http.Request) {
	snap := h.client.Snapshot()
	stats := snap.Catalog.Stats()

	exams := make([]ExamInfo, 0, snap.Exams.Len())
	for _, e := range snap.Exams.List() {
		exams = append(exams, ExamInfo{
			ID:        e.Type,
			Ceiling:   e.Ceiling,
			Coverage:  e.Coverage,
			MaxCutoff: stats.MaxRank[e.Type],
			Colleges:  stats.PerExam[e.Type],
		})
	}

	response.OK(w, map[string]any{
		"exams": exams,
		"count": len(exams),
	})
}
