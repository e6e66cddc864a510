package handlers

import (
	"net/http"

	"github.com/agentstation/rankmap/internal/server/filter"
	"github.com/agentstation/rankmap/internal/server/response"
	"github.com/agentstation/rankmap/pkg/catalogs"
	"github.com/agentstation/rankmap/pkg/logging"
	"github.com/agentstation/rankmap/pkg/normalize"
	"github.com/agentstation/rankmap/pkg/query"
)

// EligibleResponse is the payload of an eligibility query.
type EligibleResponse struct {
	Query    query.Request      `json:"query"`
	Exam     catalogs.ExamType  `json:"exam"`
	BuildID  string             `json:"build_id,omitempty"`
	Count    int                `json:"count"`
	Colleges []catalogs.College `json:"colleges"`
}

// HandleEligible handles GET /api/v1/colleges/eligible.
//
// Query parameters: exam and rank are required; max_cutoff, state, category,
// exclude_derived and limit narrow the result. Results are cached per
// snapshot and ordered by cutoff ascending, then name.
func (h *Handlers) HandleEligible(w http.ResponseWriter, r *http.Request) {
	req, err := filter.ParseEligibility(r)
	if err != nil {
		h.metrics.ObserveQuery(req.Exam, 0, err)
		response.ErrorFromType(w, err)
		return
	}

	// The key carries the build, so an answer computed from a snapshot that
	// is replaced mid-request can never be served for its successor.
	snap := h.client.Snapshot()
	key := filter.CacheKey(snap.BuildID, req)
	if cached, ok := h.cache.Get(key); ok {
		h.metrics.ObserveCache(true)
		response.OK(w, cached)
		return
	}
	h.metrics.ObserveCache(false)

	exam, err := req.Validate(snap.Exams)
	if err != nil {
		h.metrics.ObserveQuery(req.Exam, 0, err)
		response.ErrorFromType(w, err)
		return
	}

	colleges, err := query.Run(snap.Catalog, snap.Exams, req)
	h.metrics.ObserveQuery(exam.String(), len(colleges), err)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	logging.FromContext(r.Context()).Debug().
		Str("exam", exam.String()).
		Int("rank", req.Rank).
		Int("results", len(colleges)).
		Msg("Eligibility query")

	resp := EligibleResponse{
		Query:    req,
		Exam:     exam,
		BuildID:  snap.BuildID,
		Count:    len(colleges),
		Colleges: colleges,
	}
	h.cache.Set(key, resp)
	response.OK(w, resp)
}

// HandleGetCollege handles GET /api/v1/colleges/{key}.
// The path value may be a normalized key or any spelling of the name.
func (h *Handlers) HandleGetCollege(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("key")
	if normalize.Name(raw).IsZero() {
		response.BadRequest(w, "College key is required", "")
		return
	}

	college, err := h.client.Snapshot().Catalog.Find(raw)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, college)
}
