// Package filter parses query parameters for API endpoints.
package filter

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agentstation/rankmap/pkg/constants"
	"github.com/agentstation/rankmap/pkg/errors"
	"github.com/agentstation/rankmap/pkg/query"
)

// ParseEligibility extracts an eligibility request from the URL query.
//
// Supported parameters: exam, rank, max_cutoff, state, category,
// exclude_derived and limit. Registration of the exam and positivity of the
// rank are checked later by query.Request.Validate. Limit defaults to
// constants.DefaultQueryLimit and is capped at constants.MaxQueryLimit.
func ParseEligibility(r *http.Request) (query.Request, error) {
	return ParseValues(r.URL.Query())
}

// ParseValues is ParseEligibility for already-parsed values.
func ParseValues(q url.Values) (query.Request, error) {
	req := query.Request{
		Exam:     strings.TrimSpace(q.Get("exam")),
		State:    strings.TrimSpace(q.Get("state")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	var err error
	if req.Rank, err = parseInt(q, "rank", 0); err != nil {
		return req, err
	}
	if req.MaxCutoff, err = parseInt(q, "max_cutoff", 0); err != nil {
		return req, err
	}
	if req.ExcludeDerived, err = parseBool(q, "exclude_derived"); err != nil {
		return req, err
	}

	limit, err := parseInt(q, "limit", constants.DefaultQueryLimit)
	if err != nil {
		return req, err
	}
	switch {
	case limit < 0:
		return req, errors.NewValidationError("limit", limit, "must not be negative")
	case limit == 0:
		limit = constants.DefaultQueryLimit
	case limit > constants.MaxQueryLimit:
		limit = constants.MaxQueryLimit
	}
	req.Limit = limit

	return req, nil
}

// CacheKey returns a stable key identifying req against the snapshot built
// as buildID. Exam, state and category compare case-insensitively, so they
// are folded.
func CacheKey(buildID string, req query.Request) string {
	return fmt.Sprintf("eligible|%s|%s|%d|%d|%s|%s|%t|%d",
		buildID,
		strings.ToUpper(req.Exam),
		req.Rank,
		req.MaxCutoff,
		strings.ToLower(req.State),
		strings.ToLower(req.Category),
		req.ExcludeDerived,
		req.Limit,
	)
}

func parseInt(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name, raw, "must be an integer")
	}
	return v, nil
}

func parseBool(q url.Values, name string) (bool, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.NewValidationError(name, raw, "must be a boolean")
	}
	return v, nil
}
