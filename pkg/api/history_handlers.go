package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/history"
	"github.com/platinummonkey/axle/pkg/httputil"
	"github.com/platinummonkey/axle/pkg/validation"
)

// maxListLimit caps the page size of GET /api/v1/runs.
const maxListLimit = 100

// requireStore answers 503 and returns false when no history store is
// configured.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.config.Store == nil {
		httputil.WriteErrorMessage(w, http.StatusServiceUnavailable, "run history is not configured")
		return false
	}
	return true
}

// listRuns handles GET /api/v1/runs with limit and offset query parameters.
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	limit, err := httputil.ParseQueryInt(r, "limit", 20)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid limit parameter")
		return
	}
	offset, err := httputil.ParseQueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteBadRequest(w, "invalid offset parameter")
		return
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	runs, err := s.config.Store.ListRuns(r.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("failed to list runs")
		httputil.WriteInternalError(w, err)
		return
	}
	if runs == nil {
		runs = []*history.RunSummary{}
	}

	httputil.WriteSuccess(w, RunList{Runs: runs, Limit: limit, Offset: offset})
}

// latestRun handles GET /api/v1/runs/latest.
func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	report, err := s.config.Store.LatestRun(r.Context())
	if errors.Is(err, history.ErrNotFound) {
		httputil.WriteNotFoundError(w, "no runs recorded yet")
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load latest run")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, report)
}

// getRun handles GET /api/v1/runs/{id}.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	report, err := s.config.Store.GetRun(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		httputil.WriteNotFoundError(w, fmt.Sprintf("no run with id %q", id))
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load run")
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, report)
}

// getRunReport handles GET /api/v1/runs/{id}/report, rendering the stored
// report in the requested format. CI jobs fetch ?format=github to replay a
// run's annotations.
func (s *Server) getRunReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	format := httputil.ParseQueryString(r, "format", "text")
	switch format {
	case "text", "github":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case "json":
		w.Header().Set("Content-Type", "application/json")
	default:
		httputil.WriteBadRequest(w, fmt.Sprintf("unknown format %q (want text, json or github)", format))
		return
	}

	report, err := s.config.Store.GetRun(r.Context(), id)
	if errors.Is(err, history.ErrNotFound) {
		httputil.WriteNotFoundError(w, fmt.Sprintf("no run with id %q", id))
		return
	}
	if err != nil {
		s.logger.WithError(err).Error("failed to load run")
		httputil.WriteInternalError(w, err)
		return
	}

	if err := corpus.Render(w, format, report); err != nil {
		s.logger.WithError(err).Error("failed to render run report")
	}
}

// listKinds handles GET /api/v1/kinds: the violation taxonomy in reporting
// order.
func (s *Server) listKinds(w http.ResponseWriter, r *http.Request) {
	kinds := validation.Kinds()
	infos := make([]KindInfo, 0, len(kinds))
	for _, kind := range kinds {
		infos = append(infos, KindInfo{Kind: kind, Description: kind.Description()})
	}
	httputil.WriteSuccess(w, infos)
}
