package api

import (
	"fmt"
	"net/http"

	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/definition"
	"github.com/platinummonkey/axle/pkg/httputil"
)

// checkDocuments handles POST /api/v1/check. The submitted documents are
// validated against each other in an isolated run; the configured corpus
// and the run history are untouched.
func (s *Server) checkDocuments(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.Documents) == 0 {
		httputil.WriteBadRequest(w, "documents is required")
		return
	}

	docs := make([]corpus.MemoryDocument, 0, len(req.Documents))
	seen := make(map[string]struct{}, len(req.Documents))
	for _, doc := range req.Documents {
		if !httputil.RequireNonEmpty(w, doc.Path, "document path") {
			return
		}
		if _, dup := seen[doc.Path]; dup {
			httputil.WriteBadRequest(w, fmt.Sprintf("duplicate document path %q", doc.Path))
			return
		}
		seen[doc.Path] = struct{}{}
		docs = append(docs, corpus.MemoryDocument{
			Path:      doc.Path,
			Namespace: definition.Namespace(doc.Namespace),
			Data:      doc.Content,
		})
	}

	label := req.Label
	if label == "" {
		label = "request"
	}

	// Ad-hoc runs share the server's metrics but never its cache: cached
	// outcomes would leak between unrelated submissions.
	runner := corpus.NewRunner(corpus.NewMemorySource(label, docs), nil, corpus.Options{
		Metrics: s.config.Metrics,
	})
	report, err := runner.Run(r.Context(), "api")
	if err != nil {
		s.logger.WithError(err).Error("ad-hoc check failed")
		httputil.WriteInternalError(w, err)
		return
	}

	if !report.Passed {
		httputil.WriteUnprocessableEntity(w, report)
		return
	}
	httputil.WriteSuccess(w, report)
}

// runCorpus handles POST /api/v1/runs: one full check of the configured
// corpus, persisted to the run history when a store is configured.
func (s *Server) runCorpus(w http.ResponseWriter, r *http.Request) {
	if s.config.Runner == nil {
		httputil.WriteErrorMessage(w, http.StatusServiceUnavailable, "no corpus configured")
		return
	}

	report, err := s.config.Runner.Run(r.Context(), "api")
	if err != nil {
		s.logger.WithError(err).Error("corpus run failed")
		httputil.WriteInternalError(w, err)
		return
	}

	if s.config.Store != nil {
		if err := s.config.Store.SaveRun(r.Context(), report); err != nil {
			// The check itself succeeded; losing the history record is
			// not worth failing the request over.
			s.logger.WithError(err).WithField("run_id", report.RunID).
				Error("failed to persist run report")
		}
	}

	httputil.WriteCreated(w, report)
}
