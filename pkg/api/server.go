package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/history"
	"github.com/platinummonkey/axle/pkg/httputil"
	"github.com/platinummonkey/axle/pkg/observability"
)

// maxRequestBytes caps request bodies. Ad-hoc check payloads carry whole
// documents, so the limit is generous.
const maxRequestBytes = 10 << 20 // 10 MiB

// ServerConfig carries the server's dependencies. Runner and Store are
// optional: without a Runner the corpus-run endpoints answer 503, without a
// Store the history endpoints do.
type ServerConfig struct {
	// Runner checks the configured corpus for POST /api/v1/runs.
	Runner *corpus.Runner
	// Store records and serves past run reports.
	Store history.Store
	// Logger receives request and handler logs. Defaults to stdout at info.
	Logger *observability.Logger
	// Metrics, when set, observes requests and check runs.
	Metrics *observability.Metrics
}

// Server is the Axle API server.
type Server struct {
	config ServerConfig
	router *mux.Router
	logger *observability.Logger
}

// NewServer creates a new API server with its routes configured.
func NewServer(config ServerConfig) *Server {
	logger := config.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	s := &Server{
		config: config,
		router: mux.NewRouter(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes.
func (s *Server) setupRoutes() {
	// Ad-hoc check routes
	s.router.HandleFunc("/api/v1/check", s.checkDocuments).Methods("POST")

	// Corpus run routes. The literal "latest" route registers before the
	// {id} route so mux matches it first.
	s.router.HandleFunc("/api/v1/runs", s.runCorpus).Methods("POST")
	s.router.HandleFunc("/api/v1/runs", s.listRuns).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/latest", s.latestRun).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/{id}", s.getRun).Methods("GET")
	s.router.HandleFunc("/api/v1/runs/{id}/report", s.getRunReport).Methods("GET")

	// Taxonomy routes
	s.router.HandleFunc("/api/v1/kinds", s.listKinds).Methods("GET")
}

// ServeHTTP implements http.Handler over the bare router. Production
// listeners should serve Handler instead.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler wraps the router with the full middleware stack: request IDs,
// request logging, panic recovery, body size limits, request metrics, and
// OpenTelemetry tracing.
func (s *Server) Handler() http.Handler {
	chain := httputil.Chain(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(s.logger),
		httputil.RecoveryMiddleware(s.logger),
		httputil.MaxBytesMiddleware(maxRequestBytes),
	)
	var handler http.Handler = chain(s.router)
	if s.config.Metrics != nil {
		handler = observability.HTTPMetricsMiddleware(s.config.Metrics)(handler)
	}
	return otelhttp.NewHandler(handler, "axle-api")
}
