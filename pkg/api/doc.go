// Package api provides the HTTP REST API server for the Axle consistency checker.
//
// # Overview
//
// This package exposes corpus checking over HTTP: CI systems and editor
// integrations submit service definition documents for ad-hoc validation,
// trigger full corpus runs, and query the recorded history of past runs.
// It is the remote counterpart of the axle CLI; both drive the same
// corpus.Runner and produce the same corpus.Report.
//
// # Architecture
//
// The API is built on gorilla/mux and grouped by concern:
//
//   - Ad-hoc checks: validate documents supplied inline in the request,
//     without touching the configured corpus
//   - Corpus runs: trigger a full check of the configured corpus and
//     persist the resulting report
//   - Run history: list, fetch, and render reports of past runs
//   - Taxonomy: enumerate the violation kinds the checker can raise
//
// # Key Types
//
// Server is the main API server. ServeHTTP serves the bare router; Handler
// wraps it with the middleware stack (request IDs, logging, recovery,
// body limits, metrics, tracing) for production listeners:
//
//	server := api.NewServer(api.ServerConfig{
//		Runner: runner,
//		Store:  store,
//		Logger: logger,
//	})
//	http.ListenAndServe(":8080", server.Handler())
//
// # Status Codes
//
// Ad-hoc checks answer 200 when the submitted documents are consistent and
// 422 when they carry violations; the report body is identical in both
// cases, so clients branch on the status and read the details from the
// body. Infrastructure failures (unreadable corpus, storage errors) are
// 5xx; malformed requests are 4xx.
package api
