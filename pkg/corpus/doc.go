// Package corpus drives consistency checking over whole definition corpora.
//
// # Overview
//
// A Source enumerates the documents of a corpus (a directory tree, an S3
// prefix, or an in-memory set for ad-hoc API checks). The Runner reads and
// evaluates every document (parse, classify, extract) in parallel, then
// admits the extracted entities into a fresh identifier registry in a single
// deterministic pass. The result is a Report: counts, violations and a
// pass/fail verdict, renderable as human text, JSON, or GitHub Actions
// annotations.
//
// The runner is deliberately thin glue. All consistency rules live in
// pkg/validation; a document that fails is recorded and the run continues,
// so one broken file never hides conflicts elsewhere in the corpus.
//
// # Related Packages
//
// - pkg/validation: the rules the runner drives
// - pkg/cache: optional content-addressed reuse of per-document outcomes
// - pkg/history: persistence of finished reports
package corpus
