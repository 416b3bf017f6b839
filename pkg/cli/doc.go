// Package cli provides the axle command-line interface for corpus checks.
//
// # Overview
//
// This package implements the `axle-cli` tool developers and CI pipelines
// use to check a corpus of service definition documents for consistency,
// browse past check runs, and inspect the violation taxonomy.
//
// # Commands
//
// check: Validate a corpus of definition documents
//
//	axle-cli check \
//		--dir ./definitions \
//		--format github \
//		--concurrency 8
//
// history: Browse recorded check runs
//
//	axle-cli history --db axle.db --limit 10
//	axle-cli history --db axle.db --id latest --format text
//
// kinds: List the violation kinds the checker can raise
//
//	axle-cli kinds
//
// version: Print the build version
//
//	axle-cli version
//
// # Exit Codes
//
// check exits non-zero when the corpus carries violations, so CI jobs fail
// without parsing the output. Infrastructure failures (unreadable corpus,
// broken config) also exit non-zero, with the cause on stderr.
package cli
