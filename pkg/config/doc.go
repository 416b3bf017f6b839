// Package config loads the axle daemon configuration from environment
// variables.
//
// # Overview
//
// Every setting has an AXLE_-prefixed environment variable and a default
// that works for local development: a directory corpus under ./someip and
// ./diag, a SQLite run history next to the binary, an in-process memory
// cache, and no tracing. Production deployments point the same variables
// at S3, PostgreSQL, and Redis.
//
// # Usage
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// LoadConfig validates the result; an invalid combination (S3 corpus
// without a bucket, history driver nobody implements) fails at startup
// rather than at first use.
package config
