// Package pg bootstraps the PostgreSQL layer: a pgxpool connection with
// retry on startup, goose migrations applied from an embedded filesystem,
// a health check closure, and error classification helpers used by the
// store implementations.
//
// Configuration comes from environment variables (see Config field tags);
// DATABASE_URL is the only required one.
package pg
