// Package postgres provides the pgx-backed persistence layer: subscription
// and usage stores, the plan catalog source, trial notification markers,
// and the live inventory counters consulted by the plan limit enforcer.
// Schema migrations are embedded and applied with goose at startup.
package postgres
