// Package httpapi exposes the subscription engine over HTTP: billing
// webhook ingestion, cron triggers for the trial sweeps, subscription
// status and limit-check queries, plan listing, and checkout link
// creation. Authentication lives in front of this service; tenant identity
// arrives via the X-Tenant-ID header set by the gateway.
package httpapi
