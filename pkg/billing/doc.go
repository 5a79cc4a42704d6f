// Package billing integrates the payment provider: hosted checkouts and
// customer portals outbound, lifecycle-event reconciliation inbound.
//
// The Reconciler consumes three normalized event kinds — checkout
// completed, subscription updated, subscription deleted — and applies them
// to local subscription state idempotently. Handlers swallow internal
// errors so the webhook endpoint always acknowledges; an event the system
// can never reconcile (missing metadata, unknown provider id) is logged
// and dropped rather than redelivered forever.
//
// The Provider interface keeps the integration vendor-neutral; the shipped
// implementation uses the Paddle SDK with signature-verified webhooks.
package billing
