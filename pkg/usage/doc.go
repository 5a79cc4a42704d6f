// Package usage tracks additive per-tenant counters bucketed by calendar
// month ("YYYY-MM"). Rows are created lazily on first increment and never
// decremented: the counters measure activity, not live inventory (live
// counts come from the inventory tables via the limits package).
//
// Tracker.Record is fire-and-forget by design. It runs after the guarded
// business write has committed, so counter failures are logged, never
// propagated.
package usage
