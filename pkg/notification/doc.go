// Package notification sends trial expiry reminders.
//
// A daily sweep lists trialing subscriptions and emails the tenant owner
// when 3 days, 1 day, or 0 days remain before the trial window closes.
// Sends are recorded in a MarkerStore keyed by tenant and threshold, which
// makes the sweep idempotent: triggering it twice on the same day sends
// nothing new. Markers live in memory for tests and in Redis in production.
package notification
