// Package subscription holds the one-per-tenant subscription record and the
// trial lifecycle manager.
//
// The status state machine is:
//
//	∅ → TRIAL → ACTIVE(Free) | ACTIVE(Paid)
//	ACTIVE(Paid) ⇄ PAST_DUE | UNPAID
//	any paid state → CANCELLED → ACTIVE(Free)
//
// TRIAL is entered at most once per tenant; IsTrialUsed is sticky and the
// gate lives at the call sites of StartTrial. Expired trials become active
// Free-tier subscriptions rather than a terminal state of their own.
//
// TrialInfo is always derived on demand and never persisted. All temporal
// decisions go through an injected clock.Clock.
package subscription
