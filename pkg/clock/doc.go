// Package clock provides an injectable time source.
//
// Subscription and trial logic compares wall-clock time constantly; routing
// every read through a Clock keeps that logic testable with fixed times.
//
// Usage:
//
//	svc := subscription.NewTrialService(store, plans, clock.System(), log)
//
// In tests:
//
//	clk := clock.NewMock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
//	clk.Advance(8 * 24 * time.Hour) // jump past the trial window
package clock
