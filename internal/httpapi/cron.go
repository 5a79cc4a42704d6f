package httpapi

import (
	"net/http"

	"github.com/envioexpress/platform/pkg/notification"
	"github.com/envioexpress/platform/pkg/subscription"
)

// runTrialChecks executes the daily maintenance pass on demand: expire
// trials whose window has closed, then send threshold reminders for the
// rest. The notification markers make repeated invocations harmless.
func (a *api) runTrialChecks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sweep, err := a.deps.Trials.SweepExpiredTrials(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "sweep_failed", "failed to sweep expired trials")
		return
	}

	notify, err := a.deps.Notifier.Process(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "notify_failed", "failed to process trial notifications")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Sweep         subscription.SweepSummary `json:"sweep"`
		Notifications notification.Summary      `json:"notifications"`
	}{Sweep: sweep, Notifications: notify})
}

// trialStats reports the current trial population without mutating
// anything, for dashboards and manual checks.
func (a *api) trialStats(w http.ResponseWriter, r *http.Request) {
	trials, err := a.deps.Subs.ListTrials(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list trials")
		return
	}

	now := a.deps.Clock.Now()
	stats := struct {
		ActiveTrials  int `json:"activeTrials"`
		ExpiringIn3d  int `json:"expiringIn3Days"`
		AwaitingSweep int `json:"awaitingSweep"`
	}{}

	for _, sub := range trials {
		if sub.IsTrialExpiredAt(now) {
			stats.AwaitingSweep++
			continue
		}
		stats.ActiveTrials++
		if sub.TrialDaysRemainingAt(now) <= 3 {
			stats.ExpiringIn3d++
		}
	}

	respondJSON(w, http.StatusOK, stats)
}
