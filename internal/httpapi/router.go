package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/envioexpress/platform/pkg/billing"
	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/limits"
	"github.com/envioexpress/platform/pkg/notification"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
)

// Deps collects everything the HTTP surface needs. All fields except
// HealthChecks are required.
type Deps struct {
	Trials     *subscription.TrialService
	Subs       subscription.Store
	Limits     *limits.Service
	Plans      plan.Catalog
	Checkout   *billing.Service
	Provider   billing.Provider
	Reconciler *billing.Reconciler
	Notifier   *notification.Notifier
	Markers    notification.MarkerStore
	Clock      clock.Clock
	Log        *slog.Logger

	// HealthChecks are probed by GET /health; a name maps to its checker.
	HealthChecks map[string]func(context.Context) error
}

// NewRouter builds the chi router for the subscription engine API.
func NewRouter(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = clock.System()
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	api := &api{deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", api.health)

	// Provider webhooks authenticate via payload signature, not tenant header.
	r.Post("/billing/webhook", api.billingWebhook)

	// Cron triggers are invoked by the scheduler or an external cron hitting
	// the service directly; they operate across all tenants.
	r.Post("/cron/check-trials", api.runTrialChecks)
	r.Get("/cron/check-trials", api.trialStats)

	r.Group(func(r chi.Router) {
		r.Use(requireTenant)

		r.Get("/subscription/status", api.subscriptionStatus)
		r.Post("/subscription/start-trial", api.startTrial)
		r.Get("/subscription/check-limits", api.checkLimits)
		r.Get("/subscription/usage", api.usageStats)

		r.Post("/billing/checkout", api.createCheckout)
		r.Get("/billing/portal", api.portalLink)
	})

	r.Get("/plans", api.listPlans)

	return r
}

type api struct {
	deps Deps
}

func (a *api) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(a.deps.HealthChecks))
	for name, check := range a.deps.HealthChecks {
		if err := check(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	respondJSON(w, status, checks)
}
