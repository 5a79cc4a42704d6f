package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/envioexpress/platform/pkg/billing"
	"github.com/envioexpress/platform/pkg/limits"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
)

func (a *api) subscriptionStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := tenantID(r.Context())

	info, err := a.deps.Trials.GetTrialInfo(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load trial info")
		return
	}

	resp := struct {
		Trial        subscription.TrialInfo `json:"trial"`
		Subscription *subscriptionView      `json:"subscription,omitempty"`
	}{Trial: info}

	sub, err := a.deps.Subs.Get(r.Context(), id)
	switch {
	case err == nil:
		resp.Subscription = newSubscriptionView(sub)
	case errors.Is(err, subscription.ErrNotFound):
		// No record yet; trial info alone is the answer.
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load subscription")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

type subscriptionView struct {
	PlanID             string  `json:"planId"`
	Status             string  `json:"status"`
	TrialEndsAt        *string `json:"trialEndsAt,omitempty"`
	IsTrialUsed        bool    `json:"isTrialUsed"`
	CurrentPeriodStart *string `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd   *string `json:"currentPeriodEnd,omitempty"`
}

func newSubscriptionView(sub *subscription.Subscription) *subscriptionView {
	v := &subscriptionView{
		PlanID:      sub.PlanID,
		Status:      string(sub.Status),
		IsTrialUsed: sub.IsTrialUsed,
	}
	if sub.TrialEndsAt != nil {
		s := sub.TrialEndsAt.Format("2006-01-02T15:04:05Z07:00")
		v.TrialEndsAt = &s
	}
	if sub.CurrentPeriodStart != nil {
		s := sub.CurrentPeriodStart.Format("2006-01-02T15:04:05Z07:00")
		v.CurrentPeriodStart = &s
	}
	if sub.CurrentPeriodEnd != nil {
		s := sub.CurrentPeriodEnd.Format("2006-01-02T15:04:05Z07:00")
		v.CurrentPeriodEnd = &s
	}
	return v
}

// startTrial gates the single-trial-per-tenant policy: the service itself
// resets the window on every call, so the "already used" decision lives at
// the edge where an operator override could bypass it.
func (a *api) startTrial(w http.ResponseWriter, r *http.Request) {
	id, _ := tenantID(r.Context())

	existing, err := a.deps.Subs.Get(r.Context(), id)
	if err == nil && existing.IsTrialUsed {
		respondError(w, http.StatusConflict, "trial_already_used", "tenant has already used its trial")
		return
	}
	if err != nil && !errors.Is(err, subscription.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load subscription")
		return
	}

	sub, err := a.deps.Trials.StartTrial(r.Context(), id)
	if err != nil {
		if errors.Is(err, subscription.ErrFreePlanMissing) {
			respondError(w, http.StatusInternalServerError, "configuration_error", "free plan is not configured")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to start trial")
		return
	}

	// A fresh window must not inherit reminder markers from a previous one,
	// or the new trial would go silent at thresholds already fired.
	if a.deps.Markers != nil {
		if err := a.deps.Markers.ClearTenant(r.Context(), id); err != nil {
			a.deps.Log.WarnContext(r.Context(), "failed to clear trial reminder markers",
				"tenant_id", id.String(), "error", err)
		}
	}

	respondJSON(w, http.StatusCreated, newSubscriptionView(sub))
}

func (a *api) checkLimits(w http.ResponseWriter, r *http.Request) {
	id, _ := tenantID(r.Context())

	action := limits.Action(r.URL.Query().Get("action"))
	if action == "" {
		respondError(w, http.StatusBadRequest, "missing_action", "action query parameter is required")
		return
	}

	result := a.deps.Limits.Check(r.Context(), action, id)
	respondJSON(w, http.StatusOK, result)
}

func (a *api) usageStats(w http.ResponseWriter, r *http.Request) {
	id, _ := tenantID(r.Context())

	stats, err := a.deps.Limits.UsageStats(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load usage stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (a *api) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := a.deps.Plans.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load plans")
		return
	}

	type planView struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		Description  string      `json:"description"`
		Price        plan.Money  `json:"price"`
		DisplayPrice string      `json:"displayPrice"`
		Interval     string      `json:"interval"`
		Features     []string    `json:"features"`
		Limits       plan.Limits `json:"limits"`
	}

	views := make([]planView, 0, len(plans))
	for _, p := range plans {
		if !p.Active {
			continue
		}
		views = append(views, planView{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price,
			DisplayPrice: p.DisplayPrice(),
			Interval:     string(p.Interval),
			Features:     p.Features,
			Limits:       p.Limits,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (a *api) createCheckout(w http.ResponseWriter, r *http.Request) {
	id, _ := tenantID(r.Context())

	var req struct {
		PlanID     string `json:"planId"`
		Email      string `json:"email"`
		SuccessURL string `json:"successUrl"`
		CancelURL  string `json:"cancelUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "missing_plan", "planId is required")
		return
	}

	link, err := a.deps.Checkout.Checkout(r.Context(), id, req.PlanID, billing.CheckoutOptions{
		Email:      req.Email,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			respondError(w, http.StatusNotFound, "plan_not_found", "no such plan")
			return
		}
		a.deps.Log.ErrorContext(r.Context(), "checkout failed", "error", err)
		respondError(w, http.StatusBadGateway, "checkout_failed", "failed to create checkout")
		return
	}
	respondJSON(w, http.StatusOK, link)
}

func (a *api) portalLink(w http.ResponseWriter, r *http.Request) {
	id, _ := tenantID(r.Context())

	link, err := a.deps.Checkout.PortalLink(r.Context(), id)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			respondError(w, http.StatusNotFound, "subscription_not_found", "tenant has no subscription")
			return
		}
		a.deps.Log.ErrorContext(r.Context(), "portal link failed", "error", err)
		respondError(w, http.StatusBadGateway, "portal_failed", "failed to create portal link")
		return
	}
	respondJSON(w, http.StatusOK, link)
}
