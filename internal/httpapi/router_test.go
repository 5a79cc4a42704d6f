package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envioexpress/platform/internal/httpapi"
	"github.com/envioexpress/platform/pkg/billing"
	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/email"
	"github.com/envioexpress/platform/pkg/limits"
	"github.com/envioexpress/platform/pkg/notification"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
	"github.com/envioexpress/platform/pkg/usage"
)

var apiNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	event *billing.Event
}

func (p *fakeProvider) CreateCheckoutLink(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutLink, error) {
	return &billing.CheckoutLink{URL: "https://pay.example.com/session"}, nil
}

func (p *fakeProvider) CustomerPortalLink(ctx context.Context, customerID, providerSubID string) (*billing.PortalLink, error) {
	return &billing.PortalLink{URL: "https://portal.example.com"}, nil
}

func (p *fakeProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*billing.Event, error) {
	if signature == "" {
		return nil, errors.New("missing signature")
	}
	return p.event, nil
}

type nullSender struct{}

func (nullSender) SendEmail(ctx context.Context, params email.SendParams) error { return nil }

type nullDirectory struct{}

func (nullDirectory) Owner(ctx context.Context, tenantID uuid.UUID) (notification.Recipient, error) {
	return notification.Recipient{Email: "owner@example.com"}, nil
}

type testServer struct {
	handler  http.Handler
	subs     subscription.Store
	markers  notification.MarkerStore
	provider *fakeProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	free := plan.Plan{
		ID:       "plan_free",
		Name:     plan.FreePlanName,
		Interval: plan.IntervalNone,
		Limits:   plan.Limits{plan.ResourceContacts: 100, plan.ResourceMonthlyMessages: 50},
		Active:   true,
	}
	starter := plan.Plan{
		ID:              "plan_starter",
		Name:            "Starter",
		Price:           plan.Money{Amount: 2900, Currency: "BRL"},
		Interval:        plan.IntervalMonthly,
		ProviderPriceID: "pri_starter",
		Limits:          plan.Limits{plan.ResourceContacts: 1000},
		Active:          true,
	}
	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(free, starter))
	require.NoError(t, err)

	subs := subscription.NewMemoryStore()
	clk := clock.NewMock(apiNow)
	trials := subscription.NewTrialService(subs, catalog, clk, nil)
	tracker := usage.NewTracker(usage.NewMemoryStore(), clk, nil)
	limiter := limits.NewService(subs, catalog, tracker, nil,
		limits.WithCounter(plan.ResourceContacts, func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
			return 10, nil
		}))

	provider := &fakeProvider{}
	checkout := billing.NewService(provider, subs, catalog, clk, nil)
	reconciler := billing.NewReconciler(subs, catalog, clk, nil)
	markers := notification.NewMemoryMarkerStore()
	notifier := notification.NewNotifier(subs, nullDirectory{}, nullSender{}, markers, clk, nil)

	handler := httpapi.NewRouter(httpapi.Deps{
		Trials:     trials,
		Subs:       subs,
		Limits:     limiter,
		Plans:      catalog,
		Checkout:   checkout,
		Provider:   provider,
		Reconciler: reconciler,
		Notifier:   notifier,
		Markers:    markers,
		Clock:      clk,
	})

	return &testServer{handler: handler, subs: subs, markers: markers, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path string, tenant uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if tenant != uuid.Nil {
		req.Header.Set(httpapi.TenantHeader, tenant.String())
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, into))
}

func TestStartTrialEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("starts a trial once", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		tenant := uuid.New()

		rec := srv.do(t, http.MethodPost, "/subscription/start-trial", tenant, "")
		assert.Equal(t, http.StatusCreated, rec.Code)

		var view struct {
			Status      string `json:"status"`
			TrialEndsAt string `json:"trialEndsAt"`
		}
		decodeData(t, rec, &view)
		assert.Equal(t, "TRIAL", view.Status)
		assert.NotEmpty(t, view.TrialEndsAt)
	})

	t.Run("second attempt conflicts", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		tenant := uuid.New()

		first := srv.do(t, http.MethodPost, "/subscription/start-trial", tenant, "")
		require.Equal(t, http.StatusCreated, first.Code)

		second := srv.do(t, http.MethodPost, "/subscription/start-trial", tenant, "")
		assert.Equal(t, http.StatusConflict, second.Code)
		assert.Contains(t, second.Body.String(), "trial_already_used")
	})

	t.Run("clears stale reminder markers for the new window", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		tenant := uuid.New()

		// Leftovers from a previous window (e.g. a support-side reset).
		require.NoError(t, srv.markers.MarkNotified(context.Background(), tenant, 3))
		require.NoError(t, srv.markers.MarkNotified(context.Background(), tenant, 1))

		rec := srv.do(t, http.MethodPost, "/subscription/start-trial", tenant, "")
		require.Equal(t, http.StatusCreated, rec.Code)

		for _, threshold := range []int{3, 1} {
			done, err := srv.markers.AlreadyNotified(context.Background(), tenant, threshold)
			require.NoError(t, err)
			assert.False(t, done)
		}
	})

	t.Run("requires a tenant header", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		rec := srv.do(t, http.MethodPost, "/subscription/start-trial", uuid.Nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestSubscriptionStatusEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	tenant := uuid.New()

	// Fresh tenant: eligible, no subscription block.
	rec := srv.do(t, http.MethodGet, "/subscription/status", tenant, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Trial        subscription.TrialInfo `json:"trial"`
		Subscription *json.RawMessage       `json:"subscription"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, 7, resp.Trial.TrialDaysRemaining)
	assert.True(t, resp.Trial.CanAccessFeatures)
	assert.Nil(t, resp.Subscription)

	// After starting a trial the subscription block appears.
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/subscription/start-trial", tenant, "").Code)

	rec = srv.do(t, http.MethodGet, "/subscription/status", tenant, "")
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &resp)
	assert.True(t, resp.Trial.IsOnTrial)
	assert.NotNil(t, resp.Subscription)
}

func TestCheckLimitsEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	tenant := uuid.New()

	require.NoError(t, srv.subs.Upsert(context.Background(), &subscription.Subscription{
		TenantID: tenant,
		PlanID:   "plan_free",
		Status:   subscription.StatusActive,
	}))

	rec := srv.do(t, http.MethodGet, "/subscription/check-limits?action=create_contact", tenant, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result limits.Result
	decodeData(t, rec, &result)
	assert.True(t, result.Allowed)
	assert.Equal(t, int64(100), result.Limit)
	assert.Equal(t, int64(10), result.Current)

	rec = srv.do(t, http.MethodGet, "/subscription/check-limits", tenant, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlansEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/plans", uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []struct {
		ID           string         `json:"id"`
		DisplayPrice string         `json:"displayPrice"`
		Limits       map[string]any `json:"limits"`
	}
	decodeData(t, rec, &views)
	require.Len(t, views, 2)
	assert.Equal(t, "plan_free", views[0].ID)
	assert.NotEmpty(t, views[1].DisplayPrice)
}

func TestWebhookEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("rejects unverifiable payloads", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		rec := srv.do(t, http.MethodPost, "/billing/webhook", uuid.Nil, `{"event":"x"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("applies verified events", func(t *testing.T) {
		t.Parallel()
		srv := newTestServer(t)
		tenant := uuid.New()
		srv.provider.event = &billing.Event{
			Type:          billing.EventCheckoutCompleted,
			TenantID:      tenant.String(),
			PlanID:        "plan_starter",
			ProviderSubID: "sub_abc",
		}

		req := httptest.NewRequest(http.MethodPost, "/billing/webhook", strings.NewReader(`{}`))
		req.Header.Set("Paddle-Signature", "ts=1;h1=sig")
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		sub, err := srv.subs.Get(context.Background(), tenant)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
	})
}

func TestCronEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	// An overdue trial gets swept on the POST trigger.
	tenant := uuid.New()
	starts := apiNow.AddDate(0, 0, -10)
	ends := apiNow.AddDate(0, 0, -3)
	require.NoError(t, srv.subs.Upsert(context.Background(), &subscription.Subscription{
		TenantID:      tenant,
		PlanID:        "plan_free",
		Status:        subscription.StatusTrial,
		TrialStartsAt: &starts,
		TrialEndsAt:   &ends,
		IsTrialUsed:   true,
	}))

	rec := srv.do(t, http.MethodPost, "/cron/check-trials", uuid.Nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Sweep subscription.SweepSummary `json:"sweep"`
	}
	decodeData(t, rec, &result)
	assert.Equal(t, 1, result.Sweep.Expired)

	sub, err := srv.subs.Get(context.Background(), tenant)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, sub.Status)

	// The GET variant reports without mutating.
	rec = srv.do(t, http.MethodGet, "/cron/check-trials", uuid.Nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
