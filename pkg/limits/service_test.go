package limits_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/limits"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
	"github.com/envioexpress/platform/pkg/usage"
)

var checkNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	subs    subscription.Store
	tracker *usage.Tracker
	svc     *limits.Service
	tenant  uuid.UUID
}

// staticCounter returns a fixed count, standing in for a live inventory
// query.
func staticCounter(n int64) limits.CounterFunc {
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		return n, nil
	}
}

func newFixture(t *testing.T, status subscription.Status, planID string, opts ...limits.Option) fixture {
	t.Helper()
	ctx := context.Background()

	free := plan.Plan{
		ID:       "plan_free",
		Name:     plan.FreePlanName,
		Interval: plan.IntervalNone,
		Features: []string{"basic_support"},
		Limits: plan.Limits{
			plan.ResourceContacts:        100,
			plan.ResourceMonthlyMessages: 50,
			plan.ResourceUsers:           1,
			plan.ResourceGroups:          3,
			plan.ResourceImages:          10,
		},
		Active: true,
	}
	starter := plan.Plan{
		ID:       "plan_starter",
		Name:     "Starter",
		Price:    plan.Money{Amount: 2900, Currency: "BRL"},
		Interval: plan.IntervalMonthly,
		Features: []string{"advanced_analytics", "automations"},
		Limits: plan.Limits{
			plan.ResourceContacts:        1000,
			plan.ResourceMonthlyMessages: 1000,
			plan.ResourceGroups:          plan.Unlimited,
		},
		Active: true,
	}
	catalog, err := plan.NewCatalog(ctx, plan.NewInMemSource(free, starter))
	require.NoError(t, err)

	subs := subscription.NewMemoryStore()
	tenant := uuid.New()
	require.NoError(t, subs.Upsert(ctx, &subscription.Subscription{
		TenantID: tenant,
		PlanID:   planID,
		Status:   status,
	}))

	tracker := usage.NewTracker(usage.NewMemoryStore(), clock.NewMock(checkNow), nil)
	svc := limits.NewService(subs, catalog, tracker, nil, opts...)
	return fixture{subs: subs, tracker: tracker, svc: svc, tenant: tenant}
}

func TestCheck(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("allows under the cap", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_free",
			limits.WithCounter(plan.ResourceContacts, staticCounter(42)))

		result := f.svc.Check(ctx, limits.ActionCreateContact, f.tenant)
		assert.True(t, result.Allowed)
		assert.Equal(t, int64(100), result.Limit)
		assert.Equal(t, int64(42), result.Current)
		assert.Empty(t, result.Reason)
	})

	t.Run("denies at the cap with a named reason", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_free",
			limits.WithCounter(plan.ResourceContacts, staticCounter(100)))

		result := f.svc.Check(ctx, limits.ActionCreateContact, f.tenant)
		assert.False(t, result.Allowed)
		assert.Equal(t, "limit of 100 contacts reached", result.Reason)
	})

	t.Run("message cap reads the period ledger", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_free")

		for range 50 {
			f.tracker.Record(ctx, f.tenant, usage.MetricMessages, 1)
		}

		result := f.svc.Check(ctx, limits.ActionSendMessage, f.tenant)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(50), result.Current)
	})

	t.Run("unlimited resource always passes", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_starter",
			limits.WithCounter(plan.ResourceGroups, staticCounter(1_000_000)))

		result := f.svc.Check(ctx, limits.ActionCreateGroup, f.tenant)
		assert.True(t, result.Allowed)
	})

	t.Run("resource absent from the plan document passes", func(t *testing.T) {
		t.Parallel()
		// Starter's limits document has no users entry.
		f := newFixture(t, subscription.StatusActive, "plan_starter",
			limits.WithCounter(plan.ResourceUsers, staticCounter(500)))

		result := f.svc.Check(ctx, limits.ActionInviteUser, f.tenant)
		assert.True(t, result.Allowed)
	})

	t.Run("trialing tenants are denied", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusTrial, "plan_free",
			limits.WithCounter(plan.ResourceContacts, staticCounter(0)))

		result := f.svc.Check(ctx, limits.ActionCreateContact, f.tenant)
		assert.False(t, result.Allowed)
		assert.Equal(t, "subscription inactive or not found", result.Reason)
	})

	t.Run("missing subscription is denied", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_free")

		result := f.svc.Check(ctx, limits.ActionCreateContact, uuid.New())
		assert.False(t, result.Allowed)
		assert.Equal(t, "subscription inactive or not found", result.Reason)
	})

	t.Run("unknown action is not guarded", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_free")

		result := f.svc.Check(ctx, limits.Action("export_report"), f.tenant)
		assert.True(t, result.Allowed)
	})

	t.Run("counter failure denies instead of guessing", func(t *testing.T) {
		t.Parallel()
		broken := func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
			return 0, errors.New("db down")
		}
		f := newFixture(t, subscription.StatusActive, "plan_free",
			limits.WithCounter(plan.ResourceContacts, broken))

		result := f.svc.Check(ctx, limits.ActionCreateContact, f.tenant)
		assert.False(t, result.Allowed)
		assert.Equal(t, "internal error checking plan limits", result.Reason)
	})

	t.Run("missing counter denies", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_free")

		result := f.svc.Check(ctx, limits.ActionCreateContact, f.tenant)
		assert.False(t, result.Allowed)
		assert.Equal(t, "internal error checking plan limits", result.Reason)
	})
}

func TestUsageStats(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, subscription.StatusActive, "plan_free",
		limits.WithCounter(plan.ResourceContacts, staticCounter(80)),
		limits.WithCounter(plan.ResourceGroups, staticCounter(2)))

	f.tracker.Record(ctx, f.tenant, usage.MetricMessages, 12)

	stats, err := f.svc.UsageStats(ctx, f.tenant)
	require.NoError(t, err)
	assert.Equal(t, int64(80), stats.Contacts)
	assert.Equal(t, int64(2), stats.Groups)
	assert.Equal(t, int64(12), stats.MonthlyMessages)
	assert.Equal(t, "2025-06", stats.CurrentPeriod)
}

func TestAllUsage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t, subscription.StatusActive, "plan_starter",
		limits.WithCounter(plan.ResourceContacts, staticCounter(500)),
		limits.WithCounter(plan.ResourceGroups, staticCounter(7)))

	all, err := f.svc.AllUsage(ctx, f.tenant)
	require.NoError(t, err)

	contacts := all[plan.ResourceContacts]
	assert.Equal(t, int64(500), contacts.Current)
	assert.Equal(t, int64(1000), contacts.Limit)
	assert.Equal(t, 50, contacts.Percent)

	groups := all[plan.ResourceGroups]
	assert.Equal(t, int64(7), groups.Current)
	assert.Equal(t, -1, groups.Percent)
}

func TestHasFeature(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("active plan feature", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_starter")
		assert.True(t, f.svc.HasFeature(ctx, f.tenant, "automations"))
		assert.False(t, f.svc.HasFeature(ctx, f.tenant, "white_label"))
	})

	t.Run("fails closed for non-active subscriptions", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusPastDue, "plan_starter")
		assert.False(t, f.svc.HasFeature(ctx, f.tenant, "automations"))
	})

	t.Run("fails closed for unknown tenants", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, subscription.StatusActive, "plan_starter")
		assert.False(t, f.svc.HasFeature(ctx, uuid.New(), "automations"))
	})
}
