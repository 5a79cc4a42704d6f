package subscription_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/subscription"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testCatalog(t *testing.T, plans ...plan.Plan) plan.Catalog {
	t.Helper()
	if len(plans) == 0 {
		plans = []plan.Plan{{
			ID:       "plan_free",
			Name:     plan.FreePlanName,
			Interval: plan.IntervalNone,
			Limits:   plan.Limits{plan.ResourceContacts: 100},
			Active:   true,
		}}
	}
	catalog, err := plan.NewCatalog(context.Background(), plan.NewInMemSource(plans...))
	require.NoError(t, err)
	return catalog
}

func TestStartTrial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a seven day window on the free plan", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		svc := subscription.NewTrialService(store, testCatalog(t), clock.NewMock(testNow), nil)
		tenant := uuid.New()

		sub, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusTrial, sub.Status)
		assert.Equal(t, "plan_free", sub.PlanID)
		assert.True(t, sub.IsTrialUsed)
		require.NotNil(t, sub.TrialStartsAt)
		require.NotNil(t, sub.TrialEndsAt)
		assert.Equal(t, testNow, *sub.TrialStartsAt)
		assert.Equal(t, testNow.AddDate(0, 0, 7), *sub.TrialEndsAt)
	})

	t.Run("repeat call resets the window without a second row", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		mock := clock.NewMock(testNow)
		svc := subscription.NewTrialService(store, testCatalog(t), mock, nil)
		tenant := uuid.New()

		_, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)

		mock.Advance(48 * time.Hour)
		sub, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)
		assert.Equal(t, testNow.Add(48*time.Hour).AddDate(0, 0, 7), *sub.TrialEndsAt)

		trials, err := store.ListTrials(ctx)
		require.NoError(t, err)
		assert.Len(t, trials, 1)
	})

	t.Run("fails loudly when the free plan is missing", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		paidOnly := testCatalog(t, plan.Plan{
			ID:       "plan_starter",
			Name:     "Starter",
			Price:    plan.Money{Amount: 2900, Currency: "BRL"},
			Interval: plan.IntervalMonthly,
			Active:   true,
		})
		svc := subscription.NewTrialService(store, paidOnly, clock.NewMock(testNow), nil)

		_, err := svc.StartTrial(ctx, uuid.New())
		require.ErrorIs(t, err, subscription.ErrFreePlanMissing)
	})

	t.Run("transient read failure surfaces instead of minting a fresh record", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		svc := subscription.NewTrialService(store, testCatalog(t), clock.NewMock(testNow), nil)
		tenant := uuid.New()

		_, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)

		flaky := &unreliableStore{Store: store, getErr: errors.New("connection reset")}
		flakySvc := subscription.NewTrialService(flaky, testCatalog(t), clock.NewMock(testNow.Add(time.Hour)), nil)

		_, err = flakySvc.StartTrial(ctx, tenant)
		require.Error(t, err)

		sub, err := store.Get(ctx, tenant)
		require.NoError(t, err)
		assert.True(t, sub.IsTrialUsed)
		assert.Equal(t, testNow, *sub.TrialStartsAt, "window untouched by the failed call")
	})
}

// unreliableStore fails the next Get once, then delegates.
type unreliableStore struct {
	subscription.Store
	getErr error
}

func (s *unreliableStore) Get(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	if s.getErr != nil {
		err := s.getErr
		s.getErr = nil
		return nil, err
	}
	return s.Store.Get(ctx, tenantID)
}

func TestGetTrialInfo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no record means full eligibility", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewTrialService(subscription.NewMemoryStore(), testCatalog(t), clock.NewMock(testNow), nil)

		info, err := svc.GetTrialInfo(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, subscription.TrialInfo{
			IsOnTrial:          false,
			TrialDaysRemaining: 7,
			TrialEndsAt:        nil,
			HasTrialExpired:    false,
			CanAccessFeatures:  true,
		}, info)
	})

	t.Run("live trial counts down whole days", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		mock := clock.NewMock(testNow)
		svc := subscription.NewTrialService(store, testCatalog(t), mock, nil)
		tenant := uuid.New()

		_, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)

		// Day 5 of 7: two full days plus a partial day remain.
		mock.Advance(4*24*time.Hour + 12*time.Hour)

		info, err := svc.GetTrialInfo(ctx, tenant)
		require.NoError(t, err)
		assert.True(t, info.IsOnTrial)
		assert.Equal(t, 3, info.TrialDaysRemaining)
		assert.False(t, info.HasTrialExpired)
		assert.True(t, info.CanAccessFeatures)
	})

	t.Run("overdue trial reports expired until swept", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		mock := clock.NewMock(testNow)
		svc := subscription.NewTrialService(store, testCatalog(t), mock, nil)
		tenant := uuid.New()

		_, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)

		mock.Advance(8 * 24 * time.Hour)

		info, err := svc.GetTrialInfo(ctx, tenant)
		require.NoError(t, err)
		assert.True(t, info.IsOnTrial)
		assert.Equal(t, 0, info.TrialDaysRemaining)
		assert.True(t, info.HasTrialExpired)
		assert.False(t, info.CanAccessFeatures)
	})

	t.Run("active subscription has full access and no trial", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		tenant := uuid.New()
		require.NoError(t, store.Upsert(ctx, &subscription.Subscription{
			TenantID:    tenant,
			PlanID:      "plan_starter",
			Status:      subscription.StatusActive,
			IsTrialUsed: true,
		}))
		svc := subscription.NewTrialService(store, testCatalog(t), clock.NewMock(testNow), nil)

		info, err := svc.GetTrialInfo(ctx, tenant)
		require.NoError(t, err)
		assert.False(t, info.IsOnTrial)
		assert.True(t, info.CanAccessFeatures)
		assert.False(t, info.HasTrialExpired)
	})

	t.Run("cancelled subscription locks features", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		tenant := uuid.New()
		require.NoError(t, store.Upsert(ctx, &subscription.Subscription{
			TenantID:    tenant,
			PlanID:      "plan_free",
			Status:      subscription.StatusCancelled,
			IsTrialUsed: true,
		}))
		svc := subscription.NewTrialService(store, testCatalog(t), clock.NewMock(testNow), nil)

		info, err := svc.GetTrialInfo(ctx, tenant)
		require.NoError(t, err)
		assert.False(t, info.IsOnTrial)
		assert.False(t, info.CanAccessFeatures)
		assert.True(t, info.HasTrialExpired)
	})
}

func TestExpireTrial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("moves the tenant to active on the free plan", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		mock := clock.NewMock(testNow)
		svc := subscription.NewTrialService(store, testCatalog(t), mock, nil)
		tenant := uuid.New()

		_, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)

		mock.Advance(8 * 24 * time.Hour)
		require.NoError(t, svc.ExpireTrial(ctx, tenant))

		sub, err := store.Get(ctx, tenant)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, "plan_free", sub.PlanID)
		assert.True(t, sub.IsTrialUsed)
		require.NotNil(t, sub.CurrentPeriodStart)
		assert.Nil(t, sub.CurrentPeriodEnd)
	})

	t.Run("safe to call twice", func(t *testing.T) {
		t.Parallel()
		store := subscription.NewMemoryStore()
		svc := subscription.NewTrialService(store, testCatalog(t), clock.NewMock(testNow), nil)
		tenant := uuid.New()

		_, err := svc.StartTrial(ctx, tenant)
		require.NoError(t, err)
		require.NoError(t, svc.ExpireTrial(ctx, tenant))
		require.NoError(t, svc.ExpireTrial(ctx, tenant))

		sub, err := store.Get(ctx, tenant)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, sub.Status)
	})

	t.Run("unknown tenant returns not found", func(t *testing.T) {
		t.Parallel()
		svc := subscription.NewTrialService(subscription.NewMemoryStore(), testCatalog(t), clock.NewMock(testNow), nil)
		err := svc.ExpireTrial(ctx, uuid.New())
		require.ErrorIs(t, err, subscription.ErrNotFound)
	})
}

func TestSweepExpiredTrials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := subscription.NewMemoryStore()
	mock := clock.NewMock(testNow)
	svc := subscription.NewTrialService(store, testCatalog(t), mock, nil)

	overdue := uuid.New()
	live := uuid.New()

	_, err := svc.StartTrial(ctx, overdue)
	require.NoError(t, err)

	mock.Advance(5 * 24 * time.Hour)
	_, err = svc.StartTrial(ctx, live)
	require.NoError(t, err)

	// overdue's window (7d from start) has passed, live's has not.
	mock.Advance(3 * 24 * time.Hour)

	summary, err := svc.SweepExpiredTrials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Expired)
	assert.Equal(t, 0, summary.Failed)

	expired, err := store.Get(ctx, overdue)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, expired.Status)

	still, err := store.Get(ctx, live)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusTrial, still.Status)
}
