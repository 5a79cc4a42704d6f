package usage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/envioexpress/platform/pkg/clock"
)

// Tracker records usage increments with fire-and-forget semantics: by the
// time Record runs, the guarded resource write has already succeeded, so a
// lost counter update must never fail or roll back the caller's operation.
// Store errors are logged and swallowed.
type Tracker struct {
	store Store
	clock clock.Clock
	log   *slog.Logger
}

// NewTracker wires a usage tracker. Panics on a nil store.
func NewTracker(store Store, clk clock.Clock, log *slog.Logger) *Tracker {
	if store == nil {
		panic("usage: Store is required")
	}
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{store: store, clock: clk, log: log}
}

// Record adds delta to the metric in the current calendar-month bucket.
// Never returns an error to the caller.
func (t *Tracker) Record(ctx context.Context, tenantID uuid.UUID, metric Metric, delta int64) {
	if delta == 0 {
		delta = 1
	}
	period := Period(t.clock.Now())
	if err := t.store.Increment(ctx, tenantID, period, metric, delta); err != nil {
		t.log.ErrorContext(ctx, "failed to increment usage counter",
			slog.String("tenant_id", tenantID.String()),
			slog.String("metric", string(metric)),
			slog.String("period", period),
			slog.Any("error", err))
	}
}

// MessagesThisPeriod returns the message counter for the current month.
// A missing row counts as zero.
func (t *Tracker) MessagesThisPeriod(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	row, err := t.store.Get(ctx, tenantID, Period(t.clock.Now()))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return row.MessagesCount, nil
}

// CurrentPeriod returns the active calendar-month bucket key.
func (t *Tracker) CurrentPeriod() string {
	return Period(t.clock.Now())
}
