package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/email"
	"github.com/envioexpress/platform/pkg/subscription"
)

// thresholds are the days-until-expiry values that trigger a reminder.
var thresholds = []int{3, 1, 0}

// Recipient identifies where a tenant's trial reminders go.
type Recipient struct {
	Email       string
	Name        string
	CompanyName string
}

// OwnerDirectory resolves a tenant to its owner's contact details.
// Implementations return ErrNoRecipient when the tenant has no owner
// with a usable email address.
type OwnerDirectory interface {
	Owner(ctx context.Context, tenantID uuid.UUID) (Recipient, error)
}

// Summary reports one notification sweep. Skipped counts trials that
// matched no threshold or were already notified; Failed counts tenants
// whose reminder could not be resolved, sent, or marked.
type Summary struct {
	Scanned int `json:"scanned"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Notifier sends trial expiry reminders at fixed thresholds. A marker is
// persisted per tenant and threshold before counting a send as done, so
// re-running the sweep within the same day is a no-op.
type Notifier struct {
	subs    subscription.Store
	owners  OwnerDirectory
	sender  email.Sender
	markers MarkerStore
	clock   clock.Clock
	log     *slog.Logger
}

// NewNotifier wires a notification sweep. Store, directory, sender, and
// marker store are required; clock and logger default to the system clock
// and slog.Default.
func NewNotifier(subs subscription.Store, owners OwnerDirectory, sender email.Sender, markers MarkerStore, clk clock.Clock, log *slog.Logger) *Notifier {
	if subs == nil {
		panic("notification: subscription store is required")
	}
	if owners == nil {
		panic("notification: owner directory is required")
	}
	if sender == nil {
		panic("notification: email sender is required")
	}
	if markers == nil {
		panic("notification: marker store is required")
	}
	if clk == nil {
		clk = clock.System()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Notifier{subs: subs, owners: owners, sender: sender, markers: markers, clock: clk, log: log}
}

// Process scans all trialing subscriptions and sends the reminder matching
// each tenant's days-until-expiry, if any. Failures are isolated per
// tenant; one bad record never blocks the rest of the sweep.
func (n *Notifier) Process(ctx context.Context) (Summary, error) {
	var summary Summary

	trials, err := n.subs.ListTrials(ctx)
	if err != nil {
		return summary, err
	}

	now := n.clock.Now()
	for _, sub := range trials {
		summary.Scanned++

		if sub.TrialEndsAt == nil {
			summary.Skipped++
			continue
		}

		days := daysUntil(now, *sub.TrialEndsAt)
		if days < 0 {
			// Already expired; the expiry sweep handles downgrading.
			summary.Skipped++
			continue
		}
		if !isThreshold(days) {
			summary.Skipped++
			continue
		}

		sent, err := n.notify(ctx, sub, days)
		switch {
		case err != nil:
			summary.Failed++
			n.log.ErrorContext(ctx, "trial reminder failed",
				slog.String("tenant_id", sub.TenantID.String()),
				slog.Int("days_remaining", days),
				slog.Any("error", err))
		case sent:
			summary.Sent++
		default:
			summary.Skipped++
		}
	}

	n.log.InfoContext(ctx, "trial notification sweep finished",
		slog.Int("scanned", summary.Scanned),
		slog.Int("sent", summary.Sent),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed))
	return summary, nil
}

func (n *Notifier) notify(ctx context.Context, sub *subscription.Subscription, threshold int) (bool, error) {
	done, err := n.markers.AlreadyNotified(ctx, sub.TenantID, threshold)
	if err != nil {
		return false, err
	}
	if done {
		return false, nil
	}

	rcpt, err := n.owners.Owner(ctx, sub.TenantID)
	if err != nil {
		return false, err
	}

	subject, body, ok := renderReminder(threshold, rcpt, *sub.TrialEndsAt)
	if !ok {
		return false, nil
	}

	if err := n.sender.SendEmail(ctx, email.SendParams{
		SendTo:   rcpt.Email,
		Subject:  subject,
		BodyHTML: body,
		Tag:      "trial-reminder",
	}); err != nil {
		return false, err
	}

	if err := n.markers.MarkNotified(ctx, sub.TenantID, threshold); err != nil {
		// The mail went out; a lost marker risks a duplicate tomorrow,
		// not a missed reminder. Surface it as a failure regardless.
		return false, err
	}
	return true, nil
}

// daysUntil counts whole calendar days (UTC) between now and the deadline.
// Zero means the deadline falls on the current day, negative means it has
// passed.
func daysUntil(now, deadline time.Time) int {
	nowDate := truncateToDate(now)
	endDate := truncateToDate(deadline)
	return int(endDate.Sub(nowDate).Hours() / 24)
}

func truncateToDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isThreshold(days int) bool {
	for _, t := range thresholds {
		if days == t {
			return true
		}
	}
	return false
}
