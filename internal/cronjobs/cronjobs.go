package cronjobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/envioexpress/platform/pkg/notification"
	"github.com/envioexpress/platform/pkg/subscription"
)

// Config controls the scheduler. The default runs the trial checks every
// morning at 09:00 server time.
type Config struct {
	CheckTrialsSchedule string        `env:"CRON_CHECK_TRIALS_SCHEDULE" envDefault:"0 9 * * *"`
	JobTimeout          time.Duration `env:"CRON_JOB_TIMEOUT" envDefault:"10m"`
}

// Runner owns the in-process cron scheduler. The same work is reachable
// through POST /cron/check-trials for external schedulers and manual runs.
type Runner struct {
	cron     *cron.Cron
	trials   *subscription.TrialService
	notifier *notification.Notifier
	cfg      Config
	log      *slog.Logger
}

// NewRunner builds the scheduler and registers the daily check-trials job.
func NewRunner(trials *subscription.TrialService, notifier *notification.Notifier, cfg Config, log *slog.Logger) (*Runner, error) {
	if log == nil {
		log = slog.Default()
	}

	r := &Runner{
		cron:     cron.New(),
		trials:   trials,
		notifier: notifier,
		cfg:      cfg,
		log:      log,
	}

	if _, err := r.cron.AddFunc(cfg.CheckTrialsSchedule, r.checkTrials); err != nil {
		return nil, err
	}
	return r, nil
}

// Start launches the scheduler in its own goroutine.
func (r *Runner) Start() {
	r.log.Info("cron scheduler starting",
		slog.String("check_trials_schedule", r.cfg.CheckTrialsSchedule))
	r.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish or the
// context to expire.
func (r *Runner) Stop(ctx context.Context) {
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		r.log.Warn("cron shutdown timed out with jobs still running")
	}
}

// checkTrials is the daily maintenance pass: expire finished trials first
// so reminders never go to tenants that were just downgraded, then send
// threshold reminders for the remainder.
func (r *Runner) checkTrials() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.JobTimeout)
	defer cancel()

	sweep, err := r.trials.SweepExpiredTrials(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "trial expiry sweep failed", slog.Any("error", err))
	} else {
		r.log.InfoContext(ctx, "trial expiry sweep finished",
			slog.Int("checked", sweep.Checked),
			slog.Int("expired", sweep.Expired),
			slog.Int("failed", sweep.Failed))
	}

	notify, err := r.notifier.Process(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "trial notification sweep failed", slog.Any("error", err))
		return
	}
	r.log.InfoContext(ctx, "trial notifications processed",
		slog.Int("scanned", notify.Scanned),
		slog.Int("sent", notify.Sent),
		slog.Int("skipped", notify.Skipped),
		slog.Int("failed", notify.Failed))
}
