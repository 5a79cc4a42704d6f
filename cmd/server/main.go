package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/envioexpress/platform/internal/cronjobs"
	"github.com/envioexpress/platform/internal/httpapi"
	"github.com/envioexpress/platform/internal/postgres"
	"github.com/envioexpress/platform/pkg/billing"
	"github.com/envioexpress/platform/pkg/clock"
	"github.com/envioexpress/platform/pkg/config"
	"github.com/envioexpress/platform/pkg/email"
	"github.com/envioexpress/platform/pkg/httpserver"
	"github.com/envioexpress/platform/pkg/limits"
	"github.com/envioexpress/platform/pkg/logger"
	"github.com/envioexpress/platform/pkg/notification"
	"github.com/envioexpress/platform/pkg/pg"
	"github.com/envioexpress/platform/pkg/plan"
	"github.com/envioexpress/platform/pkg/redis"
	"github.com/envioexpress/platform/pkg/subscription"
	"github.com/envioexpress/platform/pkg/usage"
)

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	PlansFile string `env:"PLANS_FILE"` // overrides the database plan catalog when set
}

func main() {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.Env, "subscription-engine"),
		logger.WithContextExtractors(httpapi.TenantLogExtractor),
	)
	logger.SetAsDefault(log)

	if err := run(appCfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(appCfg appConfig, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, postgres.Migrations, postgres.MigrationsDir, pgCfg, log); err != nil {
		return err
	}

	healthChecks := map[string]func(context.Context) error{
		"postgres": pg.Healthcheck(pool),
	}

	// Reminder markers live in redis when it is configured; otherwise the
	// trial_notifications table serves, so a redis-less deployment still
	// dedupes reminders.
	var markers notification.MarkerStore = postgres.NewMarkerStore(pool)
	var redisCfg redis.Config
	config.MustLoad(&redisCfg)
	if redisCfg.ConnectionURL != "" {
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()
		if markers, err = notification.NewRedisMarkerStore(redisClient); err != nil {
			return err
		}
		healthChecks["redis"] = redis.Healthcheck(redisClient)
	}

	clk := clock.System()

	// Plan catalog: seeded database tiers by default, a YAML file when an
	// operator wants to test catalog changes without a migration.
	var planSource plan.Source = postgres.NewPlanSource(pool)
	if appCfg.PlansFile != "" {
		planSource = plan.NewYAMLSource(appCfg.PlansFile)
	}
	catalog, err := plan.NewCatalog(ctx, planSource)
	if err != nil {
		return err
	}

	subStore := postgres.NewSubscriptionStore(pool)
	usageStore := postgres.NewUsageStore(pool)
	counters := postgres.NewCounters(pool)

	trials := subscription.NewTrialService(subStore, catalog, clk, log)
	tracker := usage.NewTracker(usageStore, clk, log)
	limiter := limits.NewService(subStore, catalog, tracker, log, counters.Options()...)

	var paddleCfg billing.PaddleConfig
	config.MustLoad(&paddleCfg)
	provider, err := billing.NewPaddleProvider(paddleCfg)
	if err != nil {
		return err
	}
	checkout := billing.NewService(provider, subStore, catalog, clk, log)
	reconciler := billing.NewReconciler(subStore, catalog, clk, log)

	sender := buildSender(log)
	notifier := notification.NewNotifier(subStore, postgres.NewOwnerDirectory(pool), sender, markers, clk, log)

	var cronCfg cronjobs.Config
	config.MustLoad(&cronCfg)
	runner, err := cronjobs.NewRunner(trials, notifier, cronCfg, log)
	if err != nil {
		return err
	}
	runner.Start()

	router := httpapi.NewRouter(httpapi.Deps{
		Trials:       trials,
		Subs:         subStore,
		Limits:       limiter,
		Plans:        catalog,
		Checkout:     checkout,
		Provider:     provider,
		Reconciler:   reconciler,
		Notifier:     notifier,
		Markers:      markers,
		Clock:        clk,
		Log:          log,
		HealthChecks: healthChecks,
	})

	var httpCfg httpserver.Config
	config.MustLoad(&httpCfg)
	srv := httpserver.New(httpCfg,
		httpserver.WithLogger(log),
		httpserver.OnShutdown(runner.Stop),
	)
	return srv.Run(ctx, router)
}

// buildSender wires Postmark when configured and falls back to the logging
// sender otherwise, so environments without mail credentials still run.
func buildSender(log *slog.Logger) email.Sender {
	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		log.Warn("email not configured, using dev sender", logger.Error(err))
		return email.NewDevSender(log)
	}
	sender, err := email.NewPostmarkClient(emailCfg)
	if err != nil {
		log.Warn("email not configured, using dev sender", logger.Error(err))
		return email.NewDevSender(log)
	}
	return sender
}
