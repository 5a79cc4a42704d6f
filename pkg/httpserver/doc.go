// Package httpserver wraps net/http's Server with context-driven graceful
// shutdown and env-based configuration.
//
// The caller owns the lifecycle: Run blocks until the supplied context is
// cancelled (typically by signal.NotifyContext), then drains in-flight
// requests within the shutdown timeout. Shutdown hooks registered via
// OnShutdown run first, so background workers can stop before the listener
// closes.
//
//	srv := httpserver.New(cfg, httpserver.WithLogger(log))
//	return srv.Run(ctx, router)
package httpserver
