// Package httpserver runs the process's HTTP listener with graceful
// shutdown, environment-driven timeouts and probe handlers.
//
// Shutdown starts on context cancellation or SIGINT/SIGTERM and waits for
// in-flight requests up to the shutdown timeout. Listen failures are wrapped
// with ErrStart, shutdown failures with ErrShutdown.
//
// Usage:
//
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
//	r.Use(tenant.Middleware(cat))
//	r.Get("/healthz", httpserver.HealthCheckHandler(log))
//	r.Get("/readyz", httpserver.HealthCheckHandler(log, pg.Healthcheck(registryPool)))
//	r.Mount("/admin", adminHandler.Router())
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//	if err := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log)).Run(ctx, r); err != nil {
//		log.Error("server stopped", slog.Any("error", err))
//	}
package httpserver
