package httpserver

import "time"

// Config carries the server's environment-driven settings.
type Config struct {
	Addr            string        `env:"TENANCY_HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"TENANCY_HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"TENANCY_HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"TENANCY_HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"TENANCY_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// NewFromConfig creates a Server from cfg. Zero values fall back to the
// package defaults; extra options are applied last and win.
func NewFromConfig(cfg Config, opts ...Option) *Server {
	all := []Option{
		WithAddr(cfg.Addr),
		WithReadTimeout(cfg.ReadTimeout),
		WithWriteTimeout(cfg.WriteTimeout),
		WithIdleTimeout(cfg.IdleTimeout),
		WithShutdownTimeout(cfg.ShutdownTimeout),
	}
	all = append(all, opts...)
	return New(all...)
}
