package provision

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// GooseMigrator applies schema changesets to a tenant database with goose.
// Goose keeps its own applied-changeset ledger inside the tenant database,
// which is what makes ApplySchema idempotent across re-runs.
type GooseMigrator struct {
	dir   string
	table string
	log   *slog.Logger
}

// GooseOption configures a GooseMigrator.
type GooseOption func(*GooseMigrator)

// WithVersionTable overrides goose's version-ledger table name.
func WithVersionTable(table string) GooseOption {
	return func(m *GooseMigrator) {
		if table != "" {
			m.table = table
		}
	}
}

// WithGooseLogger sets the logger goose output is routed through.
func WithGooseLogger(log *slog.Logger) GooseOption {
	return func(m *GooseMigrator) {
		if log != nil {
			m.log = log
		}
	}
}

// NewGooseMigrator creates a migrator applying the changesets in dir.
func NewGooseMigrator(dir string, opts ...GooseOption) *GooseMigrator {
	m := &GooseMigrator{
		dir:   dir,
		table: "schema_migrations",
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ApplySchema brings the tenant database to the latest schema version and
// returns how many changesets it applied (zero when already current).
func (m *GooseMigrator) ApplySchema(ctx context.Context, params ConnectionParams) (int, error) {
	cfg, err := pgx.ParseConfig(params.ConnectionURL)
	if err != nil {
		return 0, fmt.Errorf("parse tenant connection url: %w", err)
	}
	if params.Username != "" {
		cfg.User = params.Username
	}
	if params.Secret != "" {
		cfg.Password = params.Secret
	}

	// Goose speaks database/sql; bridge the pgx config through its stdlib
	// adapter for the duration of this run.
	db := stdlib.OpenDB(*cfg)
	defer func() {
		if err := db.Close(); err != nil {
			m.log.ErrorContext(ctx, "failed to close migration connection", slog.Any("error", err))
		}
	}()

	goose.SetLogger(gooseSlogAdapter{log: m.log})
	goose.SetTableName(m.table)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set migration dialect: %w", err)
	}

	before, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	if err := goose.UpContext(ctx, db, m.dir); err != nil {
		return 0, fmt.Errorf("apply schema: %w", err)
	}

	after, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if after == before {
		return 0, nil
	}

	applied, err := goose.CollectMigrations(m.dir, before, after)
	if err != nil {
		return 0, fmt.Errorf("count applied changesets: %w", err)
	}
	return len(applied), nil
}

// gooseSlogAdapter routes goose's Printf-style output through slog.
type gooseSlogAdapter struct {
	log *slog.Logger
}

func (a gooseSlogAdapter) Fatalf(format string, v ...any) {
	a.log.Error(fmt.Sprintf(format, v...))
}

func (a gooseSlogAdapter) Printf(format string, v ...any) {
	a.log.Info(fmt.Sprintf(format, v...))
}
