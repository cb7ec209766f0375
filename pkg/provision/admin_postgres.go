package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/routegrid/tenancy/pkg/catalog"
)

// PostgresAdmin creates tenant databases on a Postgres server. It connects
// to the server's maintenance database with root credentials per call;
// provisioning is rare enough that a standing pool would be waste.
type PostgresAdmin struct {
	adminURL string
	log      *slog.Logger
}

// NewPostgresAdmin creates an admin over the given maintenance-database URL
// (typically the "postgres" database with a superuser role).
func NewPostgresAdmin(adminURL string, log *slog.Logger) *PostgresAdmin {
	if log == nil {
		log = slog.Default()
	}
	return &PostgresAdmin{adminURL: adminURL, log: log}
}

// EnsureDatabase creates the database named in the tenant's connection URL
// if it does not exist. Postgres has no CREATE DATABASE IF NOT EXISTS, so
// this checks pg_database first and tolerates the duplicate-database error
// from a concurrent provisioning run.
func (a *PostgresAdmin) EnsureDatabase(ctx context.Context, rec catalog.Record) error {
	target, err := pgx.ParseConfig(rec.ConnectionURL)
	if err != nil {
		return fmt.Errorf("parse tenant connection url: %w", err)
	}
	if target.Database == "" {
		return fmt.Errorf("tenant %s connection url names no database", rec.ID)
	}

	conn, err := pgx.Connect(ctx, a.adminURL)
	if err != nil {
		return fmt.Errorf("connect with admin credentials: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`,
		target.Database,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database %s: %w", target.Database, err)
	}
	if exists {
		a.log.DebugContext(ctx, "tenant database already exists",
			slog.String("tenant_id", rec.ID),
			slog.String("database", target.Database),
		)
		return nil
	}

	_, err = conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{target.Database}.Sanitize())
	if err != nil && !isDuplicateDatabase(err) {
		return fmt.Errorf("create database %s: %w", target.Database, err)
	}

	a.log.InfoContext(ctx, "tenant database created",
		slog.String("tenant_id", rec.ID),
		slog.String("database", target.Database),
	)
	return nil
}

// isDuplicateDatabase detects SQLSTATE 42P04, the race where another
// provisioning run created the database between our check and create.
func isDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "42P04"
}
