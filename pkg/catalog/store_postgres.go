package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps the tenant registry in a Postgres table. This is the
// catalog's own database, separate from every tenant's database; the pool is
// constructed once at process start and injected.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a registry store over the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const findTenantQuery = `
SELECT tenant_id, display_name, connection_url, username, secret,
       driver_kind, max_pool_size, min_idle_size, is_active, created_at
FROM tenant_catalog
WHERE tenant_id = $1`

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx, findTenantQuery, id).Scan(
		&rec.ID, &rec.DisplayName, &rec.ConnectionURL, &rec.Username, &rec.Secret,
		&rec.DriverKind, &rec.MaxPoolSize, &rec.MinIdleSize, &rec.Active, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("find tenant %s: %w", id, err)
	}
	rec = rec.Normalized()
	return &rec, nil
}

const insertTenantQuery = `
INSERT INTO tenant_catalog (
	id, tenant_id, display_name, connection_url, username, secret,
	driver_kind, max_pool_size, min_idle_size, is_active
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *PostgresStore) Create(ctx context.Context, rec Record) error {
	rec = rec.Normalized()
	_, err := s.pool.Exec(ctx, insertTenantQuery,
		uuid.New(), rec.ID, rec.DisplayName, rec.ConnectionURL, rec.Username, rec.Secret,
		rec.DriverKind, rec.MaxPoolSize, rec.MinIdleSize, rec.Active,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTenantExists
		}
		return fmt.Errorf("create tenant %s: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenant_catalog SET is_active = $2, updated_at = now() WHERE tenant_id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("set tenant %s active=%t: %w", id, active, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *PostgresStore) SetProvisioningState(ctx context.Context, id, stage, cause string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenant_catalog SET provisioning_stage = $2, provisioning_error = $3, updated_at = now() WHERE tenant_id = $1`,
		id, stage, cause,
	)
	if err != nil {
		return fmt.Errorf("record provisioning state for tenant %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

// isDuplicateKey detects unique-constraint violations (SQLSTATE 23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
