// Package postgres stores the dex reference data in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/evspread/internal/config"
)

// ErrSchemaMissing is returned by CheckSchema when the dex migrations have not been applied.
var ErrSchemaMissing = errors.New("dex schema missing; run migrate")

// dexTables are the tables created by the dex migrations.
var dexTables = []string{"dex_types", "dex_type_chart", "dex_species", "dex_moves", "dex_natures"}

// Pool owns the connection pool shared by the dex repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the database described by cfg and pings it.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a connected Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	p := &Pool{pool: pool}
	if err := p.Health(ctx, 5*time.Second); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return p, nil
}

// Health pings the database within timeout.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// CheckSchema verifies every dex table exists.
//
// Postcondition: Returns nil, an error wrapping ErrSchemaMissing naming the
// first absent table, or a query error.
func (p *Pool) CheckSchema(ctx context.Context) error {
	for _, table := range dexTables {
		var present bool
		if err := p.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&present); err != nil {
			return fmt.Errorf("checking table %s: %w", table, err)
		}
		if !present {
			return fmt.Errorf("%w: table %s", ErrSchemaMissing, table)
		}
	}
	return nil
}

// Dex returns a repository over this pool.
func (p *Pool) Dex() *DexRepository {
	return NewDexRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
