package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/challanai/invoice-chat-service/internal/models"
)

// ErrNoDatabase is returned when neither the service nor the request names a database
var ErrNoDatabase = errors.New("database not available")

// ErrOverrideNotAllowed is returned when a request carries db_config but overrides are disabled
var ErrOverrideNotAllowed = errors.New("per-request database configuration is disabled")

// ErrInvalidOverride is returned for a db_config that cannot be mapped onto tables
var ErrInvalidOverride = errors.New("invalid db_config")

// Connect opens a pgx pool for databaseURL and verifies it with a ping
func Connect(ctx context.Context, databaseURL string, maxConns int32) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings optimized for PgBouncer
	if maxConns > 0 {
		config.MaxConns = maxConns
	}
	config.MinConns = 1
	config.MaxConnLifetime = 1 * time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Registry hands out request-scoped Store handles. Pools are shared per URL;
// schema and table names travel with each Store.
type Registry struct {
	cfg models.DatabaseConfig
	log *zap.Logger

	mu      sync.Mutex
	pools   map[string]*pgxpool.Pool
	connect func(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error)
}

// NewRegistry creates a registry for the configured database
func NewRegistry(cfg models.DatabaseConfig, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		cfg:     cfg,
		log:     log,
		pools:   map[string]*pgxpool.Pool{},
		connect: Connect,
	}
}

// Open returns a Store for the configured database, or for override when given
// and allowed. The returned Store must not outlive the Registry.
func (r *Registry) Open(ctx context.Context, override *models.DatabaseOverride) (*Store, error) {
	url, schema, tables := r.cfg.URL, r.cfg.Schema, r.cfg.Tables

	if override != nil && override.URI != "" {
		if !r.cfg.AllowRequestOverride {
			return nil, ErrOverrideNotAllowed
		}
		var err error
		url = override.URI
		if override.Database != "" {
			schema = override.Database
		}
		tables, err = TablesFromCollections(override.Collections, tables)
		if err != nil {
			return nil, err
		}
	}
	if url == "" {
		return nil, ErrNoDatabase
	}

	pool, err := r.pool(ctx, url)
	if err != nil {
		return nil, err
	}
	return NewStore(pool, schema, tables), nil
}

// Default returns the pool of the configured database, if connected
func (r *Registry) Default(ctx context.Context) (*pgxpool.Pool, error) {
	if r.cfg.URL == "" {
		return nil, ErrNoDatabase
	}
	return r.pool(ctx, r.cfg.URL)
}

// pool returns the cached pool for url, connecting without holding the lock
// so a slow database does not stall requests for the others
func (r *Registry) pool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	r.mu.Lock()
	pool, ok := r.pools[url]
	r.mu.Unlock()
	if ok {
		return pool, nil
	}

	pool, err := r.connect(ctx, url, r.cfg.MaxConns)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.pools[url]; ok {
		// Lost a race with another request for the same url.
		pool.Close()
		return existing, nil
	}
	r.pools[url] = pool
	r.log.Info("database connection pool initialized", zap.Int("pools", len(r.pools)))
	return pool, nil
}

// Close closes every pool opened by the registry
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for url, pool := range r.pools {
		pool.Close()
		delete(r.pools, url)
	}
	r.log.Info("database connection pools closed")
}

// TablesFromCollections maps the positional collection list of a db_config
// (products, business entities, customers, invoices) onto table names.
// Missing positions keep the defaults.
func TablesFromCollections(collections []string, defaults models.TableNames) (models.TableNames, error) {
	if len(collections) > 4 {
		return defaults, fmt.Errorf("%w: expected at most 4 collections, got %d", ErrInvalidOverride, len(collections))
	}
	tables := defaults
	targets := []*string{&tables.Products, &tables.BusinessEntities, &tables.Customers, &tables.Invoices}
	for i, name := range collections {
		if name != "" {
			*targets[i] = name
		}
	}
	return tables, nil
}
