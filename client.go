package bsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/syssam/bsql/config"
	"github.com/syssam/bsql/dialect"
	"github.com/syssam/bsql/dialect/sql"
	"github.com/syssam/bsql/dialect/sql/schema"
	"github.com/syssam/bsql/dialect/sql/sqlgraph"
)

// Client is the registry shared by all sessions of a database: the schema
// catalog, the relationship resolver, the query-result cache and the record
// definitions. It is safe for concurrent use.
type Client struct {
	drv      dialect.Driver
	stats    *sql.StatsDriver
	log      *slog.Logger
	catalog  *schema.Catalog
	resolver *sqlgraph.Resolver
	cache    *QueryCache
	verbose  bool

	mu    sync.RWMutex
	defs  map[string]*Definition
	order []*Definition
}

type options struct {
	log        *slog.Logger
	noCache    bool
	ttl        time.Duration
	purgeEvery int
	now        func() time.Time
	verbose    bool
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger of the client and its sessions.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithCache sets the time-to-live and purge period of the query-result
// cache. Non-positive values keep the defaults.
func WithCache(ttl time.Duration, purgeEvery int) Option {
	return func(o *options) {
		o.ttl, o.purgeEvery = ttl, purgeEvery
	}
}

// WithoutCache disables the query-result cache.
func WithoutCache() Option {
	return func(o *options) { o.noCache = true }
}

// WithClock sets the clock of the query-result cache.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithVerboseGeneration logs every generated statement at debug level.
func WithVerboseGeneration() Option {
	return func(o *options) { o.verbose = true }
}

// NewClient returns a client running its statements on drv.
func NewClient(drv dialect.Driver, opts ...Option) *Client {
	return newClient(drv, newOptions(opts))
}

func newOptions(opts []Option) *options {
	o := &options{log: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func newClient(drv dialect.Driver, o *options) *Client {
	c := &Client{
		drv:      drv,
		log:      o.log,
		catalog:  schema.NewCatalog(drv, schema.WithLogger(o.log)),
		resolver: sqlgraph.NewResolver(drv),
		verbose:  o.verbose,
		defs:     make(map[string]*Definition),
	}
	if !o.noCache {
		c.cache = NewQueryCache(o.ttl, o.purgeEvery, o.now)
	}
	return c
}

// Open connects to the MySQL database described by cfg. Options given
// here override the ones derived from cfg.
func Open(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base := []Option{WithCache(cfg.CacheTTL, cfg.CachePurgeEvery)}
	if !cfg.CacheEnabled {
		base = append(base, WithoutCache())
	}
	if cfg.VerboseGeneration {
		base = append(base, WithVerboseGeneration())
	}
	o := newOptions(append(base, opts...))
	conn, err := sql.Open(dialect.MySQL, cfg.DSN())
	if err != nil {
		return nil, err
	}
	var (
		drv   dialect.Driver = conn
		stats *sql.StatsDriver
	)
	if cfg.SlowQueryThreshold > 0 {
		stats = sql.NewStatsDriver(drv, sql.WithSlowThreshold(cfg.SlowQueryThreshold), sql.WithSlowQueryLog(o.log))
		drv = stats
	}
	if cfg.VerboseExecution {
		drv = sql.NewDebugDriver(drv, o.log)
	}
	c := newClient(drv, o)
	c.stats = stats
	return c, nil
}

// Driver returns the driver of the client.
func (c *Client) Driver() dialect.Driver { return c.drv }

// Catalog returns the schema catalog.
func (c *Client) Catalog() *schema.Catalog { return c.catalog }

// Cache returns the query-result cache, or nil when caching is disabled.
func (c *Client) Cache() *QueryCache { return c.cache }

// Stats returns the statement statistics. ok is false unless the client was
// opened with a slow query threshold.
func (c *Client) Stats() (s sql.StatsSnapshot, ok bool) {
	if c.stats == nil {
		return s, false
	}
	return c.stats.QueryStats().Stats(), true
}

// Close closes the driver.
func (c *Client) Close() error {
	return c.drv.Close()
}

// Register adds record definitions. Definitions are validated together
// with the ones already registered; on error nothing is registered.
func (c *Client) Register(defs ...*Definition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := make([]schema.TableDef, 0, len(c.order)+len(defs))
	for _, d := range c.order {
		all = append(all, d.TableDef())
	}
	for _, d := range defs {
		all = append(all, d.TableDef())
	}
	res := schema.ValidateDefinitions(all)
	if err := res.Err(); err != nil {
		return fmt.Errorf("bsql: register: %w", err)
	}
	for _, w := range res.Warnings {
		c.log.Warn("definition warning", "table", w.Table, "column", w.Column, "warning", w.Message)
	}
	for _, d := range defs {
		c.defs[d.Name()] = d
		c.order = append(c.order, d)
	}
	return nil
}

// Definitions returns the registered definitions in registration order.
func (c *Client) Definitions() []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Definition(nil), c.order...)
}

// CreateAll executes one CREATE TABLE IF NOT EXISTS statement per
// registered definition, in registration order. Existing tables are left
// as they are; differences with their definition are logged as warnings.
func (c *Client) CreateAll(ctx context.Context) error {
	for _, d := range c.Definitions() {
		stmt, err := schema.CreateTable(d.TableDef())
		if err != nil {
			return err
		}
		if err := c.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return &ExecutorError{Op: "create", SQL: stmt, Err: err}
		}
		t, err := c.table(ctx, d.Name())
		if err != nil {
			return err
		}
		for _, w := range schema.ValidateExisting(d.TableDef(), t).Warnings {
			c.log.WarnContext(ctx, "existing table differs from definition", "table", w.Table, "column", w.Column, "warning", w.Message)
		}
	}
	return nil
}

func (c *Client) definition(table string) *Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defs[table]
}

// table loads a catalog entry. Unknown tables are reported as a
// *ResolutionError.
func (c *Client) table(ctx context.Context, name string) (*schema.Table, error) {
	t, err := c.catalog.Load(ctx, name)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, schema.ErrTableNotFound):
		return nil, NewResolutionError(name, "", err)
	default:
		return nil, &ExecutorError{Op: "introspect", Err: err}
	}
}
