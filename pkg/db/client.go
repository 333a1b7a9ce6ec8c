package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/vendorverse-backend/pkg/config"
	"github.com/angelmondragon/vendorverse-backend/pkg/logger"
)

const pingTimeout = 3 * time.Second

// Client owns the gorm connection pool.
type Client struct {
	conn   *gorm.DB
	driver string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the configured driver. Postgres is the default; sqlite backs
// local runs and tests and is limited to one connection because it
// serializes writers anyway.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = config.DBDriverPostgres
	}

	var dialector gorm.Dialector
	switch driver {
	case config.DBDriverPostgres:
		// simple protocol keeps pgbouncer in transaction mode happy
		dialector = postgres.New(postgres.Config{DSN: cfg.DSN, PreferSimpleProtocol: true})
	case config.DBDriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 newQueryLogger(logg, cfg.SlowQuery),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}

	if driver == config.DBDriverSQLite {
		pool.SetMaxOpenConns(1)
	} else {
		setIfPositive(cfg.MaxOpenConns, pool.SetMaxOpenConns)
		setIfPositive(cfg.MaxIdleConns, pool.SetMaxIdleConns)
		setIfPositive(cfg.ConnMaxLifetime, pool.SetConnMaxLifetime)
		setIfPositive(cfg.ConnMaxIdleTime, pool.SetConnMaxIdleTime)
	}

	client := &Client{conn: conn, driver: driver}
	if err := client.Ping(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "driver", driver), "database connection established")
	}
	return client, nil
}

func setIfPositive[T int | time.Duration](v T, set func(T)) {
	if v > 0 {
		set(v)
	}
}

func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Driver is config.DBDriverPostgres or config.DBDriverSQLite.
func (c *Client) Driver() string {
	return c.driver
}

// Ping gives up after pingTimeout so readiness probes stay fast.
func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
