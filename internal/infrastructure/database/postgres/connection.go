// Package postgres manages the optional relational backend used to persist
// source version state in multi-instance deployments.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// sqlOpen is a variable so tests can substitute the driver.
var sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
	return sql.Open(driverName, dsn)
}

// Connection owns the database pool.
type Connection struct {
	db     *sql.DB
	logger logging.Logger
}

// NewConnection opens a pool against the configured database and verifies it
// with a ping.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig, logger logging.Logger) (*Connection, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	db, err := sqlOpen("pgx", buildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistence, "open database")
	}
	db.SetMaxOpenConns(intOr(cfg.MaxConns, 10))
	db.SetMaxIdleConns(intOr(cfg.MinConns, 5))
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodePersistence, "ping database")
	}

	logger.Named("postgres").Info("database connected",
		logging.String("host", cfg.Host),
		logging.String("database", cfg.DBName),
	)
	return &Connection{db: db, logger: logger.Named("postgres")}, nil
}

// DB exposes the underlying pool.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Close releases the pool.
func (c *Connection) Close() error {
	return c.db.Close()
}

func buildDSN(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.DBName, sslMode,
	)
}

func intOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
