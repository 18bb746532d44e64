package postgres

import (
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies all pending schema migrations on the connection.
func (c *Connection) Migrate() error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "load migrations")
	}

	driver, err := migratepg.WithInstance(c.db, &migratepg.Config{})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "init migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "init migrator")
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.ErrCodePersistence, "apply migrations")
	}

	version, dirty, _ := m.Version()
	c.logger.Info("schema migrated",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty),
	)
	return nil
}
