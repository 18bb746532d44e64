package postgres

import (
	"context"
	"database/sql"

	"github.com/coscheck/coscheck/internal/infrastructure/state"
	"github.com/coscheck/coscheck/pkg/errors"
)

// VersionStore persists SourceVersionState in the source_versions table. The
// whole mapping is replaced inside one transaction per save, matching the
// all-or-nothing contract of the file store.
type VersionStore struct {
	db *sql.DB
}

// NewVersionStore builds a store over an open connection.
func NewVersionStore(conn *Connection) *VersionStore {
	return &VersionStore{db: conn.DB()}
}

var _ state.Store = (*VersionStore)(nil)

// Load reads the full mapping. An empty table yields an empty mapping.
func (s *VersionStore) Load(ctx context.Context) (state.Versions, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT source, marker FROM source_versions`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistence, "query source versions")
	}
	defer rows.Close()

	v := state.Versions{}
	for rows.Next() {
		var source, marker string
		if err := rows.Scan(&source, &marker); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodePersistence, "scan source version")
		}
		v[source] = marker
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodePersistence, "iterate source versions")
	}
	return v, nil
}

// Save replaces the full mapping atomically.
func (s *VersionStore) Save(ctx context.Context, v state.Versions) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "begin save")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM source_versions`); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "clear source versions")
	}
	for source, marker := range v {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO source_versions (source, marker, updated_at) VALUES ($1, $2, now())`,
			source, marker,
		); err != nil {
			return errors.Wrap(err, errors.ErrCodePersistence, "insert source version")
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "commit save")
	}
	return nil
}
