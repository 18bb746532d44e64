package state

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// FileStore keeps the version mapping in one JSON file, replaced atomically
// on every save via a temp file and rename.
type FileStore struct {
	path   string
	logger logging.Logger
}

// NewFileStore builds a FileStore at the given path.
func NewFileStore(path string, logger logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &FileStore{path: path, logger: logger.Named("state-file")}
}

// Load reads the mapping. A missing, unreadable, or corrupt file yields an
// empty mapping, so no prior-state problem ever wedges a freshness cycle;
// anything beyond a plain missing file is warned about first.
func (s *FileStore) Load(ctx context.Context) (Versions, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "load cancelled")
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("state file unreadable, starting from empty",
				logging.String("path", s.path),
				logging.Err(err),
			)
		}
		return Versions{}, nil
	}

	var v Versions
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("state file corrupt, starting from empty",
			logging.String("path", s.path),
			logging.Err(err),
		)
		return Versions{}, nil
	}
	if v == nil {
		v = Versions{}
	}
	return v, nil
}

// Save replaces the whole mapping on disk.
func (s *FileStore) Save(ctx context.Context, v Versions) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "save cancelled")
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode state")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "create state dir "+dir)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "create temp state file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, errors.ErrCodePersistence, "write temp state file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "close temp state file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, errors.ErrCodePersistence, "replace state "+s.path)
	}
	return nil
}
