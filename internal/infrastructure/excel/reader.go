// Package excel loads spreadsheet sources into raw tables.
package excel

import (
	"bytes"
	"context"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/coscheck/coscheck/internal/domain/table"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// Reader turns xlsx payloads into raw tables. A payload that cannot be
// parsed yields an error with ErrCodeSourceUnreadable; callers skip the
// source and continue with the others.
type Reader interface {
	// ReadBytes parses an in-memory xlsx payload. The first sheet becomes
	// the table.
	ReadBytes(ctx context.Context, name string, data []byte) (table.RawTable, error)

	// ReadFile parses an xlsx file on disk.
	ReadFile(ctx context.Context, path string) (table.RawTable, error)
}

type reader struct {
	logger logging.Logger
}

// NewReader builds a Reader.
func NewReader(logger logging.Logger) Reader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &reader{logger: logger.Named("excel")}
}

func (r *reader) ReadBytes(ctx context.Context, name string, data []byte) (table.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return table.RawTable{}, errors.Wrap(err, errors.CodeInternal, "read cancelled")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return table.RawTable{}, errors.Wrap(err, errors.ErrCodeSourceUnreadable, "parse xlsx "+name)
	}
	defer f.Close()

	return r.firstSheet(f, name)
}

func (r *reader) ReadFile(ctx context.Context, path string) (table.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return table.RawTable{}, errors.Wrap(err, errors.CodeInternal, "read cancelled")
	}

	if _, err := os.Stat(path); err != nil {
		return table.RawTable{}, errors.Wrap(err, errors.ErrCodeSourceUnreadable, "open xlsx "+path)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return table.RawTable{}, errors.Wrap(err, errors.ErrCodeSourceUnreadable, "parse xlsx "+path)
	}
	defer f.Close()

	return r.firstSheet(f, path)
}

func (r *reader) firstSheet(f *excelize.File, name string) (table.RawTable, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return table.RawTable{}, errors.New(errors.ErrCodeSourceUnreadable, "no sheets in "+name)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return table.RawTable{}, errors.Wrap(err, errors.ErrCodeSourceUnreadable, "read sheet of "+name)
	}

	r.logger.Debug("loaded sheet",
		logging.String("source", name),
		logging.String("sheet", sheets[0]),
		logging.Int("rows", len(rows)),
	)
	return table.NewRawTable(rows), nil
}
