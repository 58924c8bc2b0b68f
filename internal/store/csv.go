// Package store persists lot records to an append-only CSV store and tracks
// pipeline runs in a sqlite ledger.
package store

import (
	"encoding/csv"
	"errors"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/gavelworks/auction-cli/internal/model"
)

// CSVStore appends lot records to a fixed-schema CSV file. The header row is
// written exactly once, when the file is first created; reopening an existing
// store never rewrites it. Rows are only ever added.
type CSVStore struct {
	path string
	file *os.File
	w    *csv.Writer
	enc  *csvutil.Encoder
}

// OpenCSV opens (or creates) the store at path in append mode.
func OpenCSV(path string) (*CSVStore, error) {
	_, statErr := os.Stat(path)
	isNew := errors.Is(statErr, os.ErrNotExist)
	if statErr != nil && !isNew {
		return nil, eris.Wrapf(statErr, "csvstore: stat %s", path)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "csvstore: open %s", path)
	}

	w := csv.NewWriter(file)
	enc := csvutil.NewEncoder(w)
	enc.AutoHeader = false

	s := &CSVStore{path: path, file: file, w: w, enc: enc}

	if isNew {
		if err := enc.EncodeHeader(model.LotRecord{}); err != nil {
			_ = file.Close()
			return nil, eris.Wrap(err, "csvstore: write header")
		}
		w.Flush()
		if err := w.Error(); err != nil {
			_ = file.Close()
			return nil, eris.Wrap(err, "csvstore: flush header")
		}
	}

	return s, nil
}

// Append writes one record as one row, positionally mapped to the fixed
// schema; empty fields stay empty strings. A write failure here must abort
// the run: silent partial persistence would corrupt the append-only log.
func (s *CSVStore) Append(rec *model.LotRecord) error {
	if err := s.enc.Encode(rec); err != nil {
		return eris.Wrap(err, "csvstore: encode record")
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return eris.Wrap(err, "csvstore: flush record")
	}
	return nil
}

// Path returns the store's file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Close flushes and closes the underlying file.
func (s *CSVStore) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		_ = s.file.Close()
		return eris.Wrap(err, "csvstore: flush on close")
	}
	return s.file.Close()
}
