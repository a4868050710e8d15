// Package sitedata publishes the aggregated JSON documents consumed by the
// static frontend. Writes are atomic: a temp file is fully written and
// fsynced before renaming over the previous version, so readers never see a
// torn document
package sitedata

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"atlasmeta/internal/platform/errors"
	"atlasmeta/internal/platform/logger"
)

// Writer writes documents under one output directory
type Writer struct {
	dir string
	log logger.Logger
}

// NewWriter creates the output directory if needed
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.IOf("sitedata: mkdir %s: %v", dir, err)
	}
	return &Writer{dir: dir, log: *logger.Named("sitedata")}, nil
}

// Dir returns the output directory
func (w *Writer) Dir() string { return w.dir }

// WriteDoc serializes v and atomically replaces <name>.json. Compact skips
// indentation for the bulky documents
func (w *Writer) WriteDoc(name string, v any, compact bool) error {
	var (
		b   []byte
		err error
	)
	if compact {
		b, err = json.Marshal(v)
	} else {
		b, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return errors.JSONErrf("sitedata: marshal %s: %v", name, err)
	}
	b = append(b, '\n')

	final := filepath.Join(w.dir, name+".json")
	tmp := final + ".part"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.IOf("sitedata: open %s: %v", tmp, err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.IOf("sitedata: write %s: %v", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return errors.IOf("sitedata: sync %s: %v", tmp, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return errors.IOf("sitedata: close %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		_ = os.Remove(tmp)
		return errors.IOf("sitedata: rename %s: %v", final, err)
	}

	w.log.Debug().Str("doc", name).Int("bytes", len(b)).Msg("document published")
	return nil
}
