package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"sjsage522/brochureworker/internal/brochure"
	"sjsage522/brochureworker/logger"
	apperrors "sjsage522/brochureworker/pkg/errors"
)

// FileSink writes the collection as an indented JSON array to a file
type FileSink struct {
	path string
}

// NewFileSink creates a sink writing to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Write replaces the file with the collection. The file is written to a
// temporary name first so a failed run never leaves a truncated file.
func (f *FileSink) Write(_ context.Context, records []brochure.Record) error {
	if records == nil {
		records = []brochure.Record{}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(records); err != nil {
		return apperrors.NewPersistence("failed to encode brochures", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return apperrors.NewPersistence("failed to create output directory", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return apperrors.NewPersistence("failed to write "+tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return apperrors.NewPersistence("failed to move output to "+f.path, err)
	}

	logger.ForSink("file").Info().
		Str("path", f.path).
		Int("count", len(records)).
		Msg("Saved brochures")
	return nil
}

// Close is a no-op
func (f *FileSink) Close() error {
	return nil
}
