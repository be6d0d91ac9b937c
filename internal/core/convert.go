package core

// convert.go runs extraction and normalization for one source file.
//
// Extractors return raw cells exactly as found; every body cell is then
// normalized so the output holds one canonical decimal-comma form per number.
// Headers are trimmed but not rewritten.

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JonMunkholm/pdftables/internal/assemble"
	"github.com/JonMunkholm/pdftables/internal/extract"
	"github.com/JonMunkholm/pdftables/internal/normalize"
)

// Conversion is the normalized content of one source file.
type Conversion struct {
	Tables []assemble.Table
	Stats  normalize.Stats
}

// ConvertFile looks up the extractor for path in reg and converts the file.
func ConvertFile(ctx context.Context, reg *extract.Registry, path string) (*Conversion, error) {
	ex, err := reg.ForFile(path)
	if err != nil {
		return nil, err
	}
	return Convert(ctx, ex, path)
}

// Convert extracts every table from path with ex and normalizes it.
func Convert(ctx context.Context, ex extract.Extractor, path string) (*Conversion, error) {
	raw, err := ex.Extract(ctx, path)
	if err != nil {
		return nil, wrapExtractErr(err)
	}
	if len(raw) == 0 {
		return nil, extract.ErrNoTables
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conv := &Conversion{Tables: make([]assemble.Table, 0, len(raw))}
	for _, t := range raw {
		conv.Tables = append(conv.Tables, assemble.FromExtracted(t, &conv.Stats))
	}
	return conv, nil
}

// Write renders the conversion to w.
func (c *Conversion) Write(w io.Writer, format assemble.Format, layout assemble.Layout) error {
	if err := assemble.Write(w, format, layout, c.Tables); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// Save writes the conversion to path.
func (c *Conversion) Save(path string, format assemble.Format, layout assemble.Layout) error {
	if err := assemble.Save(path, format, layout, c.Tables); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}

// wrapExtractErr marks extractor failures as ErrExtractFailed unless they
// already carry a more specific meaning.
func wrapExtractErr(err error) error {
	switch {
	case errors.Is(err, extract.ErrNoTables),
		errors.Is(err, extract.ErrUnsupported),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return fmt.Errorf("%w: %w", ErrExtractFailed, err)
}
