package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/pdftables/internal/ocr"
)

// ImageExtractor runs OCR over a scanned page image and splits the
// recognized text into tables. Columns are separated by runs of two or more
// spaces in Tesseract's layout-preserving output.
type ImageExtractor struct {
	opts Options
}

// NewImageExtractor returns an OCR-backed extractor.
func NewImageExtractor(opts Options) *ImageExtractor {
	return &ImageExtractor{opts: opts}
}

// Extract implements Extractor. Without the ocr build tag every call fails
// with ocr.ErrOCRNotEnabled.
func (e *ImageExtractor) Extract(ctx context.Context, path string) ([]Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client, err := ocr.New()
	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", path, err)
	}
	defer client.Close()

	if e.opts.OCRLanguage != "" {
		if err := client.SetLanguage(e.opts.OCRLanguage); err != nil {
			return nil, fmt.Errorf("ocr language %q: %w", e.opts.OCRLanguage, err)
		}
	}
	if err := client.SetPageSegMode(e.opts.pageSegMode()); err != nil {
		return nil, fmt.Errorf("ocr page mode: %w", err)
	}

	text, err := client.RecognizeImage(data)
	if err != nil {
		return nil, fmt.Errorf("ocr %s: %w", path, err)
	}

	return e.textTables(text)
}

func (o Options) pageSegMode() ocr.PageSegMode {
	if o.PageSegMode == 0 {
		return ocr.PSM_SINGLE_BLOCK
	}
	return o.PageSegMode
}

// textTables splits recognized text into tables.
func (e *ImageExtractor) textTables(text string) ([]Table, error) {
	seq := 0
	tables := buildTables(splitLines(text), e.opts.MinColumns, FamilyOCR, 1, &seq)
	if len(tables) == 0 {
		return nil, ErrNoTables
	}
	return tables, nil
}
