package ocr

import "errors"

// ErrOCRNotEnabled is returned when OCR support was not compiled in.
// Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// PageSegMode controls how Tesseract analyzes the page layout.
// Values match Tesseract's PSM numbering.
type PageSegMode int

// Page segmentation modes accepted for table images.
const (
	PSM_AUTO          PageSegMode = 3  // Fully automatic
	PSM_SINGLE_COLUMN PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK  PageSegMode = 6  // Single uniform block of text (default)
	PSM_SPARSE_TEXT   PageSegMode = 11 // Find as much text as possible
)

// Valid reports whether m is one of the modes above.
func (m PageSegMode) Valid() bool {
	switch m {
	case PSM_AUTO, PSM_SINGLE_COLUMN, PSM_SINGLE_BLOCK, PSM_SPARSE_TEXT:
		return true
	}
	return false
}
