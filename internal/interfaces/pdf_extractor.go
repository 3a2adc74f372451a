package interfaces

import "context"

// PDFTextExtractor extracts plain text from PDF bytes. The implementation is
// line-oriented text recovery, not layout understanding; callers treat the
// output as semi-structured text for pattern matching.
type PDFTextExtractor interface {
	// ExtractText returns the plain text of all pages, concatenated in page
	// order.
	ExtractText(ctx context.Context, pdfContent []byte) (string, error)
}
