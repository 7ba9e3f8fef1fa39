package extraction

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// textLayerResult holds the outcome of a text-layer extraction pass
type textLayerResult struct {
	Text  string
	Pages int
}

// textLayerReader extracts the embedded text layer from a PDF
type textLayerReader interface {
	Extract(data []byte, maxPages int) (textLayerResult, error)
}

// pdfTextReader reads the embedded text layer of a PDF document
type pdfTextReader struct{}

func newPDFTextReader() *pdfTextReader {
	return &pdfTextReader{}
}

// Extract pulls the text layer page by page. Pages whose content stream
// cannot be decoded are skipped rather than failing the whole document.
// The pdf library panics on some malformed documents, so the whole pass
// runs behind a recover.
func (r *pdfTextReader) Extract(data []byte, maxPages int) (result textLayerResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = textLayerResult{}
			err = fmt.Errorf("%w: %v", ErrInvalidPDF, rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return textLayerResult{}, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	total := reader.NumPage()
	if total == 0 {
		return textLayerResult{}, fmt.Errorf("%w: document has no pages", ErrInvalidPDF)
	}
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	return textLayerResult{
		Text:  strings.TrimSpace(sb.String()),
		Pages: total,
	}, nil
}
