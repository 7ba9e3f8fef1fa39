package extraction

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resumescore/backend/internal/domain/scoring"
)

type stubTextLayer struct {
	result textLayerResult
	err    error
}

func (s *stubTextLayer) Extract(data []byte, maxPages int) (textLayerResult, error) {
	return s.result, s.err
}

type stubOCR struct {
	text   string
	err    error
	called bool
}

func (s *stubOCR) Extract(ctx context.Context, data []byte, maxPages int) (string, error) {
	s.called = true
	return s.text, s.err
}

func newTestExtractor(layer *stubTextLayer, ocr *stubOCR, ocrEnabled bool) *Extractor {
	e := NewExtractor(Config{OCREnabled: ocrEnabled, MinCharsPerPage: 64}, zap.NewNop())
	e.textLayer = layer
	e.ocr = ocr
	return e
}

func TestExtractor_ExtractPDF(t *testing.T) {
	t.Run("uses text layer when dense enough", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: strings.Repeat("a", 200), Pages: 1}}
		ocr := &stubOCR{}
		e := newTestExtractor(layer, ocr, true)

		res, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		require.NoError(t, err)
		assert.Equal(t, scoring.ExtractionTextLayer, res.Method)
		assert.Equal(t, 1, res.Pages)
		assert.False(t, ocr.called)
	})

	t.Run("falls back to OCR for sparse text layer", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: "short", Pages: 3}}
		ocr := &stubOCR{text: "recognized resume text"}
		e := newTestExtractor(layer, ocr, true)

		res, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		require.NoError(t, err)
		assert.Equal(t, scoring.ExtractionOCR, res.Method)
		assert.Equal(t, "recognized resume text", res.Text)
		assert.True(t, ocr.called)
	})

	t.Run("returns sparse text layer when OCR disabled", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: "short", Pages: 3}}
		ocr := &stubOCR{}
		e := newTestExtractor(layer, ocr, false)

		res, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		require.NoError(t, err)
		assert.Equal(t, scoring.ExtractionTextLayer, res.Method)
		assert.Equal(t, "short", res.Text)
		assert.False(t, ocr.called)
	})

	t.Run("fails when no text at all and OCR disabled", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: "", Pages: 2}}
		e := newTestExtractor(layer, &stubOCR{}, false)

		_, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("fails when OCR finds nothing and layer empty", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: "", Pages: 2}}
		ocr := &stubOCR{text: ""}
		e := newTestExtractor(layer, ocr, true)

		_, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("keeps sparse layer when OCR returns empty", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: "sparse text", Pages: 4}}
		ocr := &stubOCR{text: ""}
		e := newTestExtractor(layer, ocr, true)

		res, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		require.NoError(t, err)
		assert.Equal(t, scoring.ExtractionTextLayer, res.Method)
		assert.Equal(t, "sparse text", res.Text)
	})

	t.Run("propagates OCR errors", func(t *testing.T) {
		layer := &stubTextLayer{result: textLayerResult{Text: "", Pages: 1}}
		ocr := &stubOCR{err: ErrOCRFailed}
		e := newTestExtractor(layer, ocr, true)

		_, err := e.ExtractPDF(context.Background(), []byte("%PDF"))

		assert.ErrorIs(t, err, ErrOCRFailed)
	})

	t.Run("propagates invalid PDF errors", func(t *testing.T) {
		layer := &stubTextLayer{err: ErrInvalidPDF}
		e := newTestExtractor(layer, &stubOCR{}, true)

		_, err := e.ExtractPDF(context.Background(), []byte("not a pdf"))

		assert.ErrorIs(t, err, ErrInvalidPDF)
	})
}

func TestPDFTextReader_InvalidDocument(t *testing.T) {
	r := newPDFTextReader()

	_, err := r.Extract([]byte("definitely not a pdf"), 10)

	assert.ErrorIs(t, err, ErrInvalidPDF)
}

func TestConfig_ApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.applyDefaults()

	assert.Equal(t, "eng", cfg.OCRLanguage)
	assert.Equal(t, 300, cfg.OCRDPI)
	assert.Equal(t, "pdftoppm", cfg.PdftoppmPath)
	assert.Equal(t, 64, cfg.MinCharsPerPage)
	assert.Equal(t, 50, cfg.MaxPages)
}
