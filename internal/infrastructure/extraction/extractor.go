package extraction

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/resumescore/backend/internal/domain/scoring"
)

var (
	ErrInvalidPDF = errors.New("extraction: failed to parse PDF")
	ErrOCRFailed  = errors.New("extraction: OCR failed")
	ErrNoText     = errors.New("extraction: no text could be extracted")
)

// Config holds PDF extraction settings
type Config struct {
	OCREnabled      bool
	OCRLanguage     string
	OCRDPI          int
	PdftoppmPath    string
	MinCharsPerPage int
	MaxPages        int
	Timeout         time.Duration
}

// applyDefaults fills zero values with sensible defaults
func (c *Config) applyDefaults() {
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.OCRDPI == 0 {
		c.OCRDPI = 300
	}
	if c.PdftoppmPath == "" {
		c.PdftoppmPath = "pdftoppm"
	}
	if c.MinCharsPerPage == 0 {
		c.MinCharsPerPage = 64
	}
	if c.MaxPages == 0 {
		c.MaxPages = 50
	}
	if c.Timeout == 0 {
		c.Timeout = 2 * time.Minute
	}
}

// Result is the outcome of a PDF extraction
type Result struct {
	Text   string
	Method scoring.ExtractionMethod
	Pages  int
}

// Extractor pulls resume text out of PDF documents, preferring the embedded
// text layer and falling back to OCR for scanned documents.
type Extractor struct {
	config    Config
	logger    *zap.Logger
	textLayer textLayerReader
	ocr       ocrReader
}

// NewExtractor creates a new PDF text extractor
func NewExtractor(config Config, logger *zap.Logger) *Extractor {
	config.applyDefaults()
	return &Extractor{
		config:    config,
		logger:    logger,
		textLayer: newPDFTextReader(),
		ocr:       newTesseractOCR(config.PdftoppmPath, config.OCRLanguage, config.OCRDPI, logger),
	}
}

// ExtractPDF extracts text from the given PDF bytes. The text layer wins when
// it carries enough characters per page; otherwise the document is treated as
// scanned and handed to OCR when enabled.
func (e *Extractor) ExtractPDF(ctx context.Context, data []byte) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	layer, err := e.textLayer.Extract(data, e.config.MaxPages)
	if err != nil {
		return nil, err
	}

	if e.textLayerSufficient(layer) {
		return &Result{
			Text:   layer.Text,
			Method: scoring.ExtractionTextLayer,
			Pages:  layer.Pages,
		}, nil
	}

	if !e.config.OCREnabled {
		if layer.Text == "" {
			return nil, ErrNoText
		}
		// Sparse but present text layer is better than nothing
		return &Result{
			Text:   layer.Text,
			Method: scoring.ExtractionTextLayer,
			Pages:  layer.Pages,
		}, nil
	}

	e.logger.Info("Text layer too sparse, falling back to OCR",
		zap.Int("pages", layer.Pages),
		zap.Int("chars", len(layer.Text)),
	)

	text, err := e.ocr.Extract(ctx, data, e.config.MaxPages)
	if err != nil {
		return nil, err
	}
	if text == "" {
		if layer.Text != "" {
			return &Result{Text: layer.Text, Method: scoring.ExtractionTextLayer, Pages: layer.Pages}, nil
		}
		return nil, ErrNoText
	}

	return &Result{
		Text:   text,
		Method: scoring.ExtractionOCR,
		Pages:  layer.Pages,
	}, nil
}

// textLayerSufficient reports whether the text layer carries enough content
// to skip OCR.
func (e *Extractor) textLayerSufficient(layer textLayerResult) bool {
	if layer.Pages == 0 {
		return false
	}
	return len(layer.Text)/layer.Pages >= e.config.MinCharsPerPage
}
