package extraction

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"go.uber.org/zap"
)

// ocrReader recognizes text from a scanned PDF
type ocrReader interface {
	Extract(ctx context.Context, data []byte, maxPages int) (string, error)
}

// tesseractOCR rasterizes PDF pages with pdftoppm and recognizes them
// with a Tesseract client.
type tesseractOCR struct {
	pdftoppmPath  string
	language      string
	dpi           int
	logger        *zap.Logger
	clientFactory func() *gosseract.Client
}

func newTesseractOCR(pdftoppmPath, language string, dpi int, logger *zap.Logger) *tesseractOCR {
	return &tesseractOCR{
		pdftoppmPath:  pdftoppmPath,
		language:      language,
		dpi:           dpi,
		logger:        logger,
		clientFactory: gosseract.NewClient,
	}
}

// Extract renders each page to PNG and runs OCR over the page images.
// A single client instance is reused across pages to amortize setup costs.
func (o *tesseractOCR) Extract(ctx context.Context, data []byte, maxPages int) (string, error) {
	workDir, err := os.MkdirTemp("", "resume-ocr-*")
	if err != nil {
		return "", fmt.Errorf("ocr: failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	pdfPath := filepath.Join(workDir, "input.pdf")
	if err := os.WriteFile(pdfPath, data, 0o600); err != nil {
		return "", fmt.Errorf("ocr: failed to write input: %w", err)
	}

	pages, err := o.rasterize(ctx, pdfPath, workDir, maxPages)
	if err != nil {
		return "", err
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("%w: renderer produced no pages", ErrOCRFailed)
	}

	c := o.clientFactory()
	defer c.Close()

	if o.language != "" {
		if err := c.SetLanguage(o.language); err != nil {
			return "", fmt.Errorf("ocr: set language: %w", err)
		}
	}
	if o.dpi > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(o.dpi)); err != nil {
			return "", fmt.Errorf("ocr: set dpi: %w", err)
		}
	}

	var sb strings.Builder
	for _, pagePath := range pages {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		img, err := os.ReadFile(pagePath)
		if err != nil {
			return "", fmt.Errorf("ocr: read page image: %w", err)
		}
		if err := c.SetImageFromBytes(img); err != nil {
			return "", fmt.Errorf("ocr: set image: %w", err)
		}
		text, err := c.Text()
		if err != nil {
			o.logger.Warn("OCR failed for page, skipping",
				zap.String("page", filepath.Base(pagePath)),
				zap.Error(err),
			)
			continue
		}
		sb.WriteString(strings.TrimSpace(text))
		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String()), nil
}

// rasterize renders PDF pages to PNG files and returns their paths in page order
func (o *tesseractOCR) rasterize(ctx context.Context, pdfPath, workDir string, maxPages int) ([]string, error) {
	prefix := filepath.Join(workDir, "page")
	args := []string{"-png", "-r", fmt.Sprint(o.dpi)}
	if maxPages > 0 {
		args = append(args, "-l", fmt.Sprint(maxPages))
	}
	args = append(args, pdfPath, prefix)

	cmd := exec.CommandContext(ctx, o.pdftoppmPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: pdftoppm: %v: %s", ErrOCRFailed, err, strings.TrimSpace(string(out)))
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil {
		return nil, fmt.Errorf("ocr: glob pages: %w", err)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order
	sort.Strings(pages)
	return pages, nil
}
