// Package pdfdoc gives the extraction pipeline a per-page view of a PDF
// catalog: text/image classification, native text, and rasterization.
package pdfdoc

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ltpdf "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// textBasedMinChars is the count of non-whitespace characters above which a
// page is treated as text-based and rasterization can be skipped.
const textBasedMinChars = 50

type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
}

// Document is a read handle on one PDF file. Pages are 0-indexed.
type Document struct {
	path      string
	pageCount int
	cfg       Config
	runner    Runner
	logger    *slog.Logger
}

// Open validates the file and reads its page count.
func Open(path string, cfg Config, runner Runner, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pdf not found: %w", err)
	}
	pctx, err := api.ReadContextFile(path)
	if err != nil {
		logger.Error("pdf open failed", "path", path, "error", err)
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	d := &Document{
		path:      path,
		pageCount: pctx.PageCount,
		cfg:       cfg,
		runner:    runner,
		logger:    logger,
	}
	logger.Info("pdf opened", "path", path, "pages", d.pageCount)
	return d, nil
}

func (d *Document) Path() string   { return d.path }
func (d *Document) PageCount() int { return d.pageCount }

// IsTextBased reports whether a page carries extractable text. Errors are
// treated as "image-based" so the caller falls through to OCR.
func (d *Document) IsTextBased(page int) bool {
	text, err := d.ExtractText(page)
	if err != nil {
		d.logger.Warn("page classification failed, assuming image-based", "page", page, "error", err)
		return false
	}
	n := 0
	for _, r := range text {
		if !strings.ContainsRune(" \t\n\r\f\v", r) {
			n++
		}
	}
	return n > textBasedMinChars
}

// ExtractText returns the native text of one page.
func (d *Document) ExtractText(page int) (string, error) {
	if page < 0 || page >= d.pageCount {
		return "", fmt.Errorf("page %d out of range [0,%d)", page, d.pageCount)
	}

	f, r, err := ltpdf.Open(d.path)
	if err != nil {
		return "", fmt.Errorf("open pdf for text: %w", err)
	}
	defer f.Close()

	p := r.Page(page + 1) // ledongthuc pages are 1-based
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d is missing", page)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract text from page %d: %w", page, err)
	}
	d.logger.Debug("native text extracted", "page", page, "chars", len(text))
	return text, nil
}

// RenderPage rasterizes one page to an image at the given DPI using pdftoppm
// (pdftoppm scales by dpi/72 of the page's native points). Render failures
// are returned as errors for the caller to log and skip; they never abort a
// whole pass.
func (d *Document) RenderPage(ctx context.Context, page int, dpi int) (image.Image, error) {
	if page < 0 || page >= d.pageCount {
		return nil, fmt.Errorf("page %d out of range [0,%d)", page, d.pageCount)
	}
	if dpi <= 0 {
		dpi = 300
	}

	tmpDir, err := os.MkdirTemp("", "catex-render-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			d.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	pageArg := strconv.Itoa(page + 1) // pdftoppm pages are 1-based
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -f N -l N -r DPI -png -singlefile <in.pdf> <tmp/page>
	_, errb, err := d.runner.Run(ctx, d.cfg.Pdftoppm,
		"-f", pageArg, "-l", pageArg,
		"-r", strconv.Itoa(dpi),
		"-png", "-singlefile",
		d.path, prefix)
	if err != nil {
		return nil, fmt.Errorf("pdftoppm page %d: %w: %s", page, err, truncate(string(errb), 512))
	}

	out, err := os.Open(prefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm produced no image for page %d: %w", page, err)
	}
	defer out.Close()

	img, err := png.Decode(out)
	if err != nil {
		return nil, fmt.Errorf("decode rendered page %d: %w", page, err)
	}

	b := img.Bounds()
	d.logger.Debug("page rendered", "page", page, "dpi", dpi, "width", b.Dx(), "height", b.Dy())
	return img, nil
}
