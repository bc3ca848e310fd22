package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/partstream/catalog-extractor/internal/pdfdoc"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string
	PSM           int
	OEM           int
}

// Recognizer runs tesseract over preprocessed page images.
type Recognizer struct {
	cfg    Config
	runner pdfdoc.Runner
	logger *slog.Logger
}

func NewRecognizer(cfg Config, runner pdfdoc.Runner, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = pdfdoc.ExecRunner{}
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Recognizer{cfg: cfg, runner: runner, logger: logger}
}

// Recognize OCRs one page image: a plain-text run for the flat string plus a
// TSV run for word boxes and confidences.
func (r *Recognizer) Recognize(ctx context.Context, img image.Image, page int) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "catex-ocr-*")
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			r.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	imgPath := filepath.Join(tmpDir, "page.png")
	if err := writePNG(imgPath, img); err != nil {
		return Result{}, fmt.Errorf("write ocr input: %w", err)
	}

	// tesseract <file> stdout [--psm N] [--oem N] [--tessdata-dir D] -l <lang>
	textOut, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, r.args(imgPath)...)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract page %d: %w: %s", page, err, string(errb))
	}

	// same invocation with trailing "tsv" for word-level data
	tsvOut, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, append(r.args(imgPath), "tsv")...)
	if err != nil {
		return Result{}, fmt.Errorf("tesseract tsv page %d: %w: %s", page, err, string(errb))
	}

	words, lines := parseTSV(string(tsvOut), page)
	r.logger.Debug("ocr done", "page", page, "words", len(words), "lines", len(lines))

	return Result{
		Text:  string(textOut),
		Words: words,
		Lines: lines,
	}, nil
}

func (r *Recognizer) args(imgPath string) []string {
	args := []string{imgPath, "stdout"}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", r.cfg.PSM))
	}
	if r.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", r.cfg.OEM))
	}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	args = append(args, "-l", r.cfg.TesseractLang)
	return args
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
