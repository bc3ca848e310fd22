// catalog-extract runs the full multi-pass extraction over one PDF catalog
// and writes the consolidated items to an XLSX or CSV file.
//
// Usage:
//
//	catalog-extract [flags] <catalog.pdf>
//
// Database and toolchain settings come from the environment (DB_DRIVER,
// DB_URL, TESSERACT_BIN, ...); per-run tuning from flags.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/internal/async"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/export"
	"github.com/partstream/catalog-extractor/internal/extract"
	"github.com/partstream/catalog-extractor/internal/imaging"
	"github.com/partstream/catalog-extractor/internal/multipass"
	"github.com/partstream/catalog-extractor/internal/ocr"
	"github.com/partstream/catalog-extractor/internal/pdfdoc"
	repo "github.com/partstream/catalog-extractor/internal/repository"
	"github.com/partstream/catalog-extractor/internal/strategy"
	"github.com/partstream/catalog-extractor/internal/table"
)

func main() {
	var (
		dpi           = flag.Int("dpi", 0, "rasterization DPI (default from EXTRACT_DPI)")
		minConfidence = flag.Float64("min-confidence", 0, "validated-item confidence floor (default from EXTRACT_MIN_CONFIDENCE)")
		forceOCR      = flag.Bool("force-ocr", false, "rasterize and OCR even text-based pages")
		optionsJSON   = flag.String("options", "", "extraction options as JSON (overrides the flags above)")
		output        = flag.String("o", "", "output file (default <catalog>.xlsx)")
		format        = flag.String("format", "xlsx", "output format: xlsx or csv")
		verbose       = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if flag.NArg() != 1 {
		logger.Error("usage", "cmd", "catalog-extract [flags] <catalog.pdf>")
		os.Exit(2)
	}
	pdfPath := flag.Arg(0)
	if *format != "xlsx" && *format != "csv" {
		logger.Error("invalid format", "format", *format)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	opts, err := runOptions(*optionsJSON, *dpi, *minConfidence, *forceOCR, cfg)
	if err != nil {
		logger.Error("invalid options", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer store.Close(logger)
	if err := store.Migrate(ctx, logger); err != nil {
		logger.Error("migrate db", "error", err)
		os.Exit(1)
	}

	documents := repo.NewDocumentRepository(store, logger)
	passes := repo.NewPassRepository(store, logger)
	items := repo.NewItemRepository(store, logger)
	consolidated := repo.NewConsolidatedRepository(store, logger)

	runner := pdfdoc.ExecRunner{}
	doc, err := pdfdoc.Open(pdfPath, pdfdoc.Config{Pdftoppm: cfg.OCR.Pdftoppm}, runner, logger)
	if err != nil {
		logger.Error("open pdf", "path", pdfPath, "error", err)
		os.Exit(1)
	}

	document, err := documents.Create(ctx, filepath.Base(pdfPath), pdfPath, doc.PageCount())
	if err != nil {
		logger.Error("register document", "error", err)
		os.Exit(1)
	}

	deps := strategy.Deps{
		Preprocessor: imaging.NewPreprocessor(logger, cfg.Extraction.DebugImages),
		Recognizer: ocr.NewRecognizer(ocr.Config{
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.TesseractLang,
			TessdataDir:   cfg.OCR.TessdataDir,
			PSM:           cfg.OCR.PSM,
			OEM:           cfg.OCR.OEM,
		}, runner, logger),
		Reconstructor: table.NewReconstructor(logger),
		Extractor:     extract.NewExtractor(logger),
		Logger:        logger,
	}
	processor := multipass.NewProcessor(passes, items, consolidated, deps, logger)

	queue := async.NewExtractionQueue(processor, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.JobTimeout),
	)

	done := make(chan error, 1)
	err = queue.Enqueue(ctx, async.Job{
		DocumentID:  document.ID,
		Source:      doc,
		Options:     opts,
		SubmittedAt: time.Now(),
		OnDone: func(passIDs []uuid.UUID, err error) {
			done <- err
		},
	})
	if err != nil {
		logger.Error("enqueue", "error", err)
		os.Exit(1)
	}

	select {
	case err = <-done:
	case <-ctx.Done():
		logger.Warn("interrupted, shutting down")
		err = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	queue.Shutdown(shutdownCtx)
	cancel()

	if err != nil {
		logger.Error("extraction failed", "document_id", document.ID, "error", err)
		os.Exit(1)
	}

	exportCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := writeExport(exportCtx, export.NewService(consolidated, logger), document.ID, pdfPath, *output, *format); err != nil {
		logger.Error("export failed", "document_id", document.ID, "error", err)
		os.Exit(1)
	}
}

func runOptions(optionsJSON string, dpi int, minConfidence float64, forceOCR bool, cfg *common.Config) (multipass.Options, error) {
	if optionsJSON != "" {
		opts, err := multipass.ParseOptions([]byte(optionsJSON))
		if err != nil {
			return multipass.Options{}, err
		}
		return opts.Normalize(cfg.Extraction.DPI, cfg.Extraction.MinConfidence), nil
	}
	opts := multipass.Options{DPI: dpi, MinConfidence: minConfidence, ForceOCR: forceOCR}
	return opts.Normalize(cfg.Extraction.DPI, cfg.Extraction.MinConfidence), nil
}

func openStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repo.Store, error) {
	if cfg.Database.Driver == "sqlite" {
		return repo.OpenSQLite(cfg.Database.DSN, logger)
	}
	return repo.Open(ctx, repo.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
}

func writeExport(ctx context.Context, svc *export.Service, documentID uuid.UUID, pdfPath, output, format string) error {
	if output == "" {
		base := pdfPath[:len(pdfPath)-len(filepath.Ext(pdfPath))]
		output = base + "." + format
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case "csv":
		data, err = svc.ExportCSV(ctx, documentID)
	default:
		data, err = svc.ExportXLSX(ctx, documentID)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	slog.Info("export written", "path", output, "bytes", len(data))
	return nil
}
