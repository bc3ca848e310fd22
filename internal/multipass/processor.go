// Package multipass runs the fixed escalation policy over one document:
// a table-structure pass, a high-resolution aggressive pass, and a
// conditional plain-text pass over pages the first two read poorly.
// After every completed pass the document's consolidated item set is
// rebuilt from scratch.
package multipass

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/extract"
	"github.com/partstream/catalog-extractor/internal/repository"
	"github.com/partstream/catalog-extractor/internal/strategy"
	"github.com/partstream/catalog-extractor/internal/validate"
)

const (
	aggressivePassDPIFloor = 400
	plainPassDPI           = 450
	lowConfidenceFloor     = 60.0
)

// Processor orchestrates the extraction passes for documents. Safe for
// concurrent use; passes for the same document are serialized.
type Processor struct {
	passes       repository.PassRepository
	items        repository.ItemRepository
	consolidated repository.ConsolidatedRepository
	deps         strategy.Deps
	logger       *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewProcessor(passes repository.PassRepository, items repository.ItemRepository,
	consolidated repository.ConsolidatedRepository, deps strategy.Deps, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		passes:       passes,
		items:        items,
		consolidated: consolidated,
		deps:         deps,
		logger:       logger,
		locks:        make(map[uuid.UUID]*sync.Mutex),
	}
}

func (p *Processor) docLock(documentID uuid.UUID) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[documentID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[documentID] = l
	}
	return l
}

// Process runs the full pass policy for one document and returns the IDs
// of the passes it created. The first pass is load-bearing: its failure
// aborts the run. Later passes only refine the result, so their failures
// are recorded on the pass row and the run continues.
func (p *Processor) Process(ctx context.Context, documentID uuid.UUID, src strategy.Source, opts Options) ([]uuid.UUID, error) {
	lock := p.docLock(documentID)
	lock.Lock()
	defer lock.Unlock()

	log := p.logger.With("document_id", documentID)
	log.Info("multipass started", "pages", src.PageCount(), "dpi", opts.DPI,
		"min_confidence", opts.MinConfidence, "force_ocr", opts.ForceOCR)

	var passIDs []uuid.UUID

	// the table and aggressive strategies always rasterize, so force_ocr is
	// recorded as set on every OCR pass regardless of the caller's flag
	passID, err := p.runPass(ctx, documentID, src, 1, constants.MethodOCRTable,
		strategy.Options{DPI: opts.DPI, ForceOCR: true}, opts.MinConfidence, nil)
	if passID != uuid.Nil {
		passIDs = append(passIDs, passID)
	}
	if err != nil {
		log.Error("initial pass failed, aborting run", "error", err)
		return passIDs, fmt.Errorf("%w: %s", common.ErrPassFailed, err)
	}
	if err := p.consolidateDocument(ctx, documentID); err != nil {
		return passIDs, err
	}

	dpi := opts.DPI
	if dpi < aggressivePassDPIFloor {
		dpi = aggressivePassDPIFloor
	}
	passID, err = p.runPass(ctx, documentID, src, 2, constants.MethodOCRAggressive,
		strategy.Options{DPI: dpi, ForceOCR: true}, opts.MinConfidence, nil)
	if passID != uuid.Nil {
		passIDs = append(passIDs, passID)
	}
	if err != nil {
		log.Warn("aggressive pass failed, continuing", "error", err)
	} else if err := p.consolidateDocument(ctx, documentID); err != nil {
		return passIDs, err
	}

	lowPages, err := p.lowConfidencePages(ctx, documentID, src.PageCount())
	if err != nil {
		return passIDs, err
	}
	if len(lowPages) == 0 {
		log.Info("multipass finished", "passes", len(passIDs), "cleanup_pass", false)
		return passIDs, nil
	}

	log.Info("running cleanup pass over low-confidence pages", "pages", lowPages)
	passID, err = p.runPass(ctx, documentID, src, 3, constants.MethodOCRPlain,
		strategy.Options{DPI: plainPassDPI, ForceOCR: true}, opts.MinConfidence, lowPages)
	if passID != uuid.Nil {
		passIDs = append(passIDs, passID)
	}
	if err != nil {
		log.Warn("cleanup pass failed, continuing", "error", err)
	} else if err := p.consolidateDocument(ctx, documentID); err != nil {
		return passIDs, err
	}

	log.Info("multipass finished", "passes", len(passIDs), "cleanup_pass", true)
	return passIDs, nil
}

// runPass executes one strategy over the given pages (nil means all) and
// persists the surviving items. Per-page errors are logged and the page
// skipped; only strategy construction and storage errors fail the pass.
func (p *Processor) runPass(ctx context.Context, documentID uuid.UUID, src strategy.Source,
	passNumber int, method constants.Method, sopts strategy.Options, minConfidence float64,
	pages []int) (uuid.UUID, error) {

	strat, err := strategy.New(method, p.deps)
	if err != nil {
		return uuid.Nil, err
	}

	pass, err := p.passes.Create(ctx, documentID, passNumber, method, sopts.DPI, minConfidence, sopts.ForceOCR)
	if err != nil {
		return uuid.Nil, err
	}
	started := time.Now()
	log := p.logger.With("document_id", documentID, "pass_id", pass.ID, "method", method)

	if pages == nil {
		pages = make([]int, src.PageCount())
		for i := range pages {
			pages[i] = i
		}
	}

	var collected []extract.Item
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			p.failPass(ctx, pass.ID, err, started)
			return pass.ID, err
		}
		items, err := strat.Extract(ctx, src, page, sopts)
		if err != nil {
			log.Warn("page extraction failed, skipping page", "page", page, "error", err)
			continue
		}
		collected = append(collected, items...)
	}

	validator := validate.NewValidator(minConfidence, log)
	kept := validate.Deduplicate(validator.Validate(collected))

	if _, err := p.items.InsertBatch(ctx, pass.ID, kept); err != nil {
		p.failPass(ctx, pass.ID, err, started)
		return pass.ID, err
	}

	var sum float64
	for _, it := range kept {
		sum += it.Confidence
	}
	avg := 0.0
	if len(kept) > 0 {
		avg = sum / float64(len(kept))
	}
	if err := p.passes.MarkCompleted(ctx, pass.ID, len(kept), avg, time.Since(started)); err != nil {
		return pass.ID, err
	}
	return pass.ID, nil
}

func (p *Processor) failPass(ctx context.Context, passID uuid.UUID, cause error, started time.Time) {
	if err := p.passes.MarkFailed(context.WithoutCancel(ctx), passID, cause.Error(), time.Since(started)); err != nil {
		p.logger.Error("failed to record pass failure", "pass_id", passID, "error", err)
	}
}

func (p *Processor) consolidateDocument(ctx context.Context, documentID uuid.UUID) error {
	items, err := p.items.ListByCompletedPasses(ctx, documentID)
	if err != nil {
		return fmt.Errorf("%w: %s", common.ErrConsolidation, err)
	}
	set := consolidate(items)
	if err := p.consolidated.Replace(ctx, documentID, set); err != nil {
		return fmt.Errorf("%w: %s", common.ErrConsolidation, err)
	}
	return nil
}

// lowConfidencePages returns the pages whose items, across every completed
// pass, average below the confidence floor. Pages that produced no items
// at all are included: silence is the strongest signal the page needs the
// cleanup pass.
func (p *Processor) lowConfidencePages(ctx context.Context, documentID uuid.UUID, pageCount int) ([]int, error) {
	items, err := p.items.ListByCompletedPasses(ctx, documentID)
	if err != nil {
		return nil, err
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, it := range items {
		sums[it.Page] += it.Confidence
		counts[it.Page]++
	}

	var low []int
	for page := 0; page < pageCount; page++ {
		n := counts[page]
		if n == 0 || sums[page]/float64(n) < lowConfidenceFloor {
			low = append(low, page)
		}
	}
	return low, nil
}
