package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/entity"
)

type PassRepository interface {
	Create(ctx context.Context, documentID uuid.UUID, passNumber int, method constants.Method, dpi int, minConfidence float64, forceOCR bool) (*entity.ExtractionPass, error)
	MarkCompleted(ctx context.Context, passID uuid.UUID, items int, avgConfidence float64, duration time.Duration) error
	MarkFailed(ctx context.Context, passID uuid.UUID, message string, duration time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractionPass, error)
	ListCompletedByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.ExtractionPass, error)
}

type passRepo struct {
	store *Store
	log   *slog.Logger
}

func NewPassRepository(store *Store, log *slog.Logger) PassRepository {
	return &passRepo{store: store, log: log}
}

func (r *passRepo) Create(ctx context.Context, documentID uuid.UUID, passNumber int, method constants.Method, dpi int, minConfidence float64, forceOCR bool) (*entity.ExtractionPass, error) {
	pass := &entity.ExtractionPass{
		ID:            uuid.New(),
		DocumentID:    documentID,
		PassNumber:    passNumber,
		Method:        method,
		DPI:           dpi,
		MinConfidence: minConfidence,
		ForceOCR:      forceOCR,
		Status:        constants.PassStatusProcessing,
		StartedAt:     time.Now().UTC(),
	}
	_, err := r.store.DB.ExecContext(ctx,
		`INSERT INTO extraction_passes
			(id, document_id, pass_number, method, dpi, min_confidence, force_ocr, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pass.ID.String(), documentID.String(), passNumber, string(method), dpi,
		minConfidence, boolToInt(forceOCR), string(pass.Status), pass.StartedAt)
	if err != nil {
		r.log.Error("pass create failed", "document_id", documentID, "pass", passNumber, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Info("pass started", "pass_id", pass.ID, "document_id", documentID,
		"pass", passNumber, "method", method, "dpi", dpi)
	return pass, nil
}

func (r *passRepo) MarkCompleted(ctx context.Context, passID uuid.UUID, items int, avgConfidence float64, duration time.Duration) error {
	now := time.Now().UTC()
	_, err := r.store.DB.ExecContext(ctx,
		`UPDATE extraction_passes
		SET status = $1, items_extracted = $2, avg_confidence = $3, processing_ms = $4, finished_at = $5
		WHERE id = $6`,
		string(constants.PassStatusCompleted), items, avgConfidence, duration.Milliseconds(), now, passID.String())
	if err != nil {
		r.log.Error("pass finish(completed) failed", "pass_id", passID, "err", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Info("pass completed", "pass_id", passID, "items", items,
		"avg_confidence", avgConfidence, "duration_ms", duration.Milliseconds())
	return nil
}

func (r *passRepo) MarkFailed(ctx context.Context, passID uuid.UUID, message string, duration time.Duration) error {
	now := time.Now().UTC()
	_, err := r.store.DB.ExecContext(ctx,
		`UPDATE extraction_passes
		SET status = $1, error_message = $2, processing_ms = $3, finished_at = $4
		WHERE id = $5`,
		string(constants.PassStatusFailed), message, duration.Milliseconds(), now, passID.String())
	if err != nil {
		r.log.Error("pass finish(failed) failed", "pass_id", passID, "err", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Warn("pass failed", "pass_id", passID, "error", message)
	return nil
}

const passColumns = `id, document_id, pass_number, method, dpi, min_confidence, force_ocr,
	status, items_extracted, avg_confidence, processing_ms, error_message, started_at, finished_at`

func (r *passRepo) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractionPass, error) {
	row := r.store.DB.QueryRowContext(ctx,
		`SELECT `+passColumns+` FROM extraction_passes WHERE id = $1`, id.String())
	pass, err := scanPass(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("pass get failed", "pass_id", id, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return pass, nil
}

func (r *passRepo) ListCompletedByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.ExtractionPass, error) {
	rows, err := r.store.DB.QueryContext(ctx,
		`SELECT `+passColumns+` FROM extraction_passes
		WHERE document_id = $1 AND status = $2
		ORDER BY pass_number`,
		documentID.String(), string(constants.PassStatusCompleted))
	if err != nil {
		r.log.Error("pass list failed", "document_id", documentID, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer rows.Close()

	var passes []*entity.ExtractionPass
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		passes = append(passes, pass)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return passes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPass(row rowScanner) (*entity.ExtractionPass, error) {
	var (
		pass           entity.ExtractionPass
		rawID, rawDoc  string
		method, status string
		forceOCR       int
		processingMs   int64
		finishedAt     sql.NullTime
	)
	err := row.Scan(&rawID, &rawDoc, &pass.PassNumber, &method, &pass.DPI, &pass.MinConfidence,
		&forceOCR, &status, &pass.ItemsExtracted, &pass.AvgConfidence, &processingMs,
		&pass.ErrorMessage, &pass.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if pass.ID, err = uuid.Parse(rawID); err != nil {
		return nil, err
	}
	if pass.DocumentID, err = uuid.Parse(rawDoc); err != nil {
		return nil, err
	}
	pass.Method = constants.Method(method)
	pass.Status = constants.PassStatus(status)
	pass.ForceOCR = forceOCR != 0
	pass.Duration = time.Duration(processingMs) * time.Millisecond
	if finishedAt.Valid {
		t := finishedAt.Time
		pass.FinishedAt = &t
	}
	return &pass, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
