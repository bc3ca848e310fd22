package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/constants"
	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/entity"
	"github.com/partstream/catalog-extractor/internal/extract"
	"github.com/partstream/catalog-extractor/internal/ocr"
)

type ItemRepository interface {
	InsertBatch(ctx context.Context, passID uuid.UUID, items []extract.Item) ([]*entity.ExtractedItem, error)
	ListByPass(ctx context.Context, passID uuid.UUID) ([]*entity.ExtractedItem, error)
	ListByCompletedPasses(ctx context.Context, documentID uuid.UUID) ([]*entity.ExtractedItem, error)
}

type itemRepo struct {
	store *Store
	log   *slog.Logger
}

func NewItemRepository(store *Store, log *slog.Logger) ItemRepository {
	return &itemRepo{store: store, log: log}
}

func (r *itemRepo) InsertBatch(ctx context.Context, passID uuid.UUID, items []extract.Item) ([]*entity.ExtractedItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	tx, err := r.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	out := make([]*entity.ExtractedItem, 0, len(items))
	for _, it := range items {
		row := &entity.ExtractedItem{
			ID:         uuid.New(),
			PassID:     passID,
			BrandCode:  it.BrandCode,
			PartNumber: it.PartNumber,
			PriceType:  it.PriceType,
			PriceValue: it.PriceValue,
			Currency:   it.Currency,
			Page:       it.Page,
			Confidence: it.Confidence,
			RawText:    it.RawText,
			Box:        it.Box,
			CreatedAt:  now,
		}
		var bx, by, bw, bh any
		if it.Box != nil {
			bx, by, bw, bh = it.Box.X, it.Box.Y, it.Box.W, it.Box.H
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO extracted_items
				(id, pass_id, brand_code, part_number, price_type, price_value, currency,
				page, confidence, raw_text, bbox_x, bbox_y, bbox_w, bbox_h, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			row.ID.String(), passID.String(), row.BrandCode, row.PartNumber, row.PriceType,
			row.PriceValue, row.Currency, row.Page, row.Confidence, row.RawText,
			bx, by, bw, bh, now)
		if err != nil {
			r.log.Error("item insert failed", "pass_id", passID, "part", it.PartNumber, "err", err)
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		out = append(out, row)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Info("items persisted", "pass_id", passID, "count", len(out))
	return out, nil
}

const itemColumns = `id, pass_id, brand_code, part_number, price_type, price_value, currency,
	page, confidence, raw_text, bbox_x, bbox_y, bbox_w, bbox_h, created_at`

func (r *itemRepo) ListByPass(ctx context.Context, passID uuid.UUID) ([]*entity.ExtractedItem, error) {
	rows, err := r.store.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM extracted_items WHERE pass_id = $1 ORDER BY page, id`,
		passID.String())
	if err != nil {
		r.log.Error("item list failed", "pass_id", passID, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer rows.Close()
	return collectItems(rows)
}

// ListByCompletedPasses returns every item from the document's completed
// passes. Items from failed or in-flight passes never feed consolidation.
func (r *itemRepo) ListByCompletedPasses(ctx context.Context, documentID uuid.UUID) ([]*entity.ExtractedItem, error) {
	rows, err := r.store.DB.QueryContext(ctx,
		`SELECT i.id, i.pass_id, i.brand_code, i.part_number, i.price_type, i.price_value, i.currency,
			i.page, i.confidence, i.raw_text, i.bbox_x, i.bbox_y, i.bbox_w, i.bbox_h, i.created_at
		FROM extracted_items i
		JOIN extraction_passes p ON p.id = i.pass_id
		WHERE p.document_id = $1 AND p.status = $2
		ORDER BY i.page, i.id`,
		documentID.String(), string(constants.PassStatusCompleted))
	if err != nil {
		r.log.Error("item list by document failed", "document_id", documentID, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer rows.Close()
	return collectItems(rows)
}

func collectItems(rows *sql.Rows) ([]*entity.ExtractedItem, error) {
	var items []*entity.ExtractedItem
	for rows.Next() {
		var (
			it             entity.ExtractedItem
			rawID, rawPass string
			price          sql.NullFloat64
			bx, by, bw, bh sql.NullInt64
		)
		err := rows.Scan(&rawID, &rawPass, &it.BrandCode, &it.PartNumber, &it.PriceType,
			&price, &it.Currency, &it.Page, &it.Confidence, &it.RawText,
			&bx, &by, &bw, &bh, &it.CreatedAt)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if it.ID, err = uuid.Parse(rawID); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if it.PassID, err = uuid.Parse(rawPass); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if price.Valid {
			v := price.Float64
			it.PriceValue = &v
		}
		if bx.Valid && by.Valid && bw.Valid && bh.Valid {
			it.Box = &ocr.Box{X: int(bx.Int64), Y: int(by.Int64), W: int(bw.Int64), H: int(bh.Int64)}
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return items, nil
}
