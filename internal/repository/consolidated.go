package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/entity"
)

type ConsolidatedRepository interface {
	// Replace atomically swaps the document's consolidated set for the
	// given one. Readers never observe a partially consolidated document.
	Replace(ctx context.Context, documentID uuid.UUID, items []*entity.ConsolidatedItem) error
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.ConsolidatedItem, error)
}

type consolidatedRepo struct {
	store *Store
	log   *slog.Logger
}

func NewConsolidatedRepository(store *Store, log *slog.Logger) ConsolidatedRepository {
	return &consolidatedRepo{store: store, log: log}
}

func (r *consolidatedRepo) Replace(ctx context.Context, documentID uuid.UUID, items []*entity.ConsolidatedItem) error {
	tx, err := r.store.DB.BeginTx(ctx, nil)
	if err != nil {
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM consolidated_items WHERE document_id = $1`, documentID.String()); err != nil {
		r.log.Error("consolidated delete failed", "document_id", documentID, "err", err)
		return common.WrapError(common.ErrDatabase, err.Error())
	}

	now := time.Now().UTC()
	for _, it := range items {
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		if it.CreatedAt.IsZero() {
			it.CreatedAt = now
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO consolidated_items
				(id, document_id, brand_code, part_number, price_type, price_value, currency,
				page, confidence, avg_confidence, source_count, raw_text, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			it.ID.String(), documentID.String(), it.BrandCode, it.PartNumber, it.PriceType,
			it.PriceValue, it.Currency, it.Page, it.Confidence, it.AvgConfidence,
			it.SourceCount, it.RawText, it.CreatedAt)
		if err != nil {
			r.log.Error("consolidated insert failed", "document_id", documentID, "part", it.PartNumber, "err", err)
			return common.WrapError(common.ErrDatabase, err.Error())
		}
	}
	if err := tx.Commit(); err != nil {
		return common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Info("consolidated set replaced", "document_id", documentID, "count", len(items))
	return nil
}

func (r *consolidatedRepo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]*entity.ConsolidatedItem, error) {
	rows, err := r.store.DB.QueryContext(ctx,
		`SELECT id, document_id, brand_code, part_number, price_type, price_value, currency,
			page, confidence, avg_confidence, source_count, raw_text, created_at
		FROM consolidated_items
		WHERE document_id = $1
		ORDER BY page, part_number`,
		documentID.String())
	if err != nil {
		r.log.Error("consolidated list failed", "document_id", documentID, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer rows.Close()

	var items []*entity.ConsolidatedItem
	for rows.Next() {
		var (
			it            entity.ConsolidatedItem
			rawID, rawDoc string
			price         sql.NullFloat64
		)
		err := rows.Scan(&rawID, &rawDoc, &it.BrandCode, &it.PartNumber, &it.PriceType,
			&price, &it.Currency, &it.Page, &it.Confidence, &it.AvgConfidence,
			&it.SourceCount, &it.RawText, &it.CreatedAt)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if it.ID, err = uuid.Parse(rawID); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if it.DocumentID, err = uuid.Parse(rawDoc); err != nil {
			return nil, common.WrapError(common.ErrDatabase, err.Error())
		}
		if price.Valid {
			v := price.Float64
			it.PriceValue = &v
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return items, nil
}
