package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/internal/common"
	"github.com/partstream/catalog-extractor/internal/entity"
)

type DocumentRepository interface {
	Create(ctx context.Context, filename, path string, pageCount int) (*entity.Document, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Document, error)
}

type documentRepo struct {
	store *Store
	log   *slog.Logger
}

func NewDocumentRepository(store *Store, log *slog.Logger) DocumentRepository {
	return &documentRepo{store: store, log: log}
}

func (r *documentRepo) Create(ctx context.Context, filename, path string, pageCount int) (*entity.Document, error) {
	doc := &entity.Document{
		ID:        uuid.New(),
		Filename:  filename,
		Path:      path,
		PageCount: pageCount,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.store.DB.ExecContext(ctx,
		`INSERT INTO documents (id, filename, path, page_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		doc.ID.String(), doc.Filename, doc.Path, doc.PageCount, doc.CreatedAt)
	if err != nil {
		r.log.Error("document create failed", "filename", filename, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	r.log.Info("document registered", "document_id", doc.ID, "filename", filename, "pages", pageCount)
	return doc, nil
}

func (r *documentRepo) Get(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	var (
		doc   entity.Document
		rawID string
	)
	err := r.store.DB.QueryRowContext(ctx,
		`SELECT id, filename, path, page_count, created_at FROM documents WHERE id = $1`,
		id.String()).Scan(&rawID, &doc.Filename, &doc.Path, &doc.PageCount, &doc.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.log.Error("document get failed", "document_id", id, "err", err)
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	doc.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return &doc, nil
}
