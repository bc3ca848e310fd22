package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/partstream/catalog-extractor/internal/multipass"
	"github.com/partstream/catalog-extractor/internal/strategy"
)

// Job is one document submitted for multi-pass extraction. OnDone, when
// set, is called from the worker goroutine after the run finishes.
type Job struct {
	DocumentID  uuid.UUID
	Source      strategy.Source
	Options     multipass.Options
	SubmittedAt time.Time
	OnDone      func(passIDs []uuid.UUID, err error)
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
