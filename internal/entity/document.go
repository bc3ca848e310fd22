// Package entity holds the persistence structs shared by the repository
// layer and the multi-pass controller.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one registered PDF catalog.
type Document struct {
	ID        uuid.UUID
	Filename  string
	Path      string
	PageCount int
	CreatedAt time.Time
}
