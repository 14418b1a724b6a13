package store

import (
	"context"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
)

// DocumentStore remembers which document the knowledge base currently holds.
type DocumentStore interface {
	SaveDocument(ctx context.Context, doc commonModels.Document) error
	GetDocument(ctx context.Context) (commonModels.Document, bool)
	DeleteDocument(ctx context.Context) error
}

// Locker hands out named mutual exclusion. release is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}
