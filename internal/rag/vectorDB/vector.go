package vectorDB

import (
	"context"
	"errors"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
)

var ErrCollectionNotFound = errors.New("collection not found")

// Index is what a vector database backend provides. It stores vectors in named
// collections and keeps one alias pointing at the collection queries should use.
type Index interface {
	CreateCollection(ctx context.Context, name string, dimension int) error
	DeleteCollection(ctx context.Context, name string) error
	Collections(ctx context.Context) ([]string, error)

	// ActiveCollection resolves the alias; ok is false before anything was published.
	ActiveCollection(ctx context.Context) (name string, ok bool, err error)
	// Activate repoints the alias in one step.
	Activate(ctx context.Context, name string) error

	UpsertBatch(ctx context.Context, collection string, chunks []commonModels.DocChunk, vectors [][]float32) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]commonModels.ScoredChunk, error)
}

// AnswerCache stores answers keyed by question vectors, scoped to the collection the
// answer was computed from.
type AnswerCache interface {
	GetCachedAnswer(ctx context.Context, collection string, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, collection string, vector []float32, answer string) error
	// PurgeCache drops every entry not computed from keep.
	PurgeCache(ctx context.Context, keep string) error
}

// Store is the text level contract used by the pipeline.
type Store interface {
	Add(ctx context.Context, chunks []commonModels.DocChunk) error
	Clear(ctx context.Context) error
	Retrieve(ctx context.Context, query string, k int) (commonModels.Retrieval, error)
	Stage(ctx context.Context) (Staging, error)

	CachedAnswer(ctx context.Context, question string) (string, bool)
	RememberAnswer(ctx context.Context, collection, question, answer string)
}

// Staging is a collection being filled outside the alias. Nothing is visible to
// queries until Commit.
type Staging interface {
	Collection() string
	Add(ctx context.Context, chunks []commonModels.DocChunk) error
	Commit(ctx context.Context) error
	Discard(ctx context.Context)
}
