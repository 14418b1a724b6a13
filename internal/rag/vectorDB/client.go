package vectorDB

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/internal/rag/embedding"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Alias       string
	BatchSize   int
	Concurrency int
}

// Client is the only component that talks to the vector database. It embeds text with
// the injected embedder and keeps every published collection behind one alias, so a
// reset or a re-index is a single alias swap.
type Client struct {
	index     Index
	cache     AnswerCache
	embedder  embedding.Embedder
	alias     string
	batchSize int
	workers   int
	logger    *logger_i.Logger

	mu          sync.Mutex
	lastVersion int64
}

// NewClient wires an index backend. cache may be nil to disable answer caching.
func NewClient(index Index, cache AnswerCache, embedder embedding.Embedder, opts Options) *Client {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Client{
		index:     index,
		cache:     cache,
		embedder:  embedder,
		alias:     opts.Alias,
		batchSize: opts.BatchSize,
		workers:   opts.Concurrency,
		logger:    logger_i.NewLogger("vector_store").With("alias", opts.Alias),
	}
}

// newVersion names a collection after the alias with a strictly increasing suffix.
func (c *Client) newVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := time.Now().UnixNano()
	if v <= c.lastVersion {
		v = c.lastVersion + 1
	}
	c.lastVersion = v
	return fmt.Sprintf("%s-v%d", c.alias, v)
}

func (c *Client) isVersion(name string) bool {
	return strings.HasPrefix(name, c.alias+"-v")
}

func (c *Client) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	active, ok, err := c.index.ActiveCollection(ctx)
	if err != nil {
		return pipelineError.New(pipelineError.KindVectorStore, "add", err)
	}
	if !ok {
		active = c.newVersion()
		if err := c.index.CreateCollection(ctx, active, c.embedder.Dimension()); err != nil {
			return pipelineError.New(pipelineError.KindVectorStore, "add", err)
		}
		if err := c.index.Activate(ctx, active); err != nil {
			return pipelineError.New(pipelineError.KindVectorStore, "add", err)
		}
		c.logger.WithContext(ctx).Info("created collection on first add", "collection", active)
	}
	return c.addTo(ctx, active, chunks)
}

// addTo embeds and upserts in batches. Batches run concurrently up to the configured
// worker count; the first failure cancels the rest.
func (c *Client) addTo(ctx context.Context, collection string, chunks []commonModels.DocChunk) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start)) }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := 0; i < len(chunks); i += c.batchSize {
		batch := chunks[i:min(i+c.batchSize, len(chunks))]
		g.Go(func() error {
			return c.upsertBatch(gctx, collection, batch)
		})
	}
	return g.Wait()
}

func (c *Client) upsertBatch(ctx context.Context, collection string, batch []commonModels.DocChunk) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Chunk
	}

	embedStart := time.Now()
	vectors, err := c.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return pipelineError.New(pipelineError.KindEmbedding, "embed batch", err)
	}
	if len(vectors) != len(batch) {
		return pipelineError.New(pipelineError.KindEmbedding, "embed batch",
			fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(batch)))
	}
	want := c.embedder.Dimension()
	for _, v := range vectors {
		if len(v) != want {
			return pipelineError.New(pipelineError.KindConfiguration, "embed batch",
				fmt.Errorf("%w: got %d, want %d", pipelineError.ErrDimensionMismatch, len(v), want))
		}
	}

	if err := c.index.UpsertBatch(ctx, collection, batch, vectors); err != nil {
		return pipelineError.New(pipelineError.KindVectorStore, "upsert", err)
	}
	return nil
}

// Clear publishes an empty collection and drops the old ones. Afterwards a collection
// always exists, even on the very first run.
func (c *Client) Clear(ctx context.Context) error {
	staged, err := c.Stage(ctx)
	if err != nil {
		return err
	}
	if err := staged.Commit(ctx); err != nil {
		staged.Discard(ctx)
		return err
	}
	c.logger.WithContext(ctx).Info("collection cleared", "collection", staged.Collection())
	return nil
}

func (c *Client) Retrieve(ctx context.Context, query string, k int) (commonModels.Retrieval, error) {
	log := c.logger.WithContext(ctx)

	active, ok, err := c.index.ActiveCollection(ctx)
	if err != nil {
		return commonModels.Retrieval{}, pipelineError.New(pipelineError.KindVectorStore, "retrieve", err)
	}
	if !ok {
		log.Debug("nothing indexed yet")
		return commonModels.Retrieval{}, nil
	}

	embedStart := time.Now()
	vector, err := c.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(embedStart))
	if err != nil {
		return commonModels.Retrieval{}, pipelineError.New(pipelineError.KindEmbedding, "retrieve", err)
	}

	searchStart := time.Now()
	hits, err := c.index.Search(ctx, active, vector, k)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(searchStart))
	if errors.Is(err, ErrCollectionNotFound) {
		// swapped out between resolve and search
		log.Warn("active collection vanished during search", "collection", active)
		return commonModels.Retrieval{}, nil
	}
	if err != nil {
		return commonModels.Retrieval{}, pipelineError.New(pipelineError.KindVectorStore, "retrieve", err)
	}
	return commonModels.Retrieval{Collection: active, Chunks: hits}, nil
}

func (c *Client) Stage(ctx context.Context) (Staging, error) {
	name := c.newVersion()
	if err := c.index.CreateCollection(ctx, name, c.embedder.Dimension()); err != nil {
		return nil, pipelineError.New(pipelineError.KindVectorStore, "stage", err)
	}
	c.logger.WithContext(ctx).Debug("staging collection created", "collection", name)
	return &staging{client: c, name: name}, nil
}

// CachedAnswer looks the question up in the answer cache of the active collection.
// Cache trouble is logged and reported as a miss.
func (c *Client) CachedAnswer(ctx context.Context, question string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	log := c.logger.WithContext(ctx)

	active, ok, err := c.index.ActiveCollection(ctx)
	if err != nil || !ok {
		return "", false
	}
	vector, err := c.embedder.GetEmbedding(ctx, question)
	if err != nil {
		log.Warn("cache lookup skipped, embedding failed", "error", err)
		return "", false
	}

	start := time.Now()
	answer, found, err := c.cache.GetCachedAnswer(ctx, active, vector)
	metrics.CaptureExecutionMetrics("cache_lookup", time.Since(start))
	if err != nil {
		log.Warn("cache lookup failed", "error", err)
		return "", false
	}
	metrics.CaptureCacheLookup(found)
	return answer, found
}

// RememberAnswer stores an answer for the collection it was computed from. A stale
// collection is fine: lookups only match the active one.
func (c *Client) RememberAnswer(ctx context.Context, collection, question, answer string) {
	if c.cache == nil || collection == "" {
		return
	}
	log := c.logger.WithContext(ctx)

	vector, err := c.embedder.GetEmbedding(ctx, question)
	if err != nil {
		log.Warn("cache save skipped, embedding failed", "error", err)
		return
	}
	if err := c.cache.SaveToCache(ctx, collection, vector, answer); err != nil {
		log.Warn("Failed to save to cache", "error", err)
	}
}

type staging struct {
	client *Client
	name   string

	mu   sync.Mutex
	done bool
}

func (s *staging) Collection() string {
	return s.name
}

func (s *staging) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	return s.client.addTo(ctx, s.name, chunks)
}

// Commit publishes the staged collection, then drops every older version and the
// answers cached for them. Cleanup failures are logged, the swap already happened.
func (s *staging) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return errors.New("staging already finished")
	}

	c := s.client
	log := c.logger.WithContext(ctx)
	if err := c.index.Activate(ctx, s.name); err != nil {
		return pipelineError.New(pipelineError.KindVectorStore, "commit", err)
	}
	s.done = true
	log.Info("collection published", "collection", s.name)

	names, err := c.index.Collections(ctx)
	if err != nil {
		log.Warn("could not list collections for cleanup", "error", err)
	}
	for _, name := range names {
		if name == s.name || !c.isVersion(name) {
			continue
		}
		if err := c.index.DeleteCollection(ctx, name); err != nil && !errors.Is(err, ErrCollectionNotFound) {
			log.Warn("could not drop superseded collection", "collection", name, "error", err)
		}
	}

	if c.cache != nil {
		if err := c.cache.PurgeCache(ctx, s.name); err != nil {
			log.Warn("could not purge answer cache", "error", err)
		}
	}
	return nil
}

func (s *staging) Discard(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	s.done = true
	if err := s.client.index.DeleteCollection(ctx, s.name); err != nil && !errors.Is(err, ErrCollectionNotFound) {
		s.client.logger.WithContext(ctx).Warn("could not drop staged collection", "collection", s.name, "error", err)
	}
}
