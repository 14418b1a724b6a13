package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/intelliagent/internal/adapter/utils"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/internal/rag/splitter"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

type DocumentLoader interface {
	Load(ctx context.Context, path string) (commonModels.ExtractedText, error)
}

type TextSplitter interface {
	Split(text string) []splitter.Span
}

// Indexer turns one file into the content of the knowledge base. The new chunks are
// written to a staged collection and published only when all of them made it.
type Indexer struct {
	loader   DocumentLoader
	splitter TextSplitter
	store    vectorDB.Store
	logger   *logger_i.Logger
	now      func() time.Time
}

func New(loader DocumentLoader, textSplitter TextSplitter, store vectorDB.Store) *Indexer {
	return &Indexer{
		loader:   loader,
		splitter: textSplitter,
		store:    store,
		logger:   logger_i.NewLogger("Document Ingestion"),
		now:      time.Now,
	}
}

// Index replaces whatever was indexed before with the document at path. When any step
// fails the knowledge base is left empty and the error carries the failing stage.
func (ix *Indexer) Index(ctx context.Context, path, name string) (doc commonModels.Document, err error) {
	start := time.Now()
	defer func() { metrics.CapturePipelineMetrics("index", err == nil, time.Since(start)) }()

	if name == "" {
		name = filepath.Base(path)
	}
	log := ix.logger.WithContext(ctx).With("filename", name)
	log.Debug("Processing document", "path", path)

	staged, err := ix.store.Stage(ctx)
	if err != nil {
		return doc, pipelineError.Wrap(pipelineError.KindVectorStore, "index", err)
	}
	defer func() {
		if err != nil {
			ix.cleanup(ctx, staged, log)
		}
	}()

	text, err := ix.loader.Load(ctx, path)
	if err != nil {
		log.Error("Error extracting document content", "error", err)
		return doc, pipelineError.Wrap(pipelineError.KindExtraction, "index", err)
	}

	doc = commonModels.Document{
		Id:                  utils.GetNewUUID(),
		Name:                name,
		LastIngestTimestamp: ix.now(),
		ContentType:         text.ContentType,
		Method:              text.Method,
		Pages:               text.Pages,
		Characters:          len([]rune(text.Text)),
		Collection:          staged.Collection(),
	}

	chunks := ix.prepareChunks(text, doc)
	log.Debug("Processing document", "method", text.Method, "pages", text.Pages, "chunks", len(chunks))
	if len(chunks) == 0 {
		return doc, pipelineError.New(pipelineError.KindExtraction, "index", pipelineError.ErrEmptyDocument)
	}

	if err = staged.Add(ctx, chunks); err != nil {
		log.Error("Error storing chunks", "error", err)
		return doc, pipelineError.Wrap(pipelineError.KindVectorStore, "index", err)
	}
	if err = staged.Commit(ctx); err != nil {
		return doc, pipelineError.Wrap(pipelineError.KindVectorStore, "index", err)
	}

	doc.Chunks = len(chunks)
	metrics.SetIndexedChunks(doc.Chunks)
	log.Info("document indexed", "chunks", doc.Chunks, "collection", doc.Collection)
	return doc, nil
}

// cleanup runs detached from ctx so a cancelled upload still leaves no partial state.
func (ix *Indexer) cleanup(ctx context.Context, staged vectorDB.Staging, log *logger_i.Logger) {
	ctx = context.WithoutCancel(ctx)
	staged.Discard(ctx)
	if err := ix.store.Clear(ctx); err != nil {
		log.Error("could not clear knowledge base after failed indexing", "error", err)
	}
	metrics.SetIndexedChunks(0)
}

// prepareChunks splits the text and drops chunks that carry no visible characters.
func (ix *Indexer) prepareChunks(text commonModels.ExtractedText, doc commonModels.Document) []commonModels.DocChunk {
	spans := ix.splitter.Split(text.Text)
	chunks := make([]commonModels.DocChunk, 0, len(spans))
	for _, span := range spans {
		content := text.Text[span.Start:span.End]
		if strings.TrimSpace(content) == "" {
			continue
		}
		chunks = append(chunks, commonModels.DocChunk{
			Doc:     doc,
			ChunkId: utils.GetNewUUID(),
			Chunk:   content,
			Offset:  span.Start,
			Length:  span.Length,
			PageNum: text.PageAt(span.Start),
			Index:   len(chunks),
		})
	}
	return chunks
}
