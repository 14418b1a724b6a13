package rag

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/data/store"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

/*
Service is the only thing the HTTP handlers, the MCP tools and the CLI call. The
struct behind it is private and holds the clients, NewService injects them, so tests
swap in mocks without touching callers.

Indexing and clearing share one named lock. Together with the staged collection swap
in vectorDB this keeps a query from ever seeing half of one document and half of
another.
*/
type Service interface {
	IndexDocument(ctx context.Context, path, name string) (commonModels.Document, error)
	Answer(ctx context.Context, question string) (commonModels.Answer, error)
	Clear(ctx context.Context) error
	CurrentDocument(ctx context.Context) (commonModels.Document, bool)
	// Drain waits for background cache writes, call it before the process exits.
	Drain()
}

type Indexer interface {
	Index(ctx context.Context, path, name string) (commonModels.Document, error)
}

type AnswerValidator interface {
	Validate(ctx context.Context, answer string, chunks []string) commonModels.Verdict
}

type Dependencies struct {
	Indexer   Indexer
	Store     vectorDB.Store
	LLM       llm.Provider
	Validator AnswerValidator //nil disables validation
	Locker    store.Locker
	Documents store.DocumentStore
}

type Options struct {
	TopK           int
	Temperature    float64
	SemanticCache  bool
	RequestTimeout time.Duration
	LockKey        string
}

type service struct {
	Dependencies
	opts       Options
	logger     *logger_i.Logger
	background sync.WaitGroup
}

func NewService(deps Dependencies, opts Options) Service {
	if opts.TopK <= 0 {
		opts.TopK = config.RetrievalTopK
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = config.RequestTimeout
	}
	if opts.LockKey == "" {
		opts.LockKey = "lock:collection:" + config.CollectionName
	}
	return &service{
		Dependencies: deps,
		opts:         opts,
		logger:       logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) IndexDocument(ctx context.Context, path, name string) (commonModels.Document, error) {
	log := s.logger.WithContext(ctx).With("document", name)

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	release, err := s.Locker.Acquire(ctx, s.opts.LockKey)
	if err != nil {
		return commonModels.Document{}, err
	}
	defer release()

	doc, err := s.Indexer.Index(ctx, path, name)
	if err != nil {
		log.Error("indexing failed", "error", err, "kind", pipelineError.KindOf(err))
		s.forgetDocument(ctx, log)
		return doc, err
	}

	if err := s.Documents.SaveDocument(ctx, doc); err != nil {
		log.Warn("could not record active document", "error", err)
	}
	return doc, nil
}

func (s *service) Answer(ctx context.Context, question string) (answer commonModels.Answer, err error) {
	start := time.Now()
	defer func() { metrics.CapturePipelineMetrics("answer", err == nil, time.Since(start)) }()

	question = strings.TrimSpace(question)
	answer.Question = question
	if question == "" {
		return answer, pipelineError.New(pipelineError.KindInvalidInput, "answer", pipelineError.ErrBlankQuestion)
	}
	log := s.logger.WithContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	if s.opts.SemanticCache {
		if cached, found := s.executeCacheCheckStep(ctx, log, question); found {
			// text only: sources and verdict are not cached
			answer.Text, answer.Raw, answer.Found, answer.FromCache = cached, cached, true, true
			return answer, nil
		}
	}

	retrieval, err := s.executeRetrievalStep(ctx, log, question)
	if err != nil {
		return answer, err
	}
	if len(retrieval.Chunks) == 0 {
		log.Info("no relevant chunks", "collection", retrieval.Collection)
		return cannedAnswer(question), nil
	}

	contents := chunkContents(retrieval.Chunks)
	raw, err := s.executeLLMStep(ctx, log, question, contents)
	if err != nil {
		return answer, pipelineError.Wrap(pipelineError.KindLLM, "answer", err)
	}
	if strings.TrimSpace(raw) == "" {
		log.Warn("model returned an empty answer")
		return cannedAnswer(question), nil
	}

	answer.Raw, answer.Text = raw, raw
	answer.Sources = retrieval.Chunks
	answer.Found = true

	if s.Validator != nil {
		verdict := s.executeValidationStep(ctx, log, raw, contents)
		answer.Verdict = &verdict
		answer.Text = annotate(raw, verdict)
	}

	if s.opts.SemanticCache {
		s.rememberInBackground(ctx, retrieval.Collection, question, answer.Text)
	}
	return answer, nil
}

func (s *service) Clear(ctx context.Context) error {
	log := s.logger.WithContext(ctx)

	ctx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	release, err := s.Locker.Acquire(ctx, s.opts.LockKey)
	if err != nil {
		return err
	}
	defer release()

	if err := s.Store.Clear(ctx); err != nil {
		log.Error("clear failed", "error", err)
		return pipelineError.Wrap(pipelineError.KindVectorStore, "clear", err)
	}
	s.forgetDocument(ctx, log)
	metrics.SetIndexedChunks(0)
	log.Info("knowledge base cleared")
	return nil
}

func (s *service) CurrentDocument(ctx context.Context) (commonModels.Document, bool) {
	return s.Documents.GetDocument(ctx)
}

func (s *service) Drain() {
	s.background.Wait()
}

func (s *service) forgetDocument(ctx context.Context, log *logger_i.Logger) {
	if err := s.Documents.DeleteDocument(context.WithoutCancel(ctx)); err != nil {
		log.Warn("could not delete document record", "error", err)
	}
}

// rememberInBackground saves the answer after the response is gone, so it must not
// inherit the request deadline.
func (s *service) rememberInBackground(ctx context.Context, collection, question, text string) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.CacheWriteTimeout)
		defer cancel()
		s.Store.RememberAnswer(saveCtx, collection, question, text)
	}()
}
