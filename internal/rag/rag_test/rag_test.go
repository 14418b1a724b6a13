package rag_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/data/store"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
	"github.com/akolanti/intelliagent/internal/rag"
	"github.com/akolanti/intelliagent/internal/rag/ingest"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/internal/rag/splitter"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB/memoryDB"
)

func newService(s *MockStore, l *MockLLM, v rag.AnswerValidator) rag.Service {
	return rag.NewService(rag.Dependencies{
		Indexer:   &MockIndexer{},
		Store:     s,
		LLM:       l,
		Validator: v,
		Locker:    store.NewInMemoryLocker(),
		Documents: store.NewInMemoryDocumentStore(),
	}, rag.Options{TopK: 5, Temperature: 0.3, SemanticCache: true, RequestTimeout: 5 * time.Second})
}

func TestAnswer_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		question     string
		setupMocks   func(s *MockStore, l *MockLLM)
		validator    rag.AnswerValidator
		wantText     string
		wantFound    bool
		wantKind     pipelineError.Kind
		wantLLMCalls int
	}{
		{
			name:     "Success_Full_Flow",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, req llm.Request) (string, error) {
					return "The total is 500.", nil
				}
			},
			wantText:     "The total is 500.",
			wantFound:    true,
			wantLLMCalls: 1,
		},
		{
			name:     "Success_Validated",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, req llm.Request) (string, error) {
					return "The total is 500.", nil
				}
			},
			validator:    &MockValidator{},
			wantText:     "The total is 500.\n\n---\nVerification: Supported. All claims appear in the context.",
			wantFound:    true,
			wantLLMCalls: 1,
		},
		{
			name:     "Validated_Not_Supported",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, req llm.Request) (string, error) {
					return "The total is 900.", nil
				}
			},
			validator: &MockValidator{OnValidate: func(context.Context, string, []string) commonModels.Verdict {
				return commonModels.Verdict{IsSupported: false, Reasoning: "900 is not in the context."}
			}},
			wantText:     "The total is 900.\n\n---\nVerification: Not supported. 900 is not in the context.",
			wantFound:    true,
			wantLLMCalls: 1,
		},
		{
			name:     "Success_Cache_Hit",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				s.OnCachedAnswer = func(ctx context.Context, q string) (string, bool) {
					return "cached answer", true
				}
			},
			wantText:  "cached answer",
			wantFound: true,
		},
		{
			name:     "No_Chunks_Canned",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				s.OnRetrieve = func(ctx context.Context, q string, k int) (commonModels.Retrieval, error) {
					return commonModels.Retrieval{}, nil
				}
			},
			wantText: rag.CannedAnswer,
		},
		{
			name:     "Blank_Model_Answer_Canned",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, req llm.Request) (string, error) {
					return "  \n", nil
				}
			},
			wantText:     rag.CannedAnswer,
			wantLLMCalls: 1,
		},
		{
			name:     "Failure_Blank_Question",
			question: "   ",
			wantKind: pipelineError.KindInvalidInput,
		},
		{
			name:     "Failure_Retrieval",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				s.OnRetrieve = func(ctx context.Context, q string, k int) (commonModels.Retrieval, error) {
					return commonModels.Retrieval{}, pipelineError.New(pipelineError.KindEmbedding, "retrieve", errors.New("api limit"))
				}
			},
			wantKind: pipelineError.KindEmbedding,
		},
		{
			name:     "Failure_LLM",
			question: "What is the total?",
			setupMocks: func(s *MockStore, l *MockLLM) {
				l.OnGenerate = func(ctx context.Context, req llm.Request) (string, error) {
					return "", errors.New("503 from provider")
				}
			},
			wantKind:     pipelineError.KindLLM,
			wantLLMCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, l := &MockStore{}, &MockLLM{}
			if tt.setupMocks != nil {
				tt.setupMocks(s, l)
			}
			svc := newService(s, l, tt.validator)

			answer, err := svc.Answer(context.Background(), tt.question)
			svc.Drain()

			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected a %s error", tt.wantKind)
				}
				if got := pipelineError.KindOf(err); got != tt.wantKind {
					t.Errorf("kind got %s, want %s", got, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if answer.Text != tt.wantText {
				t.Errorf("text got %q, want %q", answer.Text, tt.wantText)
			}
			if answer.Found != tt.wantFound {
				t.Errorf("found got %v, want %v", answer.Found, tt.wantFound)
			}
			if l.Calls != tt.wantLLMCalls {
				t.Errorf("llm calls got %d, want %d", l.Calls, tt.wantLLMCalls)
			}
		})
	}
}

func TestAnswer_CacheHitIsTextOnly(t *testing.T) {
	const stored = "The total is 900.\n\n---\nVerification: Not supported. 900 is not in the context."
	s := &MockStore{
		OnCachedAnswer: func(ctx context.Context, q string) (string, bool) { return stored, true },
		OnRetrieve: func(ctx context.Context, q string, k int) (commonModels.Retrieval, error) {
			t.Error("retrieval ran on a cache hit")
			return commonModels.Retrieval{}, nil
		},
	}
	l := &MockLLM{}
	v := &MockValidator{OnValidate: func(ctx context.Context, answer string, contents []string) commonModels.Verdict {
		t.Error("validator ran on a cache hit")
		return commonModels.Verdict{}
	}}

	answer, err := newService(s, l, v).Answer(context.Background(), "What is the total?")
	if err != nil {
		t.Fatal(err)
	}
	if !answer.FromCache || !answer.Found || answer.Text != stored || answer.Raw != stored {
		t.Errorf("cached answer got %+v", answer)
	}
	if answer.Verdict != nil || len(answer.Sources) != 0 {
		t.Errorf("cache hit should be text only, got verdict %v and %d sources", answer.Verdict, len(answer.Sources))
	}
	if l.Calls != 0 {
		t.Errorf("llm called %d times on a cache hit", l.Calls)
	}
}

func TestAnswer_PromptAndCacheWrite(t *testing.T) {
	var prompt string
	var saved struct {
		sync.Mutex
		collection, answer string
	}
	s := &MockStore{
		OnRetrieve: func(ctx context.Context, q string, k int) (commonModels.Retrieval, error) {
			if k != 5 {
				t.Errorf("k got %d, want 5", k)
			}
			return commonModels.Retrieval{Collection: "kb-v7", Chunks: []commonModels.ScoredChunk{
				{DocChunk: commonModels.DocChunk{Chunk: "Invoice total: 500 EUR"}},
				{DocChunk: commonModels.DocChunk{Chunk: "Due date: 1 March"}},
			}}, nil
		},
		OnRememberAnswer: func(ctx context.Context, collection, question, answer string) {
			if ctx.Err() != nil {
				t.Error("background save got a cancelled context")
			}
			saved.Lock()
			saved.collection, saved.answer = collection, answer
			saved.Unlock()
		},
	}
	l := &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (string, error) {
		prompt = req.Prompt
		if req.Temperature != 0.3 {
			t.Errorf("temperature got %v", req.Temperature)
		}
		return "500 EUR", nil
	}}

	ctx, cancel := context.WithCancel(context.Background())
	svc := newService(s, l, nil)
	answer, err := svc.Answer(ctx, "  What is the invoice total?  ")
	cancel()
	svc.Drain()
	if err != nil {
		t.Fatal(err)
	}

	want := rag.BuildAnswerPrompt("What is the invoice total?", []string{"Invoice total: 500 EUR", "Due date: 1 March"})
	if prompt != want {
		t.Errorf("prompt got\n%s\nwant\n%s", prompt, want)
	}
	if !strings.Contains(prompt, "CONTEXT:\nInvoice total: 500 EUR\n\nDue date: 1 March\n\nQUESTION: What is the invoice total?\n\nANSWER:") {
		t.Errorf("prompt layout changed:\n%s", prompt)
	}
	if len(answer.Sources) != 2 || answer.Verdict != nil {
		t.Errorf("unexpected answer %+v", answer)
	}
	saved.Lock()
	defer saved.Unlock()
	if saved.collection != "kb-v7" || saved.answer != "500 EUR" {
		t.Errorf("cache write got %q/%q", saved.collection, saved.answer)
	}
}

func TestIndexDocument_RecordsDocument(t *testing.T) {
	ctx := context.Background()
	docs := store.NewInMemoryDocumentStore()
	fail := false
	indexer := &MockIndexer{OnIndex: func(ctx context.Context, path, name string) (commonModels.Document, error) {
		if fail {
			return commonModels.Document{}, pipelineError.New(pipelineError.KindExtraction, "index", pipelineError.ErrEmptyDocument)
		}
		return commonModels.Document{Id: "d1", Name: name, Chunks: 3}, nil
	}}
	svc := rag.NewService(rag.Dependencies{
		Indexer: indexer, Store: &MockStore{}, LLM: &MockLLM{},
		Locker: store.NewInMemoryLocker(), Documents: docs,
	}, rag.Options{})

	if _, err := svc.IndexDocument(ctx, "/tmp/x", "invoice.pdf"); err != nil {
		t.Fatal(err)
	}
	if doc, ok := svc.CurrentDocument(ctx); !ok || doc.Name != "invoice.pdf" {
		t.Fatalf("current document got %+v, %v", doc, ok)
	}

	fail = true
	_, err := svc.IndexDocument(ctx, "/tmp/y", "scan.pdf")
	if !errors.Is(err, pipelineError.ErrEmptyDocument) {
		t.Fatalf("expected empty document error, got %v", err)
	}
	if _, ok := svc.CurrentDocument(ctx); ok {
		t.Error("failed upload should leave no current document")
	}
}

func TestClear_Busy(t *testing.T) {
	locker := store.NewInMemoryLocker()
	release, _ := locker.Acquire(context.Background(), "lock:collection:"+config.CollectionName)
	defer release()

	svc := rag.NewService(rag.Dependencies{
		Indexer: &MockIndexer{}, Store: &MockStore{}, LLM: &MockLLM{},
		Locker: locker, Documents: store.NewInMemoryDocumentStore(),
	}, rag.Options{RequestTimeout: 50 * time.Millisecond})

	err := svc.Clear(context.Background())
	if pipelineError.KindOf(err) != pipelineError.KindBusy {
		t.Fatalf("expected busy, got %v", err)
	}
}

// pipeline wires the real indexer and vector client over the in-memory index.
type pipeline struct {
	svc   rag.Service
	index *memoryDB.Store
	texts map[string]string
	mu    sync.Mutex
}

func newPipeline(t *testing.T, l *MockLLM) *pipeline {
	t.Helper()
	p := &pipeline{index: memoryDB.New(0.97), texts: map[string]string{}}
	loader := &MockLoader{OnLoad: func(ctx context.Context, path string) (commonModels.ExtractedText, error) {
		p.mu.Lock()
		defer p.mu.Unlock()
		return commonModels.ExtractedText{Text: p.texts[path], PageOffsets: []int{0}, Pages: 1,
			Method: commonModels.MethodDirect, ContentType: commonModels.PDF}, nil
	}}
	vectors := vectorDB.NewClient(p.index, p.index, WordEmbedder{Size: 64}, vectorDB.Options{Alias: "kb", BatchSize: 4, Concurrency: 2})
	p.svc = rag.NewService(rag.Dependencies{
		Indexer:   ingest.New(loader, splitter.New(120, 20), vectors),
		Store:     vectors,
		LLM:       l,
		Locker:    store.NewInMemoryLocker(),
		Documents: store.NewInMemoryDocumentStore(),
	}, rag.Options{TopK: 5, SemanticCache: true, RequestTimeout: 10 * time.Second})
	return p
}

func (p *pipeline) file(path, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[path] = text
}

const invoiceText = `ACME Corp invoice number 4711.

Billing address: Hauptstrasse 5, Berlin.

The invoice total amount due is 1234.56 EUR, payable within 30 days.

Thank you for your business.`

func TestPipeline_IndexThenQueryFindsVerbatimChunk(t *testing.T) {
	ctx := context.Background()
	var seen []string
	l := &MockLLM{OnGenerate: func(ctx context.Context, req llm.Request) (string, error) {
		seen = append(seen, req.Prompt)
		return "1234.56 EUR", nil
	}}
	p := newPipeline(t, l)
	p.file("/up/invoice.pdf", invoiceText)

	if _, err := p.svc.IndexDocument(ctx, "/up/invoice.pdf", "invoice.pdf"); err != nil {
		t.Fatal(err)
	}
	answer, err := p.svc.Answer(ctx, "What is the invoice total amount due?")
	p.svc.Drain()
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, src := range answer.Sources {
		if strings.Contains(src.Chunk, "1234.56 EUR") {
			found = true
		}
	}
	if !found {
		t.Errorf("chunk with the verbatim answer not in top-k: %+v", answer.Sources)
	}
	if len(seen) != 1 || !strings.Contains(seen[0], "1234.56 EUR") {
		t.Errorf("prompt did not carry the answer chunk")
	}
}

func TestPipeline_ClearThenQueryIsCanned(t *testing.T) {
	ctx := context.Background()
	l := &MockLLM{}
	p := newPipeline(t, l)
	p.file("/up/invoice.pdf", invoiceText)

	if _, err := p.svc.IndexDocument(ctx, "/up/invoice.pdf", "invoice.pdf"); err != nil {
		t.Fatal(err)
	}
	if _, err := p.svc.Answer(ctx, "What is the invoice total?"); err != nil {
		t.Fatal(err)
	}
	p.svc.Drain()

	if err := p.svc.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	calls := l.Calls
	answer, err := p.svc.Answer(ctx, "What is the invoice total?")
	if err != nil {
		t.Fatal(err)
	}
	if answer.Text != rag.CannedAnswer || len(answer.Sources) != 0 || answer.FromCache {
		t.Errorf("expected canned answer after clear, got %+v", answer)
	}
	if l.Calls != calls {
		t.Error("model should not be called without context")
	}
	if _, ok := p.svc.CurrentDocument(ctx); ok {
		t.Error("clear should forget the current document")
	}
}

func TestPipeline_ConcurrentUploadsLeaveOneDocument(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, &MockLLM{})
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		p.file("/up/"+n, strings.Repeat("document "+n+" marker text. ", 20))
	}

	var wg sync.WaitGroup
	for _, n := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.svc.IndexDocument(ctx, "/up/"+n, n); err != nil {
				t.Errorf("index %s: %v", n, err)
			}
		}()
	}
	wg.Wait()

	current, ok := p.svc.CurrentDocument(ctx)
	if !ok {
		t.Fatal("no current document")
	}
	names2, _ := p.index.Collections(ctx)
	if len(names2) != 1 {
		t.Fatalf("expected a single collection, got %v", names2)
	}
	active, _, _ := p.index.ActiveCollection(ctx)
	if active != current.Collection {
		t.Errorf("registry says %s, alias points at %s", current.Collection, active)
	}
	hits, _ := p.index.Search(ctx, active, make([]float32, 64), 1000)
	for _, h := range hits {
		if h.Doc.Name != current.Name {
			t.Fatalf("index mixes documents: found %s while current is %s", h.Doc.Name, current.Name)
		}
	}
	if len(hits) != current.Chunks {
		t.Errorf("index holds %d chunks, document has %d", len(hits), current.Chunks)
	}
}
