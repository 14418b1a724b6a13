package rag_test

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
)

// MockStore implements vectorDB.Store
type MockStore struct {
	OnAdd            func(ctx context.Context, chunks []commonModels.DocChunk) error
	OnClear          func(ctx context.Context) error
	OnRetrieve       func(ctx context.Context, query string, k int) (commonModels.Retrieval, error)
	OnStage          func(ctx context.Context) (vectorDB.Staging, error)
	OnCachedAnswer   func(ctx context.Context, question string) (string, bool)
	OnRememberAnswer func(ctx context.Context, collection, question, answer string)
}

func (m *MockStore) Add(ctx context.Context, chunks []commonModels.DocChunk) error {
	if m.OnAdd != nil {
		return m.OnAdd(ctx, chunks)
	}
	return nil
}

func (m *MockStore) Clear(ctx context.Context) error {
	if m.OnClear != nil {
		return m.OnClear(ctx)
	}
	return nil
}

func (m *MockStore) Retrieve(ctx context.Context, query string, k int) (commonModels.Retrieval, error) {
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, query, k)
	}
	return commonModels.Retrieval{
		Collection: "kb-v1",
		Chunks:     []commonModels.ScoredChunk{{DocChunk: commonModels.DocChunk{Chunk: "default context"}, Score: 0.9}},
	}, nil
}

func (m *MockStore) Stage(ctx context.Context) (vectorDB.Staging, error) {
	if m.OnStage != nil {
		return m.OnStage(ctx)
	}
	return nil, nil
}

func (m *MockStore) CachedAnswer(ctx context.Context, question string) (string, bool) {
	if m.OnCachedAnswer != nil {
		return m.OnCachedAnswer(ctx, question)
	}
	return "", false
}

func (m *MockStore) RememberAnswer(ctx context.Context, collection, question, answer string) {
	if m.OnRememberAnswer != nil {
		m.OnRememberAnswer(ctx, collection, question, answer)
	}
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, req llm.Request) (string, error)
	Calls      int
}

func (m *MockLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.Calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, req)
	}
	return "mocked llm response", nil
}

func (m *MockLLM) Model() string {
	return "mock-model"
}

type MockIndexer struct {
	OnIndex func(ctx context.Context, path, name string) (commonModels.Document, error)
}

func (m *MockIndexer) Index(ctx context.Context, path, name string) (commonModels.Document, error) {
	if m.OnIndex != nil {
		return m.OnIndex(ctx, path, name)
	}
	return commonModels.Document{Id: "doc", Name: name, Chunks: 1}, nil
}

type MockValidator struct {
	OnValidate func(ctx context.Context, answer string, chunks []string) commonModels.Verdict
}

func (m *MockValidator) Validate(ctx context.Context, answer string, chunks []string) commonModels.Verdict {
	if m.OnValidate != nil {
		return m.OnValidate(ctx, answer, chunks)
	}
	return commonModels.Verdict{IsSupported: true, Reasoning: "All claims appear in the context."}
}

type MockLoader struct {
	OnLoad func(ctx context.Context, path string) (commonModels.ExtractedText, error)
}

func (m *MockLoader) Load(ctx context.Context, path string) (commonModels.ExtractedText, error) {
	return m.OnLoad(ctx, path)
}

// WordEmbedder hashes words into a bag-of-words vector, enough for lexical overlap to
// drive similarity in tests.
type WordEmbedder struct {
	Size int
}

func (e WordEmbedder) vector(text string) []float32 {
	v := make([]float32, e.Size)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(e.Size)]++
	}
	return v
}

func (e WordEmbedder) GetEmbedding(_ context.Context, query string) ([]float32, error) {
	return e.vector(query), nil
}

func (e WordEmbedder) BatchEmbedding(_ context.Context, chunks []string) ([][]float32, error) {
	out := make([][]float32, len(chunks))
	for i, c := range chunks {
		out[i] = e.vector(c)
	}
	return out, nil
}

func (e WordEmbedder) Dimension() int {
	return e.Size
}

// MockService stands in for rag.Service in transport tests.
type MockService struct {
	OnIndexDocument func(ctx context.Context, path, name string) (commonModels.Document, error)
	OnAnswer        func(ctx context.Context, question string) (commonModels.Answer, error)
	OnClear         func(ctx context.Context) error
	OnCurrent       func(ctx context.Context) (commonModels.Document, bool)
	Drained         bool
}

func (m *MockService) IndexDocument(ctx context.Context, path, name string) (commonModels.Document, error) {
	if m.OnIndexDocument != nil {
		return m.OnIndexDocument(ctx, path, name)
	}
	return commonModels.Document{Name: name}, nil
}

func (m *MockService) Answer(ctx context.Context, question string) (commonModels.Answer, error) {
	if m.OnAnswer != nil {
		return m.OnAnswer(ctx, question)
	}
	return commonModels.Answer{Question: question, Text: "mock answer", Found: true}, nil
}

func (m *MockService) Clear(ctx context.Context) error {
	if m.OnClear != nil {
		return m.OnClear(ctx)
	}
	return nil
}

func (m *MockService) CurrentDocument(ctx context.Context) (commonModels.Document, bool) {
	if m.OnCurrent != nil {
		return m.OnCurrent(ctx)
	}
	return commonModels.Document{}, false
}

func (m *MockService) Drain() {
	m.Drained = true
}
