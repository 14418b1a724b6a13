package store

import (
	"context"
	"sync"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
)

type InMemoryDocumentStore struct {
	mu  sync.RWMutex
	doc *commonModels.Document
}

func NewInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{}
}

func (s *InMemoryDocumentStore) SaveDocument(_ context.Context, doc commonModels.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = &doc
	return nil
}

func (s *InMemoryDocumentStore) GetDocument(_ context.Context) (commonModels.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return commonModels.Document{}, false
	}
	return *s.doc, true
}

func (s *InMemoryDocumentStore) DeleteDocument(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	return nil
}
