// Package memoryDB is an in-process vector index used for tests and for running
// without a Qdrant server. Contents are lost on restart.
package memoryDB

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
)

var (
	_ vectorDB.Index       = (*Store)(nil)
	_ vectorDB.AnswerCache = (*Store)(nil)
)

type point struct {
	chunk  commonModels.DocChunk
	vector []float32
}

type collection struct {
	dimension int
	points    map[string]point
}

type cachedAnswer struct {
	collection string
	vector     []float32
	answer     string
}

type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	active      string
	cache       []cachedAnswer
	cutoff      float32
}

// New creates an empty index. cutoff is the minimum cosine similarity for an answer
// cache hit.
func New(cutoff float32) *Store {
	return &Store{
		collections: make(map[string]*collection),
		cutoff:      cutoff,
	}
}

func (s *Store) CreateCollection(_ context.Context, name string, dimension int) error {
	if name == "" {
		return fmt.Errorf("empty collection name")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return nil
	}
	s.collections[name] = &collection{dimension: dimension, points: make(map[string]point)}
	return nil
}

func (s *Store) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return vectorDB.ErrCollectionNotFound
	}
	delete(s.collections, name)
	if s.active == name {
		s.active = ""
	}
	return nil
}

func (s *Store) Collections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) ActiveCollection(_ context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, s.active != "", nil
}

func (s *Store) Activate(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return vectorDB.ErrCollectionNotFound
	}
	s.active = name
	return nil
}

func (s *Store) UpsertBatch(_ context.Context, name string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return vectorDB.ErrCollectionNotFound
	}
	for i, chunk := range chunks {
		if len(vectors[i]) != c.dimension {
			return fmt.Errorf("vector %d has %d dimensions, collection expects %d", i, len(vectors[i]), c.dimension)
		}
		c.points[chunk.ChunkId] = point{chunk: chunk, vector: vectors[i]}
	}
	return nil
}

func (s *Store) Search(_ context.Context, name string, vector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, vectorDB.ErrCollectionNotFound
	}

	hits := make([]commonModels.ScoredChunk, 0, len(c.points))
	for _, p := range c.points {
		hits = append(hits, commonModels.ScoredChunk{DocChunk: p.chunk, Score: cosine(vector, p.vector)})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].Index < hits[j].Index
		}
		return hits[i].Score > hits[j].Score
	})
	if limit >= 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *Store) GetCachedAnswer(_ context.Context, name string, queryVector []float32) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	best, answer := float32(-1), ""
	for _, entry := range s.cache {
		if entry.collection != name {
			continue
		}
		if score := cosine(queryVector, entry.vector); score > best {
			best, answer = score, entry.answer
		}
	}
	if best < s.cutoff {
		return "", false, nil
	}
	return answer, true, nil
}

func (s *Store) SaveToCache(_ context.Context, name string, vector []float32, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = append(s.cache, cachedAnswer{collection: name, vector: vector, answer: answer})
	return nil
}

func (s *Store) PurgeCache(_ context.Context, keep string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cache[:0]
	for _, entry := range s.cache {
		if entry.collection == keep {
			kept = append(kept, entry)
		}
	}
	s.cache = kept
	return nil
}

// Len reports the number of points in a collection, -1 if it does not exist.
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return -1
	}
	return len(c.points)
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
