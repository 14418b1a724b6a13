package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/data/redisStore"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

type RedisDocumentStore struct {
	store  *redisStore.Store
	key    string
	logger *logger_i.Logger
}

func NewRedisDocumentStore(store *redisStore.Store) *RedisDocumentStore {
	return &RedisDocumentStore{
		store:  store,
		key:    config.DocumentKey,
		logger: logger_i.NewLogger("DocumentStore"),
	}
}

func (s *RedisDocumentStore) SaveDocument(ctx context.Context, doc commonModels.Document) error {
	log := s.logger.WithContext(ctx).With("document", doc.Name)
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, s.key, data, 0); err != nil {
		return err
	}
	log.Debug("Saved document to Redis")
	return nil
}

func (s *RedisDocumentStore) GetDocument(ctx context.Context) (commonModels.Document, bool) {
	var doc commonModels.Document
	log := s.logger.WithContext(ctx)

	val, err := s.store.Get(ctx, s.key)
	if s.store.IsNil(err) {
		return doc, false
	} else if err != nil {
		log.Error("Error reading document from Redis", "error", err)
		return doc, false
	}

	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		log.Error("Stored document is not valid JSON", "error", err)
		return doc, false
	}
	return doc, true
}

func (s *RedisDocumentStore) DeleteDocument(ctx context.Context) error {
	if err := s.store.Del(ctx, s.key); err != nil {
		s.logger.WithContext(ctx).Error("Error deleting document from Redis", "error", err)
		return err
	}
	return nil
}
