package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/data/redisStore"
	"github.com/akolanti/intelliagent/internal/data/store"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewWithClient(client)
}

func testDocument() commonModels.Document {
	return commonModels.Document{
		Id:                  "doc-1",
		Name:                "invoice.pdf",
		LastIngestTimestamp: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		ContentType:         commonModels.PDF,
		Method:              commonModels.MethodOCR,
		Pages:               3,
		Chunks:              12,
		Collection:          "kb-v1",
	}
}

func TestDocumentStores(t *testing.T) {
	_, rs := newRedis(t)
	stores := map[string]store.DocumentStore{
		"redis":    store.NewRedisDocumentStore(rs),
		"inMemory": store.NewInMemoryDocumentStore(),
	}

	for name, docs := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := config.WithTraceID(context.Background(), "test-trace")

			if _, found := docs.GetDocument(ctx); found {
				t.Fatal("empty store reported a document")
			}

			want := testDocument()
			if err := docs.SaveDocument(ctx, want); err != nil {
				t.Fatalf("SaveDocument failed: %v", err)
			}
			got, found := docs.GetDocument(ctx)
			if !found {
				t.Fatal("document was saved but not found")
			}
			if got.Name != want.Name || got.Chunks != want.Chunks || got.Method != want.Method || !got.LastIngestTimestamp.Equal(want.LastIngestTimestamp) {
				t.Errorf("got %+v, want %+v", got, want)
			}

			if err := docs.DeleteDocument(ctx); err != nil {
				t.Fatalf("DeleteDocument failed: %v", err)
			}
			if _, found := docs.GetDocument(ctx); found {
				t.Error("document still present after delete")
			}
		})
	}
}

func TestRedisDocumentStore_CorruptValue(t *testing.T) {
	mr, rs := newRedis(t)
	docs := store.NewRedisDocumentStore(rs)
	_ = mr.Set(config.DocumentKey, "{not json")

	if _, found := docs.GetDocument(context.Background()); found {
		t.Error("corrupt value should read as no document")
	}
}
