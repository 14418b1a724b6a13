package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	_ vectorDB.Index       = (*DB)(nil)
	_ vectorDB.AnswerCache = (*DB)(nil)
)

type DB struct {
	client    *qdrant.Client
	alias     string
	cacheName string
	cutoff    float32
	dimension int
	logger    *logger_i.Logger
	closeOnce sync.Once
}

// New connects to Qdrant and makes sure the answer cache collection exists. The
// connection is closed when ctx is done.
func New(ctx context.Context, settings config.VectorSettings, dimension int, cutoff float32) (*DB, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     settings.Host,
		Port:     settings.GrpcPort,
		APIKey:   settings.APIKey,
		UseTLS:   settings.UseTLS,
		PoolSize: settings.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("could not instantiate qdrant client: %w", err)
	}

	db := &DB{
		client:    client,
		alias:     settings.Collection,
		cacheName: settings.CacheName,
		cutoff:    cutoff,
		dimension: dimension,
		logger:    logger_i.NewLogger("Qdrant"),
	}

	if err := db.dropUnaliasedBase(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.createIfMissing(ctx, db.cacheName); err != nil {
		db.Close()
		return nil, fmt.Errorf("semantic cache collection creation failed: %w", err)
	}

	go db.closeOnDone(ctx)
	return db, nil
}

func (db *DB) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.Close()
}

func (db *DB) Close() {
	db.closeOnce.Do(func() {
		db.logger.Info("Shutting down Qdrant")
		if err := db.client.Close(); err != nil {
			db.logger.Error("could not close Qdrant", "error", err)
			return
		}
		db.logger.Info("Closed Qdrant")
	})
}

// dropUnaliasedBase removes a plain collection that carries the alias name. Qdrant
// refuses an alias that shadows a collection, and such a collection predates
// versioning anyway.
func (db *DB) dropUnaliasedBase(ctx context.Context) error {
	if _, ok, err := db.ActiveCollection(ctx); err != nil || ok {
		return err
	}
	exists, err := db.client.CollectionExists(ctx, db.alias)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", db.alias, err)
	}
	if !exists {
		return nil
	}
	db.logger.Warn("dropping unversioned collection, re-index the document", "collection", db.alias)
	return db.client.DeleteCollection(ctx, db.alias)
}

func (db *DB) createIfMissing(ctx context.Context, name string) error {
	exists, err := db.client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return db.CreateCollection(ctx, name, db.dimension)
}

func (db *DB) CreateCollection(ctx context.Context, name string, dimension int) error {
	if name == "" {
		return errors.New("empty collection name")
	}
	err := db.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return mapErr(err)
}

func (db *DB) DeleteCollection(ctx context.Context, name string) error {
	return mapErr(db.client.DeleteCollection(ctx, name))
}

func (db *DB) Collections(ctx context.Context) ([]string, error) {
	names, err := db.client.ListCollections(ctx)
	return names, mapErr(err)
}

func (db *DB) ActiveCollection(ctx context.Context) (string, bool, error) {
	aliases, err := db.client.ListAliases(ctx)
	if err != nil {
		return "", false, mapErr(err)
	}
	for _, a := range aliases {
		if a.GetAliasName() == db.alias {
			return a.GetCollectionName(), true, nil
		}
	}
	return "", false, nil
}

// Activate moves the alias in a single request so readers never see it missing.
func (db *DB) Activate(ctx context.Context, name string) error {
	_, ok, err := db.ActiveCollection(ctx)
	if err != nil {
		return err
	}
	var ops []*qdrant.AliasOperations
	if ok {
		ops = append(ops, qdrant.NewAliasDelete(db.alias))
	}
	ops = append(ops, qdrant.NewAliasCreate(db.alias, name))
	return mapErr(db.client.UpdateAliases(ctx, ops))
}

func (db *DB) UpsertBatch(ctx context.Context, collection string, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Chunk,
				"page_num":      int64(chunk.PageNum),
				"source_doc_id": chunk.Doc.Id,
				"doc_name":      chunk.Doc.Name,
				"chunk_order":   int64(chunk.Index),
				"chunk_id":      chunk.ChunkId,
				"offset":        int64(chunk.Offset),
				"length":        int64(chunk.Length),
				"ingested_at":   chunk.Doc.LastIngestTimestamp.Unix(),
			}),
		}
	}

	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", mapErr(err))
	}
	return nil
}

func (db *DB) Search(ctx context.Context, collection string, vector []float32, limit int) ([]commonModels.ScoredChunk, error) {
	result, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		db.logger.WithContext(ctx).Error("Error querying Qdrant", "collection", collection, "error", err)
		return nil, mapErr(err)
	}

	hits := make([]commonModels.ScoredChunk, 0, len(result))
	for _, hit := range result {
		hits = append(hits, commonModels.ScoredChunk{DocChunk: chunkFromPayload(hit.GetPayload()), Score: hit.GetScore()})
	}
	return hits, nil
}

func chunkFromPayload(p map[string]*qdrant.Value) commonModels.DocChunk {
	return commonModels.DocChunk{
		Doc: commonModels.Document{
			Id:                  p["source_doc_id"].GetStringValue(),
			Name:                p["doc_name"].GetStringValue(),
			LastIngestTimestamp: time.Unix(p["ingested_at"].GetIntegerValue(), 0),
		},
		ChunkId: p["chunk_id"].GetStringValue(),
		Chunk:   p["content"].GetStringValue(),
		Offset:  int(p["offset"].GetIntegerValue()),
		Length:  int(p["length"].GetIntegerValue()),
		PageNum: int(p["page_num"].GetIntegerValue()),
		Index:   int(p["chunk_order"].GetIntegerValue()),
	}
}

// mapErr turns Qdrant's missing collection answers into vectorDB.ErrCollectionNotFound.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if status.Code(err) == codes.NotFound || strings.Contains(err.Error(), "doesn't exist") {
		return fmt.Errorf("%w: %v", vectorDB.ErrCollectionNotFound, err)
	}
	return err
}
