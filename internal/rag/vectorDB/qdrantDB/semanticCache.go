package qdrantDB

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// GetCachedAnswer returns the closest cached answer computed from collection when it
// clears the similarity cutoff.
func (db *DB) GetCachedAnswer(ctx context.Context, collection string, queryVector []float32) (string, bool, error) {
	loggr := db.logger.WithContext(ctx)

	loggr.Debug("Searching for cached answer", "collection", collection)
	searchResult, err := db.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.cacheName,
		Query:          qdrant.NewQuery(queryVector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("collection", collection)},
		},
		Limit:       qdrant.PtrOf(uint64(1)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Cache Query failed", "error", err)
		return "", false, mapErr(err)
	}
	if len(searchResult) == 0 {
		return "", false, nil
	}

	score := searchResult[0].GetScore()
	loggr.Debug("closest cached answer", "score", score)
	if score < db.cutoff {
		return "", false, nil
	}

	loggr.Info("cache hit", "score", score)
	return searchResult[0].GetPayload()["answer"].GetStringValue(), true, nil
}

func (db *DB) SaveToCache(ctx context.Context, collection string, vector []float32, answer string) error {
	_, err := db.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.cacheName,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(uuid.NewString()),
				Vectors: qdrant.NewVectors(vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					"answer":     answer,
					"collection": collection,
					"timestamp":  time.Now().Unix(),
				}),
			},
		},
	})
	if err != nil {
		db.logger.WithContext(ctx).Error("Saving answer to cache failed", "error", err)
	}
	return mapErr(err)
}

// PurgeCache deletes answers computed from any collection other than keep.
func (db *DB) PurgeCache(ctx context.Context, keep string) error {
	_, err := db.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.cacheName,
		Wait:           qdrant.PtrOf(true),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			MustNot: []*qdrant.Condition{qdrant.NewMatch("collection", keep)},
		}),
	})
	return mapErr(err)
}
