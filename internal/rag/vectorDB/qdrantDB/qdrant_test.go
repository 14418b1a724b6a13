package qdrantDB

import (
	"errors"
	"testing"

	"github.com/akolanti/intelliagent/internal/rag/vectorDB"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestChunkFromPayload(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"content":       "Total due: 500 EUR",
		"page_num":      int64(2),
		"source_doc_id": "doc-1",
		"doc_name":      "invoice.pdf",
		"chunk_order":   int64(7),
		"chunk_id":      "c-7",
		"offset":        int64(1200),
		"length":        int64(18),
		"ingested_at":   int64(1700000000),
	})

	c := chunkFromPayload(payload)
	if c.Chunk != "Total due: 500 EUR" || c.PageNum != 2 || c.Index != 7 || c.Offset != 1200 || c.Length != 18 {
		t.Errorf("unexpected chunk %+v", c)
	}
	if c.Doc.Name != "invoice.pdf" || c.Doc.Id != "doc-1" || c.Doc.LastIngestTimestamp.Unix() != 1700000000 {
		t.Errorf("unexpected document %+v", c.Doc)
	}
}

func TestChunkFromPayload_MissingKeys(t *testing.T) {
	c := chunkFromPayload(map[string]*qdrant.Value{})
	if c.Chunk != "" || c.PageNum != 0 {
		t.Errorf("missing keys should decode to zero values, got %+v", c)
	}
}

func TestMapErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
	}{
		{"nil", nil, false},
		{"grpc not found", status.Error(codes.NotFound, "Collection `x` doesn't exist!"), true},
		{"message only", errors.New("Not found: Collection `x` doesn't exist!"), true},
		{"unavailable", status.Error(codes.Unavailable, "connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErr(tt.err)
			if errors.Is(got, vectorDB.ErrCollectionNotFound) != tt.notFound {
				t.Errorf("mapErr(%v) = %v", tt.err, got)
			}
			if tt.err == nil && got != nil {
				t.Errorf("nil should stay nil")
			}
		})
	}
}
