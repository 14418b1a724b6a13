package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/intelliagent/internal/domain/pipelineError"
)

// Embedder converts text to fixed-size vectors. The same instance embeds documents at
// index time and questions at query time so both land in the same vector space.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
	Dimension() int
}

const sampleText = "dimension check"

// VerifyDimension embeds a sample string and fails with a configuration error when the
// model output does not have the size the collection is created with.
func VerifyDimension(ctx context.Context, e Embedder, want int) error {
	vec, err := e.GetEmbedding(ctx, sampleText)
	if err != nil {
		return pipelineError.New(pipelineError.KindEmbedding, "verify dimension", err)
	}
	if len(vec) != want {
		return pipelineError.New(pipelineError.KindConfiguration, "verify dimension",
			fmt.Errorf("%w: model returned %d, collection expects %d", pipelineError.ErrDimensionMismatch, len(vec), want))
	}
	return nil
}
