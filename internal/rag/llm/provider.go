package llm

import "context"

type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Provider is one hosted chat model. Model name is fixed per provider instance, so the
// answer model and the validation model are two providers.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}
