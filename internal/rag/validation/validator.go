package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

const failedReasoning = "validation failed"

const promptTemplate = `You are a meticulous fact-checker. Your task is to determine if the 'Generated Answer' is fully supported by the 'Provided Context'.
Do not use any external knowledge. Base your judgment solely on the text provided.

Provided Context:
---
%s
---

Generated Answer:
---
%s
---

Is every claim in the 'Generated Answer' directly supported by the 'Provided Context'?
Respond with a JSON object with two keys: "is_supported" (boolean) and "reasoning" (a brief explanation).`

// Validator asks a second model whether an answer is grounded in the retrieved context.
type Validator struct {
	model       llm.Provider
	temperature float64
	logger      *logger_i.Logger
}

func New(model llm.Provider, temperature float64) *Validator {
	return &Validator{
		model:       model,
		temperature: temperature,
		logger:      logger_i.NewLogger("validation"),
	}
}

// Validate never fails. Anything short of a well formed verdict from the model counts as
// not supported.
func (v *Validator) Validate(ctx context.Context, answer string, chunks []string) commonModels.Verdict {
	log := v.logger.WithContext(ctx)

	start := time.Now()
	raw, err := v.model.Generate(ctx, llm.Request{
		Prompt:      BuildPrompt(answer, chunks),
		Temperature: v.temperature,
	})
	metrics.CaptureExecutionMetrics("llm_validation", time.Since(start))
	if err != nil {
		log.Warn("validation model call failed", "error", err)
		return failed()
	}

	verdict, err := ParseVerdict(raw)
	if err != nil {
		log.Warn("could not parse validation verdict", "error", err, "raw", raw)
		return failed()
	}
	metrics.CaptureVerdict(verdict.IsSupported)
	log.Debug("answer validated", "supported", verdict.IsSupported)
	return verdict
}

func failed() commonModels.Verdict {
	metrics.CaptureVerdict(false)
	return commonModels.Verdict{IsSupported: false, Reasoning: failedReasoning}
}

func BuildPrompt(answer string, chunks []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(chunks, "\n\n---\n\n"), answer)
}

type rawVerdict struct {
	IsSupported *bool  `json:"is_supported"`
	Reasoning   string `json:"reasoning"`
}

// ParseVerdict reads the model's JSON, tolerating a surrounding Markdown code fence.
func ParseVerdict(raw string) (commonModels.Verdict, error) {
	var rv rawVerdict
	if err := json.Unmarshal([]byte(stripFence(raw)), &rv); err != nil {
		return commonModels.Verdict{}, err
	}
	if rv.IsSupported == nil {
		return commonModels.Verdict{}, errors.New("is_supported missing from verdict")
	}
	return commonModels.Verdict{IsSupported: *rv.IsSupported, Reasoning: rv.Reasoning}, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// drop the info string, e.g. ```json
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
