package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

const CannedAnswer = "Sorry, I couldn't find a relevant answer in the document."

const answerPrompt = `You are a helpful financial assistant. Answer the user's question based only on the provided context. If the answer is not in the context, state that clearly.

CONTEXT:
%s

QUESTION: %s

ANSWER:`

func BuildAnswerPrompt(question string, chunks []string) string {
	return fmt.Sprintf(answerPrompt, strings.Join(chunks, "\n\n"), question)
}

func cannedAnswer(question string) commonModels.Answer {
	return commonModels.Answer{Question: question, Text: CannedAnswer, Raw: CannedAnswer}
}

func annotate(answer string, verdict commonModels.Verdict) string {
	label := "Not supported"
	if verdict.IsSupported {
		label = "Supported"
	}
	return fmt.Sprintf("%s\n\n---\nVerification: %s. %s", answer, label, verdict.Reasoning)
}

func chunkContents(chunks []commonModels.ScoredChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Chunk
	}
	return out
}

func logStep(log *logger_i.Logger, step string) {
	log.Debug("Answer", "Current Step", step)
}

func (s *service) executeCacheCheckStep(ctx context.Context, log *logger_i.Logger, question string) (string, bool) {
	logStep(log, "cache_check")
	return s.Store.CachedAnswer(ctx, question)
}

func (s *service) executeRetrievalStep(ctx context.Context, log *logger_i.Logger, question string) (commonModels.Retrieval, error) {
	logStep(log, "retrieval")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("retrieval", time.Since(start)) }()

	return s.Store.Retrieve(ctx, question, s.opts.TopK)
}

func (s *service) executeLLMStep(ctx context.Context, log *logger_i.Logger, question string, chunks []string) (string, error) {
	logStep(log, "llm_generation")

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.LLM.Generate(ctx, llm.Request{
		Prompt:      BuildAnswerPrompt(question, chunks),
		Temperature: s.opts.Temperature,
	})
}

func (s *service) executeValidationStep(ctx context.Context, log *logger_i.Logger, answer string, chunks []string) commonModels.Verdict {
	logStep(log, "validation")
	return s.Validator.Validate(ctx, answer, chunks)
}
