package validation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akolanti/intelliagent/internal/rag/llm"
	"github.com/akolanti/intelliagent/internal/rag/rag_test"
	"github.com/akolanti/intelliagent/internal/rag/validation"
)

var context1 = []string{
	"Invoice 4711 issued by ACME Corp.",
	"Total amount due: 1234.56 EUR.",
}

// factChecker stands in for the validation model: it supports an answer only when every
// number in it occurs in the context part of the prompt.
func factChecker(ctx context.Context, req llm.Request) (string, error) {
	parts := strings.SplitN(req.Prompt, "Generated Answer:", 2)
	contextPart, answerPart := parts[0], parts[1]
	for _, field := range strings.Fields(answerPart) {
		field = strings.Trim(field, ".,-")
		if field == "" || !strings.ContainsAny(field[:1], "0123456789") {
			continue
		}
		if !strings.Contains(contextPart, field) {
			return "```json\n{\"is_supported\": false, \"reasoning\": \"" + field + " does not appear in the context\"}\n```", nil
		}
	}
	return `{"is_supported": true, "reasoning": "every figure appears in the context"}`, nil
}

func TestValidate_SupportedAndFabricated(t *testing.T) {
	v := validation.New(&rag_test.MockLLM{OnGenerate: factChecker}, 0)

	got := v.Validate(context.Background(), "The total due is 1234.56 EUR.", context1)
	if !got.IsSupported {
		t.Errorf("supported answer rejected: %+v", got)
	}

	got = v.Validate(context.Background(), "The total due is 9999.00 EUR.", context1)
	if got.IsSupported {
		t.Errorf("fabricated figure accepted: %+v", got)
	}
	if !strings.Contains(got.Reasoning, "9999.00") {
		t.Errorf("reasoning got %q", got.Reasoning)
	}
}

func TestValidate_Defaults(t *testing.T) {
	tests := []struct {
		name string
		gen  func(context.Context, llm.Request) (string, error)
	}{
		{"model error", func(context.Context, llm.Request) (string, error) { return "", errors.New("timeout") }},
		{"not json", func(context.Context, llm.Request) (string, error) { return "Yes, it is supported.", nil }},
		{"missing key", func(context.Context, llm.Request) (string, error) { return `{"reasoning": "fine"}`, nil }},
		{"string boolean", func(context.Context, llm.Request) (string, error) { return `{"is_supported": "true"}`, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validation.New(&rag_test.MockLLM{OnGenerate: tt.gen}, 0)
			got := v.Validate(context.Background(), "answer", context1)
			if got.IsSupported || got.Reasoning != "validation failed" {
				t.Errorf("got %+v, want the conservative default", got)
			}
		})
	}
}

func TestValidate_RequestShape(t *testing.T) {
	var req llm.Request
	m := &rag_test.MockLLM{OnGenerate: func(_ context.Context, r llm.Request) (string, error) {
		req = r
		return `{"is_supported": true, "reasoning": "ok"}`, nil
	}}
	validation.New(m, 0).Validate(context.Background(), "The answer.", context1)

	if req.Temperature != 0 {
		t.Errorf("temperature got %v", req.Temperature)
	}
	wantContext := "---\nInvoice 4711 issued by ACME Corp.\n\n---\n\nTotal amount due: 1234.56 EUR.\n---"
	if !strings.Contains(req.Prompt, wantContext) {
		t.Errorf("context block not found in prompt:\n%s", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "Generated Answer:\n---\nThe answer.\n---") {
		t.Errorf("answer block not found in prompt:\n%s", req.Prompt)
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		raw       string
		supported bool
		wantErr   bool
	}{
		{`{"is_supported": true, "reasoning": "r"}`, true, false},
		{"```json\n{\"is_supported\": false, \"reasoning\": \"r\"}\n```", false, false},
		{"```\n{\"is_supported\": true}\n```", true, false},
		{"  {\"is_supported\": false}  ", false, false},
		{`{"is_supported": null}`, false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		got, err := validation.ParseVerdict(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseVerdict(%q) err = %v", tt.raw, err)
			continue
		}
		if err == nil && got.IsSupported != tt.supported {
			t.Errorf("ParseVerdict(%q) = %+v", tt.raw, got)
		}
	}
}
