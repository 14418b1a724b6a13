package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	s := Default()

	if s.Embedding.Dimension != 384 {
		t.Errorf("dimension got %d, want 384", s.Embedding.Dimension)
	}
	if s.Vector.Collection != "intelliagent-collection" {
		t.Errorf("collection got %q", s.Vector.Collection)
	}
	if s.RAG.ChunkSize != 1000 || s.RAG.ChunkOverlap != 200 || s.RAG.TopK != 5 {
		t.Errorf("rag defaults got %+v", s.RAG)
	}
	if s.RAG.MinDigitalTextLength != 250 {
		t.Errorf("ocr threshold got %d, want 250", s.RAG.MinDigitalTextLength)
	}
	if s.LLM.Model != "openai/gpt-oss-20b" || s.LLM.Temperature != 0.3 {
		t.Errorf("answer model got %s@%v", s.LLM.Model, s.LLM.Temperature)
	}
	if s.LLM.ValidationModel != "llama-3.1-8b-instant" || s.LLM.ValidationTemperature != 0 {
		t.Errorf("validation model got %s@%v", s.LLM.ValidationModel, s.LLM.ValidationTemperature)
	}
	if len(s.Server.CorsAllowedOrigins) != 1 || s.Server.CorsAllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("cors origins got %v", s.Server.CorsAllowedOrigins)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intelliagent.yaml")
	yaml := `
server:
  listen_addr: ":9000"
  write_timeout: 45s
rag:
  top_k: 3
  validate_answers: false
vector:
  backend: memory
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INTELLIAGENT_RAG_CHUNK_SIZE", "800")
	t.Setenv("GROQ_API_KEY", "gsk-test")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if s.Server.ListenAddr != ":9000" {
		t.Errorf("listen addr got %q", s.Server.ListenAddr)
	}
	if s.Server.WriteTimeout != 45*time.Second {
		t.Errorf("write timeout got %v", s.Server.WriteTimeout)
	}
	if s.RAG.TopK != 3 || s.RAG.ValidateAnswers {
		t.Errorf("file values not applied: %+v", s.RAG)
	}
	if s.RAG.ChunkSize != 800 {
		t.Errorf("env override not applied, chunk size %d", s.RAG.ChunkSize)
	}
	if s.LLM.APIKey != "gsk-test" {
		t.Errorf("api key alias not applied, got %q", s.LLM.APIKey)
	}
	if s.Vector.Backend != VectorBackendMemory {
		t.Errorf("backend got %q", s.Vector.Backend)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"overlap not below size", func(s *Settings) { s.RAG.ChunkOverlap = s.RAG.ChunkSize }, "chunk_overlap"},
		{"zero top k", func(s *Settings) { s.RAG.TopK = 0 }, "top_k"},
		{"zero dimension", func(s *Settings) { s.Embedding.Dimension = 0 }, "dimension"},
		{"unknown backend", func(s *Settings) { s.Vector.Backend = "pinecone" }, "vector.backend"},
		{"unknown embedder", func(s *Settings) { s.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"unknown llm", func(s *Settings) { s.LLM.Provider = "claude" }, "llm.provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}
