package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/domain/commonModels"
	"github.com/akolanti/intelliagent/internal/handlers"
	"github.com/akolanti/intelliagent/internal/middleware"
	"github.com/akolanti/intelliagent/internal/rag/rag_test"
)

func newRoutes(t *testing.T, svc *rag_test.MockService, mcp http.Handler) http.Handler {
	t.Helper()
	settings := config.Default().Server
	settings.TempDir = t.TempDir()
	settings.RateLimitPerSecond = 0
	return Routes(settings, handlers.NewHandler(svc, settings), middleware.New(settings), mcp)
}

func TestRoutes(t *testing.T) {
	svc := &rag_test.MockService{
		OnCurrent: func(ctx context.Context) (commonModels.Document, bool) {
			return commonModels.Document{Name: "a.pdf"}, true
		},
	}
	h := newRoutes(t, svc, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodPost, "/api/query", `{"question":"total?"}`, http.StatusOK},
		{http.MethodPost, "/api/clear", "", http.StatusOK},
		{http.MethodGet, "/api/document", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/query", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/mcp", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRoutes_MountsMCP(t *testing.T) {
	hit := false
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusAccepted)
	})
	rr := httptest.NewRecorder()
	newRoutes(t, &rag_test.MockService{}, mcp).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/mcp", nil))

	if !hit || rr.Code != http.StatusAccepted {
		t.Errorf("mcp not mounted, code %d", rr.Code)
	}
	if rr.Header().Get("X-Trace-Id") == "" {
		t.Error("mcp requests should go through the middleware")
	}
}

func TestRoutes_CORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/query", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	newRoutes(t, &rag_test.MockService{}, nil).ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin got %q", got)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	settings := config.Default().Server
	settings.ListenAddr = "127.0.0.1:0"
	settings.ShutdownTimeout = time.Second
	s := New(settings, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
