package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"golang.org/x/time/rate"
)

func okHandler(t *testing.T, gotTrace *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gotTrace != nil {
			*gotTrace = config.TraceID(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	}
}

func settings(token string, perSecond float64, burst int) config.ServerSettings {
	s := config.Default().Server
	s.APIToken = token
	s.RateLimitPerSecond = perSecond
	s.RateLimitBurst = burst
	return s
}

func TestWrap_InjectsTrace(t *testing.T) {
	m := New(settings("", 0, 0))
	var trace string
	h := m.Wrap(okHandler(t, &trace))

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if trace == "" {
		t.Fatal("trace id missing from request context")
	}
	if rr.Header().Get(traceHeader) != trace {
		t.Errorf("response trace %q does not match context %q", rr.Header().Get(traceHeader), trace)
	}
}

func TestWrap_KeepsCallerTrace(t *testing.T) {
	m := New(settings("", 0, 0))
	var trace string
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(traceHeader, "abc-123")

	m.Wrap(okHandler(t, &trace))(httptest.NewRecorder(), req)

	if trace != "abc-123" {
		t.Errorf("got trace %q, want abc-123", trace)
	}
}

func TestWrap_Auth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic secret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(settings("secret", 0, 0))
			called := false
			h := m.Wrap(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/api/query", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h(rr, req)

			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
			if called != (tt.want == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
		})
	}
}

func TestWrap_NoTokenSkipsAuth(t *testing.T) {
	m := New(settings("", 0, 0))
	rr := httptest.NewRecorder()
	m.Wrap(okHandler(t, nil))(rr, httptest.NewRequest(http.MethodPost, "/api/clear", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 without a configured token, got %d", rr.Code)
	}
}

func TestWrap_RateLimit(t *testing.T) {
	m := New(settings("", 0.001, 2))
	h := m.Wrap(okHandler(t, nil))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rr := httptest.NewRecorder()
		h(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("got %v, want [200 200 429]", codes)
	}

	// other clients keep their own bucket
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:4000"
	rr := httptest.NewRecorder()
	h(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("second ip got %d", rr.Code)
	}
}

func TestIsValidBearerToken(t *testing.T) {
	log := logger_i.NewLogger("test")
	if !IsValidBearerToken("Bearer t0k", "t0k", log) {
		t.Error("expected valid token")
	}
	if IsValidBearerToken("Bearer t0k ", "t0k", log) {
		t.Error("trailing space should not match")
	}
}

func TestIPRateLimiter_DropsIdleVisitors(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") {
		t.Fatal("first request should pass")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(visitorIdleTTL + time.Minute)
	if !l.Allow("10.0.0.2") {
		t.Fatal("new visitor should pass")
	}
	if got := l.tracked(); got != 1 {
		t.Errorf("idle visitor not dropped, tracking %d", got)
	}
}
