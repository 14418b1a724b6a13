package middleware

import (
	"net/http"

	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/metrics"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

// Middleware runs every API request through trace injection, optional bearer auth and
// the per IP rate limiter, and records the response status.
type Middleware struct {
	authToken string
	limiter   *IPRateLimiter
	logger    *logger_i.Logger
}

func New(settings config.ServerSettings) *Middleware {
	var limiter *IPRateLimiter
	if settings.RateLimitPerSecond > 0 {
		limiter = NewIPRateLimiter(rate.Limit(settings.RateLimitPerSecond), settings.RateLimitBurst)
	}
	return &Middleware{
		authToken: settings.APIToken,
		limiter:   limiter,
		logger:    logger_i.NewLogger("middleware"),
	}
}

func (m *Middleware) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK}
		defer func() { metrics.CaptureHttpRequest(r.URL.Path, rec.Status) }()

		re := m.processRequest(requestResponseStruct{req: r, writer: rec})
		if !handleBadRequest(re) {
			return
		}
		next(rec, re.req)
	}
}

// Handler adapts Wrap for mounted handlers such as the MCP endpoint.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return m.Wrap(next.ServeHTTP)
}

func (m *Middleware) processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = m.logger
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	re = m.authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails
	}
	return m.rateLimiter(re)
}

// CORS lets the browser frontend call the API.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"X-Trace-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
