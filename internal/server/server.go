package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/akolanti/intelliagent/internal/adapter/utils"
	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/handlers"
	"github.com/akolanti/intelliagent/internal/middleware"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	httpServer *http.Server
	settings   config.ServerSettings
	logger     *logger_i.Logger
}

// Routes mounts the REST API and, when mcpHandler is not nil, the MCP endpoint.
func Routes(settings config.ServerSettings, h *handlers.Handler, mw *middleware.Middleware, mcpHandler http.Handler) *chi.Mux {
	r := utils.NewRouter(middleware.CORS(settings.CorsAllowedOrigins))

	r.Get("/", mw.Wrap(h.HelloHandler))
	r.Get("/health", mw.Wrap(h.HealthHandler))

	r.Route("/api", func(api chi.Router) {
		api.Post("/process-invoice", mw.Wrap(h.ProcessInvoiceHandler))
		api.Post("/query", mw.Wrap(h.QueryHandler))
		api.Post("/clear", mw.Wrap(h.ClearHandler))
		api.Get("/document", mw.Wrap(h.DocumentHandler))
	})

	if mcpHandler != nil {
		r.Handle("/mcp", mw.Handler(mcpHandler))
	}
	return r
}

func New(settings config.ServerSettings, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         settings.ListenAddr,
			Handler:      handler,
			ReadTimeout:  settings.ReadTimeout,
			WriteTimeout: settings.WriteTimeout,
			IdleTimeout:  settings.IdleTimeout,
		},
		settings: settings,
		logger:   logger_i.NewLogger("Server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at most the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("Server is listening at", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			s.logger.Error("Server crashed", "error", err, "addr", s.httpServer.Addr)
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.settings.ShutdownTimeout)
	defer cancel()

	s.httpServer.SetKeepAlivesEnabled(false)
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Could not shutdown gracefully", "error", err)
		return err
	}
	s.logger.Info("Gracefully shut down")
	return <-serveErr
}
