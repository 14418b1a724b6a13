// @title           IntelliAgent RAG API
// @version         1.0
// @description     Upload a document, then ask questions answered only from its content.
// @termsOfService  http://swagger.io/terms/

// @contact.name    IntelliAgent maintainers

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/intelliagent/internal/app"
	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/internal/handlers"
	"github.com/akolanti/intelliagent/internal/mcpServer"
	"github.com/akolanti/intelliagent/internal/middleware"
	"github.com/akolanti/intelliagent/internal/server"
	"github.com/akolanti/intelliagent/pkg/logger_i"
)

func main() {
	var configPath, listenAddr string
	flag.StringVar(&configPath, "config", "", "path to a yaml config file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the config")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		println("config error:", err.Error())
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.Server.ListenAddr = listenAddr
	}

	logger_i.Init(settings.Log.Level, settings.Log.JSON)
	logger := logger_i.NewLogger("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.Build(ctx, settings)
	if err != nil {
		logger.Error("One or more external services failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	routes := server.Routes(
		settings.Server,
		handlers.NewHandler(pipeline.Service, settings.Server),
		middleware.New(settings.Server),
		mcpServer.NewServer(pipeline.Service).Handler(),
	)

	if err := server.New(settings.Server, routes).Run(ctx); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return
	}
	logger.Info("Server stopped")
}
