package main

import (
	"context"
	"fmt"
	"os"

	"github.com/akolanti/intelliagent/internal/app"
	"github.com/akolanti/intelliagent/internal/config"
	"github.com/akolanti/intelliagent/pkg/logger_i"
	"github.com/spf13/cobra"
)

type buildFunc func(ctx context.Context, settings *config.Settings) (*app.App, error)

type cli struct {
	configPath string
	build      buildFunc
}

func newRootCmd(build buildFunc) *cobra.Command {
	c := &cli{build: build}

	root := &cobra.Command{
		Use:   "intelliagent",
		Short: "Index a document and ask questions about it",
		Long: `intelliagent indexes one PDF, DOCX or TXT document at a time and answers
questions using only that document. Scanned PDFs are read with OCR.

Configuration comes from intelliagent.yaml, a .env file and INTELLIAGENT_* variables.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default is ./intelliagent.yaml)")

	root.AddCommand(
		c.ingestCmd(),
		c.askCmd(),
		c.clearCmd(),
		c.statusCmd(),
		c.mcpCmd(),
	)
	return root
}

// withApp builds the pipeline for one command and always drains background writes
// before returning.
func (c *cli) withApp(cmd *cobra.Command, run func(a *app.App) error) error {
	settings, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logger_i.InitTo(os.Stderr, settings.Log.Level, settings.Log.JSON)

	a, err := c.build(cmd.Context(), settings)
	if err != nil {
		return fmt.Errorf("starting pipeline: %w", err)
	}
	defer a.Close()
	return run(a)
}
