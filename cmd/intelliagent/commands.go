package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/akolanti/intelliagent/internal/app"
	"github.com/akolanti/intelliagent/internal/mcpServer"
	"github.com/spf13/cobra"
)

func (c *cli) ingestCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Replace the knowledge base with a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				if name == "" {
					name = filepath.Base(args[0])
				}
				doc, err := a.Service.IndexDocument(cmd.Context(), args[0], name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Successfully processed and indexed %s.\n", doc.Name)
				fmt.Fprintf(cmd.OutOrStdout(), "pages: %d  chunks: %d  method: %s\n", doc.Pages, doc.Chunks, doc.Method)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (default is the file name)")
	return cmd
}

func (c *cli) askCmd() *cobra.Command {
	var showSources bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the indexed document",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				answer, err := a.Service.Answer(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, answer.Text)
				if showSources {
					for _, s := range answer.Sources {
						fmt.Fprintf(out, "  [page %d, score %.2f] %s\n", s.PageNum, s.Score, s.Doc.Name)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showSources, "sources", false, "print the retrieved chunks")
	return cmd
}

func (c *cli) clearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the indexed document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				if err := a.Service.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Knowledge base cleared.")
				return nil
			})
		},
	}
}

func (c *cli) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the indexed document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				out := cmd.OutOrStdout()
				doc, ok := a.Service.CurrentDocument(cmd.Context())
				if !ok {
					fmt.Fprintln(out, "No document indexed")
					return nil
				}
				fmt.Fprintf(out, "%s (%s, %s)\n", doc.Name, doc.ContentType, doc.Method)
				fmt.Fprintf(out, "pages: %d  characters: %d  chunks: %d\n", doc.Pages, doc.Characters, doc.Chunks)
				fmt.Fprintf(out, "indexed at: %s\n", doc.LastIngestTimestamp.Format("2006-01-02 15:04:05 MST"))
				return nil
			})
		},
	}
}

func (c *cli) mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio",
		Long: `Serve ask_document, clear_document and document_status over stdio for MCP
clients. The HTTP server exposes the same tools at /mcp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(a *app.App) error {
				return mcpServer.NewServer(a.Service).Run(cmd.Context())
			})
		},
	}
}
