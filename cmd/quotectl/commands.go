package main

import (
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quote-sync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quote-sync/internal/adapters/http/handlers"
)

func (a *app) quotesCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:     "quotes",
		Short:   "List quotes, optionally filtered by category",
		GroupID: "collection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodGet, withCategory("/quotes", category), nil)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category filter (default: all)")

	cmd.AddCommand(a.addCmd(), a.randomCmd(), a.lastCmd())

	return cmd
}

func (a *app) addCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "add TEXT",
		Short: "Add a quote to the local collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), http.MethodPost, "/quotes", dto.CreateQuoteRequest{
				Text:     args[0],
				Category: category,
			})
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "quote category")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func (a *app) randomCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "random",
		Short: "Show a random quote and remember it as last viewed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodGet, withCategory("/quotes/random", category), nil)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "category filter (default: all)")

	return cmd
}

func (a *app) lastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "last",
		Short: "Show the last viewed quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodGet, "/quotes/last", nil)
		},
	}
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Short:   "List the distinct categories",
		GroupID: "collection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodGet, "/categories", nil)
		},
	}
}

func (a *app) categoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "category [NAME]",
		Short:   "Show or set the remembered category filter",
		GroupID: "collection",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.run(cmd.Context(), http.MethodGet, "/preferences/category", nil)
			}

			return a.run(cmd.Context(), http.MethodPut, "/preferences/category",
				dto.CategoryPreference{Category: args[0]})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:     "export",
		Short:   "Download the collection as a JSON file",
		GroupID: "collection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, raw, err := a.call(cmd.Context(), http.MethodGet, "/export", nil)
			if err != nil {
				return err
			}

			if output == "-" {
				_, err = a.out.Write(raw)
				return err
			}

			path := output
			if path == "" {
				path = exportFilename(resp.Header.Get("Content-Disposition"))
			}

			if err := os.WriteFile(path, raw, 0o600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}

			_, err = fmt.Fprintf(a.out, "exported %s quotes to %s\n",
				resp.Header.Get(handlers.HeaderExportCount), path)

			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, "-" for stdout (default: server-suggested name)`)

	return cmd
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "import FILE",
		Short:   "Merge quotes from a JSON file into the collection",
		GroupID: "collection",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading import file: %w", err)
			}

			_, raw, err := a.call(cmd.Context(), http.MethodPost, "/import", doc)
			if err != nil {
				return err
			}

			return a.printJSON(raw)
		},
	}
}

func (a *app) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   "Run one sync pass now and print its report",
		GroupID: "sync",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodPost, "/sync", nil)
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show sync state, last sync time, and pending conflicts",
		GroupID: "sync",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodGet, "/sync/status", nil)
		},
	}
}

func (a *app) autoCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "auto on|off",
		Short:     "Enable or disable the periodic sync timer",
		GroupID:   "sync",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled := args[0] == "on"
			return a.run(cmd.Context(), http.MethodPut, "/sync/auto", dto.AutoSyncRequest{Enabled: &enabled})
		},
	}
}

func (a *app) conflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conflicts",
		Short:   "List conflicts from the last sync pass",
		GroupID: "sync",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd.Context(), http.MethodGet, "/conflicts", nil)
		},
	}

	resolve := func(use, short, action string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.run(cmd.Context(), http.MethodPost,
					"/conflicts/"+url.PathEscape(args[0])+"/"+action, nil)
			},
		}
	}

	cmd.AddCommand(
		resolve("keep-local", "Resolve a conflict with the local record", "keep-local"),
		resolve("keep-server", "Resolve a conflict with the server record", "keep-server"),
		&cobra.Command{
			Use:   "dismiss",
			Short: "Drop every pending conflict without changing the collection",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.run(cmd.Context(), http.MethodDelete, "/conflicts", nil)
			},
		},
	)

	return cmd
}

func withCategory(path, category string) string {
	if category == "" {
		return path
	}

	return path + "?" + url.Values{"category": {category}}.Encode()
}

// exportFilename takes the name from a Content-Disposition header.
func exportFilename(disposition string) string {
	const fallback = "quotes.json"

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil || params["filename"] == "" {
		return fallback
	}

	return filepath.Base(params["filename"])
}
