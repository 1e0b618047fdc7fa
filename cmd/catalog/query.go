package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var (
		page     int
		limit    int
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of articles as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = opts.cfg.Catalog.DefaultLimit
			}
			if page < 1 || limit < 1 {
				return fmt.Errorf("--page and --limit must be >= 1")
			}

			cat, cleanup, err := newCatalog(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if !cmd.Flags().Changed("category") {
				p, err := cat.Paginated(cmd.Context(), page, limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			}
			p, err := cat.ByCategory(cmd.Context(), category, page, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&limit, "limit", 0, "articles per page (default catalog.default_limit)")
	cmd.Flags().StringVar(&category, "category", "", "only articles of exactly this category (default every category)")
	return cmd
}

func newCategoriesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the distinct article categories as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, cleanup, err := newCatalog(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			categories, err := cat.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), categories)
		},
	}
}

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one article as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, cleanup, err := newCatalog(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			a, found, err := cat.ByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("article %q not found", args[0])
			}
			return printJSON(cmd.OutOrStdout(), a)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
