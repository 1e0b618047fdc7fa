package main

import (
	"github.com/Sternrassler/article-catalog/pkg/config"
	"github.com/Sternrassler/article-catalog/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// options are the global flags shared by all subcommands.
type options struct {
	cfgFile  string
	logLevel string
	pretty   bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "catalog",
		Short: "In-memory article catalog",
		Long: `catalog loads a fixed list of article documents once, keeps them in memory
sorted newest first, and serves lookups, pagination and category filtering.

Example usage:
  catalog serve                      # HTTP API on server.addr
  catalog list --page 2 --limit 6    # Print one page as JSON
  catalog categories                 # Print the distinct categories
  catalog show news-1                # Print one article`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ./catalog.yaml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
	flags.BoolVar(&opts.pretty, "pretty", false, "human-readable console logs (overrides log.pretty)")

	root.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newCategoriesCmd(opts),
		newShowCmd(opts),
	)
	return root
}

// setup loads configuration and installs the global logger.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if cmd.Flags().Changed("pretty") {
		cfg.Log.Pretty = o.pretty
	}

	logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})

	log.Debug().
		Str("source", cfg.Source.Kind).
		Int("documents", len(cfg.Catalog.IDs)).
		Msg("Configuration loaded")

	o.cfg = cfg
	return nil
}
