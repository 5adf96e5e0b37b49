package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"livescan/internal/config"
	"livescan/internal/discovery"
	"livescan/internal/logging"
	"livescan/internal/tikapi"
)

// commandContext lazily loads configuration shared by subcommands.
type commandContext struct {
	logLevel string
	jsonOut  bool

	cfg *config.Config
}

func (c *commandContext) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg := config.Load()
	y, err := config.LoadYAMLConfig()
	if err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}
	cfg.ApplyYAML(y)
	c.cfg = cfg
	return cfg, nil
}

// logger writes diagnostics to stderr so stdout stays parseable.
func (c *commandContext) logger(stderr io.Writer) *slog.Logger {
	return logging.NewWithWriter(stderr, logging.Options{Level: c.logLevel})
}

func (c *commandContext) discoverer(cfg *config.Config, log *slog.Logger) (*discovery.Discoverer, error) {
	if !cfg.HasTikAPICredentials() {
		return nil, fmt.Errorf("TikAPI credentials not configured: set TIKAPI_KEY and TIKAPI_ACCOUNT_KEY")
	}
	client := tikapi.NewClient(cfg.TikAPIBaseURL, cfg.TikAPIKey, cfg.TikAPIAccountKey, cfg.TikAPITimeout)
	return discovery.New(client, discovery.Options{
		FanOutLimit: cfg.FanOutLimit,
		Concurrency: cfg.FanOutConcurrency,
	}, log), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "livescan",
		Short:         "Discover live streamers from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&ctx.jsonOut, "json", false, "Print results as JSON")

	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newScrapeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))

	return rootCmd
}
