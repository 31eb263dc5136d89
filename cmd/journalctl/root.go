package main

import (
	"fmt"

	"trade-journal-go/internal/client"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/logger"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configDir string
	server    string
	logLevel  string
}

// apiFactory builds the API client once flags are parsed.
type apiFactory func(opts *rootOptions) (client.TradeAPI, error)

func defaultAPIFactory(opts *rootOptions) (client.TradeAPI, error) {
	cfg, err := config.LoadConfig(opts.configDir)
	if err != nil {
		return nil, err
	}
	if opts.server != "" {
		cfg.Client.BaseURL = opts.server
	}

	log, err := logger.NewLogger(config.Logger{Level: opts.logLevel, Format: "console"})
	if err != nil {
		return nil, err
	}
	return client.NewClient(cfg.Client, log.Named("client")), nil
}

func newRootCmd(factory apiFactory) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "journalctl",
		Short: "File and review trades in the trade journal",
		Long: `journalctl talks to a running journald over HTTP.

Subcommands:
  submit  - File one trade; the return percentage is computed by the server
  list    - List trades, most recent first
  health  - Check that the server and its database are reachable

Examples:
  journalctl submit --investor Arjun --date 2025-03-14 --time 09:15 \
      --investment 10000 --side Profit --profit-loss 500 --brokerage 50 --category "Price Action"
  journalctl list --24h`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config", "./configs", "directory holding config.yml")
	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", "", "journal API base URL (overrides client.base_url)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "client log level")

	rootCmd.AddCommand(newSubmitCmd(opts, factory))
	rootCmd.AddCommand(newListCmd(opts, factory))
	rootCmd.AddCommand(newHealthCmd(opts, factory))

	return rootCmd
}

func newHealthCmd(opts *rootOptions, factory apiFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the journal API is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := factory(opts)
			if err != nil {
				return err
			}
			if err := api.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
