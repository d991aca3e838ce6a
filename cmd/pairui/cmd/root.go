// Package cmd implements the pairui CLI commands.
//
// The root command owns the shared flags and the logger; subcommands load the
// configuration through loadConfig.
package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/matter2mqtt/pairui/cmd/pairui/internal/config"
	"github.com/matter2mqtt/pairui/pkg/errors"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

type rootOptions struct {
	debug      bool
	configPath string
	apiURL     string
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "pairui",
		Short:        "pairui - headless matter2mqtt pairing UI",
		Version:      Version + " (built " + BuildTime + ")",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose logging to stderr")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: ./pairui.yaml or ~/.config/pairui/pairui.yaml)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "pairing service base URL (overrides api.url)")

	cmd.AddCommand(
		renderCmd(opts),
		validateCmd(),
		devicesCmd(opts),
	)
	return cmd
}

// loadConfig resolves the configuration and installs the logger it asks for.
func loadConfig(opts *rootOptions, stderr io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if opts.apiURL != "" {
		cfg.API.URL = opts.apiURL
	}

	level := cfg.Level()
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	errors.SetHandler(&errors.LogHandler{Logger: logger, Verbose: opts.debug})
	return cfg, logger, nil
}
