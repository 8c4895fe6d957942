package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/lattice/internal/cli"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice drives branching explorations one answer at a time",
	Long: `Lattice serves explorations (graphs of states with interactive widgets)
over HTTP, websocket and MCP, or plays them in the terminal.

Settings come from an optional YAML file (--config) and LATTICE_* environment
variables; flags override both.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the explorations")
	rootCmd.PersistentFlags().String("driver", "", "Exploration store: loam, bolt, redis or memory")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + "\nEnvironment:\n" + config.Usage() + "\n")
}

// loadSettings resolves configuration and the logger before any command runs.
func loadSettings(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		c.Store.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("driver") {
		c.Store.Driver, _ = flags.GetString("driver")
	}
	if flags.Changed("log-level") {
		c.LogLevel, _ = flags.GetString("log-level")
	}
	if err := c.Validate(); err != nil {
		return err
	}

	opts, err := cli.LoggerOptions(c.LogLevel, c.LogFormat)
	if err != nil {
		return err
	}
	cfg, logger = c, logging.New(opts).With("env", c.Env)
	return nil
}

func openBackend() (*cli.Backend, error) {
	b, err := cli.OpenBackend(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}
	return b, nil
}
