package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	debug bool
	cfg   *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ferrisdoc",
	Short: "Render rustdoc JSON into a static HTML documentation site",
	Long: `ferrisdoc turns the JSON emitted by "cargo rustdoc -- -Zunstable-options --output-format json"
(or downloaded from docs.rs) into a browsable HTML site.

Settings come from config.toml in the working directory or
$XDG_CONFIG_HOME/ferrisdoc, FERRISDOC_* environment variables, and flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
	rootCmd.PersistentFlags().Int("jobs", 0, "pages rendered in parallel (default: number of CPUs)")
	_ = viper.BindPFlag("jobs", rootCmd.PersistentFlags().Lookup("jobs"))
}

// setup installs the logger and loads configuration for every command.
func setup(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := bindCommandFlags(cmd); err != nil {
		return err
	}
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg = loaded
	slog.Debug("config loaded", "file", viper.ConfigFileUsed(), "output_dir", cfg.OutputDir, "workers", cfg.Workers())
	return nil
}
