package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tendant/simple-publish/pkg/publishing/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func NewRootCommand() *cobra.Command {
	var envFile string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "publishctl",
		Short: "Operator tool for the publishing server",
		Long: `publishctl runs maintenance tasks against the database and media
storage configured for the publishing server.

Configuration is read from the same environment variables as the server
(DATABASE_URL, STORAGE_TYPE, S3_*, JWT_*), optionally preloaded from a .env file.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to preload (missing files are ignored)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(NewMigrateCommand())
	rootCmd.AddCommand(NewHashPasswordCommand())
	rootCmd.AddCommand(NewCreateAdminCommand())
	rootCmd.AddCommand(NewSeedCommand())
	rootCmd.AddCommand(NewStorageCheckCommand())

	return rootCmd
}

// loadConfig reads server configuration the way cmd/server does.
func loadConfig(cmd *cobra.Command) (*config.ServerConfig, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(config.WithDotEnv(envFile), config.WithEnv())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newRuntime builds the configured repositories and store. The caller closes it.
func newRuntime(ctx context.Context, cmd *cobra.Command) (*config.ServerConfig, *config.Runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	rt, err := cfg.BuildService(ctx, cmdLogger(cmd))
	if err != nil {
		return nil, nil, err
	}
	return cfg, rt, nil
}

// cmdLogger logs to stderr with --verbose and is silent otherwise.
func cmdLogger(cmd *cobra.Command) *slog.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
