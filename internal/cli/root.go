// Package cli provides the command-line interface for labelcheck.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/productlens/labelcheck/internal/config"
	"github.com/productlens/labelcheck/internal/db"
	"github.com/productlens/labelcheck/internal/llm"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configFile string

	// Global config and db client
	cfg      config.Config
	dbClient *db.Client

	logCleanup func() error

	// Lazy-initialized LLM components
	embedder *llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "labelcheck",
	Short: "RAG compliance checker for packaged-product labels",
	Long: `Labelcheck verifies OCR-extracted product label data against the
Legal Metrology (Packaged Commodities) Rules corpus.

It structures raw recognized text into a canonical product record, retrieves
the most relevant rule passages from a persisted vector index, and merges
deterministic pre-checks with an LLM rule judgment into one verdict.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.LoadWithFile(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		logCleanup = cleanup

		ctx := context.Background()
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		if err := dbClient.InitSchema(ctx, cfg.EmbedDimension); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// getLLM lazily initializes the embedder and generation model. Commands that
// only read persisted records skip this entirely.
func getLLM() (*llm.Embedder, *llm.Model, error) {
	if embedder == nil {
		var err error
		embedder, err = llm.NewEmbedder(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init embedder: %w", err)
		}
		model, err = llm.NewModel(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init model: %w", err)
		}
	}
	return embedder, model, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "path to YAML config file")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(showCmd)
}
