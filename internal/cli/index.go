package cli

import (
	"fmt"

	"github.com/productlens/labelcheck/internal/corpus"
	"github.com/spf13/cobra"
)

var indexRebuild bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or verify the rule-corpus vector index",
	Long: `Build the persisted rule index from the configured corpus document,
or verify an existing one. The index is built once per corpus and reused by
every check; --rebuild replaces it wholesale.

Examples:
  labelcheck index
  labelcheck index --rebuild
  labelcheck index -c custom-config.yaml`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "replace the existing index")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	emb, _, err := getLLM()
	if err != nil {
		return err
	}

	idx := corpus.NewIndex(dbClient, emb, cfg.Collection, cfg.IndexDir)

	if indexRebuild {
		if err := idx.Build(ctx, cfg.CorpusPath); err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}
	} else {
		if err := idx.Ensure(ctx, cfg.CorpusPath); err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}

	count, err := dbClient.CountRuleChunks(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Rule index ready: %d chunks from %s\n", count, cfg.CorpusPath)
	return nil
}
