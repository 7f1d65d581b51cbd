package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/productlens/labelcheck/internal/corpus"
	"github.com/productlens/labelcheck/internal/extract"
	"github.com/productlens/labelcheck/internal/judge"
	"github.com/productlens/labelcheck/internal/metrics"
	"github.com/productlens/labelcheck/internal/pipeline"
	"github.com/productlens/labelcheck/internal/rerank"
	"github.com/spf13/cobra"
)

var checkImageURLs []string

var checkCmd = &cobra.Command{
	Use:   "check <ocr-text-file>",
	Short: "Run the compliance pipeline on recognized label text",
	Long: `Run the full pipeline on the recognized text in the given file:
structured extraction, rule retrieval and reranking, compliance judgment,
and a single terminal write of the finalized record.

Text recognition itself is an external concern; this command consumes its
output. Pass --image-url for each source image, in order (the first is
treated as canonical).

Examples:
  labelcheck check temp/ocr_output.txt
  labelcheck check ocr.txt --image-url https://cdn.example.com/front.jpg --image-url https://cdn.example.com/back.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringSliceVar(&checkImageURLs, "image-url", nil, "source image URL (repeatable, order-significant)")
}

// fileTextExtractor satisfies the pipeline's recognition boundary by reading
// already-recognized text from a local file.
type fileTextExtractor struct {
	imageURLs []string
}

func (f *fileTextExtractor) ExtractText(_ context.Context, sourceRef string) (string, []string, error) {
	data, err := os.ReadFile(sourceRef)
	if err != nil {
		return "", nil, fmt.Errorf("read recognized text: %w", err)
	}
	return string(data), f.imageURLs, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	emb, model, err := getLLM()
	if err != nil {
		return err
	}

	idx := corpus.NewIndex(dbClient, emb, cfg.Collection, cfg.IndexDir)
	if err := idx.Ensure(ctx, cfg.CorpusPath); err != nil {
		return fmt.Errorf("rule index: %w", err)
	}

	stats := metrics.NewCollector()
	p := pipeline.New(
		&fileTextExtractor{imageURLs: checkImageURLs},
		extract.New(model),
		corpus.NewRetriever(dbClient, emb),
		rerank.NewStage(rerank.NewLLMScorer(model), rerank.DefaultTopK),
		judge.New(model),
		dbClient,
	).WithMetrics(stats)

	id, err := p.Run(ctx, args[0])
	if err != nil {
		return err
	}

	for stage, s := range stats.Snapshot().Stages {
		slog.Debug("stage timing", "stage", stage, "total_ms", s.TotalTimeMs)
	}

	stored, err := dbClient.GetProduct(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch finalized record: %w", err)
	}

	out, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	fmt.Printf("\nRecord persisted: %s (compliance: %s)\n", id, stored.Compliance.Status)
	return nil
}
