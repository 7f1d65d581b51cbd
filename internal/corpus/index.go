package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/productlens/labelcheck/internal/db"
	"github.com/productlens/labelcheck/internal/llm"
	"github.com/productlens/labelcheck/internal/models"
)

// Sentinel errors for index maintenance.
var (
	// ErrCorpusNotFound indicates the source rule document is missing.
	ErrCorpusNotFound = errors.New("rule corpus document not found")

	// ErrIndexCorrupt indicates the persisted index is unreadable or empty.
	ErrIndexCorrupt = errors.New("rule index corrupt or empty")
)

// embedBatchSize bounds one embedding request during index construction.
const embedBatchSize = 16

// Index manages the persisted rule-corpus vector collection. It is built
// once per corpus and queried read-only by every pipeline run; a rebuild
// replaces the collection wholesale.
type Index struct {
	db       *db.Client
	embedder *llm.Embedder
	source   string
	lockDir  string
	chunkCfg ChunkConfig
}

// NewIndex creates an index handle over the given database and embedder.
// lockDir holds the build lock file guarding concurrent first runs.
func NewIndex(dbClient *db.Client, embedder *llm.Embedder, source, lockDir string) *Index {
	return &Index{
		db:       dbClient,
		embedder: embedder,
		source:   source,
		lockDir:  lockDir,
		chunkCfg: DefaultChunkConfig(),
	}
}

// Build chunks the corpus document, embeds every chunk, and replaces the
// persisted collection. Fails with ErrCorpusNotFound when the source
// document is missing.
func (idx *Index) Build(ctx context.Context, corpusPath string) error {
	data, err := os.ReadFile(corpusPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCorpusNotFound, corpusPath)
		}
		return fmt.Errorf("read corpus: %w", err)
	}

	chunks := SplitText(string(data), idx.chunkCfg)
	if len(chunks) == 0 {
		return fmt.Errorf("%w: corpus produced no chunks", ErrCorpusNotFound)
	}

	slog.Info("building rule index", "corpus", corpusPath, "chunks", len(chunks))
	start := time.Now()

	inputs := make([]models.RuleChunkInput, 0, len(chunks))
	for i := 0; i < len(chunks); i += embedBatchSize {
		end := i + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		embeddings, err := idx.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("embed corpus batch %d: %w", i/embedBatchSize, err)
		}
		for j, text := range batch {
			inputs = append(inputs, models.RuleChunkInput{
				Text:      text,
				Embedding: embeddings[j],
				Position:  i + j,
				Source:    idx.source,
			})
		}
	}

	// Replace wholesale: the old collection is gone before the new one lands,
	// which is why Build only runs under the creation lock.
	if err := idx.db.DeleteRuleChunks(ctx); err != nil {
		return err
	}
	if err := idx.db.InsertRuleChunks(ctx, inputs); err != nil {
		return err
	}

	slog.Info("rule index built", "chunks", len(inputs), "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// Load verifies the persisted collection is readable and non-empty.
// Fails with ErrIndexCorrupt otherwise.
func (idx *Index) Load(ctx context.Context) error {
	count, err := idx.db.CountRuleChunks(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	if count == 0 {
		return ErrIndexCorrupt
	}
	slog.Debug("rule index loaded", "chunks", count)
	return nil
}

// Ensure loads the index, building it first when absent. Construction is
// guarded by an exclusive lock file so two runs racing on a missing index
// cannot interleave a torn build with a read; the loser of the race waits
// for the winner's build to finish and then loads.
func (idx *Index) Ensure(ctx context.Context, corpusPath string) error {
	if err := idx.Load(ctx); err == nil {
		return nil
	}

	if err := os.MkdirAll(idx.lockDir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	lockPath := filepath.Join(idx.lockDir, "index.lock")

	lock, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		defer func() {
			_ = lock.Close()
			_ = os.Remove(lockPath)
		}()
		// Re-check under the lock: another builder may have finished between
		// our failed Load and the lock acquisition.
		if loadErr := idx.Load(ctx); loadErr == nil {
			return nil
		}
		return idx.Build(ctx, corpusPath)
	}
	if !os.IsExist(err) {
		return fmt.Errorf("acquire index lock: %w", err)
	}

	// Another run holds the build lock. Wait for it, then load.
	slog.Info("waiting for concurrent index build", "lock", lockPath)
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	deadline := time.Now().Add(5 * time.Minute)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, statErr := os.Stat(lockPath); os.IsNotExist(statErr) {
				return idx.Load(ctx)
			}
			if time.Now().After(deadline) {
				return fmt.Errorf("%w: timed out waiting for index build", ErrIndexCorrupt)
			}
		}
	}
}
