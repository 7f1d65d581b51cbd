// Package pipeline sequences Extract, Retrieve/Rerank, Judge, and Persist
// into one run with a single terminal write.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/productlens/labelcheck/internal/metrics"
	"github.com/productlens/labelcheck/internal/models"
)

// TextExtractor is the external text-recognition boundary: given a source
// reference it returns the recognized text blob and the ordered image
// references it came from.
type TextExtractor interface {
	ExtractText(ctx context.Context, sourceRef string) (text string, imageURLs []string, err error)
}

// RecordExtractor turns recognized text into a canonical record.
type RecordExtractor interface {
	Extract(ctx context.Context, rawText, imageURL string) (*models.ProductRecord, error)
}

// Retriever is the first retrieval stage over the rule index.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.RuleChunk, error)
}

// Reranker narrows the candidate pool to the judgment context.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []models.RuleChunk) ([]models.RuleChunk, error)
}

// Judger produces the compliance verdict.
type Judger interface {
	Judge(ctx context.Context, record *models.ProductRecord, chunks []models.RuleChunk) models.Compliance
}

// Store is the persistence boundary. The pipeline performs at most one
// successful insert per run and never updates.
type Store interface {
	InsertProduct(ctx context.Context, record *models.ProductRecord) (string, error)
}

// Pipeline drives one record end to end. Each run owns its record
// exclusively; independent runs may execute concurrently since no two runs
// target the same record id.
type Pipeline struct {
	text      TextExtractor
	extractor RecordExtractor
	retriever Retriever
	reranker  Reranker
	judge     Judger
	store     Store
	stats     *metrics.Collector
}

// New wires the pipeline from its injected collaborators.
func New(text TextExtractor, extractor RecordExtractor, retriever Retriever, reranker Reranker, judge Judger, store Store) *Pipeline {
	return &Pipeline{
		text:      text,
		extractor: extractor,
		retriever: retriever,
		reranker:  reranker,
		judge:     judge,
		store:     store,
	}
}

// WithMetrics attaches a stage-timing collector. A nil collector is valid
// and records nothing.
func (p *Pipeline) WithMetrics(c *metrics.Collector) *Pipeline {
	p.stats = c
	return p
}

// Run executes the strictly linear state machine
// Extracted -> ContextRetrieved -> Judged -> Persisted and returns the id of
// the single record written. Failure before the persist stage leaves
// storage untouched: "nothing written" is the only observable side effect
// of early failure.
func (p *Pipeline) Run(ctx context.Context, sourceRef string) (string, error) {
	runID := uuid.NewString()
	log := slog.With("run_id", runID, "source", sourceRef)
	start := time.Now()
	log.Info("pipeline run started")

	// Recognize: external service boundary.
	stageStart := time.Now()
	rawText, imageURLs, err := p.text.ExtractText(ctx, sourceRef)
	if err != nil {
		return "", stageErr(StageRecognize, fmt.Errorf("recognize text: %w", err))
	}
	p.stats.RecordTiming(metrics.OpRecognize, time.Since(stageStart))

	// Extracted.
	stageStart = time.Now()
	record, err := p.extractor.Extract(ctx, rawText, firstOf(imageURLs))
	if err != nil {
		return "", stageErr(StageExtract, err)
	}
	p.stats.RecordTiming(metrics.OpExtract, time.Since(stageStart))
	if len(imageURLs) > 0 {
		record.ImageURLs = imageURLs
	}
	record.Status = models.StatusExtracted
	record.Touch()
	log.Info("record extracted", "title", deref(record.ProductTitle))

	// ContextRetrieved.
	query, err := record.ComplianceQuery()
	if err != nil {
		return "", stageErr(StageRetrieve, err)
	}
	stageStart = time.Now()
	candidates, err := p.retriever.Retrieve(ctx, query)
	if err != nil {
		return "", stageErr(StageRetrieve, fmt.Errorf("%w: %v", ErrIndexUnavailable, err))
	}
	p.stats.RecordTiming(metrics.OpRetrieve, time.Since(stageStart))
	if len(candidates) == 0 {
		// Terminal signal: the reranker and judge are never invoked on
		// empty context.
		log.Warn("no rule context retrieved, aborting run")
		return "", stageErr(StageRetrieve, ErrNoRuleContext)
	}
	log.Info("rule context retrieved", "candidates", len(candidates))

	stageStart = time.Now()
	ruleContext, err := p.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return "", stageErr(StageRerank, err)
	}
	p.stats.RecordTiming(metrics.OpRerank, time.Since(stageStart))
	log.Info("rule context reranked", "kept", len(ruleContext))

	// Judged.
	stageStart = time.Now()
	record.Compliance = p.judge.Judge(ctx, record, ruleContext)
	p.stats.RecordTiming(metrics.OpJudge, time.Since(stageStart))
	record.Status = models.StatusComplianceChecked
	record.Touch()
	log.Info("compliance judged",
		"status", record.Compliance.Status,
		"violations", len(record.Compliance.Violations))

	// Persisted: the single point where external storage is mutated.
	record.Status = models.StatusPersisted
	record.Touch()
	stageStart = time.Now()
	id, err := p.store.InsertProduct(ctx, record)
	if err != nil {
		return "", stageErr(StagePersist, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err))
	}
	p.stats.RecordTiming(metrics.OpPersist, time.Since(stageStart))

	log.Info("pipeline run complete", "record_id", id, "duration_ms", time.Since(start).Milliseconds())
	return id, nil
}

func firstOf(urls []string) string {
	if len(urls) == 0 {
		return ""
	}
	return urls[0]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
