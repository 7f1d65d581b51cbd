package pipeline

import (
	"errors"
	"fmt"

	"github.com/productlens/labelcheck/internal/extract"
)

// Stage identifies where in the run a terminal failure occurred.
type Stage string

const (
	StageRecognize Stage = "recognize"
	StageExtract   Stage = "extract"
	StageRetrieve  Stage = "retrieve"
	StageRerank    Stage = "rerank"
	StagePersist   Stage = "persist"
)

// Terminal pipeline errors. A run produces either a persisted record id or
// exactly one of these, wrapped in a StageError naming the failing stage.
var (
	// ErrExtractionFailed: the extractor exhausted its retry budget.
	ErrExtractionFailed = extract.ErrExtractionFailed

	// ErrNoRuleContext: first-stage retrieval returned zero candidates. No
	// matching rule context exists, so judgment would be meaningless.
	ErrNoRuleContext = errors.New("no rule context retrieved")

	// ErrIndexUnavailable: the rule index could not be queried.
	ErrIndexUnavailable = errors.New("rule index unavailable")

	// ErrStorageWriteFailed: the single terminal write did not succeed.
	ErrStorageWriteFailed = errors.New("storage write failed")
)

// StageError wraps a terminal error with the stage that produced it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pipeline stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// stageErr builds a StageError.
func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
