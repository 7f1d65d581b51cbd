package rerank

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Generator is the generation seam, satisfied by *llm.Model.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

const scorerSystemPrompt = "You are a relevance grader for regulatory rule passages. " +
	"Respond with a single integer from 0 to 100 and nothing else."

// LLMScorer implements Scorer with a pairwise relevance-grading generation
// call per candidate.
type LLMScorer struct {
	gen Generator
}

// NewLLMScorer creates a scorer over the given generator.
func NewLLMScorer(gen Generator) *LLMScorer {
	return &LLMScorer{gen: gen}
}

// Score asks the model to grade how relevant the passage is to the product
// data in query, returning a value in [0, 100].
func (s *LLMScorer) Score(ctx context.Context, query, passage string) (float64, error) {
	prompt := fmt.Sprintf(`How relevant is this rule passage for checking the following product data against packaging regulations?

PRODUCT DATA:
%s

RULE PASSAGE:
%s

Relevance (0-100):`, query, passage)

	response, err := s.gen.GenerateWithSystem(ctx, scorerSystemPrompt, prompt)
	if err != nil {
		return 0, fmt.Errorf("score passage: %w", err)
	}

	score, err := parseScore(response)
	if err != nil {
		return 0, err
	}
	return score, nil
}

var numberPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// parseScore leniently extracts the first number from the response and
// clamps it to [0, 100].
func parseScore(response string) (float64, error) {
	match := numberPattern.FindString(strings.TrimSpace(response))
	if match == "" {
		return 0, fmt.Errorf("no numeric score in response %q", response)
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parse score %q: %w", match, err)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}
