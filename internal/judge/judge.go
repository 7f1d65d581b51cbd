// Package judge combines deterministic regex pre-checks with an LLM rule
// judgment over retrieved context, merged into one compliance verdict.
package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/productlens/labelcheck/internal/jsonutil"
	"github.com/productlens/labelcheck/internal/llm"
	"github.com/productlens/labelcheck/internal/models"
)

// Bounded retry for the judgment call. A failure past the budget degrades
// the verdict instead of failing the run.
const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second
)

// Generator is the generation seam, satisfied by *llm.Model.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Judge produces compliance verdicts for product records.
type Judge struct {
	gen Generator

	// sleep is swapped out in tests to keep retries instant.
	sleep func(time.Duration)
}

// New creates a Judge over the given generator.
func New(gen Generator) *Judge {
	return &Judge{gen: gen, sleep: time.Sleep}
}

// Judge checks the record against the reranked rule context and returns the
// merged verdict. It never fails the run: an unusable generative response
// yields a degraded error-status verdict carrying the deterministic
// violations only, preserving partial value.
func (j *Judge) Judge(ctx context.Context, record *models.ProductRecord, chunks []models.RuleChunk) models.Compliance {
	preViolations := PreCheck(record)

	productJSON, err := record.ComplianceQuery()
	if err != nil {
		slog.Error("failed to serialize record for judgment", "error", err)
		return degradedVerdict(preViolations, "The product record could not be serialized for rule validation.")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	prompt := buildPrompt(strings.Join(texts, "\n\n"), productJSON)

	response, err := j.generateWithRetry(ctx, prompt)
	if err != nil {
		slog.Warn("generative judgment unavailable, degrading verdict", "error", err)
		return degradedVerdict(preViolations, "The rule validation service did not return a usable response.")
	}

	obj, err := jsonutil.DecodeObject(response)
	if err != nil {
		slog.Warn("generative judgment response malformed")
		return degradedVerdict(preViolations, "The response from the rule validator was malformed and could not be converted into structured JSON.")
	}

	return merge(obj, preViolations)
}

// generateWithRetry issues the judgment call with a bounded fixed-backoff
// retry. Fatal API errors abort immediately.
func (j *Judge) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		response, err := j.gen.GenerateWithSystem(ctx, judgeSystemPrompt, prompt)
		if err == nil {
			return response, nil
		}
		lastErr = err
		if errors.Is(err, llm.ErrFatalAPI) || ctx.Err() != nil {
			return "", err
		}
		slog.Warn("judgment call failed", "attempt", attempt, "error", err)
		if attempt < maxAttempts {
			j.sleep(retryDelay)
		}
	}
	return "", fmt.Errorf("judgment call: %w", lastErr)
}

// merge combines the parsed generative verdict with the deterministic
// pre-check findings. Generative violations come first, pre-check violations
// are appended, and any pre-check finding forces non-compliant regardless of
// what the generative stage said: deterministic findings always dominate.
func merge(obj map[string]any, preViolations []models.Violation) models.Compliance {
	verdict := models.Compliance{
		Status:     stringField(obj, "compliance_status"),
		Violations: parseViolations(obj["violations"]),
		Reasoning:  stringField(obj, "reasoning"),
	}

	if score := scoreField(obj, "compliance_score"); score != "" {
		verdict.Score = &score
	}

	verdict.Violations = append(verdict.Violations, preViolations...)

	if len(preViolations) > 0 {
		verdict.Status = models.ComplianceNonCompliant
	}

	switch verdict.Status {
	case models.ComplianceCompliant:
		// Status and violation list must agree.
		if len(verdict.Violations) > 0 {
			verdict.Status = models.ComplianceNonCompliant
		}
	case models.ComplianceNonCompliant, models.ComplianceError:
	default:
		verdict.Status = models.ComplianceError
	}

	if verdict.Reasoning == "" {
		if verdict.Status == models.ComplianceCompliant {
			verdict.Reasoning = "The product complies with all required rules."
		} else {
			verdict.Reasoning = "The product has one or more violations that make it non-compliant."
		}
	}

	now := time.Now()
	verdict.AnalysisTimestamp = &now
	return verdict
}

// degradedVerdict builds the error-status verdict used when the generative
// stage produced nothing usable. Its content must not be treated as an
// authoritative compliance result.
func degradedVerdict(preViolations []models.Violation, reasoning string) models.Compliance {
	if preViolations == nil {
		preViolations = []models.Violation{}
	}
	now := time.Now()
	return models.Compliance{
		Status:            models.ComplianceError,
		Violations:        preViolations,
		Reasoning:         reasoning,
		AnalysisTimestamp: &now,
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// scoreField renders the score as a string whether the model returned a
// string or a number.
func scoreField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}

// parseViolations converts the model's violations array, dropping entries
// that are not objects. Order is preserved.
func parseViolations(raw any) []models.Violation {
	items, ok := raw.([]any)
	if !ok {
		return []models.Violation{}
	}

	violations := make([]models.Violation, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		violations = append(violations, models.Violation{
			Field:         stringField(m, "field"),
			Issue:         stringField(m, "issue"),
			RuleReference: stringField(m, "rule_reference"),
			Reason:        stringField(m, "reason"),
		})
	}
	return violations
}
