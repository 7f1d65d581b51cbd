// Package extract converts raw recognized text into a canonical product
// record using a schema-constrained generative call with bounded retries.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/productlens/labelcheck/internal/jsonutil"
	"github.com/productlens/labelcheck/internal/llm"
	"github.com/productlens/labelcheck/internal/models"
)

// ErrExtractionFailed indicates no structurally valid record was produced
// within the retry budget. Fatal to the run; nothing is persisted.
var ErrExtractionFailed = errors.New("extraction failed: no valid structure within retry budget")

// Retry policy: bounded attempts with fixed short backoff. The bottleneck is
// an external availability blip, not congestion, so no exponential growth.
const (
	maxAttempts     = 5
	structuralDelay = 1 * time.Second
	callDelay       = 2 * time.Second
)

// Generator is the generation seam, satisfied by *llm.Model.
type Generator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Extractor turns recognized label text into a validated ProductRecord.
type Extractor struct {
	gen Generator

	// sleep is swapped out in tests to keep retries instant.
	sleep func(time.Duration)
}

// New creates an Extractor over the given generator.
func New(gen Generator) *Extractor {
	return &Extractor{gen: gen, sleep: time.Sleep}
}

// Extract sends up to maxAttempts schema-constrained generation requests and
// returns the coerced canonical record. Per attempt: generate, parse (with
// brace-span recovery), validate structure; invalid structure waits
// structuralDelay, a failed call waits callDelay. Fatal API errors abort
// immediately.
func (e *Extractor) Extract(ctx context.Context, rawText, imageURL string) (*models.ProductRecord, error) {
	prompt := buildPrompt(rawText, imageURL)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		slog.Debug("extraction attempt", "attempt", attempt, "max", maxAttempts)

		response, err := e.gen.GenerateWithSystem(ctx, systemPrompt, prompt)
		if err != nil {
			if errors.Is(err, llm.ErrFatalAPI) {
				return nil, fmt.Errorf("extraction: %w", err)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("extraction call failed", "attempt", attempt, "error", err)
			e.sleep(callDelay)
			continue
		}

		obj, err := jsonutil.DecodeObject(response)
		if err != nil {
			slog.Warn("extraction response not parseable", "attempt", attempt)
			e.sleep(structuralDelay)
			continue
		}

		if !validateStructure(obj) {
			slog.Warn("extraction response structurally invalid", "attempt", attempt)
			e.sleep(structuralDelay)
			continue
		}

		record := coerce(obj, imageURL)
		slog.Info("extraction succeeded", "attempt", attempt)
		return record, nil
	}

	return nil, fmt.Errorf("%w (%d attempts)", ErrExtractionFailed, maxAttempts)
}

// Required keys for structural validation. Value types are not deeply
// checked here; coercion handles shape.
var (
	requiredTopKeys = []string{
		"product_title", "image_url", "status", "created_at", "updated_at",
		"ocr_data", "compliance",
	}
	requiredOCRKeys = []string{
		"manufacturer", "manufacturer_address", "country_of_origin",
		"common_product_name", "net_quantity", "mrp", "unit_sale_price",
		"date_of_manufacture", "best_before", "raw_ocr_text",
	}
	requiredComplianceKeys = []string{
		"score", "status", "violations", "reasoning", "analysis_timestamp",
	}
)

// validateStructure reports whether obj carries every required top-level
// key, every ocr_data subkey, and every compliance subkey.
func validateStructure(obj map[string]any) bool {
	for _, k := range requiredTopKeys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}

	ocr, ok := obj["ocr_data"].(map[string]any)
	if !ok {
		return false
	}
	for _, k := range requiredOCRKeys {
		if _, ok := ocr[k]; !ok {
			return false
		}
	}

	compliance, ok := obj["compliance"].(map[string]any)
	if !ok {
		return false
	}
	for _, k := range requiredComplianceKeys {
		if _, ok := compliance[k]; !ok {
			return false
		}
	}

	return true
}

// coerce field-maps a validated generator object into the canonical record.
// Timestamps are stamped locally (generator timestamps are untrusted), empty
// strings normalize to nil, unknown extractor fields are dropped, and
// compliance is forced to its zero value: the judge fills it later.
func coerce(obj map[string]any, imageURL string) *models.ProductRecord {
	record := models.NewProductRecord([]string{imageURL})
	record.ProductTitle = pickString(obj, "product_title")

	ocr, _ := obj["ocr_data"].(map[string]any)

	record.OCRData = models.OCRData{
		Manufacturer: firstString(ocr,
			"manufacturer", "name_of_the_manufacturer", "packer"),
		ManufacturerAddress: firstString(ocr,
			"manufacturer_address", "address_of_manufacturer"),
		CountryOfOrigin:   pickString(ocr, "country_of_origin"),
		CommonProductName: pickString(ocr, "common_product_name"),
		NetQuantity:       pickString(ocr, "net_quantity"),
		MRP:               pickString(ocr, "mrp"),
		UnitSalePrice:     pickString(ocr, "unit_sale_price"),
		DateOfManufacture: pickString(ocr, "date_of_manufacture"),
		BestBefore:        pickString(ocr, "best_before"),
		RawOCRText:        pickString(ocr, "raw_ocr_text"),
	}

	return record
}

// pickString returns the value at key as *string, normalizing empty strings
// and non-string values to nil. Empty string and absence are equivalent
// placeholders downstream.
func pickString(m map[string]any, key string) *string {
	if m == nil {
		return nil
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// firstString returns the first non-empty string among the given keys.
func firstString(m map[string]any, keys ...string) *string {
	for _, k := range keys {
		if v := pickString(m, k); v != nil {
			return v
		}
	}
	return nil
}
