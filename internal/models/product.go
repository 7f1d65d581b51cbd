// Package models defines data structures for the labelcheck compliance pipeline.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Record lifecycle statuses, ordered. A record starts with StatusNone and
// only ever moves forward; the terminal persistence write sets StatusPersisted.
const (
	StatusNone              = ""
	StatusExtracted         = "extracted"
	StatusComplianceChecked = "compliance_checked"
	StatusPersisted         = "persisted"
)

// Compliance verdict statuses.
const (
	ComplianceCompliant    = "compliant"
	ComplianceNonCompliant = "non-compliant"
	ComplianceError        = "error"
)

// ProductRecord is the canonical unit flowing through the pipeline.
// Field names match the persisted document shape.
type ProductRecord struct {
	ProductTitle *string    `json:"product_title"`
	ImageURLs    []string   `json:"image_urls"` // order-significant; first is canonical
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	OCRData      OCRData    `json:"ocr_data"`
	Compliance   Compliance `json:"compliance"`
}

// OCRData holds the fixed ten label fields recovered from recognized text.
// Absence is represented as nil, never by omitting the key.
type OCRData struct {
	Manufacturer        *string `json:"manufacturer"`
	ManufacturerAddress *string `json:"manufacturer_address"`
	CountryOfOrigin     *string `json:"country_of_origin"`
	CommonProductName   *string `json:"common_product_name"`
	NetQuantity         *string `json:"net_quantity"`
	MRP                 *string `json:"mrp"`
	UnitSalePrice       *string `json:"unit_sale_price"`
	DateOfManufacture   *string `json:"date_of_manufacture"`
	BestBefore          *string `json:"best_before"`
	RawOCRText          *string `json:"raw_ocr_text"`
}

// Compliance is the combined verdict of deterministic and generative checks.
type Compliance struct {
	Score             *string     `json:"score"`
	Status            string      `json:"status"`
	Violations        []Violation `json:"violations"`
	Reasoning         string      `json:"reasoning"`
	AnalysisTimestamp *time.Time  `json:"analysis_timestamp"`
}

// Violation describes a single rule breach. Equality is structural;
// duplicates are allowed and insertion order is preserved on merge.
type Violation struct {
	Field         string `json:"field"`
	Issue         string `json:"issue"`
	RuleReference string `json:"rule_reference"`
	Reason        string `json:"reason"`
}

// NewProductRecord creates an empty pre-extraction record. All label fields
// are nil; the extractor fills ocr_data, the judge fills compliance.
func NewProductRecord(imageURLs []string) *ProductRecord {
	now := time.Now()
	return &ProductRecord{
		ImageURLs:  imageURLs,
		Status:     StatusNone,
		CreatedAt:  now,
		UpdatedAt:  now,
		Compliance: Compliance{Violations: []Violation{}},
	}
}

// Touch advances updated_at, keeping it monotonic non-decreasing.
func (r *ProductRecord) Touch() {
	now := time.Now()
	if now.After(r.UpdatedAt) {
		r.UpdatedAt = now
	}
}

// CanonicalImageURL returns the first image reference, or "" if none.
func (r *ProductRecord) CanonicalImageURL() string {
	if len(r.ImageURLs) == 0 {
		return ""
	}
	return r.ImageURLs[0]
}

// complianceView is the subset of label fields checked against the rule
// corpus. raw_ocr_text is excluded: it is evidence, not a regulated field.
type complianceView struct {
	Manufacturer        *string `json:"manufacturer"`
	ManufacturerAddress *string `json:"address_manufacturer"`
	CountryOfOrigin     *string `json:"country_of_origin"`
	CommonProductName   *string `json:"common_product_name"`
	NetQuantity         *string `json:"net_quantity"`
	MRP                 *string `json:"mrp"`
	UnitSalePrice       *string `json:"unit_sale_price"`
	DateOfManufacture   *string `json:"date_of_manufacture"`
	BestBefore          *string `json:"best_before"`
}

// ComplianceQuery serializes the record's label fields with stable key order
// for use as both the retrieval query and the judge's product data. Stable
// ordering keeps embeddings deterministic for identical records.
func (r *ProductRecord) ComplianceQuery() (string, error) {
	view := complianceView{
		Manufacturer:        r.OCRData.Manufacturer,
		ManufacturerAddress: r.OCRData.ManufacturerAddress,
		CountryOfOrigin:     r.OCRData.CountryOfOrigin,
		CommonProductName:   r.OCRData.CommonProductName,
		NetQuantity:         r.OCRData.NetQuantity,
		MRP:                 r.OCRData.MRP,
		UnitSalePrice:       r.OCRData.UnitSalePrice,
		DateOfManufacture:   r.OCRData.DateOfManufacture,
		BestBefore:          r.OCRData.BestBefore,
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize record: %w", err)
	}
	return string(data), nil
}
