package judge

import (
	"regexp"
	"strings"

	"github.com/productlens/labelcheck/internal/models"
)

// mrpUnitPattern matches measurement-unit tokens that must never appear in a
// monetary MRP value.
var mrpUnitPattern = regexp.MustCompile(`\b(kg|g|ml|l|litre|meter|cm)\b`)

// PreCheck evaluates deterministic pattern rules directly on the record's
// label fields, independent of retrieved context. Pre-check findings are
// always appended to the verdict and are never suppressed by the generative
// stage.
//
// A nil mrp never fires the unit-token check; absence is handled later as a
// generic missing-field violation by the generative stage.
func PreCheck(record *models.ProductRecord) []models.Violation {
	var violations []models.Violation

	if mrp := record.OCRData.MRP; mrp != nil {
		if mrpUnitPattern.MatchString(strings.ToLower(*mrp)) {
			violations = append(violations, models.Violation{
				Field:         "mrp",
				Issue:         "MRP value contains a unit (e.g., kg/g/ml) instead of currency.",
				RuleReference: "Rule on Maximum Retail Price display",
				Reason:        "The MRP should represent a monetary amount (e.g., Rs. 50.00), but units like weight/volume were found.",
			})
		}
	}

	return violations
}
