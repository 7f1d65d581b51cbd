package judge

import "fmt"

const judgeSystemPrompt = "You are a meticulous compliance officer for the Legal Metrology Act " +
	"(Packaged Commodities Rules, 2011). You validate product data against rule context and " +
	"return ONLY valid JSON."

// buildPrompt renders the judgment prompt: reranked rule-chunk text as
// context, the serialized record as product data, and the fixed policy
// instruction set.
func buildPrompt(contextText, productJSON string) string {
	return fmt.Sprintf(`Validate the PRODUCT DATA against the CONTEXT (rules) and return ONLY valid JSON.

CONTEXT:
%s

PRODUCT DATA:
%s

INSTRUCTIONS:
1. Output ONLY valid JSON (no commentary, no code blocks).
2. If all fields are compliant:
    - "compliance_status": "compliant"
    - "violations": []
    - "reasoning": "The product information fully complies with the rules in the given context."
3. If there are violations:
    - Include them in "violations" with:
      "field", "issue", "rule_reference", and "reason".
    - "reason" must clearly explain why the violation occurred.
4. Do not invent violations not present in PRODUCT DATA.
5. General Rule: Any field with an empty string ("") as its value is a violation.

SPECIAL RULES:
- country_of_origin: If value is "India" or "INDIA", importer details are NOT required.
- imported_by: Mandatory ONLY if country_of_origin is not India.
- date_of_manufacture: "MM/YYYY", "YYYY-MM-DD", or "YYYY/M/D" formats are valid.
- net_quantity:
    - Must be a number followed by a valid unit (g, kg, ml, l, litre, meter, cm, pcs, pack, tablet, capsule).
    - If missing, flag as violation.
    - If it contains a currency unit (Rs, INR, $, rs, etc.), flag as wrong type.
- mrp:
    - Must be a monetary amount (Rs, INR, Rupees, $).
    - If missing, flag as violation.
    - If it contains measurement units (g, kg, ml, litre, meter, cm, etc.), flag as wrong type.

OUTPUT FORMAT (strictly JSON):
{
  "compliance_status": "compliant" | "non-compliant",
  "compliance_score": "percentage out of total checks and how many are missing",
  "violations": [
    {
      "field": "string",
      "issue": "string",
      "rule_reference": "Rule section",
      "reason": "string"
    }
  ],
  "reasoning": "string"
}
`, contextText, productJSON)
}
