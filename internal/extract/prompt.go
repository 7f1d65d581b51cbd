package extract

import "fmt"

// systemPrompt constrains the generator to JSON-only output.
const systemPrompt = "You are a JSON-only extractor. Always return only JSON. " +
	"No explanations, no markdown, no backticks. " +
	"Follow the exact JSON structure provided in the prompt."

// buildPrompt renders the extraction prompt for one OCR blob. The shape must
// match the structural validator exactly, and the generator is told to leave
// compliance empty: that verdict comes from a different component, later.
func buildPrompt(rawText, imageURL string) string {
	return fmt.Sprintf(`We provide OCR text recognized from the label of one packaged product.
Extract fields exactly as shown. If a field is missing in the source, set it to null. Do not hallucinate.
Do not fill in any compliance details or analysis timestamp; leave them null. They are computed later.

Required JSON shape (keys and nesting must match EXACTLY):
{
  "product_title": "example product title",
  "image_url": "%s",
  "status": null,
  "created_at": null,
  "updated_at": null,

  "ocr_data": {
    "manufacturer": null,
    "manufacturer_address": null,
    "country_of_origin": null,
    "common_product_name": null,
    "net_quantity": null,
    "mrp": null,
    "unit_sale_price": null,
    "date_of_manufacture": null,
    "best_before": null,
    "raw_ocr_text": null
  },

  "compliance": {
    "score": null,
    "status": null,
    "violations": [],
    "reasoning": null,
    "analysis_timestamp": null
  }
}

IMPORTANT FIELD MAPPING:
- manufacturer: use "name_of_the_manufacturer", "packer", or "manufacturer" from the OCR text
- manufacturer_address: use "address_of_manufacturer" from the OCR text
- raw_ocr_text: include the full original OCR text

SOURCE OCR (verbatim):
%s
`, imageURL, rawText)
}
