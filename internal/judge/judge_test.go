package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/productlens/labelcheck/internal/models"
)

type mockGenerator struct {
	response string
	err      error
	calls    int
}

func (m *mockGenerator) GenerateWithSystem(_ context.Context, _, _ string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func newTestJudge(gen Generator) *Judge {
	j := New(gen)
	j.sleep = func(time.Duration) {}
	return j
}

func strPtr(s string) *string { return &s }

func recordWithMRP(mrp *string) *models.ProductRecord {
	r := models.NewProductRecord([]string{"https://example.com/a.jpg"})
	r.OCRData.MRP = mrp
	return r
}

func ruleContext() []models.RuleChunk {
	return []models.RuleChunk{
		{Text: "Every package shall bear the retail sale price.", Position: 0},
	}
}

func TestPreCheck_MRPUnitToken(t *testing.T) {
	tests := []struct {
		name          string
		mrp           *string
		wantViolation bool
	}{
		{"unit in mrp", strPtr("500 g"), true},
		{"unit uppercase", strPtr("500 KG"), true},
		{"litre token", strPtr("2 litre"), true},
		{"monetary mrp", strPtr("Rs. 50.00"), false},
		{"nil mrp never fires", nil, false},
		{"unit substring inside word", strPtr("Rs. 50 grand"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := PreCheck(recordWithMRP(tt.mrp))
			if tt.wantViolation {
				if len(violations) != 1 {
					t.Fatalf("got %d violations, want 1", len(violations))
				}
				v := violations[0]
				if v.Field != "mrp" {
					t.Errorf("violation field = %q, want mrp", v.Field)
				}
				if v.RuleReference != "Rule on Maximum Retail Price display" {
					t.Errorf("rule reference = %q", v.RuleReference)
				}
			} else if len(violations) != 0 {
				t.Errorf("got %d violations, want 0: %+v", len(violations), violations)
			}
		})
	}
}

func TestJudge_PreCheckDominance(t *testing.T) {
	// The generative stage claims compliant; the deterministic finding must win.
	gen := &mockGenerator{response: `{
		"compliance_status": "compliant",
		"compliance_score": "100%",
		"violations": [],
		"reasoning": "All fields look fine."
	}`}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("500 g")), ruleContext())

	if verdict.Status != models.ComplianceNonCompliant {
		t.Errorf("status = %q, want non-compliant", verdict.Status)
	}
	if len(verdict.Violations) != 1 || verdict.Violations[0].Field != "mrp" {
		t.Errorf("violations = %+v, want the mrp pre-check violation", verdict.Violations)
	}
}

func TestJudge_MergePreservesOrder(t *testing.T) {
	gen := &mockGenerator{response: `{
		"compliance_status": "non-compliant",
		"compliance_score": "60%",
		"violations": [
			{"field": "net_quantity", "issue": "missing", "rule_reference": "Rule 6", "reason": "Net quantity absent."}
		],
		"reasoning": "Missing declarations."
	}`}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("500 g")), ruleContext())

	if len(verdict.Violations) != 2 {
		t.Fatalf("got %d violations, want 2", len(verdict.Violations))
	}
	// Generative violations first, pre-check findings appended.
	if verdict.Violations[0].Field != "net_quantity" || verdict.Violations[1].Field != "mrp" {
		t.Errorf("merge order = [%s %s], want [net_quantity mrp]",
			verdict.Violations[0].Field, verdict.Violations[1].Field)
	}
}

func TestJudge_MalformedResponseRecovery(t *testing.T) {
	gen := &mockGenerator{response: `Sure! {"compliance_status":"compliant","compliance_score":"100%","violations":[],"reasoning":"ok"} thanks`}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("Rs. 50")), ruleContext())

	if verdict.Status != models.ComplianceCompliant {
		t.Errorf("status = %q, want compliant (embedded JSON should be recovered)", verdict.Status)
	}
	if verdict.Reasoning != "ok" {
		t.Errorf("reasoning = %q, want ok", verdict.Reasoning)
	}
}

func TestJudge_UnparseableResponseDegrades(t *testing.T) {
	gen := &mockGenerator{response: "I cannot answer in JSON today."}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("500 g")), ruleContext())

	if verdict.Status != models.ComplianceError {
		t.Errorf("status = %q, want error", verdict.Status)
	}
	// Deterministic violations only.
	if len(verdict.Violations) != 1 || verdict.Violations[0].Field != "mrp" {
		t.Errorf("violations = %+v, want pre-check violations only", verdict.Violations)
	}
}

func TestJudge_CallFailureRetriesThenDegrades(t *testing.T) {
	gen := &mockGenerator{err: errors.New("rate limited")}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(nil), ruleContext())

	if gen.calls != maxAttempts {
		t.Errorf("generator called %d times, want %d", gen.calls, maxAttempts)
	}
	if verdict.Status != models.ComplianceError {
		t.Errorf("status = %q, want error", verdict.Status)
	}
}

func TestJudge_SynthesizesMissingReasoning(t *testing.T) {
	gen := &mockGenerator{response: `{
		"compliance_status": "compliant",
		"compliance_score": "100%",
		"violations": []
	}`}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("Rs. 50")), ruleContext())

	if verdict.Reasoning == "" {
		t.Error("expected synthesized reasoning for missing field")
	}
	if verdict.Status != models.ComplianceCompliant {
		t.Errorf("status = %q, want compliant", verdict.Status)
	}
}

func TestJudge_CompliantWithViolationsNormalized(t *testing.T) {
	gen := &mockGenerator{response: `{
		"compliance_status": "compliant",
		"compliance_score": "90%",
		"violations": [
			{"field": "best_before", "issue": "missing", "rule_reference": "Rule 6", "reason": "Absent."}
		],
		"reasoning": "Mostly fine."
	}`}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("Rs. 50")), ruleContext())

	if verdict.Status != models.ComplianceNonCompliant {
		t.Errorf("status = %q, want non-compliant (violations present)", verdict.Status)
	}
}

func TestJudge_NumericScoreCoerced(t *testing.T) {
	gen := &mockGenerator{response: `{
		"compliance_status": "compliant",
		"compliance_score": 87.5,
		"violations": [],
		"reasoning": "ok"
	}`}
	j := newTestJudge(gen)

	verdict := j.Judge(context.Background(), recordWithMRP(strPtr("Rs. 50")), ruleContext())

	if verdict.Score == nil || *verdict.Score != "87.5" {
		t.Errorf("score = %v, want 87.5", verdict.Score)
	}
	if verdict.AnalysisTimestamp == nil {
		t.Error("analysis timestamp not stamped")
	}
}
