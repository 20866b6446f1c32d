package usecase

import (
	"strings"
	"testing"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

func TestSynthesizeAllMetIsEligible(t *testing.T) {
	verdicts := []domain.CriterionVerdict{
		{Criterion: "age", Met: domain.VerdictMet, Reason: "age 30 within range"},
		{Criterion: "income", Met: domain.VerdictMet, Reason: "income within limit"},
	}
	decision := synthesizeDecision("pm-kisan", verdicts)
	if decision.Outcome != domain.OutcomeEligible {
		t.Fatalf("expected eligible, got %s", decision.Outcome)
	}
	if decision.Explanation != allCriteriaSatisfied {
		t.Fatalf("expected standard explanation, got %q", decision.Explanation)
	}
	if decision.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %g", decision.Confidence)
	}
}

func TestSynthesizeAnyNotMetIsNotEligible(t *testing.T) {
	verdicts := []domain.CriterionVerdict{
		{Criterion: "age", Met: domain.VerdictMet, Reason: "ok"},
		{Criterion: "income", Met: domain.VerdictNotMet, Reason: "income 200000 exceeds limit 100000"},
		{Criterion: "gender", Met: domain.VerdictUnknown, Reason: "missing:gender"},
	}
	decision := synthesizeDecision("s", verdicts)
	if decision.Outcome != domain.OutcomeNotEligible {
		t.Fatalf("expected not eligible, got %s", decision.Outcome)
	}
	if decision.Explanation == "" {
		t.Fatalf("not-eligible decision must carry a non-empty explanation")
	}
	if !strings.Contains(decision.Explanation, "criterion income:") {
		t.Fatalf("explanation should cite the failing criterion, got %q", decision.Explanation)
	}
}

func TestSynthesizeUnknownOnlyIsPartiallyEligible(t *testing.T) {
	verdicts := []domain.CriterionVerdict{
		{Criterion: "age", Met: domain.VerdictMet, Reason: "ok"},
		{Criterion: "income", Met: domain.VerdictUnknown, Reason: "missing:income", Field: "income"},
		{Criterion: "category", Met: domain.VerdictUnknown, Reason: "missing:category", Field: "category"},
		{Criterion: "gender", Met: domain.VerdictMet, Reason: "ok"},
	}
	decision := synthesizeDecision("s", verdicts)
	if decision.Outcome != domain.OutcomePartiallyEligible {
		t.Fatalf("expected partially eligible, got %s", decision.Outcome)
	}
	if decision.Confidence != 50 {
		t.Fatalf("2 of 4 unknown: expected confidence 50, got %g", decision.Confidence)
	}
	if len(decision.MissingFields) != 2 || decision.MissingFields[0] != "category" || decision.MissingFields[1] != "income" {
		t.Fatalf("expected sorted missing fields [category income], got %v", decision.MissingFields)
	}
}

func TestSynthesizeDeterministicExplanationOrder(t *testing.T) {
	verdicts := []domain.CriterionVerdict{
		{Criterion: "age", Met: domain.VerdictNotMet, Reason: "too young"},
		{Criterion: "location", Met: domain.VerdictUnknown, Reason: "missing:state"},
	}
	a := synthesizeDecision("s", verdicts)
	b := synthesizeDecision("s", verdicts)
	if a.Explanation != b.Explanation {
		t.Fatalf("explanation must be deterministic: %q vs %q", a.Explanation, b.Explanation)
	}
	if !strings.HasPrefix(a.Explanation, "criterion age:") {
		t.Fatalf("explanation must follow verdict order, got %q", a.Explanation)
	}
}

func TestSynthesizeEmptyVerdictsIsEligible(t *testing.T) {
	decision := synthesizeDecision("unrestricted", nil)
	if decision.Outcome != domain.OutcomeEligible {
		t.Fatalf("no criteria means eligible, got %s", decision.Outcome)
	}
	if decision.Confidence != 100 {
		t.Fatalf("expected confidence 100, got %g", decision.Confidence)
	}
}

func TestMergeConfidenceKeepsLower(t *testing.T) {
	decision := synthesizeDecision("s", []domain.CriterionVerdict{
		{Criterion: "age", Met: domain.VerdictMet, Reason: "ok"},
	})
	decision.MergeConfidence(80)
	if decision.Confidence != 80 {
		t.Fatalf("expected merged confidence 80, got %g", decision.Confidence)
	}
	decision.MergeConfidence(95)
	if decision.Confidence != 80 {
		t.Fatalf("higher external confidence must not raise, got %g", decision.Confidence)
	}
	decision.MergeConfidence(150)
	if decision.Confidence != 80 {
		t.Fatalf("out-of-range external confidence is clamped, got %g", decision.Confidence)
	}
}

// Scenario: age range 18-60 with income cap 100000 against a profile with
// age 45 and the 50000-100000 band.
func TestSynthesizeBandWithinLimitIsEligible(t *testing.T) {
	criteria := domain.EligibilityCriteria{
		AgeRange:  &domain.AgeRange{Min: intPtr(18), Max: intPtr(60)},
		IncomeMax: floatPtr(100000),
	}
	profile := domain.UserProfile{Age: intPtr(45), IncomeBand: "50000-100000"}
	decision := synthesizeDecision("s", evaluateCriteria(criteria, profile))
	if decision.Outcome != domain.OutcomeEligible {
		t.Fatalf("band upper bound inside limit: expected eligible, got %s (%s)", decision.Outcome, decision.Explanation)
	}

	straddling := domain.UserProfile{Age: intPtr(45), IncomeBand: "50000-150000"}
	decision = synthesizeDecision("s", evaluateCriteria(criteria, straddling))
	if decision.Outcome != domain.OutcomePartiallyEligible {
		t.Fatalf("straddling band: expected partially eligible, got %s", decision.Outcome)
	}
	if len(decision.MissingFields) != 1 || decision.MissingFields[0] != "income" {
		t.Fatalf("straddling band must name income as the field to clarify, got %v", decision.MissingFields)
	}
}

// Unknown verdicts whose data is present but unusable still name their
// field, so partially-eligible decisions always say what to ask for.
func TestSynthesizeMissingFieldsCoverAllUnknownVerdicts(t *testing.T) {
	criteria := domain.EligibilityCriteria{
		AgeRange:  &domain.AgeRange{Min: intPtr(18), Max: intPtr(60)},
		IncomeMax: floatPtr(100000),
		Custom: []domain.CustomRule{
			{Field: "occupation", Operator: domain.OpGt, Value: domain.NumberValue(5)},
		},
	}
	profile := domain.UserProfile{
		Age:        intPtr(45),
		IncomeBand: "50000-150000",
		Occupation: "farmer",
	}

	decision := synthesizeDecision("s", evaluateCriteria(criteria, profile))
	if decision.Outcome != domain.OutcomePartiallyEligible {
		t.Fatalf("expected partially eligible, got %s", decision.Outcome)
	}
	if len(decision.MissingFields) != 2 || decision.MissingFields[0] != "income" || decision.MissingFields[1] != "occupation" {
		t.Fatalf("expected sorted missing fields [income occupation], got %v", decision.MissingFields)
	}
}
