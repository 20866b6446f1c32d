package usecase

import (
	"fmt"
	"strings"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
)

// Criterion names in the fixed evaluation order. Custom rules follow in
// declaration order under "custom:<field>".
const (
	criterionAge        = "age"
	criterionIncome     = "income"
	criterionLocation   = "location"
	criterionCategory   = "category"
	criterionOccupation = "occupation"
	criterionDisability = "disability"
	criterionGender     = "gender"
)

// evaluateCriteria produces exactly one verdict per present sub-rule, in the
// fixed order age → income → location → category → occupation → disability →
// gender → custom (declaration order). It never short-circuits: a failing
// criterion still leaves every later one evaluated, so the explanation is
// always complete. Missing profile data yields an unknown verdict, never a
// silent skip.
func evaluateCriteria(criteria domain.EligibilityCriteria, profile domain.UserProfile) []domain.CriterionVerdict {
	verdicts := make([]domain.CriterionVerdict, 0, 8+len(criteria.Custom))

	if criteria.AgeRange != nil {
		verdicts = append(verdicts, evaluateAge(*criteria.AgeRange, profile))
	}
	if criteria.IncomeMax != nil {
		verdicts = append(verdicts, evaluateIncome(*criteria.IncomeMax, profile))
	}
	if len(criteria.AllowedStates) > 0 || len(criteria.AllowedDistricts) > 0 {
		verdicts = append(verdicts, evaluateLocation(criteria, profile))
	}
	if len(criteria.Categories) > 0 {
		verdicts = append(verdicts, evaluateCategory(criteria.Categories, profile))
	}
	if len(criteria.Occupations) > 0 {
		verdicts = append(verdicts, evaluateOccupation(criteria.Occupations, profile))
	}
	if criteria.RequiresDisability != nil {
		verdicts = append(verdicts, evaluateDisability(*criteria.RequiresDisability, profile))
	}
	if criteria.Gender != "" {
		verdicts = append(verdicts, evaluateGender(criteria.Gender, profile))
	}
	for _, rule := range criteria.Custom {
		verdicts = append(verdicts, evaluateCustomRule(rule, profile))
	}
	return verdicts
}

func missingVerdict(criterion, field string) domain.CriterionVerdict {
	return domain.CriterionVerdict{
		Criterion: criterion,
		Met:       domain.VerdictUnknown,
		Reason:    "missing:" + field,
		Field:     field,
	}
}

func evaluateAge(r domain.AgeRange, profile domain.UserProfile) domain.CriterionVerdict {
	if profile.Age == nil {
		return missingVerdict(criterionAge, "age")
	}
	age := *profile.Age
	// Closed interval: both bounds inclusive.
	if r.Min != nil && age < *r.Min {
		return domain.CriterionVerdict{
			Criterion: criterionAge,
			Met:       domain.VerdictNotMet,
			Reason:    fmt.Sprintf("age %d below minimum %d", age, *r.Min),
		}
	}
	if r.Max != nil && age > *r.Max {
		return domain.CriterionVerdict{
			Criterion: criterionAge,
			Met:       domain.VerdictNotMet,
			Reason:    fmt.Sprintf("age %d above maximum %d", age, *r.Max),
		}
	}
	return domain.CriterionVerdict{
		Criterion: criterionAge,
		Met:       domain.VerdictMet,
		Reason:    fmt.Sprintf("age %d within range", age),
	}
}

func evaluateIncome(incomeMax float64, profile domain.UserProfile) domain.CriterionVerdict {
	if profile.ExactIncome != nil {
		income := *profile.ExactIncome
		if income <= incomeMax {
			return domain.CriterionVerdict{
				Criterion: criterionIncome,
				Met:       domain.VerdictMet,
				Reason:    fmt.Sprintf("income %g within limit %g", income, incomeMax),
			}
		}
		return domain.CriterionVerdict{
			Criterion: criterionIncome,
			Met:       domain.VerdictNotMet,
			Reason:    fmt.Sprintf("income %g exceeds limit %g", income, incomeMax),
		}
	}

	lower, upper, ok := profile.IncomeBand.Bounds()
	if !ok {
		return missingVerdict(criterionIncome, "income")
	}
	switch {
	case upper >= 0 && upper <= incomeMax:
		return domain.CriterionVerdict{
			Criterion: criterionIncome,
			Met:       domain.VerdictMet,
			Reason:    fmt.Sprintf("income band %s within limit %g", profile.IncomeBand, incomeMax),
		}
	case lower > incomeMax:
		return domain.CriterionVerdict{
			Criterion: criterionIncome,
			Met:       domain.VerdictNotMet,
			Reason:    fmt.Sprintf("income band %s exceeds limit %g", profile.IncomeBand, incomeMax),
		}
	default:
		// Band straddles the threshold: the exact figure could fall either
		// side, so err toward unknown rather than guessing.
		return domain.CriterionVerdict{
			Criterion: criterionIncome,
			Met:       domain.VerdictUnknown,
			Reason:    fmt.Sprintf("income band %s straddles limit %g", profile.IncomeBand, incomeMax),
			Field:     "income",
		}
	}
}

func evaluateLocation(criteria domain.EligibilityCriteria, profile domain.UserProfile) domain.CriterionVerdict {
	if len(criteria.AllowedStates) > 0 {
		state := strings.TrimSpace(profile.Location.State)
		if state == "" {
			return missingVerdict(criterionLocation, "state")
		}
		if !containsFold(criteria.AllowedStates, state) {
			return domain.CriterionVerdict{
				Criterion: criterionLocation,
				Met:       domain.VerdictNotMet,
				Reason:    fmt.Sprintf("state %s not covered", state),
			}
		}
	}
	// No district restriction means any district within an allowed state.
	if len(criteria.AllowedDistricts) > 0 {
		district := strings.TrimSpace(profile.Location.District)
		if district == "" {
			return missingVerdict(criterionLocation, "district")
		}
		if !containsFold(criteria.AllowedDistricts, district) {
			return domain.CriterionVerdict{
				Criterion: criterionLocation,
				Met:       domain.VerdictNotMet,
				Reason:    fmt.Sprintf("district %s not covered", district),
			}
		}
	}
	return domain.CriterionVerdict{
		Criterion: criterionLocation,
		Met:       domain.VerdictMet,
		Reason:    "location covered",
	}
}

func evaluateCategory(categories []domain.Category, profile domain.UserProfile) domain.CriterionVerdict {
	if profile.Category == nil {
		return missingVerdict(criterionCategory, "category")
	}
	for _, cat := range categories {
		if cat == *profile.Category {
			return domain.CriterionVerdict{
				Criterion: criterionCategory,
				Met:       domain.VerdictMet,
				Reason:    fmt.Sprintf("category %s covered", cat),
			}
		}
	}
	return domain.CriterionVerdict{
		Criterion: criterionCategory,
		Met:       domain.VerdictNotMet,
		Reason:    fmt.Sprintf("category %s not covered", *profile.Category),
	}
}

func evaluateOccupation(occupations []string, profile domain.UserProfile) domain.CriterionVerdict {
	occupation := strings.TrimSpace(profile.Occupation)
	if occupation == "" {
		return missingVerdict(criterionOccupation, "occupation")
	}
	if containsFold(occupations, occupation) {
		return domain.CriterionVerdict{
			Criterion: criterionOccupation,
			Met:       domain.VerdictMet,
			Reason:    fmt.Sprintf("occupation %s covered", occupation),
		}
	}
	return domain.CriterionVerdict{
		Criterion: criterionOccupation,
		Met:       domain.VerdictNotMet,
		Reason:    fmt.Sprintf("occupation %s not covered", occupation),
	}
}

func evaluateDisability(required bool, profile domain.UserProfile) domain.CriterionVerdict {
	if !required {
		return domain.CriterionVerdict{
			Criterion: criterionDisability,
			Met:       domain.VerdictMet,
			Reason:    "no disability requirement",
		}
	}
	if profile.Disability == nil {
		return missingVerdict(criterionDisability, "disability")
	}
	if *profile.Disability {
		return domain.CriterionVerdict{
			Criterion: criterionDisability,
			Met:       domain.VerdictMet,
			Reason:    "disability requirement satisfied",
		}
	}
	return domain.CriterionVerdict{
		Criterion: criterionDisability,
		Met:       domain.VerdictNotMet,
		Reason:    "scheme requires a disability certificate",
	}
}

func evaluateGender(required domain.Gender, profile domain.UserProfile) domain.CriterionVerdict {
	if required == domain.GenderAny {
		return domain.CriterionVerdict{
			Criterion: criterionGender,
			Met:       domain.VerdictMet,
			Reason:    "open to all genders",
		}
	}
	if profile.Gender == nil {
		return missingVerdict(criterionGender, "gender")
	}
	if *profile.Gender == required {
		return domain.CriterionVerdict{
			Criterion: criterionGender,
			Met:       domain.VerdictMet,
			Reason:    fmt.Sprintf("gender %s covered", required),
		}
	}
	return domain.CriterionVerdict{
		Criterion: criterionGender,
		Met:       domain.VerdictNotMet,
		Reason:    fmt.Sprintf("scheme restricted to gender %s", required),
	}
}

func evaluateCustomRule(rule domain.CustomRule, profile domain.UserProfile) domain.CriterionVerdict {
	name := "custom:" + rule.Field

	actual, ok := profileFieldValue(profile, rule.Field)
	if !ok {
		return missingVerdict(name, rule.Field)
	}

	met, reason := compareRuleValue(rule, actual)
	verdict := domain.CriterionVerdict{Criterion: name, Met: met, Reason: reason}
	// Operator/type mismatches are unknown, not not-met; name the field so
	// the caller knows which datum to clarify.
	if met == domain.VerdictUnknown {
		verdict.Field = rule.Field
	}
	return verdict
}

// profileFieldValue resolves a custom-rule field name to the profile's
// current value. Unknown field names and absent values both report !ok,
// which surfaces as an unknown verdict.
func profileFieldValue(profile domain.UserProfile, field string) (domain.RuleValue, bool) {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case "age":
		if profile.Age == nil {
			return domain.RuleValue{}, false
		}
		return domain.NumberValue(float64(*profile.Age)), true
	case "income":
		if profile.ExactIncome == nil {
			return domain.RuleValue{}, false
		}
		return domain.NumberValue(*profile.ExactIncome), true
	case "state":
		if profile.Location.State == "" {
			return domain.RuleValue{}, false
		}
		return domain.StringValue(profile.Location.State), true
	case "district":
		if profile.Location.District == "" {
			return domain.RuleValue{}, false
		}
		return domain.StringValue(profile.Location.District), true
	case "village":
		if profile.Location.Village == "" {
			return domain.RuleValue{}, false
		}
		return domain.StringValue(profile.Location.Village), true
	case "occupation":
		if profile.Occupation == "" {
			return domain.RuleValue{}, false
		}
		return domain.StringValue(profile.Occupation), true
	case "category":
		if profile.Category == nil {
			return domain.RuleValue{}, false
		}
		return domain.StringValue(string(*profile.Category)), true
	case "disability":
		if profile.Disability == nil {
			return domain.RuleValue{}, false
		}
		return domain.BoolValue(*profile.Disability), true
	case "gender":
		if profile.Gender == nil {
			return domain.RuleValue{}, false
		}
		return domain.StringValue(string(*profile.Gender)), true
	default:
		return domain.RuleValue{}, false
	}
}

func compareRuleValue(rule domain.CustomRule, actual domain.RuleValue) (domain.TriState, string) {
	incompatible := func() (domain.TriState, string) {
		return domain.VerdictUnknown, fmt.Sprintf(
			"operator %s not applicable to %s value of %s", rule.Operator, actual.Kind, rule.Field)
	}

	switch rule.Operator {
	case domain.OpEq:
		switch {
		case actual.Kind == domain.ValueNumber && rule.Value.Kind == domain.ValueNumber:
			return boolVerdict(actual.Number == rule.Value.Number, rule)
		case actual.Kind == domain.ValueString && rule.Value.Kind == domain.ValueString:
			return boolVerdict(strings.EqualFold(actual.Str, rule.Value.Str), rule)
		case actual.Kind == domain.ValueBool && rule.Value.Kind == domain.ValueBool:
			return boolVerdict(actual.Bool == rule.Value.Bool, rule)
		default:
			return incompatible()
		}
	case domain.OpGt, domain.OpLt, domain.OpGte, domain.OpLte:
		if actual.Kind != domain.ValueNumber || rule.Value.Kind != domain.ValueNumber {
			return incompatible()
		}
		var met bool
		switch rule.Operator {
		case domain.OpGt:
			met = actual.Number > rule.Value.Number
		case domain.OpLt:
			met = actual.Number < rule.Value.Number
		case domain.OpGte:
			met = actual.Number >= rule.Value.Number
		default:
			met = actual.Number <= rule.Value.Number
		}
		return boolVerdict(met, rule)
	case domain.OpIn:
		if rule.Value.Kind != domain.ValueList {
			return incompatible()
		}
		var needle string
		switch actual.Kind {
		case domain.ValueString:
			needle = actual.Str
		case domain.ValueNumber:
			needle = fmt.Sprintf("%g", actual.Number)
		default:
			return incompatible()
		}
		return boolVerdict(containsFold(rule.Value.List, needle), rule)
	default:
		return incompatible()
	}
}

func boolVerdict(met bool, rule domain.CustomRule) (domain.TriState, string) {
	if met {
		return domain.VerdictMet, fmt.Sprintf("%s %s %s satisfied", rule.Field, rule.Operator, rule.Value)
	}
	return domain.VerdictNotMet, fmt.Sprintf("%s %s %s not satisfied", rule.Field, rule.Operator, rule.Value)
}

func containsFold(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if strings.EqualFold(strings.TrimSpace(candidate), needle) {
			return true
		}
	}
	return false
}
