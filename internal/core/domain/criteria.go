package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the reservation category a scheme may restrict to.
type Category string

const (
	CategorySC      Category = "SC"
	CategoryST      Category = "ST"
	CategoryOBC     Category = "OBC"
	CategoryGeneral Category = "General"
)

// Gender values accepted in criteria and profiles. GenderAny in criteria
// means the scheme does not restrict by gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
	GenderAny    Gender = "any"
)

// Operator is the closed set of comparison operators allowed in custom rules.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
	OpGte Operator = "gte"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

// ValueKind tags the variant payload of a RuleValue.
type ValueKind string

const (
	ValueNumber ValueKind = "number"
	ValueString ValueKind = "string"
	ValueBool   ValueKind = "bool"
	ValueList   ValueKind = "list"
)

// RuleValue is a closed variant type for custom-rule operands. Keeping the
// set of kinds closed is what keeps evaluation total: an operator applied to
// an incompatible kind yields an unknown verdict instead of a panic.
type RuleValue struct {
	Kind   ValueKind
	Number float64
	Str    string
	Bool   bool
	List   []string
}

func NumberValue(n float64) RuleValue { return RuleValue{Kind: ValueNumber, Number: n} }
func StringValue(s string) RuleValue  { return RuleValue{Kind: ValueString, Str: s} }
func BoolValue(b bool) RuleValue      { return RuleValue{Kind: ValueBool, Bool: b} }
func ListValue(items ...string) RuleValue {
	return RuleValue{Kind: ValueList, List: items}
}

func (v RuleValue) String() string {
	switch v.Kind {
	case ValueNumber:
		return fmt.Sprintf("%g", v.Number)
	case ValueString:
		return v.Str
	case ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValueList:
		return strings.Join(v.List, ",")
	default:
		return ""
	}
}

// MarshalJSON emits the natural scalar/list form.
func (v RuleValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return json.Marshal(v.Number)
	case ValueString:
		return json.Marshal(v.Str)
	case ValueBool:
		return json.Marshal(v.Bool)
	case ValueList:
		return json.Marshal(v.List)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a number, string, bool or list of strings.
func (v *RuleValue) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*v = NumberValue(num)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*v = StringValue(str)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = ListValue(list...)
		return nil
	}
	return fmt.Errorf("rule value must be a number, string, bool or string list")
}

// CustomRule is one ad-hoc criterion over a named profile field.
type CustomRule struct {
	Field    string    `json:"field"`
	Operator Operator  `json:"operator"`
	Value    RuleValue `json:"value"`
}

// AgeRange is a closed interval; either bound may be absent.
type AgeRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// EligibilityCriteria is the structured rule set of one scheme version.
// All present sub-rules combine with AND semantics and each is evaluable
// on its own. The zero value means "no restrictions".
type EligibilityCriteria struct {
	AgeRange           *AgeRange    `json:"age_range,omitempty"`
	IncomeMax          *float64     `json:"income_max,omitempty"`
	AllowedStates      []string     `json:"allowed_states,omitempty"`
	AllowedDistricts   []string     `json:"allowed_districts,omitempty"`
	Categories         []Category   `json:"categories,omitempty"`
	Occupations        []string     `json:"occupations,omitempty"`
	RequiresDisability *bool        `json:"requires_disability,omitempty"`
	Gender             Gender       `json:"gender,omitempty"`
	Custom             []CustomRule `json:"custom,omitempty"`
}

var validCategories = map[Category]struct{}{
	CategorySC: {}, CategoryST: {}, CategoryOBC: {}, CategoryGeneral: {},
}

var validGenders = map[Gender]struct{}{
	GenderMale: {}, GenderFemale: {}, GenderOther: {}, GenderAny: {},
}

// Validate rejects malformed criteria at ingestion so evaluation never has
// to handle them. Returns an ErrInvalidCriteria-kinded error on failure.
func (c EligibilityCriteria) Validate() error {
	fail := func(format string, args ...any) error {
		return WrapError(ErrInvalidCriteria, "validate criteria", fmt.Errorf(format, args...))
	}

	if c.AgeRange != nil {
		if c.AgeRange.Min == nil && c.AgeRange.Max == nil {
			return fail("age range must declare at least one bound")
		}
		if c.AgeRange.Min != nil && *c.AgeRange.Min < 0 {
			return fail("age range min %d is negative", *c.AgeRange.Min)
		}
		if c.AgeRange.Min != nil && c.AgeRange.Max != nil && *c.AgeRange.Min > *c.AgeRange.Max {
			return fail("age range min %d exceeds max %d", *c.AgeRange.Min, *c.AgeRange.Max)
		}
	}
	if c.IncomeMax != nil && *c.IncomeMax < 0 {
		return fail("income max %g is negative", *c.IncomeMax)
	}
	if c.AllowedStates != nil && len(c.AllowedStates) == 0 {
		return fail("allowed states must not be empty when present")
	}
	if c.AllowedDistricts != nil && len(c.AllowedDistricts) == 0 {
		return fail("allowed districts must not be empty when present")
	}
	if c.Categories != nil {
		if len(c.Categories) == 0 {
			return fail("categories must not be empty when present")
		}
		for _, cat := range c.Categories {
			if _, ok := validCategories[cat]; !ok {
				return fail("unknown category %q", cat)
			}
		}
	}
	if c.Occupations != nil && len(c.Occupations) == 0 {
		return fail("occupations must not be empty when present")
	}
	if c.Gender != "" {
		if _, ok := validGenders[c.Gender]; !ok {
			return fail("unknown gender %q", c.Gender)
		}
	}
	for i, rule := range c.Custom {
		if strings.TrimSpace(rule.Field) == "" {
			return fail("custom rule %d has empty field", i)
		}
		if err := validateCustomRule(rule); err != nil {
			return fail("custom rule %d (%s): %v", i, rule.Field, err)
		}
	}
	return nil
}

func validateCustomRule(rule CustomRule) error {
	switch rule.Operator {
	case OpEq:
		if rule.Value.Kind == ValueList {
			return fmt.Errorf("eq requires a scalar value")
		}
	case OpGt, OpLt, OpGte, OpLte:
		if rule.Value.Kind != ValueNumber {
			return fmt.Errorf("%s requires a numeric value", rule.Operator)
		}
	case OpIn:
		if rule.Value.Kind != ValueList || len(rule.Value.List) == 0 {
			return fmt.Errorf("in requires a non-empty list value")
		}
	default:
		return fmt.Errorf("unknown operator %q", rule.Operator)
	}
	return nil
}
