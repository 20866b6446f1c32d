package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Location is where the citizen lives. Village is optional below district
// level and never participates in eligibility matching.
type Location struct {
	State    string `json:"state,omitempty"`
	District string `json:"district,omitempty"`
	Village  string `json:"village,omitempty"`
}

// IncomeBand is an ordered annual-income band in the form "<low>-<high>",
// with an open-ended top band written "<low>+". The empty band means income
// is not known at all.
type IncomeBand string

// Bounds parses the band into a closed interval. The open-ended top band
// reports upper = -1. Returns ok=false for the empty or malformed band.
func (b IncomeBand) Bounds() (lower, upper float64, ok bool) {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return 0, 0, false
	}
	if strings.HasSuffix(s, "+") {
		low, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
		if err != nil || low < 0 {
			return 0, 0, false
		}
		return low, -1, true
	}
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	low, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	high, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil || low < 0 || high < low {
		return 0, 0, false
	}
	return low, high, true
}

// UserProfile is the demographic snapshot a scheme is matched against.
// Every field a criterion can reference is nullable: absence is a distinct
// state from "does not meet" and surfaces as an unknown verdict.
type UserProfile struct {
	ID          string     `json:"id"`
	Age         *int       `json:"age,omitempty"`
	Location    Location   `json:"location"`
	Occupation  string     `json:"occupation,omitempty"`
	IncomeBand  IncomeBand `json:"income_band,omitempty"`
	ExactIncome *float64   `json:"exact_income,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	Disability  *bool      `json:"disability,omitempty"`
	Gender      *Gender    `json:"gender,omitempty"`

	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate rejects malformed caller input before it reaches evaluation or
// storage. Returns an ErrValidation-kinded error on failure.
func (p UserProfile) Validate() error {
	fail := func(format string, args ...any) error {
		return WrapError(ErrValidation, "validate profile", fmt.Errorf(format, args...))
	}
	if p.Age != nil && *p.Age < 0 {
		return fail("age %d is negative", *p.Age)
	}
	if p.ExactIncome != nil && *p.ExactIncome < 0 {
		return fail("exact income %g is negative", *p.ExactIncome)
	}
	if p.IncomeBand != "" {
		if _, _, ok := p.IncomeBand.Bounds(); !ok {
			return fail("income band %q is malformed", p.IncomeBand)
		}
	}
	if p.Category != nil {
		if _, ok := validCategories[*p.Category]; !ok {
			return fail("unknown category %q", *p.Category)
		}
	}
	if p.Gender != nil {
		if _, ok := validGenders[*p.Gender]; !ok || *p.Gender == GenderAny {
			return fail("unknown gender %q", *p.Gender)
		}
	}
	return nil
}
