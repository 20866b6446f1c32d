package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yojanasetu/eligibility-engine/internal/core/domain"
	"github.com/yojanasetu/eligibility-engine/internal/core/ports"
)

// seedFile is the on-disk catalog format. Criteria are expressed in the same
// shape as the domain JSON; the loader validates every entry before upsert so
// a bad file never half-loads into the catalog.
type seedFile struct {
	Schemes []seedScheme `yaml:"schemes"`
}

type seedScheme struct {
	ID                string            `yaml:"id"`
	Entity            string            `yaml:"entity"`
	Names             map[string]string `yaml:"names"`
	Descriptions      map[string]string `yaml:"descriptions"`
	Benefits          map[string]string `yaml:"benefits"`
	RequiredDocuments []string          `yaml:"required_documents"`
	Criteria          seedCriteria      `yaml:"criteria"`
	Active            *bool             `yaml:"active"`
}

type seedCriteria struct {
	AgeMin             *int       `yaml:"age_min"`
	AgeMax             *int       `yaml:"age_max"`
	IncomeMax          *float64   `yaml:"income_max"`
	AllowedStates      []string   `yaml:"allowed_states"`
	AllowedDistricts   []string   `yaml:"allowed_districts"`
	Categories         []string   `yaml:"categories"`
	Occupations        []string   `yaml:"occupations"`
	RequiresDisability *bool      `yaml:"requires_disability"`
	Gender             string     `yaml:"gender"`
	Custom             []seedRule `yaml:"custom"`
}

type seedRule struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`
}

// Load reads a catalog seed file and upserts every scheme. The whole file is
// validated before the first upsert; any invalid entry aborts the load.
func Load(ctx context.Context, path string, catalog ports.SchemeCatalog, logger *slog.Logger) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	schemes := make([]domain.Scheme, 0, len(file.Schemes))
	for i, entry := range file.Schemes {
		scheme, err := entry.toDomain()
		if err != nil {
			return 0, fmt.Errorf("seed entry %d (%s): %w", i, entry.ID, err)
		}
		if err := scheme.Criteria.Validate(); err != nil {
			return 0, fmt.Errorf("seed entry %d (%s): %w", i, entry.ID, err)
		}
		schemes = append(schemes, scheme)
	}

	for _, scheme := range schemes {
		if err := catalog.UpsertScheme(ctx, scheme); err != nil {
			return 0, fmt.Errorf("upsert scheme %s: %w", scheme.ID, err)
		}
		logger.Info("scheme seeded", "scheme_id", scheme.ID, "entity", scheme.Entity)
	}
	return len(schemes), nil
}

func (s seedScheme) toDomain() (domain.Scheme, error) {
	if s.ID == "" {
		return domain.Scheme{}, fmt.Errorf("missing id")
	}
	if len(s.Names) == 0 {
		return domain.Scheme{}, fmt.Errorf("missing names")
	}

	criteria, err := s.Criteria.toDomain()
	if err != nil {
		return domain.Scheme{}, err
	}

	active := true
	if s.Active != nil {
		active = *s.Active
	}
	return domain.Scheme{
		ID:                s.ID,
		Entity:            s.Entity,
		Names:             domain.LocalizedText(s.Names),
		Descriptions:      domain.LocalizedText(s.Descriptions),
		Benefits:          domain.LocalizedText(s.Benefits),
		RequiredDocuments: s.RequiredDocuments,
		Criteria:          criteria,
		Active:            active,
		UpdatedAt:         time.Now().UTC(),
	}, nil
}

func (c seedCriteria) toDomain() (domain.EligibilityCriteria, error) {
	out := domain.EligibilityCriteria{
		IncomeMax:          c.IncomeMax,
		AllowedStates:      c.AllowedStates,
		AllowedDistricts:   c.AllowedDistricts,
		Occupations:        c.Occupations,
		RequiresDisability: c.RequiresDisability,
		Gender:             domain.Gender(c.Gender),
	}
	if c.AgeMin != nil || c.AgeMax != nil {
		out.AgeRange = &domain.AgeRange{Min: c.AgeMin, Max: c.AgeMax}
	}
	for _, cat := range c.Categories {
		out.Categories = append(out.Categories, domain.Category(cat))
	}
	for _, rule := range c.Custom {
		value, err := ruleValueFromYAML(rule.Value)
		if err != nil {
			return domain.EligibilityCriteria{}, fmt.Errorf("custom rule %s: %w", rule.Field, err)
		}
		out.Custom = append(out.Custom, domain.CustomRule{
			Field:    rule.Field,
			Operator: domain.Operator(rule.Operator),
			Value:    value,
		})
	}
	return out, nil
}

func ruleValueFromYAML(v any) (domain.RuleValue, error) {
	switch x := v.(type) {
	case int:
		return domain.NumberValue(float64(x)), nil
	case int64:
		return domain.NumberValue(float64(x)), nil
	case float64:
		return domain.NumberValue(x), nil
	case string:
		return domain.StringValue(x), nil
	case bool:
		return domain.BoolValue(x), nil
	case []any:
		items := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return domain.RuleValue{}, fmt.Errorf("list values must be strings, got %T", item)
			}
			items = append(items, s)
		}
		return domain.ListValue(items...), nil
	default:
		return domain.RuleValue{}, fmt.Errorf("unsupported value type %T", v)
	}
}
