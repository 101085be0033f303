package infer

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BenGOaff/tipote-pages/pkg/schema"
)

// SizeHints carries the advisory constraints a naming policy assigns to one
// field. Zero values mean "no opinion"; the inferencer fills remaining gaps
// from the defaults.
type SizeHints struct {
	MaxLength     int `yaml:"maxLength" json:"maxLength,omitempty"`
	MinItems      int `yaml:"minItems" json:"minItems,omitempty"`
	MaxItems      int `yaml:"maxItems" json:"maxItems,omitempty"`
	ItemMaxLength int `yaml:"itemMaxLength" json:"itemMaxLength,omitempty"`
}

// NamingPolicy maps a field key and its inferred shape to size hints. It must
// be a pure function: inference runs are required to be byte-identical, so a
// policy may not consult anything beyond its arguments.
type NamingPolicy func(key string, shape schema.FieldType) SizeHints

// The template corpus is a French product; heuristics match both French and
// English naming.
var scalarLengthRules = []struct {
	substrings []string
	maxLength  int
}{
	{[]string{"question"}, 120},
	{[]string{"answer", "reponse"}, 400},
	// subtitle before title: "sous_titre" contains "titre".
	{[]string{"subtitle", "sous_titre", "soustitre"}, 120},
	{[]string{"title", "titre", "headline", "accroche"}, 80},
	{[]string{"description", "paragraph", "paragraphe", "texte", "bio"}, 400},
	{[]string{"cta", "button", "bouton"}, 40},
	{[]string{"url", "link", "lien"}, 200},
	{[]string{"email"}, 120},
	{[]string{"name", "nom", "prenom"}, 60},
}

const (
	defaultScalarMaxLength = 160
	defaultItemMaxLength   = 100
	defaultMinItems        = 1
	defaultMaxItems        = 6
)

// DefaultNamingPolicy assigns size hints from substrings of the field name:
// titles stay short, descriptions run long, FAQ sections widen their item
// range, pricing sections narrow it. Advisory metadata only; the renderer
// clamps, it never rejects.
func DefaultNamingPolicy(key string, shape schema.FieldType) SizeHints {
	lower := strings.ToLower(key)

	switch shape {
	case schema.TypeString:
		hints := SizeHints{MaxLength: defaultScalarMaxLength}
		if strings.Contains(lower, "faq") {
			// FAQ scalar keys are question/answer shaped.
			if strings.HasSuffix(lower, "_a") || strings.Contains(lower, "reponse") || strings.Contains(lower, "answer") {
				hints.MaxLength = 400
			} else {
				hints.MaxLength = 120
			}
			return hints
		}
		for _, rule := range scalarLengthRules {
			for _, sub := range rule.substrings {
				if strings.Contains(lower, sub) {
					hints.MaxLength = rule.maxLength
					return hints
				}
			}
		}
		return hints

	case schema.TypeStringList, schema.TypeObjectList:
		hints := SizeHints{MinItems: defaultMinItems, MaxItems: defaultMaxItems, ItemMaxLength: defaultItemMaxLength}
		switch {
		case strings.Contains(lower, "faq"):
			hints.MinItems, hints.MaxItems = 3, 8
		case strings.Contains(lower, "tarif"), strings.Contains(lower, "pricing"),
			strings.Contains(lower, "prix"), strings.Contains(lower, "plan"):
			hints.MinItems, hints.MaxItems = 1, 3
		case strings.Contains(lower, "temoignage"), strings.Contains(lower, "testimonial"),
			strings.Contains(lower, "avis"):
			hints.MinItems, hints.MaxItems = 1, 6
		}
		switch {
		case strings.Contains(lower, "tag"), strings.Contains(lower, "mot"):
			hints.ItemMaxLength = 30
		case strings.Contains(lower, "benefice"), strings.Contains(lower, "benefit"),
			strings.Contains(lower, "avantage"), strings.Contains(lower, "bullet"),
			strings.Contains(lower, "point"):
			hints.ItemMaxLength = 120
		}
		return hints
	}
	return SizeHints{}
}

// Overrides is the per-template override table that replaces name-based
// guessing for specific keys. Loaded from YAML authored next to the
// templates.
type Overrides struct {
	Fields map[string]SizeHints `yaml:"fields"`
}

// LoadOverrides reads an override table from YAML.
func LoadOverrides(r io.Reader) (Overrides, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Overrides{}, fmt.Errorf("infer: read overrides: %w", err)
	}
	var o Overrides
	if err := yaml.Unmarshal(raw, &o); err != nil {
		return Overrides{}, fmt.Errorf("infer: parse overrides: %w", err)
	}
	return o, nil
}

// WithOverrides wraps base so that explicit per-key hints win over the
// name-based heuristic. Zero-valued override entries inherit from base.
func WithOverrides(base NamingPolicy, o Overrides) NamingPolicy {
	if len(o.Fields) == 0 {
		return base
	}
	return func(key string, shape schema.FieldType) SizeHints {
		hints := base(key, shape)
		ov, ok := o.Fields[key]
		if !ok {
			return hints
		}
		if ov.MaxLength > 0 {
			hints.MaxLength = ov.MaxLength
		}
		if ov.MinItems > 0 {
			hints.MinItems = ov.MinItems
		}
		if ov.MaxItems > 0 {
			hints.MaxItems = ov.MaxItems
		}
		if ov.ItemMaxLength > 0 {
			hints.ItemMaxLength = ov.ItemMaxLength
		}
		return hints
	}
}
