package render

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/BenGOaff/tipote-pages/pkg/schema"
)

// BrandTokens is the optional flat design-token mapping applied as the final
// substitution pass. Tokens share the {{name}} marker syntax and resolve only
// where content data did not claim the key.
type BrandTokens map[string]string

// Options carries the per-render collaborators. The zero value renders with
// no clamping, no metadata policy, no tokens, and no sanitizing.
type Options struct {
	// Schema clamps oversized values. Advisory: values are truncated, never
	// rejected. Nil disables clamping.
	Schema *schema.ContentSchema

	// Metadata supplies per-field source/fallback policy.
	Metadata schema.Metadata

	// Tokens is the resolved brand-token mapping.
	Tokens BrandTokens

	// Sanitizer, when set, is applied to every substituted content value.
	// Brand tokens are deployment-controlled and bypass it.
	Sanitizer *bluemonday.Policy
}

func (st *state) clean(v string) string {
	if st.opts.Sanitizer != nil {
		return st.opts.Sanitizer.Sanitize(v)
	}
	return v
}

func (st *state) clampScalar(key, v string) string {
	v = st.clean(v)
	if st.opts.Schema == nil {
		return v
	}
	if f, ok := st.opts.Schema.Field(key); ok && f.Type == schema.TypeString {
		return truncate(v, f.MaxLength)
	}
	return v
}

func (st *state) clampItem(sectionKey, v string) string {
	v = st.clean(v)
	if st.opts.Schema == nil {
		return v
	}
	if f, ok := st.opts.Schema.Field(sectionKey); ok && f.Type == schema.TypeStringList {
		return truncate(v, f.ItemMaxLength)
	}
	return v
}

func (st *state) clampNested(sectionKey, fieldKey, v string) string {
	v = st.clean(v)
	if st.opts.Schema == nil {
		return v
	}
	sec, ok := st.opts.Schema.Field(sectionKey)
	if !ok || sec.Type != schema.TypeObjectList {
		return v
	}
	for _, n := range sec.Fields {
		if n.Key == fieldKey {
			return truncate(v, n.MaxLength)
		}
	}
	return v
}

// truncate clamps by rune count; content is French text and byte truncation
// would split accented characters.
func truncate(v string, max int) string {
	if max <= 0 {
		return v
	}
	runes := []rune(v)
	if len(runes) <= max {
		return v
	}
	return string(runes[:max])
}
