package schema

// Source records who supplies a field's value.
type Source string

const (
	SourceUser     Source = "user"
	SourceAI       Source = "ai"
	SourceUserOrAI Source = "user_or_ai"
)

// Fallback is the policy applied when a field is absent from content data.
type Fallback string

const (
	// FallbackRemove omits the field's conditional block in kit renders.
	FallbackRemove Fallback = "remove"
	// FallbackEmpty renders an empty string, keeping surrounding structure.
	FallbackEmpty Fallback = "empty"
	// FallbackRequired makes absence a render-time error in kit mode and a
	// visible placeholder in preview mode.
	FallbackRequired Fallback = "required"
)

// FieldMetadata layers editorial policy on top of an inferred field spec.
type FieldMetadata struct {
	Source   Source   `json:"source"`
	Fallback Fallback `json:"fallback"`
}

// Metadata maps top-level field keys to their editorial policy. Fields
// without an entry default to SourceUser and FallbackEmpty.
type Metadata map[string]FieldMetadata

// Lookup returns the metadata for key, falling back to the defaults.
func (m Metadata) Lookup(key string) FieldMetadata {
	if m != nil {
		if fm, ok := m[key]; ok {
			if fm.Source == "" {
				fm.Source = SourceUser
			}
			if fm.Fallback == "" {
				fm.Fallback = FallbackEmpty
			}
			return fm
		}
	}
	return FieldMetadata{Source: SourceUser, Fallback: FallbackEmpty}
}
