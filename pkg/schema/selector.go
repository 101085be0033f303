package schema

// SelectUserFacing filters schema fields down to those a user may edit:
// fields whose metadata source is user or user_or_ai. AI-only fields stay out
// of editing forms but remain part of the schema the renderer understands.
// Field order is preserved.
func SelectUserFacing(s ContentSchema, meta Metadata) []FieldSpec {
	out := make([]FieldSpec, 0, len(s.Fields))
	for _, f := range s.Fields {
		switch meta.Lookup(f.Key).Source {
		case SourceUser, SourceUserOrAI:
			out = append(out, f)
		}
	}
	return out
}
