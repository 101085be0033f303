package render

import theme "github.com/goliatone/go-theme"

// TokensFromSelection flattens a resolved theme selection into brand tokens:
// manifest tokens first, then the selected variant's overrides, then the
// explicit per-call tokens, later layers winning.
func TokensFromSelection(selection *theme.Selection, explicit BrandTokens) BrandTokens {
	out := BrandTokens{}
	if selection != nil && selection.Manifest != nil {
		for name, value := range selection.Manifest.Tokens {
			out[name] = value
		}
		if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
			for name, value := range variant.Tokens {
				out[name] = value
			}
		}
	}
	for name, value := range explicit {
		out[name] = value
	}
	return out
}
