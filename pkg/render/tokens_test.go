package render

import (
	"testing"

	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"
)

func TestTokensFromSelection(t *testing.T) {
	selection := &theme.Selection{
		Theme:   "coaching",
		Variant: "sombre",
		Manifest: &theme.Manifest{
			Name:    "coaching",
			Version: "1.0.0",
			Tokens: map[string]string{
				"couleur_primaire": "#123456",
				"couleur_accent":   "#ff7a00",
			},
			Variants: map[string]theme.Variant{
				"sombre": {
					Tokens: map[string]string{
						"couleur_primaire": "#0b0d12",
					},
				},
			},
		},
	}

	got := TokensFromSelection(selection, BrandTokens{"couleur_accent": "#e8590c"})
	want := BrandTokens{
		"couleur_primaire": "#0b0d12", // variant override beats manifest
		"couleur_accent":   "#e8590c", // explicit token beats both
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("token merge mismatch (-want +got):\n%s", diff)
	}
}

func TestTokensFromSelectionNilSelection(t *testing.T) {
	got := TokensFromSelection(nil, BrandTokens{"police": "Inter"})
	if len(got) != 1 || got["police"] != "Inter" {
		t.Fatalf("expected explicit tokens only, got %v", got)
	}
}
