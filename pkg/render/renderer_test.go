package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

func doc(text string) template.Document {
	return template.Document{
		Ref:  template.Ref{Kind: template.KindVente, TemplateID: "offre", Variant: template.VariantLayout},
		Text: text,
	}
}

func TestConditionalRemoval(t *testing.T) {
	const fragment = `<!-- IF cta_url --><a href="{{cta_url}}">{{cta_text}}</a><!-- ENDIF cta_url -->`

	got, err := Render(doc(fragment), ModePreview, ContentData{"cta_text": "Buy now"}, Options{})
	if err != nil {
		t.Fatalf("render without cta_url: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}

	got, err = Render(doc(fragment), ModePreview, ContentData{
		"cta_url":  "https://x.com",
		"cta_text": "Buy now",
	}, Options{})
	if err != nil {
		t.Fatalf("render with cta_url: %v", err)
	}
	if got != `<a href="https://x.com">Buy now</a>` {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestStringListExpansion(t *testing.T) {
	got, err := Render(doc(`{{#tags}}<span>{{.}}</span>{{/tags}}`), ModePreview, ContentData{
		"tags": []string{"a", "b"},
	}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<span>a</span><span>b</span>` {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestObjectListExpansion(t *testing.T) {
	got, err := Render(doc(`{{#faq}}<h3>{{q}}</h3><p>{{a}}</p>{{/faq}}`), ModePreview, ContentData{
		"faq": []map[string]string{
			{"q": "Q1", "a": "A1"},
			{"q": "Q2", "a": "A2"},
		},
	}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<h3>Q1</h3><p>A1</p><h3>Q2</h3><p>A2</p>` {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestObjectListFromDecodedJSON(t *testing.T) {
	got, err := Render(doc(`{{#faq}}<h3>{{q}}</h3>{{/faq}}`), ModePreview, ContentData{
		"faq": []any{
			map[string]any{"q": "Q1"},
			map[string]any{"q": "Q2"},
		},
	}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<h3>Q1</h3><h3>Q2</h3>` {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestEmptySectionEmitsNothing(t *testing.T) {
	for name, content := range map[string]ContentData{
		"absent":      {},
		"empty slice": {"tags": []string{}},
		"wrong shape": {"tags": "pas une liste"},
	} {
		got, err := Render(doc(`avant {{#tags}}<span>{{.}}</span>{{/tags}}après`), ModePreview, content, Options{})
		if err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if got != "avant après" {
			t.Fatalf("%s: unexpected output: %q", name, got)
		}
	}
}

func TestTruncationNotFailure(t *testing.T) {
	cs := schema.ContentSchema{
		Kind:       template.KindVente,
		TemplateID: "offre",
		Fields: []schema.FieldSpec{
			{Key: "titre", Type: schema.TypeString, MaxLength: 5},
		},
	}
	for _, mode := range []Mode{ModePreview, ModeKit} {
		got, err := Render(doc(`{{titre}}`), mode, ContentData{"titre": "métamorphose"}, Options{Schema: &cs})
		if err != nil {
			t.Fatalf("%s: render: %v", mode, err)
		}
		if got != "métam" {
			t.Fatalf("%s: expected rune-truncated value, got %q", mode, got)
		}
	}
}

func TestItemTruncation(t *testing.T) {
	cs := schema.ContentSchema{
		Kind:       template.KindVente,
		TemplateID: "offre",
		Fields: []schema.FieldSpec{
			{Key: "tags", Type: schema.TypeStringList, MinItems: 1, MaxItems: 6, ItemMaxLength: 3},
		},
	}
	got, err := Render(doc(`{{#tags}}[{{.}}]{{/tags}}`), ModeKit, ContentData{"tags": []string{"croissance"}}, Options{Schema: &cs})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[cro]" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestModeStrictnessDifference(t *testing.T) {
	meta := schema.Metadata{"titre": {Source: schema.SourceUser, Fallback: schema.FallbackRequired}}
	content := ContentData{}

	got, err := Render(doc(`<h1>{{titre}}</h1>`), ModePreview, content, Options{Metadata: meta})
	if err != nil {
		t.Fatalf("preview render: %v", err)
	}
	if got != "<h1>[missing: titre]</h1>" {
		t.Fatalf("expected visible placeholder, got %q", got)
	}

	_, err = Render(doc(`<h1>{{titre}}</h1>`), ModeKit, content, Options{Metadata: meta})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected *RenderError, got %T: %v", err, err)
	}
	if len(renderErr.Missing) != 1 || renderErr.Missing[0] != "titre" {
		t.Fatalf("unexpected missing fields: %v", renderErr.Missing)
	}
}

func TestRequiredSectionMissingFailsKit(t *testing.T) {
	cases := []struct {
		name string
		text string
		key  string
	}{
		{"string list", `{{#tags}}<span>{{.}}</span>{{/tags}}`, "tags"},
		{"object list", `{{#tarifs}}<h3>{{nom}}</h3>{{/tarifs}}`, "tarifs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta := schema.Metadata{tc.key: {Source: schema.SourceUser, Fallback: schema.FallbackRequired}}

			_, err := Render(doc(tc.text), ModeKit, ContentData{}, Options{Metadata: meta})
			var renderErr *RenderError
			if !errors.As(err, &renderErr) {
				t.Fatalf("expected *RenderError, got %T: %v", err, err)
			}
			if len(renderErr.Missing) != 1 || renderErr.Missing[0] != tc.key {
				t.Fatalf("unexpected missing fields: %v", renderErr.Missing)
			}

			got, err := Render(doc(tc.text), ModePreview, ContentData{}, Options{Metadata: meta})
			if err != nil {
				t.Fatalf("preview render: %v", err)
			}
			if got != "[missing: "+tc.key+"]" {
				t.Fatalf("expected visible placeholder, got %q", got)
			}
		})
	}
}

func TestRequiredKeyBehindFalsyConditional(t *testing.T) {
	const fragment = `<!-- IF note --><p>{{note}}</p><!-- ENDIF note -->`
	meta := schema.Metadata{"note": {Source: schema.SourceUser, Fallback: schema.FallbackRequired}}

	_, err := Render(doc(fragment), ModeKit, ContentData{}, Options{Metadata: meta})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected *RenderError, got %T: %v", err, err)
	}
	if len(renderErr.Missing) != 1 || renderErr.Missing[0] != "note" {
		t.Fatalf("unexpected missing fields: %v", renderErr.Missing)
	}

	got, err := Render(doc(fragment), ModePreview, ContentData{}, Options{Metadata: meta})
	if err != nil {
		t.Fatalf("preview render: %v", err)
	}
	if got != "[missing: note]" {
		t.Fatalf("expected visible placeholder, got %q", got)
	}

	// A satisfied required field renders normally in both modes.
	got, err = Render(doc(fragment), ModeKit, ContentData{"note": "lu"}, Options{Metadata: meta})
	if err != nil {
		t.Fatalf("kit render with value: %v", err)
	}
	if got != "<p>lu</p>" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestBrandTokenPass(t *testing.T) {
	got, err := Render(doc(`<style>h1 { color: {{couleur_primaire}}; }</style><h1>{{titre}}</h1>`),
		ModeKit,
		ContentData{"titre": "Mon offre"},
		Options{Tokens: BrandTokens{"couleur_primaire": "#0f62fe"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<style>h1 { color: #0f62fe; }</style><h1>Mon offre</h1>` {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestBrandTokenInsideObjectListSection(t *testing.T) {
	got, err := Render(doc(`{{#cartes}}<div style="color: {{couleur_primaire}}">{{titre}}</div>{{/cartes}}`),
		ModeKit,
		ContentData{"cartes": []map[string]string{{"titre": "Un"}, {"titre": "Deux"}}},
		Options{Tokens: BrandTokens{"couleur_primaire": "#0f62fe"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `<div style="color: #0f62fe">Un</div><div style="color: #0f62fe">Deux</div>`
	if got != want {
		t.Fatalf("token not applied inside section: %q", got)
	}
}

func TestContentWinsOverToken(t *testing.T) {
	got, err := Render(doc(`{{titre}}`), ModePreview,
		ContentData{"titre": "contenu"},
		Options{Tokens: BrandTokens{"titre": "jeton"}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "contenu" {
		t.Fatalf("expected content value to win, got %q", got)
	}
}

func TestNoLeftoverMarkers(t *testing.T) {
	const text = `<h1>{{titre}}</h1>{{#tags}}<i>{{.}}</i>{{/tags}}<!-- IF note --><p>{{note}}</p><!-- ENDIF note -->`
	got, err := Render(doc(text), ModeKit, ContentData{
		"titre": "T",
		"tags":  []string{"a"},
		"note":  "n",
	}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, residue := range []string{"{{", "}}", "<!-- IF", "<!-- ENDIF"} {
		if strings.Contains(got, residue) {
			t.Fatalf("output contains residue %q: %q", residue, got)
		}
	}
}

func TestUnresolvedMarkerIsDefect(t *testing.T) {
	_, err := Render(doc(`{{mystere}}`), ModeKit, ContentData{}, Options{
		Metadata: schema.Metadata{"mystere": {Fallback: "inconnu"}},
	})
	if err != nil {
		t.Fatalf("unknown fallback should collapse to empty, got %v", err)
	}

	// A malformed marker survives parsing as text and must fail the render.
	_, err = Render(doc(`<p>{{oubli</p>`), ModeKit, ContentData{}, Options{})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected *RenderError for leftover marker, got %T: %v", err, err)
	}
	if len(renderErr.Unresolved) == 0 {
		t.Fatalf("expected unresolved markers to be reported")
	}
}

func TestOrdinaryCommentsAreNotResidue(t *testing.T) {
	got, err := Render(doc(`<!-- IFRAME embed --><h1>{{titre}}</h1><!-- ENDIFFY -->`),
		ModeKit, ContentData{"titre": "T"}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<!-- IFRAME embed --><h1>T</h1><!-- ENDIFFY -->` {
		t.Fatalf("comments must survive untouched: %q", got)
	}

	// A conditional marker smuggled in through a content value is residue.
	_, err = Render(doc(`<p>{{texte}}</p>`), ModeKit,
		ContentData{"texte": "<!-- IF x -->"}, Options{})
	var renderErr *RenderError
	if !errors.As(err, &renderErr) {
		t.Fatalf("expected *RenderError, got %T: %v", err, err)
	}
	if len(renderErr.Unresolved) == 0 {
		t.Fatalf("expected unresolved markers to be reported")
	}
}

func TestSyntaxErrorAtRender(t *testing.T) {
	_, err := Render(doc(`{{#faq}}<h3>{{q}}</h3>`), ModePreview, ContentData{}, Options{})
	var syntaxErr *template.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *template.SyntaxError, got %T: %v", err, err)
	}
}

func TestConditionalTruthiness(t *testing.T) {
	const fragment = `<!-- IF flag -->oui<!-- ENDIF flag -->`
	cases := []struct {
		name  string
		value any
		want  string
	}{
		{"absent", nil, ""},
		{"empty string", "", ""},
		{"false", false, ""},
		{"empty list", []string{}, ""},
		{"string", "x", "oui"},
		{"true", true, "oui"},
		{"list", []string{"x"}, "oui"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			content := ContentData{}
			if tc.value != nil {
				content["flag"] = tc.value
			}
			got, err := Render(doc(fragment), ModePreview, content, Options{})
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if got != tc.want {
				t.Fatalf("value %#v: got %q, want %q", tc.value, got, tc.want)
			}
		})
	}
}

func TestObjectElementFieldsNeverLeakAcrossElements(t *testing.T) {
	got, err := Render(doc(`{{#tarifs}}<h3>{{nom}}</h3><p>{{prix}}</p>{{/tarifs}}`), ModeKit, ContentData{
		"tarifs": []map[string]string{
			{"nom": "Essentiel", "prix": "290€"},
			{"nom": "Signature"},
		},
	}, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != `<h3>Essentiel</h3><p>290€</p><h3>Signature</h3><p></p>` {
		t.Fatalf("unexpected output: %q", got)
	}
}
