package engine

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/BenGOaff/tipote-pages/pkg/render"
	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/store"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

const layoutText = `<h1 style="color: {{couleur_primaire}}">{{hero_titre}}</h1>
<ul>{{#benefices}}<li>{{.}}</li>{{/benefices}}</ul>
<!-- IF preuve_sociale --><p>{{preuve_sociale}}</p><!-- ENDIF preuve_sociale -->`

const kitText = `<h1 style="color: {{couleur_primaire}}">{{hero_titre}}</h1>
<ul>{{#benefices}}<li>{{.}}</li>{{/benefices}}</ul>
<!-- IF preuve_sociale --><p>{{preuve_sociale}}</p><!-- ENDIF preuve_sociale -->
<!-- IF mentions_legales --><footer>{{mentions_legales}}</footer><!-- ENDIF mentions_legales -->`

func testTemplates() fstest.MapFS {
	return fstest.MapFS{
		"capture/atelier/layout.html": {Data: []byte(layoutText)},
		"capture/atelier/kit.html":    {Data: []byte(kitText)},
		"vente/offre/layout.html":     {Data: []byte(`<h1>{{hero_titre}}</h1>`)},
		"vente/casse/layout.html":     {Data: []byte(`{{#faq}}<h3>{{question}}</h3>`)},
	}
}

func newTestEngine(t *testing.T, options ...Option) *Engine {
	t.Helper()
	opts := append([]Option{
		WithTemplates(store.NewFSStore(testTemplates())),
		WithSchemaStore(store.NewSchemaStore(t.TempDir())),
	}, options...)
	return New(opts...)
}

func TestRenderPreviewUsesLayoutVariant(t *testing.T) {
	eng := newTestEngine(t)
	result, err := eng.Render(context.Background(), Request{
		Kind:       template.KindCapture,
		TemplateID: "atelier",
		Mode:       render.ModePreview,
		Content: render.ContentData{
			"hero_titre": "Atelier gratuit",
			"benefices":  []string{"Clarté", "Méthode"},
		},
		BrandTokens: render.BrandTokens{"couleur_primaire": "#123456"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(result.HTML, "<li>Clarté</li><li>Méthode</li>") {
		t.Fatalf("sections not expanded: %q", result.HTML)
	}
	if !strings.Contains(result.HTML, "#123456") {
		t.Fatalf("brand token not applied: %q", result.HTML)
	}
	if strings.Contains(result.HTML, "mentions_legales") {
		t.Fatalf("preview should use the layout document, got kit content")
	}
}

func TestRenderKitUsesKitVariant(t *testing.T) {
	eng := newTestEngine(t)
	result, err := eng.Render(context.Background(), Request{
		Kind:       template.KindCapture,
		TemplateID: "atelier",
		Mode:       render.ModeKit,
		Content: render.ContentData{
			"hero_titre":       "Atelier gratuit",
			"benefices":        []string{"Clarté"},
			"mentions_legales": "SIRET 123",
		},
		BrandTokens: render.BrandTokens{"couleur_primaire": "#123456"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(result.HTML, "<footer>SIRET 123</footer>") {
		t.Fatalf("kit conditional missing: %q", result.HTML)
	}
}

func TestRenderKitVariantMissingIsNotFound(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Render(context.Background(), Request{
		Kind:       template.KindVente,
		TemplateID: "offre",
		Mode:       render.ModeKit,
		Content:    render.ContentData{"hero_titre": "x"},
	})
	var notFound *template.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *template.NotFoundError, got %T: %v", err, err)
	}
}

func TestRenderVariantOverride(t *testing.T) {
	eng := newTestEngine(t)
	result, err := eng.Render(context.Background(), Request{
		Kind:       template.KindCapture,
		TemplateID: "atelier",
		Mode:       render.ModePreview,
		VariantID:  string(template.VariantKit),
		Content: render.ContentData{
			"hero_titre":       "x",
			"mentions_legales": "SIRET 123",
		},
		BrandTokens: render.BrandTokens{"couleur_primaire": "#000"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(result.HTML, "<footer>SIRET 123</footer>") {
		t.Fatalf("variant override ignored: %q", result.HTML)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Render(context.Background(), Request{
		Kind:       "newsletter",
		TemplateID: "atelier",
		Mode:       render.ModePreview,
	})
	if err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestRenderClampsWithStoredSchema(t *testing.T) {
	schemas := store.NewSchemaStore(t.TempDir())
	if err := schemas.Write(schema.ContentSchema{
		Kind:       template.KindVente,
		TemplateID: "offre",
		Fields: []schema.FieldSpec{
			{Key: "hero_titre", Type: schema.TypeString, MaxLength: 4},
		},
	}); err != nil {
		t.Fatalf("seed schema: %v", err)
	}

	eng := New(
		WithTemplates(store.NewFSStore(testTemplates())),
		WithSchemaStore(schemas),
	)
	result, err := eng.Render(context.Background(), Request{
		Kind:       template.KindVente,
		TemplateID: "offre",
		Mode:       render.ModePreview,
		Content:    render.ContentData{"hero_titre": "Immanquable"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.HTML != "<h1>Imma</h1>" {
		t.Fatalf("schema clamp not applied: %q", result.HTML)
	}
}

type stubSelector struct {
	selection *theme.Selection
}

func (s *stubSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	return s.selection, nil
}

func TestRenderThemeTokens(t *testing.T) {
	selector := &stubSelector{selection: &theme.Selection{
		Theme: "coaching",
		Manifest: &theme.Manifest{
			Name:    "coaching",
			Version: "1.0.0",
			Tokens:  map[string]string{"couleur_primaire": "#0f62fe"},
		},
	}}

	eng := newTestEngine(t, WithThemeSelector(selector, "coaching", ""))
	result, err := eng.Render(context.Background(), Request{
		Kind:       template.KindCapture,
		TemplateID: "atelier",
		Mode:       render.ModePreview,
		Content:    render.ContentData{"hero_titre": "x"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(result.HTML, "#0f62fe") {
		t.Fatalf("theme token not resolved: %q", result.HTML)
	}
}

func TestInferAll(t *testing.T) {
	dir := t.TempDir()
	eng := New(
		WithTemplates(store.NewFSStore(testTemplates())),
		WithSchemaStore(store.NewSchemaStore(dir)),
	)

	results, err := eng.InferAll(context.Background())
	if err != nil {
		t.Fatalf("infer all: %v", err)
	}

	statuses := map[string]InferStatus{}
	for _, r := range results {
		statuses[string(r.Kind)+"/"+r.TemplateID] = r.Status
	}
	if statuses["capture/atelier"] != StatusGenerated {
		t.Fatalf("capture/atelier: %v", statuses)
	}
	if statuses["vente/offre"] != StatusGenerated {
		t.Fatalf("vente/offre: %v", statuses)
	}
	if statuses["vente/casse"] != StatusFailed {
		t.Fatalf("malformed template must fail, got %v", statuses["vente/casse"])
	}

	// Second run: existing files are left alone, byte for byte.
	path := store.NewSchemaStore(dir).Path(template.KindCapture, "atelier")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	results, err = eng.InferAll(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	for _, r := range results {
		if r.TemplateID != "casse" && r.Status != StatusExists {
			t.Fatalf("%s/%s: expected exists, got %s", r.Kind, r.TemplateID, r.Status)
		}
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("second run modified an existing schema file")
	}
}

func TestExportSchema(t *testing.T) {
	eng := newTestEngine(t)
	out, err := eng.ExportSchema(template.KindCapture, "atelier")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, needle := range []string{`"hero_titre"`, `"benefices"`, `"maxLength"`} {
		if !strings.Contains(string(out), needle) {
			t.Fatalf("export missing %s:\n%s", needle, out)
		}
	}
}

func TestEngineRequiresTemplateStore(t *testing.T) {
	eng := New()
	if _, err := eng.Render(context.Background(), Request{Kind: template.KindCapture, TemplateID: "x", Mode: render.ModePreview}); err == nil {
		t.Fatalf("expected configuration error")
	}
	if _, err := eng.InferAll(context.Background()); err == nil {
		t.Fatalf("expected configuration error")
	}
}
