package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BenGOaff/tipote-pages/pkg/schema"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// ConflictError reports an attempt to overwrite an existing schema file.
// Generated schemas may be hand-edited afterwards and must survive
// re-generation, so overwriting is refused rather than skipped silently.
type ConflictError struct {
	Kind       template.Kind
	TemplateID string
	Path       string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("store: schema %s/%s already exists at %s", e.Kind, e.TemplateID, e.Path)
}

// SchemaStore keeps one JSON file per (kind, templateId) under a root
// directory, laid out as <kind>/<templateId>.json.
type SchemaStore struct {
	root string
}

// NewSchemaStore roots a schema store at dir. The directory is created on
// first write.
func NewSchemaStore(dir string) *SchemaStore {
	return &SchemaStore{root: dir}
}

// Path returns the file path backing one schema.
func (s *SchemaStore) Path(kind template.Kind, templateID string) string {
	return filepath.Join(s.root, string(kind), templateID+".json")
}

// Exists reports whether a schema file is already present.
func (s *SchemaStore) Exists(kind template.Kind, templateID string) bool {
	_, err := os.Stat(s.Path(kind, templateID))
	return err == nil
}

// Load reads and validates a schema file. Hand-edited files go through the
// JSON Schema check so drift is caught here instead of corrupting renders.
func (s *SchemaStore) Load(kind template.Kind, templateID string) (schema.ContentSchema, error) {
	raw, err := os.ReadFile(s.Path(kind, templateID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return schema.ContentSchema{}, fmt.Errorf("store: schema %s/%s: %w", kind, templateID, err)
		}
		return schema.ContentSchema{}, fmt.Errorf("store: read schema %s/%s: %w", kind, templateID, err)
	}
	out, err := schema.ValidateBytes(raw)
	if err != nil {
		return schema.ContentSchema{}, fmt.Errorf("store: schema %s/%s: %w", kind, templateID, err)
	}
	return out, nil
}

// Write persists a freshly inferred schema. An existing file is never
// overwritten: creation uses O_EXCL so two generators racing on the same
// template resolve to one writer and one *ConflictError, which is benign when
// both would produce byte-identical output.
func (s *SchemaStore) Write(cs schema.ContentSchema) error {
	if err := cs.Validate(); err != nil {
		return err
	}
	out, err := cs.Encode()
	if err != nil {
		return err
	}

	path := s.Path(cs.Kind, cs.TemplateID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("store: create schema dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return &ConflictError{Kind: cs.Kind, TemplateID: cs.TemplateID, Path: path}
		}
		return fmt.Errorf("store: create schema %s/%s: %w", cs.Kind, cs.TemplateID, err)
	}
	defer f.Close()

	if _, err := f.Write(out); err != nil {
		return fmt.Errorf("store: write schema %s/%s: %w", cs.Kind, cs.TemplateID, err)
	}
	return nil
}

// Remove deletes a schema file. Offline tooling uses this for explicit
// regeneration; the engine itself never calls it.
func (s *SchemaStore) Remove(kind template.Kind, templateID string) error {
	if err := os.Remove(s.Path(kind, templateID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: remove schema %s/%s: %w", kind, templateID, err)
	}
	return nil
}
