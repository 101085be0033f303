// Package store provides the on-disk collaborators: the read-only template
// tree and the schema file store with its no-overwrite guarantee.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// FSStore serves template documents from an fs.FS laid out as
// <kind>/<templateId>/<variant>.html. Documents are deployment artifacts;
// reads go through an immutable cache that is never invalidated.
type FSStore struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[template.Ref]template.Document
}

// NewFSStore wraps a template tree. The filesystem must be read-only for the
// lifetime of the store.
func NewFSStore(fsys fs.FS) *FSStore {
	return &FSStore{
		fsys:  fsys,
		cache: make(map[template.Ref]template.Document),
	}
}

// Resolve implements template.Store.
func (s *FSStore) Resolve(ref template.Ref) (template.Document, error) {
	s.mu.RLock()
	doc, ok := s.cache[ref]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}

	raw, err := fs.ReadFile(s.fsys, documentPath(ref))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return template.Document{}, &template.NotFoundError{Ref: ref}
		}
		return template.Document{}, fmt.Errorf("store: read %s: %w", ref, err)
	}

	doc = template.Document{Ref: ref, Text: string(raw)}

	s.mu.Lock()
	s.cache[ref] = doc
	s.mu.Unlock()
	return doc, nil
}

// List implements template.Store: every (kind, templateId) pair in lexical
// order, variant left empty.
func (s *FSStore) List() ([]template.Ref, error) {
	var refs []template.Ref
	for _, kind := range []template.Kind{template.KindCapture, template.KindVente} {
		entries, err := fs.ReadDir(s.fsys, string(kind))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("store: list %s: %w", kind, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			refs = append(refs, template.Ref{Kind: kind, TemplateID: entry.Name()})
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Kind != refs[j].Kind {
			return refs[i].Kind < refs[j].Kind
		}
		return refs[i].TemplateID < refs[j].TemplateID
	})
	return refs, nil
}

func documentPath(ref template.Ref) string {
	return path.Join(string(ref.Kind), ref.TemplateID, string(ref.Variant)+".html")
}
