package engine

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/BenGOaff/tipote-pages/pkg/infer"
	"github.com/BenGOaff/tipote-pages/pkg/store"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

// InferStatus classifies the outcome of one template in a batch run.
type InferStatus string

const (
	// StatusGenerated means a new schema file was written.
	StatusGenerated InferStatus = "generated"
	// StatusExists means a schema file was already present and was left
	// untouched; hand edits survive re-generation.
	StatusExists InferStatus = "exists"
	// StatusFailed means inference or persistence failed; Err carries the
	// cause.
	StatusFailed InferStatus = "failed"
)

// InferResult is the outcome for one (kind, templateId).
type InferResult struct {
	Kind       template.Kind
	TemplateID string
	Status     InferStatus
	Err        error
}

const batchParallelism = 4

// InferAll runs the inferencer over every template in the store and persists
// each schema that does not exist yet. Templates are processed in parallel;
// writes serialize per file inside the schema store. Individual failures are
// reported per template instead of aborting the batch, so one malformed
// document never hides the state of the rest.
func (e *Engine) InferAll(ctx context.Context) ([]InferResult, error) {
	if e.templates == nil {
		return nil, errors.New("engine: template store is required")
	}
	if e.schemas == nil {
		return nil, errors.New("engine: schema store is required")
	}

	refs, err := e.templates.List()
	if err != nil {
		return nil, err
	}

	results := make([]InferResult, len(refs))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(batchParallelism)

	for i, ref := range refs {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.inferOne(ref.Kind, ref.TemplateID)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) inferOne(kind template.Kind, templateID string) InferResult {
	result := InferResult{Kind: kind, TemplateID: templateID}

	// Check-then-write: the existence check keeps the common path quiet, the
	// store's exclusive create closes the race between two generators.
	if e.schemas.Exists(kind, templateID) {
		result.Status = StatusExists
		return result
	}

	doc, err := e.templates.Resolve(template.Ref{Kind: kind, TemplateID: templateID, Variant: template.VariantLayout})
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	cs, err := infer.Infer(doc, infer.WithNamingPolicy(e.naming))
	if err != nil {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	if err := e.schemas.Write(cs); err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			result.Status = StatusExists
			return result
		}
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	result.Status = StatusGenerated
	return result
}
