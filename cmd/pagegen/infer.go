package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BenGOaff/tipote-pages/pkg/engine"
	"github.com/BenGOaff/tipote-pages/pkg/store"
	"github.com/BenGOaff/tipote-pages/pkg/template"
)

var (
	inferForce string
	inferWatch bool
)

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Generate content schemas for every template in the store",
	Long: `infer walks the template tree and writes one schema JSON file per
(kind, templateId). Existing schema files are never overwritten so that
hand edits survive re-generation; use --force kind/templateId to delete
one schema file and regenerate it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		if inferForce != "" {
			if err := forceRegenerate(inferForce); err != nil {
				return err
			}
		}

		if err := runBatch(cmd.Context(), eng); err != nil {
			return err
		}
		if inferWatch {
			return watchTemplates(cmd.Context())
		}
		return nil
	},
}

func init() {
	inferCmd.Flags().StringVar(&inferForce, "force", "", "delete the schema for kind/templateId before regenerating")
	inferCmd.Flags().BoolVar(&inferWatch, "watch", false, "re-run inference when the template tree changes")
}

func runBatch(ctx context.Context, eng *engine.Engine) error {
	results, err := eng.InferAll(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		switch r.Status {
		case engine.StatusGenerated:
			logger.Info("schema generated",
				zap.String("kind", string(r.Kind)),
				zap.String("template", r.TemplateID))
		case engine.StatusExists:
			logger.Debug("schema exists, left untouched",
				zap.String("kind", string(r.Kind)),
				zap.String("template", r.TemplateID))
		case engine.StatusFailed:
			failed++
			logger.Error("inference failed",
				zap.String("kind", string(r.Kind)),
				zap.String("template", r.TemplateID),
				zap.Error(r.Err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("inference failed for %d template(s)", failed)
	}
	return nil
}

// forceRegenerate deletes one schema file after an interactive confirmation,
// so the next batch run recreates it. The engine-level no-overwrite invariant
// is untouched: deletion is a deliberate CLI act, never an engine behavior.
func forceRegenerate(spec string) error {
	kind, templateID, err := splitTemplateSpec(spec)
	if err != nil {
		return err
	}

	schemas := store.NewSchemaStore(schemasDir)
	if !schemas.Exists(kind, templateID) {
		logger.Info("no schema to remove",
			zap.String("kind", string(kind)),
			zap.String("template", templateID))
		return nil
	}

	confirmed := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Delete %s and regenerate? Hand edits will be lost.", schemas.Path(kind, templateID)),
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("aborted")
	}
	return schemas.Remove(kind, templateID)
}

func splitTemplateSpec(spec string) (template.Kind, string, error) {
	dir, id := filepath.Split(spec)
	kind, err := template.ParseKind(filepath.Clean(dir))
	if err != nil || id == "" {
		return "", "", fmt.Errorf("expected kind/templateId, got %q", spec)
	}
	return kind, id, nil
}

// watchTemplates re-runs the batch when template files change. Purely an
// authoring-loop convenience; the runtime engine never watches anything. A
// fresh engine is built per run so the immutable document cache cannot serve
// stale reads inside the authoring loop.
func watchTemplates(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(templatesDir); err != nil {
		return err
	}
	// fsnotify does not recurse; watch each kind/template directory too.
	for _, kind := range []template.Kind{template.KindCapture, template.KindVente} {
		kindDir := filepath.Join(templatesDir, string(kind))
		if err := watcher.Add(kindDir); err != nil {
			continue
		}
		entries, err := filepath.Glob(filepath.Join(kindDir, "*"))
		if err != nil {
			return err
		}
		for _, entry := range entries {
			_ = watcher.Add(entry)
		}
	}

	logger.Info("watching template tree", zap.String("dir", templatesDir))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Info("template change detected", zap.String("path", event.Name))
			eng, err := newEngine()
			if err != nil {
				return err
			}
			if err := runBatch(ctx, eng); err != nil {
				logger.Error("batch run failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", zap.Error(err))
		}
	}
}
