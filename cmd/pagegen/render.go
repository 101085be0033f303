package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/BenGOaff/tipote-pages/pkg/engine"
	"github.com/BenGOaff/tipote-pages/pkg/render"
)

var (
	renderMode    string
	renderVariant string
	contentPath   string
	tokensPath    string
	outputPath    string
)

var renderCmd = &cobra.Command{
	Use:   "render kind/templateId",
	Short: "Render one template with content data and brand tokens",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, templateID, err := splitTemplateSpec(args[0])
		if err != nil {
			return err
		}
		mode, err := render.ParseMode(renderMode)
		if err != nil {
			return err
		}

		var content render.ContentData
		if contentPath != "" {
			if err := readJSON(contentPath, &content); err != nil {
				return err
			}
		}
		var tokens render.BrandTokens
		if tokensPath != "" {
			if err := readJSON(tokensPath, &tokens); err != nil {
				return err
			}
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		result, err := eng.Render(cmd.Context(), engine.Request{
			Kind:        kind,
			TemplateID:  templateID,
			Mode:        mode,
			VariantID:   renderVariant,
			Content:     content,
			BrandTokens: tokens,
		})
		if err != nil {
			return err
		}

		if outputPath != "" {
			if err := os.WriteFile(outputPath, []byte(result.HTML), 0o644); err != nil {
				return err
			}
			fmt.Printf("HTML written to %s\n", outputPath)
			return nil
		}
		fmt.Println(result.HTML)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&renderMode, "mode", "preview", "render mode: preview or kit")
	renderCmd.Flags().StringVar(&renderVariant, "variant", "", "override the variant chosen by the mode")
	renderCmd.Flags().StringVar(&contentPath, "content", "", "JSON content data file")
	renderCmd.Flags().StringVar(&tokensPath, "tokens", "", "JSON brand tokens file")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (stdout if empty)")
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
