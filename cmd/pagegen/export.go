package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export kind/templateId",
	Short: "Publish a content schema as an OpenAPI schema for the content generator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, templateID, err := splitTemplateSpec(args[0])
		if err != nil {
			return err
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		out, err := eng.ExportSchema(kind, templateID)
		if err != nil {
			return err
		}
		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, out, 0o644); err != nil {
				return err
			}
			fmt.Printf("Schema written to %s\n", exportOutput)
			return nil
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (stdout if empty)")
}
