package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BenGOaff/tipote-pages/pkg/engine"
	"github.com/BenGOaff/tipote-pages/pkg/infer"
	"github.com/BenGOaff/tipote-pages/pkg/store"
)

var (
	templatesDir string
	schemasDir   string
	overridePath string
	verbose      bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pagegen",
	Short: "Schema generation and rendering for hosted page templates",
	Long: `pagegen is the offline tooling around the hosted-page engine:

  - infer derives a content schema for every template in the store,
    skipping templates whose schema file already exists
  - render fills one template with content data and brand tokens
  - export publishes a content schema as an OpenAPI schema for the
    content generator`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&templatesDir, "templates", "templates", "template tree root")
	rootCmd.PersistentFlags().StringVar(&schemasDir, "schemas", "schemas", "schema store root")
	rootCmd.PersistentFlags().StringVar(&overridePath, "overrides", "", "YAML size-hint override table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")

	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(exportCmd)
}

func newEngine() (*engine.Engine, error) {
	policy := infer.DefaultNamingPolicy
	if overridePath != "" {
		f, err := os.Open(overridePath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		overrides, err := infer.LoadOverrides(f)
		if err != nil {
			return nil, err
		}
		policy = infer.WithOverrides(policy, overrides)
	}

	return engine.New(
		engine.WithTemplates(store.NewFSStore(os.DirFS(templatesDir))),
		engine.WithSchemaStore(store.NewSchemaStore(schemasDir)),
		engine.WithNamingPolicy(policy),
	), nil
}
