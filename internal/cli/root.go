// Package cli holds the mindm command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/meannnn/MindM/internal/config"
	"github.com/meannnn/MindM/internal/platform/logger"
	"github.com/meannnn/MindM/internal/templates"
)

type rootOptions struct {
	configPath string
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.LoadFile(o.configPath)
	}
	return config.Load()
}

func (o *rootOptions) templates() (*templates.Registry, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	reg, err := templates.NewRegistry(logger.Nop(), cfg.Templates.Dir, cfg.Templates.DefaultID)
	if err != nil {
		return nil, nil, err
	}
	return reg, cfg, nil
}

func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "mindm",
		Short: "Teaching design generation service",
		Long: `mindm turns uploaded lesson material (.docx) into a structured teaching
design: it extracts the text, asks the language model for a design record,
validates it and renders it into a Word template.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config path (default $MINDM_CONFIG or ./config/config.yaml)")

	root.AddCommand(
		newServeCmd(opts, version),
		newTemplatesCmd(opts),
		newValidateCmd(),
		newExtractCmd(),
		newRenderCmd(opts),
		newVersionCmd(version),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, version string, args []string) int {
	root := NewRootCmd(version)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("Error:", err)
		return 1
	}
	return 0
}
