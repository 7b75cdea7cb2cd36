package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meannnn/MindM/internal/design"
	"github.com/meannnn/MindM/internal/docx"
)

func newValidateCmd() *cobra.Command {
	var sourcePath string
	cmd := &cobra.Command{
		Use:   "validate [record.json]",
		Short: "Validate a teaching design record",
		Long: `Validate a teaching design record against the required fields and the
structure rules. The file may hold raw model output, including a fenced JSON
block. With --source, coverage warnings are computed against the material.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidate, err := readRecord(args[0])
			if err != nil {
				return err
			}
			var source string
			if sourcePath != "" {
				source, err = docx.ExtractFile(sourcePath)
				if err != nil {
					return fmt.Errorf("extract source: %w", err)
				}
			}

			report := design.Validate(candidate, source)
			for _, e := range report.Errors() {
				cmd.Printf("error: %s\n", e)
			}
			for _, w := range report.Warnings() {
				cmd.Printf("warning: %s\n", w)
			}
			if err := report.Err(); err != nil {
				return err
			}
			cmd.Printf("valid (%d warnings)\n", len(report.Warnings()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&sourcePath, "source", "s", "", "source .docx for coverage checks")
	return cmd
}

func readRecord(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	candidate, err := design.ParseCandidate(string(b))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return candidate, nil
}
