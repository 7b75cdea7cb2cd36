package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meannnn/MindM/internal/docx"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [file.docx]",
		Short: "Print the paragraph text of a Word document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := docx.ExtractFile(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
}
