package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meannnn/MindM/internal/pipeline"
	"github.com/meannnn/MindM/internal/platform/logger"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		templateID string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "render [record.json]",
		Short: "Render a teaching design record into a Word document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := opts.templates()
			if err != nil {
				return err
			}
			if _, err := reg.EnsureAll(false); err != nil {
				return err
			}
			candidate, err := readRecord(args[0])
			if err != nil {
				return err
			}
			if templateID == "" {
				templateID = reg.DefaultID()
			}
			if outPath == "" {
				base := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				outPath = base + ".docx"
			}

			pipe := pipeline.New(logger.Nop(), nil, reg, pipeline.Options{})
			doc, report, err := pipe.RenderRecord(cmd.Context(), candidate, templateID, outPath)
			if report != nil {
				for _, e := range report.Errors() {
					cmd.Printf("error: %s\n", e)
				}
				for _, w := range report.Warnings() {
					cmd.Printf("warning: %s\n", w)
				}
			}
			if err != nil {
				return err
			}
			cmd.Printf("wrote %s (%d bytes, template %s)\n", doc.Path, doc.Size, templateID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&templateID, "template", "t", "", "template id (default from config)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <record>.docx)")
	return cmd
}
