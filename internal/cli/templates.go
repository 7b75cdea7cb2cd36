package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage the built-in Word templates",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in templates to the template directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := opts.templates()
			if err != nil {
				return err
			}
			written, err := reg.EnsureAll(force)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				cmd.Printf("templates already present in %s\n", reg.Dir())
				return nil
			}
			for _, p := range written {
				cmd.Printf("wrote %s\n", p)
			}
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing template files")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List template variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, _, err := opts.templates()
			if err != nil {
				return err
			}
			for _, info := range reg.List() {
				mark := " "
				if info.ID == reg.DefaultID() {
					mark = "*"
				}
				state := "missing"
				if info.Available {
					state = "ok"
				}
				cmd.Printf("%s %-10s %-8s %s\n", mark, info.ID, state, info.Name)
			}
			return nil
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [template-id]",
		Short: "Show the placeholders a template uses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := opts.templates()
			if err != nil {
				return err
			}
			review, err := reg.Review(args[0])
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(review, "", "  ")
			if err != nil {
				return fmt.Errorf("encode review: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}

	cmd.AddCommand(initCmd, listCmd, inspectCmd)
	return cmd
}
