package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palsnap/internal/render"
)

func newTemplatesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage the built-in templates",
		Long: `List and dump the built-in templates rendered after every palette change.

A template dumped into the templates directory of the config dir replaces the
built-in version the next time a palette is rendered.

Examples:
  palsnap templates list
  palsnap templates dump styles.css.tmpl
  palsnap templates dump --force`,
	}
	cmd.AddCommand(newTemplatesListCmd(root), newTemplatesDumpCmd(root))
	return cmd
}

func newTemplatesListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in templates and their overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := render.NewLoader(root.paths().TemplateDir())
			names, err := loader.List()
			if err != nil {
				return err
			}

			table := NewTable([]string{"TEMPLATE", "SOURCE"})
			for _, name := range names {
				source := "built-in"
				if _, err := os.Stat(loader.CustomPath(name)); err == nil {
					source = loader.CustomPath(name)
				}
				table.AddRow([]string{name, source})
			}
			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}

func newTemplatesDumpCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "dump [template]...",
		Short: "Copy built-in templates into the config dir for editing",
		Long:  "Copy built-in templates into the config dir for editing. Without arguments every built-in template is dumped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := render.NewLoader(root.paths().TemplateDir())
			names, err := loader.List()
			if err != nil {
				return err
			}
			for _, name := range args {
				if !slices.Contains(names, name) {
					return fmt.Errorf("unknown built-in template %q", name)
				}
			}
			if len(args) > 0 {
				names = args
			}

			var errs []error
			for _, name := range names {
				out, err := loader.Dump(name, force)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing custom templates")
	return cmd
}
