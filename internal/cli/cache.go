package cli

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/palsnap/internal/cache"
	"github.com/jmylchreest/palsnap/internal/colour"
)

// errClearNeedsConfirmation is returned by cache clear without --yes when
// there is no terminal to ask on.
var errClearNeedsConfirmation = errors.New("refusing to clear the cache without --yes when stdin is not a terminal")

func newCacheCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage saved palettes",
		Long: `Save, reload and manage palettes without extracting them again.

The most recent palette is always kept as the current one. Loading a cached
palette makes it current and renders your templates with it.`,
	}

	cmd.AddCommand(
		newCacheSetCmd(root),
		newCacheLoadCmd(root),
		newCacheRandomCmd(root),
		newCacheListCmd(root),
		newCacheRemoveCmd(root),
		newCacheRenameCmd(root),
		newCacheClearCmd(root),
	)
	return cmd
}

func (o *rootOptions) store() *cache.Store {
	return cache.NewStore(o.paths().PaletteDir())
}

func newCacheSetCmd(root *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "set <name>",
		Short: "Save the current palette under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.store().Set(args[0], force); err != nil {
				if errors.Is(err, cache.ErrExists) {
					return fmt.Errorf("%w (use --force to overwrite)", err)
				}
				return err
			}
			root.logger(cmd).Info("cached palette", "name", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing palette")
	return cmd
}

func newCacheLoadCmd(root *rootOptions) *cobra.Command {
	var skip bool
	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Make a cached palette current and render it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := root.store().Load(args[0])
			if err != nil {
				return err
			}
			return showAndRender(cmd, root, args[0], p, skip)
		},
	}
	cmd.Flags().BoolVar(&skip, "skip", false, "do not render templates")
	return cmd
}

func newCacheRandomCmd(root *rootOptions) *cobra.Command {
	var skip bool
	cmd := &cobra.Command{
		Use:   "random",
		Short: "Load a randomly chosen cached palette",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rng := rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 - palette choice, not security sensitive
			name, p, err := root.store().Random(rng)
			if err != nil {
				return err
			}
			return showAndRender(cmd, root, name, p, skip)
		},
	}
	cmd.Flags().BoolVar(&skip, "skip", false, "do not render templates")
	return cmd
}

func showAndRender(cmd *cobra.Command, root *rootOptions, name string, p *colour.Palette, skip bool) error {
	root.logger(cmd).Info("loaded cached palette", "name", name)
	if err := printPalette(cmd.OutOrStdout(), p, false); err != nil {
		return err
	}
	if skip {
		return nil
	}
	return renderPalette(cmd, root, p)
}

func newCacheListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := root.store()
			names, err := store.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d cached palettes in %s\n", len(names), store.Dir())
			if len(names) == 0 {
				return nil
			}

			table := NewTable([]string{"NAME", "MODE", "COLOURS", "IMAGE"})
			table.SetColumnMaxWidth(3, 60)
			for _, name := range names {
				p, err := store.Get(name)
				if err != nil {
					table.AddRow([]string{name, "?", "?", err.Error()})
					continue
				}
				table.AddRow([]string{name, string(p.Mode), fmt.Sprint(p.Colors.Len()), p.Image})
			}
			fmt.Fprint(out, "\n"+table.Render())
			return nil
		},
	}
}

func newCacheRemoveCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <name>...",
		Aliases: []string{"rm"},
		Short:   "Remove cached palettes",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.store().Remove(args...); err != nil {
				return err
			}
			root.logger(cmd).Info("removed cached palettes", "names", args)
			return nil
		},
	}
}

func newCacheRenameCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rename <old> <new>",
		Aliases: []string{"mv"},
		Short:   "Rename a cached palette",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := root.store().Rename(args[0], args[1]); err != nil {
				return err
			}
			root.logger(cmd).Info("renamed cached palette", "from", args[0], "to", args[1])
			return nil
		},
	}
}

func newCacheClearCmd(root *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached palette except the current one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := root.store()
			if !yes {
				if !isTerminal(cmd.InOrStdin()) {
					return errClearNeedsConfirmation
				}
				names, err := store.List()
				if err != nil {
					return err
				}
				ok, err := confirm(cmd, fmt.Sprintf("Remove %d cached palettes?", len(names)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cache operation canceled.")
					return nil
				}
			}

			n, err := store.Clear()
			if err != nil {
				return err
			}
			root.logger(cmd).Info("cleared cache", "removed", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on the command's input, defaulting to no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
