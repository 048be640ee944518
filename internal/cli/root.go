// Package cli provides the command-line interface for palsnap.
package cli

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/palsnap/internal/config"
	"github.com/jmylchreest/palsnap/internal/version"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	verbose   bool
	quiet     bool
	configDir string
	cacheDir  string
}

// NewRootCmd builds the palsnap command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaults := config.DefaultPaths()

	cmd := &cobra.Command{
		Use:   version.Name,
		Short: "Generate a colour palette from a wallpaper",
		Long: `palsnap extracts a background, a foreground, a five step gradient and a set
of accents matched to your reference colours from an image, then renders the
palette through your templates and refreshes the programs that use them.

Reference accents are read from palsnap.toml in the config directory.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate(version.String() + "\n")

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")
	pf.StringVar(&opts.configDir, "config-dir", defaults.Config, "directory holding palsnap.toml, templates.toml and templates")
	pf.StringVar(&opts.cacheDir, "cache-dir", defaults.Cache, "directory holding cached palettes, images and rendered output")

	cmd.AddCommand(newGenCmd(opts))
	cmd.AddCommand(newCacheCmd(opts))
	cmd.AddCommand(newTemplatesCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (o *rootOptions) paths() config.Paths {
	return config.Paths{Config: o.configDir, Cache: o.cacheDir}
}

// logger returns the root logger writing to the command's stderr.
func (o *rootOptions) logger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	switch {
	case o.quiet:
		level = hclog.Error
	case o.verbose:
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   version.Name,
		Output: cmd.ErrOrStderr(),
		Level:  level,
		Color:  hclog.AutoColor,
	})
}
