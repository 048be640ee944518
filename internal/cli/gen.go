package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmylchreest/palsnap/internal/cache"
	"github.com/jmylchreest/palsnap/internal/colour"
	"github.com/jmylchreest/palsnap/internal/config"
	"github.com/jmylchreest/palsnap/internal/image"
	"github.com/jmylchreest/palsnap/internal/pipeline"
	"github.com/jmylchreest/palsnap/internal/render"
)

type genOptions struct {
	root      *rootOptions
	skip      bool
	cacheName string
	force     bool
	accents   string
	json      bool
}

func newGenCmd(root *rootOptions) *cobra.Command {
	o := &genOptions{root: root}

	cmd := &cobra.Command{
		Use:   "gen <image|directory|url>",
		Short: "Generate a palette from an image",
		Long: `Generate a palette from an image and render it through your templates.

A directory picks a random image inside it. An http(s) URL is downloaded once
into the image cache. Settings can also be set in settings.toml or with
PALSNAP_* environment variables; flags take precedence.

Examples:
  # Dark palette from a wallpaper
  palsnap gen --mode dark ~/Pictures/forest.jpg

  # Random wallpaper, accents pulled further toward the references
  palsnap gen --variety mix ~/Pictures/walls

  # Print JSON without touching templates and keep it as "forest"
  palsnap gen --json --skip --cache forest forest.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: o.run,
	}

	d := config.DefaultSettings()
	f := cmd.Flags()
	f.StringP(config.KeyMode, "m", d.Mode, "palette mode (auto, dark, light)")
	f.IntP(config.KeyDominant, "d", d.Dominant, "clusters used to find the background in dark and light mode")
	f.String(config.KeyVariety, d.Variety, "colour variety (default, extra, mix, tweak)")
	f.IntP(config.KeySample, "s", d.Sample, "nearest samples considered per accent")
	f.Float64P(config.KeyMixAmount, "a", d.MixAmount, "fraction blended toward the reference per mixing round")
	f.Float64P(config.KeyMixThreshold, "t", d.MixThreshold, "Oklab distance at which mixing stops")
	f.Int(config.KeyMixRounds, d.MixRounds, "maximum mixing rounds")
	f.Float64P(config.KeyWeight, "w", d.Weight, "weight of the lightness uniqueness penalty")
	f.Bool(config.KeyAdjust, d.Adjust, "adjust accent lightness for contrast (--adjust=false to disable)")
	f.Int(config.KeyIterations, d.Iterations, "maximum optimizer iterations")
	f.Int(config.KeyWorkers, d.Workers, "accents matched concurrently")
	f.Int(config.KeyMaxDimension, d.MaxDimension, "downsize images larger than this before sampling (0 keeps full size)")
	f.Int64(config.KeySeed, d.Seed, "clustering seed (0 picks one at random)")

	f.BoolVar(&o.skip, "skip", false, "do not render templates")
	f.StringVar(&o.cacheName, "cache", "", "also save the palette under this name")
	f.BoolVar(&o.force, "force", false, "overwrite an existing cached palette")
	f.StringVar(&o.accents, "accents", "", "reference accent file (default: palsnap.toml in the config directory)")
	f.BoolVar(&o.json, "json", false, "print the palette as JSON")

	return cmd
}

func (o *genOptions) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := o.root.logger(cmd)
	paths := o.root.paths()

	if o.cacheName != "" {
		if err := cache.ValidateName(o.cacheName); err != nil {
			return err
		}
	}
	if err := config.EnsurePaths(paths); err != nil {
		return err
	}

	loader := config.NewSettingsLoader(paths)
	if err := loader.BindFlags(cmd.Flags()); err != nil {
		return err
	}
	settings, err := loader.Load()
	if err != nil {
		return err
	}
	cfg, err := pipeline.ConfigFromSettings(settings)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	accentsFile := paths.AccentsFile()
	if o.accents != "" {
		if accentsFile, err = image.ExpandPath(o.accents); err != nil {
			return err
		}
	}
	refs, err := config.LoadAccents(accentsFile)
	if err != nil {
		return err
	}

	imagePath, err := resolveImage(cmd, args[0], paths)
	if err != nil {
		return err
	}
	logger.Debug("using image", "path", imagePath)

	extractor, err := pipeline.NewExtractor(cfg, logger.Named("extract"))
	if err != nil {
		return err
	}
	res, err := extractor.Run(ctx, imagePath, refs)
	if err != nil {
		return fmt.Errorf("failed to generate palette: %w", err)
	}
	logger.Info("generated palette", "colours", res.Palette.Colors.Len(), "samples", res.Samples, "elapsed", res.Elapsed)

	if err := printPalette(cmd.OutOrStdout(), res.Palette, o.json); err != nil {
		return err
	}

	store := cache.NewStore(paths.PaletteDir())
	if err := store.SaveCurrent(res.Palette); err != nil {
		return err
	}
	if o.cacheName != "" {
		if err := store.Set(o.cacheName, o.force); err != nil {
			if errors.Is(err, cache.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			return err
		}
		logger.Info("cached palette", "name", o.cacheName)
	}

	if o.skip {
		return nil
	}
	return renderPalette(cmd, o.root, res.Palette)
}

// resolveImage turns the gen argument into a local image file.
func resolveImage(cmd *cobra.Command, arg string, paths config.Paths) (string, error) {
	if image.IsRemote(arg) {
		return image.DownloadAndCache(cmd.Context(), arg, paths.ImageDir())
	}
	if err := image.ValidateImagePath(arg); err != nil {
		return "", &image.ReadError{Path: arg, Err: err}
	}
	path, err := image.ResolveImagePath(arg)
	if err != nil {
		return "", &image.ReadError{Path: arg, Err: err}
	}
	return path, nil
}

func renderPalette(cmd *cobra.Command, root *rootOptions, p *colour.Palette) error {
	logger := root.logger(cmd).Named("render")
	report, err := render.NewRenderer(root.paths(), logger).RenderAll(cmd.Context(), p)
	logger.Debug("rendered templates", "written", len(report.Written), "skipped", len(report.Skipped), "refreshed", len(report.Refreshed))
	return err
}

// printPalette writes the palette as a table, or as JSON.
func printPalette(w io.Writer, p *colour.Palette, asJSON bool) error {
	if asJSON {
		data, err := p.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to convert to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	headers := []string{"SLOT", "HEX", "RGB", "HSL", "CONTRAST"}
	swatches := isTerminal(w)
	if swatches {
		headers = append(headers, "")
	}
	bg, _ := p.Get(colour.SlotBackground)
	table := NewTable(headers)
	for name, c := range p.Colors.All() {
		row := []string{name, c.Hex(), c.RGB().String(), c.HSL().String(), fmt.Sprintf("%.2f:1", colour.ContrastRatio(c, bg))}
		if swatches {
			row = append(row, swatch(c))
		}
		table.AddRow(row)
	}

	_, err := fmt.Fprintf(w, "%s (%s)\n\n%s", p.Image, p.Mode, table.Render())
	return err
}

// swatch renders a block of the colour with a 24-bit ANSI background.
func swatch(c colour.Color) string {
	rgb := c.RGB()
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm      \x1b[0m", rgb.R, rgb.G, rgb.B)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
