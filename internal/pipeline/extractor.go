package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/palsnap/internal/colour"
	"github.com/jmylchreest/palsnap/internal/image"
)

// Result is the outcome of an extraction run.
type Result struct {
	Palette *colour.Palette
	// Warnings holds non-fatal degradations, such as colour.ErrOptimizationDegraded.
	Warnings []error
	// Samples is the number of sampled pixels.
	Samples int
	Elapsed time.Duration
}

// Extractor runs the extraction stages in order:
// sample, background, foreground, accents, variety, lightness, gradient.
type Extractor struct {
	cfg    Config
	loader image.Loader
	logger hclog.Logger
}

// NewExtractor creates an Extractor reading images from the filesystem.
func NewExtractor(cfg Config, logger hclog.Logger) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Extractor{
		cfg:    cfg,
		loader: image.NewFileLoader(),
		logger: logger,
	}, nil
}

// WithLoader replaces the image loader.
func (e *Extractor) WithLoader(l image.Loader) *Extractor {
	e.loader = l
	return e
}

// Run loads imagePath, samples it and extracts a palette for refs.
func (e *Extractor) Run(ctx context.Context, imagePath string, refs *colour.Swatches) (*Result, error) {
	start := time.Now()

	img, err := e.loader.Load(imagePath)
	if err != nil {
		return nil, err
	}
	samples := image.Sample(img, e.cfg.MaxDimension)
	e.logger.Debug("sampled image", "image", imagePath, "samples", len(samples), "elapsed", time.Since(start))

	res, err := e.Extract(ctx, imagePath, samples, refs)
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	return res, nil
}

// Extract builds the palette from already sampled colours.
func (e *Extractor) Extract(ctx context.Context, imagePath string, samples []colour.Lab, refs *colour.Swatches) (*Result, error) {
	start := time.Now()
	if len(samples) == 0 {
		return nil, &image.ReadError{Path: imagePath, Err: colour.ErrDegenerateSample}
	}

	if refs == nil {
		refs = colour.NewSwatches()
	}

	res := &Result{Samples: len(samples)}
	km := colour.NewKMeans(e.rng())

	bg, err := colour.FindBackground(samples, e.cfg.Mode, e.cfg.Dominant, km)
	if err != nil {
		return nil, fmt.Errorf("failed to find background: %w", err)
	}
	mode := e.cfg.Mode
	if mode == colour.ModeAuto {
		mode = colour.FindMode(bg)
	}
	e.logger.Info("found background", "colour", bg.Hex(), "mode", mode)

	fg, err := colour.FindForeground(bg, samples)
	if err != nil {
		return nil, err
	}
	e.logger.Info("found foreground", "colour", fg.Hex())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matcher, err := colour.NewMatcher(samples, e.cfg.matcherConfig(), e.logger.Named("matcher"))
	if err != nil {
		return nil, fmt.Errorf("failed to index samples: %w", err)
	}
	accents, err := matcher.Match(ctx, refs)
	if err != nil {
		return nil, err
	}
	e.logger.Info("matched accents", "count", accents.Len())

	accents, warnings := e.vary(refs, accents, bg, fg)
	res.Warnings = append(res.Warnings, warnings...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if e.cfg.Adjust {
		opt := colour.NewLightnessOptimizer(e.cfg.optimizerConfig(), e.logger.Named("optimizer"))
		out := opt.Optimize(bg, fg, accents)
		accents = out.Colors
		if out.Outcome == colour.Degraded {
			e.logger.Warn("lightness optimization degraded, using fallback lightness")
			res.Warnings = append(res.Warnings, colour.ErrOptimizationDegraded)
		} else {
			e.logger.Info("optimized lightness", "method", out.Method)
		}
	}

	colors := colour.NewSwatches()
	colors.Set(colour.SlotBackground, bg)
	colors.Merge(colour.Gradient(bg, fg))
	colors.Set(colour.SlotForeground, fg)
	colors.Merge(accents)

	res.Palette = &colour.Palette{
		Image:  imagePath,
		Mode:   mode,
		Colors: colors,
	}
	res.Elapsed = time.Since(start)
	e.logger.Debug("extraction complete", "elapsed", res.Elapsed)
	return res, nil
}

// vary applies the variety stages to the matched accents.
func (e *Extractor) vary(refs, accents *colour.Swatches, bg, fg colour.Color) (*colour.Swatches, []error) {
	if e.cfg.Variety == colour.VarietyDefault {
		return accents, nil
	}

	accents = colour.Expand(refs, accents, bg, fg)
	e.logger.Debug("expanded accents with harmonies")

	var warnings []error
	switch e.cfg.Variety {
	case colour.VarietyMix:
		var report colour.MixReport
		accents, report = colour.Mix(refs, accents, e.cfg.mixConfig())
		e.logger.Debug("mixed accents", "rounds", report.Rounds, "blends", report.Blends)
		if len(report.Unconverged) > 0 {
			e.logger.Warn("mixing stopped at round limit", "rounds", report.Rounds, "unconverged", report.Unconverged)
			warnings = append(warnings, fmt.Errorf("%w: %s", colour.ErrMixNotConverged, strings.Join(report.Unconverged, ", ")))
		}
	case colour.VarietyTweak:
		accents = colour.Tweak(refs, accents, colour.DefaultTweakConfig())
		e.logger.Debug("tweaked accents")
	}
	return accents, warnings
}

func (e *Extractor) rng() *rand.Rand {
	seed := e.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
