// Package pipeline sequences the extraction stages that turn an image and a
// set of reference accents into a named palette.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/jmylchreest/palsnap/internal/colour"
	"github.com/jmylchreest/palsnap/internal/config"
)

// Config holds the tunables of one extraction run.
type Config struct {
	Mode    colour.Mode
	Variety colour.Variety

	// Dominant is the cluster count used to find the background in dark and light mode.
	Dominant int
	// NumSample is the neighbourhood size queried per accent.
	NumSample int

	MixAmount    float64
	MixThreshold float64
	MixRounds    int

	// Adjust enables the lightness optimizer.
	Adjust        bool
	Weight        float64
	MaxIterations int

	// Workers bounds concurrent accent matching; 0 uses GOMAXPROCS.
	Workers int
	// MaxDimension downsizes large images before sampling; 0 samples every pixel.
	MaxDimension int
	// Seed drives clustering; 0 picks a random seed.
	Seed int64
}

// DefaultConfig returns the default extraction configuration.
func DefaultConfig() Config {
	mix := colour.DefaultMixConfig()
	opt := colour.DefaultOptimizerConfig()
	return Config{
		Mode:          colour.ModeAuto,
		Variety:       colour.VarietyDefault,
		Dominant:      colour.DefaultClusterCount,
		NumSample:     colour.DefaultNumSample,
		MixAmount:     mix.Amount,
		MixThreshold:  mix.Threshold,
		MixRounds:     mix.MaxRounds,
		Adjust:        true,
		Weight:        opt.Weight,
		MaxIterations: opt.MaxIterations,
	}
}

// ConfigFromSettings converts loaded settings into a Config.
func ConfigFromSettings(s config.Settings) (Config, error) {
	mode, err := colour.ParseMode(s.Mode)
	if err != nil {
		return Config{}, err
	}
	variety, err := colour.ParseVariety(s.Variety)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Mode:          mode,
		Variety:       variety,
		Dominant:      s.Dominant,
		NumSample:     s.Sample,
		MixAmount:     s.MixAmount,
		MixThreshold:  s.MixThreshold,
		MixRounds:     s.MixRounds,
		Adjust:        s.Adjust,
		Weight:        s.Weight,
		MaxIterations: s.Iterations,
		Workers:       s.Workers,
		MaxDimension:  s.MaxDimension,
		Seed:          s.Seed,
	}
	return cfg, cfg.Validate()
}

// Validate reports every out-of-range field.
func (c Config) Validate() error {
	var errs []error
	if _, err := colour.ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if _, err := colour.ParseVariety(string(c.Variety)); err != nil {
		errs = append(errs, err)
	}
	if c.Dominant < 1 {
		errs = append(errs, fmt.Errorf("dominant must be at least 1, got %d", c.Dominant))
	}
	if c.NumSample < 1 {
		errs = append(errs, fmt.Errorf("sample must be at least 1, got %d", c.NumSample))
	}
	if c.MixAmount <= 0 || c.MixAmount > 1 {
		errs = append(errs, fmt.Errorf("mix amount must be in (0, 1], got %g", c.MixAmount))
	}
	if c.MixThreshold <= 0 {
		errs = append(errs, fmt.Errorf("mix threshold must be positive, got %g", c.MixThreshold))
	}
	if c.MixRounds < 1 {
		errs = append(errs, fmt.Errorf("mix rounds must be at least 1, got %d", c.MixRounds))
	}
	if c.Weight < 0 {
		errs = append(errs, fmt.Errorf("weight must not be negative, got %g", c.Weight))
	}
	if c.MaxIterations < 1 {
		errs = append(errs, fmt.Errorf("iterations must be at least 1, got %d", c.MaxIterations))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("max dimension must not be negative, got %d", c.MaxDimension))
	}
	return errors.Join(errs...)
}

func (c Config) mixConfig() colour.MixConfig {
	return colour.MixConfig{
		Amount:    c.MixAmount,
		Threshold: c.MixThreshold,
		MaxRounds: c.MixRounds,
	}
}

func (c Config) optimizerConfig() colour.OptimizerConfig {
	opt := colour.DefaultOptimizerConfig()
	opt.Weight = c.Weight
	opt.MaxIterations = c.MaxIterations
	return opt
}

func (c Config) matcherConfig() colour.MatcherConfig {
	m := colour.DefaultMatcherConfig()
	m.NumSample = c.NumSample
	if c.Workers > 0 {
		m.Workers = c.Workers
	}
	return m
}
