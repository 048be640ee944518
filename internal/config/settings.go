package config

import (
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/palsnap/internal/colour"
)

// EnvPrefix is the prefix of environment variables overriding settings,
// e.g. PALSNAP_MIX_AMOUNT.
const EnvPrefix = "PALSNAP"

// Setting keys. Flags bound with BindFlags must use the same names.
const (
	KeyMode         = "mode"
	KeyDominant     = "dominant"
	KeyVariety      = "variety"
	KeySample       = "sample"
	KeyMixAmount    = "mix-amount"
	KeyMixThreshold = "mix-threshold"
	KeyMixRounds    = "mix-rounds"
	KeyWeight       = "weight"
	KeyAdjust       = "adjust"
	KeyIterations   = "iterations"
	KeyWorkers      = "workers"
	KeyMaxDimension = "max-dimension"
	KeySeed         = "seed"
)

var allKeys = []string{
	KeyMode, KeyDominant, KeyVariety, KeySample,
	KeyMixAmount, KeyMixThreshold, KeyMixRounds,
	KeyWeight, KeyAdjust, KeyIterations,
	KeyWorkers, KeyMaxDimension, KeySeed,
}

// Settings are the tunables of an extraction run.
type Settings struct {
	Mode         string  `mapstructure:"mode"`
	Dominant     int     `mapstructure:"dominant"`
	Variety      string  `mapstructure:"variety"`
	Sample       int     `mapstructure:"sample"`
	MixAmount    float64 `mapstructure:"mix-amount"`
	MixThreshold float64 `mapstructure:"mix-threshold"`
	MixRounds    int     `mapstructure:"mix-rounds"`
	Weight       float64 `mapstructure:"weight"`
	Adjust       bool    `mapstructure:"adjust"`
	Iterations   int     `mapstructure:"iterations"`
	Workers      int     `mapstructure:"workers"`
	MaxDimension int     `mapstructure:"max-dimension"`
	// Seed drives clustering; 0 picks a random seed.
	Seed int64 `mapstructure:"seed"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	mix := colour.DefaultMixConfig()
	opt := colour.DefaultOptimizerConfig()
	return Settings{
		Mode:         string(colour.ModeAuto),
		Dominant:     colour.DefaultClusterCount,
		Variety:      string(colour.VarietyDefault),
		Sample:       colour.DefaultNumSample,
		MixAmount:    mix.Amount,
		MixThreshold: mix.Threshold,
		MixRounds:    mix.MaxRounds,
		Weight:       opt.Weight,
		Adjust:       true,
		Iterations:   opt.MaxIterations,
		Workers:      runtime.GOMAXPROCS(0),
	}
}

// SettingsLoader layers settings from defaults, the settings file,
// PALSNAP_* environment variables and bound flags, in increasing precedence.
type SettingsLoader struct {
	vp   *viper.Viper
	file string
}

// NewSettingsLoader creates a loader reading the settings file under paths.
func NewSettingsLoader(paths Paths) *SettingsLoader {
	vp := viper.New()

	defaults := DefaultSettings()
	vp.SetDefault(KeyMode, defaults.Mode)
	vp.SetDefault(KeyDominant, defaults.Dominant)
	vp.SetDefault(KeyVariety, defaults.Variety)
	vp.SetDefault(KeySample, defaults.Sample)
	vp.SetDefault(KeyMixAmount, defaults.MixAmount)
	vp.SetDefault(KeyMixThreshold, defaults.MixThreshold)
	vp.SetDefault(KeyMixRounds, defaults.MixRounds)
	vp.SetDefault(KeyWeight, defaults.Weight)
	vp.SetDefault(KeyAdjust, defaults.Adjust)
	vp.SetDefault(KeyIterations, defaults.Iterations)
	vp.SetDefault(KeyWorkers, defaults.Workers)
	vp.SetDefault(KeyMaxDimension, defaults.MaxDimension)
	vp.SetDefault(KeySeed, defaults.Seed)

	vp.SetEnvPrefix(EnvPrefix)
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()

	return &SettingsLoader{vp: vp, file: paths.SettingsFile()}
}

// BindFlags binds every setting flag present in fs. Flags only override the
// other layers when set on the command line.
func (l *SettingsLoader) BindFlags(fs *pflag.FlagSet) error {
	for _, key := range allKeys {
		f := fs.Lookup(key)
		if f == nil {
			continue
		}
		if err := l.vp.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the settings file, if present, and returns the merged settings.
func (l *SettingsLoader) Load() (Settings, error) {
	l.vp.SetConfigFile(l.file)
	l.vp.SetConfigType("toml")
	if err := l.vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read settings file %s: %w", l.file, err)
		}
	}

	var s Settings
	if err := l.vp.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}
