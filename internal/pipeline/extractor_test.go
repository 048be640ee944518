package pipeline

import (
	"context"
	"errors"
	stdimage "image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jmylchreest/palsnap/internal/colour"
	"github.com/jmylchreest/palsnap/internal/config"
	"github.com/jmylchreest/palsnap/internal/image"
)

func writeImage(t *testing.T, img stdimage.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wall.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func blackWhite2x2() stdimage.Image {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{A: 255})
	img.Set(1, 0, color.NRGBA{A: 255})
	img.Set(0, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

// rainbow is a 64x64 image with a dark half and saturated hues in the light half.
func rainbow() stdimage.Image {
	img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			if y < 32 {
				img.Set(x, y, color.NRGBA{R: 20, G: 20, B: 30, A: 255})
				continue
			}
			c := colour.FromHSL(float64(x)*360/64, 0.8, 0.5).RGB()
			img.Set(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return img
}

func refsOf(entries ...string) *colour.Swatches {
	s := colour.NewSwatches()
	for i := 0; i+1 < len(entries); i += 2 {
		s.Set(entries[i], colour.MustHex(entries[i+1]))
	}
	return s
}

func TestRunBlackWhite(t *testing.T) {
	path := writeImage(t, blackWhite2x2())

	cfg := DefaultConfig()
	cfg.Mode = colour.ModeDark
	cfg.Seed = 1

	e, err := NewExtractor(cfg, nil)
	if err != nil {
		t.Fatalf("NewExtractor() error = %v", err)
	}

	res, err := e.Run(context.Background(), path, refsOf("white", "#ffffff"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	p := res.Palette

	want := []string{"bg", "bg1", "bg2", "bg3", "bg4", "bg5", "fg", "white"}
	if diff := cmp.Diff(want, p.Colors.Names()); diff != "" {
		t.Errorf("palette slots mismatch (-want +got):\n%s", diff)
	}
	if p.Image != path || p.Mode != colour.ModeDark {
		t.Errorf("palette metadata = %q, %q, want %q, dark", p.Image, p.Mode, path)
	}
	if res.Samples != 4 {
		t.Errorf("Samples = %d, want 4", res.Samples)
	}

	bg, _ := p.Get("bg")
	fg, _ := p.Get("fg")
	white, _ := p.Get("white")
	if bg.Hex() != "#000000" {
		t.Errorf("bg = %s, want #000000", bg.Hex())
	}
	if fg.Hex() != "#ffffff" {
		t.Errorf("fg = %s, want #ffffff", fg.Hex())
	}
	if d := white.Distance(colour.MustHex("#ffffff")); d > 0.02 {
		t.Errorf("white = %s, distance %v from #ffffff", white.Hex(), d)
	}

	prev := bg.L()
	for _, name := range colour.GradientNames() {
		c, _ := p.Get(name)
		if c.L() <= prev {
			t.Errorf("%s L = %v, not above previous %v", name, c.L(), prev)
		}
		prev = c.L()
	}
	if prev >= fg.L() {
		t.Errorf("bg5 L = %v, not below foreground %v", prev, fg.L())
	}
}

func TestRunAutoMode(t *testing.T) {
	path := writeImage(t, rainbow())

	cfg := DefaultConfig()
	cfg.Seed = 3
	cfg.NumSample = 200
	e, err := NewExtractor(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := e.Run(context.Background(), path, refsOf("red", "#ff0000", "blue", "#0000ff"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	bg, _ := res.Palette.Get("bg")
	if want := colour.FindMode(bg); res.Palette.Mode != want {
		t.Errorf("Mode = %s, want %s derived from background", res.Palette.Mode, want)
	}
}

func TestRunVarieties(t *testing.T) {
	path := writeImage(t, rainbow())
	refs := refsOf("red", "#ff0000", "green", "#008000", "blue", "#0000ff", "yellow", "#ffff00")

	for _, v := range []colour.Variety{colour.VarietyDefault, colour.VarietyExtra, colour.VarietyMix, colour.VarietyTweak} {
		t.Run(string(v), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Mode = colour.ModeDark
			cfg.Variety = v
			cfg.Seed = 5
			cfg.NumSample = 300
			cfg.MaxIterations = 500

			e, err := NewExtractor(cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			res, err := e.Run(context.Background(), path, refs)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			names := res.Palette.Colors.Names()
			if len(names) != 7+refs.Len() {
				t.Fatalf("palette has %d slots, want %d", len(names), 7+refs.Len())
			}
			if diff := cmp.Diff(refs.Names(), names[7:]); diff != "" {
				t.Errorf("accent order mismatch (-want +got):\n%s", diff)
			}
			for _, w := range res.Warnings {
				if !errors.Is(w, colour.ErrOptimizationDegraded) && !errors.Is(w, colour.ErrMixNotConverged) {
					t.Errorf("unexpected warning %v", w)
				}
			}
		})
	}
}

func TestRunWithoutAdjustKeepsMatches(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = colour.ModeDark
	cfg.Adjust = false

	e, err := NewExtractor(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	samples := image.Sample(blackWhite2x2(), 0)
	res, err := e.Extract(context.Background(), "mem", samples, refsOf("black", "#000000"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if c, _ := res.Palette.Get("black"); c.Hex() != "#000000" {
		t.Errorf("black = %s, want #000000 without lightness adjustment", c.Hex())
	}
}

func TestRunErrors(t *testing.T) {
	e, err := NewExtractor(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}

	t.Run("missing image", func(t *testing.T) {
		_, err := e.Run(context.Background(), filepath.Join(t.TempDir(), "none.png"), refsOf("red", "#ff0000"))
		var re *image.ReadError
		if !errors.As(err, &re) {
			t.Errorf("Run() error = %v, want *image.ReadError", err)
		}
	})

	t.Run("monochrome image", func(t *testing.T) {
		img := stdimage.NewNRGBA(stdimage.Rect(0, 0, 3, 3))
		for i := range img.Pix {
			img.Pix[i] = 0x80
			if i%4 == 3 {
				img.Pix[i] = 0xff
			}
		}
		_, err := e.Run(context.Background(), writeImage(t, img), refsOf("red", "#ff0000"))
		var nfe *colour.NoForegroundError
		if !errors.As(err, &nfe) {
			t.Errorf("Run() error = %v, want *colour.NoForegroundError", err)
		}
	})

	t.Run("no samples", func(t *testing.T) {
		_, err := e.Extract(context.Background(), "empty", nil, refsOf("red", "#ff0000"))
		if !errors.Is(err, colour.ErrDegenerateSample) {
			t.Errorf("Extract() error = %v, want ErrDegenerateSample", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := e.Extract(ctx, "mem", image.Sample(blackWhite2x2(), 0), refsOf("red", "#ff0000"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Extract() error = %v, want context.Canceled", err)
		}
	})
}

type stubLoader struct {
	img  stdimage.Image
	seen []string
}

func (s *stubLoader) Load(path string) (stdimage.Image, error) {
	s.seen = append(s.seen, path)
	return s.img, nil
}

func TestWithLoader(t *testing.T) {
	stub := &stubLoader{img: blackWhite2x2()}
	e, err := NewExtractor(DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.WithLoader(stub).Run(context.Background(), "virtual.png", refsOf("white", "#ffffff")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !slices.Equal(stub.seen, []string{"virtual.png"}) {
		t.Errorf("loader saw %v, want [virtual.png]", stub.seen)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Mode = "dim" }},
		{"bad variety", func(c *Config) { c.Variety = "wild" }},
		{"zero dominant", func(c *Config) { c.Dominant = 0 }},
		{"zero sample", func(c *Config) { c.NumSample = 0 }},
		{"mix amount above one", func(c *Config) { c.MixAmount = 1.5 }},
		{"zero mix threshold", func(c *Config) { c.MixThreshold = 0 }},
		{"zero mix rounds", func(c *Config) { c.MixRounds = 0 }},
		{"negative weight", func(c *Config) { c.Weight = -1 }},
		{"zero iterations", func(c *Config) { c.MaxIterations = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -2 }},
		{"negative max dimension", func(c *Config) { c.MaxDimension = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
			if _, err := NewExtractor(cfg, nil); err == nil {
				t.Error("NewExtractor() expected error")
			}
		})
	}
}

func TestConfigFromSettings(t *testing.T) {
	s := config.DefaultSettings()
	s.Mode = "light"
	s.Variety = "mix"
	s.Dominant = 8
	s.Seed = 42

	cfg, err := ConfigFromSettings(s)
	if err != nil {
		t.Fatalf("ConfigFromSettings() error = %v", err)
	}
	if cfg.Mode != colour.ModeLight || cfg.Variety != colour.VarietyMix || cfg.Dominant != 8 || cfg.Seed != 42 {
		t.Errorf("ConfigFromSettings() = %+v", cfg)
	}

	s.Mode = "sepia"
	if _, err := ConfigFromSettings(s); err == nil {
		t.Error("ConfigFromSettings(bad mode) expected error")
	}
}
