package colour

import (
	"math"
	"testing"
)

func TestTweakOne(t *testing.T) {
	cfg := DefaultTweakConfig()
	ref := MustHex("#ff0000")
	_, refC, refH := ref.LCh()

	tests := []struct {
		name       string
		current    Color
		wantChroma float64
		wantHue    float64
	}{
		{
			name:       "close hue and chroma untouched",
			current:    FromLCh(0.5, refC*0.9, RotateHue(refH, 10)),
			wantChroma: refC * 0.9,
			wantHue:    RotateHue(refH, 10),
		},
		{
			name:       "distant hue replaced by reference hue",
			current:    FromLCh(0.5, refC*0.9, RotateHue(refH, 120)),
			wantChroma: refC * 0.9,
			wantHue:    refH,
		},
		{
			name:       "weak chroma boosted",
			current:    FromLCh(0.5, 0.02, refH),
			wantChroma: 0.03,
			wantHue:    refH,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TweakOne(tt.current, ref, cfg)
			l, chroma, hue := got.LCh()
			if math.Abs(l-0.5) > 1e-12 {
				t.Errorf("lightness = %v, want 0.5", l)
			}
			if math.Abs(chroma-tt.wantChroma) > 1e-9 {
				t.Errorf("chroma = %v, want %v", chroma, tt.wantChroma)
			}
			if HueDistance(hue, tt.wantHue) > 1e-6 {
				t.Errorf("hue = %v, want %v", hue, tt.wantHue)
			}
		})
	}
}

func TestTweakChromaCappedAtReference(t *testing.T) {
	cfg := DefaultTweakConfig()
	cfg.ChromaBoost = 100

	ref := MustHex("#ff0000")
	_, refC, refH := ref.LCh()

	got := TweakOne(FromLCh(0.5, 0.05, refH), ref, cfg)
	if _, chroma, _ := got.LCh(); math.Abs(chroma-refC) > 1e-9 {
		t.Errorf("chroma = %v, want capped at %v", chroma, refC)
	}
}

func TestTweakHueFactor(t *testing.T) {
	cfg := DefaultTweakConfig()
	cfg.HueFactor = 2

	ref := FromLCh(0.6, 0.1, 100)
	got := TweakOne(FromLCh(0.6, 0.1, 300), ref, cfg)
	if _, _, hue := got.LCh(); HueDistance(hue, 200) > 1e-6 {
		t.Errorf("hue = %v, want 200", hue)
	}
}

func TestTweakSwatches(t *testing.T) {
	refs := accentsOf("red", "#ff0000", "missing", "#00ff00")
	current := accentsOf("bg", "#000000", "red", "#0000ff")

	got := Tweak(refs, current, DefaultTweakConfig())

	if got.Has("missing") {
		t.Error("Tweak() added a slot missing from the palette")
	}
	if c, _ := got.Get("bg"); c.Hex() != "#000000" {
		t.Errorf("Tweak()[bg] = %s, want unchanged", c.Hex())
	}

	_, _, refH := MustHex("#ff0000").LCh()
	red, _ := got.Get("red")
	if _, _, hue := red.LCh(); HueDistance(hue, refH) > 1e-6 {
		t.Errorf("Tweak()[red] hue = %v, want %v", hue, refH)
	}
}
