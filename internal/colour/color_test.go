package colour

import (
	"errors"
	"math"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	for _, hex := range []string{
		"#000000", "#ffffff", "#ff0000", "#00ff00", "#0000ff",
		"#ffa500", "#7f00ff", "#123456", "#808080", "#fedcba",
	} {
		t.Run(hex, func(t *testing.T) {
			c, err := FromHex(hex)
			if err != nil {
				t.Fatalf("FromHex(%q) error = %v", hex, err)
			}
			if got := c.Hex(); got != hex {
				t.Errorf("Hex() = %s, want %s", got, hex)
			}
			if got := FromLab(c.Lab()).Hex(); got != hex {
				t.Errorf("FromLab(Lab()).Hex() = %s, want %s", got, hex)
			}
		})
	}
}

func TestFromHexInvalid(t *testing.T) {
	for _, hex := range []string{"", "#12345", "#1234567", "#abc", "123456", "#gggggg", "red"} {
		if _, err := FromHex(hex); !errors.Is(err, ErrInvalidHex) {
			t.Errorf("FromHex(%q) error = %v, want ErrInvalidHex", hex, err)
		}
	}
}

func TestFromRGBMatchesHex(t *testing.T) {
	c := FromRGB(0xff, 0xa5, 0x00)
	if got := c.Hex(); got != "#ffa500" {
		t.Errorf("FromRGB().Hex() = %s, want #ffa500", got)
	}
	if d := c.Distance(MustHex("#ffa500")); d > 1e-9 {
		t.Errorf("FromRGB and FromHex differ by %g", d)
	}
}

func TestOklabReference(t *testing.T) {
	tests := []struct {
		hex  string
		want Lab
	}{
		{"#000000", Lab{0, 0, 0}},
		{"#ffffff", Lab{1, 0, 0}},
		{"#ff0000", Lab{0.627955, 0.224863, 0.125846}},
		{"#0000ff", Lab{0.452014, -0.032457, -0.311528}},
	}

	for _, tt := range tests {
		t.Run(tt.hex, func(t *testing.T) {
			got := MustHex(tt.hex).Lab()
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-3 {
					t.Errorf("Lab() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestDerivedViews(t *testing.T) {
	red := MustHex("#ff0000")

	if got, want := red.RGB(), (RGB{R: 255}); got != want {
		t.Errorf("RGB() = %v, want %v", got, want)
	}
	if got, want := red.HSL(), (HSL{H: 0, S: 100, L: 50}); got != want {
		t.Errorf("HSL() = %v, want %v", got, want)
	}
	if got := red.NormalRGB(); math.Abs(got[0]-1) > 1e-6 || got[1] > 1e-6 || got[2] > 1e-6 {
		t.Errorf("NormalRGB() = %v, want [1 0 0]", got)
	}

	if l := MustHex("#ffffff").CIELab()[0]; math.Abs(l-100) > 0.01 {
		t.Errorf("white CIELab L* = %v, want 100", l)
	}
	if l := MustHex("#000000").CIELab()[0]; math.Abs(l) > 0.01 {
		t.Errorf("black CIELab L* = %v, want 0", l)
	}
}

func TestOutOfGamutClamped(t *testing.T) {
	c := New(0.5, 0.5, 0.5)
	for i, v := range c.NormalRGB() {
		if v < 0 || v > 1 {
			t.Errorf("NormalRGB()[%d] = %v, want within [0, 1]", i, v)
		}
	}
	if c.L() != 0.5 || c.A() != 0.5 || c.B() != 0.5 {
		t.Error("canonical coordinates must not be clamped")
	}
}

func TestFromCIELabRoundTrip(t *testing.T) {
	for _, hex := range []string{"#ff0000", "#336699", "#c0c0c0"} {
		c := MustHex(hex)
		lab := c.CIELab()
		if got := FromCIELab(lab[0], lab[1], lab[2]).Hex(); got != hex {
			t.Errorf("FromCIELab(%s.CIELab()) = %s", hex, got)
		}
	}
}

func TestLCh(t *testing.T) {
	l, chroma, _ := MustHex("#808080").LCh()
	if chroma > 1e-6 {
		t.Errorf("grey chroma = %v, want 0", chroma)
	}
	if l <= 0 || l >= 1 {
		t.Errorf("grey L = %v, want within (0, 1)", l)
	}

	c := MustHex("#336699")
	l, chroma, hue := c.LCh()
	if hue < 0 || hue >= 360 {
		t.Errorf("hue = %v, want within [0, 360)", hue)
	}
	if d := FromLCh(l, chroma, hue).Distance(c); d > 1e-9 {
		t.Errorf("FromLCh(LCh()) differs by %g", d)
	}
}

func TestDistanceProperties(t *testing.T) {
	colors := []Color{
		MustHex("#000000"),
		MustHex("#ff0000"),
		MustHex("#00ff00"),
		MustHex("#336699"),
		MustHex("#ffffff"),
	}

	for _, a := range colors {
		if d := a.Distance(a); d != 0 {
			t.Errorf("Distance(%s, self) = %v, want 0", a, d)
		}
		for _, b := range colors {
			ab := a.Distance(b)
			if ab < 0 {
				t.Errorf("Distance(%s, %s) = %v, want >= 0", a, b, ab)
			}
			if ba := b.Distance(a); ab != ba {
				t.Errorf("Distance not symmetric: %v != %v", ab, ba)
			}
			for _, c := range colors {
				if a.Distance(c) > ab+b.Distance(c)+1e-12 {
					t.Errorf("triangle inequality violated for %s, %s, %s", a, b, c)
				}
			}
		}
	}
}
