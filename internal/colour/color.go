// Package colour provides the colour model and the palette extraction stages.
package colour

import (
	"fmt"
	"math"
	"regexp"

	"github.com/lucasb-eyer/go-colorful"
)

// Lab is a colour in Oklab coordinates: lightness followed by the a and b axes.
// It is the element type of sampled colour arrays.
type Lab [3]float64

// L returns the lightness coordinate.
func (p Lab) L() float64 { return p[0] }

// Distance returns the Euclidean distance between two Oklab points.
func (p Lab) Distance(q Lab) float64 {
	return math.Sqrt(p.distanceSq(q))
}

func (p Lab) distanceSq(q Lab) float64 {
	dl := p[0] - q[0]
	da := p[1] - q[1]
	db := p[2] - q[2]
	return dl*dl + da*da + db*db
}

// HSL is the rounded hue (degrees), saturation and lightness (percent) of a colour.
type HSL struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// String returns the HSL colour in CSS notation.
func (h HSL) String() string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", h.H, h.S, h.L)
}

// Color is an immutable colour value stored canonically in Oklab.
// Every other representation is derived once, at construction.
type Color struct {
	lab    Lab
	normal [3]float64
	rgb    RGB
	hex    string
	hsl    HSL
	cielab [3]float64
}

// New creates a Color from Oklab coordinates.
func New(l, a, b float64) Color {
	c := Color{lab: Lab{l, a, b}}

	lr, lg, lb := oklabToLinear(l, a, b)
	srgb := colorful.LinearRgb(lr, lg, lb).Clamped()
	c.normal = [3]float64{srgb.R, srgb.G, srgb.B}

	r, g, bl := srgb.RGB255()
	c.rgb = RGB{R: r, G: g, B: bl}
	c.hex = c.rgb.Hex()

	h, s, lt := srgb.Hsl()
	c.hsl = HSL{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(lt * 100)),
	}

	cl, ca, cb := srgb.Lab()
	c.cielab = [3]float64{cl * 100, ca * 100, cb * 100}

	return c
}

// FromLab creates a Color from an Oklab point.
func FromLab(p Lab) Color {
	return New(p[0], p[1], p[2])
}

// FromLinearRGB creates a Color from linear-light sRGB channels.
func FromLinearRGB(r, g, b float64) Color {
	return FromLab(linearToOklab(r, g, b))
}

// FromNormalRGB creates a Color from gamma-encoded sRGB channels in [0, 1].
func FromNormalRGB(r, g, b float64) Color {
	lr, lg, lb := colorful.Color{R: r, G: g, B: b}.LinearRgb()
	return FromLinearRGB(lr, lg, lb)
}

// FromRGB creates a Color from 8-bit sRGB channels.
func FromRGB(r, g, b uint8) Color {
	return FromLab(LabFromRGB8(r, g, b))
}

var hexPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// FromHex creates a Color from a hex string such as "#1a2b3c".
// Only the full six digit form is accepted.
func FromHex(hex string) (Color, error) {
	if !hexPattern.MatchString(hex) {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, hex)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex colour %q: %w", hex, err)
	}
	return FromNormalRGB(c.R, c.G, c.B), nil
}

// MustHex is like FromHex but panics on malformed input.
// It is intended for package-level tables and tests.
func MustHex(hex string) Color {
	c, err := FromHex(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// FromHSL creates a Color from hue in degrees and saturation/lightness in [0, 1].
func FromHSL(h, s, l float64) Color {
	c := colorful.Hsl(h, s, l)
	return FromNormalRGB(c.R, c.G, c.B)
}

// FromCIELab creates a Color from CIE L*a*b* (D65) with L* in [0, 100].
func FromCIELab(l, a, b float64) Color {
	x, y, z := colorful.LabToXyz(l/100, a/100, b/100)
	r, g, bl := colorful.XyzToLinearRgb(x, y, z)
	return FromLinearRGB(r, g, bl)
}

// FromLCh creates a Color from cylindrical Oklab: lightness, chroma and hue in degrees.
func FromLCh(l, chroma, hue float64) Color {
	rad := hue * math.Pi / 180
	return New(l, chroma*math.Cos(rad), chroma*math.Sin(rad))
}

// L returns the Oklab lightness.
func (c Color) L() float64 { return c.lab[0] }

// A returns the Oklab a coordinate.
func (c Color) A() float64 { return c.lab[1] }

// B returns the Oklab b coordinate.
func (c Color) B() float64 { return c.lab[2] }

// Lab returns the canonical Oklab coordinates.
func (c Color) Lab() Lab { return c.lab }

// NormalRGB returns the gamma-encoded sRGB channels clamped to [0, 1].
func (c Color) NormalRGB() [3]float64 { return c.normal }

// RGB returns the 8-bit sRGB channels.
func (c Color) RGB() RGB { return c.rgb }

// Hex returns the colour as a lowercase "#rrggbb" string.
func (c Color) Hex() string { return c.hex }

// HSL returns the rounded HSL representation.
func (c Color) HSL() HSL { return c.hsl }

// CIELab returns CIE L*a*b* (D65) with L* in [0, 100].
func (c Color) CIELab() [3]float64 { return c.cielab }

// LCh returns the Oklab lightness, chroma and hue angle in degrees [0, 360).
func (c Color) LCh() (l, chroma, hue float64) {
	chroma = math.Hypot(c.lab[1], c.lab[2])
	if chroma == 0 {
		return c.lab[0], 0, 0
	}
	hue = math.Atan2(c.lab[2], c.lab[1]) * 180 / math.Pi
	if hue < 0 {
		hue += 360
	}
	return c.lab[0], chroma, hue
}

// Distance returns the Euclidean distance between two colours in Oklab.
func (c Color) Distance(other Color) float64 {
	return c.lab.Distance(other.lab)
}

// String returns the hex representation.
func (c Color) String() string { return c.hex }
