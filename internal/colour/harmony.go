package colour

import "math"

// Harmony is a hue-rotated variant of a colour.
type Harmony struct {
	Name  string
	Color Color
}

// harmonyRotations lists the hue offsets, in degrees, of every harmony variant.
var harmonyRotations = []struct {
	name    string
	degrees float64
}{
	{"complementary", 180},
	{"analogous 1", 30},
	{"analogous 2", -30},
	{"split complementary 1", 150},
	{"split complementary 2", 210},
	{"triadic 1", 120},
	{"triadic 2", 240},
	{"square 1", 90},
	{"square 2", 270},
	{"tetradic 1", 60},
	{"tetradic 2", 240},
}

// Harmonies returns the harmony variants of c. Only the Oklab hue changes;
// lightness and chroma are kept.
func Harmonies(c Color) []Harmony {
	l, chroma, hue := c.LCh()
	out := make([]Harmony, 0, len(harmonyRotations))
	for _, r := range harmonyRotations {
		out = append(out, Harmony{
			Name:  r.name,
			Color: FromLCh(l, chroma, RotateHue(hue, r.degrees)),
		})
	}
	return out
}

// RotateHue adds delta degrees to hue, wrapping into [0, 360).
func RotateHue(hue, delta float64) float64 {
	h := math.Mod(hue+delta, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// Nearest returns the name of the swatch closest to c.
// Ties go to the first name in order.
func Nearest(s *Swatches, c Color) (string, bool) {
	best := ""
	bestDist := math.Inf(1)
	for name, other := range s.All() {
		if d := c.Distance(other); d < bestDist {
			best = name
			bestDist = d
		}
	}
	return best, best != ""
}

// Expand widens the choice for every reference slot with the harmony variants
// of each seed colour, then keeps per slot the candidate closest to its
// reference. Each variant joins the slot whose reference it is nearest to.
// The current colour is always the first candidate and, on equal distance,
// earlier candidates win. Slots that are not references are copied unchanged.
func Expand(refs, current *Swatches, seeds ...Color) *Swatches {
	candidates := make(map[string][]Color, refs.Len())
	for name := range refs.All() {
		if c, ok := current.Get(name); ok {
			candidates[name] = []Color{c}
		}
	}

	for _, seed := range seeds {
		for _, h := range Harmonies(seed) {
			label, ok := Nearest(refs, h.Color)
			if !ok {
				continue
			}
			candidates[label] = append(candidates[label], h.Color)
		}
	}

	out := current.Clone()
	for name, ref := range refs.All() {
		options := candidates[name]
		if len(options) == 0 {
			continue
		}
		best := options[0]
		bestDist := ref.Distance(best)
		for _, c := range options[1:] {
			if d := ref.Distance(c); d < bestDist {
				best = c
				bestDist = d
			}
		}
		out.Set(name, best)
	}
	return out
}
