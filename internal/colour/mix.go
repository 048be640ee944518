package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MixConfig holds configuration for the mixing stage.
type MixConfig struct {
	// Amount is the fraction each blend moves a colour toward its reference.
	Amount float64
	// Threshold is the Oklab distance at which a slot counts as done.
	Threshold float64
	// MaxRounds bounds the number of blending rounds.
	MaxRounds int
}

// DefaultMixConfig returns the default mixing configuration.
func DefaultMixConfig() MixConfig {
	return MixConfig{
		Amount:    0.1,
		Threshold: 0.16,
		MaxRounds: 300,
	}
}

// MixReport summarises a mixing run.
type MixReport struct {
	// Rounds is the number of rounds that blended at least one slot.
	Rounds int
	// Blends is the total number of blends applied.
	Blends int
	// Unconverged lists the slots still outside the threshold when the round
	// limit was reached, in reference order.
	Unconverged []string
}

// Mix repeatedly blends every reference slot of current toward its reference
// colour until each is within cfg.Threshold. A slot is never revisited once
// it is within threshold. Slots missing from current are ignored and slots
// that are not references are copied unchanged.
func Mix(refs, current *Swatches, cfg MixConfig) (*Swatches, MixReport) {
	out := current.Clone()
	var report MixReport

	pending := make([]string, 0, refs.Len())
	for name := range refs.All() {
		if out.Has(name) {
			pending = append(pending, name)
		}
	}

	for len(pending) > 0 {
		next := pending[:0]
		blended := 0
		for _, name := range pending {
			ref, _ := refs.Get(name)
			c, _ := out.Get(name)
			if c.Distance(ref) <= cfg.Threshold {
				continue
			}
			if report.Rounds >= cfg.MaxRounds {
				next = append(next, name)
				continue
			}
			out.Set(name, PigmentBlend(c, ref, cfg.Amount))
			blended++
			next = append(next, name)
		}
		pending = next

		if blended == 0 {
			break
		}
		report.Rounds++
		report.Blends += blended
	}

	report.Unconverged = pending
	return out, report
}

// PigmentBlend mixes a toward b by fraction t like paint rather than light:
// each linear RGB channel is treated as the reflectance of a pigment layer,
// mixed in Kubelka-Munk absorption/scattering space and converted back.
func PigmentBlend(a, b Color, t float64) Color {
	t = clamp(t, 0, 1)

	an := a.NormalRGB()
	bn := b.NormalRGB()
	ar, ag, ab := colorful.Color{R: an[0], G: an[1], B: an[2]}.LinearRgb()
	br, bg, bb := colorful.Color{R: bn[0], G: bn[1], B: bn[2]}.LinearRgb()

	mix := func(x, y float64) float64 {
		ks := (1-t)*kubelkaMunk(x) + t*kubelkaMunk(y)
		return reflectance(ks)
	}

	return FromLinearRGB(mix(ar, br), mix(ag, bg), mix(ab, bb))
}

// minReflectance keeps black channels finite in K/S space.
const minReflectance = 1e-4

// kubelkaMunk returns the absorption/scattering ratio K/S of reflectance r.
func kubelkaMunk(r float64) float64 {
	r = clamp(r, minReflectance, 1)
	return (1 - r) * (1 - r) / (2 * r)
}

// reflectance inverts kubelkaMunk.
func reflectance(ks float64) float64 {
	return 1 + ks - math.Sqrt(ks*ks+2*ks)
}
