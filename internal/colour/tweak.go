package colour

import "math"

// TweakConfig holds the hue and chroma correction rules of the tweak stage.
type TweakConfig struct {
	// HueThreshold is the hue difference, in degrees, above which the hue is replaced.
	HueThreshold float64
	// HueFactor scales the reference hue to produce the replacement hue.
	HueFactor float64
	// ChromaThreshold is the fraction of the reference chroma below which chroma is boosted.
	ChromaThreshold float64
	// ChromaBoost multiplies a weak chroma.
	ChromaBoost float64
}

// DefaultTweakConfig returns the default tweak configuration.
func DefaultTweakConfig() TweakConfig {
	return TweakConfig{
		HueThreshold:    30,
		HueFactor:       1.0,
		ChromaThreshold: 0.5,
		ChromaBoost:     1.5,
	}
}

// Tweak corrects each reference slot of current in a single pass. In Oklab
// LCh, a hue further than HueThreshold from the reference becomes the
// reference hue times HueFactor, and a chroma below ChromaThreshold of the
// reference chroma is multiplied by ChromaBoost, never past the reference.
// Lightness is kept.
func Tweak(refs, current *Swatches, cfg TweakConfig) *Swatches {
	out := current.Clone()
	for name, ref := range refs.All() {
		c, ok := out.Get(name)
		if !ok {
			continue
		}
		out.Set(name, TweakOne(c, ref, cfg))
	}
	return out
}

// TweakOne applies the tweak rules to a single colour.
func TweakOne(c, ref Color, cfg TweakConfig) Color {
	l, chroma, hue := c.LCh()
	_, refChroma, refHue := ref.LCh()

	if HueDistance(hue, refHue) > cfg.HueThreshold {
		hue = RotateHue(refHue*cfg.HueFactor, 0)
	}
	if chroma < refChroma*cfg.ChromaThreshold {
		chroma = math.Min(chroma*cfg.ChromaBoost, refChroma)
	}

	return FromLCh(l, chroma, hue)
}
