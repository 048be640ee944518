package colour

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// srgbToLinear maps every 8-bit sRGB channel value to linear light.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		v := float64(i) / 255
		srgbToLinear[i], _, _ = colorful.Color{R: v, G: v, B: v}.LinearRgb()
	}
}

// LabFromRGB8 converts 8-bit sRGB channels to Oklab.
// Image sampling goes through here, so it avoids the derived views of Color.
func LabFromRGB8(r, g, b uint8) Lab {
	return linearToOklab(srgbToLinear[r], srgbToLinear[g], srgbToLinear[b])
}

// linearToOklab converts linear sRGB to Oklab.
// https://bottosson.github.io/posts/oklab/
func linearToOklab(r, g, b float64) Lab {
	l := 0.4122214708*r + 0.5363325363*g + 0.0514459929*b
	m := 0.2119034982*r + 0.6806995451*g + 0.1073969566*b
	s := 0.0883024619*r + 0.2817188376*g + 0.6299787005*b

	lp := math.Cbrt(l)
	mp := math.Cbrt(m)
	sp := math.Cbrt(s)

	return Lab{
		0.2104542553*lp + 0.7936177850*mp - 0.0040720468*sp,
		1.9779984951*lp - 2.4285922050*mp + 0.4505937099*sp,
		0.0259040371*lp + 0.7827717662*mp - 0.8086757660*sp,
	}
}

// oklabToLinear converts Oklab to linear sRGB. The result may be out of gamut.
func oklabToLinear(L, a, b float64) (r, g, bl float64) {
	lp := L + 0.3963377774*a + 0.2158037573*b
	mp := L - 0.1055613458*a - 0.0638541728*b
	sp := L - 0.0894841775*a - 1.2914855480*b

	l := lp * lp * lp
	m := mp * mp * mp
	s := sp * sp * sp

	r = +4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	g = -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	bl = -0.0041960863*l - 0.7034186147*m + 1.7076147010*s
	return r, g, bl
}
