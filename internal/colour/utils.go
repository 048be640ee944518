package colour

import "math"

// Luminance returns the relative luminance of a colour according to WCAG 2.0.
// Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Luminance(c Color) float64 {
	n := c.NormalRGB()
	return 0.2126*gammaCorrect(n[0]) + 0.7152*gammaCorrect(n[1]) + 0.0722*gammaCorrect(n[2])
}

// gammaCorrect applies gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// ContrastRatio calculates the contrast ratio between two colours according to WCAG 2.0.
// Returns a value between 1 and 21, where 21 is maximum contrast (black vs white).
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func ContrastRatio(c1, c2 Color) float64 {
	l1 := Luminance(c1)
	l2 := Luminance(c2)

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

// HueDistance calculates the angular distance between two hues on the color wheel.
// Returns a value between 0 and 180 degrees (shortest path around the wheel).
func HueDistance(h1, h2 float64) float64 {
	diff := math.Mod(math.Abs(h1-h2), 360)
	if diff > 180 {
		diff = 360 - diff // Handle wraparound
	}
	return diff
}

// Lerp interpolates linearly in Oklab from a (t=0) to b (t=1).
func Lerp(a, b Color, t float64) Color {
	return New(
		a.lab[0]+(b.lab[0]-a.lab[0])*t,
		a.lab[1]+(b.lab[1]-a.lab[1])*t,
		a.lab[2]+(b.lab[2]-a.lab[2])*t,
	)
}
