package colour

import "strconv"

// GradientSteps is the number of evenly spaced steps between background and
// foreground, endpoints included.
const GradientSteps = 7

// GradientNames returns the slot names of the interior gradient steps.
func GradientNames() []string {
	names := make([]string, 0, GradientSteps-2)
	for i := 1; i < GradientSteps-1; i++ {
		names = append(names, SlotBackground+strconv.Itoa(i))
	}
	return names
}

// Gradient returns the interior steps of a linear Oklab ramp from bg to fg,
// named bg1..bg5 in order from background to foreground.
func Gradient(bg, fg Color) *Swatches {
	out := NewSwatches()
	for i, name := range GradientNames() {
		t := float64(i+1) / float64(GradientSteps-1)
		out.Set(name, Lerp(bg, fg, t))
	}
	return out
}
