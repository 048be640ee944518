package colour

import "math"

// ForegroundThreshold is the minimum Oklab lightness gap between the
// background and a sample for the sample to count as foreground candidate.
const ForegroundThreshold = 0.33

// FindForeground returns the foreground colour: the mean of every sample whose
// lightness differs from the background by more than ForegroundThreshold.
// Near-monochrome images yield a *NoForegroundError.
func FindForeground(bg Color, samples []Lab) (Color, error) {
	var sum Lab
	n := 0
	for _, p := range samples {
		if math.Abs(p.L()-bg.L()) > ForegroundThreshold {
			sum[0] += p[0]
			sum[1] += p[1]
			sum[2] += p[2]
			n++
		}
	}

	if n == 0 {
		return Color{}, &NoForegroundError{
			BackgroundL: bg.L(),
			Threshold:   ForegroundThreshold,
		}
	}

	count := float64(n)
	return New(sum[0]/count, sum[1]/count, sum[2]/count), nil
}
