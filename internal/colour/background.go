package colour

import (
	"cmp"
	"slices"
)

// DefaultClusterCount is the number of dominant clusters considered for the
// background in dark and light mode.
const DefaultClusterCount = 5

// FindBackground returns the background colour for the palette.
//
// In auto mode the background is the mean of every sample, the single dominant
// average. In dark and light mode the samples are split into clusterCount
// clusters and the darkest or lightest centroid wins.
func FindBackground(samples []Lab, mode Mode, clusterCount int, km *KMeans) (Color, error) {
	if len(samples) == 0 {
		return Color{}, ErrDegenerateSample
	}
	if km == nil {
		km = NewKMeans(nil)
	}

	if mode == ModeAuto {
		centroids, _, err := km.Cluster(samples, 1)
		if err != nil {
			return Color{}, err
		}
		return FromLab(centroids[0]), nil
	}

	if clusterCount < 1 {
		clusterCount = DefaultClusterCount
	}
	centroids, _, err := km.Cluster(samples, clusterCount)
	if err != nil {
		return Color{}, err
	}

	slices.SortStableFunc(centroids, func(a, b Lab) int {
		return cmp.Compare(a.L(), b.L())
	})

	if mode == ModeDark {
		return FromLab(centroids[0]), nil
	}
	return FromLab(centroids[len(centroids)-1]), nil
}

// FindMode derives light or dark from the background lightness.
func FindMode(bg Color) Mode {
	const lightnessThreshold = 0.5
	if bg.L() >= lightnessThreshold {
		return ModeLight
	}
	return ModeDark
}
