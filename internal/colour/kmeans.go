package colour

import (
	"math"
	"math/rand"
)

// KMeans clusters Oklab samples with Lloyd's algorithm and k-means++ seeding.
type KMeans struct {
	maxIterations int
	tolerance     float64
	rng           *rand.Rand
}

// NewKMeans creates a KMeans with default settings.
// rng drives seeding; pass a seeded source for reproducible clusters.
func NewKMeans(rng *rand.Rand) *KMeans {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &KMeans{
		maxIterations: 300,
		tolerance:     1e-4,
		rng:           rng,
	}
}

// Cluster partitions points into k clusters.
// Returns centroids and their weights (relative cluster sizes).
// When the points hold at most k distinct colours those colours are returned as-is.
func (km *KMeans) Cluster(points []Lab, k int) ([]Lab, []float64, error) {
	if len(points) == 0 {
		return nil, nil, ErrDegenerateSample
	}
	if k < 1 {
		k = 1
	}

	if k == 1 {
		return []Lab{Mean(points)}, []float64{1}, nil
	}

	if unique, weights, ok := distinctUpTo(points, k); ok {
		return unique, weights, nil
	}

	centroids := km.seedPlusPlus(points, k)
	assignments := make([]int, len(points))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < km.maxIterations; iter++ {
		changed := 0
		for i, p := range points {
			nearest := nearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}
		if changed == 0 {
			break
		}

		next := km.recalculate(points, assignments, k)

		movement := 0.0
		for i := range centroids {
			movement += centroids[i].Distance(next[i])
		}
		centroids = next

		if movement/float64(k) < km.tolerance {
			break
		}
	}

	weights := make([]float64, k)
	for _, a := range assignments {
		if a >= 0 {
			weights[a]++
		}
	}
	for i := range weights {
		weights[i] /= float64(len(points))
	}

	return centroids, weights, nil
}

// Mean returns the centroid of points. It is the k=1 clustering.
func Mean(points []Lab) Lab {
	var sum Lab
	for _, p := range points {
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	n := float64(len(points))
	if n == 0 {
		return sum
	}
	return Lab{sum[0] / n, sum[1] / n, sum[2] / n}
}

// distinctUpTo returns the distinct points with their weights if there are at most k of them.
func distinctUpTo(points []Lab, k int) ([]Lab, []float64, bool) {
	counts := make(map[Lab]int, k+1)
	var order []Lab
	for _, p := range points {
		if _, ok := counts[p]; !ok {
			if len(order) == k {
				return nil, nil, false
			}
			order = append(order, p)
		}
		counts[p]++
	}
	weights := make([]float64, len(order))
	for i, p := range order {
		weights[i] = float64(counts[p]) / float64(len(points))
	}
	return order, weights, true
}

// seedPlusPlus picks initial centroids with probability proportional to the
// squared distance to the nearest centroid chosen so far.
func (km *KMeans) seedPlusPlus(points []Lab, k int) []Lab {
	centroids := make([]Lab, 0, k)
	centroids = append(centroids, points[km.rng.Intn(len(points))])

	nearest := make([]float64, len(points))
	for i := range nearest {
		nearest[i] = math.MaxFloat64
	}

	for len(centroids) < k {
		last := centroids[len(centroids)-1]
		total := 0.0
		for i, p := range points {
			if d := p.distanceSq(last); d < nearest[i] {
				nearest[i] = d
			}
			total += nearest[i]
		}

		if total == 0 {
			centroids = append(centroids, points[km.rng.Intn(len(points))])
			continue
		}

		target := km.rng.Float64() * total
		cumulative := 0.0
		chosen := len(points) - 1
		for i, d := range nearest {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// nearestCentroid finds the index of the nearest centroid to a point.
func nearestCentroid(p Lab, centroids []Lab) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, c := range centroids {
		if d := p.distanceSq(c); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recalculate recomputes centroid positions from the current assignments.
func (km *KMeans) recalculate(points []Lab, assignments []int, k int) []Lab {
	sums := make([]Lab, k)
	counts := make([]int, k)
	for i, p := range points {
		c := assignments[i]
		sums[c][0] += p[0]
		sums[c][1] += p[1]
		sums[c][2] += p[2]
		counts[c]++
	}

	centroids := make([]Lab, k)
	for i := range k {
		if counts[i] == 0 {
			// Empty cluster - reseed from a random sample.
			centroids[i] = points[km.rng.Intn(len(points))]
			continue
		}
		n := float64(counts[i])
		centroids[i] = Lab{sums[i][0] / n, sums[i][1] / n, sums[i][2] / n}
	}
	return centroids
}
