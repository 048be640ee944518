package colour

import (
	"cmp"
	"context"
	"math"
	"runtime"
	"slices"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/kdtree"
)

// DefaultNumSample is the number of nearest samples considered per accent.
const DefaultNumSample = 10000

// MatcherConfig holds configuration for accent matching.
type MatcherConfig struct {
	// NumSample is the size of the neighbourhood queried around each reference.
	NumSample int
	// Workers bounds how many accents are matched at once.
	Workers int
}

// DefaultMatcherConfig returns the default matcher configuration.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		NumSample: DefaultNumSample,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// Matcher finds, for each reference accent, the most representative sampled
// colour near it. The k-d tree is built once and only read afterwards, so
// concurrent queries share it without locking.
type Matcher struct {
	cfg    MatcherConfig
	tree   *kdtree.Tree
	size   int
	logger hclog.Logger
}

// NewMatcher indexes samples for nearest-neighbour queries.
func NewMatcher(samples []Lab, cfg MatcherConfig, logger hclog.Logger) (*Matcher, error) {
	if len(samples) == 0 {
		return nil, ErrDegenerateSample
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg.NumSample < 1 {
		cfg.NumSample = DefaultNumSample
	}
	if cfg.Workers < 1 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	// kdtree.New reorders its input, so it gets its own points.
	points := make(kdtree.Points, len(samples))
	for i, s := range samples {
		points[i] = kdtree.Point{s[0], s[1], s[2]}
	}

	return &Matcher{
		cfg:    cfg,
		tree:   kdtree.New(points, false),
		size:   len(samples),
		logger: logger,
	}, nil
}

// Match returns one matched colour per reference, in reference order.
// Accents are matched concurrently; the first failure cancels the rest and
// no partial result is returned.
func (m *Matcher) Match(ctx context.Context, refs *Swatches) (*Swatches, error) {
	names := refs.Names()
	results := make([]Color, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Workers)

	for i, name := range names {
		ref, _ := refs.Get(name)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c, err := m.MatchOne(ref)
			if err != nil {
				return &AccentMatchError{Name: name, Err: err}
			}
			m.logger.Debug("matched accent", "name", name, "reference", ref.Hex(), "match", c.Hex())
			results[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := NewSwatches()
	for i, name := range names {
		out.Set(name, results[i])
	}
	return out, nil
}

// MatchOne returns the medoid of the neighbourhood around ref.
func (m *Matcher) MatchOne(ref Color) (Color, error) {
	neighbours := m.Neighbours(ref.Lab())
	medoid, err := Medoid(neighbours)
	if err != nil {
		return Color{}, err
	}
	return FromLab(medoid), nil
}

// Neighbours returns up to NumSample samples nearest to p, nearest first.
func (m *Matcher) Neighbours(p Lab) []Lab {
	keep := kdtree.NewNKeeper(min(m.cfg.NumSample, m.size))
	m.tree.NearestSet(keep, kdtree.Point{p[0], p[1], p[2]})

	found := make([]kdtree.ComparableDist, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		// The keeper starts with an empty sentinel that stays when the
		// tree holds fewer points than requested.
		if cd.Comparable == nil {
			continue
		}
		found = append(found, cd)
	}
	slices.SortStableFunc(found, func(a, b kdtree.ComparableDist) int {
		return cmp.Compare(a.Dist, b.Dist)
	})

	out := make([]Lab, 0, len(found))
	for _, cd := range found {
		pt := cd.Comparable.(kdtree.Point)
		out = append(out, Lab{pt[0], pt[1], pt[2]})
	}
	return out
}

// Medoid returns the point minimising the summed distance to all others:
// k-medoids with k=1, solved exactly. Ties go to the earliest point.
func Medoid(points []Lab) (Lab, error) {
	if len(points) == 0 {
		return Lab{}, ErrDegenerateSample
	}

	best := 0
	bestSum := math.Inf(1)
	for i, p := range points {
		sum := 0.0
		for _, q := range points {
			sum += p.Distance(q)
			if sum >= bestSum {
				break
			}
		}
		if sum < bestSum {
			best = i
			bestSum = sum
		}
	}

	if math.IsNaN(bestSum) || math.IsInf(bestSum, 0) {
		return Lab{}, ErrDegenerateSample
	}
	return points[best], nil
}
