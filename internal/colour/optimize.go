package colour

import (
	"math"

	"github.com/hashicorp/go-hclog"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// Outcome tells how the lightness optimizer arrived at its result.
type Outcome int

const (
	// Converged means a solver found lightness values satisfying every constraint.
	Converged Outcome = iota
	// Degraded means both solvers failed and the fallback lightness was used.
	Degraded
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Converged:
		return "converged"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Solver names reported in OptimizeResult.Method.
const (
	MethodAugmentedLagrangian = "augmented-lagrangian"
	MethodPenalty             = "penalty-nelder-mead"
	MethodFallback            = "fallback"
)

// OptimizerConfig holds the constraints and budget of the lightness optimizer.
// Lightness values are CIE L* in [0, 100].
type OptimizerConfig struct {
	// Weight scales the uniqueness penalty against deviation from the original lightness.
	Weight float64
	// MaxIterations bounds each inner solve.
	MaxIterations int
	// MinContrast is the minimum |L_i - L_bg| for every accent.
	MinContrast float64
	// MaxSpread is the maximum |L_i - L_j| for every pair of accents.
	MaxSpread float64
	// UniqueGap is the pairwise lightness gap below which the uniqueness penalty applies.
	UniqueGap float64
	// Tolerance is the constraint violation accepted as converged.
	Tolerance float64
}

// DefaultOptimizerConfig returns the default optimizer configuration.
func DefaultOptimizerConfig() OptimizerConfig {
	return OptimizerConfig{
		Weight:        100,
		MaxIterations: 10000,
		MinContrast:   33,
		MaxSpread:     20,
		UniqueGap:     0.1,
		Tolerance:     1e-6,
	}
}

// OptimizeResult is the tagged result of a lightness optimization.
type OptimizeResult struct {
	// Colors holds the adjusted accents in input order.
	Colors *Swatches
	// Lightness holds the solved L* per accent, aligned with Colors. The
	// constraints hold for these values. Colors are built from them with the
	// accent's a* and b* and then clamped to the sRGB gamut, so a saturated
	// accent's final L* can sit below MinContrast.
	Lightness []float64
	Outcome   Outcome
	Method    string
}

// LightnessOptimizer redistributes accent lightness for contrast against the
// background while keeping each accent's CIE a* and b*.
type LightnessOptimizer struct {
	cfg    OptimizerConfig
	logger hclog.Logger
}

// NewLightnessOptimizer creates a LightnessOptimizer.
func NewLightnessOptimizer(cfg OptimizerConfig, logger hclog.Logger) *LightnessOptimizer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &LightnessOptimizer{cfg: cfg, logger: logger}
}

// Optimize adjusts the lightness of accents against bg. fg only decides the
// direction of the fallback. The augmented Lagrangian solver runs first, the
// penalty solver second; if neither satisfies the constraints every accent is
// placed at MinContrast from the background on the foreground's side.
func (o *LightnessOptimizer) Optimize(bg, fg Color, accents *Swatches) OptimizeResult {
	names := accents.Names()
	if len(names) == 0 {
		return OptimizeResult{Colors: NewSwatches(), Outcome: Converged, Method: MethodAugmentedLagrangian}
	}

	original := make([]float64, len(names))
	for i, name := range names {
		c, _ := accents.Get(name)
		original[i] = c.CIELab()[0]
	}

	p := &lightnessProblem{
		cfg:      o.cfg,
		bgL:      bg.CIELab()[0],
		original: original,
	}

	if x, ok := o.augmentedLagrangian(p); ok {
		o.logger.Debug("lightness optimization converged", "method", MethodAugmentedLagrangian)
		return o.result(names, accents, x, Converged, MethodAugmentedLagrangian)
	}
	o.logger.Debug("primary lightness solver failed, trying backup", "method", MethodPenalty)

	if x, ok := o.penalty(p); ok {
		o.logger.Debug("lightness optimization converged", "method", MethodPenalty)
		return o.result(names, accents, x, Converged, MethodPenalty)
	}

	target := p.bgL - o.cfg.MinContrast
	if fg.CIELab()[0] > p.bgL {
		target = p.bgL + o.cfg.MinContrast
	}
	target = clamp(target, 0, 100)

	x := make([]float64, len(names))
	for i := range x {
		x[i] = target
	}
	return o.result(names, accents, x, Degraded, MethodFallback)
}

func (o *LightnessOptimizer) result(names []string, accents *Swatches, x []float64, outcome Outcome, method string) OptimizeResult {
	out := NewSwatches()
	for i, name := range names {
		c, _ := accents.Get(name)
		lab := c.CIELab()
		out.Set(name, FromCIELab(x[i], lab[1], lab[2]))
	}
	return OptimizeResult{
		Colors:    out,
		Lightness: x,
		Outcome:   outcome,
		Method:    method,
	}
}

// augmentedLagrangian solves the problem with the Powell-Hestenes-Rockafellar
// augmented Lagrangian. Each subproblem is minimised with BFGS on
// finite-difference gradients.
func (o *LightnessOptimizer) augmentedLagrangian(p *lightnessProblem) ([]float64, bool) {
	const maxOuter = 50

	x := append([]float64(nil), p.original...)
	lambda := make([]float64, p.numConstraints())
	rho := 10.0
	prevViolation := math.Inf(1)
	c := make([]float64, 0, len(lambda))

	for outer := 0; outer < maxOuter; outer++ {
		merit := func(x []float64) float64 {
			f := p.objective(x)
			for k, ck := range p.constraints(x, nil) {
				if t := lambda[k] - rho*ck; t > 0 {
					f += (t*t - lambda[k]*lambda[k]) / (2 * rho)
				} else {
					f -= lambda[k] * lambda[k] / (2 * rho)
				}
			}
			return f
		}

		next, err := o.minimize(merit, x, true)
		if err != nil && next == nil {
			o.logger.Trace("augmented lagrangian subproblem failed", "error", err)
			return x, false
		}
		x = next

		c = p.constraints(x, c[:0])
		violation := maxViolation(c)
		for k, ck := range c {
			lambda[k] = math.Max(0, lambda[k]-rho*ck)
		}

		if violation <= o.cfg.Tolerance {
			return x, true
		}
		if violation > 0.25*prevViolation {
			rho *= 10
		}
		prevViolation = violation
		if rho > 1e12 {
			break
		}
	}

	return x, p.feasible(x)
}

// penalty solves the problem with a quadratic penalty continuation and
// derivative-free Nelder-Mead inner solves.
func (o *LightnessOptimizer) penalty(p *lightnessProblem) ([]float64, bool) {
	x := append([]float64(nil), p.original...)
	c := make([]float64, 0, p.numConstraints())

	for mu := 10.0; mu <= 1e10; mu *= 10 {
		penalised := func(x []float64) float64 {
			f := p.objective(x)
			for _, ck := range p.constraints(x, nil) {
				if ck < 0 {
					f += mu * ck * ck
				}
			}
			return f
		}

		next, err := o.minimize(penalised, x, false)
		if err != nil && next == nil {
			o.logger.Trace("penalty subproblem failed", "error", err)
			return x, false
		}
		x = next

		c = p.constraints(x, c[:0])
		if maxViolation(c) <= o.cfg.Tolerance {
			return x, true
		}
	}

	return x, p.feasible(x)
}

// minimize runs one unconstrained gonum solve. It returns the best point
// found even when the solver reports an error.
func (o *LightnessOptimizer) minimize(f func([]float64) float64, x0 []float64, gradient bool) ([]float64, error) {
	problem := optimize.Problem{Func: f}
	var method optimize.Method = &optimize.NelderMead{}
	if gradient {
		problem.Grad = func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{Formula: fd.Central})
		}
		method = &optimize.BFGS{}
	}

	settings := &optimize.Settings{
		MajorIterations: o.cfg.MaxIterations,
	}

	res, err := optimize.Minimize(problem, x0, settings, method)
	if res == nil {
		return nil, err
	}
	return append([]float64(nil), res.X...), err
}

// lightnessProblem is the constrained lightness problem in CIE L*.
// Constraints are expressed as c(x) >= 0.
type lightnessProblem struct {
	cfg      OptimizerConfig
	bgL      float64
	original []float64
}

// objective is the deviation from the original lightness plus the weighted
// uniqueness penalty on near-equal pairs.
func (p *lightnessProblem) objective(x []float64) float64 {
	deviation := floats.Distance(x, p.original, 2)

	uniqueness := 0.0
	for i := range x {
		for j := i + 1; j < len(x); j++ {
			if gap := p.cfg.UniqueGap - math.Abs(x[i]-x[j]); gap > 0 {
				uniqueness += gap * gap
			}
		}
	}

	return deviation + p.cfg.Weight*uniqueness
}

func (p *lightnessProblem) numConstraints() int {
	n := len(p.original)
	return n + n*(n-1)/2 + 2*n
}

// constraints appends c(x) to dst: contrast per accent, spread per pair, then
// the lower and upper bounds per accent.
func (p *lightnessProblem) constraints(x, dst []float64) []float64 {
	for _, xi := range x {
		dst = append(dst, math.Abs(xi-p.bgL)-p.cfg.MinContrast)
	}
	for i := range x {
		for j := i + 1; j < len(x); j++ {
			dst = append(dst, p.cfg.MaxSpread-math.Abs(x[i]-x[j]))
		}
	}
	for _, xi := range x {
		dst = append(dst, xi, 100-xi)
	}
	return dst
}

func (p *lightnessProblem) feasible(x []float64) bool {
	return maxViolation(p.constraints(x, nil)) <= p.cfg.Tolerance
}

// maxViolation returns the largest amount by which any c_k < 0.
func maxViolation(c []float64) float64 {
	worst := 0.0
	for _, ck := range c {
		if -ck > worst {
			worst = -ck
		}
		if math.IsNaN(ck) {
			return math.Inf(1)
		}
	}
	return worst
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
