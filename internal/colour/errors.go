package colour

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateSample is returned when a stage is given no colours to work on.
	ErrDegenerateSample = errors.New("no colours to sample from")

	// ErrOptimizationDegraded reports that both lightness solvers failed and the
	// deterministic fallback was used. Contrast against the background still
	// holds, pairwise spread may not.
	ErrOptimizationDegraded = errors.New("lightness optimization did not converge, fallback lightness used")

	// ErrInvalidHex is returned for colour strings not in #RRGGBB form.
	ErrInvalidHex = errors.New("value must match #RRGGBB")

	// ErrMixNotConverged reports that mixing stopped at its round limit with
	// some slots still outside the distance threshold.
	ErrMixNotConverged = errors.New("mixing stopped at round limit")
)

// NoForegroundError is returned when no sampled colour is far enough in
// lightness from the background to serve as foreground.
type NoForegroundError struct {
	BackgroundL float64
	Threshold   float64
}

func (e *NoForegroundError) Error() string {
	return fmt.Sprintf("no foreground found: every sampled colour is within %.2f lightness of the background (L=%.3f)",
		e.Threshold, e.BackgroundL)
}

// AccentMatchError is returned when matching a single reference accent fails.
// One failing accent aborts the whole match.
type AccentMatchError struct {
	Name string
	Err  error
}

func (e *AccentMatchError) Error() string {
	return fmt.Sprintf("failed to match accent %q: %v", e.Name, e.Err)
}

func (e *AccentMatchError) Unwrap() error {
	return e.Err
}
