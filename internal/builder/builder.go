// Package builder computes the mineral salt additions that move a starting
// brewing water toward a target ion profile.
package builder

import (
	"errors"
	"fmt"

	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/salts"
	"go.uber.org/zap"
)

// ErrInvalidInput marks requests rejected before solving. Infeasible
// requests are not errors; they come back as a Result with Feasible unset.
var ErrInvalidInput = errors.New("invalid input")

// Options tunes the solver. Zero fields take the defaults from constants.
type Options struct {
	// MaxSaltPerLiter caps every salt (g/L) so the linear program stays bounded.
	MaxSaltPerLiter float64
	// EqualityTolerance widens EQ constraints to target ± this many ppm.
	EqualityTolerance float64
	// FeasibilityTolerance is the slack (ppm) allowed when a solution is
	// re-projected and checked against the constraints.
	FeasibilityTolerance float64
	// SimplexTolerance is passed to the simplex implementation.
	SimplexTolerance float64
	// MaxIterations caps least-squares sweeps.
	MaxIterations int
	// Convergence stops least squares once a sweep moves no salt further
	// than this (g/L).
	Convergence float64
	// Workers bounds concurrent solves during best fit.
	Workers int
}

// DefaultOptions returns the solver defaults.
func DefaultOptions() Options {
	return Options{
		MaxSaltPerLiter:      constants.DefaultMaxSaltPerLiter,
		EqualityTolerance:    constants.DefaultEqualityTolerance,
		FeasibilityTolerance: constants.DefaultFeasibilityTolerance,
		SimplexTolerance:     constants.DefaultSimplexTolerance,
		MaxIterations:        constants.DefaultMaxIterations,
		Convergence:          constants.DefaultConvergence,
		Workers:              constants.DefaultBestFitWorkers,
	}
}

// Normalize fills unset fields with defaults.
func (o *Options) Normalize() {
	d := DefaultOptions()
	if o.MaxSaltPerLiter <= 0 {
		o.MaxSaltPerLiter = d.MaxSaltPerLiter
	}
	if o.FeasibilityTolerance <= 0 {
		o.FeasibilityTolerance = d.FeasibilityTolerance
	}
	if o.SimplexTolerance <= 0 {
		o.SimplexTolerance = d.SimplexTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Convergence <= 0 {
		o.Convergence = d.Convergence
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
}

// Validate rejects option values that cannot be normalized away.
func (o Options) Validate() error {
	if o.EqualityTolerance < 0 {
		return fmt.Errorf("equality tolerance must not be negative, got %v", o.EqualityTolerance)
	}
	if o.MaxSaltPerLiter < 0 {
		return fmt.Errorf("max salt per liter must not be negative, got %v", o.MaxSaltPerLiter)
	}
	return nil
}

// Solver solves water adjustment problems against one salt catalog. A
// Solver holds no mutable state and may be shared between goroutines.
type Solver struct {
	logger  *zap.Logger
	catalog *salts.Catalog
	opts    Options
}

// NewSolver constructs a Solver. A nil logger is replaced with a no-op
// logger and a nil catalog with the default salt catalog.
func NewSolver(logger *zap.Logger, catalog *salts.Catalog, opts Options) (*Solver, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if catalog == nil {
		catalog = salts.DefaultCatalog()
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("solver options: %w", err)
	}
	opts.Normalize()
	return &Solver{logger: logger, catalog: catalog, opts: opts}, nil
}

// Catalog returns the salt catalog the solver works against.
func (s *Solver) Catalog() *salts.Catalog {
	return s.catalog
}

// Options returns the normalized solver options.
func (s *Solver) Options() Options {
	return s.opts
}
