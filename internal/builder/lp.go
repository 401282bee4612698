package builder

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// secondaryMassWeight breaks ties between optimal vertices in favour of
// lighter additions for goals that do not already minimize mass.
const secondaryMassWeight = 1e-6

// row is one linear constraint over the structural variables: either
// coef·z <= rhs (with its own slack column) or coef·z == rhs.
type row struct {
	coef     []float64
	rhs      float64
	equality bool
}

// program is a linear program over the allowed salts (and, for the
// deviation goal, per-ion over/under variables) in gonum standard form:
// minimize c·z subject to A z = b, z >= 0.
type program struct {
	salts      []salts.ID
	structural int
	c          []float64
	a          *mat.Dense
	b          []float64
}

// buildProgram translates the constraints and goal into a standard-form LP.
// Ions that no allowed salt contributes to cannot be moved, so they are
// checked directly against the base water instead of becoming LP rows; a
// failed check is returned as the infeasibility reason.
func (s *Solver) buildProgram(in Input, base ions.Profile, allowed []salts.ID) (*program, string) {
	nx := len(allowed)
	deviation := in.Goal.Kind == constraints.MinimizeDeviation
	structural := nx
	if deviation {
		structural += 2 * ions.Count
	}

	coefficients := make([][]float64, ions.Count)
	for _, ion := range ions.All {
		coefficients[ion] = make([]float64, nx)
		for j, id := range allowed {
			coefficients[ion][j] = s.catalog.Coefficient(id, ion)
		}
	}

	var rows []row
	for _, ion := range ions.All {
		rel := in.Constraints[ion]
		need := in.Target.Get(ion) - base.Get(ion)

		if allZero(coefficients[ion]) {
			if v := s.violations(constraints.Set{ion: rel}, base, in.Target); len(v) > 0 {
				return nil, fmt.Sprintf("no allowed salt adds %s: %s", ion, describe(v))
			}
			continue
		}

		ax := widen(coefficients[ion], structural)
		switch rel {
		case constraints.LEQ:
			rows = append(rows, row{coef: ax, rhs: need})
		case constraints.GEQ:
			rows = append(rows, row{coef: negate(ax), rhs: -need})
		case constraints.EQ:
			band := s.equalityBand()
			rows = append(rows,
				row{coef: ax, rhs: need + band},
				row{coef: negate(ax), rhs: -(need - band)},
			)
		}
	}

	for j := 0; j < nx; j++ {
		bound := make([]float64, structural)
		bound[j] = 1
		rows = append(rows, row{coef: bound, rhs: s.opts.MaxSaltPerLiter})
	}

	if deviation {
		// base + a·x - target = over - under
		for _, ion := range ions.All {
			coef := widen(coefficients[ion], structural)
			coef[nx+2*int(ion)] = -1
			coef[nx+2*int(ion)+1] = 1
			rows = append(rows, row{coef: coef, rhs: in.Target.Get(ion) - base.Get(ion), equality: true})
		}
	}

	c := make([]float64, structural)
	switch in.Goal.Kind {
	case constraints.MinimizeMass:
		for j := 0; j < nx; j++ {
			c[j] = 1
		}
	case constraints.MinimizeDeviation:
		for j := 0; j < nx; j++ {
			c[j] = secondaryMassWeight
		}
		for k := nx; k < structural; k++ {
			c[k] = 1
		}
	case constraints.MinimizeSalt, constraints.MaximizeSalt:
		sign := 1.0
		if in.Goal.Kind == constraints.MaximizeSalt {
			sign = -1
		}
		for j, id := range allowed {
			c[j] = secondaryMassWeight
			if id == in.Goal.Salt {
				c[j] = sign
			}
		}
	}

	return standardForm(allowed, structural, c, rows), ""
}

// standardForm appends one slack column per inequality row and flips rows
// so that every right-hand side is non-negative. Each inequality row owns
// its slack column and each equality row owns its deviation columns, so A
// always has full row rank.
func standardForm(allowed []salts.ID, structural int, c []float64, rows []row) *program {
	slacks := 0
	for _, r := range rows {
		if !r.equality {
			slacks++
		}
	}

	m, n := len(rows), structural+slacks
	a := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	slack := structural
	for i, r := range rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		for j, v := range r.coef {
			if v != 0 {
				a.Set(i, j, sign*v)
			}
		}
		if !r.equality {
			a.Set(i, slack, sign)
			slack++
		}
		b[i] = sign * r.rhs
	}

	full := make([]float64, n)
	copy(full, c)
	return &program{salts: allowed, structural: structural, c: full, a: a, b: b}
}

// solve runs the simplex method and maps the optimum back to salt
// quantities. Any solver failure is reported as an infeasibility reason:
// with every salt bounded the program can only fail when no point
// satisfies the constraints or the problem is numerically degenerate.
func (p *program) solve(tol float64) (map[salts.ID]float64, float64, string) {
	objective, z, err := lp.Simplex(p.c, p.a, p.b, tol, nil)
	if err != nil {
		switch {
		case errors.Is(err, lp.ErrInfeasible):
			return nil, 0, "no non-negative combination of the allowed salts satisfies the constraints"
		case errors.Is(err, lp.ErrUnbounded):
			return nil, 0, "the goal is unbounded under the constraints"
		default:
			return nil, 0, fmt.Sprintf("numerically degenerate problem: %v", err)
		}
	}

	quantities := make(map[salts.ID]float64, len(p.salts))
	for j, id := range p.salts {
		q := z[j]
		if q < 0 {
			q = 0
		}
		quantities[id] = q
	}
	return quantities, objective, ""
}

// equalityBand is the half-width of the slab an EQ row becomes. It never
// drops below half the feasibility tolerance: a zero-width slab can be
// emptied by rounding in target - base, and verification still accepts
// anything inside the band.
func (s *Solver) equalityBand() float64 {
	return math.Max(s.opts.EqualityTolerance, s.opts.FeasibilityTolerance/2)
}

func allZero(values []float64) bool {
	for _, v := range values {
		if v != 0 {
			return false
		}
	}
	return true
}

// widen copies values into a zeroed slice of length n.
func widen(values []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, values)
	return out
}

func negate(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = -v
	}
	return out
}
