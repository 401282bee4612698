package builder

import (
	"math"

	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/mathutil"
	"github.com/iwvelando/water-builder/pkg/salts"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// solveLeastSquares minimizes the mean squared ion error over
// 0 <= x <= MaxSaltPerLiter with cyclic coordinate descent. The objective is
// a convex quadratic, so each coordinate step is an exact clamped line
// minimization and the sweep order fixes the outcome.
func (s *Solver) solveLeastSquares(in Input, base ions.Profile, allowed []salts.ID) Result {
	nx := len(allowed)
	quantities := make(map[salts.ID]float64, nx)
	if nx == 0 {
		res := s.finish(in, base, quantities, 0)
		res.Violations = s.violations(in.Constraints, res.Profile, in.Target)
		return res
	}

	a := mat.NewDense(ions.Count, nx, nil)
	for _, ion := range ions.All {
		for j, id := range allowed {
			a.Set(int(ion), j, s.catalog.Coefficient(id, ion))
		}
	}

	// residual = base + a·x - target, starting from x = 0
	start := make([]float64, ions.Count)
	floats.SubTo(start, base.Slice(), in.Target.Slice())
	residual := mat.NewVecDense(ions.Count, start)

	curvature := make([]float64, nx)
	for j := 0; j < nx; j++ {
		col := a.ColView(j)
		curvature[j] = mat.Dot(col, col)
	}

	x := make([]float64, nx)
	iterations := 0
	converged := false
	for iterations < s.opts.MaxIterations {
		iterations++
		largest := 0.0
		for j := 0; j < nx; j++ {
			if curvature[j] == 0 {
				continue
			}
			col := a.ColView(j)
			gradient := mat.Dot(col, residual)
			next := mathutil.Clamp(x[j]-gradient/curvature[j], 0, s.opts.MaxSaltPerLiter)
			step := next - x[j]
			if step == 0 {
				continue
			}
			residual.AddScaledVec(residual, step, col)
			x[j] = next
			largest = math.Max(largest, math.Abs(step))
		}
		if largest <= s.opts.Convergence {
			converged = true
			break
		}
	}

	for j, id := range allowed {
		quantities[id] = x[j]
	}
	res := s.finish(in, base, quantities, mat.Dot(residual, residual)/ions.Count)
	res.Violations = s.violations(in.Constraints, res.Profile, in.Target)
	res.Iterations = iterations
	res.Converged = converged
	return res
}
