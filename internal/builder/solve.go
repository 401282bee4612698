package builder

import (
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
	"go.uber.org/zap"
)

// Solve computes salt quantities (g/L) for in. It returns an error only when
// the input is malformed (wrapping ErrInvalidInput); an unsatisfiable
// request yields a Result with Feasible false.
func (s *Solver) Solve(in Input) (Result, error) {
	start := time.Now()
	if err := s.validate(in); err != nil {
		solveOutcomes.WithLabelValues(in.Goal.Kind.String(), outcomeInvalid).Inc()
		return Result{}, err
	}

	result := s.solve(in)

	outcome := outcomeFeasible
	if !result.Feasible {
		outcome = outcomeInfeasible
	}
	solveOutcomes.WithLabelValues(in.Goal.Kind.String(), outcome).Inc()
	solveDuration.WithLabelValues(in.Goal.Kind.String()).Observe(time.Since(start).Seconds())

	s.logger.Debug("solved water profile",
		zap.String("op", "builder.Solve"),
		zap.String("goal", in.Goal.String()),
		zap.String("constraints", in.Constraints.String()),
		zap.Bool("feasible", result.Feasible),
		zap.String("reason", result.Reason),
		zap.Float64("score", result.Score),
		zap.Float64("totalMass", result.TotalMass),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

// solve runs on validated input.
func (s *Solver) solve(in Input) Result {
	if in.SourceVolume < 0 || in.DilutionVolume < 0 {
		return infeasible(in, in.Source, fmt.Sprintf("source and dilution volumes must not be negative (source %v L, dilution %v L)", in.SourceVolume, in.DilutionVolume))
	}
	base := in.Base()
	allowed := in.AllowedSalts(s.catalog)

	if in.Goal.Kind == constraints.LeastSquares {
		return s.solveLeastSquares(in, base, allowed)
	}

	if len(allowed) == 0 {
		if v := s.violations(in.Constraints, base, in.Target); len(v) > 0 {
			return infeasible(in, base, "no salts allowed and the starting water misses the target: "+describe(v))
		}
		return s.finish(in, base, make(map[salts.ID]float64), 0)
	}

	problem, reason := s.buildProgram(in, base, allowed)
	if reason != "" {
		return infeasible(in, base, reason)
	}

	quantities, objective, reason := problem.solve(s.opts.SimplexTolerance)
	if reason != "" {
		return infeasible(in, base, reason)
	}

	projected, err := s.catalog.ProjectConcentration(base, quantities)
	if err != nil {
		return infeasible(in, base, err.Error())
	}
	if v := s.violations(in.Constraints, projected, in.Target); len(v) > 0 {
		return infeasible(in, base, "solution failed verification: "+describe(v))
	}
	return s.finish(in, base, quantities, objective)
}

// finish fills the catalog-wide quantity map and the derived figures.
func (s *Solver) finish(in Input, base ions.Profile, quantities map[salts.ID]float64, objective float64) Result {
	full := make(map[salts.ID]float64, s.catalog.Len())
	var total float64
	for _, id := range s.catalog.IDs() {
		q := 0.0
		if in.Allowed[id] {
			q = quantities[id]
		}
		full[id] = q
		total += q
	}

	projected, err := s.catalog.ProjectConcentration(base, full)
	if err != nil {
		return infeasible(in, base, err.Error())
	}
	return Result{
		Feasible:     true,
		Quantities:   full,
		Base:         base,
		Profile:      projected,
		Target:       in.Target,
		TargetVolume: in.TargetVolume,
		Score:        ions.Score(projected, in.Target),
		TotalMass:    total,
		Objective:    objective,
		Goal:         in.Goal,
		Constraints:  in.Constraints.Clone(),
		Converged:    true,
	}
}

// violations checks a profile against the constraints. EQ constraints accept
// the configured equality band on top of the feasibility tolerance.
func (s *Solver) violations(set constraints.Set, result, target ions.Profile) []constraints.Violation {
	raw := set.Violations(result, target, s.opts.FeasibilityTolerance)
	out := raw[:0]
	for _, v := range raw {
		if v.Relation == constraints.EQ && v.Amount <= s.opts.EqualityTolerance+s.opts.FeasibilityTolerance {
			continue
		}
		out = append(out, v)
	}
	return out
}

func describe(violations []constraints.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}
	return strings.Join(parts, "; ")
}
