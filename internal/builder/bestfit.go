package builder

import (
	"fmt"
	"time"

	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BestFitInput is an Input without constraints or goal; best fit chooses
// those itself.
type BestFitInput struct {
	Source         ions.Profile
	SourceVolume   float64
	Dilution       ions.Profile
	DilutionVolume float64
	Target         ions.Profile
	TargetVolume   float64
	Allowed        map[salts.ID]bool
}

func (in BestFitInput) with(c Candidate) Input {
	return Input{
		Source:         in.Source,
		SourceVolume:   in.SourceVolume,
		Dilution:       in.Dilution,
		DilutionVolume: in.DilutionVolume,
		Target:         in.Target,
		TargetVolume:   in.TargetVolume,
		Allowed:        in.Allowed,
		Constraints:    c.Constraints,
		Goal:           c.Goal,
	}
}

// Candidate is one constraint template and goal tried by best fit.
type Candidate struct {
	Constraints constraints.Set
	Goal        constraints.Goal
}

// Candidates lists the fixed combinations best fit evaluates, in the order used
// for tie-breaking: every ion capped, every ion floored, then each ion
// pinned to its target with the others capped or floored. Each template is
// tried with the deviation goal first and the mass goal second.
func Candidates() []Candidate {
	templates := []constraints.Set{
		constraints.Uniform(constraints.LEQ),
		constraints.Uniform(constraints.GEQ),
	}
	for _, ion := range ions.All {
		templates = append(templates,
			constraints.Pinned(ion, constraints.LEQ),
			constraints.Pinned(ion, constraints.GEQ),
		)
	}

	goals := []constraints.Goal{
		{Kind: constraints.MinimizeDeviation},
		{Kind: constraints.MinimizeMass},
	}

	out := make([]Candidate, 0, len(templates)*len(goals))
	for _, set := range templates {
		for _, goal := range goals {
			out = append(out, Candidate{Constraints: set.Clone(), Goal: goal})
		}
	}
	return out
}

// CandidatesFor is Candidates followed by the anchored template for base and
// target, tried with both goals. The anchored template is satisfied by
// adding nothing, so best fit always has a feasible candidate to fall back on.
func CandidatesFor(base, target ions.Profile) []Candidate {
	out := Candidates()
	anchored := constraints.Anchored(base, target)
	for _, goal := range []constraints.Goal{
		{Kind: constraints.MinimizeDeviation},
		{Kind: constraints.MinimizeMass},
	} {
		out = append(out, Candidate{Constraints: anchored.Clone(), Goal: goal})
	}
	return out
}

// BestFitResult is the lowest-score feasible candidate. When Found is false
// no candidate was feasible and Result is the zero value.
type BestFitResult struct {
	Found       bool
	Reason      string
	Result      Result
	Constraints constraints.Set
	Goal        constraints.Goal
	Evaluated   int
	Feasible    int
}

// BestFit solves every candidate and keeps the feasible one with the lowest
// error score. Candidates run concurrently; ties go to the candidate listed
// first by CandidatesFor, so the outcome does not depend on scheduling. The
// winner can be reproduced by calling Solve with its constraints and goal.
func (s *Solver) BestFit(in BestFitInput) (BestFitResult, error) {
	start := time.Now()
	first := in.with(Candidates()[0])
	if err := s.validate(first); err != nil {
		bestFitSearches.WithLabelValues(outcomeInvalid).Inc()
		return BestFitResult{}, err
	}
	candidates := CandidatesFor(first.Base(), in.Target)

	results := make([]Result, len(candidates))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, c := range candidates {
		i, c := i, c
		g.Go(func() error {
			res, err := s.Solve(in.with(c))
			if err != nil {
				return fmt.Errorf("candidate %s %s: %w", c.Goal, c.Constraints, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		bestFitSearches.WithLabelValues(outcomeInvalid).Inc()
		return BestFitResult{}, err
	}

	out := BestFitResult{Evaluated: len(candidates)}
	best := -1
	for i, res := range results {
		if !res.Feasible {
			continue
		}
		out.Feasible++
		if best < 0 || res.Score < results[best].Score {
			best = i
		}
	}

	bestFitDuration.Observe(time.Since(start).Seconds())
	if best < 0 {
		out.Reason = "no constraint template admits a non-negative combination of the allowed salts"
		bestFitSearches.WithLabelValues(outcomeInfeasible).Inc()
		s.logger.Info("best fit found no feasible candidate",
			zap.String("op", "builder.BestFit"),
			zap.Int("evaluated", out.Evaluated),
			zap.Duration("duration", time.Since(start)),
		)
		return out, nil
	}

	out.Found = true
	out.Result = results[best]
	out.Constraints = candidates[best].Constraints
	out.Goal = candidates[best].Goal
	bestFitSearches.WithLabelValues(outcomeFeasible).Inc()

	s.logger.Info("best fit selected candidate",
		zap.String("op", "builder.BestFit"),
		zap.String("goal", out.Goal.String()),
		zap.String("constraints", out.Constraints.String()),
		zap.Float64("score", out.Result.Score),
		zap.Float64("totalMass", out.Result.TotalMass),
		zap.Int("evaluated", out.Evaluated),
		zap.Int("feasible", out.Feasible),
		zap.Duration("duration", time.Since(start)),
	)
	return out, nil
}
