package integration

import (
	"testing"
	"time"

	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
	"go.uber.org/zap"
)

func allSalts() map[salts.ID]bool {
	allowed := make(map[salts.ID]bool)
	for _, id := range salts.DefaultCatalog().IDs() {
		allowed[id] = true
	}
	return allowed
}

func benchmarkInput() builder.BestFitInput {
	return builder.BestFitInput{
		Source:         ions.Profile{Calcium: 30, Magnesium: 6, Sodium: 14, Sulfate: 35, Chloride: 22, Bicarbonate: 95},
		SourceVolume:   15,
		DilutionVolume: 10,
		Target:         ions.Profile{Calcium: 120, Magnesium: 18, Sodium: 30, Sulfate: 300, Chloride: 55, Bicarbonate: 80},
		TargetVolume:   25,
		Allowed:        allSalts(),
	}
}

// TestBestFitPerformance guards against a pathological slowdown of the
// candidate search.
func TestBestFitPerformance(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping performance test in short mode")
	}

	solver, err := builder.NewSolver(zap.NewNop(), nil, builder.Options{})
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}

	start := time.Now()
	out, err := solver.BestFit(benchmarkInput())
	if err != nil {
		t.Fatalf("BestFit() error = %v", err)
	}
	if !out.Found {
		t.Fatalf("expected a best fit: %s", out.Reason)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("best fit took %v", elapsed)
	}
}

func BenchmarkSolve(b *testing.B) {
	solver, _ := builder.NewSolver(zap.NewNop(), nil, builder.Options{})
	bf := benchmarkInput()
	in := builder.Input{
		Source:         bf.Source,
		SourceVolume:   bf.SourceVolume,
		DilutionVolume: bf.DilutionVolume,
		Target:         bf.Target,
		TargetVolume:   bf.TargetVolume,
		Allowed:        bf.Allowed,
		Constraints:    builder.Candidates()[0].Constraints,
		Goal:           builder.Candidates()[0].Goal,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := solver.Solve(in); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBestFit(b *testing.B) {
	solver, _ := builder.NewSolver(zap.NewNop(), nil, builder.Options{})
	in := benchmarkInput()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := solver.BestFit(in); err != nil {
			b.Fatal(err)
		}
	}
}
