package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/water-builder/internal/builder"
	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/constraints"
	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
	"go.uber.org/zap"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test config",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
		{
			name:       "Example config",
			configPath: "../../" + constants.ExampleConfigFile,
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
				return
			}
			if err := config.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "info" || config.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", config.Logging)
	}
	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Expected output format pretty, got %s", config.Output.Format)
	}
	if config.Solver.MaxSaltPerLiter != 5 || config.Solver.Workers != 4 {
		t.Errorf("unexpected solver config %+v", config.Solver)
	}

	water := config.Water
	if water.Mode != constants.ModeSolve {
		t.Errorf("Expected mode solve, got %s", water.Mode)
	}
	expectedSource := ions.Profile{Calcium: 20, Magnesium: 5, Sodium: 10, Sulfate: 25, Chloride: 15, Bicarbonate: 60}
	if water.Source.Profile != expectedSource {
		t.Errorf("Source = %+v, expected %+v", water.Source.Profile, expectedSource)
	}
	if water.Source.Volume != 15 || water.Dilution.Volume != 5 {
		t.Errorf("volumes source=%v dilution=%v, expected 15 and 5", water.Source.Volume, water.Dilution.Volume)
	}
	if water.Dilution.Profile != (ions.Profile{}) {
		t.Errorf("Dilution = %+v, expected distilled water", water.Dilution.Profile)
	}
	if water.Target.Sulfate != 250 || water.TargetVolume != 20 {
		t.Errorf("unexpected target %+v in %v L", water.Target, water.TargetVolume)
	}
	if len(water.Salts) != 6 {
		t.Errorf("Expected 6 salt entries, got %d", len(water.Salts))
	}
	if water.Goal != "minimize-deviation" {
		t.Errorf("Expected goal minimize-deviation, got %s", water.Goal)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	yaml := `
water:
  target:
    calcium: 50
    sulfate: 120
  targetVolume: 20
  salts:
    CaSO4: true
`
	config, err := LoadConfigurationFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if err := config.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	// Defaults
	if config.Output.Format != constants.OutputFormatPretty {
		t.Errorf("Output.Format = %q, expected pretty", config.Output.Format)
	}
	if config.Water.Mode != constants.ModeSolve {
		t.Errorf("Water.Mode = %q, expected solve", config.Water.Mode)
	}
	if config.Water.Goal != constraints.MinimizeDeviation.String() {
		t.Errorf("Water.Goal = %q, expected minimize-deviation", config.Water.Goal)
	}
	set, err := config.Water.ConstraintSet()
	if err != nil {
		t.Fatalf("ConstraintSet() error = %v", err)
	}
	for _, ion := range ions.All {
		if set[ion] != constraints.LEQ {
			t.Errorf("default constraint for %s = %s, expected leq", ion, set[ion])
		}
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("water: [unclosed")); err == nil {
		t.Errorf("expected error for malformed YAML")
	}
}

func TestConfigurationValidate(t *testing.T) {
	valid := func() *Configuration {
		c := &Configuration{
			Water: WaterConfig{
				Target:       ions.Profile{Calcium: 50},
				TargetVolume: 20,
				Salts:        map[string]bool{"gypsum": true},
			},
		}
		c.Normalize()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr string
	}{
		{"valid", func(c *Configuration) {}, ""},
		{"zero target volume", func(c *Configuration) { c.Water.TargetVolume = 0 }, "TargetVolume"},
		{"bad mode", func(c *Configuration) { c.Water.Mode = "optimize" }, "Mode"},
		{"bad output format", func(c *Configuration) { c.Output.Format = "xml" }, "output format"},
		{"bad log level", func(c *Configuration) { c.Logging.Level = "verbose" }, "Level"},
		{"bad log format", func(c *Configuration) { c.Logging.Format = "xml" }, "Format"},
		{"negative tolerance", func(c *Configuration) { c.Solver.EqualityTolerance = -1 }, "EqualityTolerance"},
		{"too many workers", func(c *Configuration) { c.Solver.Workers = 1000 }, "Workers"},
		{"unknown ion", func(c *Configuration) { c.Water.Constraints["potassium"] = "leq" }, "Constraints"},
		{"unknown relation", func(c *Configuration) { c.Water.Constraints["calcium"] = "about" }, "Constraints"},
		{"missing ion", func(c *Configuration) { delete(c.Water.Constraints, "chloride") }, "chloride"},
		{"duplicate ion", func(c *Configuration) { c.Water.Constraints["Ca"] = "eq" }, "duplicate"},
		{"unknown goal", func(c *Configuration) { c.Water.Goal = "maximize-flavor" }, "Goal"},
		{"salt goal without salt", func(c *Configuration) { c.Water.Goal = "maximize-salt" }, "Goal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, expected it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	c := &Configuration{
		Water: WaterConfig{
			Source:       WaterSource{Profile: ions.Profile{Sodium: 80}, Volume: 20},
			Target:       ions.Profile{Calcium: 60, Sodium: 20, Sulfate: 140},
			TargetVolume: 20,
			Salts:        map[string]bool{"gypsum": true, "unobtainium": true},
		},
	}
	c.Normalize()

	warnings := c.ValidateConfiguration()
	joined := strings.Join(warnings, "\n")
	if !strings.Contains(joined, "unobtainium") {
		t.Errorf("expected a warning about the unknown salt, got %v", warnings)
	}
	if !strings.Contains(joined, "sodium") {
		t.Errorf("expected a warning about sodium above target, got %v", warnings)
	}
	if strings.Contains(joined, "calcium") {
		t.Errorf("calcium is reachable with gypsum, got %v", warnings)
	}
}

func TestToInput(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	in, err := config.ToInput(nil)
	if err != nil {
		t.Fatalf("ToInput() error = %v", err)
	}

	if in.SourceVolume != 15 || in.DilutionVolume != 5 || in.TargetVolume != 20 {
		t.Errorf("unexpected volumes %v/%v/%v", in.SourceVolume, in.DilutionVolume, in.TargetVolume)
	}
	if !in.Base().Equal(config.Water.Base(), 0) {
		t.Errorf("Base mismatch: %+v vs %+v", in.Base(), config.Water.Base())
	}
	if in.Base().Calcium != 15 {
		t.Errorf("Base calcium = %v, expected 15 after dilution", in.Base().Calcium)
	}

	expectedAllowed := map[salts.ID]bool{
		salts.CalciumSulfate:    true,
		salts.CalciumChloride:   true,
		salts.MagnesiumSulfate:  true,
		salts.SodiumChloride:    true,
		salts.SodiumBicarbonate: true,
	}
	for _, id := range salts.DefaultCatalog().IDs() {
		if in.Allowed[id] != expectedAllowed[id] {
			t.Errorf("Allowed[%s] = %v, expected %v", id, in.Allowed[id], expectedAllowed[id])
		}
	}
	if len(in.Allowed) != salts.DefaultCatalog().Len() {
		t.Errorf("Allowed has %d entries, expected every catalog salt", len(in.Allowed))
	}
	if in.Constraints[ions.Calcium] != constraints.EQ || in.Constraints[ions.Sulfate] != constraints.LEQ {
		t.Errorf("unexpected constraints %s", in.Constraints)
	}
	if in.Goal.Kind != constraints.MinimizeDeviation {
		t.Errorf("Goal = %s, expected minimize-deviation", in.Goal)
	}

	solver, err := builder.NewSolver(zap.NewNop(), nil, config.ToOptions())
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	res, err := solver.Solve(in)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !res.Feasible {
		t.Errorf("test configuration should be feasible: %s", res.Reason)
	}

	bf := config.ToBestFitInput(nil)
	if bf.Target != in.Target || bf.TargetVolume != in.TargetVolume || len(bf.Allowed) != len(in.Allowed) {
		t.Errorf("ToBestFitInput() = %+v does not match ToInput()", bf)
	}
}

func TestToInputInvalid(t *testing.T) {
	c := &Configuration{Water: WaterConfig{
		Target:       ions.Profile{Calcium: 50},
		TargetVolume: 20,
		Constraints:  map[string]string{"calcium": "eq"},
		Goal:         "minimize-mass",
	}}

	if _, err := c.ToInput(nil); err == nil {
		t.Errorf("ToInput() should reject a partial constraint map")
	}

	c.Normalize()
	c.Water.Constraints = nil
	c.Normalize()
	c.Water.Goal = "nonsense"
	if _, err := c.ToInput(nil); err == nil {
		t.Errorf("ToInput() should reject an unknown goal")
	}

	// A disallowed goal salt parses here and is rejected by the solver.
	c.Water.Goal = "maximize-salt:calcium-chloride"
	in, err := c.ToInput(nil)
	if err != nil {
		t.Fatalf("ToInput() error = %v", err)
	}
	solver, _ := builder.NewSolver(nil, nil, builder.Options{})
	if _, err := solver.Solve(in); !errors.Is(err, builder.ErrInvalidInput) {
		t.Errorf("Solve() error = %v, expected ErrInvalidInput", err)
	}
}

func TestToOptions(t *testing.T) {
	c := &Configuration{Solver: SolverConfig{EqualityTolerance: 0.5, Workers: 2}}
	opts := c.ToOptions()

	if opts.EqualityTolerance != 0.5 || opts.Workers != 2 {
		t.Errorf("ToOptions() lost configured values: %+v", opts)
	}
	defaults := builder.DefaultOptions()
	if opts.MaxSaltPerLiter != defaults.MaxSaltPerLiter || opts.MaxIterations != defaults.MaxIterations {
		t.Errorf("ToOptions() did not apply defaults: %+v", opts)
	}
}

func TestAllowedSaltsAliases(t *testing.T) {
	w := WaterConfig{Salts: map[string]bool{
		"Gypsum":      true,
		"CaSO4":       false,
		"epsom":       true,
		"table-salt":  false,
		"unobtainium": true,
		"dragon-salt": false,
	}}

	allowed, unknown := w.AllowedSalts(nil)
	if !allowed[salts.CalciumSulfate] {
		t.Errorf("any alias allowing a salt should allow it")
	}
	if !allowed[salts.MagnesiumSulfate] || allowed[salts.SodiumChloride] {
		t.Errorf("unexpected allowed map %v", allowed)
	}
	if len(unknown) != 2 || unknown[0] != "dragon-salt" || unknown[1] != "unobtainium" {
		t.Errorf("unknown = %v, expected sorted unknown names", unknown)
	}
}

func TestToInputResolvesGoalSaltAlias(t *testing.T) {
	c := &Configuration{Water: WaterConfig{
		Target:       ions.Profile{Calcium: 50, Sulfate: 120},
		TargetVolume: 20,
		Salts:        map[string]bool{"gypsum": true},
		Goal:         "max-salt:Gypsum",
	}}
	c.Normalize()

	in, err := c.ToInput(nil)
	if err != nil {
		t.Fatalf("ToInput() error = %v", err)
	}
	if in.Goal.Kind != constraints.MaximizeSalt || in.Goal.Salt != salts.CalciumSulfate {
		t.Errorf("Goal = %s, expected maximize-salt:calcium-sulfate", in.Goal)
	}
}
