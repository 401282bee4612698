package constraints

import (
	"testing"

	"github.com/iwvelando/water-builder/pkg/ions"
	"github.com/iwvelando/water-builder/pkg/salts"
)

func TestParseRelation(t *testing.T) {
	tests := []struct {
		input     string
		expected  Relation
		expectErr bool
	}{
		{"leq", LEQ, false},
		{"<=", LEQ, false},
		{"GEQ", GEQ, false},
		{">=", GEQ, false},
		{"eq", EQ, false},
		{"=", EQ, false},
		{"==", EQ, false},
		{" exact ", EQ, false},
		{"<", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRelation(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("ParseRelation(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRelation(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseRelation(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRelationText(t *testing.T) {
	for _, rel := range []Relation{LEQ, GEQ, EQ} {
		text, err := rel.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v) error = %v", rel, err)
		}
		var back Relation
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%s) error = %v", text, err)
		}
		if back != rel {
			t.Errorf("text round trip of %v gave %v", rel, back)
		}
	}
	if _, err := Relation(7).MarshalText(); err == nil {
		t.Errorf("MarshalText should reject unknown relation")
	}
}

func TestSetValidate(t *testing.T) {
	if err := Uniform(LEQ).Validate(); err != nil {
		t.Errorf("Uniform(LEQ).Validate() = %v", err)
	}

	partial := Uniform(GEQ)
	delete(partial, ions.Chloride)
	delete(partial, ions.Sodium)
	err := partial.Validate()
	if err == nil {
		t.Fatalf("Validate() should report missing ions")
	}
	if got := err.Error(); got != "missing constraint for sodium, chloride" {
		t.Errorf("Validate() error = %q", got)
	}

	bad := Uniform(EQ)
	bad[ions.Calcium] = Relation(9)
	if bad.Validate() == nil {
		t.Errorf("Validate() should reject unknown relation")
	}

	extra := Uniform(EQ)
	extra[ions.Ion(11)] = LEQ
	if extra.Validate() == nil {
		t.Errorf("Validate() should reject unknown ion")
	}
}

func TestPinned(t *testing.T) {
	s := Pinned(ions.Sulfate, LEQ)
	for _, ion := range ions.All {
		expected := LEQ
		if ion == ions.Sulfate {
			expected = EQ
		}
		if s[ion] != expected {
			t.Errorf("Pinned(sulfate, LEQ)[%v] = %v, expected %v", ion, s[ion], expected)
		}
	}
	if s.String() != "Ca<=,Mg<=,Na<=,SO4=,Cl<=,HCO3<=" {
		t.Errorf("String() = %q", s.String())
	}

	clone := s.Clone()
	clone[ions.Sulfate] = GEQ
	if s[ions.Sulfate] != EQ {
		t.Errorf("Clone() shares storage with original")
	}
}

func TestAnchored(t *testing.T) {
	base := ions.Profile{Calcium: 30, Magnesium: 10, Sodium: 10, Sulfate: 20, Chloride: 20, Bicarbonate: 250}
	target := ions.Profile{Calcium: 100, Magnesium: 10, Sodium: 20, Sulfate: 300, Chloride: 50, Bicarbonate: 40}

	s := Anchored(base, target)
	if s.String() != "Ca<=,Mg>=,Na<=,SO4<=,Cl<=,HCO3>=" {
		t.Errorf("Anchored() = %q", s.String())
	}
	if v := s.Violations(base, target, 0); len(v) > 0 {
		t.Errorf("starting water violates its own anchored set: %v", v)
	}
}

func TestViolations(t *testing.T) {
	target := ions.Profile{Calcium: 50, Magnesium: 10, Sodium: 20, Sulfate: 120, Chloride: 60, Bicarbonate: 40}
	result := ions.Profile{Calcium: 50, Magnesium: 12, Sodium: 15, Sulfate: 119.5, Chloride: 60.0000001, Bicarbonate: 40}

	s := Set{
		ions.Calcium:     EQ,
		ions.Magnesium:   LEQ,
		ions.Sodium:      GEQ,
		ions.Sulfate:     LEQ,
		ions.Chloride:    EQ,
		ions.Bicarbonate: GEQ,
	}

	violations := s.Violations(result, target, 1e-6)
	if len(violations) != 2 {
		t.Fatalf("Violations() = %v, expected 2 entries", violations)
	}
	if violations[0].Ion != ions.Magnesium || violations[0].Amount != 2 {
		t.Errorf("first violation = %+v", violations[0])
	}
	if violations[1].Ion != ions.Sodium || violations[1].Amount != 5 {
		t.Errorf("second violation = %+v", violations[1])
	}
	if s.Satisfied(result, target, 1e-6) {
		t.Errorf("Satisfied() = true, expected false")
	}
	if !s.Satisfied(result, target, 5) {
		t.Errorf("Satisfied() with 5 ppm tolerance = false, expected true")
	}
}

func TestParseSet(t *testing.T) {
	s, err := ParseSet(map[string]string{
		"calcium": "eq", "Mg": "<=", "sodium": "leq",
		"SO4": ">=", "chloride": "=", "bicarbonate": "leq",
	})
	if err != nil {
		t.Fatalf("ParseSet() error = %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if s[ions.Sulfate] != GEQ || s[ions.Chloride] != EQ {
		t.Errorf("ParseSet() = %v", s)
	}

	named := s.Named()
	if named["magnesium"] != "leq" {
		t.Errorf("Named() = %v", named)
	}

	if _, err := ParseSet(map[string]string{"iron": "eq"}); err == nil {
		t.Errorf("ParseSet should reject unknown ion")
	}
	if _, err := ParseSet(map[string]string{"calcium": "approx"}); err == nil {
		t.Errorf("ParseSet should reject unknown relation")
	}
	if _, err := ParseSet(map[string]string{"calcium": "eq", "Ca": "leq"}); err == nil {
		t.Errorf("ParseSet should reject duplicate ion")
	}
}

func TestParseGoal(t *testing.T) {
	tests := []struct {
		input     string
		expected  Goal
		expectErr bool
	}{
		{"", Goal{Kind: MinimizeMass}, false},
		{"minimize-mass", Goal{Kind: MinimizeMass}, false},
		{"Minimize-Deviation", Goal{Kind: MinimizeDeviation}, false},
		{"best-fit", Goal{Kind: LeastSquares}, false},
		{"least-squares", Goal{Kind: LeastSquares}, false},
		{"maximize-salt:calcium-chloride", Goal{Kind: MaximizeSalt, Salt: salts.CalciumChloride}, false},
		{"min-salt: gypsum", Goal{Kind: MinimizeSalt, Salt: "gypsum"}, false},
		{"maximize-salt", Goal{}, true},
		{"minimize-mass:calcium-sulfate", Goal{}, true},
		{"maximize-flavor", Goal{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGoal(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("ParseGoal(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGoal(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseGoal(%q) = %+v, expected %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGoalString(t *testing.T) {
	goals := []Goal{
		{Kind: MinimizeMass},
		{Kind: MinimizeDeviation},
		{Kind: LeastSquares},
		{Kind: MinimizeSalt, Salt: salts.SodiumChloride},
		{Kind: MaximizeSalt, Salt: salts.CalciumSulfate},
	}
	for _, g := range goals {
		back, err := ParseGoal(g.String())
		if err != nil {
			t.Fatalf("ParseGoal(%q) error = %v", g.String(), err)
		}
		if back != g {
			t.Errorf("round trip of %+v gave %+v", g, back)
		}
	}
	if LeastSquares.Linear() {
		t.Errorf("LeastSquares should not be linear")
	}
	if !MaximizeSalt.NeedsSalt() || MinimizeMass.NeedsSalt() {
		t.Errorf("NeedsSalt() mismatch")
	}
}
