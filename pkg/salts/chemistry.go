package salts

import (
	"github.com/iwvelando/water-builder/pkg/constants"
	"github.com/iwvelando/water-builder/pkg/ions"
)

// Standard atomic weights (g/mol).
const (
	massH  = 1.008
	massC  = 12.011
	massO  = 15.999
	massNa = 22.98977
	massMg = 24.305
	massS  = 32.065
	massCl = 35.453
	massCa = 40.078
)

const massWater = 2*massH + massO

// ionMass is the molar mass of each tracked ion (g/mol).
var ionMass = [ions.Count]float64{
	ions.Calcium:     massCa,
	ions.Magnesium:   massMg,
	ions.Sodium:      massNa,
	ions.Sulfate:     massS + 4*massO,
	ions.Chloride:    massCl,
	ions.Bicarbonate: massH + massC + 3*massO,
}

// yield is the number of ions of one kind released per formula unit.
type yield struct {
	ion   ions.Ion
	count float64
}

// compound describes a salt by molar mass and what it releases into water.
// effectiveness scales every yield; undissolved chalk only delivers about
// half its theoretical contribution in the mash.
type compound struct {
	id            ID
	name          string
	formula       string
	aliases       []string
	molarMass     float64
	yields        []yield
	effectiveness float64
}

// coefficients converts the compound into ppm contributed per g/L.
func (c compound) coefficients() ions.Profile {
	eff := c.effectiveness
	if eff == 0 {
		eff = 1
	}
	var out ions.Profile
	for _, y := range c.yields {
		ppm := y.count * ionMass[y.ion] / c.molarMass * constants.MilligramsPerGram * eff
		out = out.With(y.ion, out.Get(y.ion)+ppm)
	}
	return out
}

func (c compound) entry() Entry {
	return Entry{
		ID:           c.id,
		Name:         c.name,
		Formula:      c.formula,
		Aliases:      append([]string(nil), c.aliases...),
		Coefficients: c.coefficients(),
	}
}

// standardCompounds is the fixed set of supported brewing salts, in catalog
// order.
var standardCompounds = []compound{
	{
		id:        CalciumSulfate,
		name:      "Calcium sulfate (gypsum)",
		formula:   "CaSO4·2H2O",
		aliases:   []string{"gypsum", "CaSO4"},
		molarMass: massCa + massS + 4*massO + 2*massWater,
		yields:    []yield{{ions.Calcium, 1}, {ions.Sulfate, 1}},
	},
	{
		id:        CalciumChloride,
		name:      "Calcium chloride",
		formula:   "CaCl2·2H2O",
		aliases:   []string{"CaCl2"},
		molarMass: massCa + 2*massCl + 2*massWater,
		yields:    []yield{{ions.Calcium, 1}, {ions.Chloride, 2}},
	},
	{
		id:        MagnesiumSulfate,
		name:      "Magnesium sulfate (Epsom salt)",
		formula:   "MgSO4·7H2O",
		aliases:   []string{"epsom", "epsom-salt", "MgSO4"},
		molarMass: massMg + massS + 4*massO + 7*massWater,
		yields:    []yield{{ions.Magnesium, 1}, {ions.Sulfate, 1}},
	},
	{
		id:        SodiumBicarbonate,
		name:      "Sodium bicarbonate (baking soda)",
		formula:   "NaHCO3",
		aliases:   []string{"baking-soda", "NaHCO3"},
		molarMass: massNa + massH + massC + 3*massO,
		yields:    []yield{{ions.Sodium, 1}, {ions.Bicarbonate, 1}},
	},
	{
		id:        SodiumChloride,
		name:      "Sodium chloride (table salt)",
		formula:   "NaCl",
		aliases:   []string{"table-salt", "NaCl"},
		molarMass: massNa + massCl,
		yields:    []yield{{ions.Sodium, 1}, {ions.Chloride, 1}},
	},
	{
		// Dissolved with CO2 each carbonate becomes two bicarbonates.
		id:        CalciumCarbonate,
		name:      "Calcium carbonate (chalk, dissolved)",
		formula:   "CaCO3",
		aliases:   []string{"chalk", "CaCO3"},
		molarMass: massCa + massC + 3*massO,
		yields:    []yield{{ions.Calcium, 1}, {ions.Bicarbonate, 2}},
	},
	{
		id:            CalciumCarbonateUndissolved,
		name:          "Calcium carbonate (chalk, undissolved)",
		formula:       "CaCO3",
		aliases:       []string{"chalk-undissolved"},
		molarMass:     massCa + massC + 3*massO,
		yields:        []yield{{ions.Calcium, 1}, {ions.Bicarbonate, 2}},
		effectiveness: 0.5,
	},
	{
		id:        CalciumBicarbonate,
		name:      "Calcium bicarbonate",
		formula:   "Ca(HCO3)2",
		aliases:   []string{"Ca(HCO3)2"},
		molarMass: massCa + 2*(massH+massC+3*massO),
		yields:    []yield{{ions.Calcium, 1}, {ions.Bicarbonate, 2}},
	},
	{
		id:        MagnesiumChloride,
		name:      "Magnesium chloride",
		formula:   "MgCl2·6H2O",
		aliases:   []string{"MgCl2"},
		molarMass: massMg + 2*massCl + 6*massWater,
		yields:    []yield{{ions.Magnesium, 1}, {ions.Chloride, 2}},
	},
}
