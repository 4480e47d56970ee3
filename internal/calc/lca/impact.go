package lca

import (
	"fmt"

	"Motorsize/internal/calc/bom"

	"gonum.org/v1/gonum/mat"
)

// Category is a production environmental impact (PEI) category, ReCiPe
// midpoint method.
type Category int

const (
	ClimateChange Category = iota
	FossilDepletion
	FreshwaterEcotoxicity
	FreshwaterEutrophication
	HumanToxicity
	IonisingRadiation
	MetalDepletion
	OzoneDepletion
	ParticulateMatterFormation
	PhotochemicalOxidantFormation
	TerrestrialAcidification
	TerrestrialEcotoxicity
	NumCategories
)

var categories = [NumCategories]struct{ name, unit string }{
	{"Climate change", "kg CO2"},
	{"Fossil depletion", "kg oil-eq."},
	{"Freshwater ecotoxicity", "kg 1,4-DCB-eq."},
	{"Freshwater eutrophication", "kg P-eq."},
	{"Human toxicity", "kg 1,4-DCB-eq."},
	{"Ionising radiation", "kg U235-eq."},
	{"Metal depletion", "kg Fe-eq."},
	{"Ozone depletion", "kg CFC-11-eq."},
	{"Particulate matter formation", "kg PM10"},
	{"Photochemical oxidant formation", "kg NMVOC"},
	{"Terrestrial acidification", "kg SO2"},
	{"Terrestrial ecotoxicity", "kg 1,4-DCB-eq."},
}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categories[c].name
}

func (c Category) Unit() string {
	if c < 0 || c >= NumCategories {
		return ""
	}
	return categories[c].unit
}

// perKg is the impact of producing one kg of each BOM material. Rows follow
// Category, columns follow bom.Category.
var perKg = [NumCategories][bom.NumCategories]float64{
	{1.68e+00, 2.20e+00, 9.38e+00, 1.30e+00, 5.00e-01, 5.50e+00, 2.13e+00, 2.40e+00, 1.00e+01, 4.36e-01},
	{5.98e-01, 6.50e-01, 2.19e+00, 4.00e-01, 1.88e-01, 2.40e+00, 1.00e+00, 1.80e+00, 4.80e+00, 1.32e-01},
	{3.36e-02, 1.30e-01, 4.50e-02, 4.00e-02, 1.04e-03, 6.00e-03, 7.33e-03, 4.20e-03, 2.08e-01, 9.00e-03},
	{2.06e+00, 2.50e+00, 8.75e+00, 1.40e+00, 7.60e-01, 7.50e+00, 2.67e+00, 2.80e+00, 1.16e+01, 1.91e-01},
	{5.61e+00, 8.90e+00, 5.13e+01, 1.30e+02, 5.20e-01, 8.50e+00, 5.07e+00, 6.60e+00, 2.84e+01, 5.20e-01},
	{3.36e-01, 6.30e-01, 2.19e+00, 3.80e-01, 3.40e-02, 7.50e-01, 4.67e-01, 5.80e-01, 1.64e+00, 3.40e-02},
	{5.05e+00, 2.70e+00, 4.63e-01, 2.20e+01, 5.60e-03, 2.05e-01, 1.47e-01, 1.56e-01, 1.96e+00, 1.96e-01},
	{1.78e-07, 1.70e-07, 5.69e-07, 1.00e-07, 8.20e-09, 5.50e-07, 3.00e-07, 6.00e-07, 1.60e-06, 4.96e-09},
	{6.92e-03, 5.50e-02, 1.69e-02, 3.10e-02, 8.40e-04, 9.00e-03, 4.67e-03, 3.40e-03, 2.32e-02, 6.04e-04},
	{6.82e-03, 3.20e-02, 2.13e-02, 2.30e-02, 2.00e-03, 2.15e-02, 8.00e-03, 8.80e-03, 2.88e-02, 2.00e-03},
	{7.85e-03, 2.20e-01, 3.75e-02, 8.50e-02, 2.40e-03, 2.30e-02, 1.40e-02, 9.80e-03, 5.20e-02, 2.40e-03},
	{2.43e-03, 1.50e-02, 1.19e-02, 7.70e-02, 6.60e-05, 2.50e-03, 3.00e-03, 8.20e-04, 1.08e-02, 6.60e-05},
}

// Coefficients returns the per-kg table as a dense 12x10 matrix.
func Coefficients() *mat.Dense {
	data := make([]float64, 0, int(NumCategories)*int(bom.NumCategories))
	for _, row := range perKg {
		data = append(data, row[:]...)
	}
	return mat.NewDense(int(NumCategories), int(bom.NumCategories), data)
}

type Row struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// Impact is the PEI vector in Category order. Values carry their category's
// own unit and are never normalised.
type Impact struct {
	Values []float64 `json:"values"`
	Rows   []Row     `json:"rows"`
}

func (i Impact) Get(c Category) float64 {
	if c < 0 || int(c) >= len(i.Values) {
		return 0
	}
	return i.Values[c]
}

// Evaluate multiplies the per-kg table with the BOM mass vector.
func Evaluate(b bom.BOM) Impact {
	masses := mat.NewVecDense(int(bom.NumCategories), b.Vector())
	var pei mat.VecDense
	pei.MulVec(Coefficients(), masses)

	out := Impact{
		Values: make([]float64, NumCategories),
		Rows:   make([]Row, NumCategories),
	}
	for i := 0; i < int(NumCategories); i++ {
		c := Category(i)
		out.Values[i] = pei.AtVec(i)
		out.Rows[i] = Row{Category: c.String(), Value: out.Values[i], Unit: c.Unit()}
	}
	return out
}
