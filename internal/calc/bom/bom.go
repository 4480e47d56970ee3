package bom

import (
	"fmt"
	"math"

	"Motorsize/internal/calc/geometry"
	"Motorsize/internal/calc/sizing"
)

// StatorMasses are the stator core and winding masses in kg.
type StatorMasses struct {
	Core   float64 `json:"core_kg"`
	Copper float64 `json:"copper_kg"`
}

// RotorMasses holds the rotor parts in kg. Which fields are populated
// depends on the topology: Cage only for induction machines, Bushing, Bolts
// and EndRings only for the axial-flux x-motor.
type RotorMasses struct {
	Core     float64 `json:"core_kg"`
	Magnet   float64 `json:"magnet_kg"`
	Cage     float64 `json:"cage_kg"`
	Shaft    float64 `json:"shaft_kg"`
	Bushing  float64 `json:"bushing_kg"`
	Bolts    float64 `json:"bolts_kg"`
	EndRings float64 `json:"end_rings_kg"`
}

type HousingMasses struct {
	Shell   float64 `json:"shell_kg"`
	EndCaps float64 `json:"end_caps_kg"`
}

func (h HousingMasses) Aluminium() float64 { return h.Shell + h.EndCaps }

// Masses is the full volumetric decomposition of a sized assembly.
type Masses struct {
	Topology           sizing.Topology `json:"topology"`
	Stator             StatorMasses    `json:"stator"`
	Rotor              RotorMasses     `json:"rotor"`
	Housing            HousingMasses   `json:"housing"`
	InsulationMaterial float64         `json:"insulation_material_kg"`
	InsulationResin    float64         `json:"insulation_resin_kg"`
	Plastics           float64         `json:"plastics_kg"`
	Paint              float64         `json:"paint_kg"`
}

// Active is the electromagnetically active mass: cores, windings, magnets
// or cage and the shaft.
func (m Masses) Active() float64 {
	r := m.Rotor
	return m.Stator.Core + m.Stator.Copper + r.Core + r.Magnet + r.Cage + r.Shaft
}

type volumes struct {
	err error
}

// annulus records the first invalid volume and returns zero from then on,
// so a decomposition reads as straight-line arithmetic.
func (v *volumes) annulus(part string, outer, inner, length float64) float64 {
	if v.err != nil {
		return 0
	}
	vol, err := geometry.Annulus(part, outer, inner, length)
	if err != nil {
		v.err = err
		return 0
	}
	return vol
}

func (v *volumes) positive(part string, value float64) float64 {
	if v.err == nil && !(value > 0) {
		v.err = &geometry.GeometryError{Part: part, Reason: fmt.Sprintf("non-positive volume %.6g m3", value)}
	}
	return value
}

// Decompose splits the sized assembly into per-material masses. Any part
// whose dimensions produce a negative volume fails the whole decomposition.
func Decompose(top sizing.Topology, a geometry.Assembly) (Masses, error) {
	if !top.Valid() {
		return Masses{}, fmt.Errorf("%w: topology %s", sizing.ErrInvalidConfiguration, top)
	}
	if err := a.Validate(); err != nil {
		return Masses{}, err
	}

	m := Masses{Topology: top}
	v := &volumes{}
	m.Stator = stator(v, top, a)
	if top.IsRadial() {
		m.Rotor = radialRotor(v, top, a)
	} else {
		m.Rotor = axialRotor(v, a)
	}
	m.Housing = housing(v, a)
	if v.err != nil {
		return Masses{}, v.err
	}

	copper := m.Stator.Copper
	m.InsulationMaterial = copper * InsulationShare
	m.InsulationResin = copper * ResinShare
	m.Plastics = copper * PlasticShare
	m.Paint = m.Housing.Aluminium() * PaintShare
	return m, nil
}

func stator(v *volumes, top sizing.Topology, a geometry.Assembly) StatorMasses {
	dso := a.Stator.OuterDiameter
	dsi := a.Stator.InnerDiameter
	l := a.Rotor.StackLength
	yokeInner := top.YokeRatio() * dso

	cylinder := v.annulus("stator", dso, dsi, l)
	yoke := v.annulus("stator yoke", dso, yokeInner, l)
	// yoke boundary must sit outside the bore or there is no room for teeth
	teethAndSlots := v.positive("stator teeth", cylinder-yoke)

	teeth := teethAndSlots * 0.5
	slots := teethAndSlots - teeth
	winding := slots * FillFactor * (1 + (l+2*a.Stator.EndWindingLength)/l)

	return StatorMasses{
		Core:   (yoke + teeth) * DensityElectricalSteel,
		Copper: winding * DensityCopper,
	}
}

func radialRotor(v *volumes, top sizing.Topology, a geometry.Assembly) RotorMasses {
	dro := a.Stator.InnerDiameter
	dri := a.Rotor.InnerDiameter
	l := a.Rotor.StackLength

	annulus := v.annulus("rotor", dro, dri, l)
	// the shaft extends one stack length beyond the core
	shaft := v.annulus("shaft", dri, 0, 2*l)

	r := RotorMasses{Shaft: shaft * DensityMildSteel}
	if top.IsPermanentMagnet() {
		magnet := annulus * MagnetFraction
		r.Core = (annulus - magnet) * DensityElectricalSteel
		r.Magnet = magnet * DensityNdFeB
	} else {
		cage := annulus * CageFraction
		r.Core = (annulus - cage) * DensityElectricalSteel
		r.Cage = cage * DensityCopper
	}
	return r
}

// axialRotor models the x-motor rotor: pole pieces and ferrite magnets on a
// bushing, clamped between two end rings by axial bolts.
func axialRotor(v *volumes, a geometry.Assembly) RotorMasses {
	dro := a.Rotor.OuterDiameter
	dri := a.Rotor.InnerDiameter
	dsh := a.Rotor.ShaftDiameter
	l := a.Rotor.StackLength

	annulus := v.annulus("rotor", dro, dri, l)
	poles := annulus * PoleArcRatio
	circumferential := annulus - poles
	axial := 2 * v.annulus("axial magnets", dro, dri, AxialMagnetLength) * PoleArcRatio

	bushing := v.positive("bushing", v.annulus("bushing", dri, dsh, l))
	shaft := v.annulus("shaft", dsh, 0, 2*l)
	boltLength := l + 2*AxialMagnetLength + 2*EndRingThickness
	bolts := BoltCount * v.annulus("bolt", BoltDiameter, 0, boltLength)
	endRings := 2 * v.annulus("end ring", dro, dri, EndRingThickness)

	return RotorMasses{
		Core:     poles * DensityPolePiece,
		Magnet:   (circumferential + axial) * DensityFerrite,
		Shaft:    shaft * DensityMildSteel,
		Bushing:  bushing * DensityMildSteel,
		Bolts:    bolts * DensityBolt,
		EndRings: endRings * DensityPolePiece,
	}
}

func housing(v *volumes, a geometry.Assembly) HousingMasses {
	dso := a.Stator.OuterDiameter
	dh := dso + HousingClearance
	lh := v.positive("housing", 2*a.Rotor.StackLength-EndPlateAllowance)

	shell := v.annulus("housing", dh, dso, lh)
	caps := 2 * v.annulus("end cap", dh, a.Rotor.InnerDiameter, EndCapThickness)
	return HousingMasses{
		Shell:   shell * DensityAluminium,
		EndCaps: caps * DensityAluminium,
	}
}

// Category is a BOM material class, in the column order of the per-kg
// impact table.
type Category int

const (
	ElectricalSteel Category = iota
	OtherSteel
	Aluminum
	Copper
	InsulationMaterials
	InsulationResins
	Paint
	Plastics
	NdFeB
	Ferrite
	NumCategories
)

var categoryNames = [NumCategories]string{
	"Electrical steel",
	"Other steel",
	"Aluminum",
	"Copper",
	"Insulation materials",
	"Insulation resins",
	"Paint",
	"Plastics",
	"NdFeB",
	"Ferrite",
}

func (c Category) String() string {
	if c < 0 || c >= NumCategories {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// BOM is the per-category mass breakdown in kg. It is a snapshot: nothing
// in this package mutates a BOM after BOM() returns it.
type BOM struct {
	Name                string  `json:"name"`
	ElectricalSteel     float64 `json:"electrical_steel_kg"`
	OtherSteel          float64 `json:"other_steel_kg"`
	Aluminum            float64 `json:"aluminum_kg"`
	Copper              float64 `json:"copper_kg"`
	InsulationMaterials float64 `json:"insulation_materials_kg"`
	InsulationResins    float64 `json:"insulation_resins_kg"`
	Paint               float64 `json:"paint_kg"`
	Plastics            float64 `json:"plastics_kg"`
	NdFeB               float64 `json:"ndfeb_kg"`
	Ferrite             float64 `json:"ferrite_kg"`
}

// BOM aggregates the decomposition. Radial PM machines carry NdFeB, the
// x-motor carries ferrite and induction machines carry neither.
func (m Masses) BOM(name string) BOM {
	r := m.Rotor
	b := BOM{
		Name:                name,
		ElectricalSteel:     m.Stator.Core + r.Core + r.EndRings,
		OtherSteel:          r.Shaft + r.Bushing + r.Bolts,
		Aluminum:            m.Housing.Aluminium(),
		Copper:              m.Stator.Copper + r.Cage,
		InsulationMaterials: m.InsulationMaterial,
		InsulationResins:    m.InsulationResin,
		Paint:               m.Paint,
		Plastics:            m.Plastics,
	}
	if m.Topology.IsRadial() {
		b.NdFeB = r.Magnet
	} else {
		b.Ferrite = r.Magnet
	}
	return b
}

// Vector returns the masses in Category order.
func (b BOM) Vector() []float64 {
	return []float64{
		b.ElectricalSteel,
		b.OtherSteel,
		b.Aluminum,
		b.Copper,
		b.InsulationMaterials,
		b.InsulationResins,
		b.Paint,
		b.Plastics,
		b.NdFeB,
		b.Ferrite,
	}
}

func (b BOM) Get(c Category) float64 {
	v := b.Vector()
	if c < 0 || int(c) >= len(v) {
		return math.NaN()
	}
	return v[c]
}

func (b BOM) Total() float64 {
	var sum float64
	for _, v := range b.Vector() {
		sum += v
	}
	return sum
}
