package motor

import (
	"fmt"

	"Motorsize/internal/calc/bom"
	"Motorsize/internal/calc/geometry"
	"Motorsize/internal/calc/lca"
	"Motorsize/internal/calc/sizing"
	"Motorsize/internal/metrics"
)

type Input struct {
	Name               string          `json:"name"`
	Topology           sizing.Topology `json:"topology"`
	DLRatio            float64         `json:"dl_ratio"`
	AverageShearStress float64         `json:"average_shear_stress_kpa"`
	MaxRotorSpeed      float64         `json:"max_rotor_speed_rpm"`
	MaxTorque          float64         `json:"max_torque_nm"`
	BaseSpeed          float64         `json:"base_speed_rpm"`
	AirgapFluxDensity  float64         `json:"airgap_flux_density_t"`
}

// DefaultInput is an IPM traction motor: 200 N·m, 12000 rpm, 80 kPa.
func DefaultInput() Input {
	req := sizing.DefaultRequirements()
	return Input{
		Name:               "IPM",
		Topology:           sizing.IPM,
		DLRatio:            sizing.IPM.DefaultDLRatio(),
		AverageShearStress: req.AverageShearStress,
		MaxRotorSpeed:      req.MaxRotorSpeed,
		MaxTorque:          req.MaxTorque,
		BaseSpeed:          req.BaseSpeed,
		AirgapFluxDensity:  req.AirgapFluxDensity,
	}
}

func (in Input) Requirements() sizing.Requirements {
	return sizing.Requirements{
		AverageShearStress: in.AverageShearStress,
		MaxRotorSpeed:      in.MaxRotorSpeed,
		MaxTorque:          in.MaxTorque,
		BaseSpeed:          in.BaseSpeed,
		AirgapFluxDensity:  in.AirgapFluxDensity,
	}
}

type Geometry struct {
	RotorOuterDiameterM  float64 `json:"rotor_outer_diameter_m"`
	RotorInnerDiameterM  float64 `json:"rotor_inner_diameter_m"`
	ShaftDiameterM       float64 `json:"shaft_diameter_m"`
	StackLengthM         float64 `json:"stack_length_m"`
	DLRatio              float64 `json:"dl_ratio"`
	StatorInnerDiameterM float64 `json:"stator_inner_diameter_m"`
	StatorOuterDiameterM float64 `json:"stator_outer_diameter_m"`
	SplitRatio           float64 `json:"split_ratio"`
	RotorVolumeM3        float64 `json:"rotor_volume_m3"`
	StatorVolumeM3       float64 `json:"stator_volume_m3"`
}

type Result struct {
	Name        string             `json:"name"`
	Topology    sizing.Topology    `json:"topology"`
	Input       Input              `json:"input"`
	Geometry    Geometry           `json:"geometry"`
	Assembly    geometry.Assembly  `json:"assembly"`
	Derived     sizing.Derived     `json:"derived"`
	Diagnostics sizing.Diagnostics `json:"diagnostics"`
	Masses      bom.Masses         `json:"masses"`
	BOM         bom.BOM            `json:"bom"`
	TotalMassKG float64            `json:"total_mass_kg"`
	Impact      lca.Impact         `json:"impact"`
	OK          bool               `json:"ok"`
	Notes       []string           `json:"notes"`
}

// Calculate sizes the motor, decomposes it into a BOM and evaluates its
// production impact. A zero DL ratio selects the topology default.
func Calculate(in Input) (res Result, err error) {
	defer func() {
		var flags []string
		if err == nil {
			flags = flagNames(res.Diagnostics)
		}
		metrics.RecordSizing(in.Topology.String(), err, flags, res.TotalMassKG)
	}()

	if !in.Topology.Valid() {
		return Result{}, fmt.Errorf("%w: topology is required", sizing.ErrInvalidConfiguration)
	}
	if in.DLRatio < 0 {
		return Result{}, fmt.Errorf("%w: dl_ratio must not be negative", sizing.ErrInvalidConfiguration)
	}
	if in.DLRatio == 0 {
		in.DLRatio = in.Topology.DefaultDLRatio()
	}
	if in.Name == "" {
		in.Name = in.Topology.String()
	}

	engine, err := sizing.New(in.Topology, in.Requirements())
	if err != nil {
		return Result{}, err
	}
	in.AirgapFluxDensity = engine.Requirements().AirgapFluxDensity

	assembly := geometry.DefaultAssembly(in.Name)
	if err := assembly.Rotor.SetDLRatioDiameter(in.DLRatio, assembly.Rotor.OuterDiameter); err != nil {
		return Result{}, err
	}
	sized, err := engine.Size(&assembly)
	if err != nil {
		return Result{}, err
	}

	masses, err := bom.Decompose(in.Topology, assembly)
	if err != nil {
		return Result{}, err
	}
	b := masses.BOM(in.Name)

	g, err := summarize(assembly)
	if err != nil {
		return Result{}, err
	}

	notes := sized.Diagnostics.Messages()
	if !in.Topology.IsRadial() {
		notes = append(notes, "Axial-flux rotor on a bushing; shaft diameter differs from rotor bore.")
	}
	notes = append(notes, "Concept-level estimate with zero airgap.")

	return Result{
		Name:        in.Name,
		Topology:    in.Topology,
		Input:       in,
		Geometry:    g,
		Assembly:    assembly,
		Derived:     sized.Derived,
		Diagnostics: sized.Diagnostics,
		Masses:      masses,
		BOM:         b,
		TotalMassKG: b.Total(),
		Impact:      lca.Evaluate(b),
		OK:          !sized.Diagnostics.Any(),
		Notes:       notes,
	}, nil
}

func summarize(a geometry.Assembly) (Geometry, error) {
	rv, err := a.Rotor.Volume()
	if err != nil {
		return Geometry{}, err
	}
	sv, err := a.Stator.Volume()
	if err != nil {
		return Geometry{}, err
	}
	return Geometry{
		RotorOuterDiameterM:  a.Rotor.OuterDiameter,
		RotorInnerDiameterM:  a.Rotor.InnerDiameter,
		ShaftDiameterM:       a.Rotor.ShaftDiameter,
		StackLengthM:         a.Rotor.StackLength,
		DLRatio:              a.Rotor.DLRatio,
		StatorInnerDiameterM: a.Stator.InnerDiameter,
		StatorOuterDiameterM: a.Stator.OuterDiameter,
		SplitRatio:           a.Stator.SplitRatio,
		RotorVolumeM3:        rv,
		StatorVolumeM3:       sv,
	}, nil
}

func flagNames(d sizing.Diagnostics) []string {
	var out []string
	if d.TipSpeedExceeded {
		out = append(out, "tip_speed")
	}
	if d.ShearStressOutOfRange {
		out = append(out, "shear_stress")
	}
	if d.StackingLimitExceeded {
		out = append(out, "stacking_limit")
	}
	return out
}
