package sizing

import (
	"errors"
	"fmt"
	"math"

	"Motorsize/internal/calc/geometry"
)

// ErrInvalidConfiguration is wrapped by every ConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

type ConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s=%q: %s", ErrInvalidConfiguration, e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

func configError(field, value, reason string) error {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// Empirical limits and curve fits from benchmark EV machines.
const (
	MaxTipSpeed        = 110.0 // m/s, silicon iron
	MaxStackLength     = 0.3   // m, single-stack manufacturing limit
	MinCurveFitShear   = 40.0  // kPa
	MaxCurveFitShear   = 120.0 // kPa
	splitRatioSlope    = -0.0018
	splitRatioOffset   = 0.8062
	shaftCoefficient   = 1330.0
	axialInnerFraction = 0.44
	DefaultFluxDensity = 1.0 // T
)

// Requirements are the traction targets the motor is sized for.
type Requirements struct {
	AverageShearStress float64 `json:"average_shear_stress_kpa"`
	MaxRotorSpeed      float64 `json:"max_rotor_speed_rpm"`
	MaxTorque          float64 `json:"max_torque_nm"`
	BaseSpeed          float64 `json:"base_speed_rpm"`
	AirgapFluxDensity  float64 `json:"airgap_flux_density_t"`
}

func DefaultRequirements() Requirements {
	return Requirements{
		AverageShearStress: 80,
		MaxRotorSpeed:      12000,
		MaxTorque:          200,
		BaseSpeed:          3000,
		AirgapFluxDensity:  DefaultFluxDensity,
	}
}

func (r Requirements) validate() error {
	positive := []struct {
		field string
		v     float64
	}{
		{"average_shear_stress", r.AverageShearStress},
		{"max_rotor_speed", r.MaxRotorSpeed},
		{"max_torque", r.MaxTorque},
		{"base_speed", r.BaseSpeed},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			return configError(p.field, fmt.Sprint(p.v), "must be a positive finite number")
		}
	}
	if r.AirgapFluxDensity < 0 || math.IsNaN(r.AirgapFluxDensity) {
		return configError("airgap_flux_density", fmt.Sprint(r.AirgapFluxDensity), "must not be negative")
	}
	return nil
}

// Diagnostics are advisory; a flagged design is still fully sized.
type Diagnostics struct {
	TipSpeedExceeded      bool `json:"tip_speed_exceeded"`
	ShearStressOutOfRange bool `json:"shear_stress_out_of_range"`
	StackingLimitExceeded bool `json:"stacking_limit_exceeded"`
}

func (d Diagnostics) Any() bool {
	return d.TipSpeedExceeded || d.ShearStressOutOfRange || d.StackingLimitExceeded
}

// Messages lists a human readable line per raised flag.
func (d Diagnostics) Messages() []string {
	var out []string
	if d.TipSpeedExceeded {
		out = append(out, fmt.Sprintf("rotor tip speed at or above %.0f m/s silicon iron limit", MaxTipSpeed))
	}
	if d.StackingLimitExceeded {
		out = append(out, fmt.Sprintf("stack length above %.0f mm, two stacks required", MaxStackLength*1000))
	}
	if d.ShearStressOutOfRange {
		out = append(out, fmt.Sprintf("shear stress outside %.0f-%.0f kPa split ratio curve fit", MinCurveFitShear, MaxCurveFitShear))
	}
	return out
}

// Derived holds intermediate values produced along the pipeline.
type Derived struct {
	RotorVolume   float64 `json:"rotor_volume_m3"`
	TipSpeed      float64 `json:"tip_speed_m_s"`
	SplitRatio    float64 `json:"split_ratio"`
	Power         float64 `json:"power_w"`
	ShaftDiameter float64 `json:"shaft_diameter_m"`
}

type Result struct {
	Topology    Topology          `json:"topology"`
	Assembly    geometry.Assembly `json:"assembly"`
	Diagnostics Diagnostics       `json:"diagnostics"`
	Derived     Derived           `json:"derived"`
}

// Engine sizes assemblies for one topology and requirement set. It holds no
// per-run state, so one engine may size distinct assemblies concurrently.
type Engine struct {
	topology Topology
	req      Requirements
}

func New(topology Topology, req Requirements) (*Engine, error) {
	if !topology.Valid() {
		return nil, configError("topology", topology.String(), "unknown motor topology")
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.AirgapFluxDensity == 0 {
		req.AirgapFluxDensity = DefaultFluxDensity
	}
	return &Engine{topology: topology, req: req}, nil
}

func (e *Engine) Topology() Topology         { return e.topology }
func (e *Engine) Requirements() Requirements { return e.req }

// state is threaded through the stages by value.
type state struct {
	geom    geometry.Assembly
	diag    Diagnostics
	derived Derived
}

type stage struct {
	name string
	run  func(e *Engine, s state) (state, error)
}

// pipeline is the only order the stages run in; each reads geometry the
// previous one wrote.
var pipeline = [...]stage{
	{"rotor dimensions", (*Engine).sizeRotor},
	{"tip speed", (*Engine).checkTipSpeed},
	{"stacking limit", (*Engine).checkStackingLimit},
	{"stator split ratio", (*Engine).sizeStator},
	{"shaft", (*Engine).sizeShaft},
}

// Size runs every stage and, if the final geometry is valid, writes it back
// into a. On error a is left untouched.
func (e *Engine) Size(a *geometry.Assembly) (Result, error) {
	s := state{geom: *a}
	for _, st := range pipeline {
		var err error
		s, err = st.run(e, s)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", st.name, err)
		}
	}
	if err := s.geom.Validate(); err != nil {
		return Result{}, err
	}
	*a = s.geom
	return Result{
		Topology:    e.topology,
		Assembly:    s.geom,
		Diagnostics: s.diag,
		Derived:     s.derived,
	}, nil
}

// sizeRotor applies the shear-stress torque relation T = 2·τ·V.
func (e *Engine) sizeRotor(s state) (state, error) {
	dl := s.geom.Rotor.DLRatio
	if !(dl > 0) {
		return s, &geometry.GeometryError{Part: "rotor", Reason: fmt.Sprintf("diameter/length ratio %.6g must be preset and positive", dl)}
	}
	volume := e.req.MaxTorque / e.req.AverageShearStress / 2.0 / 1000.0
	outer := math.Cbrt(volume * 4.0 / math.Pi * dl)
	if err := s.geom.Rotor.SetDLRatioDiameter(dl, outer); err != nil {
		return s, err
	}
	s.derived.RotorVolume = volume
	return s, nil
}

func (e *Engine) checkTipSpeed(s state) (state, error) {
	tip := s.geom.Rotor.OuterDiameter * e.req.MaxRotorSpeed * math.Pi / 60.0
	s.derived.TipSpeed = tip
	s.diag.TipSpeedExceeded = tip >= MaxTipSpeed
	return s, nil
}

func (e *Engine) checkStackingLimit(s state) (state, error) {
	s.diag.StackingLimitExceeded = s.geom.Rotor.StackLength > MaxStackLength
	return s, nil
}

// sizeStator places the stator bore on the rotor surface (no airgap in the
// concept model) and takes the split ratio from the benchmark curve fit.
func (e *Engine) sizeStator(s state) (state, error) {
	tau := e.req.AverageShearStress
	s.geom.Stator.StackLength = s.geom.Rotor.StackLength
	s.diag.ShearStressOutOfRange = tau > MaxCurveFitShear || tau < MinCurveFitShear

	split := splitRatioSlope*tau + splitRatioOffset
	if err := s.geom.Stator.SetSplitRatioInner(split, s.geom.Rotor.OuterDiameter); err != nil {
		return s, err
	}
	s.derived.SplitRatio = split
	return s, nil
}

func (e *Engine) sizeShaft(s state) (state, error) {
	power := e.req.BaseSpeed * math.Pi / 30 * e.req.MaxTorque
	shaft := math.Cbrt(shaftCoefficient*power/e.req.BaseSpeed) / 1000

	r := &s.geom.Rotor
	r.ShaftDiameter = shaft
	if e.topology.IsRadial() {
		r.InnerDiameter = shaft
	} else {
		// the x-motor shaft runs in a bushing inside the rotor bore
		r.InnerDiameter = r.OuterDiameter * axialInnerFraction
	}
	s.derived.Power = power
	s.derived.ShaftDiameter = shaft
	return s, nil
}
