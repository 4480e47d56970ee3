package geometry

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidGeometry is wrapped by every GeometryError.
var ErrInvalidGeometry = errors.New("invalid geometry")

// GeometryError reports a diameter/length relation that cannot describe a
// physical part, e.g. an annulus whose inner diameter exceeds the outer one.
type GeometryError struct {
	Part   string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidGeometry, e.Part, e.Reason)
}

func (e *GeometryError) Unwrap() error { return ErrInvalidGeometry }

func invalid(part, format string, args ...any) error {
	return &GeometryError{Part: part, Reason: fmt.Sprintf(format, args...)}
}

const (
	DefaultCoreDensity      = 7650.0 // kg/m3, M235-35A lamination
	DefaultEndWindingLength = 0.03   // m
)

// Annulus returns the volume of a hollow cylinder in m3.
func Annulus(part string, outer, inner, length float64) (float64, error) {
	if outer < inner {
		return 0, invalid(part, "outer diameter %.6g m below inner diameter %.6g m", outer, inner)
	}
	if inner < 0 {
		return 0, invalid(part, "negative inner diameter %.6g m", inner)
	}
	if length < 0 {
		return 0, invalid(part, "negative length %.6g m", length)
	}
	return math.Pi / 4 * (outer*outer - inner*inner) * length, nil
}

// Cylinder returns the volume of a solid cylinder in m3.
func Cylinder(part string, diameter, length float64) (float64, error) {
	return Annulus(part, diameter, 0, length)
}

type Rotor struct {
	Name          string   `json:"name"`
	StackLength   float64  `json:"stack_length_m"`
	InnerDiameter float64  `json:"inner_diameter_m"`
	OuterDiameter float64  `json:"outer_diameter_m"`
	// ShaftDiameter equals InnerDiameter on radial machines. Axial-flux rotors
	// sit on a bushing, so the two differ there.
	ShaftDiameter float64  `json:"shaft_diameter_m"`
	DLRatio       float64  `json:"dl_ratio"`
	Mass          *float64 `json:"mass_kg,omitempty"`
}

// NewRotor derives the diameter/length ratio from the given dimensions.
func NewRotor(name string, stackLength, innerDiameter, outerDiameter, shaftDiameter float64) Rotor {
	r := Rotor{
		Name:          name,
		StackLength:   stackLength,
		InnerDiameter: innerDiameter,
		OuterDiameter: outerDiameter,
		ShaftDiameter: shaftDiameter,
	}
	if stackLength > 0 {
		r.DLRatio = outerDiameter / stackLength
	}
	return r
}

func DefaultRotor(name string) Rotor {
	return NewRotor(name, 0.1, 0.03, 0.1, 0.025)
}

// SetDLRatioLength keeps ratio and stack length, deriving the outer diameter.
func (r *Rotor) SetDLRatioLength(ratio, stackLength float64) error {
	if ratio <= 0 {
		return invalid("rotor", "non-positive diameter/length ratio %.6g", ratio)
	}
	r.DLRatio = ratio
	r.StackLength = stackLength
	r.OuterDiameter = ratio * stackLength
	return nil
}

// SetDLRatioDiameter keeps ratio and outer diameter, deriving the stack length.
func (r *Rotor) SetDLRatioDiameter(ratio, outerDiameter float64) error {
	if ratio <= 0 {
		return invalid("rotor", "non-positive diameter/length ratio %.6g", ratio)
	}
	r.DLRatio = ratio
	r.OuterDiameter = outerDiameter
	r.StackLength = outerDiameter / ratio
	return nil
}

func (r Rotor) Volume() (float64, error) {
	return Annulus("rotor", r.OuterDiameter, r.InnerDiameter, r.StackLength)
}

// SetMassWithDensity sets the mass from the core volume. A non-positive
// density falls back to DefaultCoreDensity.
func (r *Rotor) SetMassWithDensity(density float64) error {
	if density <= 0 {
		density = DefaultCoreDensity
	}
	v, err := r.Volume()
	if err != nil {
		return err
	}
	m := v * density
	r.Mass = &m
	return nil
}

func (r *Rotor) SetMass(mass float64) {
	r.Mass = &mass
}

type Stator struct {
	Name             string  `json:"name"`
	StackLength      float64 `json:"stack_length_m"`
	InnerDiameter    float64 `json:"inner_diameter_m"`
	OuterDiameter    float64 `json:"outer_diameter_m"`
	SplitRatio       float64 `json:"split_ratio"`
	EndWindingLength float64 `json:"end_winding_length_m"`
}

// NewStator derives the split ratio from the given diameters.
func NewStator(name string, stackLength, innerDiameter, outerDiameter float64) Stator {
	s := Stator{
		Name:             name,
		StackLength:      stackLength,
		InnerDiameter:    innerDiameter,
		OuterDiameter:    outerDiameter,
		EndWindingLength: DefaultEndWindingLength,
	}
	if outerDiameter > 0 {
		s.SplitRatio = innerDiameter / outerDiameter
	}
	return s
}

func DefaultStator(name string) Stator {
	return NewStator(name, 0.1, 0.1, 0.2)
}

// SetSplitRatioInner keeps ratio and bore, deriving the outer diameter.
func (s *Stator) SetSplitRatioInner(ratio, innerDiameter float64) error {
	if ratio <= 0 {
		return invalid("stator", "non-positive split ratio %.6g", ratio)
	}
	s.SplitRatio = ratio
	s.InnerDiameter = innerDiameter
	s.OuterDiameter = innerDiameter / ratio
	return nil
}

// SetSplitRatioOuter keeps ratio and outer diameter, deriving the bore.
func (s *Stator) SetSplitRatioOuter(ratio, outerDiameter float64) error {
	if ratio <= 0 {
		return invalid("stator", "non-positive split ratio %.6g", ratio)
	}
	s.SplitRatio = ratio
	s.OuterDiameter = outerDiameter
	s.InnerDiameter = outerDiameter * ratio
	return nil
}

func (s Stator) Volume() (float64, error) {
	return Annulus("stator", s.OuterDiameter, s.InnerDiameter, s.StackLength)
}

// Assembly owns its rotor and stator by value; copying an assembly never
// aliases another one's parts.
type Assembly struct {
	Name   string `json:"name"`
	Rotor  Rotor  `json:"rotor"`
	Stator Stator `json:"stator"`
}

func NewAssembly(name string, rotor Rotor, stator Stator) Assembly {
	return Assembly{Name: name, Rotor: rotor, Stator: stator}
}

// DefaultAssembly mirrors the concept motor used for early sizing runs: a
// 50 mm rotor inside a 100 mm stator, both 100 mm long.
func DefaultAssembly(name string) Assembly {
	rotor := NewRotor(name+"-rotor", 0.1, 0.03, 0.05, 0.025)
	stator := NewStator(name+"-stator", 0.1, rotor.OuterDiameter, 0.1)
	return NewAssembly(name, rotor, stator)
}

// Validate rejects parts whose bore is not strictly inside the outer diameter
// or whose length is not positive.
func (a Assembly) Validate() error {
	r := a.Rotor
	if r.StackLength <= 0 {
		return invalid("rotor", "non-positive stack length %.6g m", r.StackLength)
	}
	if r.InnerDiameter >= r.OuterDiameter {
		return invalid("rotor", "inner diameter %.6g m not below outer diameter %.6g m", r.InnerDiameter, r.OuterDiameter)
	}
	if r.ShaftDiameter < 0 {
		return invalid("rotor", "negative shaft diameter %.6g m", r.ShaftDiameter)
	}
	s := a.Stator
	if s.StackLength <= 0 {
		return invalid("stator", "non-positive stack length %.6g m", s.StackLength)
	}
	if s.InnerDiameter >= s.OuterDiameter {
		return invalid("stator", "inner diameter %.6g m not below outer diameter %.6g m", s.InnerDiameter, s.OuterDiameter)
	}
	return nil
}
