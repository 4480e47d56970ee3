package sizing

import (
	"encoding/json"
	"math"
	"testing"

	"Motorsize/internal/calc/geometry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assemblyWithDL(t *testing.T, dl float64) geometry.Assembly {
	t.Helper()
	a := geometry.DefaultAssembly("test")
	require.NoError(t, a.Rotor.SetDLRatioDiameter(dl, a.Rotor.OuterDiameter))
	return a
}

func size(t *testing.T, top Topology, req Requirements, dl float64) (geometry.Assembly, Result) {
	t.Helper()
	e, err := New(top, req)
	require.NoError(t, err)
	a := assemblyWithDL(t, dl)
	res, err := e.Size(&a)
	require.NoError(t, err)
	return a, res
}

func TestRotorDimensionsClosedForm(t *testing.T) {
	req := DefaultRequirements()
	a, res := size(t, IPM, req, 0.5)

	volume := 200.0 / 80.0 / 2.0 / 1000.0
	outer := math.Cbrt(volume * 4 / math.Pi * 0.5)
	assert.InDelta(t, 0.00125, res.Derived.RotorVolume, 1e-15)
	assert.InDelta(t, outer, a.Rotor.OuterDiameter, 1e-12)
	assert.InDelta(t, outer/0.5, a.Rotor.StackLength, 1e-12)
	assert.Equal(t, a, res.Assembly)
}

func TestDLRatioPreserved(t *testing.T) {
	for _, top := range Topologies() {
		for _, dl := range []float64{0.5, 1.0, 1 / 1.23, 2.0, 3.0} {
			for _, tau := range []float64{30, 80, 150} {
				req := DefaultRequirements()
				req.AverageShearStress = tau
				a, _ := size(t, top, req, dl)
				assert.InDelta(t, dl, a.Rotor.OuterDiameter/a.Rotor.StackLength, 1e-12, "%s dl=%v tau=%v", top, dl, tau)
				assert.InDelta(t, dl, a.Rotor.DLRatio, 1e-12)
			}
		}
	}
}

func TestShearStressRange(t *testing.T) {
	tests := []struct {
		tau  float64
		want bool
	}{
		{39.9999, true},
		{40, false},
		{40.0001, false},
		{80, false},
		{120, false},
		{120.0001, true},
		{150, true},
	}
	for _, tt := range tests {
		req := DefaultRequirements()
		req.AverageShearStress = tt.tau
		_, res := size(t, IPM, req, 0.5)
		assert.Equal(t, tt.want, res.Diagnostics.ShearStressOutOfRange, "tau=%v", tt.tau)
	}
}

func TestSplitRatioCurveFit(t *testing.T) {
	req := DefaultRequirements()
	req.AverageShearStress = 150
	a, res := size(t, IPM, req, 0.5)

	assert.True(t, res.Diagnostics.ShearStressOutOfRange)
	assert.InDelta(t, 0.5362, res.Derived.SplitRatio, 1e-12)
	assert.InDelta(t, 0.5362, a.Stator.SplitRatio, 1e-12)
	assert.Equal(t, a.Rotor.OuterDiameter, a.Stator.InnerDiameter)
	assert.Equal(t, a.Rotor.StackLength, a.Stator.StackLength)
	assert.InDelta(t, a.Stator.InnerDiameter/0.5362, a.Stator.OuterDiameter, 1e-12)
}

func TestTipSpeedBoundary(t *testing.T) {
	req := DefaultRequirements()
	a, _ := size(t, IPM, req, 0.5)
	outer := a.Rotor.OuterDiameter

	atLimit := MaxTipSpeed * 60 / math.Pi / outer
	for _, n := range []float64{atLimit * 0.999, atLimit, atLimit * 1.001} {
		req.MaxRotorSpeed = n
		_, res := size(t, IPM, req, 0.5)
		tip := outer * n * math.Pi / 60
		assert.InDelta(t, tip, res.Derived.TipSpeed, 1e-9)
		assert.Equal(t, tip >= MaxTipSpeed, res.Diagnostics.TipSpeedExceeded, "n=%v tip=%v", n, tip)
	}

	req.MaxRotorSpeed = atLimit * 1.001
	_, res := size(t, IPM, req, 0.5)
	assert.True(t, res.Diagnostics.TipSpeedExceeded)
	req.MaxRotorSpeed = atLimit * 0.999
	_, res = size(t, IPM, req, 0.5)
	assert.False(t, res.Diagnostics.TipSpeedExceeded)
}

func TestStackingLimit(t *testing.T) {
	req := DefaultRequirements()
	req.MaxTorque = 2000
	_, res := size(t, IPM, req, 0.3)
	assert.True(t, res.Diagnostics.StackingLimitExceeded)
	assert.Greater(t, res.Assembly.Rotor.StackLength, MaxStackLength)

	_, res = size(t, IPM, DefaultRequirements(), 0.5)
	assert.False(t, res.Diagnostics.StackingLimitExceeded)
	assert.False(t, res.Diagnostics.Any())
	assert.Empty(t, res.Diagnostics.Messages())
}

func TestShaftSizing(t *testing.T) {
	req := DefaultRequirements()
	power := req.BaseSpeed * math.Pi / 30 * req.MaxTorque
	shaft := math.Cbrt(1330*power/req.BaseSpeed) / 1000

	for _, top := range []Topology{IPM, PMaSynRel, IM} {
		a, res := size(t, top, req, 0.5)
		assert.InDelta(t, power, res.Derived.Power, 1e-9)
		assert.InDelta(t, shaft, a.Rotor.ShaftDiameter, 1e-15)
		assert.Equal(t, a.Rotor.ShaftDiameter, a.Rotor.InnerDiameter, top.String())
	}

	a, _ := size(t, XMotor, req, XMotor.DefaultDLRatio())
	assert.InDelta(t, 0.44*a.Rotor.OuterDiameter, a.Rotor.InnerDiameter, 1e-15)
	assert.InDelta(t, shaft, a.Rotor.ShaftDiameter, 1e-15)
	assert.NotEqual(t, a.Rotor.ShaftDiameter, a.Rotor.InnerDiameter)
}

func TestDiagnosticsDoNotAbort(t *testing.T) {
	req := Requirements{AverageShearStress: 150, MaxRotorSpeed: 40000, MaxTorque: 3000, BaseSpeed: 3000}
	a, res := size(t, IPM, req, 0.3)
	assert.True(t, res.Diagnostics.TipSpeedExceeded)
	assert.True(t, res.Diagnostics.ShearStressOutOfRange)
	assert.True(t, res.Diagnostics.StackingLimitExceeded)
	assert.Len(t, res.Diagnostics.Messages(), 3)
	assert.Greater(t, a.Rotor.InnerDiameter, 0.0)
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name  string
		top   Topology
		req   func(r *Requirements)
		field string
	}{
		{"unknown topology", Topology(42), func(r *Requirements) {}, "topology"},
		{"zero torque", IPM, func(r *Requirements) { r.MaxTorque = 0 }, "max_torque"},
		{"negative shear", IPM, func(r *Requirements) { r.AverageShearStress = -80 }, "average_shear_stress"},
		{"zero max speed", IM, func(r *Requirements) { r.MaxRotorSpeed = 0 }, "max_rotor_speed"},
		{"NaN base speed", IM, func(r *Requirements) { r.BaseSpeed = math.NaN() }, "base_speed"},
		{"negative flux", IM, func(r *Requirements) { r.AirgapFluxDensity = -1 }, "airgap_flux_density"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := DefaultRequirements()
			tt.req(&req)
			_, err := New(tt.top, req)
			require.ErrorIs(t, err, ErrInvalidConfiguration)
			var cerr *ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestDefaultFluxDensity(t *testing.T) {
	req := DefaultRequirements()
	req.AirgapFluxDensity = 0
	e, err := New(IPM, req)
	require.NoError(t, err)
	assert.Equal(t, DefaultFluxDensity, e.Requirements().AirgapFluxDensity)
}

func TestGeometryErrorLeavesAssemblyUntouched(t *testing.T) {
	req := DefaultRequirements()
	req.AverageShearStress = 400
	e, err := New(IPM, req)
	require.NoError(t, err)

	a := assemblyWithDL(t, 0.05)
	before := a
	_, err = e.Size(&a)
	require.ErrorIs(t, err, geometry.ErrInvalidGeometry)
	assert.Equal(t, before, a)

	req.AverageShearStress = 450
	e, err = New(IPM, req)
	require.NoError(t, err)
	a = assemblyWithDL(t, 0.5)
	_, err = e.Size(&a)
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)
}

func TestMissingDLRatio(t *testing.T) {
	e, err := New(IPM, DefaultRequirements())
	require.NoError(t, err)
	a := geometry.DefaultAssembly("x")
	a.Rotor.DLRatio = 0
	_, err = e.Size(&a)
	assert.ErrorIs(t, err, geometry.ErrInvalidGeometry)
}

func TestSizingDeterministic(t *testing.T) {
	_, first := size(t, PMaSynRel, DefaultRequirements(), 1.5)
	for i := 0; i < 5; i++ {
		_, again := size(t, PMaSynRel, DefaultRequirements(), 1.5)
		assert.Equal(t, first, again)
	}
}

func TestTopologyTraits(t *testing.T) {
	assert.False(t, XMotor.IsRadial())
	assert.True(t, XMotor.IsPermanentMagnet())
	assert.True(t, IM.IsRadial())
	assert.False(t, IM.IsPermanentMagnet())
	assert.True(t, IPM.IsPermanentMagnet() && IPM.IsRadial())
	assert.True(t, PMaSynRel.IsPermanentMagnet() && PMaSynRel.IsRadial())
	assert.Equal(t, 0.86, IM.YokeRatio())
	assert.Equal(t, 0.88, IPM.YokeRatio())
	assert.Equal(t, 0.90, PMaSynRel.YokeRatio())
	assert.InDelta(t, 0.813, XMotor.DefaultDLRatio(), 1e-3)
}

func TestParseTopology(t *testing.T) {
	for in, want := range map[string]Topology{
		"x-motor":   XMotor,
		"X-Motor":   XMotor,
		"IPM":       IPM,
		"pmasynrel": PMaSynRel,
		"PMaSynREL": PMaSynRel,
		" IM ":      IM,
	} {
		got, err := ParseTopology(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseTopology("SRM")
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestTopologyJSON(t *testing.T) {
	var v struct {
		Topology Topology `json:"topology"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"topology":"PMaSynREL"}`), &v))
	assert.Equal(t, PMaSynRel, v.Topology)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"topology":"PMaSynREL"}`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`{"topology":"DC"}`), &v))
}
