package bom

// Mass densities in kg/m3.
const (
	DensityElectricalSteel = 7650.0 // M235-35A lamination
	DensityCopper          = 8933.0
	DensityMildSteel       = 7800.0
	DensityNdFeB           = 7500.0 // N42UH
	DensityPolePiece       = 7850.0 // soft magnetic composite
	DensityFerrite         = 5000.0
	DensityBolt            = 7870.0
	DensityAluminium       = 2790.0 // cast housing alloy
)

// Volumetric model constants from MotorCAD EV templates and benchmark teardowns.
const (
	FillFactor        = 0.4
	MagnetFraction    = 0.2 // share of the radial rotor annulus
	CageFraction      = 0.5
	PoleArcRatio      = 0.8
	AxialMagnetLength = 0.012 // m
	HousingClearance  = 0.035 // m, added to stator outer diameter
	EndPlateAllowance = 0.02  // m, subtracted from twice the stack length
	EndCapThickness   = 0.005 // m
	BoltCount         = 12
	BoltDiameter      = 0.006 // m
	EndRingThickness  = 0.01  // m
	InsulationShare   = 0.01  // of stator copper mass
	ResinShare        = 0.312 // of stator copper mass
	PlasticShare      = 0.05  // of stator copper mass
	PaintShare        = 0.02  // of aluminium mass
)
