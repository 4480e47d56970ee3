package sizing

import (
	"fmt"
	"strings"
)

// Topology selects the machine type being sized.
type Topology int

const (
	XMotor Topology = iota + 1
	IPM
	PMaSynRel
	IM
)

type traits struct {
	name            string
	permanentMagnet bool
	radial          bool
	// yokeRatio is the yoke/slot boundary as a fraction of the stator
	// outer diameter, read off benchmark MotorCAD EV templates.
	yokeRatio      float64
	defaultDLRatio float64
}

var topologies = map[Topology]traits{
	XMotor:    {name: "x-motor", permanentMagnet: true, radial: false, yokeRatio: 0.88, defaultDLRatio: 1 / 1.23},
	IPM:       {name: "IPM", permanentMagnet: true, radial: true, yokeRatio: 0.88, defaultDLRatio: 0.5},
	PMaSynRel: {name: "PMaSynREL", permanentMagnet: true, radial: true, yokeRatio: 0.90, defaultDLRatio: 0.5},
	IM:        {name: "IM", permanentMagnet: false, radial: true, yokeRatio: 0.86, defaultDLRatio: 0.5},
}

// Topologies lists the supported machine types in declaration order.
func Topologies() []Topology {
	return []Topology{XMotor, IPM, PMaSynRel, IM}
}

func ParseTopology(s string) (Topology, error) {
	for _, t := range Topologies() {
		if strings.EqualFold(strings.TrimSpace(s), topologies[t].name) {
			return t, nil
		}
	}
	return 0, configError("topology", s, "unknown motor topology")
}

func (t Topology) Valid() bool {
	_, ok := topologies[t]
	return ok
}

func (t Topology) String() string {
	if tr, ok := topologies[t]; ok {
		return tr.name
	}
	return fmt.Sprintf("Topology(%d)", int(t))
}

func (t Topology) IsPermanentMagnet() bool { return topologies[t].permanentMagnet }

// IsRadial is false only for the axial-flux x-motor.
func (t Topology) IsRadial() bool { return topologies[t].radial }

func (t Topology) YokeRatio() float64 { return topologies[t].yokeRatio }

func (t Topology) DefaultDLRatio() float64 { return topologies[t].defaultDLRatio }

func (t Topology) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, configError("topology", t.String(), "unknown motor topology")
	}
	return []byte(t.String()), nil
}

func (t *Topology) UnmarshalText(b []byte) error {
	parsed, err := ParseTopology(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
