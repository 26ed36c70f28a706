package riemann

import (
	"fmt"
	"math"
	"strings"
)

type FlowFunction uint8

func (pm FlowFunction) String() string {
	strings := []string{
		"Density",
		"XMomentum",
		"YMomentum",
		"Energy",
		"Mach",
		"Static Pressure",
		"Dynamic Pressure",
		"Sound Speed",
		"Velocity",
		"XVelocity",
		"YVelocity",
		"Enthalpy",
		"Entropy",
	}
	if int(pm) >= len(strings) {
		return "Unknown"
	}
	return strings[int(pm)]
}

const (
	Density FlowFunction = iota
	XMomentum
	YMomentum
	Energy
	Mach            // 4
	StaticPressure  // 5
	DynamicPressure // 6
	SoundSpeed      // 7
	Velocity        // 8
	XVelocity       // 9
	YVelocity       // 10
	Enthalpy        // 11
	Entropy         // 12
)

var FlowFunctionNames = map[string]FlowFunction{
	"density":  Density,
	"rho":      Density,
	"xmom":     XMomentum,
	"ymom":     YMomentum,
	"energy":   Energy,
	"mach":     Mach,
	"pressure": StaticPressure,
	"q":        DynamicPressure,
	"c":        SoundSpeed,
	"velocity": Velocity,
	"u":        XVelocity,
	"v":        YVelocity,
	"enthalpy": Enthalpy,
	"entropy":  Entropy,
}

func NewFlowFunction(label string) (pf FlowFunction, err error) {
	var ok bool
	if pf, ok = FlowFunctionNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use flow function named %s", label)
	}
	return
}

// NewFlowFunctions resolves a list of labels, as accepted by NewFlowFunction.
func NewFlowFunctions(labels []string) (pfs []FlowFunction, err error) {
	pfs = make([]FlowFunction, len(labels))
	for i, label := range labels {
		if pfs[i], err = NewFlowFunction(label); err != nil {
			return nil, err
		}
	}
	return
}

// FieldRange is the min and max of pf over packed conserved states q, NumEqn
// values per cell.
func (e *Euler) FieldRange(q []float64, pf FlowFunction) (lo, hi float64) {
	var (
		n = e.NumEqn()
	)
	lo, hi = math.Inf(1), math.Inf(-1)
	for k := 0; k+n <= len(q); k += n {
		f := e.FlowFunction(q[k:k+n], pf)
		lo, hi = math.Min(lo, f), math.Max(hi, f)
	}
	return
}

// split returns density, the two velocity components and energy of a 1D
// (rho, rhoU, E) or 2D (rho, rhoU, rhoV, E) conserved state.
func (e *Euler) split(q []float64) (rho, rhoU, rhoV, E float64) {
	if e.NumDim == 1 {
		return q[0], q[1], 0, q[2]
	}
	return q[0], q[1], q[2], q[3]
}

// FlowFunction evaluates a derived quantity from a conserved state.
func (e *Euler) FlowFunction(q []float64, pf FlowFunction) (f float64) {
	var (
		rho, rhoU, rhoV, E = e.split(q)
		Gamma              = e.Gamma
		GM1                = Gamma - 1.
		oorho              = 1. / rho
		qq                 = 0.5 * (rhoU*rhoU + rhoV*rhoV) * oorho
		p                  = GM1 * (E - qq)
	)
	switch pf {
	case Density:
		f = rho
	case XMomentum:
		f = rhoU
	case YMomentum:
		f = rhoV
	case Energy:
		f = E
	case StaticPressure:
		f = p
	case DynamicPressure:
		f = qq
	case SoundSpeed:
		f = math.Sqrt(math.Abs(Gamma * p * oorho))
	case Velocity:
		f = math.Sqrt(rhoU*rhoU+rhoV*rhoV) * oorho
	case XVelocity:
		f = rhoU * oorho
	case YVelocity:
		f = rhoV * oorho
	case Mach:
		C := math.Sqrt(math.Abs(Gamma * p * oorho))
		U := math.Sqrt(rhoU*rhoU+rhoV*rhoV) * oorho
		f = U / C
	case Enthalpy:
		f = (E + p) * oorho
	case Entropy:
		f = p / math.Pow(rho, Gamma)
	}
	return
}

// Conserved builds a conserved state from density, velocity and pressure.
// Only the first NumDim velocity components are used.
func (e *Euler) Conserved(rho float64, vel []float64, p float64) (q []float64) {
	q = make([]float64, e.NumEqn())
	q[0] = rho
	var ke float64
	for d := 0; d < e.NumDim; d++ {
		q[1+d] = rho * vel[d]
		ke += 0.5 * rho * vel[d] * vel[d]
	}
	q[e.NumDim+1] = p/(e.Gamma-1) + ke
	return
}
