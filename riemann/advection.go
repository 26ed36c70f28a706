package riemann

import "math"

// Advection is scalar advection with a constant velocity, one component
// per dimension.
type Advection struct {
	Velocity []float64
}

func NewAdvection(velocity ...float64) *Advection {
	return &Advection{Velocity: velocity}
}

func (a *Advection) NumEqn() int   { return 1 }
func (a *Advection) NumWaves() int { return 1 }

func (a *Advection) Normal(dim int, ql, qr, auxl, auxr []float64, f *Fluctuation) error {
	return scalarWave(a.Velocity[dim], ql, qr, f)
}

func (a *Advection) Transverse(dim int, side Side, ql, qr, auxCell, auxNext, asdq, bmasdq, bpasdq []float64) error {
	b := a.Velocity[1-dim]
	bmasdq[0] = math.Min(b, 0) * asdq[0]
	bpasdq[0] = math.Max(b, 0) * asdq[0]
	return nil
}

// EdgeAdvection is scalar advection with velocities stored in aux at the
// lower edge of every cell. VelocityAux[d] is the aux variable holding the
// velocity normal to the lower edge in dimension d.
type EdgeAdvection struct {
	VelocityAux []int
}

func NewEdgeAdvection(velocityAux ...int) *EdgeAdvection {
	return &EdgeAdvection{VelocityAux: velocityAux}
}

func (a *EdgeAdvection) NumEqn() int   { return 1 }
func (a *EdgeAdvection) NumWaves() int { return 1 }

// Normal uses the velocity of the shared edge, which is the lower edge of
// the right cell.
func (a *EdgeAdvection) Normal(dim int, ql, qr, auxl, auxr []float64, f *Fluctuation) error {
	return scalarWave(auxr[a.VelocityAux[dim]], ql, qr, f)
}

// Transverse uses the lower edge velocity of the receiving cell for the
// down-going part and that of its upper neighbor for the up-going part.
func (a *EdgeAdvection) Transverse(dim int, side Side, ql, qr, auxCell, auxNext, asdq, bmasdq, bpasdq []float64) error {
	kv := a.VelocityAux[1-dim]
	bmasdq[0] = math.Min(auxCell[kv], 0) * asdq[0]
	bpasdq[0] = math.Max(auxNext[kv], 0) * asdq[0]
	return nil
}

func scalarWave(s float64, ql, qr []float64, f *Fluctuation) error {
	if math.IsNaN(s) {
		return &PhysicalError{Field: "velocity", Value: s, Side: "interface"}
	}
	w := qr[0] - ql[0]
	f.Waves[0] = w
	f.Speeds[0] = s
	f.Amdq[0] = math.Min(s, 0) * w
	f.Apdq[0] = math.Max(s, 0) * w
	return nil
}
