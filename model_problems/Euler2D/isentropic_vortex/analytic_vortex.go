package isentropic_vortex

import "math"

// IVortex is an isentropic vortex centered at (X0, Y0) convected by a
// uniform stream Ufs in x; it is an exact solution of the Euler equations.
type IVortex struct {
	Beta, X0, Y0, Gamma float64
	Ufs                 float64
	// Period wraps the vortex center in x on a periodic domain, zero for none
	Period float64
	XMin   float64
}

func NewIVortex(Beta, X0, Y0, Gamma float64, UfsO ...float64) (iv *IVortex) {
	var (
		Ufs = 1.0
	)
	if len(UfsO) > 0 {
		Ufs = UfsO[0]
	}
	iv = &IVortex{
		Beta:  Beta,
		X0:    X0,
		Y0:    Y0,
		Gamma: Gamma,
		Ufs:   Ufs,
	}
	return
}

func (iv *IVortex) GetState(t, x, y float64) (u, v, rho, p float64) {
	var (
		oo2pi = 0.5 * (1. / math.Pi)
		Gamma = iv.Gamma
		GM1   = Gamma - 1
		beta  = iv.Beta
		fac   = 16 * Gamma * math.Pi * math.Pi
	)
	u, v = iv.Ufs, 0.
	xc := iv.X0 + u*t
	if iv.Period > 0 {
		// nearest periodic image of the center
		xc = iv.XMin + math.Mod(xc-iv.XMin, iv.Period)
		if d := x - xc; d > 0.5*iv.Period {
			xc += iv.Period
		} else if d < -0.5*iv.Period {
			xc -= iv.Period
		}
	}
	dx, dy := x-xc, y-iv.Y0
	r2 := dx*dx + dy*dy
	ex1r := math.Exp(1 - r2)
	tv1 := 1.0 - (GM1 * beta * beta * math.Exp(2.0*(1.0-r2)) / fac)
	u -= beta * ex1r * dy * oo2pi
	v += beta * ex1r * dx * oo2pi
	rho = math.Pow(tv1, 1/GM1)
	p = math.Pow(rho, Gamma)
	return
}

// GetStateC is GetState in conserved variables.
func (iv *IVortex) GetStateC(t, x, y float64) (Rho, RhoU, RhoV, E float64) {
	u, v, rho, p := iv.GetState(t, x, y)
	q := 0.5 * rho * (u*u + v*v)
	Rho, RhoU, RhoV, E = rho, rho*u, rho*v, p/(iv.Gamma-1)+q
	return
}
