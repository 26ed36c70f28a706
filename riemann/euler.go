package riemann

import (
	"fmt"
	"math"
)

// Euler is the Roe solver for the compressible Euler equations of an ideal
// gas in one or two dimensions. Conserved variables are (rho, rhoU, E) in 1D
// and (rho, rhoU, rhoV, E) in 2D. The waves are the left acoustic wave, the
// entropy wave, the shear wave (2D only) and the right acoustic wave.
type Euler struct {
	Gamma  float64
	NumDim int
	// EntropyFix enables the Harten-Hyman fix for transonic rarefactions
	EntropyFix bool
}

func NewEuler(gamma float64, numDim int, entropyFix bool) (e *Euler) {
	if numDim != 1 && numDim != 2 {
		panic(fmt.Errorf("euler solver supports 1 or 2 dimensions, got %d", numDim))
	}
	e = &Euler{Gamma: gamma, NumDim: numDim, EntropyFix: entropyFix}
	return
}

func (e *Euler) NumEqn() int   { return e.NumDim + 2 }
func (e *Euler) NumWaves() int { return e.NumDim + 2 }

type roeAverage struct {
	u, v, H, a float64
}

// components returns the normal and transverse momentum index for dim; the
// transverse index is -1 in 1D.
func (e *Euler) components(dim int) (mu, mv int) {
	if e.NumDim == 1 {
		return 1, -1
	}
	return 1 + dim, 2 - dim
}

func (e *Euler) pressure(q []float64, side string) (p float64, err error) {
	if err = checkFinite(q, side); err != nil {
		return
	}
	rho, rhoU, rhoV, E := e.split(q)
	if rho <= 0 {
		err = &PhysicalError{Field: "density", Value: rho, Side: side}
		return
	}
	p = (e.Gamma - 1) * (E - 0.5*(rhoU*rhoU+rhoV*rhoV)/rho)
	if p < 0 {
		err = &PhysicalError{Field: "pressure", Value: p, Side: side}
	}
	return
}

// Validate requires positive density and non-negative pressure.
func (e *Euler) Validate(q []float64) (err error) {
	_, err = e.pressure(q, "cell")
	return
}

func (e *Euler) roeAverage(ql, qr []float64, mu, mv int) (ra roeAverage, err error) {
	var (
		pL, pR float64
		ie     = e.NumEqn() - 1
	)
	if pL, err = e.pressure(ql, "left"); err != nil {
		return
	}
	if pR, err = e.pressure(qr, "right"); err != nil {
		return
	}
	var (
		rhoLs, rhoRs = math.Sqrt(ql[0]), math.Sqrt(qr[0])
		rhoLsRs      = rhoLs + rhoRs
	)
	ra.u = (ql[mu]/rhoLs + qr[mu]/rhoRs) / rhoLsRs
	if mv > 0 {
		ra.v = (ql[mv]/rhoLs + qr[mv]/rhoRs) / rhoLsRs
	}
	ra.H = ((ql[ie]+pL)/rhoLs + (qr[ie]+pR)/rhoRs) / rhoLsRs
	c2 := (e.Gamma - 1) * (ra.H - 0.5*(ra.u*ra.u+ra.v*ra.v))
	if !(c2 > 0) {
		err = &PhysicalError{Field: "roe sound speed squared", Value: c2, Side: "interface"}
		return
	}
	ra.a = math.Sqrt(c2)
	return
}

// decompose projects the jump d onto the Roe eigenvectors, filling waves
// (wave-major) and their speeds.
func (e *Euler) decompose(ra roeAverage, mu, mv int, d, waves, speeds []float64) {
	var (
		meqn     = e.NumEqn()
		nw       = e.NumWaves()
		ie       = meqn - 1
		u, v     = ra.u, ra.v
		H, a     = ra.H, ra.a
		g1a2     = (e.Gamma - 1) / (a * a)
		euv      = H - u*u - v*v
		dmv      float64
		aEntropy float64
	)
	if mv > 0 {
		dmv = d[mv]
	}
	aEntropy = g1a2 * (euv*d[0] + u*d[mu] + v*dmv - d[ie])
	aRight := (d[mu] + (a-u)*d[0] - a*aEntropy) / (2 * a)
	aLeft := d[0] - aEntropy - aRight

	for i := range waves {
		waves[i] = 0
	}
	set := func(w int, alpha, r0, rmu, rmv, re float64) {
		wave := waves[w*meqn : (w+1)*meqn]
		wave[0] = alpha * r0
		wave[mu] = alpha * rmu
		if mv > 0 {
			wave[mv] = alpha * rmv
		}
		wave[ie] = alpha * re
	}
	set(0, aLeft, 1, u-a, v, H-u*a)
	speeds[0] = u - a
	set(1, aEntropy, 1, u, v, 0.5*(u*u+v*v))
	speeds[1] = u
	if mv > 0 {
		aShear := dmv - v*d[0]
		set(2, aShear, 0, 0, 1, v)
		speeds[2] = u
	}
	set(nw-1, aRight, 1, u+a, v, H+u*a)
	speeds[nw-1] = u + a
}

func (e *Euler) Normal(dim int, ql, qr, auxl, auxr []float64, f *Fluctuation) (err error) {
	var (
		mu, mv = e.components(dim)
		ra     roeAverage
		delta  [4]float64
		meqn   = e.NumEqn()
	)
	if ra, err = e.roeAverage(ql, qr, mu, mv); err != nil {
		return
	}
	for m := 0; m < meqn; m++ {
		delta[m] = qr[m] - ql[m]
	}
	e.decompose(ra, mu, mv, delta[:meqn], f.Waves, f.Speeds)
	if e.EntropyFix {
		e.entropyFix(mu, ql, qr, f)
	} else {
		f.SplitBySpeed()
	}
	return
}

// acoustic returns the normal velocity and sound speed of a state.
func (e *Euler) acoustic(q []float64, mu int) (u, c float64) {
	rho, rhoU, rhoV, E := e.split(q)
	p := (e.Gamma - 1) * (E - 0.5*(rhoU*rhoU+rhoV*rhoV)/rho)
	u = q[mu] / rho
	c = math.Sqrt(math.Abs(e.Gamma * p / rho))
	return
}

// entropyFix splits a transonic acoustic wave between A^-dQ and A^+dQ using
// the characteristic speeds of the states on either side of it.
func (e *Euler) entropyFix(mu int, ql, qr []float64, f *Fluctuation) {
	var (
		meqn = e.NumEqn()
		nw   = e.NumWaves()
		last = nw - 1
		qm   [4]float64
	)
	for m := 0; m < meqn; m++ {
		f.Amdq[m] = 0
	}
	addAmdq := func(w int, s float64) {
		wave := f.Wave(w)
		for m := 0; m < meqn; m++ {
			f.Amdq[m] += s * wave[m]
		}
	}
	uL, cL := e.acoustic(ql, mu)
	s0 := uL - cL
	if !(s0 >= 0 && f.Speeds[0] > 0) {
		w0 := f.Wave(0)
		for m := 0; m < meqn; m++ {
			qm[m] = ql[m] + w0[m]
		}
		u1, c1 := e.acoustic(qm[:meqn], mu)
		s1 := u1 - c1
		var sfract float64
		if s0 < 0 && s1 > 0 {
			sfract = s0 * (s1 - f.Speeds[0]) / (s1 - s0)
		} else if f.Speeds[0] < 0 {
			sfract = f.Speeds[0]
		}
		addAmdq(0, sfract)
		if f.Speeds[1] < 0 {
			for w := 1; w < last; w++ {
				addAmdq(w, f.Speeds[w])
			}
			uR, cR := e.acoustic(qr, mu)
			sR := uR + cR
			wl := f.Wave(last)
			for m := 0; m < meqn; m++ {
				qm[m] = qr[m] - wl[m]
			}
			u2, c2 := e.acoustic(qm[:meqn], mu)
			s2 := u2 + c2
			sfract = 0
			if s2 < 0 && sR > 0 {
				sfract = s2 * (sR - f.Speeds[last]) / (sR - s2)
			} else if f.Speeds[last] < 0 {
				sfract = f.Speeds[last]
			}
			addAmdq(last, sfract)
		}
	}
	// A^+dQ is the rest of the flux difference
	for m := 0; m < meqn; m++ {
		var df float64
		for w := 0; w < nw; w++ {
			df += f.Speeds[w] * f.Waves[m+meqn*w]
		}
		f.Apdq[m] = df - f.Amdq[m]
	}
}

// Transverse decomposes asdq with the Roe eigenvectors of the direction
// transverse to dim and splits it by the sign of the transverse speeds.
func (e *Euler) Transverse(dim int, side Side, ql, qr, auxCell, auxNext, asdq, bmasdq, bpasdq []float64) (err error) {
	if e.NumDim != 2 {
		return fmt.Errorf("riemann: transverse split needs a 2D euler solver")
	}
	var (
		meqn   = e.NumEqn()
		nw     = e.NumWaves()
		mu, mv = e.components(1 - dim)
		ra     roeAverage
		waves  [16]float64
		speeds [4]float64
	)
	if ra, err = e.roeAverage(ql, qr, mu, mv); err != nil {
		return
	}
	e.decompose(ra, mu, mv, asdq, waves[:meqn*nw], speeds[:nw])
	for m := 0; m < meqn; m++ {
		bmasdq[m], bpasdq[m] = 0, 0
		for w := 0; w < nw; w++ {
			s := speeds[w]
			if s < 0 {
				bmasdq[m] += s * waves[m+meqn*w]
			} else {
				bpasdq[m] += s * waves[m+meqn*w]
			}
		}
	}
	return
}
