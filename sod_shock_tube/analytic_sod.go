// Package sod_shock_tube evaluates the exact solution of the shock tube
// Riemann problem with gas at rest on both sides: a left running
// rarefaction, a contact and a right running shock.
package sod_shock_tube

import (
	"errors"
	"fmt"
	"math"
)

type Problem struct {
	Gamma      float64
	RhoL, PL   float64
	RhoR, PR   float64
	X0         float64 // diaphragm position
	XMin, XMax float64
}

// Standard is Sod's problem on [0,1] with the diaphragm at 0.5.
func Standard() Problem {
	return Problem{Gamma: 1.4, RhoL: 1, PL: 1, RhoR: 0.125, PR: 0.1, X0: 0.5, XMin: 0, XMax: 1}
}

// Waves holds the star state and the wave speeds.
type Waves struct {
	PStar, UStar       float64
	RhoStarL, RhoStarR float64
	HeadSpeed          float64 // rarefaction head
	TailSpeed          float64 // rarefaction tail
	ShockSpeed         float64
}

func (p Problem) Solve() (w Waves, err error) {
	if p.RhoL <= 0 || p.RhoR <= 0 || p.PL <= 0 || p.PR <= 0 || p.Gamma <= 1 {
		return w, fmt.Errorf("sod: invalid states rho %g/%g, p %g/%g, gamma %g", p.RhoL, p.RhoR, p.PL, p.PR, p.Gamma)
	}
	if p.PL <= p.PR {
		return w, errors.New("sod: left pressure must exceed right pressure")
	}
	var (
		g   = p.Gamma
		mu2 = (g - 1) / (g + 1)
		cl  = math.Sqrt(g * p.PL / p.RhoL)
	)
	// velocity behind the left rarefaction and behind the right shock
	rarefaction := func(ps float64) float64 {
		return 2 * cl / (g - 1) * (1 - math.Pow(ps/p.PL, (g-1)/(2*g)))
	}
	shock := func(ps float64) float64 {
		return (ps - p.PR) * math.Sqrt((1-mu2)/(p.RhoR*(ps+mu2*p.PR)))
	}
	if w.PStar, err = bisect(func(ps float64) float64 { return shock(ps) - rarefaction(ps) }, p.PR, p.PL); err != nil {
		return
	}
	w.UStar = rarefaction(w.PStar)
	w.RhoStarL = p.RhoL * math.Pow(w.PStar/p.PL, 1/g)
	ratio := w.PStar / p.PR
	w.RhoStarR = p.RhoR * (ratio + mu2) / (1 + mu2*ratio)
	w.HeadSpeed = -cl
	w.TailSpeed = w.UStar - (cl - 0.5*(g-1)*w.UStar)
	w.ShockSpeed = w.UStar * (w.RhoStarR / p.RhoR) / (w.RhoStarR/p.RhoR - 1)
	return
}

func bisect(f func(x float64) float64, lo, hi float64) (x float64, err error) {
	flo, fhi := f(lo), f(hi)
	if flo*fhi > 0 {
		return 0, fmt.Errorf("sod: root not bracketed in [%g, %g]", lo, hi)
	}
	for i := 0; i < 200 && hi-lo > 1.e-15*hi; i++ {
		x = 0.5 * (lo + hi)
		fx := f(x)
		if fx*flo > 0 {
			lo, flo = x, fx
		} else {
			hi = x
		}
	}
	x = 0.5 * (lo + hi)
	return
}

// Sample evaluates density, velocity and pressure at time t > 0 for each x.
func (p Problem) Sample(t float64, x []float64) (rho, u, pr []float64, err error) {
	if !(t > 0) {
		return nil, nil, nil, fmt.Errorf("sod: sample time %g must be positive", t)
	}
	var w Waves
	if w, err = p.Solve(); err != nil {
		return
	}
	var (
		g   = p.Gamma
		mu2 = (g - 1) / (g + 1)
		cl  = math.Sqrt(g * p.PL / p.RhoL)
		x1  = p.X0 + w.HeadSpeed*t
		x2  = p.X0 + w.TailSpeed*t
		x3  = p.X0 + w.UStar*t
		x4  = p.X0 + w.ShockSpeed*t
	)
	rho, u, pr = make([]float64, len(x)), make([]float64, len(x)), make([]float64, len(x))
	for i, xx := range x {
		switch {
		case xx < x1:
			rho[i], pr[i] = p.RhoL, p.PL
		case xx <= x2:
			c := mu2*((p.X0-xx)/t) + (1-mu2)*cl
			rho[i] = p.RhoL * math.Pow(c/cl, 2/(g-1))
			pr[i] = p.PL * math.Pow(rho[i]/p.RhoL, g)
			u[i] = (1 - mu2) * ((xx-p.X0)/t + cl)
		case xx <= x3:
			rho[i], pr[i], u[i] = w.RhoStarL, w.PStar, w.UStar
		case xx <= x4:
			rho[i], pr[i], u[i] = w.RhoStarR, w.PStar, w.UStar
		default:
			rho[i], pr[i] = p.RhoR, p.PR
		}
	}
	return
}

// Breakpoints returns the profile at the domain ends and on both sides of
// every wave edge, suitable for plotting the exact solution as a polyline.
func (p Problem) Breakpoints(t float64) (X, Rho, P, U, E []float64, err error) {
	var w Waves
	if w, err = p.Solve(); err != nil {
		return
	}
	tol := 1.e-8
	X = []float64{p.XMin}
	for _, s := range []float64{w.HeadSpeed, w.TailSpeed, w.UStar, w.ShockSpeed} {
		xs := p.X0 + s*t
		X = append(X, xs-tol, xs+tol)
	}
	X = append(X, p.XMax)
	if Rho, U, P, err = p.Sample(t, X); err != nil {
		return
	}
	E = make([]float64, len(X))
	for i := range X {
		E[i] = P[i] / ((p.Gamma - 1) * Rho[i])
	}
	return
}
