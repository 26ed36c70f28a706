package Burgers2D

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/riemann"
	"github.com/notargets/gofv/solver"
	"github.com/notargets/gofv/state"
)

/*
The 2D inviscid Burgers' equation with the same flux in both directions:

				∂/∂t [ u ] + ∂/∂x [ ½ u² ] + ∂/∂y [ ½ u² ] = 0

Along the diagonal ξ = x + y it reduces to the 1D equation u_t + (u²)_ξ = 0,
so a profile u0(ξ) is carried with characteristic speed 2u:

				u(ξ, t) = u0(ξ - 2 u t)

which stays smooth until the steepest compression folds over at

				t* = -1 / (2 min u0')

For u0 = Mean + Amp sin(2π ξ), t* = 1 / (4π Amp).
*/

// Burgers is the sine wave problem on the periodic unit square.
type Burgers struct {
	Mean, Amp float64
	Sol       *state.Solution
	Solver    *solver.Solver
}

func NewBurgers(nx, ny int, cfg solver.Config) (b *Burgers, err error) {
	b = &Burgers{Mean: 0.5, Amp: 0.25}
	var g *grid.Grid
	if g, err = grid.NewGrid([]grid.Dimension{
		grid.NewDimension("x", 0, 1, nx), grid.NewDimension("y", 0, 1, ny)}); err != nil {
		return nil, err
	}
	var st *state.State
	if st, err = state.NewState(g, 1, 0); err != nil {
		return nil, err
	}
	b.Sol = &state.Solution{State: st}
	periodic := bc.Policy{Type: bc.Periodic}
	var e *bc.Engine
	if e, err = bc.NewEngine(bc.Uniform(periodic, periodic), bc.Set{}); err != nil {
		return nil, err
	}
	if b.Solver, err = solver.New(cfg, riemann.NewBurgers(true), e); err != nil {
		return nil, err
	}
	return
}

func (b *Burgers) Name() string { return "burgers 2D sine wave" }

// BreakingTime is when the exact solution first develops a shock.
func (b *Burgers) BreakingTime() float64 { return 1 / (4 * math.Pi * b.Amp) }

func (b *Burgers) initial(xi float64) float64 {
	return b.Mean + b.Amp*math.Sin(2*math.Pi*xi)
}

// Exact solves u = u0(ξ - 2ut) by Newton iteration, valid before the
// breaking time.
func (b *Burgers) Exact(t, x, y float64) (u float64, err error) {
	if t >= b.BreakingTime() {
		return 0, fmt.Errorf("no smooth solution at t = %g, the wave breaks at %g", t, b.BreakingTime())
	}
	xi := x + y
	u = b.initial(xi)
	for iter := 0; iter < 50; iter++ {
		var (
			arg = 2 * math.Pi * (xi - 2*u*t)
			g   = u - b.Mean - b.Amp*math.Sin(arg)
			dg  = 1 + 4*math.Pi*b.Amp*t*math.Cos(arg)
			du  = g / dg
		)
		u -= du
		if math.Abs(du) < 1.e-14 {
			return
		}
	}
	return u, fmt.Errorf("newton iteration for the exact solution did not converge at (%g, %g)", x, y)
}

func (b *Burgers) Initialize(st *state.State) error {
	xc := st.Grid.CellCenters(false)
	for k := range xc[0] {
		st.Q.Data[k] = b.initial(xc[0][k] + xc[1][k])
	}
	return nil
}

func (b *Burgers) Controller(cfg controller.Config) (ctl *controller.Controller) {
	ctl = controller.New(b.Sol, b.Solver, cfg)
	ctl.Initializer = b
	return
}

// L1Error is the mean absolute error against the exact solution.
func (b *Burgers) L1Error(sol *state.Solution) (l1 float64, err error) {
	var (
		xc    = sol.State.Grid.CellCenters(false)
		exact = make([]float64, len(xc[0]))
	)
	for k := range exact {
		if exact[k], err = b.Exact(sol.T, xc[0][k], xc[1][k]); err != nil {
			return
		}
	}
	l1 = floats.Distance(sol.State.Variable(0), exact, 1) / float64(len(exact))
	return
}

func (b *Burgers) Report(sol *state.Solution) string {
	q := sol.State.Variable(0)
	summary := fmt.Sprintf("t = %8.5f, u min/max = %8.5f/%8.5f, integral = %12.8f",
		sol.T, floats.Min(q), floats.Max(q), sol.State.Integral(0))
	if l1, err := b.L1Error(sol); err == nil {
		summary += fmt.Sprintf(", L1 error = %10.3e", l1)
	} else {
		summary += fmt.Sprintf(", shock formed at t = %8.5f", b.BreakingTime())
	}
	return summary
}
