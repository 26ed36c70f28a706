package Advection1D

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/riemann"
	"github.com/notargets/gofv/solver"
	"github.com/notargets/gofv/state"
)

type InitType uint8

const (
	Pulse InitType = iota
	Sine
)

var InitNames = map[string]InitType{
	"pulse": Pulse,
	"sine":  Sine,
}

func NewInitType(label string) (it InitType, err error) {
	var ok bool
	if it, ok = InitNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
	}
	return
}

// Advection is q_t + a q_x = 0 on the periodic unit interval.
type Advection struct {
	Velocity float64
	Init     InitType
	Sol      *state.Solution
	Solver   *solver.Solver
}

func NewAdvection(velocity float64, numCells int, it InitType, cfg solver.Config) (c *Advection, err error) {
	var g *grid.Grid
	if g, err = grid.NewGrid([]grid.Dimension{grid.NewDimension("x", 0, 1, numCells)}); err != nil {
		return
	}
	var st *state.State
	if st, err = state.NewState(g, 1, 0); err != nil {
		return
	}
	ps := bc.Uniform(bc.Policy{Type: bc.Periodic})
	var e *bc.Engine
	if e, err = bc.NewEngine(ps, bc.Set{}); err != nil {
		return
	}
	c = &Advection{Velocity: velocity, Init: it, Sol: &state.Solution{State: st}}
	if c.Solver, err = solver.New(cfg, riemann.NewAdvection(velocity), e); err != nil {
		return nil, err
	}
	return
}

func (c *Advection) Name() string { return "advection 1D" }

func (c *Advection) profile(x float64) float64 {
	switch c.Init {
	case Sine:
		return math.Sin(2 * math.Pi * x)
	default:
		return math.Exp(-200 * (x - 0.3) * (x - 0.3))
	}
}

// Exact is the initial profile translated by Velocity*t, wrapped to [0,1).
func (c *Advection) Exact(t float64) (q []float64) {
	xc := c.Sol.State.Grid.CellCenters(false)[0]
	q = make([]float64, len(xc))
	for i, x := range xc {
		xs := math.Mod(x-c.Velocity*t, 1)
		if xs < 0 {
			xs += 1
		}
		q[i] = c.profile(xs)
	}
	return
}

func (c *Advection) Initialize(st *state.State) error {
	copy(st.Q.Data, c.Exact(0))
	return nil
}

func (c *Advection) Controller(cfg controller.Config) (ctl *controller.Controller) {
	ctl = controller.New(c.Sol, c.Solver, cfg)
	ctl.Initializer = c
	return
}

// L1Error is the mean absolute difference to the exact solution.
func (c *Advection) L1Error(sol *state.Solution) float64 {
	exact := c.Exact(sol.T)
	return floats.Distance(sol.State.Q.Data, exact, 1) / float64(len(exact))
}

func (c *Advection) Report(sol *state.Solution) string {
	return fmt.Sprintf("t = %8.5f, L1 error = %10.3e, total = %12.8f", sol.T, c.L1Error(sol), sol.State.Integral(0))
}
