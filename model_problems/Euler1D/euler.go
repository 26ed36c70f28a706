package Euler1D

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/riemann"
	"github.com/notargets/gofv/sod_shock_tube"
	"github.com/notargets/gofv/solver"
	"github.com/notargets/gofv/state"
)

type CaseType uint8

const (
	SOD_TUBE CaseType = iota
	DENSITY_WAVE
)

// Euler solves the 1D Euler equations with the Roe solver on [XMin, XMax].
type Euler struct {
	Case    CaseType
	Problem sod_shock_tube.Problem
	Gas     *riemann.Euler
	Fields  []riemann.FlowFunction
	Sol     *state.Solution
	Solver  *solver.Solver
}

func NewEuler(numCells int, Case CaseType, cfg solver.Config) (c *Euler, err error) {
	c = &Euler{
		Case:    Case,
		Problem: sod_shock_tube.Standard(),
	}
	c.Gas = riemann.NewEuler(c.Problem.Gamma, 1, true)
	var g *grid.Grid
	if g, err = grid.NewGrid([]grid.Dimension{
		grid.NewDimension("x", c.Problem.XMin, c.Problem.XMax, numCells)}); err != nil {
		return
	}
	var st *state.State
	if st, err = state.NewState(g, 3, 0); err != nil {
		return
	}
	c.Sol = &state.Solution{State: st}
	policy := bc.Policy{Type: bc.Extrap}
	if Case == DENSITY_WAVE {
		policy = bc.Policy{Type: bc.Periodic}
	}
	var e *bc.Engine
	if e, err = bc.NewEngine(bc.Uniform(policy), bc.Set{}); err != nil {
		return
	}
	if c.Solver, err = solver.New(cfg, c.Gas, e); err != nil {
		return nil, err
	}
	return
}

func (c *Euler) Name() string {
	if c.Case == DENSITY_WAVE {
		return "euler 1D density wave"
	}
	return "euler 1D sod shock tube"
}

func (c *Euler) Initialize(st *state.State) error {
	var (
		xc = st.Grid.CellCenters(false)[0]
		p  = c.Problem
	)
	for i, x := range xc {
		var q []float64
		switch c.Case {
		case DENSITY_WAVE:
			// a density bump carried by uniform velocity and pressure
			rho := 1 + 0.2*pulse(x-0.5)
			q = c.Gas.Conserved(rho, []float64{1}, 1)
		default:
			if x < p.X0 {
				q = c.Gas.Conserved(p.RhoL, []float64{0}, p.PL)
			} else {
				q = c.Gas.Conserved(p.RhoR, []float64{0}, p.PR)
			}
		}
		copy(st.Q.CellValues(i), q)
	}
	return nil
}

func pulse(x float64) float64 {
	if x < -0.1 || x > 0.1 {
		return 0
	}
	return 1
}

func (c *Euler) Controller(cfg controller.Config) (ctl *controller.Controller) {
	ctl = controller.New(c.Sol, c.Solver, cfg)
	ctl.Initializer = c
	return
}

// DensityError is the mean absolute density error against the exact shock
// tube solution.
func (c *Euler) DensityError(sol *state.Solution) (l1 float64, err error) {
	if c.Case != SOD_TUBE {
		return 0, fmt.Errorf("no exact solution for %s", c.Name())
	}
	var rho []float64
	if rho, _, _, err = c.Problem.Sample(sol.T, sol.State.Grid.CellCenters(false)[0]); err != nil {
		return
	}
	l1 = floats.Distance(sol.State.Variable(0), rho, 1) / float64(len(rho))
	return
}

func (c *Euler) Report(sol *state.Solution) string {
	var (
		q       = sol.State.Variable(0)
		summary = fmt.Sprintf("t = %8.5f, rho min/max = %8.5f/%8.5f, mass = %12.8f",
			sol.T, floats.Min(q), floats.Max(q), sol.State.Integral(0))
	)
	if l1, err := c.DensityError(sol); err == nil {
		summary += fmt.Sprintf(", density L1 error = %10.3e", l1)
	}
	return summary + c.fieldSummary(sol)
}

// SetReportFields adds the min/max of the named flow functions to Report.
func (c *Euler) SetReportFields(labels []string) (err error) {
	c.Fields, err = riemann.NewFlowFunctions(labels)
	return
}

func (c *Euler) fieldSummary(sol *state.Solution) (s string) {
	for _, pf := range c.Fields {
		lo, hi := c.Gas.FieldRange(sol.State.Q.Data, pf)
		s += fmt.Sprintf(", %s min/max = %8.5f/%8.5f", pf, lo, hi)
	}
	return
}
