package Euler2D

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/model_problems/Euler2D/isentropic_vortex"
	"github.com/notargets/gofv/riemann"
	"github.com/notargets/gofv/solver"
	"github.com/notargets/gofv/state"
)

type InitType uint8

const (
	QUADRANTS InitType = iota
	IVORTEX
)

var (
	InitNames = map[string]InitType{
		"quadrants": QUADRANTS,
		"ivortex":   IVORTEX,
		"vortex":    IVORTEX,
	}
	InitPrintNames = []string{"Four Quadrant Riemann Problem", "Inviscid Vortex Analytic Solution"}
)

func NewInitType(label string) (it InitType, err error) {
	var ok bool
	if it, ok = InitNames[strings.ToLower(label)]; !ok {
		err = fmt.Errorf("unable to use init type named %q", label)
	}
	return
}

func (it InitType) Print() string { return InitPrintNames[it] }

// Gamma is the default ratio of specific heats
const Gamma = 1.4

// Euler solves the 2D Euler equations with the Roe solver on a uniform
// Cartesian grid.
type Euler struct {
	Case   InitType
	Gas    *riemann.Euler
	Vortex *isentropic_vortex.IVortex
	Fields []riemann.FlowFunction
	Sol    *state.Solution
	Solver *solver.Solver
}

// NewEuler sets up the named case on an nx by ny grid. Nil lower/upper
// boundary types keep the case defaults; a single entry applies to both
// dimensions.
func NewEuler(nx, ny int, Case InitType, cfg solver.Config, lower, upper []bc.Type) (c *Euler, err error) {
	c = &Euler{
		Case: Case,
		Gas:  riemann.NewEuler(Gamma, 2, true),
	}
	var (
		dims []grid.Dimension
		def  bc.Type
	)
	switch Case {
	case QUADRANTS:
		dims = []grid.Dimension{grid.NewDimension("x", 0, 1, nx), grid.NewDimension("y", 0, 1, ny)}
		def = bc.Extrap
	case IVORTEX:
		dims = []grid.Dimension{grid.NewDimension("x", 0, 10, nx), grid.NewDimension("y", -5, 5, ny)}
		def = bc.Periodic
		c.Vortex = isentropic_vortex.NewIVortex(5, 5, 0, Gamma)
		c.Vortex.Period, c.Vortex.XMin = 10, 0
	default:
		return nil, fmt.Errorf("unknown case %d", Case)
	}
	var g *grid.Grid
	if g, err = grid.NewGrid(dims); err != nil {
		return nil, err
	}
	var st *state.State
	if st, err = state.NewState(g, 4, 0); err != nil {
		return nil, err
	}
	c.Sol = &state.Solution{State: st}

	q := bc.Set{
		Lower:          policies(lower, def),
		Upper:          policies(upper, def),
		WallComponents: [][]int{{1}, {2}},
	}
	var e *bc.Engine
	if e, err = bc.NewEngine(q, bc.Set{}); err != nil {
		return nil, err
	}
	if c.Solver, err = solver.New(cfg, c.Gas, e); err != nil {
		return nil, err
	}
	return
}

func policies(types []bc.Type, def bc.Type) (p []bc.Policy) {
	switch len(types) {
	case 0:
		types = []bc.Type{def, def}
	case 1:
		types = []bc.Type{types[0], types[0]}
	}
	p = make([]bc.Policy, len(types))
	for d, t := range types {
		p[d] = bc.Policy{Type: t}
	}
	return
}

// SetGas replaces the gas properties shared by the Riemann solver, the
// initial condition and the exact vortex.
func (c *Euler) SetGas(gamma float64, entropyFix bool) {
	c.Gas.Gamma, c.Gas.EntropyFix = gamma, entropyFix
	if c.Vortex != nil {
		c.Vortex.Gamma = gamma
	}
}

func (c *Euler) Name() string {
	return "euler 2D " + c.Case.Print()
}

func (c *Euler) Initialize(st *state.State) error {
	var (
		xc     = st.Grid.CellCenters(false)
		shape  = st.Grid.Shape()
		nx, ny = shape[0], shape[1]
		qc     = make([]float64, 4)
	)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			k := i + j*nx
			x, y := xc[0][k], xc[1][k]
			switch c.Case {
			case IVORTEX:
				qc[0], qc[1], qc[2], qc[3] = c.Vortex.GetStateC(0, x, y)
			default:
				quadrant(x, y, c.Gas.Gamma, qc)
			}
			copy(st.Q.CellValues(i, j), qc)
		}
	}
	return nil
}

// quadrant sets the four state Riemann problem centered at (0.5, 0.5). The
// momenta enter the kinetic energy as if they were velocities, so only the
// unit density quadrants start at unit pressure.
func quadrant(x, y, gamma float64, q []float64) {
	var (
		left, top = x < 0.5, y >= 0.5
		rho       float64
		rhoU      = -0.75
		rhoV      = -0.5
	)
	switch {
	case left && top:
		rho = 2
	case left:
		rho = 1
	case top:
		rho = 1
	default:
		rho = 3
	}
	if top {
		rhoU = 0.75
	}
	if left {
		rhoV = 0.5
	}
	q[0], q[1], q[2] = rho, rhoU, rhoV
	q[3] = 0.5*rho*(rhoU*rhoU+rhoV*rhoV) + 1/(gamma-1)
}

func (c *Euler) Controller(cfg controller.Config) (ctl *controller.Controller) {
	ctl = controller.New(c.Sol, c.Solver, cfg)
	ctl.Initializer = c
	return
}

// DensityError is the mean absolute density error against the convected
// vortex at the solution time.
func (c *Euler) DensityError(sol *state.Solution) (l1 float64, err error) {
	if c.Case != IVORTEX {
		return 0, fmt.Errorf("no exact solution for %s", c.Name())
	}
	var (
		xc    = sol.State.Grid.CellCenters(false)
		exact = make([]float64, len(xc[0]))
	)
	// centers and Variable share the cell order, x fastest
	for k := range exact {
		exact[k], _, _, _ = c.Vortex.GetStateC(sol.T, xc[0][k], xc[1][k])
	}
	l1 = floats.Distance(sol.State.Variable(0), exact, 1) / float64(len(exact))
	return
}

func (c *Euler) Report(sol *state.Solution) string {
	var (
		rho        = sol.State.Variable(0)
		pMin, pMax = c.Gas.FieldRange(sol.State.Q.Data, riemann.StaticPressure)
	)
	summary := fmt.Sprintf("t = %8.5f, rho min/max = %8.5f/%8.5f, p min/max = %8.5f/%8.5f, mass = %12.8f",
		sol.T, floats.Min(rho), floats.Max(rho), pMin, pMax, sol.State.Integral(0))
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
