// Package Advection2D solves scalar advection by a rigid rotation on an
// annulus mapped from a rectangular computational grid. Edge velocities come
// from differences of the stream function at mapped corners, so the
// discrete velocity field is exactly divergence free.
package Advection2D

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

// aux layout
const (
	auxU    = 0 // normal velocity at the lower x edge
	auxV    = 1 // normal velocity at the lower y edge
	auxCapa = 2
	numAux  = 3
)

// Polar maps (r, theta) to (x, y).
type Polar struct{}

func (Polar) MapC2P(xc, xp []float64) {
	xp[0], xp[1] = xc[0]*math.Cos(xc[1]), xc[0]*math.Sin(xc[1])
}

func (Polar) MapP2C(xp, xc []float64) {
	xc[0] = math.Hypot(xp[0], xp[1])
	xc[1] = math.Atan2(xp[1], xp[0])
	if xc[1] < 0 {
		xc[1] += 2 * math.Pi
	}
}

// Stream is the stream function of a clockwise rotation with period 1.
func Stream(x, y float64) float64 { return math.Pi * (x*x + y*y) }

type Pulse struct {
	Amplitude, Beta, X, Y float64
}

type Annulus struct {
	RInner, ROuter float64
	Pulses         []Pulse
	Sol            *state.Solution
	Solver         *solver.Solver
}

// DefaultSolverConfig is the unsplit second order setup used for the
// annulus: Van Leer limiting with transverse corrections.
func DefaultSolverConfig() solver.Config {
	cfg := solver.DefaultConfig()
	cfg.Order = 2
	cfg.Limiter = solver.VanLeer
	cfg.DimSplit = false
	cfg.OrderTrans = 2
	cfg.DtInitial = 0.1
	cfg.CFLMax = 0.5
	cfg.CFLDesired = 0.2
	return cfg
}

func NewAnnulus(nr, ntheta int, cfg solver.Config) (a *Annulus, err error) {
	a = &Annulus{
		RInner: 0.2,
		ROuter: 1,
		Pulses: []Pulse{
			{Amplitude: 1, Beta: 40, X: -0.5, Y: 0},
			{Amplitude: -1, Beta: 40, X: 0.5, Y: 0},
		},
	}
	var g *grid.Grid
	if g, err = grid.NewGrid([]grid.Dimension{
		grid.NewDimension("x", a.RInner, a.ROuter, nr),
		grid.NewDimension("y", 0, 2*math.Pi, ntheta),
	}, grid.WithMapper(Polar{})); err != nil {
		return
	}
	var st *state.State
	if st, err = state.NewState(g, 1, numAux); err != nil {
		return
	}
	if err = st.SetCapa(auxCapa); err != nil {
		return
	}
	a.Sol = &state.Solution{State: st}
	var (
		qbcs = bc.Set{Lower: []bc.Policy{{Type: bc.Outflow}, {Type: bc.Periodic}},
			Upper: []bc.Policy{{Type: bc.Outflow}, {Type: bc.Periodic}}}
		radial = bc.Policy{Type: bc.Custom, Filler: a}
		auxbcs = bc.Set{Lower: []bc.Policy{radial, {Type: bc.Periodic}},
			Upper: []bc.Policy{radial, {Type: bc.Periodic}}}
		e      *bc.Engine
	)
	if e, err = bc.NewEngine(qbcs, auxbcs); err != nil {
		return
	}
	if a.Solver, err = solver.New(cfg, riemann.NewEdgeAdvection(auxU, auxV), e); err != nil {
		return nil, err
	}
	return
}

func (a *Annulus) Name() string { return "advection on an annulus" }

// velocitiesCapa computes edge velocities and capacity for the inclusive cell
// box lo..hi, which may reach into the ghost layers.
func velocitiesCapa(g *grid.Grid, lo, hi []int) (u, v, capa []float64, err error) {
	var (
		shape = []int{hi[0] - lo[0] + 1, hi[1] - lo[1] + 1}
		xp    = g.CornersRange(lo, []int{hi[0] + 1, hi[1] + 1})
		dx    = g.Delta()
		ncx   = shape[0] + 1
		n     = shape[0] * shape[1]
	)
	psi := func(k int) float64 { return Stream(xp[0][k], xp[1][k]) }
	u, v = make([]float64, n), make([]float64, n)
	for j := 0; j < shape[1]; j++ {
		for i := 0; i < shape[0]; i++ {
			k := i + ncx*j
			u[i+shape[0]*j] = (psi(k+ncx) - psi(k)) / dx[1]
			v[i+shape[0]*j] = -(psi(k+1) - psi(k)) / dx[0]
		}
	}
	capa, err = grid.CapacityFromCorners(xp, shape, dx)
	return
}

func (a *Annulus) SetAux(st *state.State, t float64) (err error) {
	shape := st.Grid.Shape()
	u, v, capa, err := velocitiesCapa(st.Grid, []int{0, 0}, []int{shape[0] - 1, shape[1] - 1})
	if err != nil {
		return
	}
	for k := range capa {
		st.Aux.Data[auxU+numAux*k] = u[k]
		st.Aux.Data[auxV+numAux*k] = v[k]
		st.Aux.Data[auxCapa+numAux*k] = capa[k]
	}
	return
}

// Fill computes aux in the ghost cells beyond the inner and outer radius from
// the mapped ghost geometry.
func (a *Annulus) Fill(g *grid.Grid, dim int, face bc.Face, t float64, f *state.Field) (err error) {
	if dim != 0 {
		return bc.ErrUnsupportedFace
	}
	lo, hi := bc.GhostBox(f, dim, face)
	u, v, capa, err := velocitiesCapa(g, lo, hi)
	if err != nil {
		return
	}
	nx := hi[0] - lo[0] + 1
	for j := lo[1]; j <= hi[1]; j++ {
		for i := lo[0]; i <= hi[0]; i++ {
			k := (i - lo[0]) + nx*(j-lo[1])
			f.Set(u[k], auxU, i, j)
			f.Set(v[k], auxV, i, j)
			f.Set(capa[k], auxCapa, i, j)
		}
	}
	return
}

func (a *Annulus) Initialize(st *state.State) error {
	xp := st.Grid.CellCenters(true)
	for k := range st.Q.Data {
		var q float64
		for _, p := range a.Pulses {
			dx, dy := xp[0][k]-p.X, xp[1][k]-p.Y
			q += p.Amplitude * math.Exp(-p.Beta*(dx*dx+dy*dy))
		}
		st.Q.Data[k] = q
	}
	return nil
}

func (a *Annulus) Controller(cfg controller.Config) (ctl *controller.Controller) {
	ctl = controller.New(a.Sol, a.Solver, cfg)
	ctl.Initializer = a
	ctl.AuxSetter = a
	return
}

// RelativeL1 compares a solution to the initial field, which a full period of
// rotation returns to.
func (a *Annulus) RelativeL1(sol *state.Solution) (rel float64, err error) {
	var q0 *state.State
	if q0, err = state.NewState(sol.State.Grid, 1, 0); err != nil {
		return
	}
	if err = a.Initialize(q0); err != nil {
		return
	}
	capa := sol.State.CapaValues()
	diff := make([]float64, len(capa))
	floats.SubTo(diff, sol.State.Q.Data, q0.Q.Data)
	for k := range diff {
		diff[k] = math.Abs(diff[k])
		q0.Q.Data[k] = math.Abs(q0.Q.Data[k])
	}
	rel = floats.Dot(diff, capa) / floats.Dot(q0.Q.Data, capa)
	return
}

func (a *Annulus) Report(sol *state.Solution) string {
	rel, err := a.RelativeL1(sol)
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("t = %8.5f, mass = %12.8f, relative L1 to initial = %8.5f", sol.T, sol.State.Integral(0), rel)
}
