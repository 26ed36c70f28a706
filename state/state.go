// Package state holds the conserved and auxiliary arrays over a grid at one
// instant in time.
package state

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/grid"
)

var ErrShape = errors.New("state: array shape does not match grid")

// State owns the conserved field Q and the auxiliary field Aux on a shared
// grid. Capa is the Aux variable holding the capacity, or -1 when none.
type State struct {
	Grid   *grid.Grid
	NumEqn int
	NumAux int
	Q      *Field
	Aux    *Field
	Capa   int
}

func NewState(g *grid.Grid, numEqn, numAux int) (st *State, err error) {
	if numEqn < 1 {
		return nil, fmt.Errorf("state: need at least one equation, have %d", numEqn)
	}
	if numAux < 0 {
		return nil, fmt.Errorf("state: negative aux count %d", numAux)
	}
	st = &State{
		Grid:   g,
		NumEqn: numEqn,
		NumAux: numAux,
		Q:      NewField(numEqn, g.Shape(), 0),
		Aux:    NewField(numAux, g.Shape(), 0),
		Capa:   -1,
	}
	return
}

// SetCapa selects the aux variable used as capacity; -1 disables it.
func (st *State) SetCapa(m int) error {
	if m < -1 || m >= st.NumAux {
		return fmt.Errorf("state: capacity index %d outside aux range [0,%d)", m, st.NumAux)
	}
	st.Capa = m
	return nil
}

// Validate checks that Q and Aux match the grid and Capa references Aux.
func (st *State) Validate() error {
	shape := st.Grid.Shape()
	check := func(name string, f *Field, nv int) error {
		if f == nil {
			return fmt.Errorf("%w: %s is nil", ErrShape, name)
		}
		if f.NumVars != nv || f.NumGhost != 0 || len(f.Shape) != len(shape) {
			return fmt.Errorf("%w: %s has %d vars, %d ghosts, rank %d", ErrShape, name, f.NumVars, f.NumGhost, len(f.Shape))
		}
		for d := range shape {
			if f.Shape[d] != shape[d] {
				return fmt.Errorf("%w: %s shape %v, grid %v", ErrShape, name, f.Shape, shape)
			}
		}
		if len(f.Data) != nv*f.NumPadded() {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrShape, name, len(f.Data), nv*f.NumPadded())
		}
		return nil
	}
	if err := check("q", st.Q, st.NumEqn); err != nil {
		return err
	}
	if err := check("aux", st.Aux, st.NumAux); err != nil {
		return err
	}
	if st.Capa < -1 || st.Capa >= st.NumAux {
		return fmt.Errorf("%w: capacity index %d outside aux range [0,%d)", ErrShape, st.Capa, st.NumAux)
	}
	return nil
}

// Variable extracts variable m of Q over all cells.
func (st *State) Variable(m int) (v []float64) {
	var (
		n  = st.Q.NumInterior()
		nv = st.NumEqn
	)
	v = make([]float64, n)
	for k := 0; k < n; k++ {
		v[k] = st.Q.Data[m+nv*k]
	}
	return
}

// CapaValues returns the per cell capacity, ones when Capa is unset.
func (st *State) CapaValues() (c []float64) {
	n := st.Q.NumInterior()
	c = make([]float64, n)
	if st.Capa < 0 {
		floats.AddConst(1, c)
		return
	}
	for k := 0; k < n; k++ {
		c[k] = st.Aux.Data[st.Capa+st.NumAux*k]
	}
	return
}

// Integral is the physical integral of variable m: sum of q*capa*cell volume.
func (st *State) Integral(m int) float64 {
	vol := 1.
	for _, dx := range st.Grid.Delta() {
		vol *= dx
	}
	return vol * floats.Dot(st.Variable(m), st.CapaValues())
}

func (st *State) Copy() (c *State) {
	c = &State{
		Grid:   st.Grid,
		NumEqn: st.NumEqn,
		NumAux: st.NumAux,
		Q:      st.Q.Copy(),
		Aux:    st.Aux.Copy(),
		Capa:   st.Capa,
	}
	return
}

// Solution pairs a State with its simulation time.
type Solution struct {
	State *State
	T     float64
}

func (s *Solution) Copy() *Solution {
	return &Solution{State: s.State.Copy(), T: s.T}
}

// Initializer fills Q at the start of a run.
type Initializer interface {
	Initialize(st *State) error
}

type InitializerFunc func(st *State) error

func (f InitializerFunc) Initialize(st *State) error { return f(st) }

// AuxSetter fills Aux, once before the run or every step when the aux data
// depends on time.
type AuxSetter interface {
	SetAux(st *State, t float64) error
}

type AuxSetterFunc func(st *State, t float64) error

func (f AuxSetterFunc) SetAux(st *State, t float64) error { return f(st, t) }
