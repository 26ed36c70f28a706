// Package riemann defines the interface the finite volume update uses to
// resolve the wave structure at a cell interface, and the equation systems
// shipped with gofv.
package riemann

import (
	"fmt"
	"math"
)

// Fluctuation receives the result of one interface Riemann problem. Waves is
// wave-major: component m of wave w is Waves[m+NumEqn*w].
type Fluctuation struct {
	NumEqn, NumWaves int
	Waves            []float64
	Speeds           []float64
	Amdq, Apdq       []float64
}

func NewFluctuation(numEqn, numWaves int) *Fluctuation {
	return &Fluctuation{
		NumEqn:   numEqn,
		NumWaves: numWaves,
		Waves:    make([]float64, numEqn*numWaves),
		Speeds:   make([]float64, numWaves),
		Amdq:     make([]float64, numEqn),
		Apdq:     make([]float64, numEqn),
	}
}

// Wave returns wave w, aliasing Waves.
func (f *Fluctuation) Wave(w int) []float64 {
	return f.Waves[w*f.NumEqn : (w+1)*f.NumEqn]
}

func (f *Fluctuation) Reset() {
	for _, v := range [][]float64{f.Waves, f.Speeds, f.Amdq, f.Apdq} {
		for i := range v {
			v[i] = 0
		}
	}
}

// SplitBySpeed sets Amdq and Apdq to the sums of s*W over left and right
// going waves.
func (f *Fluctuation) SplitBySpeed() {
	for m := 0; m < f.NumEqn; m++ {
		f.Amdq[m], f.Apdq[m] = 0, 0
	}
	for w := 0; w < f.NumWaves; w++ {
		s := f.Speeds[w]
		wave := f.Wave(w)
		for m := 0; m < f.NumEqn; m++ {
			if s < 0 {
				f.Amdq[m] += s * wave[m]
			} else {
				f.Apdq[m] += s * wave[m]
			}
		}
	}
}

// Solver solves the Riemann problem normal to dimension dim between the
// left and right cell states ql and qr. auxl and auxr are the aux values of
// the two cells.
type Solver interface {
	NumEqn() int
	NumWaves() int
	Normal(dim int, ql, qr, auxl, auxr []float64, f *Fluctuation) error
}

// Side says which of the two normal fluctuations is being split.
type Side uint8

const (
	// LeftGoing is A^-dQ, which enters the cell left of the interface
	LeftGoing Side = iota
	// RightGoing is A^+dQ, which enters the cell right of the interface
	RightGoing
)

func (s Side) String() string {
	if s == LeftGoing {
		return "left-going"
	}
	return "right-going"
}

// Transverse is implemented by solvers that can split a normal fluctuation
// asdq into down-going (bmasdq) and up-going (bpasdq) parts in the direction
// transverse to dim. ql and qr are the interface states; auxCell is the aux of
// the cell receiving asdq and auxNext the aux of its upper neighbor in the
// transverse direction.
type Transverse interface {
	Transverse(dim int, side Side, ql, qr, auxCell, auxNext, asdq, bmasdq, bpasdq []float64) error
}

// Validator is implemented by systems with an admissible state set beyond
// finite values. Validate returns a *PhysicalError for a state outside it.
type Validator interface {
	Validate(q []float64) error
}

// PhysicalError reports an interface state no wave decomposition can fix.
type PhysicalError struct {
	Field string
	Value float64
	Side  string
}

func (e *PhysicalError) Error() string {
	return fmt.Sprintf("riemann: unphysical %s %g in %s state", e.Field, e.Value, e.Side)
}

func checkFinite(q []float64, side string) error {
	for m, v := range q {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &PhysicalError{Field: fmt.Sprintf("q[%d]", m), Value: v, Side: side}
		}
	}
	return nil
}
