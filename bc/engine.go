// Package bc fills ghost cell layers of ghost-padded fields according to a
// per dimension, per face boundary policy.
package bc

import (
	"errors"
	"fmt"

	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/state"
)

// ErrUnsupportedFace is returned by a Filler asked to fill a dimension/face
// combination it does not handle.
var ErrUnsupportedFace = errors.New("bc: custom filler does not support this face")

// Filler fills the ghost layers of f on one face of dimension dim at time t.
// The fill must cover the full padded extent of the other dimensions.
type Filler interface {
	Fill(g *grid.Grid, dim int, face Face, t float64, f *state.Field) error
}

type FillerFunc func(g *grid.Grid, dim int, face Face, t float64, f *state.Field) error

func (fn FillerFunc) Fill(g *grid.Grid, dim int, face Face, t float64, f *state.Field) error {
	return fn(g, dim, face, t, f)
}

// ConfigError is a fatal boundary setup problem.
type ConfigError struct {
	Field string // "q" or "aux"
	Dim   int
	Face  Face
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bc: %s dimension %d %s face: %v", e.Field, e.Dim, e.Face, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type Policy struct {
	Type Type
	// Order selects zero (0) or linear (1) extrapolation for Extrap
	Order  int
	Filler Filler
}

// Set holds the policies of one field, indexed by dimension.
type Set struct {
	Lower, Upper []Policy
	// WallComponents lists, per dimension, the variables negated by a Wall
	WallComponents [][]int
}

// Uniform builds a Set with the same policy on both faces of each dimension.
func Uniform(policies ...Policy) (s Set) {
	s.Lower = append([]Policy(nil), policies...)
	s.Upper = append([]Policy(nil), policies...)
	return
}

// Engine holds separate boundary policies for the solution and aux fields.
type Engine struct {
	Q   Set
	Aux Set
}

func NewEngine(q, aux Set) (e *Engine, err error) {
	if err = validateSet("q", q); err != nil {
		return nil, err
	}
	if err = validateSet("aux", aux); err != nil {
		return nil, err
	}
	e = &Engine{Q: q, Aux: aux}
	return
}

func validateSet(name string, s Set) error {
	if len(s.Lower) != len(s.Upper) {
		return &ConfigError{Field: name, Dim: -1,
			Err: fmt.Errorf("%d lower policies and %d upper policies", len(s.Lower), len(s.Upper))}
	}
	for d := range s.Lower {
		lo, hi := s.Lower[d], s.Upper[d]
		if (lo.Type == Periodic) != (hi.Type == Periodic) {
			return &ConfigError{Field: name, Dim: d, Face: Lower,
				Err: errors.New("periodic must be set on both faces")}
		}
		for _, f := range []Face{Lower, Upper} {
			p := lo
			if f == Upper {
				p = hi
			}
			switch p.Type {
			case Outflow, Periodic, Wall:
			case Extrap:
				if p.Order != 0 && p.Order != 1 {
					return &ConfigError{Field: name, Dim: d, Face: f,
						Err: fmt.Errorf("extrapolation order %d not in {0,1}", p.Order)}
				}
			case Custom:
				if p.Filler == nil {
					return &ConfigError{Field: name, Dim: d, Face: f, Err: errors.New("custom policy without a filler")}
				}
			default:
				return &ConfigError{Field: name, Dim: d, Face: f, Err: fmt.Errorf("unknown policy %d", p.Type)}
			}
		}
	}
	return nil
}

// Check verifies the engine covers every dimension of fields with the given
// rank. An aux set may be empty when there are no aux variables.
func (e *Engine) Check(ndim, numAux int) error {
	if len(e.Q.Lower) != ndim {
		return &ConfigError{Field: "q", Dim: -1, Err: fmt.Errorf("%d policies for %d dimensions", len(e.Q.Lower), ndim)}
	}
	if numAux > 0 && len(e.Aux.Lower) != ndim {
		return &ConfigError{Field: "aux", Dim: -1, Err: fmt.Errorf("%d policies for %d dimensions", len(e.Aux.Lower), ndim)}
	}
	return nil
}

// FillQ fills the ghost layers of the solution field qbc.
func (e *Engine) FillQ(g *grid.Grid, t float64, qbc *state.Field) error {
	return fill("q", e.Q, g, t, qbc)
}

// FillAux fills the ghost layers of the aux field auxbc.
func (e *Engine) FillAux(g *grid.Grid, t float64, auxbc *state.Field) error {
	if auxbc.NumVars == 0 {
		return nil
	}
	return fill("aux", e.Aux, g, t, auxbc)
}

// Dimensions are filled in order, each over the full padded extent of the
// others, so corner ghosts end up consistent with the last dimension filled.
func fill(name string, s Set, g *grid.Grid, t float64, f *state.Field) error {
	if f.NumGhost == 0 {
		return nil
	}
	if len(s.Lower) != f.NumDim() {
		return &ConfigError{Field: name, Dim: -1, Err: fmt.Errorf("%d policies for rank %d field", len(s.Lower), f.NumDim())}
	}
	for d := 0; d < f.NumDim(); d++ {
		var wall []int
		if d < len(s.WallComponents) {
			wall = s.WallComponents[d]
		}
		for _, face := range []Face{Lower, Upper} {
			p := s.Lower[d]
			if face == Upper {
				p = s.Upper[d]
			}
			if p.Type == Custom {
				if err := p.Filler.Fill(g, d, face, t, f); err != nil {
					if errors.Is(err, ErrUnsupportedFace) {
						return &ConfigError{Field: name, Dim: d, Face: face, Err: err}
					}
					return fmt.Errorf("bc: %s dimension %d %s face: %w", name, d, face, err)
				}
				continue
			}
			fillFace(f, d, face, p, wall)
		}
	}
	return nil
}

// GhostBox returns the inclusive cell index box of the ghost layers on one
// face of dimension dim, spanning the padded extent of the other dimensions.
func GhostBox(f *state.Field, dim int, face Face) (lo, hi []int) {
	var (
		nd = f.NumDim()
		ng = f.NumGhost
	)
	lo, hi = make([]int, nd), make([]int, nd)
	for d := 0; d < nd; d++ {
		lo[d], hi[d] = -ng, f.Shape[d]+ng-1
	}
	if face == Lower {
		hi[dim] = -1
	} else {
		lo[dim] = f.Shape[dim]
	}
	return
}

// fillFace works on chunks: for dimension d every cell index i along d owns a
// contiguous run of Stride(d) values covering all lower dimensions.
func fillFace(f *state.Field, d int, face Face, p Policy, wall []int) {
	var (
		ng     = f.NumGhost
		n      = f.Shape[d]
		chunk  = f.Stride(d)
		ext    = f.Extent(d)
		outer  = len(f.Data) / (chunk * ext)
		nv     = f.NumVars
		order  = p.Order
		data   = f.Data
		offset = func(o, i int) int { return o*chunk*ext + (i+ng)*chunk }
	)
	if p.Type == Extrap && n < 2 {
		order = 0
	}
	for o := 0; o < outer; o++ {
		for gl := 1; gl <= ng; gl++ {
			var gi, src, edge, next int
			if face == Lower {
				gi, edge, next = -gl, 0, 1
			} else {
				gi, edge, next = n-1+gl, n-1, n-2
			}
			dst := offset(o, gi)
			switch p.Type {
			case Outflow:
				src = edge
			case Periodic:
				src = ((gi % n) + n) % n
			case Wall:
				if face == Lower {
					src = gl - 1
				} else {
					src = n - gl
				}
				if src < 0 || src >= n {
					src = edge
				}
			case Extrap:
				if order == 0 {
					src = edge
					break
				}
				var (
					e0, e1 = offset(o, edge), offset(o, next)
					k      = float64(gl)
				)
				for c := 0; c < chunk; c++ {
					data[dst+c] = data[e0+c] + k*(data[e0+c]-data[e1+c])
				}
				continue
			}
			copy(data[dst:dst+chunk], data[offset(o, src):offset(o, src)+chunk])
			if p.Type == Wall {
				for c := 0; c < chunk; c += nv {
					for _, m := range wall {
						data[dst+c+m] = -data[dst+c+m]
					}
				}
			}
		}
	}
}
