package grid

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Mapper maps a logical point xc to a physical point xp of the same rank.
type Mapper interface {
	MapC2P(xc, xp []float64)
}

type MapperFunc func(xc, xp []float64)

func (f MapperFunc) MapC2P(xc, xp []float64) { f(xc, xp) }

// Inverter is implemented by mappings with a closed form inverse.
type Inverter interface {
	MapP2C(xp, xc []float64)
}

type Identity struct{}

func (Identity) MapC2P(xc, xp []float64) { copy(xp, xc) }

func (Identity) MapP2C(xp, xc []float64) { copy(xc, xp) }

var ErrNoConvergence = errors.New("grid: inverse mapping did not converge")

const (
	invertMaxIter = 50
	invertTol     = 1.e-12
)

// Invert finds the logical point whose image is xp. A mapping implementing
// Inverter is used directly, otherwise Newton iteration from guess is run
// with a finite difference Jacobian.
func Invert(m Mapper, xp, guess []float64) (xc []float64, err error) {
	var (
		nd = len(xp)
	)
	xc = make([]float64, nd)
	if inv, ok := m.(Inverter); ok {
		inv.MapP2C(xp, xc)
		return
	}
	if len(guess) != nd {
		return nil, fmt.Errorf("grid: guess rank %d does not match point rank %d", len(guess), nd)
	}
	copy(xc, guess)
	var (
		f     = make([]float64, nd)
		fh    = make([]float64, nd)
		xh    = make([]float64, nd)
		jac   = mat.NewDense(nd, nd, nil)
		rhs   = mat.NewVecDense(nd, nil)
		delta = mat.NewVecDense(nd, nil)
		scale = math.Max(1, floats.Norm(xp, 2))
	)
	for iter := 0; iter < invertMaxIter; iter++ {
		m.MapC2P(xc, f)
		floats.Sub(f, xp)
		if floats.Norm(f, 2) <= invertTol*scale {
			return
		}
		for j := 0; j < nd; j++ {
			copy(xh, xc)
			h := 1.e-7 * math.Max(1, math.Abs(xc[j]))
			xh[j] += h
			m.MapC2P(xh, fh)
			for i := 0; i < nd; i++ {
				jac.Set(i, j, (fh[i]-xp[i]-f[i])/h)
			}
		}
		for i := 0; i < nd; i++ {
			rhs.SetVec(i, -f[i])
		}
		if err = delta.SolveVec(jac, rhs); err != nil {
			return nil, fmt.Errorf("%w: singular jacobian at %v: %v", ErrNoConvergence, xc, err)
		}
		for i := 0; i < nd; i++ {
			xc[i] += delta.AtVec(i)
		}
	}
	m.MapC2P(xc, f)
	floats.Sub(f, xp)
	if floats.Norm(f, 2) <= 1.e3*invertTol*scale {
		return
	}
	return nil, fmt.Errorf("%w: residual %g at %v", ErrNoConvergence, floats.Norm(f, 2), xc)
}

// CellArea2D is the signed shoelace area of a polygon with vertices given in
// order. Counter-clockwise ordering gives a positive area.
func CellArea2D(x, y []float64) (area float64) {
	var (
		n = len(x)
	)
	for i := 0; i < n; i++ {
		ip := (i + 1) % n
		area += x[i]*y[ip] - x[ip]*y[i]
	}
	area *= 0.5
	return
}

// Capacity is the ratio of physical to logical cell size for every cell,
// first dimension varying fastest.
func (g *Grid) Capacity() (capa []float64, err error) {
	return CapacityFromCorners(g.CellCorners(false), g.Shape(), g.Delta())
}

// CapacityFromCorners computes capacity for a block of cells with the given
// shape from its mapped corner lattice, shape[d]+1 corners per dimension.
func CapacityFromCorners(xp [][]float64, shape []int, dx []float64) (capa []float64, err error) {
	switch len(shape) {
	case 1:
		var (
			nx = shape[0]
		)
		capa = make([]float64, nx)
		for i := 0; i < nx; i++ {
			capa[i] = math.Abs(xp[0][i+1]-xp[0][i]) / dx[0]
		}
	case 2:
		var (
			nx, ny = shape[0], shape[1]
			ncx    = nx + 1
			x, y   [4]float64
			dxdy   = dx[0] * dx[1]
		)
		capa = make([]float64, nx*ny)
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				k := [4]int{i + ncx*j, i + 1 + ncx*j, i + 1 + ncx*(j+1), i + ncx*(j+1)}
				for n, kk := range k {
					x[n], y[n] = xp[0][kk], xp[1][kk]
				}
				capa[i+nx*j] = CellArea2D(x[:], y[:]) / dxdy
			}
		}
	default:
		return nil, fmt.Errorf("grid: capacity is not defined for rank %d grids", len(shape))
	}
	return
}
