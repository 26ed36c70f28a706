// Package grid describes logically rectangular grids, the mapping from
// logical (computational) coordinates to physical coordinates, and the
// cell geometry derived from that mapping.
package grid

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrGridInUse is returned when the mapping is replaced after geometry
	// has already been computed from it.
	ErrGridInUse = errors.New("grid: mapping cannot change after geometry is computed")
	// ErrBadDimension is returned for a dimension with no cells or an empty extent.
	ErrBadDimension = errors.New("grid: invalid dimension")
)

// Dimension is one logical coordinate direction.
type Dimension struct {
	Name         string
	Lower, Upper float64
	NumCells     int
}

func NewDimension(name string, lower, upper float64, numCells int) Dimension {
	return Dimension{Name: name, Lower: lower, Upper: upper, NumCells: numCells}
}

// Delta is the logical cell width.
func (d Dimension) Delta() float64 {
	return (d.Upper - d.Lower) / float64(d.NumCells)
}

// Centers returns the logical cell centers.
func (d Dimension) Centers() (c []float64) {
	var (
		dx = d.Delta()
	)
	c = make([]float64, d.NumCells)
	if d.NumCells == 1 {
		c[0] = d.Lower + 0.5*dx
		return
	}
	floats.Span(c, d.Lower+0.5*dx, d.Upper-0.5*dx)
	return
}

// Edges returns the logical cell edges, NumCells+1 values.
func (d Dimension) Edges() (e []float64) {
	e = make([]float64, d.NumCells+1)
	floats.Span(e, d.Lower, d.Upper)
	return
}

func (d Dimension) validate() error {
	if d.NumCells <= 0 {
		return fmt.Errorf("%w: %q has %d cells", ErrBadDimension, d.Name, d.NumCells)
	}
	if !(d.Upper > d.Lower) {
		return fmt.Errorf("%w: %q has extent [%g, %g]", ErrBadDimension, d.Name, d.Lower, d.Upper)
	}
	return nil
}

// Grid is an ordered set of dimensions plus a mapping to physical space.
// Physical centers and corners are computed on demand and cached.
type Grid struct {
	dims   []Dimension
	mapper Mapper

	mu              sync.Mutex
	centers         [][]float64
	corners         [][]float64
	geometryWasUsed bool
}

type Option func(g *Grid)

// WithMapper installs the logical to physical mapping.
func WithMapper(m Mapper) Option {
	return func(g *Grid) {
		g.mapper = m
	}
}

func NewGrid(dims []Dimension, opts ...Option) (g *Grid, err error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: grid needs at least one dimension", ErrBadDimension)
	}
	for _, d := range dims {
		if err = d.validate(); err != nil {
			return nil, err
		}
	}
	g = &Grid{
		dims:   append([]Dimension(nil), dims...),
		mapper: Identity{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.mapper == nil {
		g.mapper = Identity{}
	}
	return
}

// SetMapper swaps the mapping. Allowed only before any physical geometry
// has been computed.
func (g *Grid) SetMapper(m Mapper) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.geometryWasUsed {
		return ErrGridInUse
	}
	if m == nil {
		m = Identity{}
	}
	g.mapper = m
	g.centers, g.corners = nil, nil
	return nil
}

func (g *Grid) Mapper() Mapper { return g.mapper }

func (g *Grid) NumDim() int { return len(g.dims) }

func (g *Grid) Dimension(d int) Dimension { return g.dims[d] }

func (g *Grid) Dimensions() []Dimension { return append([]Dimension(nil), g.dims...) }

// Shape is the number of cells in each dimension.
func (g *Grid) Shape() (shape []int) {
	shape = make([]int, len(g.dims))
	for d, dim := range g.dims {
		shape[d] = dim.NumCells
	}
	return
}

// Delta returns the logical cell widths.
func (g *Grid) Delta() (dx []float64) {
	dx = make([]float64, len(g.dims))
	for d, dim := range g.dims {
		dx[d] = dim.Delta()
	}
	return
}

// NumCells is the total number of interior cells.
func (g *Grid) NumCells() (n int) {
	n = 1
	for _, dim := range g.dims {
		n *= dim.NumCells
	}
	return
}

// LogicalCenters returns, per dimension, the logical center coordinate of
// every cell, first dimension varying fastest.
func (g *Grid) LogicalCenters() (xc [][]float64) {
	var (
		c = make([][]float64, len(g.dims))
	)
	for d, dim := range g.dims {
		c[d] = dim.Centers()
	}
	return lattice(c)
}

// LogicalCorners returns, per dimension, the logical coordinate of every
// cell corner, first dimension varying fastest.
func (g *Grid) LogicalCorners() (xc [][]float64) {
	var (
		e = make([][]float64, len(g.dims))
	)
	for d, dim := range g.dims {
		e[d] = dim.Edges()
	}
	return lattice(e)
}

// CellCenters returns the physical cell centers. The result is cached and
// shared; recompute forces the mapping to be evaluated again.
func (g *Grid) CellCenters(recompute bool) [][]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.geometryWasUsed = true
	if g.centers == nil || recompute {
		g.centers = g.mapLattice(g.LogicalCenters())
	}
	return g.centers
}

// CellCorners returns the physical cell corners, NumCells+1 per dimension.
func (g *Grid) CellCorners(recompute bool) [][]float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.geometryWasUsed = true
	if g.corners == nil || recompute {
		g.corners = g.mapLattice(g.LogicalCorners())
	}
	return g.corners
}

// CornersRange maps the corner lattice with corner indices lo[d]..hi[d]
// inclusive. Indices may lie outside the grid; corner k of dimension d sits
// at Lower + k*Delta. Used to build geometry for ghost cells.
func (g *Grid) CornersRange(lo, hi []int) (xp [][]float64) {
	if len(lo) != len(g.dims) || len(hi) != len(g.dims) {
		panic(fmt.Errorf("corner range rank %d/%d does not match grid rank %d", len(lo), len(hi), len(g.dims)))
	}
	var (
		e = make([][]float64, len(g.dims))
	)
	for d, dim := range g.dims {
		if hi[d] < lo[d] {
			panic(fmt.Errorf("empty corner range [%d,%d] in dimension %d", lo[d], hi[d], d))
		}
		dx := dim.Delta()
		e[d] = make([]float64, hi[d]-lo[d]+1)
		if len(e[d]) == 1 {
			e[d][0] = dim.Lower + float64(lo[d])*dx
			continue
		}
		floats.Span(e[d], dim.Lower+float64(lo[d])*dx, dim.Lower+float64(hi[d])*dx)
	}
	g.mu.Lock()
	g.geometryWasUsed = true
	g.mu.Unlock()
	return g.mapLattice(lattice(e))
}

func (g *Grid) mapLattice(xc [][]float64) (xp [][]float64) {
	var (
		nd   = len(xc)
		n    = len(xc[0])
		pin  = make([]float64, nd)
		pout = make([]float64, nd)
	)
	xp = make([][]float64, nd)
	for d := range xp {
		xp[d] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for d := 0; d < nd; d++ {
			pin[d] = xc[d][i]
		}
		g.mapper.MapC2P(pin, pout)
		for d := 0; d < nd; d++ {
			xp[d][i] = pout[d]
		}
	}
	return
}

func (g *Grid) String() string {
	var b strings.Builder
	for d, dim := range g.dims {
		if d > 0 {
			b.WriteString(" x ")
		}
		fmt.Fprintf(&b, "%s[%g,%g]/%d", dim.Name, dim.Lower, dim.Upper, dim.NumCells)
	}
	return b.String()
}

// lattice expands per-dimension coordinate lists into a full tensor lattice,
// first dimension varying fastest.
func lattice(coords [][]float64) (xc [][]float64) {
	var (
		nd = len(coords)
		n  = 1
	)
	for _, c := range coords {
		n *= len(c)
	}
	xc = make([][]float64, nd)
	for d := range xc {
		xc[d] = make([]float64, n)
	}
	idx := make([]int, nd)
	for i := 0; i < n; i++ {
		for d := 0; d < nd; d++ {
			xc[d][i] = coords[d][idx[d]]
		}
		for d := 0; d < nd; d++ {
			idx[d]++
			if idx[d] < len(coords[d]) {
				break
			}
			idx[d] = 0
		}
	}
	return
}
