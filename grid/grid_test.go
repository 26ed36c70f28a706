package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annulus(xc, xp []float64) {
	xp[0] = xc[0] * math.Cos(xc[1])
	xp[1] = xc[0] * math.Sin(xc[1])
}

func TestDimension(t *testing.T) {
	d := NewDimension("x", 0, 1, 4)
	assert.InDelta(t, 0.25, d.Delta(), 1.e-15)
	assert.InDeltaSlice(t, []float64{0.125, 0.375, 0.625, 0.875}, d.Centers(), 1.e-15)
	assert.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, d.Edges(), 1.e-15)

	_, err := NewGrid([]Dimension{NewDimension("x", 0, 1, 0)})
	assert.True(t, errors.Is(err, ErrBadDimension))
	_, err = NewGrid([]Dimension{NewDimension("x", 1, 1, 3)})
	assert.True(t, errors.Is(err, ErrBadDimension))
	_, err = NewGrid(nil)
	assert.True(t, errors.Is(err, ErrBadDimension))
}

func TestLattice(t *testing.T) {
	g, err := NewGrid([]Dimension{
		NewDimension("x", 0, 2, 2),
		NewDimension("y", 0, 3, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, g.Shape())
	assert.Equal(t, 6, g.NumCells())
	xc := g.LogicalCenters()
	assert.Equal(t, []float64{0.5, 1.5, 0.5, 1.5, 0.5, 1.5}, xc[0])
	assert.Equal(t, []float64{0.5, 0.5, 1.5, 1.5, 2.5, 2.5}, xc[1])
	corners := g.CellCorners(false)
	assert.Len(t, corners[0], 12)
	assert.Equal(t, 2., corners[0][2])
	assert.Equal(t, 3., corners[1][11])
}

func TestMapperCacheAndSetMapper(t *testing.T) {
	var calls int
	counting := MapperFunc(func(xc, xp []float64) {
		calls++
		copy(xp, xc)
	})
	g, err := NewGrid([]Dimension{NewDimension("x", 0, 1, 5)}, WithMapper(counting))
	require.NoError(t, err)
	require.NoError(t, g.SetMapper(counting))

	c1 := g.CellCenters(false)
	assert.Equal(t, 5, calls)
	c2 := g.CellCenters(false)
	assert.Equal(t, 5, calls)
	assert.Equal(t, c1, c2)
	g.CellCenters(true)
	assert.Equal(t, 10, calls)

	assert.True(t, errors.Is(g.SetMapper(Identity{}), ErrGridInUse))
}

func TestIdentityCapacity(t *testing.T) {
	g1, err := NewGrid([]Dimension{NewDimension("x", -1, 3, 7)})
	require.NoError(t, err)
	capa, err := g1.Capacity()
	require.NoError(t, err)
	for _, c := range capa {
		assert.InDelta(t, 1., c, 1.e-14)
	}

	g2, err := NewGrid([]Dimension{
		NewDimension("x", 0, 1, 6),
		NewDimension("y", -2, 2, 5),
	})
	require.NoError(t, err)
	capa, err = g2.Capacity()
	require.NoError(t, err)
	assert.Len(t, capa, 30)
	for _, c := range capa {
		assert.InDelta(t, 1., c, 1.e-13)
	}

	g3, err := NewGrid([]Dimension{
		NewDimension("x", 0, 1, 2), NewDimension("y", 0, 1, 2), NewDimension("z", 0, 1, 2),
	})
	require.NoError(t, err)
	_, err = g3.Capacity()
	assert.Error(t, err)
}

func TestAnnulusCapacity(t *testing.T) {
	var (
		r1, r2 = 0.2, 1.
		nr, nt = 8, 24
	)
	g, err := NewGrid([]Dimension{
		NewDimension("r", r1, r2, nr),
		NewDimension("theta", 0, 2*math.Pi, nt),
	}, WithMapper(MapperFunc(annulus)))
	require.NoError(t, err)
	capa, err := g.Capacity()
	require.NoError(t, err)
	var (
		dr, dt = g.Delta()[0], g.Delta()[1]
		total  float64
	)
	for j := 0; j < nt; j++ {
		for i := 0; i < nr; i++ {
			c := capa[i+nr*j]
			assert.True(t, c > 0)
			// Chordal polygon area of the sector between radii ra and rb
			ra, rb := r1+float64(i)*dr, r1+float64(i+1)*dr
			exact := 0.5 * (rb*rb - ra*ra) * math.Sin(dt)
			assert.InDelta(t, exact/(dr*dt), c, 1.e-12)
			total += c * dr * dt
		}
	}
	// Inscribed polygon area converges to the annulus area
	assert.InDelta(t, math.Pi*(r2*r2-r1*r1), total, 0.05)
}

func TestCornersRange(t *testing.T) {
	g, err := NewGrid([]Dimension{
		NewDimension("r", 0.2, 1, 4),
		NewDimension("theta", 0, 1, 4),
	}, WithMapper(MapperFunc(annulus)))
	require.NoError(t, err)
	all := g.CornersRange([]int{0, 0}, []int{4, 4})
	assert.InDeltaSlice(t, g.CellCorners(false)[0], all[0], 1.e-15)
	ghost := g.CornersRange([]int{-2, 0}, []int{0, 1})
	assert.Len(t, ghost[0], 6)
	// corner index -2 in r sits at r = 0.2 - 2*0.2 = -0.2, theta = 0
	assert.InDelta(t, -0.2, ghost[0][0], 1.e-15)
	assert.InDelta(t, 0., ghost[1][0], 1.e-15)
}

func TestInvertRoundTrip(t *testing.T) {
	m := MapperFunc(annulus)
	xp := make([]float64, 2)
	for _, pt := range [][2]float64{{0.3, 0.1}, {0.5, 1.3}, {0.95, 3.}, {0.7, 5.5}} {
		annulus(pt[:], xp)
		guess := []float64{pt[0] + 0.05, pt[1] - 0.1}
		xc, err := Invert(m, xp, guess)
		require.NoError(t, err)
		assert.InDelta(t, pt[0], xc[0], 1.e-9)
		assert.InDelta(t, pt[1], xc[1], 1.e-9)
		back := make([]float64, 2)
		m.MapC2P(xc, back)
		assert.InDeltaSlice(t, xp, back, 1.e-11)
	}
	xc, err := Invert(Identity{}, []float64{0.25, 4}, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 4}, xc)

	_, err = Invert(m, []float64{1, 0}, []float64{1})
	assert.Error(t, err)
}

func TestCellArea2D(t *testing.T) {
	assert.InDelta(t, 1., CellArea2D([]float64{0, 1, 1, 0}, []float64{0, 0, 1, 1}), 1.e-15)
	assert.InDelta(t, -1., CellArea2D([]float64{0, 0, 1, 1}, []float64{0, 1, 1, 0}), 1.e-15)
}
