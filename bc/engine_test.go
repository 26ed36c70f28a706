package bc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/state"
)

func setup(t *testing.T, nx, ny, nv, ng int) (*grid.Grid, *state.Field) {
	g, err := grid.NewGrid([]grid.Dimension{
		grid.NewDimension("x", 0, 1, nx),
		grid.NewDimension("y", 0, 1, ny),
	})
	require.NoError(t, err)
	f := state.NewField(nv, []int{nx, ny}, ng)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			for m := 0; m < nv; m++ {
				f.Set(float64(100*m+10*j+i), m, i, j)
			}
		}
	}
	return g, f
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"Periodic": Periodic, " extrapolate ": Extrap, "ZERO_ORDER": Outflow, "reflect": Wall, "custom": Custom,
	} {
		bt, err := ParseType(name)
		require.NoError(t, err)
		assert.Equal(t, want, bt)
	}
	_, err := ParseType("farfield")
	assert.Error(t, err)
	assert.Equal(t, "Wall", Wall.String())
	assert.Equal(t, "Unknown", Type(99).String())
}

func TestPeriodicAndOutflow(t *testing.T) {
	var (
		nx, ny, ng = 5, 4, 2
	)
	g, f := setup(t, nx, ny, 2, ng)
	e, err := NewEngine(Set{
		Lower: []Policy{{Type: Periodic}, {Type: Outflow}},
		Upper: []Policy{{Type: Periodic}, {Type: Outflow}},
	}, Set{})
	require.NoError(t, err)
	require.NoError(t, e.FillQ(g, 0, f))
	mod := func(i, n int) int { return ((i % n) + n) % n }
	clamp := func(j, n int) int {
		if j < 0 {
			return 0
		}
		if j >= n {
			return n - 1
		}
		return j
	}
	for j := -ng; j < ny+ng; j++ {
		for i := -ng; i < nx+ng; i++ {
			for m := 0; m < 2; m++ {
				want := float64(100*m + 10*clamp(j, ny) + mod(i, nx))
				assert.Equal(t, want, f.At(m, i, j), "cell %d,%d var %d", i, j, m)
			}
		}
	}
}

func TestExtrapAndWall(t *testing.T) {
	var (
		nx, ny, ng = 4, 3, 2
	)
	g, f := setup(t, nx, ny, 3, ng)
	e, err := NewEngine(Set{
		Lower:          []Policy{{Type: Extrap, Order: 1}, {Type: Wall}},
		Upper:          []Policy{{Type: Extrap, Order: 0}, {Type: Wall}},
		WallComponents: [][]int{{1}, {2}},
	}, Set{})
	require.NoError(t, err)
	require.NoError(t, e.FillQ(g, 0, f))
	for j := 0; j < ny; j++ {
		for m := 0; m < 3; m++ {
			base := float64(100*m + 10*j)
			// linear: q0 + k*(q0 - q1) = base - k
			assert.Equal(t, base-1, f.At(m, -1, j))
			assert.Equal(t, base-2, f.At(m, -2, j))
			assert.Equal(t, base+float64(nx-1), f.At(m, nx, j))
			assert.Equal(t, base+float64(nx-1), f.At(m, nx+1, j))
		}
	}
	for i := 0; i < nx; i++ {
		assert.Equal(t, f.At(0, i, 0), f.At(0, i, -1))
		assert.Equal(t, f.At(0, i, 1), f.At(0, i, -2))
		assert.Equal(t, f.At(1, i, 0), f.At(1, i, -1))
		assert.Equal(t, -f.At(2, i, 0), f.At(2, i, -1))
		assert.Equal(t, -f.At(2, i, ny-1), f.At(2, i, ny))
		assert.Equal(t, -f.At(2, i, ny-2), f.At(2, i, ny+1))
	}
}

func TestSeparateAuxPolicies(t *testing.T) {
	var (
		nx, ny, ng = 3, 4, 2
		calls      []Face
	)
	g, q := setup(t, nx, ny, 1, ng)
	_, aux := setup(t, nx, ny, 1, ng)
	geometry := FillerFunc(func(g *grid.Grid, dim int, face Face, t float64, f *state.Field) error {
		if dim != 0 {
			return ErrUnsupportedFace
		}
		calls = append(calls, face)
		lo, hi := GhostBox(f, dim, face)
		for j := lo[1]; j <= hi[1]; j++ {
			for i := lo[0]; i <= hi[0]; i++ {
				f.Set(-1, 0, i, j)
			}
		}
		return nil
	})
	e, err := NewEngine(
		Set{Lower: []Policy{{Type: Outflow}, {Type: Periodic}}, Upper: []Policy{{Type: Outflow}, {Type: Periodic}}},
		Set{Lower: []Policy{{Type: Custom, Filler: geometry}, {Type: Periodic}},
			Upper: []Policy{{Type: Custom, Filler: geometry}, {Type: Periodic}}},
	)
	require.NoError(t, err)
	require.NoError(t, e.FillQ(g, 0, q))
	require.NoError(t, e.FillAux(g, 0, aux))
	assert.Equal(t, []Face{Lower, Upper}, calls)
	assert.Equal(t, q.At(0, 0, 1), q.At(0, -1, 1))
	assert.Equal(t, -1., aux.At(0, -1, 1))
	assert.Equal(t, -1., aux.At(0, nx+1, 2))
	// corners take the periodic y fill of the custom x ghosts
	assert.Equal(t, -1., aux.At(0, -1, -1))
	assert.Equal(t, aux.At(0, 1, ny-1), aux.At(0, 1, -1))
}

func TestUnsupportedFace(t *testing.T) {
	g, f := setup(t, 3, 3, 1, 1)
	radialOnly := FillerFunc(func(g *grid.Grid, dim int, face Face, t float64, f *state.Field) error {
		if dim != 0 {
			return ErrUnsupportedFace
		}
		return nil
	})
	e, err := NewEngine(Uniform(Policy{Type: Outflow}, Policy{Type: Custom, Filler: radialOnly}), Set{})
	require.NoError(t, err)
	err = e.FillQ(g, 0, f)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Dim)
	assert.Equal(t, Lower, ce.Face)
	assert.True(t, errors.Is(err, ErrUnsupportedFace))

	failing := FillerFunc(func(g *grid.Grid, dim int, face Face, t float64, f *state.Field) error {
		return errors.New("boom")
	})
	e, err = NewEngine(Uniform(Policy{Type: Custom, Filler: failing}, Policy{Type: Outflow}), Set{})
	require.NoError(t, err)
	err = e.FillQ(g, 0, f)
	assert.Error(t, err)
	assert.False(t, errors.As(err, &ce))
}

func TestEngineValidation(t *testing.T) {
	cases := []Set{
		{Lower: []Policy{{Type: Periodic}}, Upper: []Policy{{Type: Outflow}}},
		{Lower: []Policy{{Type: Custom}}, Upper: []Policy{{Type: Outflow}}},
		{Lower: []Policy{{Type: Extrap, Order: 2}}, Upper: []Policy{{Type: Outflow}}},
		{Lower: []Policy{{Type: Outflow}}, Upper: nil},
	}
	for i, s := range cases {
		_, err := NewEngine(s, Set{})
		var ce *ConfigError
		assert.True(t, errors.As(err, &ce), "case %d", i)
	}
	e, err := NewEngine(Uniform(Policy{Type: Outflow}), Set{})
	require.NoError(t, err)
	assert.NoError(t, e.Check(1, 0))
	assert.Error(t, e.Check(2, 0))
	assert.Error(t, e.Check(1, 1))
}

func TestGhostBox(t *testing.T) {
	f := state.NewField(1, []int{4, 3}, 2)
	lo, hi := GhostBox(f, 1, Upper)
	assert.Equal(t, []int{-2, 3}, lo)
	assert.Equal(t, []int{5, 4}, hi)
	lo, hi = GhostBox(f, 0, Lower)
	assert.Equal(t, []int{-2, -2}, lo)
	assert.Equal(t, []int{-1, 4}, hi)
}
