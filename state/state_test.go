package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/grid"
)

func newGrid2D(t *testing.T, nx, ny int) *grid.Grid {
	g, err := grid.NewGrid([]grid.Dimension{
		grid.NewDimension("x", 0, 1, nx),
		grid.NewDimension("y", 0, 2, ny),
	})
	require.NoError(t, err)
	return g
}

func TestFieldIndexing(t *testing.T) {
	f := NewField(3, []int{4, 5}, 2)
	assert.Equal(t, 8, f.Extent(0))
	assert.Equal(t, 9, f.Extent(1))
	assert.Equal(t, 72, f.NumPadded())
	assert.Equal(t, 20, f.NumInterior())
	assert.Len(t, f.Data, 216)
	assert.Equal(t, 3, f.Stride(0))
	assert.Equal(t, 24, f.Stride(1))

	assert.Equal(t, 0, f.Cell(-2, -2))
	assert.Equal(t, 2+8*2, f.Cell(0, 0))
	assert.Equal(t, 9, f.Cell(-1, -1)-f.Cell(-2, -2))
	assert.Equal(t, 1+3*f.Cell(1, 2), f.Index(1, 1, 2))

	f.Set(7, 2, -1, 6)
	assert.Equal(t, 7., f.At(2, -1, 6))
	cv := f.CellValues(-1, 6)
	assert.Equal(t, 7., cv[2])
	cv[0] = 4
	assert.Equal(t, 4., f.At(0, -1, 6))

	assert.Panics(t, func() { f.Cell(-3, 0) })
	assert.Panics(t, func() { f.Cell(0) })
}

func TestCopyInterior(t *testing.T) {
	src := NewField(2, []int{3, 2}, 0)
	for k := range src.Data {
		src.Data[k] = float64(k)
	}
	padded := NewField(2, []int{3, 2}, 2)
	require.NoError(t, CopyInterior(padded, src))
	for j := 0; j < 2; j++ {
		for i := 0; i < 3; i++ {
			for m := 0; m < 2; m++ {
				assert.Equal(t, src.At(m, i, j), padded.At(m, i, j))
			}
		}
	}
	assert.Equal(t, 0., padded.At(0, -1, 0))

	back := NewField(2, []int{3, 2}, 0)
	require.NoError(t, CopyInterior(back, padded))
	assert.Equal(t, src.Data, back.Data)

	assert.Error(t, CopyInterior(NewField(1, []int{3, 2}, 0), src))
	assert.Error(t, CopyInterior(NewField(2, []int{3, 3}, 0), src))
}

func TestStateValidateAndIntegral(t *testing.T) {
	g := newGrid2D(t, 4, 4)
	st, err := NewState(g, 2, 1)
	require.NoError(t, err)
	require.NoError(t, st.Validate())
	assert.Equal(t, -1, st.Capa)

	assert.Error(t, st.SetCapa(1))
	require.NoError(t, st.SetCapa(0))

	for k := 0; k < 16; k++ {
		st.Q.Data[2*k] = 1
		st.Q.Data[2*k+1] = float64(k)
		st.Aux.Data[k] = 2
	}
	// cell volume 0.25*0.5, capa 2
	assert.InDelta(t, 16*0.125*2, st.Integral(0), 1.e-14)
	require.NoError(t, st.SetCapa(-1))
	assert.InDelta(t, 0.125*120, st.Integral(1), 1.e-13)

	st.Q = NewField(2, []int{4, 3}, 0)
	assert.True(t, errors.Is(st.Validate(), ErrShape))

	_, err = NewState(g, 0, 0)
	assert.Error(t, err)
}

func TestSolutionCopy(t *testing.T) {
	st, err := NewState(newGrid2D(t, 2, 2), 1, 0)
	require.NoError(t, err)
	sol := &Solution{State: st, T: 0.5}
	st.Q.Data[3] = 1
	c := sol.Copy()
	st.Q.Data[3] = 9
	assert.Equal(t, 1., c.State.Q.Data[3])
	assert.Equal(t, 0.5, c.T)
	assert.Same(t, st.Grid, c.State.Grid)
}

func TestCallbackAdapters(t *testing.T) {
	st, err := NewState(newGrid2D(t, 2, 2), 1, 1)
	require.NoError(t, err)
	var init Initializer = InitializerFunc(func(st *State) error {
		for k := range st.Q.Data {
			st.Q.Data[k] = 3
		}
		return nil
	})
	var aux AuxSetter = AuxSetterFunc(func(st *State, t float64) error {
		st.Aux.Data[0] = t
		return nil
	})
	require.NoError(t, init.Initialize(st))
	require.NoError(t, aux.SetAux(st, 1.5))
	assert.Equal(t, 3., st.Q.Data[2])
	assert.Equal(t, 1.5, st.Aux.Data[0])
}
