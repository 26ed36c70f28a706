package Advection2D

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/state"
)

func sector(r1, dr, dtheta float64) (v, capa float64) {
	r2 := r1 + dr
	v = -math.Pi * (r2*r2 - r1*r1) / dr
	capa = 0.5 * (r2*r2 - r1*r1) * math.Sin(dtheta) / (dr * dtheta)
	return
}

func TestAnnulusAux(t *testing.T) {
	a, err := NewAnnulus(8, 24, DefaultSolverConfig())
	require.NoError(t, err)
	st := a.Sol.State
	require.NoError(t, a.SetAux(st, 0))
	var (
		dx     = st.Grid.Delta()
		dr, dt = dx[0], dx[1]
	)
	for j := 0; j < 24; j++ {
		for i := 0; i < 8; i++ {
			v, capa := sector(0.2+float64(i)*dr, dr, dt)
			assert.InDelta(t, 0, st.Aux.At(auxU, i, j), 1.e-12)
			assert.InDelta(t, v, st.Aux.At(auxV, i, j), 1.e-10)
			assert.InDelta(t, capa, st.Aux.At(auxCapa, i, j), 1.e-12)
		}
	}

	padded := state.NewField(numAux, st.Grid.Shape(), 2)
	require.NoError(t, a.Fill(st.Grid, 0, bc.Lower, 0, padded))
	require.NoError(t, a.Fill(st.Grid, 0, bc.Upper, 0, padded))
	for _, i := range []int{-2, -1, 8, 9} {
		for _, j := range []int{-2, 0, 25} {
			v, capa := sector(0.2+float64(i)*dr, dr, dt)
			assert.InDelta(t, v, padded.At(auxV, i, j), 1.e-10, "ghost %d,%d", i, j)
			assert.InDelta(t, capa, padded.At(auxCapa, i, j), 1.e-12, "ghost %d,%d", i, j)
		}
	}
	assert.ErrorIs(t, a.Fill(st.Grid, 1, bc.Lower, 0, padded), bc.ErrUnsupportedFace)
}

func TestPolarInverse(t *testing.T) {
	for _, xc := range [][]float64{{0.3, 0.1}, {0.9, 4}, {0.5, 6.2}} {
		xp := make([]float64, 2)
		Polar{}.MapC2P(xc, xp)
		back := make([]float64, 2)
		Polar{}.MapP2C(xp, back)
		assert.InDeltaSlice(t, xc, back, 1.e-12)
		newton, err := grid.Invert(grid.MapperFunc(Polar{}.MapC2P), xp, []float64{xc[0] + 0.05, xc[1] - 0.05})
		require.NoError(t, err)
		assert.InDeltaSlice(t, xc, newton, 1.e-9)
	}
}

func TestAnnulusRotation(t *testing.T) {
	if testing.Short() {
		t.Skip("full rotation")
	}
	a, err := NewAnnulus(40, 120, DefaultSolverConfig())
	require.NoError(t, err)
	cfg := controller.DefaultConfig()
	cfg.NumOutput = 2
	ctl := a.Controller(cfg)
	ctl.KeepCopy = true
	status, err := ctl.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Positive(t, status.Rejected, "the initial dt violates the CFL limit")
	require.Len(t, ctl.Frames, 3)

	mass0 := ctl.Frames[0].State.Integral(0)
	for _, f := range ctl.Frames[1:] {
		assert.InDelta(t, mass0, f.State.Integral(0), 1.e-9)
	}
	half, err := a.RelativeL1(ctl.Frames[1])
	require.NoError(t, err)
	assert.Greater(t, half, 1., "after half a turn the pulses have swapped places")
	rel, err := a.RelativeL1(a.Sol)
	require.NoError(t, err)
	assert.Less(t, rel, 0.35)
}
