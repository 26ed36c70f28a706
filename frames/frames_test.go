package frames

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/grid"
	"github.com/notargets/gofv/state"
)

func newSolution(t *testing.T) *state.Solution {
	g, err := grid.NewGrid([]grid.Dimension{
		grid.NewDimension("x", -1, 1, 4),
		grid.NewDimension("y", 0, 0.5, 3),
	})
	require.NoError(t, err)
	st, err := state.NewState(g, 2, 1)
	require.NoError(t, err)
	for k := range st.Q.Data {
		st.Q.Data[k] = math.Sin(float64(k)) * 1.e3
	}
	for k := range st.Aux.Data {
		st.Aux.Data[k] = 1 + 0.01*float64(k)
	}
	return &state.Solution{State: st, T: 0.25}
}

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sol := newSolution(t)
	w := NewWriter(dir, "round trip", true)
	require.NoError(t, w.WriteFrame(3, sol))

	for _, name := range []string{"fort.t0003", "fort.q0003", "fort.a0003", MetaFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	b, err := os.ReadFile(filepath.Join(dir, "fort.q0003"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "mx"))
	assert.True(t, strings.Contains(string(b), "ylow"))

	got, err := Read(dir, 3)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got.T, 1.e-12)
	assert.Equal(t, []int{4, 3}, got.State.Grid.Shape())
	assert.InDeltaSlice(t, sol.State.Grid.Delta(), got.State.Grid.Delta(), 1.e-8)
	assert.Equal(t, "y", got.State.Grid.Dimension(1).Name)
	for k, v := range sol.State.Q.Data {
		assert.InDelta(t, v, got.State.Q.Data[k], 1.e-4, "q[%d]", k)
	}
	assert.InDeltaSlice(t, sol.State.Aux.Data, got.State.Aux.Data, 1.e-7)
}

func TestRunMetaWrittenOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	sol := newSolution(t)
	w := NewWriter(dir, "meta", false)
	assert.Equal(t, uuid.Nil, w.RunID())
	require.NoError(t, w.WriteFrame(0, sol))
	id := w.RunID()
	require.NotEqual(t, uuid.Nil, id)
	sol.T = 0.5
	require.NoError(t, w.WriteFrame(1, sol))
	assert.Equal(t, id, w.RunID())

	b, err := os.ReadFile(filepath.Join(dir, MetaFile))
	require.NoError(t, err)
	var m Meta
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, id.String(), m.RunID)
	assert.Equal(t, []string{"x", "y"}, m.Dims)
	assert.Equal(t, 2, m.NumEqn)

	assert.NoFileExists(t, filepath.Join(dir, "fort.a0001"))
	got, err := Read(dir, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.T, 1.e-12)
	assert.Equal(t, make([]float64, len(got.State.Aux.Data)), got.State.Aux.Data)
}

func TestReadMissingFrame(t *testing.T) {
	_, err := Read(t.TempDir(), 7)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
