package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/frames"
	"github.com/notargets/gofv/model_problems/Advection2D"
	"github.com/notargets/gofv/model_problems/Euler1D"
	"github.com/notargets/gofv/model_problems/Euler2D"
	"github.com/notargets/gofv/solver"
)

func TestRun2D(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Model: quadrants
Gamma: 1.4
EntropyFix: true
Grid:
  - {Name: x, Lower: 0, Upper: 1, NumCells: 12}
  - {Name: y, Lower: 0, Upper: 1, NumCells: 10}
Limiter: vanleer
FinalTime: 0.05
NumOutput: 2
BCs:
  q:
    lower: [extrap]
    upper: [extrap, wall]
`)
	var input InputParameters.InputParameters
	require.NoError(t, input.Parse(fileInput))
	assert.Equal(t, 0.05, input.FinalTime)

	m, cfg, err := Build2D(&Model2D{Model: "annulus", Workers: 2}, &input)
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.TFinal)
	assert.Equal(t, 2, cfg.NumOutput)
	c, ok := m.(*Euler2D.Euler)
	require.True(t, ok, "the deck model wins over the flag")
	assert.Equal(t, []int{12, 10}, c.Sol.State.Grid.Shape())
	assert.Equal(t, solver.VanLeer, c.Solver.Config().Limiter)
	assert.Equal(t, 2, c.Solver.Config().Workers)

	dir := t.TempDir()
	var out bytes.Buffer
	status, err := RunModel(context.Background(), m, cfg, RunOptions{Title: input.Title, OutDir: dir, Out: &out})
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Equal(t, 3, status.Frames)
	assert.Contains(t, out.String(), "Solving euler 2D")
	assert.Contains(t, out.String(), "CFL")
	assert.Contains(t, out.String(), "rho min/max")

	_, err = os.Stat(filepath.Join(dir, frames.MetaFile))
	assert.NoError(t, err)
	sol, err := frames.Read(dir, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, sol.T, 1.e-8)
	assert.Equal(t, 4, sol.State.NumEqn)
}

func TestBuild2DDefaults(t *testing.T) {
	m, cfg, err := Build2D(&Model2D{Model: "Annulus", NX: 8, NY: 24, FinalTime: 0.5}, nil)
	require.NoError(t, err)
	a, ok := m.(*Advection2D.Annulus)
	require.True(t, ok)
	assert.Equal(t, []int{8, 24}, a.Sol.State.Grid.Shape())
	assert.Equal(t, 0.5, cfg.TFinal)
	assert.False(t, a.Solver.Config().DimSplit)

	m, cfg, err = Build2D(&Model2D{Model: "vortex", NX: 20, NY: 20}, nil)
	require.NoError(t, err)
	assert.Equal(t, 10., cfg.TFinal)
	assert.Equal(t, Euler2D.IVORTEX, m.(*Euler2D.Euler).Case)

	m, cfg, err = Build2D(&Model2D{Model: "burgers"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.TFinal)
	assert.Equal(t, "burgers 2D sine wave", m.Name())

	_, _, err = Build2D(&Model2D{Model: "nozzle"}, nil)
	assert.Error(t, err)
	_, _, err = Build2D(&Model2D{Model: "annulus"}, &InputParameters.InputParameters{
		BCs: map[string]map[string][]string{"q": {"lower": {"wall"}}}})
	assert.Error(t, err)
	_, _, err = Build2D(&Model2D{Model: "quadrants"}, &InputParameters.InputParameters{
		Grid: []InputParameters.DimensionSpec{{Lower: 0, Upper: 1, NumCells: 10}}})
	assert.Error(t, err)
}

func TestProcessInput(t *testing.T) {
	ip, err := processInput(&Model2D{})
	require.NoError(t, err)
	assert.Nil(t, ip)

	path := filepath.Join(t.TempDir(), "deck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleFile), 0o644))
	ip, err = processInput(&Model2D{ICFile: path})
	require.NoError(t, err)
	assert.Equal(t, "quadrants", ip.Model)
	assert.Len(t, ip.Grid, 2)

	require.NoError(t, os.WriteFile(path, []byte("Grid: {"), 0o644))
	_, err = processInput(&Model2D{ICFile: path})
	assert.Error(t, err)
}

func TestBuild1D(t *testing.T) {
	m, cfg, err := Build1D(&Model1D{Model: "advect", Init: "sine", N: 50, Order: 2,
		Limiter: "mc", Velocity: 1, NumOutput: 2})
	require.NoError(t, err)
	assert.Equal(t, 1., cfg.TFinal)
	var out bytes.Buffer
	status, err := RunModel(context.Background(), m, cfg, RunOptions{Out: &out, PrintSteps: 5})
	require.NoError(t, err)
	assert.True(t, status.Success)
	assert.Contains(t, out.String(), "advection 1D")

	_, cfg, err = Build1D(&Model1D{Model: "sod", N: 20, Order: 1, Limiter: "none"})
	require.NoError(t, err)
	assert.Equal(t, 0.2, cfg.TFinal)

	m, _, err = Build1D(&Model1D{Model: "densitywave", N: 20, Order: 1, Limiter: "none",
		Fields: []string{"u", "pressure"}})
	require.NoError(t, err)
	wave := m.(*Euler1D.Euler)
	require.NoError(t, wave.Initialize(wave.Sol.State))
	assert.Contains(t, m.Report(wave.Sol), "XVelocity min/max =  1.00000/ 1.00000")
	_, _, err = Build1D(&Model1D{Model: "advect", Init: "sine", N: 10, Order: 2, Limiter: "minmod",
		Fields: []string{"mach"}})
	assert.Error(t, err)
	_, _, err = Build2D(&Model2D{Model: "vortex", NX: 10, NY: 10, Fields: []string{"vorticity"}}, nil)
	assert.Error(t, err)

	_, _, err = Build1D(&Model1D{Model: "maxwell", Limiter: "minmod"})
	assert.Error(t, err)
	_, _, err = Build1D(&Model1D{Model: "sod", Limiter: "koren"})
	assert.Error(t, err)
	_, _, err = Build1D(&Model1D{Model: "advect", Init: "square", N: 10, Order: 2, Limiter: "minmod"})
	assert.Error(t, err)
}

func TestProgress(t *testing.T) {
	var (
		out bytes.Buffer
		p   = &progress{out: &out, every: 2}
	)
	p.ObserveStep(controller.StepInfo{Step: 0, Frame: 1, T: 0, Dt: 0.1, CFL: 1.2})
	p.ObserveStep(controller.StepInfo{Step: 0, Frame: 1, T: 0, Dt: 0.05, CFL: 0.6, Accepted: true})
	p.ObserveStep(controller.StepInfo{Step: 1, Frame: 1, T: 0.05, Dt: 0.05, CFL: 0.6, Accepted: true})
	p.ObserveStep(controller.StepInfo{Step: 2, Frame: 1, T: 0.1, Dt: 0.05, CFL: 0.6, Accepted: true})
	assert.Equal(t, 3, p.lines)
	assert.Contains(t, out.String(), "rejected")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte("Step")))
}

func TestStartProfile(t *testing.T) {
	prof, err := startProfile("", "")
	require.NoError(t, err)
	assert.Nil(t, prof)
	_, err = startProfile("block", "")
	assert.Error(t, err)
}
