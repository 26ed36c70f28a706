// Package solver advances a State one time step with the wave propagation
// finite volume method: interface Riemann problems, limited second order
// corrections, transverse propagation and capacity-weighted updates, all
// under CFL control.
package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/riemann"
	"github.com/notargets/gofv/state"
	"github.com/notargets/gofv/utils"
)

// UnphysicalError is a fatal state violation detected during a step. Ghost
// is set when Cell lies in the boundary layer outside the interior.
type UnphysicalError struct {
	Cell  []int
	Ghost bool
	Field string
	Value float64
	Err   error
}

func (e *UnphysicalError) Error() string {
	where := "cell"
	if e.Ghost {
		where = "ghost cell"
	}
	return fmt.Sprintf("solver: unphysical %s = %g at %s %v", e.Field, e.Value, where, e.Cell)
}

func (e *UnphysicalError) Unwrap() error { return e.Err }

// Result reports the outcome of one Step.
type Result struct {
	CFL      float64
	Accepted bool
	NextDt   float64
}

type Solver struct {
	cfg    Config
	rs     riemann.Solver
	tr     riemann.Transverse
	valid  riemann.Validator
	bcs    *bc.Engine
	logger *slog.Logger

	// Work arrays, sized on the first step for a given shape
	ndim             int
	nx, ny           int
	mbc, mbcY        int
	nxg, nyg         int
	meqn, maux       int
	qbc, auxbc       *state.Field
	fm, fp, gm, gp   []float64
	tfLo, tfHi       []float64 // transverse increments of x edges, from y sweeps
	tgLo, tgHi       []float64 // transverse increments of y edges, from x sweeps
	pencils          []*pencil
	transverseActive bool
}

type Option func(s *Solver)

func WithLogger(l *slog.Logger) Option {
	return func(s *Solver) {
		s.logger = l
	}
}

func New(cfg Config, rs riemann.Solver, bcs *bc.Engine, opts ...Option) (s *Solver, err error) {
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	if rs == nil {
		return nil, configErr("Riemann", "solver is nil")
	}
	if bcs == nil {
		return nil, configErr("Boundary", "engine is nil")
	}
	if cfg.NumWaves == 0 {
		cfg.NumWaves = rs.NumWaves()
	} else if cfg.NumWaves != rs.NumWaves() {
		return nil, configErr("NumWaves", "%d, riemann solver produces %d", cfg.NumWaves, rs.NumWaves())
	}
	s = &Solver{
		cfg:    cfg,
		rs:     rs,
		bcs:    bcs,
		logger: slog.Default(),
	}
	s.tr, _ = rs.(riemann.Transverse)
	s.valid, _ = rs.(riemann.Validator)
	for _, opt := range opts {
		opt(s)
	}
	return
}

func (s *Solver) Config() Config { return s.cfg }

func (s *Solver) prepare(st *state.State) (err error) {
	if err = st.Validate(); err != nil {
		return &ConfigError{Field: "State", Err: err}
	}
	var (
		shape = st.Grid.Shape()
		ndim  = len(shape)
	)
	if ndim != 1 && ndim != 2 {
		return configErr("State", "rank %d grids are not supported", ndim)
	}
	if st.NumEqn != s.rs.NumEqn() {
		return configErr("State", "%d equations, riemann solver expects %d", st.NumEqn, s.rs.NumEqn())
	}
	if err = s.bcs.Check(ndim, st.NumAux); err != nil {
		return err
	}
	transverse := ndim == 2 && !s.cfg.DimSplit && s.cfg.OrderTrans > 0
	if transverse && s.tr == nil {
		return &ConfigError{Field: "OrderTrans", Err: ErrNoTransverse}
	}
	ny := 1
	if ndim == 2 {
		ny = shape[1]
	}
	if s.qbc != nil && s.ndim == ndim && s.nx == shape[0] && s.ny == ny &&
		s.meqn == st.NumEqn && s.maux == st.NumAux {
		return
	}
	s.ndim, s.nx, s.ny = ndim, shape[0], ny
	s.meqn, s.maux = st.NumEqn, st.NumAux
	s.transverseActive = transverse
	s.mbc = s.cfg.NumGhost
	s.mbcY = 0
	if ndim == 2 {
		s.mbcY = s.mbc
	}
	s.nxg, s.nyg = s.nx+2*s.mbc, s.ny+2*s.mbcY
	s.qbc = state.NewField(s.meqn, shape, s.mbc)
	s.auxbc = state.NewField(s.maux, shape, s.mbc)
	size := s.meqn * s.nxg * s.nyg
	alloc := func() []float64 { return make([]float64, size) }
	s.fm, s.fp = alloc(), alloc()
	if ndim == 2 {
		s.gm, s.gp = alloc(), alloc()
	}
	if transverse {
		s.tfLo, s.tfHi, s.tgLo, s.tgHi = alloc(), alloc(), alloc(), alloc()
	}
	var (
		length = s.nxg
		lines  = s.nyg
	)
	if s.nyg > length {
		length = s.nyg
	}
	if s.nxg > lines {
		lines = s.nxg
	}
	np := utils.ParallelDegree(s.cfg.Workers, lines)
	s.pencils = make([]*pencil, np)
	for b := range s.pencils {
		s.pencils[b] = newPencil(s.meqn, s.maux, s.cfg.NumWaves, length)
	}
	return
}

// Step advances st from t to t+dt. A step whose CFL number exceeds CFLMax is
// rejected: st is left untouched and NextDt is half of dt. An accepted step
// whose updated state fails the Riemann solver's Validate is an error and st
// is left untouched.
func (s *Solver) Step(st *state.State, t, dt float64) (res Result, err error) {
	if !(dt > 0) {
		return res, configErr("dt", "%g must be positive", dt)
	}
	if err = s.prepare(st); err != nil {
		return
	}
	if err = state.CopyInterior(s.qbc, st.Q); err != nil {
		return
	}
	if err = state.CopyInterior(s.auxbc, st.Aux); err != nil {
		return
	}
	if err = s.bcs.FillAux(st.Grid, t, s.auxbc); err != nil {
		return
	}
	if err = s.bcs.FillQ(st.Grid, t, s.qbc); err != nil {
		return
	}
	var (
		dx    = st.Grid.Delta()
		dtdx  = dt / dx[0]
		dtdy  float64
		capa  = st.Capa
		split = s.cfg.DimSplit || s.ndim == 1
	)
	if s.ndim == 2 {
		dtdy = dt / dx[1]
	}
	if split {
		res.CFL, err = s.splitStep(dtdx, dtdy, capa)
	} else {
		res.CFL, err = s.unsplitSweeps(dtdx, dtdy, capa)
	}
	if err != nil {
		return
	}
	if res.CFL > s.cfg.CFLMax {
		res.NextDt = 0.5 * dt
		s.logger.Debug("step rejected", "t", t, "dt", dt, "cfl", res.CFL)
		return
	}
	if !split {
		if _, err = s.parallel(0, s.ny-1, func(_ *pencil, j int) (float64, error) {
			return 0, s.updateRow(j, dtdx, dtdy, capa)
		}); err != nil {
			return
		}
	}
	if err = s.checkInterior(); err != nil {
		return
	}
	if err = state.CopyInterior(st.Q, s.qbc); err != nil {
		return
	}
	res.Accepted = true
	res.NextDt = dt
	if s.cfg.DtVariable && res.CFL < s.cfg.CFLDesired {
		res.NextDt = math.Min(dt*s.cfg.CFLDesired/res.CFL, s.cfg.DtMax)
	}
	return
}

// parallel runs fn over lines lo..hi, partitioned into contiguous blocks with
// one goroutine and one pencil per block. The CFL is the max over blocks and
// the reported error is the first one in line order.
func (s *Solver) parallel(lo, hi int, fn func(pc *pencil, line int) (float64, error)) (cfl float64, err error) {
	var (
		count = hi - lo + 1
		np    = len(s.pencils)
	)
	if count <= 0 {
		return
	}
	if np > count {
		np = count
	}
	var (
		pm   = utils.NewPartitionMap(np, count)
		cfls = make([]float64, np)
		errs = make([]error, np)
		g    errgroup.Group
	)
	for b := 0; b < np; b++ {
		b := b
		g.Go(func() error {
			kMin, kMax := pm.GetBucketRange(b)
			pc := s.pencils[b]
			for k := kMin; k < kMax; k++ {
				c, err := fn(pc, lo+k)
				if err != nil {
					errs[b] = err
					return err
				}
				cfls[b] = math.Max(cfls[b], c)
			}
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		for _, e := range errs {
			if e != nil {
				return 0, e
			}
		}
	}
	cfl = floats.Max(cfls)
	return
}

func (s *Solver) cellIndex(i, j int) int {
	return (i + s.mbc) + s.nxg*(j+s.mbcY)
}

func (s *Solver) params(dim int, dtd float64, capa, orderTrans int) sweepParams {
	n := s.nx
	mbc := s.mbc
	if dim == 1 {
		n, mbc = s.ny, s.mbcY
	}
	return sweepParams{
		dim:        dim,
		n:          n,
		mbc:        mbc,
		dtdx:       dtd,
		capa:       capa,
		order:      s.cfg.Order,
		limiter:    s.cfg.Limiter,
		orderTrans: orderTrans,
		rs:         s.rs,
		tr:         s.tr,
	}
}

func (s *Solver) gatherRow(pc *pencil, j int, withUp bool) {
	var (
		meqn, maux = s.meqn, s.maux
		base       = s.cellIndex(-s.mbc, j)
	)
	copy(pc.q[:meqn*s.nxg], s.qbc.Data[meqn*base:meqn*(base+s.nxg)])
	copy(pc.aux[:maux*s.nxg], s.auxbc.Data[maux*base:maux*(base+s.nxg)])
	if withUp {
		up := base + s.nxg
		copy(pc.auxUp[:maux*s.nxg], s.auxbc.Data[maux*up:maux*(up+s.nxg)])
	}
}

func (s *Solver) gatherColumn(pc *pencil, i int, withUp bool) {
	var (
		meqn, maux = s.meqn, s.maux
	)
	for p := 0; p < s.nyg; p++ {
		c := (i + s.mbc) + s.nxg*p
		copy(pc.q[p*meqn:(p+1)*meqn], s.qbc.Data[c*meqn:(c+1)*meqn])
		copy(pc.aux[p*maux:(p+1)*maux], s.auxbc.Data[c*maux:(c+1)*maux])
		if withUp {
			copy(pc.auxUp[p*maux:(p+1)*maux], s.auxbc.Data[(c+1)*maux:(c+2)*maux])
		}
	}
}

// unphysical locates a failure at interior coordinates cell, which may fall
// in the ghost layer during split sweeps.
func (s *Solver) unphysical(cell []int, field string, v float64, err error) *UnphysicalError {
	ue := &UnphysicalError{Cell: cell, Field: field, Value: v, Err: err}
	n := []int{s.nx, s.ny}
	for d, c := range cell {
		if c < 0 || c >= n[d] {
			ue.Ghost = true
		}
	}
	return ue
}

// checkInterior runs the Validator, when the Riemann solver has one, over
// the updated interior cells of qbc.
func (s *Solver) checkInterior() (err error) {
	if s.valid == nil {
		return
	}
	_, err = s.parallel(0, s.ny-1, func(_ *pencil, j int) (float64, error) {
		for i := 0; i < s.nx; i++ {
			c := s.cellIndex(i, j)
			verr := s.valid.Validate(s.qbc.Data[s.meqn*c : s.meqn*(c+1)])
			if verr == nil {
				continue
			}
			var pe *riemann.PhysicalError
			if errors.As(verr, &pe) {
				return 0, s.unphysical(s.cellCoords(i, j), pe.Field, pe.Value, pe)
			}
			return 0, fmt.Errorf("solver: invalid state at cell %v: %w", s.cellCoords(i, j), verr)
		}
		return 0, nil
	})
	return
}

// lineFailure converts a pencil error to one located at a grid cell.
func (s *Solver) lineFailure(err error, dim, line int) error {
	var le *lineError
	if !errors.As(err, &le) {
		return err
	}
	cell := []int{le.p - s.mbc, line}
	if dim == 1 {
		cell = []int{line, le.p - s.mbcY}
	}
	if s.ndim == 1 {
		cell = cell[:1]
	}
	var pe *riemann.PhysicalError
	if errors.As(le.err, &pe) {
		return s.unphysical(cell, pe.Field, pe.Value, pe)
	}
	return fmt.Errorf("solver: riemann solve at cell %v: %w", cell, le.err)
}

// unsplitSweeps solves every row and column from the same ghost-filled data.
// Rows and columns one cell outside the interior are swept when transverse
// increments are on, since they feed the edges bounding the interior.
func (s *Solver) unsplitSweeps(dtdx, dtdy float64, capa int) (cfl float64, err error) {
	var (
		meqn       = s.meqn
		orderTrans = 0
		ext        = 0
	)
	if s.transverseActive {
		orderTrans, ext = s.cfg.OrderTrans, 1
	}
	px := s.params(0, dtdx, capa, orderTrans)
	cflX, err := s.parallel(-ext, s.ny-1+ext, func(pc *pencil, j int) (c float64, err error) {
		s.gatherRow(pc, j, s.transverseActive)
		if c, err = pc.sweep(px); err != nil {
			return 0, s.lineFailure(err, 0, j)
		}
		base := s.cellIndex(-s.mbc, j)
		lo, hi := px.mbc, px.mbc+px.n
		copy(s.fm[meqn*(base+lo):meqn*(base+hi+1)], pc.fm[meqn*lo:meqn*(hi+1)])
		copy(s.fp[meqn*(base+lo):meqn*(base+hi+1)], pc.fp[meqn*lo:meqn*(hi+1)])
		if s.transverseActive {
			copy(s.tgLo[meqn*(base+lo-1):meqn*(base+hi+1)], pc.tLow[meqn*(lo-1):meqn*(hi+1)])
			copy(s.tgHi[meqn*(base+lo-1):meqn*(base+hi+1)], pc.tHigh[meqn*(lo-1):meqn*(hi+1)])
		}
		return
	})
	if err != nil {
		return
	}
	py := s.params(1, dtdy, capa, orderTrans)
	cflY, err := s.parallel(-ext, s.nx-1+ext, func(pc *pencil, i int) (c float64, err error) {
		s.gatherColumn(pc, i, s.transverseActive)
		if c, err = pc.sweep(py); err != nil {
			return 0, s.lineFailure(err, 1, i)
		}
		lo, hi := py.mbc, py.mbc+py.n
		for p := lo - 1; p <= hi; p++ {
			k := meqn * ((i + s.mbc) + s.nxg*p)
			if p >= lo {
				copy(s.gm[k:k+meqn], pc.fm[p*meqn:(p+1)*meqn])
				copy(s.gp[k:k+meqn], pc.fp[p*meqn:(p+1)*meqn])
			}
			if s.transverseActive {
				copy(s.tfLo[k:k+meqn], pc.tLow[p*meqn:(p+1)*meqn])
				copy(s.tfHi[k:k+meqn], pc.tHigh[p*meqn:(p+1)*meqn])
			}
		}
		return
	})
	if err != nil {
		return
	}
	cfl = math.Max(cflX, cflY)
	return
}

// updateRow applies the accumulated edge fluctuations to the interior cells
// of row j. Each cell reads only its own value and its edges.
func (s *Solver) updateRow(j int, dtdx, dtdy float64, capa int) error {
	var (
		meqn = s.meqn
		q    = s.qbc.Data
		nxg  = s.nxg
	)
	for i := 0; i < s.nx; i++ {
		var (
			c  = s.cellIndex(i, j)
			cR = c + 1
			cU = c + nxg
			kc = 1.
		)
		if capa >= 0 {
			kc = s.auxbc.Data[capa+s.maux*c]
		}
		for m := 0; m < meqn; m++ {
			dF := s.fm[meqn*cR+m] - s.fp[meqn*c+m]
			var dG float64
			if s.ndim == 2 {
				dG = s.gm[meqn*cU+m] - s.gp[meqn*c+m]
			}
			if s.transverseActive {
				dF += (s.tfLo[meqn*cR+m] + s.tfHi[meqn*c+m]) - (s.tfLo[meqn*c+m] + s.tfHi[meqn*(c-1)+m])
				dG += (s.tgLo[meqn*cU+m] + s.tgHi[meqn*c+m]) - (s.tgLo[meqn*c+m] + s.tgHi[meqn*(c-nxg)+m])
			}
			v := q[meqn*c+m] - (dtdx*dF+dtdy*dG)/kc
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return s.unphysical(s.cellCoords(i, j), fmt.Sprintf("q[%d]", m), v, nil)
			}
			q[meqn*c+m] = v
		}
	}
	return nil
}

func (s *Solver) cellCoords(i, j int) []int {
	if s.ndim == 1 {
		return []int{i}
	}
	return []int{i, j}
}

// splitStep is Godunov splitting: x sweeps over every row including ghost
// rows update qbc in place, then y sweeps over the interior columns.
func (s *Solver) splitStep(dtdx, dtdy float64, capa int) (cfl float64, err error) {
	var (
		meqn = s.meqn
	)
	px := s.params(0, dtdx, capa, 0)
	cflX, err := s.parallel(-s.mbcY, s.ny-1+s.mbcY, func(pc *pencil, j int) (c float64, err error) {
		s.gatherRow(pc, j, false)
		if c, err = pc.sweep(px); err != nil {
			return 0, s.lineFailure(err, 0, j)
		}
		var (
			base     = s.cellIndex(-s.mbc, j)
			q        = s.qbc.Data
			lo, hi   = px.mbc, px.mbc + px.n
			checkNaN = s.ndim == 1 || (j >= 0 && j < s.ny)
		)
		for p := lo; p < hi; p++ {
			for m := 0; m < meqn; m++ {
				v := pc.q[p*meqn+m] - pc.dtdx1d[p]*(pc.fm[(p+1)*meqn+m]-pc.fp[p*meqn+m])
				if checkNaN && (math.IsNaN(v) || math.IsInf(v, 0)) {
					return 0, s.unphysical(s.cellCoords(p-lo, j), fmt.Sprintf("q[%d]", m), v, nil)
				}
				q[meqn*(base+p)+m] = v
			}
		}
		return
	})
	// an overshooting x sweep leaves qbc unfit for the y sweep, the step is
	// rejected on cflX alone
	if err != nil || s.ndim == 1 || cflX > s.cfg.CFLMax {
		return cflX, err
	}
	py := s.params(1, dtdy, capa, 0)
	cflY, err := s.parallel(0, s.nx-1, func(pc *pencil, i int) (c float64, err error) {
		s.gatherColumn(pc, i, false)
		if c, err = pc.sweep(py); err != nil {
			return 0, s.lineFailure(err, 1, i)
		}
		var (
			q      = s.qbc.Data
			lo, hi = py.mbc, py.mbc + py.n
		)
		for p := lo; p < hi; p++ {
			k := meqn * ((i + s.mbc) + s.nxg*p)
			for m := 0; m < meqn; m++ {
				v := pc.q[p*meqn+m] - pc.dtdx1d[p]*(pc.fm[(p+1)*meqn+m]-pc.fp[p*meqn+m])
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return 0, s.unphysical([]int{i, p - lo}, fmt.Sprintf("q[%d]", m), v, nil)
				}
				q[k+m] = v
			}
		}
		return
	})
	if err != nil {
		return
	}
	cfl = math.Max(cflX, cflY)
	return
}
