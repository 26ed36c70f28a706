package solver

import (
	"math"

	"github.com/notargets/gofv/riemann"
)

// pencil is the per worker scratch for one grid line. Every array is indexed
// by padded position p along the line; interface p sits between cells p-1
// and p.
type pencil struct {
	meqn, maux, mwaves int
	q, aux, auxUp      []float64
	dtdx1d             []float64
	waves, speeds      []float64
	amdq, apdq, cqxx   []float64
	fm, fp             []float64
	tLow, tHigh        []float64
	phi                []float64
	bm, bp             []float64
	fl                 *riemann.Fluctuation
}

func newPencil(meqn, maux, mwaves, length int) (pc *pencil) {
	pc = &pencil{
		meqn:   meqn,
		maux:   maux,
		mwaves: mwaves,
		q:      make([]float64, meqn*length),
		aux:    make([]float64, maux*length),
		auxUp:  make([]float64, maux*length),
		dtdx1d: make([]float64, length),
		waves:  make([]float64, meqn*mwaves*length),
		speeds: make([]float64, mwaves*length),
		amdq:   make([]float64, meqn*length),
		apdq:   make([]float64, meqn*length),
		cqxx:   make([]float64, meqn*length),
		fm:     make([]float64, meqn*length),
		fp:     make([]float64, meqn*length),
		tLow:   make([]float64, meqn*length),
		tHigh:  make([]float64, meqn*length),
		phi:    make([]float64, mwaves*length),
		bm:     make([]float64, meqn),
		bp:     make([]float64, meqn),
		fl:     riemann.NewFluctuation(meqn, mwaves),
	}
	return
}

// lineError carries the padded line position of a failed interface solve.
type lineError struct {
	p   int
	err error
}

func (e *lineError) Error() string { return e.err.Error() }

type sweepParams struct {
	dim        int
	n, mbc     int // interior cells and ghost layers along the line
	dtdx       float64
	capa       int // aux index of the capacity, -1 for none
	order      int
	limiter    Limiter
	orderTrans int // 0 disables the transverse split
	rs         riemann.Solver
	tr         riemann.Transverse
}

func (pc *pencil) cell(buf []float64, nv, p int) []float64 {
	return buf[p*nv : (p+1)*nv]
}

// sweep solves every interface along the line and forms the edge
// fluctuations fm, fp for interfaces mbc..mbc+n, which bound the interior
// cells, plus the transverse increments tLow and tHigh per cell. It returns
// the line CFL number.
func (pc *pencil) sweep(sp sweepParams) (cfl float64, err error) {
	var (
		meqn, maux, mwaves = pc.meqn, pc.maux, pc.mwaves
		length             = sp.n + 2*sp.mbc
		lo, hi             = sp.mbc, sp.mbc + sp.n
		wstride            = meqn * mwaves
	)
	for p := 0; p < length; p++ {
		pc.dtdx1d[p] = sp.dtdx
		if sp.capa >= 0 {
			pc.dtdx1d[p] = sp.dtdx / pc.aux[sp.capa+maux*p]
		}
	}
	for p := 1; p < length; p++ {
		if err = sp.rs.Normal(sp.dim,
			pc.cell(pc.q, meqn, p-1), pc.cell(pc.q, meqn, p),
			pc.cell(pc.aux, maux, p-1), pc.cell(pc.aux, maux, p), pc.fl); err != nil {
			return 0, &lineError{p: p, err: err}
		}
		for w := 0; w < mwaves; w++ {
			s := pc.fl.Speeds[w]
			if math.IsNaN(s) {
				return 0, &lineError{p: p, err: &riemann.PhysicalError{Field: "wave speed", Value: s, Side: "interface"}}
			}
			pc.speeds[p*mwaves+w] = s
		}
		copy(pc.waves[p*wstride:(p+1)*wstride], pc.fl.Waves)
		copy(pc.amdq[p*meqn:(p+1)*meqn], pc.fl.Amdq)
		copy(pc.apdq[p*meqn:(p+1)*meqn], pc.fl.Apdq)
	}

	for p := lo; p <= hi; p++ {
		for m := 0; m < meqn; m++ {
			pc.fm[p*meqn+m] = pc.amdq[p*meqn+m]
			pc.fp[p*meqn+m] = -pc.apdq[p*meqn+m]
		}
		for w := 0; w < mwaves; w++ {
			s := pc.speeds[p*mwaves+w]
			cfl = math.Max(cfl, math.Max(pc.dtdx1d[p]*s, -pc.dtdx1d[p-1]*s))
		}
	}

	if sp.order == 2 {
		sp.limiter.limitWaves(lo, hi, meqn, mwaves, pc.waves, pc.speeds, pc.phi)
		for p := lo; p <= hi; p++ {
			var (
				dtdxave = 0.5 * (pc.dtdx1d[p-1] + pc.dtdx1d[p])
				cq      = pc.cqxx[p*meqn : (p+1)*meqn]
			)
			for m := range cq {
				cq[m] = 0
			}
			for w := 0; w < mwaves; w++ {
				var (
					s    = math.Abs(pc.speeds[p*mwaves+w])
					c    = s * (1 - s*dtdxave)
					wave = pc.waves[p*wstride+w*meqn:]
				)
				for m := 0; m < meqn; m++ {
					cq[m] += c * wave[m]
				}
			}
			for m := 0; m < meqn; m++ {
				pc.fm[p*meqn+m] += 0.5 * cq[m]
				pc.fp[p*meqn+m] += 0.5 * cq[m]
			}
		}
	}

	if sp.orderTrans == 0 || sp.tr == nil {
		return
	}
	for k := range pc.tLow[:length*meqn] {
		pc.tLow[k], pc.tHigh[k] = 0, 0
	}
	if sp.order == 2 && sp.orderTrans == 2 {
		for p := lo; p <= hi; p++ {
			for m := 0; m < meqn; m++ {
				pc.amdq[p*meqn+m] += pc.cqxx[p*meqn+m]
				pc.apdq[p*meqn+m] -= pc.cqxx[p*meqn+m]
			}
		}
	}
	split := func(p, c int, side riemann.Side, asdq []float64) error {
		if err := sp.tr.Transverse(sp.dim, side,
			pc.cell(pc.q, meqn, p-1), pc.cell(pc.q, meqn, p),
			pc.cell(pc.aux, maux, c), pc.cell(pc.auxUp, maux, c),
			asdq, pc.bm, pc.bp); err != nil {
			return &lineError{p: p, err: err}
		}
		g := 0.5 * pc.dtdx1d[c]
		for m := 0; m < meqn; m++ {
			pc.tLow[c*meqn+m] -= g * pc.bm[m]
			pc.tHigh[c*meqn+m] -= g * pc.bp[m]
		}
		return nil
	}
	for p := lo; p <= hi; p++ {
		if err = split(p, p-1, riemann.LeftGoing, pc.amdq[p*meqn:(p+1)*meqn]); err != nil {
			return
		}
		if err = split(p, p, riemann.RightGoing, pc.apdq[p*meqn:(p+1)*meqn]); err != nil {
			return
		}
	}
	return
}
