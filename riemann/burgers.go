package riemann

import "math"

// Burgers is the scalar inviscid Burgers equation q_t + sum_d (q^2/2)_{x_d} = 0,
// the same flux in every dimension.
type Burgers struct {
	// EntropyFix splits transonic rarefactions at the sonic point
	EntropyFix bool
}

func NewBurgers(entropyFix bool) *Burgers {
	return &Burgers{EntropyFix: entropyFix}
}

func (b *Burgers) NumEqn() int   { return 1 }
func (b *Burgers) NumWaves() int { return 1 }

// Normal uses the Rankine-Hugoniot speed (ql+qr)/2 of the single jump.
func (b *Burgers) Normal(dim int, ql, qr, auxl, auxr []float64, f *Fluctuation) error {
	if err := checkFinite(ql, "left"); err != nil {
		return err
	}
	if err := checkFinite(qr, "right"); err != nil {
		return err
	}
	var (
		l, r = ql[0], qr[0]
		s    = 0.5 * (l + r)
	)
	f.Waves[0] = r - l
	f.Speeds[0] = s
	if b.EntropyFix && l < 0 && r > 0 {
		f.Amdq[0] = -0.5 * l * l
		f.Apdq[0] = 0.5 * r * r
		return nil
	}
	f.Amdq[0] = math.Min(s, 0) * (r - l)
	f.Apdq[0] = math.Max(s, 0) * (r - l)
	return nil
}

// Transverse splits asdq with the state of the cell receiving it as the
// transverse speed.
func (b *Burgers) Transverse(dim int, side Side, ql, qr, auxCell, auxNext, asdq, bmasdq, bpasdq []float64) error {
	v := qr[0]
	if side == LeftGoing {
		v = ql[0]
	}
	bmasdq[0] = math.Min(v, 0) * asdq[0]
	bpasdq[0] = math.Max(v, 0) * asdq[0]
	return nil
}
