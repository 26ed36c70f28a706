package solver

import (
	"fmt"
	"math"
	"strings"
)

// Limiter selects the wave limiter applied to second order corrections
type Limiter uint8

const (
	// LimiterNone leaves the waves unlimited (Lax-Wendroff)
	LimiterNone Limiter = iota
	Minmod
	Superbee
	VanLeer
	MC
)

var (
	LimiterNames = map[string]Limiter{
		"none":     LimiterNone,
		"minmod":   Minmod,
		"superbee": Superbee,
		"vanleer":  VanLeer,
		"van_leer": VanLeer,
		"mc":       MC,
	}
	LimiterPrintNames = []string{"None", "Minmod", "Superbee", "Van Leer", "MC"}
)

func (l Limiter) String() string {
	if int(l) >= len(LimiterPrintNames) {
		return "Unknown"
	}
	return LimiterPrintNames[l]
}

func ParseLimiter(label string) (l Limiter, err error) {
	var ok bool
	if l, ok = LimiterNames[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unable to use limiter named %s", label)
	}
	return
}

// Phi evaluates the limiter function at the upwind ratio r.
func (l Limiter) Phi(r float64) float64 {
	switch l {
	case Minmod:
		return math.Max(0, math.Min(1, r))
	case Superbee:
		return math.Max(0, math.Max(math.Min(1, 2*r), math.Min(2, r)))
	case VanLeer:
		return (r + math.Abs(r)) / (1 + math.Abs(r))
	case MC:
		return math.Max(0, math.Min((1+r)/2, math.Min(2, 2*r)))
	default:
		return 1
	}
}

// limitWaves scales each wave at interfaces lo..hi by the limiter evaluated
// at the ratio of its projection onto the upwind neighbor wave. All ratios are
// taken from the unlimited waves. Waves are stored per interface p as
// mwaves*meqn values, wave-major.
func (l Limiter) limitWaves(lo, hi, meqn, mwaves int, waves, speeds, phi []float64) {
	if l == LimiterNone {
		return
	}
	var (
		stride = meqn * mwaves
	)
	dot := func(p1, p2, w int) (d float64) {
		a, b := waves[p1*stride+w*meqn:], waves[p2*stride+w*meqn:]
		for m := 0; m < meqn; m++ {
			d += a[m] * b[m]
		}
		return
	}
	for p := lo; p <= hi; p++ {
		for w := 0; w < mwaves; w++ {
			k := (p-lo)*mwaves + w
			norm2 := dot(p, p, w)
			if norm2 == 0 {
				phi[k] = 1
				continue
			}
			var r float64
			if speeds[p*mwaves+w] > 0 {
				r = dot(p, p-1, w) / norm2
			} else {
				r = dot(p, p+1, w) / norm2
			}
			phi[k] = l.Phi(r)
		}
	}
	for p := lo; p <= hi; p++ {
		for w := 0; w < mwaves; w++ {
			wave := waves[p*stride+w*meqn : p*stride+(w+1)*meqn]
			f := phi[(p-lo)*mwaves+w]
			for m := range wave {
				wave[m] *= f
			}
		}
	}
}
