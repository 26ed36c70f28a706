package solver

import (
	"errors"
	"fmt"
)

// Config is the immutable numerical setup of a Solver.
type Config struct {
	Order      int // 1 Godunov, 2 with limited corrections
	Limiter    Limiter
	DimSplit   bool // Godunov dimensional splitting instead of unsplit
	OrderTrans int  // 0 none, 1 first order, 2 with corrections (unsplit only)

	CFLDesired float64
	CFLMax     float64

	DtInitial  float64
	DtMax      float64
	DtMin      float64
	DtVariable bool

	NumWaves int // 0 takes the Riemann solver's count
	NumGhost int
	Workers  int // 0 is one per CPU
}

func DefaultConfig() Config {
	return Config{
		Order:      2,
		Limiter:    Minmod,
		DimSplit:   true,
		OrderTrans: 2,
		CFLDesired: 0.9,
		CFLMax:     1.0,
		DtInitial:  0.1,
		DtMax:      1.e99,
		DtMin:      1.e-12,
		DtVariable: true,
		NumGhost:   2,
	}
}

type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("solver: invalid %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(field, format string, args ...interface{}) error {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

func (c Config) Validate() error {
	switch {
	case c.Order != 1 && c.Order != 2:
		return configErr("Order", "%d not in {1,2}", c.Order)
	case c.OrderTrans < 0 || c.OrderTrans > 2:
		return configErr("OrderTrans", "%d not in {0,1,2}", c.OrderTrans)
	case int(c.Limiter) >= len(LimiterPrintNames):
		return configErr("Limiter", "unknown limiter %d", c.Limiter)
	case !(c.CFLMax > 0):
		return configErr("CFLMax", "%g must be positive", c.CFLMax)
	case !(c.CFLDesired > 0) || c.CFLDesired > c.CFLMax:
		return configErr("CFLDesired", "%g must be in (0, CFLMax=%g]", c.CFLDesired, c.CFLMax)
	case !(c.DtInitial > 0):
		return configErr("DtInitial", "%g must be positive", c.DtInitial)
	case !(c.DtMax > 0):
		return configErr("DtMax", "%g must be positive", c.DtMax)
	case c.DtMin < 0 || c.DtMin > c.DtInitial:
		return configErr("DtMin", "%g must be in [0, DtInitial=%g]", c.DtMin, c.DtInitial)
	case c.NumWaves < 0:
		return configErr("NumWaves", "%d is negative", c.NumWaves)
	case c.Workers < 0:
		return configErr("Workers", "%d is negative", c.Workers)
	case c.NumGhost < c.minGhost():
		return configErr("NumGhost", "%d ghost layers, need %d", c.NumGhost, c.minGhost())
	}
	return nil
}

// minGhost is the ghost width the stencil reaches: limiting looks one
// interface beyond the boundary and transverse sweeps run one line outside.
func (c Config) minGhost() int {
	if c.Order == 2 || (!c.DimSplit && c.OrderTrans > 0) {
		return 2
	}
	return 1
}

// String matches the input deck print style.
func (c Config) String() string {
	split := "unsplit"
	if c.DimSplit {
		split = "dimensionally split"
	}
	return fmt.Sprintf("order %d, limiter %s, %s, transverse order %d, CFL %g/%g, dt %g [%g, %g] variable=%v, ghosts %d",
		c.Order, c.Limiter, split, c.OrderTrans, c.CFLDesired, c.CFLMax, c.DtInitial, c.DtMin, c.DtMax,
		c.DtVariable, c.NumGhost)
}

var ErrNoTransverse = errors.New("riemann solver has no transverse split")
