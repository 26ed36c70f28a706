// Package controller drives the time loop: it initializes the solution,
// advances it with a Stepper, retries rejected steps with a smaller time step
// and hands the solution to frame writers at the output times.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/solver"
	"github.com/notargets/gofv/state"
)

type OutStyle int

const (
	// OutEqual writes NumOutput frames equally spaced in [T0, TFinal]
	OutEqual OutStyle = 1
	// OutTimes writes a frame at each of OutTimes
	OutTimes OutStyle = 2
	// OutSteps writes a frame every StepsPerOutput steps, NumOutput times
	OutSteps OutStyle = 3
)

type Config struct {
	T0             float64
	TFinal         float64
	NumOutput      int
	OutStyle       OutStyle
	OutTimes       []float64
	StepsPerOutput int
	// MaxSteps bounds the steps taken between two frames
	MaxSteps int
	// MaxRetries bounds consecutive rejections of one step
	MaxRetries       int
	AuxTimeDependent bool
}

func DefaultConfig() Config {
	return Config{
		TFinal:     1,
		NumOutput:  10,
		OutStyle:   OutEqual,
		MaxSteps:   10000,
		MaxRetries: 50,
	}
}

func (c Config) Validate() error {
	switch c.OutStyle {
	case OutEqual:
		if c.NumOutput < 1 {
			return fmt.Errorf("controller: NumOutput %d must be at least 1", c.NumOutput)
		}
		if !(c.TFinal > c.T0) {
			return fmt.Errorf("controller: TFinal %g must exceed T0 %g", c.TFinal, c.T0)
		}
	case OutTimes:
		if len(c.OutTimes) == 0 {
			return errors.New("controller: OutTimes is empty")
		}
		for i, t := range c.OutTimes {
			if !(t > c.T0) || (i > 0 && !(t > c.OutTimes[i-1])) {
				return fmt.Errorf("controller: OutTimes must increase from T0 %g, got %v", c.T0, c.OutTimes)
			}
		}
	case OutSteps:
		if c.NumOutput < 1 || c.StepsPerOutput < 1 {
			return fmt.Errorf("controller: NumOutput %d and StepsPerOutput %d must be at least 1",
				c.NumOutput, c.StepsPerOutput)
		}
	default:
		return fmt.Errorf("controller: unknown output style %d", c.OutStyle)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("controller: MaxSteps %d must be at least 1", c.MaxSteps)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("controller: MaxRetries %d is negative", c.MaxRetries)
	}
	return nil
}

// OutputTimes lists the frame times after the initial frame. Nil for OutSteps.
func (c Config) OutputTimes() (times []float64) {
	switch c.OutStyle {
	case OutEqual:
		times = make([]float64, c.NumOutput)
		for k := range times {
			times[k] = c.T0 + (c.TFinal-c.T0)*float64(k+1)/float64(c.NumOutput)
		}
		times[c.NumOutput-1] = c.TFinal
	case OutTimes:
		times = append([]float64(nil), c.OutTimes...)
		sort.Float64s(times)
	}
	return
}

// Stepper advances a State by one time step.
type Stepper interface {
	Step(st *state.State, t, dt float64) (solver.Result, error)
	Config() solver.Config
}

// FrameWriter persists the solution at an output time.
type FrameWriter interface {
	WriteFrame(frame int, sol *state.Solution) error
}

type FrameWriterFunc func(frame int, sol *state.Solution) error

func (f FrameWriterFunc) WriteFrame(frame int, sol *state.Solution) error { return f(frame, sol) }

// StepInfo describes one attempted step.
type StepInfo struct {
	Step     int
	Frame    int
	T, Dt    float64
	CFL      float64
	Accepted bool
}

// StepObserver is notified after every attempted step.
type StepObserver interface {
	ObserveStep(info StepInfo)
}

type StepObserverFunc func(info StepInfo)

func (f StepObserverFunc) ObserveStep(info StepInfo) { f(info) }

// Status is the terminal result of Run.
type Status struct {
	Success  bool
	Frames   int
	Steps    int
	Rejected int
	T, Dt    float64
	Err      error
}

type Controller struct {
	Solution    *state.Solution
	Solver      Stepper
	Config      Config
	Initializer state.Initializer
	AuxSetter   state.AuxSetter
	Writers     []FrameWriter
	Observers   []StepObserver
	Logger      *slog.Logger
	// KeepCopy retains a snapshot of every frame in Frames
	KeepCopy bool
	Frames   []*state.Solution
}

func New(sol *state.Solution, s Stepper, cfg Config) *Controller {
	return &Controller{
		Solution: sol,
		Solver:   s,
		Config:   cfg,
		Logger:   slog.Default(),
	}
}

// Run executes the whole simulation. Cancellation of ctx is honored between
// steps. On failure the returned error is a *RunError, also stored in the
// Status.
func (c *Controller) Run(ctx context.Context) (status *Status, err error) {
	status = &Status{}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	fail := func(kind Kind, step int, t, dt float64, cause error) (*Status, error) {
		re := &RunError{Kind: kind, Step: step, T: t, Dt: dt, Err: cause}
		status.Err = re
		status.T, status.Dt = t, dt
		c.Logger.Error("run failed", "kind", kind.String(), "step", step, "t", t, "dt", dt, "err", cause)
		return status, re
	}
	if err = c.Config.Validate(); err != nil {
		return fail(KindConfiguration, 0, c.Config.T0, 0, err)
	}
	if c.Solution == nil || c.Solution.State == nil || c.Solver == nil {
		return fail(KindConfiguration, 0, c.Config.T0, 0, errors.New("controller: solution and solver are required"))
	}
	var (
		st   = c.Solution.State
		scfg = c.Solver.Config()
		dt   = scfg.DtInitial
	)
	c.Solution.T = c.Config.T0
	if c.AuxSetter != nil {
		if err = c.AuxSetter.SetAux(st, c.Config.T0); err != nil {
			return fail(KindConfiguration, 0, c.Config.T0, dt, fmt.Errorf("aux setup: %w", err))
		}
	}
	if c.Initializer != nil {
		if err = c.Initializer.Initialize(st); err != nil {
			return fail(KindConfiguration, 0, c.Config.T0, dt, fmt.Errorf("initial condition: %w", err))
		}
	}
	if err = st.Validate(); err != nil {
		return fail(KindConfiguration, 0, c.Config.T0, dt, err)
	}
	if err = c.writeFrame(0); err != nil {
		return fail(KindPersistence, 0, c.Config.T0, dt, err)
	}
	status.Frames = 1

	r := &runner{c: c, status: status, scfg: scfg, dt: dt}
	if c.Config.OutStyle == OutSteps {
		for frame := 1; frame <= c.Config.NumOutput; frame++ {
			if re := r.advance(ctx, frame, math.Inf(1), c.Config.StepsPerOutput); re != nil {
				return fail(re.Kind, re.Step, re.T, re.Dt, re.Err)
			}
			if err = c.writeFrame(frame); err != nil {
				return fail(KindPersistence, status.Steps, c.Solution.T, r.dt, err)
			}
			status.Frames++
		}
	} else {
		for k, tout := range c.Config.OutputTimes() {
			if re := r.advance(ctx, k+1, tout, 0); re != nil {
				return fail(re.Kind, re.Step, re.T, re.Dt, re.Err)
			}
			if err = c.writeFrame(k + 1); err != nil {
				return fail(KindPersistence, status.Steps, c.Solution.T, r.dt, err)
			}
			status.Frames++
		}
	}
	status.Success = true
	status.T, status.Dt = c.Solution.T, r.dt
	c.Logger.Info("run complete", "frames", status.Frames, "steps", status.Steps,
		"rejected", status.Rejected, "t", status.T)
	return
}

func (c *Controller) writeFrame(frame int) error {
	for _, w := range c.Writers {
		if err := w.WriteFrame(frame, c.Solution); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	if c.KeepCopy {
		c.Frames = append(c.Frames, c.Solution.Copy())
	}
	c.Logger.Info("frame written", "frame", frame, "t", c.Solution.T)
	return nil
}

type runner struct {
	c      *Controller
	status *Status
	scfg   solver.Config
	dt     float64
}

// advance steps until the solution reaches tout, or for nsteps accepted
// steps when nsteps > 0.
func (r *runner) advance(ctx context.Context, frame int, tout float64, nsteps int) *RunError {
	var (
		c       = r.c
		sol     = c.Solution
		st      = sol.State
		tol     = 1.e-12 * math.Max(1, math.Abs(tout))
		taken   int
		retries int
	)
	if math.IsInf(tout, 1) {
		tol = 0
	}
	for {
		if nsteps > 0 && taken >= nsteps {
			return nil
		}
		if nsteps == 0 && sol.T >= tout-tol {
			sol.T = tout
			return nil
		}
		if err := ctx.Err(); err != nil {
			return &RunError{Kind: KindCanceled, Step: r.status.Steps, T: sol.T, Dt: r.dt, Err: err}
		}
		if taken >= c.Config.MaxSteps {
			return &RunError{Kind: KindStepLimit, Step: r.status.Steps, T: sol.T, Dt: r.dt,
				Err: fmt.Errorf("%w: %d steps before frame %d", ErrStepLimit, taken, frame)}
		}
		var (
			dtStep  = r.dt
			clipped bool
		)
		if sol.T+dtStep >= tout-tol {
			dtStep, clipped = tout-sol.T, true
		}
		if c.Config.AuxTimeDependent && c.AuxSetter != nil {
			if err := c.AuxSetter.SetAux(st, sol.T); err != nil {
				return &RunError{Kind: KindConfiguration, Step: r.status.Steps, T: sol.T, Dt: dtStep, Err: err}
			}
		}
		res, err := c.Solver.Step(st, sol.T, dtStep)
		if err != nil {
			return &RunError{Kind: classify(err), Step: r.status.Steps, T: sol.T, Dt: dtStep, Err: err}
		}
		for _, o := range c.Observers {
			o.ObserveStep(StepInfo{Step: r.status.Steps, Frame: frame, T: sol.T, Dt: dtStep,
				CFL: res.CFL, Accepted: res.Accepted})
		}
		if !res.Accepted {
			r.status.Rejected++
			c.Logger.Warn("step rejected", "step", r.status.Steps, "t", sol.T, "dt", dtStep, "cfl", res.CFL)
			if !r.scfg.DtVariable {
				return &RunError{Kind: KindInstability, Step: r.status.Steps, T: sol.T, Dt: dtStep,
					Err: fmt.Errorf("%w: cfl %g > %g", ErrFixedDtRejected, res.CFL, r.scfg.CFLMax)}
			}
			retries++
			if retries > c.Config.MaxRetries {
				return &RunError{Kind: KindInstability, Step: r.status.Steps, T: sol.T, Dt: dtStep,
					Err: fmt.Errorf("%w: %d rejections, cfl %g", ErrRetryLimit, retries, res.CFL)}
			}
			if res.NextDt < r.scfg.DtMin {
				return &RunError{Kind: KindInstability, Step: r.status.Steps, T: sol.T, Dt: res.NextDt,
					Err: fmt.Errorf("%w: %g < %g, cfl %g", ErrDtFloor, res.NextDt, r.scfg.DtMin, res.CFL)}
			}
			r.dt = res.NextDt
			continue
		}
		retries = 0
		if clipped {
			sol.T = tout
		} else {
			sol.T += dtStep
		}
		taken++
		r.status.Steps++
		r.status.T = sol.T
		c.Logger.Debug("step", "step", r.status.Steps, "t", sol.T, "dt", dtStep, "cfl", res.CFL)
		switch {
		case !r.scfg.DtVariable:
		case clipped:
			// a clipped step says nothing against the unclipped dt
			r.dt = math.Max(r.dt, res.NextDt)
		default:
			r.dt = res.NextDt
		}
		r.status.Dt = r.dt
	}
}

func classify(err error) Kind {
	var (
		ue  *solver.UnphysicalError
		sce *solver.ConfigError
		bce *bc.ConfigError
	)
	switch {
	case errors.As(err, &ue):
		return KindUnphysical
	case errors.As(err, &sce), errors.As(err, &bce), errors.Is(err, state.ErrShape):
		return KindConfiguration
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	}
	return KindConfiguration
}
