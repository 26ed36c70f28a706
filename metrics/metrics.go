// Package metrics exposes run progress as prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/state"
)

// Recorder observes steps and frames of a controller run.
type Recorder struct {
	Steps   *prometheus.CounterVec
	CFL     prometheus.Gauge
	Dt      prometheus.Gauge
	SimTime prometheus.Gauge
	Frames  prometheus.Counter
	CFLHist prometheus.Histogram
}

// NewRecorder registers the collectors with reg; nil uses the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		Steps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gofv_steps_total",
			Help: "Attempted time steps by result",
		}, []string{"result"}),
		CFL: f.NewGauge(prometheus.GaugeOpts{
			Name: "gofv_cfl",
			Help: "CFL number of the last attempted step",
		}),
		Dt: f.NewGauge(prometheus.GaugeOpts{
			Name: "gofv_dt",
			Help: "Time step of the last attempted step",
		}),
		SimTime: f.NewGauge(prometheus.GaugeOpts{
			Name: "gofv_sim_time",
			Help: "Simulation time of the last accepted step or frame",
		}),
		Frames: f.NewCounter(prometheus.CounterOpts{
			Name: "gofv_frames_total",
			Help: "Frames handed to writers",
		}),
		CFLHist: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gofv_cfl_distribution",
			Help:    "CFL numbers of attempted steps",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 12),
		}),
	}
}

func (r *Recorder) ObserveStep(info controller.StepInfo) {
	result := "accepted"
	if !info.Accepted {
		result = "rejected"
	}
	r.Steps.WithLabelValues(result).Inc()
	r.CFL.Set(info.CFL)
	r.CFLHist.Observe(info.CFL)
	r.Dt.Set(info.Dt)
	if info.Accepted {
		r.SimTime.Set(info.T + info.Dt)
	}
}

func (r *Recorder) WriteFrame(frame int, sol *state.Solution) error {
	r.Frames.Inc()
	r.SimTime.Set(sol.T)
	return nil
}
