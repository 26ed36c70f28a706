/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"

	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/frames"
	"github.com/notargets/gofv/metrics"
	"github.com/notargets/gofv/model_problems"
)

// RunOptions carries the settings shared by every model run.
type RunOptions struct {
	Title       string
	OutDir      string
	WriteAux    bool
	MetricsAddr string
	Profile     string
	// PrintSteps prints every n-th accepted step, 0 for frames only
	PrintSteps int
	Out        io.Writer
}

func runOptionsFromViper(title string) RunOptions {
	return RunOptions{
		Title:       title,
		OutDir:      viper.GetString("outdir"),
		MetricsAddr: viper.GetString("metricsAddr"),
		Profile:     viper.GetString("profile"),
		Out:         os.Stdout,
	}
}

// RunModel drives a model to completion, writing frames, metrics and a
// progress table as configured, and prints the model's report at the end.
func RunModel(ctx context.Context, m model_problems.Model, cfg controller.Config, opts RunOptions) (status *controller.Status, err error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	var prof interface{ Stop() }
	if prof, err = startProfile(opts.Profile, opts.OutDir); err != nil {
		return
	}
	if prof != nil {
		defer prof.Stop()
	}

	ctl := m.Controller(cfg)
	ctl.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)
	ctl.Observers = append(ctl.Observers, rec, &progress{out: opts.Out, every: opts.PrintSteps})
	ctl.Writers = append(ctl.Writers, rec)
	if opts.OutDir != "" {
		w := frames.NewWriter(opts.OutDir, opts.Title, opts.WriteAux)
		ctl.Writers = append(ctl.Writers, w)
		fmt.Fprintf(opts.Out, "Writing frames to %s, run %s\n", opts.OutDir, w.RunID())
	}
	if opts.MetricsAddr != "" {
		defer serveMetrics(opts.MetricsAddr, reg)()
	}

	fmt.Fprintf(opts.Out, "Solving %s\n", m.Name())
	start := time.Now()
	status, err = ctl.Run(ctx)
	elapsed := time.Since(start)
	if status != nil {
		fmt.Fprintf(opts.Out, "\n%d steps, %d rejected, %d frames, t = %8.5f in %v\n",
			status.Steps, status.Rejected, status.Frames, status.T, elapsed)
	}
	if err != nil {
		return
	}
	fmt.Fprintln(opts.Out, m.Report(ctl.Solution))
	return
}

func serveMetrics(addr string, reg *prometheus.Registry) (stop func()) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server", "addr", addr, "error", err)
		}
	}()
	return func() { _ = srv.Close() }
}

// progress prints a table of accepted steps and every rejection.
type progress struct {
	out   io.Writer
	every int
	lines int
	frame int
}

func (p *progress) ObserveStep(info controller.StepInfo) {
	var (
		newFrame = info.Frame != p.frame
		show     = !info.Accepted || newFrame || (p.every > 0 && info.Step%p.every == 0)
	)
	p.frame = info.Frame
	if !show {
		return
	}
	if p.lines%40 == 0 {
		fmt.Fprintf(p.out, "\n%8s %6s %14s %14s %10s\n", "Step", "Frame", "Time", "dt", "CFL")
	}
	p.lines++
	var note string
	if !info.Accepted {
		note = " rejected"
	}
	fmt.Fprintf(p.out, "%8d %6d %14.6e %14.6e %10.5f%s\n", info.Step, info.Frame, info.T, info.Dt, info.CFL, note)
}
