// Package model_problems holds the interface shared by the runnable model
// problems in its sub packages.
package model_problems

import (
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/state"
)

type Model interface {
	Name() string
	// Controller wires the model's state, solver, initial condition and aux
	// setup into a controller for the given run configuration
	Controller(cfg controller.Config) *controller.Controller
	// Report summarizes a solution, usually with an error against a known answer
	Report(sol *state.Solution) string
}
