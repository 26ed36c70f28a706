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
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/model_problems"
	"github.com/notargets/gofv/model_problems/Advection1D"
	"github.com/notargets/gofv/model_problems/Euler1D"
	"github.com/notargets/gofv/solver"
)

// OneDCmd represents the 1D command
var OneDCmd = &cobra.Command{
	Use:   "1D",
	Short: "One Dimensional Model Problem Solutions",
	Long: `
Executes the finite volume solver for a variety of one dimensional model problems,

gofv 1D --model advect --init sine -n 200
gofv 1D --model sod --order 1`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		m1d := &Model1D{}
		m1d.Model, _ = cmd.Flags().GetString("model")
		m1d.Init, _ = cmd.Flags().GetString("init")
		m1d.N, _ = cmd.Flags().GetInt("n")
		m1d.Order, _ = cmd.Flags().GetInt("order")
		m1d.Limiter, _ = cmd.Flags().GetString("limiter")
		m1d.Velocity, _ = cmd.Flags().GetFloat64("velocity")
		m1d.FinalTime, _ = cmd.Flags().GetFloat64("finalTime")
		m1d.NumOutput, _ = cmd.Flags().GetInt("numOutput")
		m1d.PrintSteps, _ = cmd.Flags().GetInt("printSteps")
		m1d.Fields, _ = cmd.Flags().GetStringSlice("fields")
		m1d.Workers = viper.GetInt("workers")
		var (
			m   model_problems.Model
			cfg controller.Config
		)
		if m, cfg, err = Build1D(m1d); err != nil {
			return
		}
		opts := runOptionsFromViper(m.Name())
		opts.PrintSteps = m1d.PrintSteps
		_, err = RunModel(cmd.Context(), m, cfg, opts)
		return
	},
}

func init() {
	rootCmd.AddCommand(OneDCmd)
	OneDCmd.Flags().StringP("model", "m", "sod", "model to run: advect, sod or densitywave")
	OneDCmd.Flags().String("init", "pulse", "initial condition for advect: pulse or sine")
	OneDCmd.Flags().IntP("n", "n", 200, "Number of cells in model")
	OneDCmd.Flags().Int("order", 2, "1 for Godunov, 2 for limited second order corrections")
	OneDCmd.Flags().String("limiter", "minmod", "wave limiter: none, minmod, superbee, vanleer or mc")
	OneDCmd.Flags().Float64("velocity", 1, "advection velocity")
	OneDCmd.Flags().Float64("finalTime", 0, "FinalTime - the target end time for the sim, 0 for the model default")
	OneDCmd.Flags().Int("numOutput", 10, "number of equally spaced output frames")
	OneDCmd.Flags().Int("printSteps", 0, "print every n-th step, 0 prints the first step of each frame")
	OneDCmd.Flags().StringSlice("fields", nil, "derived fields to summarize for the Euler models, e.g. mach,entropy")
}

type Model1D struct {
	Model, Init string
	N           int // Number of cells
	Order       int
	Limiter     string
	Velocity    float64
	FinalTime   float64
	NumOutput   int
	PrintSteps  int
	Workers     int
	Fields      []string
}

// fieldReporter is a model that can summarize derived flow fields.
type fieldReporter interface {
	SetReportFields(labels []string) error
}

func applyFields(m model_problems.Model, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	fr, ok := m.(fieldReporter)
	if !ok {
		return fmt.Errorf("%s has no derived fields to report", m.Name())
	}
	return fr.SetReportFields(fields)
}

var def_FinalTime1D = map[string]float64{
	"advect":      1,
	"sod":         0.2,
	"densitywave": 1,
}

// Build1D constructs the named one dimensional model and its run
// configuration.
func Build1D(m1d *Model1D) (m model_problems.Model, cfg controller.Config, err error) {
	model := strings.ToLower(m1d.Model)
	ft, ok := def_FinalTime1D[model]
	if !ok {
		err = fmt.Errorf("unknown 1D model %q, must be advect, sod or densitywave", m1d.Model)
		return
	}
	scfg := solver.DefaultConfig()
	scfg.Order, scfg.Workers = m1d.Order, m1d.Workers
	if scfg.Limiter, err = solver.ParseLimiter(m1d.Limiter); err != nil {
		return
	}
	cfg = controller.DefaultConfig()
	cfg.TFinal = ft
	if m1d.FinalTime > 0 {
		cfg.TFinal = m1d.FinalTime
	}
	if m1d.NumOutput > 0 {
		cfg.NumOutput = m1d.NumOutput
	}
	switch model {
	case "advect":
		var it Advection1D.InitType
		if it, err = Advection1D.NewInitType(m1d.Init); err != nil {
			return
		}
		m, err = Advection1D.NewAdvection(m1d.Velocity, m1d.N, it, scfg)
	case "densitywave":
		m, err = Euler1D.NewEuler(m1d.N, Euler1D.DENSITY_WAVE, scfg)
	default:
		m, err = Euler1D.NewEuler(m1d.N, Euler1D.SOD_TUBE, scfg)
	}
	if err != nil {
		return
	}
	err = applyFields(m, m1d.Fields)
	return
}
