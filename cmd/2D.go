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
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofv/InputParameters"
	"github.com/notargets/gofv/bc"
	"github.com/notargets/gofv/controller"
	"github.com/notargets/gofv/model_problems"
	"github.com/notargets/gofv/model_problems/Advection2D"
	"github.com/notargets/gofv/model_problems/Burgers2D"
	"github.com/notargets/gofv/model_problems/Euler2D"
	"github.com/notargets/gofv/solver"
)

type Model2D struct {
	Model      string
	ICFile     string
	NX, NY     int
	FinalTime  float64
	NumOutput  int
	PrintSteps int
	Workers    int
	Fields     []string
}

const exampleFile = `
########################################
Title: "Four quadrants"
Model: quadrants     # or vortex, burgers, annulus
Gamma: 1.4
EntropyFix: true
Grid:
  - {Name: x, Lower: 0, Upper: 1, NumCells: 100}
  - {Name: y, Lower: 0, Upper: 1, NumCells: 100}
Order: 2
Limiter: MC
DimSplit: false
FinalTime: 0.3
NumOutput: 3
BCs:
  q:
    lower: [extrap]
    upper: [extrap]
########################################
`

// TwoDCmd represents the 2D command
var TwoDCmd = &cobra.Command{
	Use:   "2D",
	Short: "Two dimensional solver for the model problems, optionally driven by a YAML input deck",
	Long: `Two dimensional solver for the model problems, optionally driven by a YAML input deck.
An input deck looks like:
` + exampleFile,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		m2d := &Model2D{}
		m2d.Model, _ = cmd.Flags().GetString("model")
		m2d.ICFile, _ = cmd.Flags().GetString("inputConditionsFile")
		m2d.NX, _ = cmd.Flags().GetInt("nx")
		m2d.NY, _ = cmd.Flags().GetInt("ny")
		m2d.FinalTime, _ = cmd.Flags().GetFloat64("finalTime")
		m2d.NumOutput, _ = cmd.Flags().GetInt("numOutput")
		m2d.PrintSteps, _ = cmd.Flags().GetInt("printSteps")
		m2d.Fields, _ = cmd.Flags().GetStringSlice("fields")
		m2d.Workers = viper.GetInt("workers")
		var ip *InputParameters.InputParameters
		if ip, err = processInput(m2d); err != nil {
			return
		}
		var (
			m   model_problems.Model
			cfg controller.Config
		)
		if m, cfg, err = Build2D(m2d, ip); err != nil {
			return
		}
		title := m.Name()
		if ip != nil && ip.Title != "" {
			title = ip.Title
		}
		opts := runOptionsFromViper(title)
		opts.PrintSteps = m2d.PrintSteps
		_, opts.WriteAux = m.(*Advection2D.Annulus)
		_, err = RunModel(cmd.Context(), m, cfg, opts)
		return
	},
}

func init() {
	rootCmd.AddCommand(TwoDCmd)
	TwoDCmd.Flags().StringP("model", "m", "quadrants", "model to run: annulus, burgers, quadrants or vortex")
	TwoDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Grid\n\t- Limiter\n\t- BCs")
	TwoDCmd.Flags().Int("nx", 0, "cells in the first dimension (radial for the annulus), 0 for the model default")
	TwoDCmd.Flags().Int("ny", 0, "cells in the second dimension (angular for the annulus), 0 for the model default")
	TwoDCmd.Flags().Float64("finalTime", 0, "FinalTime - the target end time for the sim, 0 for the model default")
	TwoDCmd.Flags().Int("numOutput", 0, "number of equally spaced output frames, 0 for the default")
	TwoDCmd.Flags().Int("printSteps", 0, "print every n-th step, 0 prints the first step of each frame")
	TwoDCmd.Flags().StringSlice("fields", nil, "derived fields to summarize for the Euler models, e.g. mach,entropy")
}

func processInput(m2d *Model2D) (ip *InputParameters.InputParameters, err error) {
	if len(m2d.ICFile) == 0 {
		return
	}
	var data []byte
	if data, err = os.ReadFile(m2d.ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w\nExample File:%s", m2d.ICFile, err, exampleFile)
	}
	ip.Print()
	return
}

type defaults2D struct {
	nx, ny    int
	finalTime float64
}

var def_2D = map[string]defaults2D{
	"annulus":   {40, 120, 1},
	"burgers":   {64, 64, 0.3},
	"quadrants": {100, 100, 0.3},
	"vortex":    {100, 100, 10},
}

// Build2D constructs the named two dimensional model. Deck values override
// the model defaults, command line values override the deck.
func Build2D(m2d *Model2D, ip *InputParameters.InputParameters) (m model_problems.Model, cfg controller.Config, err error) {
	name := m2d.Model
	if ip != nil && ip.Model != "" {
		name = ip.Model
	}
	name = strings.ToLower(name)
	def, ok := def_2D[name]
	if !ok {
		err = fmt.Errorf("unknown 2D model %q, must be annulus, burgers, quadrants or vortex", name)
		return
	}
	var (
		nx, ny = def.nx, def.ny
		scfg   = solver.DefaultConfig()
	)
	if name == "annulus" {
		scfg = Advection2D.DefaultSolverConfig()
	}
	cfg = controller.DefaultConfig()
	cfg.TFinal = def.finalTime
	if ip != nil {
		if scfg, err = ip.SolverConfig(); err != nil {
			return
		}
		var c controller.Config
		if c, err = ip.ControllerConfig(); err != nil {
			return
		}
		if ip.FinalTime == 0 {
			c.TFinal = def.finalTime
		}
		cfg = c
		// the models fix their domains, a deck grid only sets the cell counts
		if len(ip.Grid) > 0 {
			dims, derr := ip.Dimensions()
			if derr != nil {
				err = derr
				return
			}
			if len(dims) != 2 {
				err = fmt.Errorf("2D model %s needs 2 grid dimensions, deck has %d", name, len(dims))
				return
			}
			nx, ny = dims[0].NumCells, dims[1].NumCells
		}
	}
	if m2d.NX > 0 {
		nx = m2d.NX
	}
	if m2d.NY > 0 {
		ny = m2d.NY
	}
	if m2d.FinalTime > 0 {
		cfg.TFinal = m2d.FinalTime
	}
	if m2d.NumOutput > 0 {
		cfg.NumOutput = m2d.NumOutput
	}
	if m2d.Workers > 0 {
		scfg.Workers = m2d.Workers
	}
	if err = cfg.Validate(); err != nil {
		return
	}

	switch name {
	case "annulus", "burgers":
		if ip != nil && len(ip.BCs) > 0 {
			err = fmt.Errorf("%s boundaries are fixed by the model, remove BCs from the deck", name)
			return
		}
		if name == "burgers" {
			m, err = Burgers2D.NewBurgers(nx, ny, scfg)
		} else {
			m, err = Advection2D.NewAnnulus(nx, ny, scfg)
		}
	default:
		var (
			it           Euler2D.InitType
			c            *Euler2D.Euler
			lower, upper []bc.Type
		)
		if it, err = Euler2D.NewInitType(name); err != nil {
			return
		}
		if ip != nil {
			if lower, upper, err = ip.BoundaryTypes("q", 2); err != nil {
				return
			}
		}
		if c, err = Euler2D.NewEuler(nx, ny, it, scfg, lower, upper); err != nil {
			return
		}
		if ip != nil && ip.Gamma != 0 {
			c.SetGas(ip.Gamma, ip.EntropyFix)
		}
		m = c
	}
	if err != nil {
		return
	}
	err = applyFields(m, m2d.Fields)
	return
}
