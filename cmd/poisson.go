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
	"io/ioutil"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/cocteautwins/hypre/InputParameters"
	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/model_problems"
	"github.com/cocteautwins/hypre/ssamg"
	"github.com/cocteautwins/hypre/sstruct"
)

type ModelPoisson struct {
	IPFile     string
	Profile    bool
	PerfEvents bool
}

// PoissonCmd represents the poisson command
var PoissonCmd = &cobra.Command{
	Use:   "poisson",
	Short: "Poisson model problem driver for the multigrid solver",
	Long: `
Discretizes -∇²u = 1 with Dirichlet boundaries on a composite grid and
solves it with semi-structured algebraic multigrid,

hypre poisson `,
	Run: func(cmd *cobra.Command, args []string) {
		var (
			err error
		)
		fmt.Println("poisson called")
		mp := &ModelPoisson{}
		if mp.IPFile, err = cmd.Flags().GetString("inputParametersFile"); err != nil {
			panic(err)
		}
		mp.Profile, _ = cmd.Flags().GetBool("profile")
		mp.PerfEvents, _ = cmd.Flags().GetBool("perf")
		sp := processSolverInput(cmd, mp)
		RunPoisson(mp, sp)
	},
}

func processSolverInput(cmd *cobra.Command, mp *ModelPoisson) (sp *InputParameters.SolverParameters) {
	var (
		err error
	)
	n, _ := cmd.Flags().GetInt("n")
	np, _ := cmd.Flags().GetInt("numRanks")
	sp = &InputParameters.SolverParameters{
		Title:         "Poisson",
		Tol:           1.e-6,
		MaxIterations: 200,
		RelaxType:     "WeightedJacobi",
		NumPreRelax:   1,
		NumPostRelax:  1,
		ZeroGuess:     true,
		NumRanks:      np,
		Parts: []InputParameters.PartSpec{
			{Size: [3]int{n, n, 1}},
		},
	}
	if len(mp.IPFile) != 0 {
		var data []byte
		if data, err = ioutil.ReadFile(mp.IPFile); err != nil {
			panic(err)
		}
		if err = sp.Parse(data); err != nil {
			panic(err)
		}
	}
	sp.Tol, _ = overrideFloat(cmd, "tol", sp.Tol)
	sp.MaxIterations, _ = overrideInt(cmd, "maxIterations", sp.MaxIterations)
	sp.MaxLevels, _ = overrideInt(cmd, "maxLevels", sp.MaxLevels)
	sp.PrintLevel, _ = overrideInt(cmd, "printLevel", sp.PrintLevel)
	sp.Logging, _ = overrideInt(cmd, "logging", sp.Logging)
	if sp.NumRanks < 1 {
		sp.NumRanks = 1
	}
	if len(sp.Parts) == 0 {
		fmt.Printf("error: input parameters declare no grid parts\n")
		os.Exit(1)
	}
	sp.Print()
	return
}

func overrideInt(cmd *cobra.Command, name string, def int) (int, error) {
	if cmd.Flags().Changed(name) {
		return cmd.Flags().GetInt(name)
	}
	return def, nil
}

func overrideFloat(cmd *cobra.Command, name string, def float64) (float64, error) {
	if cmd.Flags().Changed(name) {
		return cmd.Flags().GetFloat64(name)
	}
	return def, nil
}

func init() {
	rootCmd.AddCommand(PoissonCmd)
	PoissonCmd.Flags().IntP("n", "n", 64, "cells per axis of the default square part")
	PoissonCmd.Flags().IntP("numRanks", "r", 1, "number of solver ranks")
	PoissonCmd.Flags().Float64("tol", 1.e-6, "relative residual convergence tolerance")
	PoissonCmd.Flags().Int("maxIterations", 200, "V-cycle budget")
	PoissonCmd.Flags().Int("maxLevels", 0, "cap on hierarchy depth, 0 = no cap")
	PoissonCmd.Flags().Int("printLevel", 1, "0 = silent, 1 = summaries, 2 = per-part tables")
	PoissonCmd.Flags().Int("logging", 2, "0 = no history, >1 enables convergence table")
	PoissonCmd.Flags().StringP("inputParametersFile", "I", "", "YAML file for input parameters like:\n\t- Tol\n\t- RelaxType\n\t- Parts")
	PoissonCmd.Flags().Bool("profile", false, "write a CPU profile of the solve")
	PoissonCmd.Flags().Bool("perf", false, "count hardware instructions during the solve (linux only)")
}

func relaxFromString(name string) ssamg.RelaxType {
	switch name {
	case "Jacobi":
		return ssamg.RelaxJacobi
	case "RedBlackGS":
		return ssamg.RelaxRedBlackGS
	case "WeightedJacobi", "":
		return ssamg.RelaxWeightedJacobi
	default:
		fmt.Printf("error: unknown relaxation type %q\n", name)
		os.Exit(1)
	}
	return ssamg.RelaxWeightedJacobi
}

func RunPoisson(mp *ModelPoisson, sp *InputParameters.SolverParameters) {
	if mp.Profile {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	var (
		relax = relaxFromString(sp.RelaxType)
		dxyz  [][3]float64
	)
	for _, p := range sp.Parts {
		if p.Spacing != [3]float64{} {
			dxyz = make([][3]float64, len(sp.Parts))
			for i := range dxyz {
				dxyz[i] = [3]float64{1, 1, 1}
			}
			break
		}
	}
	for i, p := range sp.Parts {
		if dxyz != nil && p.Spacing != [3]float64{} {
			dxyz[i] = p.Spacing
		}
	}

	start := time.Now()
	w := comm.NewWorld(sp.NumRanks)
	err := w.Run(func(c *comm.Comm) error {
		parts := make([]*sstruct.Part, len(sp.Parts))
		for i, p := range sp.Parts {
			parts[i] = sstruct.NewPart(p.Size[0], p.Size[1], p.Size[2])
		}
		var (
			g = sstruct.NewGrid(c, parts)
			A = model_problems.PoissonOperator(g)
			b = model_problems.ConstantRHS(g, 1)
			x = sstruct.NewVector(g)
			s = ssamg.New(c)
		)
		s.SetTol(sp.Tol)
		s.SetMaxIter(sp.MaxIterations)
		s.SetMaxLevels(sp.MaxLevels)
		s.SetRelaxType(relax)
		s.SetRelaxWeight(sp.RelaxWeight)
		s.SetNumPreRelax(sp.NumPreRelax)
		s.SetNumPostRelax(sp.NumPostRelax)
		s.SetNumCoarseRelax(sp.NumCoarseRelax)
		s.SetZeroGuess(sp.ZeroGuess)
		s.SetRelChange(sp.RelChange)
		s.SetPrintLevel(sp.PrintLevel)
		s.SetLogging(sp.Logging)
		if dxyz != nil {
			s.SetDxyz(dxyz)
		}
		if err := s.Setup(A, b, x); err != nil {
			return err
		}
		if err := s.PrintStats(); err != nil {
			return err
		}
		solve := func() error { return s.Solve(b, x) }
		if mp.PerfEvents {
			if err := countInstructions(c, solve); err != nil {
				return err
			}
		} else if err := solve(); err != nil {
			return err
		}
		s.PrintLogging()
		if c.Rank() == 0 {
			rel, err := s.FinalRelativeResidualNorm()
			if err != nil {
				return err
			}
			fmt.Printf("converged to %8.2e in %d iterations, %d levels\n",
				rel, s.NumIterations(), s.NumLevels())
		}
		return nil
	})
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Printf("solve wall time: %v\n", time.Since(start))
}
