package ssamg

import (
	"fmt"
	"math"

	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/utils"
)

// LevelStats aggregates one level's structural and numerical counts across
// all ranks.
type LevelStats struct {
	Rows        int
	GhostRows   int
	NonzeroRows int
	Nonzeros    int
	MinEntries  int
	MaxEntries  int
	AvgEntries  float64
	MinRowSum   float64
	MaxRowSum   float64
	Parts       int
	Boxes       int
	DOFs        int
	MinStencil  int
	MaxStencil  int
	AvgStencil  float64
}

// StatsSnapshot is an ephemeral, read-only view of the hierarchy built for
// reporting. The per-level table is delivered to rank 0 only; every other
// rank sees Levels nil.
type StatsSnapshot struct {
	NumLevels      int
	NParts         int
	RelaxType      RelaxType
	NumPreRelax    int
	NumPostRelax   int
	NumCoarseRelax int
	Cdirs          [][]int
	Weights        [][]float64
	Levels         []LevelStats
}

// GatherStats collects per-level statistics with sum, min and max reductions
// to rank 0. Read-only with respect to solver state, so repeated calls
// without an intervening solve return identical snapshots. Collective.
func (s *Solver) GatherStats() (*StatsSnapshot, error) {
	if !s.setupDone {
		return nil, fmt.Errorf("ssamg: statistics requested before Setup")
	}
	o := &s.frozen
	snap := &StatsSnapshot{
		NumLevels:      s.numLevels,
		NParts:         s.nparts,
		RelaxType:      o.RelaxType,
		NumPreRelax:    o.NumPreRelax,
		NumPostRelax:   o.NumPostRelax,
		NumCoarseRelax: o.NumCoarseRelax,
		Cdirs:          s.CoarseningDirections(),
	}
	for l := 0; l < s.numLevels; l++ {
		snap.Weights = append(snap.Weights, append([]float64(nil), s.weights[l]...))
	}
	if s.comm.Rank() == 0 {
		snap.Levels = make([]LevelStats, s.numLevels)
	}

	for l := 0; l < s.numLevels; l++ {
		var (
			lev    = s.levels[l]
			g      = lev.grid
			lo, hi = lev.A.OwnedRange()
			rows   = hi - lo
			ghost  = g.GlobalSize() - rows

			nnzRows            int
			nnz                int
			minE, maxE         = math.MaxFloat64, -math.MaxFloat64
			minRS, maxRS       = math.MaxFloat64, -math.MaxFloat64
			parts, boxes, dofs int
			minSt, maxSt       = math.MaxFloat64, -math.MaxFloat64
			avgStNum           float64
		)
		for r := lo; r < hi; r++ {
			var (
				entries int
				rowsum  float64
			)
			lev.A.DoRow(r, func(_, _ int, v float64) {
				entries++
				rowsum += v
			})
			nnz += entries
			if entries == 0 {
				continue
			}
			nnzRows++
			minE = math.Min(minE, float64(entries))
			maxE = math.Max(maxE, float64(entries))
			minRS = math.Min(minRS, rowsum)
			maxRS = math.Max(maxRS, rowsum)
		}
		for p := 0; p < g.NumParts(); p++ {
			var (
				pb = g.LocalBoxes(p)
				pd = g.OwnedInPart(p)
			)
			boxes += pb
			dofs += pd
			if pb > 0 {
				parts++
			}
			if pd > 0 {
				st := float64(lev.A.StencilSize[p])
				minSt = math.Min(minSt, st)
				maxSt = math.Max(maxSt, st)
				avgStNum += st * float64(pd)
			}
		}

		sums := s.comm.Reduce(comm.OpSum, []float64{
			float64(rows), float64(ghost), float64(nnzRows), float64(nnz),
			float64(parts), float64(boxes), float64(dofs), avgStNum,
		})
		mins := s.comm.Reduce(comm.OpMin, []float64{minE, minRS, minSt})
		maxs := s.comm.Reduce(comm.OpMax, []float64{maxE, maxRS, maxSt})

		if s.comm.Rank() == 0 {
			ls := &snap.Levels[l]
			ls.Rows = int(sums[0])
			ls.GhostRows = int(sums[1])
			ls.NonzeroRows = int(sums[2])
			ls.Nonzeros = int(sums[3])
			ls.Parts = int(sums[4])
			ls.Boxes = int(sums[5])
			ls.DOFs = int(sums[6])
			if ls.NonzeroRows > 0 {
				ls.AvgEntries = float64(ls.Nonzeros) / float64(ls.NonzeroRows)
				ls.MinEntries = int(mins[0])
				ls.MaxEntries = int(maxs[0])
				ls.MinRowSum = mins[1]
				ls.MaxRowSum = maxs[1]
			}
			if ls.DOFs > 0 {
				ls.MinStencil = int(mins[2])
				ls.MaxStencil = int(maxs[2])
				ls.AvgStencil = sums[7] / float64(ls.DOFs)
			}
		}
	}
	return snap, nil
}

// PrintStats renders the hierarchy statistics on rank 0. No-op when
// printLevel == 0. Collective otherwise.
func (s *Solver) PrintStats() error {
	o := s.effectiveOptions()
	if o.PrintLevel == 0 {
		return nil
	}
	snap, err := s.GatherStats()
	if err != nil {
		return err
	}
	if s.comm.Rank() != 0 {
		return nil
	}

	fmt.Printf("\nSSAMG Setup Parameters:\n\n")
	if o.PrintLevel > 1 {
		printPartTableInt("Coarsening direction:", snap.Cdirs, snap.NParts)
		if snap.RelaxType > 0 {
			printPartTableFloat("Relaxation factors:", snap.Weights, snap.NParts)
		}
	}

	fmt.Printf("Grid info:\n\n")
	fmt.Printf("lev   parts   boxes     DOFs   stmin   stmax   stavg\n")
	fmt.Printf("=====================================================\n")
	for l, ls := range snap.Levels {
		fmt.Printf("%3d %7d %7d %8d %7d %7d %7.1f\n",
			l, ls.Parts, ls.Boxes, ls.DOFs, ls.MinStencil, ls.MaxStencil, ls.AvgStencil)
	}
	fmt.Printf("\n")

	fmt.Printf("Matrix info:\n\n")
	fmt.Printf("lev     rows   ghost  nnzrows   entries   emin  emax  eavg     rsmin      rsmax\n")
	fmt.Printf("===============================================================================\n")
	for l, ls := range snap.Levels {
		fmt.Printf("%3d %8d %7d %8d %9d %6d %5d %5.1f %10.2e %10.2e\n",
			l, ls.Rows, ls.GhostRows, ls.NonzeroRows, ls.Nonzeros,
			ls.MinEntries, ls.MaxEntries, ls.AvgEntries, ls.MinRowSum, ls.MaxRowSum)
	}
	fmt.Printf("\n")

	fmt.Printf("Relaxation type: %s\n", snap.RelaxType)
	fmt.Printf("Number of pre-sweeps: %d\n", snap.NumPreRelax)
	fmt.Printf("Number of pos-sweeps: %d\n", snap.NumPostRelax)
	fmt.Printf("Number of coarse-sweeps: %d\n", snap.NumCoarseRelax)
	fmt.Printf("Number of levels: %d\n\n", snap.NumLevels)
	return nil
}

const partsPerLine = 8

func printPartTableInt(title string, rows [][]int, nparts int) {
	fmt.Printf("%s\n\n", title)
	for chunk := 0; chunk < nparts; chunk += partsPerLine {
		last := utils.Imin(chunk+partsPerLine, nparts)
		printPartHeader(chunk, last)
		for l, row := range rows {
			fmt.Printf("%3d  ", l)
			for p := chunk; p < last; p++ {
				fmt.Printf("%6d ", row[p])
			}
			fmt.Printf("\n")
		}
		fmt.Printf("\n")
	}
}

func printPartTableFloat(title string, rows [][]float64, nparts int) {
	fmt.Printf("%s\n\n", title)
	for chunk := 0; chunk < nparts; chunk += partsPerLine {
		last := utils.Imin(chunk+partsPerLine, nparts)
		printPartHeader(chunk, last)
		for l, row := range rows {
			fmt.Printf("%3d  ", l)
			for p := chunk; p < last; p++ {
				fmt.Printf("%6.2f ", row[p])
			}
			fmt.Printf("\n")
		}
		fmt.Printf("\n")
	}
}

func printPartHeader(chunk, last int) {
	ndigits := 4
	fmt.Printf("lev   ")
	for p := chunk; p < last; p++ {
		fmt.Printf("pt. %d  ", p)
		ndigits += 5 + utils.NDigits(p) + 1
	}
	fmt.Printf("\n")
	for i := 0; i < ndigits; i++ {
		fmt.Printf("=")
	}
	fmt.Printf("\n")
}
