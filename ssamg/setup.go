package ssamg

import (
	"fmt"

	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/sstruct"
)

// minGlobalSize stops the coarsening loop once a level's global problem size
// falls below it; smaller systems are handled by the coarse-level sweeps.
const minGlobalSize = 4

// Setup validates the staged configuration, freezes it, and builds the level
// hierarchy from the assembled finest-level system. The finest grid,
// operator and vectors remain owned by the caller. Collective.
func (s *Solver) Setup(A *sstruct.Matrix, b, x *sstruct.Vector) error {
	var (
		g = A.Grid()
	)
	s.nparts = g.NumParts()
	if err := s.opts.validate(s.nparts); err != nil {
		return err
	}
	s.frozen = s.opts
	o := &s.frozen
	if o.NumCoarseRelax < 0 {
		o.NumCoarseRelax = 2
	}

	nnzRows := s.comm.AllReduce1(comm.OpSum, float64(A.NumNonzeroRows()))
	if nnzRows == 0 {
		return fmt.Errorf("ssamg: finest operator has no active rows")
	}

	// Working spacing, doubled along each chosen axis as levels coarsen
	s.dxyz = make([][3]float64, s.nparts)
	for p := range s.dxyz {
		if o.Dxyz != nil {
			s.dxyz[p] = o.Dxyz[p]
		} else {
			s.dxyz[p] = [3]float64{1, 1, 1}
		}
	}

	s.maxLevels = maxPossibleLevels(g)
	if o.MaxLevels > 0 && o.MaxLevels < s.maxLevels {
		s.maxLevels = o.MaxLevels
	}

	// Relax weight slots are pre-sized to maxLevels so truncated hierarchies
	// can be regrown without reallocation
	s.weights = make([][]float64, s.maxLevels)
	for l := range s.weights {
		s.weights[l] = make([]float64, s.nparts)
		for p := range s.weights[l] {
			s.weights[l][p] = o.defaultWeight()
		}
	}

	s.levels = make([]*level, 0, s.maxLevels)
	s.cdirs = nil
	s.levels = append(s.levels, &level{
		grid:   g,
		A:      A,
		b:      b,
		x:      x,
		t:      sstruct.NewVector(g),
		matvec: sstruct.NewMatvec(A),
	})

	for l := 0; l+1 < s.maxLevels; l++ {
		cur := s.levels[l]
		if cur.grid.GlobalSize() < minGlobalSize {
			break
		}
		cdirs, any := chooseCdirs(cur.grid, s.dxyz)
		if !any {
			break
		}
		coarse := coarsenGrid(cur.grid, cdirs)
		if coarse.GlobalSize() >= cur.grid.GlobalSize() {
			break
		}

		P := buildInterp(cur.grid, coarse, cur.A, cdirs)
		RT := buildRestrict(P, coarse)
		Ac := sstruct.RAP(RT, cur.A, P)

		cur.P, cur.RT = P, RT
		cur.interp = sstruct.NewMatvec(P)
		cur.restrict = sstruct.NewMatvec(RT)
		s.cdirs = append(s.cdirs, cdirs)
		s.levels = append(s.levels, &level{
			grid:   coarse,
			A:      Ac,
			b:      sstruct.NewVector(coarse),
			x:      sstruct.NewVector(coarse),
			t:      sstruct.NewVector(coarse),
			matvec: sstruct.NewMatvec(Ac),
		})
		for p, d := range cdirs {
			if d >= 0 {
				s.dxyz[p][d] *= 2
			}
		}
	}
	s.numLevels = len(s.levels)

	for l, lev := range s.levels {
		rd, err := newRelaxData(lev.A, lev.matvec, o.RelaxType, s.weights[l], lev.t)
		if err != nil {
			s.Destroy()
			return err
		}
		lev.relax = rd
	}

	s.setupDone = true
	s.numIterations = 0
	s.finalRelNorm = 0
	s.norms, s.relNorms = nil, nil
	return nil
}

// maxPossibleLevels bounds the hierarchy depth by the part that admits the
// most factor-2 semi-coarsening steps across its axes.
func maxPossibleLevels(g *sstruct.Grid) (bound int) {
	bound = 1
	for p := 0; p < g.NumParts(); p++ {
		steps := 0
		size := g.Part(p).Size
		for d := 0; d < 3; d++ {
			for n := size[d]; coarseSize(n) >= minCoarseCells; n = coarseSize(n) {
				steps++
			}
		}
		if steps+1 > bound {
			bound = steps + 1
		}
	}
	return
}
