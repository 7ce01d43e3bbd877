package ssamg

import (
	"github.com/cocteautwins/hypre/sstruct"
)

// minCoarseCells is the smallest coarse extent an axis may produce; an axis
// that would coarsen to fewer cells is degenerate and skipped.
const minCoarseCells = 2

// chooseCdirs picks, per part, the axis to semi-coarsen next: the axis with
// the smallest physical spacing wins, ties broken by lowest axis index.
// Parts with no coarsenable axis get -1. any reports whether at least one
// part can still be coarsened.
func chooseCdirs(g *sstruct.Grid, dxyz [][3]float64) (cdirs []int, any bool) {
	cdirs = make([]int, g.NumParts())
	for p := range cdirs {
		var (
			part = g.Part(p)
			best = -1
		)
		for d := 0; d < 3; d++ {
			if coarseSize(part.Size[d]) < minCoarseCells {
				continue
			}
			if best < 0 || dxyz[p][d] < dxyz[p][best] {
				best = d
			}
		}
		cdirs[p] = best
		if best >= 0 {
			any = true
		}
	}
	return
}

// coarseSize is the extent after standard factor-2 coarsening: the cells
// with even index along the coarsened axis survive.
func coarseSize(n int) int {
	return (n + 1) / 2
}

// coarsenGrid builds the coarse composite grid for the chosen directions;
// parts with cdir -1 pass through unchanged.
func coarsenGrid(g *sstruct.Grid, cdirs []int) *sstruct.Grid {
	parts := make([]*sstruct.Part, g.NumParts())
	for p := range parts {
		size := g.Part(p).Size
		if d := cdirs[p]; d >= 0 {
			size[d] = coarseSize(size[d])
		}
		parts[p] = sstruct.NewPart(size[0], size[1], size[2])
	}
	return sstruct.NewGrid(g.Comm(), parts)
}

// buildInterp assembles the semi-coarsening interpolation operator from the
// fine operator's couplings along each part's coarsening axis. Fine cells
// coinciding with coarse cells are injected; in-between cells interpolate
// from their two axis neighbors with operator-proportional weights.
func buildInterp(fine, coarse *sstruct.Grid, A *sstruct.Matrix, cdirs []int) *sstruct.Matrix {
	var (
		b      = sstruct.NewTransferBuilder(fine, coarse)
		lo, hi = fine.OwnedRange()
	)
	for r := lo; r < hi; r++ {
		p, i, j, k := fine.PartOfRow(r)
		var (
			cell = [3]int{i, j, k}
			d    = cdirs[p]
		)
		if d < 0 {
			// Pass-through part, same coordinates on both grids
			b.Set(r, coarse.GlobalIndex(p, i, j, k), 1)
			continue
		}
		id := cell[d]
		if id%2 == 0 {
			cc := cell
			cc[d] = id / 2
			b.Set(r, coarse.GlobalIndex(p, cc[0], cc[1], cc[2]), 1)
			continue
		}
		var (
			left  = cell
			right = cell
		)
		left[d] = (id - 1) / 2
		if id+1 >= fine.Part(p).Size[d] {
			// No right neighbor at the part boundary
			b.Set(r, coarse.GlobalIndex(p, left[0], left[1], left[2]), 1)
			continue
		}
		right[d] = (id + 1) / 2
		var (
			lnb = cell
			rnb = cell
		)
		lnb[d]--
		rnb[d]++
		var (
			al     = A.At(r, fine.GlobalIndex(p, lnb[0], lnb[1], lnb[2]))
			ar     = A.At(r, fine.GlobalIndex(p, rnb[0], rnb[1], rnb[2]))
			wl, wr = 0.5, 0.5
		)
		if al+ar != 0 {
			wl = al / (al + ar)
			wr = ar / (al + ar)
		}
		b.Set(r, coarse.GlobalIndex(p, left[0], left[1], left[2]), wl)
		b.Set(r, coarse.GlobalIndex(p, right[0], right[1], right[2]), wr)
	}
	return b.Assemble()
}

// buildRestrict assembles the restriction operator as the transpose of the
// interpolation, distributed by coarse rows; collective.
func buildRestrict(P *sstruct.Matrix, coarse *sstruct.Grid) *sstruct.Matrix {
	var (
		pFull  = sstruct.GatherCSR(P)
		b      = sstruct.NewTransferBuilder(coarse, P.Grid())
		lo, hi = coarse.OwnedRange()
	)
	pFull.DoNonZero(func(f, c int, v float64) {
		if c >= lo && c < hi {
			b.Set(c, f, v)
		}
	})
	return b.Assemble()
}
