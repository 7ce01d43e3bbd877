package model_problems

import (
	"github.com/cocteautwins/hypre/sstruct"
)

// PoissonOperator discretizes -∇²u with second order central differences and
// homogeneous Dirichlet boundaries on every part of a composite grid.
// Degenerate axes (extent 1) contribute nothing, so a [n, m, 1] part yields
// the standard 5-point operator. The resulting operator is symmetric
// positive definite.
func PoissonOperator(g *sstruct.Grid) *sstruct.Matrix {
	b := sstruct.NewBuilder(g)
	lo, hi := g.OwnedRange()
	for r := lo; r < hi; r++ {
		p, i, j, k := g.PartOfRow(r)
		var (
			part = g.Part(p)
			cell = [3]int{i, j, k}
			diag float64
		)
		for d := 0; d < 3; d++ {
			if part.Size[d] < 2 {
				continue
			}
			diag += 2
			var off [3]int
			off[d] = -1
			b.SetStencil(p, cell, off, -1)
			off[d] = 1
			b.SetStencil(p, cell, off, -1)
		}
		b.SetStencil(p, cell, [3]int{0, 0, 0}, diag)
	}
	return b.Assemble()
}

// ConstantRHS fills a right-hand side with a constant forcing value
func ConstantRHS(g *sstruct.Grid, val float64) (b *sstruct.Vector) {
	b = sstruct.NewVector(g)
	b.SetFunc(func(_, _, _, _ int) float64 { return val })
	return
}
