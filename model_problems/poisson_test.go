package model_problems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/sstruct"
)

func TestPoissonOperator2D(t *testing.T) {
	var (
		c = comm.Self()
		g = sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(4, 4, 1)})
		A = PoissonOperator(g)
	)
	// Interior cell: 5-point stencil, diagonal 4, zero row sum
	r := g.GlobalIndex(0, 1, 1, 0)
	assert.Equal(t, 4., A.At(r, r))
	assert.Equal(t, -1., A.At(r, g.GlobalIndex(0, 0, 1, 0)))
	assert.Equal(t, -1., A.At(r, g.GlobalIndex(0, 1, 2, 0)))
	sum := 0.
	A.DoRow(r, func(_, _ int, v float64) { sum += v })
	assert.InDelta(t, 0., sum, 1.e-14)

	// Corner cell keeps the full diagonal (Dirichlet truncation)
	r = g.GlobalIndex(0, 0, 0, 0)
	assert.Equal(t, 4., A.At(r, r))
	sum = 0.
	A.DoRow(r, func(_, _ int, v float64) { sum += v })
	assert.InDelta(t, 2., sum, 1.e-14)

	// Symmetry across a sample of couplings
	lo, hi := A.OwnedRange()
	for row := lo; row < hi; row++ {
		A.DoRow(row, func(_, col int, v float64) {
			assert.Equal(t, v, A.At(col, row))
		})
	}
	assert.Equal(t, []int{5}, A.StencilSize)
}

func TestPoissonOperatorMultiPart(t *testing.T) {
	var (
		c = comm.Self()
		g = sstruct.NewGrid(c, []*sstruct.Part{
			sstruct.NewPart(3, 3, 1),
			sstruct.NewPart(2, 2, 2),
		})
		A = PoissonOperator(g)
	)
	// 3D part has a 7-point stencil footprint, all neighbors truncated to
	// the part
	r := g.GlobalIndex(1, 0, 0, 0)
	assert.Equal(t, 6., A.At(r, r))
	assert.Equal(t, 17, g.GlobalSize())
	assert.Equal(t, []int{5, 4}, A.StencilSize)
}
