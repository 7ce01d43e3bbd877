package sstruct

import (
	"github.com/james-bowman/sparse"
)

// GatherCSR assembles the full row set of a distributed matrix on every
// rank; collective. Bands are ordered by rank, so concatenating the per-rank
// rows in rank order yields the global CSR directly.
func GatherCSR(m *Matrix) *sparse.CSR {
	var (
		g       = m.rowGrid
		band    = m.hi - m.lo
		rownnz  = make([]int, band)
		locJa   []int
		locData []float64
	)
	for r := 0; r < band; r++ {
		m.loc.DoRowNonZero(r, func(_, j int, v float64) {
			rownnz[r]++
			locJa = append(locJa, j)
			locData = append(locData, v)
		})
	}
	allnnz := g.comm.AllGathervInt(rownnz)
	ja := g.comm.AllGathervInt(locJa)
	data := g.comm.AllGatherv(locData, nil)

	ia := make([]int, g.GlobalSize()+1)
	for r, n := range allnnz {
		ia[r+1] = ia[r] + n
	}
	return sparse.NewCSR(g.GlobalSize(), m.colGrid.GlobalSize(), ia, ja, data)
}

// RAP forms the Galerkin coarse operator coarse = RT*A*P; collective. The
// result is distributed over the coarse grid (the row grid of RT).
func RAP(rt, a, p *Matrix) *Matrix {
	var (
		rtFull = GatherCSR(rt)
		aFull  = GatherCSR(a)
		pFull  = GatherCSR(p)
		ap     = &sparse.CSR{}
		rap    = &sparse.CSR{}
		cg     = rt.rowGrid
	)
	ap.Mul(aFull, pFull)
	rap.Mul(rtFull, ap)

	// Slice the owned coarse band back out of the full product
	lo, hi := cg.OwnedRange()
	dok := sparse.NewDOK(hi-lo, cg.GlobalSize())
	for r := lo; r < hi; r++ {
		rap.DoRowNonZero(r, func(_, j int, v float64) {
			dok.Set(r-lo, j, v)
		})
	}
	return newMatrix(cg, cg, dok.ToCSR())
}
