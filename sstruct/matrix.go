package sstruct

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// Matrix is a distributed sparse operator. Each rank stores its owned band
// of rows in CSR form; column indices are global over the column grid. Row
// and column grids differ for transfer operators (interpolation maps coarse
// columns to fine rows).
type Matrix struct {
	rowGrid *Grid
	colGrid *Grid
	lo, hi  int
	loc     *sparse.CSR
	// StencilSize holds, per part, the largest owned-row entry count in that
	// part, a proxy for the part's stencil extent on assembled operators
	StencilSize []int
}

func (m *Matrix) Grid() *Grid    { return m.rowGrid }
func (m *Matrix) ColGrid() *Grid { return m.colGrid }

func (m *Matrix) OwnedRange() (lo, hi int) { return m.lo, m.hi }

// NNZ is the entry count of the owned band
func (m *Matrix) NNZ() int { return m.loc.NNZ() }

// At reads an owned-row entry; row is global, col is global over the column
// grid
func (m *Matrix) At(row, col int) float64 {
	if row < m.lo || row >= m.hi {
		panic(fmt.Sprintf("sstruct: row %d not owned by this rank [%d,%d)", row, m.lo, m.hi))
	}
	return m.loc.At(row-m.lo, col)
}

// DoRow visits the nonzero entries of an owned row with global indices
func (m *Matrix) DoRow(row int, fn func(row, col int, v float64)) {
	m.loc.DoRowNonZero(row-m.lo, func(_, j int, v float64) {
		fn(row, j, v)
	})
}

// Diag extracts the owned band of the diagonal (square operators only)
func (m *Matrix) Diag() (d []float64) {
	d = make([]float64, m.hi-m.lo)
	for r := m.lo; r < m.hi; r++ {
		d[r-m.lo] = m.loc.At(r-m.lo, r)
	}
	return
}

// NumNonzeroRows counts owned rows with at least one entry
func (m *Matrix) NumNonzeroRows() (n int) {
	for r := m.lo; r < m.hi; r++ {
		nnz := 0
		m.loc.DoRowNonZero(r-m.lo, func(_, _ int, _ float64) { nnz++ })
		if nnz > 0 {
			n++
		}
	}
	return
}

// Builder assembles the owned band of a distributed matrix entry by entry
// through a DOK intermediate.
type Builder struct {
	rowGrid *Grid
	colGrid *Grid
	lo, hi  int
	dok     *sparse.DOK
}

// NewBuilder starts assembly of a square operator over g
func NewBuilder(g *Grid) *Builder {
	return NewTransferBuilder(g, g)
}

// NewTransferBuilder starts assembly of an operator with distinct row and
// column grids
func NewTransferBuilder(rowGrid, colGrid *Grid) (b *Builder) {
	lo, hi := rowGrid.OwnedRange()
	b = &Builder{
		rowGrid: rowGrid,
		colGrid: colGrid,
		lo:      lo,
		hi:      hi,
		dok:     sparse.NewDOK(hi-lo, colGrid.GlobalSize()),
	}
	return
}

// SetStencil sets the coefficient coupling a cell to its neighbor at offset
// within the same part. Rows not owned by this rank and neighbors falling
// outside the part are skipped (boundary truncation).
func (b *Builder) SetStencil(part int, cell, offset [3]int, val float64) {
	row := b.rowGrid.GlobalIndex(part, cell[0], cell[1], cell[2])
	if row < b.lo || row >= b.hi {
		return
	}
	p := b.rowGrid.Part(part)
	var nbr [3]int
	for d := 0; d < 3; d++ {
		nbr[d] = cell[d] + offset[d]
		if nbr[d] < 0 || nbr[d] >= p.Size[d] {
			return
		}
	}
	col := b.colGrid.GlobalIndex(part, nbr[0], nbr[1], nbr[2])
	b.dok.Set(row-b.lo, col, val)
}

// Set sets an entry by global row and column indices; rows outside the owned
// band are skipped
func (b *Builder) Set(row, col int, val float64) {
	if row < b.lo || row >= b.hi {
		return
	}
	b.dok.Set(row-b.lo, col, val)
}

// Assemble finalizes the owned band into CSR form
func (b *Builder) Assemble() *Matrix {
	return newMatrix(b.rowGrid, b.colGrid, b.dok.ToCSR())
}

func newMatrix(rowGrid, colGrid *Grid, loc *sparse.CSR) (m *Matrix) {
	lo, hi := rowGrid.OwnedRange()
	m = &Matrix{
		rowGrid:     rowGrid,
		colGrid:     colGrid,
		lo:          lo,
		hi:          hi,
		loc:         loc,
		StencilSize: make([]int, rowGrid.NumParts()),
	}
	for r := lo; r < hi; r++ {
		part, _, _, _ := rowGrid.PartOfRow(r)
		nnz := 0
		loc.DoRowNonZero(r-lo, func(_, _ int, _ float64) { nnz++ })
		if nnz > m.StencilSize[part] {
			m.StencilSize[part] = nnz
		}
	}
	return
}
