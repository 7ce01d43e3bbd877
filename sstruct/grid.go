// Package sstruct implements the distributed semi-structured linear algebra
// containers the multigrid solver operates on: a composite Grid of
// structured Parts, band-distributed Vectors and sparse Matrices over it,
// matrix-vector product contexts, and the Galerkin triple product used to
// form coarse-level operators.
package sstruct

import (
	"fmt"

	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/utils"
)

// Part is one structured box of cells within a composite grid. Axes with
// extent 1 are degenerate (a 2D part is Size [nx, ny, 1]).
type Part struct {
	Size [3]int
}

func NewPart(nx, ny, nz int) *Part {
	if nx < 1 || ny < 1 || nz < 1 {
		panic(fmt.Sprintf("sstruct: invalid part extents %d,%d,%d", nx, ny, nz))
	}
	return &Part{Size: [3]int{nx, ny, nz}}
}

func (p *Part) NumCells() int {
	return p.Size[0] * p.Size[1] * p.Size[2]
}

// CellIndex maps cell coordinates to the part-local linear index, x fastest
func (p *Part) CellIndex(i, j, k int) int {
	return i + p.Size[0]*(j+p.Size[1]*k)
}

func (p *Part) CellCoords(idx int) (i, j, k int) {
	i = idx % p.Size[0]
	idx /= p.Size[0]
	j = idx % p.Size[1]
	k = idx / p.Size[1]
	return
}

// Grid is a composite (multi-part) semi-structured grid with a global
// part-major row numbering, band-distributed across the ranks of comm.
type Grid struct {
	comm  *comm.Comm
	parts []*Part
	offs  []int
	size  int
	rows  *utils.RowPartition
}

func NewGrid(c *comm.Comm, parts []*Part) (g *Grid) {
	if len(parts) == 0 {
		panic("sstruct: grid needs at least one part")
	}
	g = &Grid{
		comm:  c,
		parts: parts,
		offs:  make([]int, len(parts)+1),
	}
	for p, part := range parts {
		g.offs[p+1] = g.offs[p] + part.NumCells()
	}
	g.size = g.offs[len(parts)]
	g.rows = utils.NewRowPartition(c.Size(), g.size)
	return
}

func (g *Grid) Comm() *comm.Comm   { return g.comm }
func (g *Grid) NumParts() int      { return len(g.parts) }
func (g *Grid) Part(p int) *Part   { return g.parts[p] }
func (g *Grid) GlobalSize() int    { return g.size }
func (g *Grid) PartOffset(p int) int { return g.offs[p] }

// GlobalIndex maps (part, cell coordinates) to the global row index
func (g *Grid) GlobalIndex(part, i, j, k int) int {
	return g.offs[part] + g.parts[part].CellIndex(i, j, k)
}

// PartOfRow returns the part containing global row, and the cell coordinates
func (g *Grid) PartOfRow(row int) (part, i, j, k int) {
	for p := range g.parts {
		if row < g.offs[p+1] {
			part = p
			i, j, k = g.parts[p].CellCoords(row - g.offs[p])
			return
		}
	}
	panic(fmt.Sprintf("sstruct: row %d out of range [0,%d)", row, g.size))
}

// OwnedRange is the half-open band of global rows owned by this rank
func (g *Grid) OwnedRange() (lo, hi int) {
	return g.rows.Band(g.comm.Rank())
}

func (g *Grid) NumOwned() int {
	return g.rows.BandSize(g.comm.Rank())
}

// OwnedInPart is the number of owned rows falling inside part p
func (g *Grid) OwnedInPart(p int) int {
	lo, hi := g.OwnedRange()
	plo, phi := g.offs[p], g.offs[p+1]
	n := utils.Imin(hi, phi) - utils.Imax(lo, plo)
	if n < 0 {
		n = 0
	}
	return n
}

// LocalBoxes is the number of contiguous owned row spans in part p on this
// rank. With band distribution this is 0 or 1; it feeds the diagnostics box
// counts.
func (g *Grid) LocalBoxes(p int) int {
	if g.OwnedInPart(p) > 0 {
		return 1
	}
	return 0
}
