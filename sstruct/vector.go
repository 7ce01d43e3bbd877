package sstruct

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cocteautwins/hypre/comm"
)

// Vector is a distributed vector over a Grid; each rank stores its owned
// band of values.
type Vector struct {
	grid   *Grid
	lo, hi int
	Loc    []float64
}

func NewVector(g *Grid) (v *Vector) {
	lo, hi := g.OwnedRange()
	v = &Vector{
		grid: g,
		lo:   lo,
		hi:   hi,
		Loc:  make([]float64, hi-lo),
	}
	return
}

func (v *Vector) Grid() *Grid { return v.grid }

func (v *Vector) OwnedRange() (lo, hi int) { return v.lo, v.hi }

func (v *Vector) Zero() {
	for i := range v.Loc {
		v.Loc[i] = 0
	}
}

func (v *Vector) Copy() (u *Vector) {
	u = NewVector(v.grid)
	copy(u.Loc, v.Loc)
	return
}

func (v *Vector) CopyFrom(u *Vector) {
	if len(u.Loc) != len(v.Loc) {
		panic("sstruct: mismatched vector bands in CopyFrom")
	}
	copy(v.Loc, u.Loc)
}

func (v *Vector) Scale(a float64) {
	floats.Scale(a, v.Loc)
}

// Axpy adds a*u into v
func (v *Vector) Axpy(a float64, u *Vector) {
	floats.AddScaled(v.Loc, a, u.Loc)
}

// SetFunc fills the owned band from a cell-wise function
func (v *Vector) SetFunc(f func(part, i, j, k int) float64) {
	for n := range v.Loc {
		part, i, j, k := v.grid.PartOfRow(v.lo + n)
		v.Loc[n] = f(part, i, j, k)
	}
}

// Dot is the global inner product; collective over the grid's communicator
func (v *Vector) Dot(u *Vector) float64 {
	loc := floats.Dot(v.Loc, u.Loc)
	return v.grid.comm.AllReduce1(comm.OpSum, loc)
}

// Norm2 is the global Euclidean norm; collective
func (v *Vector) Norm2() float64 {
	return math.Sqrt(v.Dot(v))
}

// Gather assembles the full global vector on every rank, reusing dst when it
// has capacity. This is the ghost exchange of the band-distribution model.
func (v *Vector) Gather(dst []float64) []float64 {
	return v.grid.comm.AllGatherv(v.Loc, dst)
}
