package sstruct

// Matvec is a reusable matrix-vector product context bound to one operator.
// It owns the gather buffer for the operand vector, so repeated products at
// the same level reuse one allocation.
type Matvec struct {
	A    *Matrix
	full []float64
}

func NewMatvec(A *Matrix) (mv *Matvec) {
	mv = &Matvec{
		A:    A,
		full: make([]float64, A.colGrid.GlobalSize()),
	}
	return
}

// Gather assembles the full operand vector into the context buffer;
// collective
func (mv *Matvec) Gather(x *Vector) []float64 {
	if x.grid != mv.A.colGrid {
		panic("sstruct: matvec operand lives on the wrong grid")
	}
	mv.full = x.Gather(mv.full)
	return mv.full
}

// Apply computes y = alpha*A*x + beta*y over the owned band; collective
func (mv *Matvec) Apply(alpha float64, x *Vector, beta float64, y *Vector) {
	if y.grid != mv.A.rowGrid {
		panic("sstruct: matvec result lives on the wrong grid")
	}
	var (
		A    = mv.A
		full = mv.Gather(x)
	)
	for r := A.lo; r < A.hi; r++ {
		s := 0.0
		A.loc.DoRowNonZero(r-A.lo, func(_, j int, v float64) {
			s += v * full[j]
		})
		i := r - A.lo
		y.Loc[i] = alpha*s + beta*y.Loc[i]
	}
}

// Residual computes r = b - A*x; collective
func (mv *Matvec) Residual(x, b, r *Vector) {
	r.CopyFrom(b)
	mv.Apply(-1, x, 1, r)
}
