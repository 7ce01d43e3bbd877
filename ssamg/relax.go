package ssamg

import (
	"fmt"

	"github.com/cocteautwins/hypre/sstruct"
)

// relaxData is a relaxation engine bound to one level's operator. It caches
// the diagonal band, the per-row weight, and the red/black coloring so the
// sweeps themselves are tight loops.
type relaxData struct {
	A      *sstruct.Matrix
	mv     *sstruct.Matvec
	typ    RelaxType
	t      *sstruct.Vector
	lo, hi int
	diag   []float64
	wrow   []float64
	color  []uint8 // cell coordinate parity within the owning part
}

func newRelaxData(A *sstruct.Matrix, mv *sstruct.Matvec, typ RelaxType,
	partWeights []float64, t *sstruct.Vector) (rd *relaxData, err error) {
	var (
		g      = A.Grid()
		lo, hi = A.OwnedRange()
	)
	rd = &relaxData{
		A:     A,
		mv:    mv,
		typ:   typ,
		t:     t,
		lo:    lo,
		hi:    hi,
		diag:  A.Diag(),
		wrow:  make([]float64, hi-lo),
		color: make([]uint8, hi-lo),
	}
	for n, d := range rd.diag {
		if d == 0 {
			return nil, fmt.Errorf("ssamg: zero diagonal at global row %d, point relaxation is undefined", lo+n)
		}
		part, i, j, k := g.PartOfRow(lo + n)
		rd.wrow[n] = partWeights[part]
		rd.color[n] = uint8((i + j + k) % 2)
	}
	return
}

// Apply runs the configured number of sweeps in place on x. A sweep count of
// 0 leaves the level as a pass-through. Collective: every rank performs the
// same number of gathers per call.
func (rd *relaxData) Apply(sweeps int, b, x *sstruct.Vector) {
	switch rd.typ {
	case RelaxJacobi, RelaxWeightedJacobi:
		rd.jacobi(sweeps, b, x)
	case RelaxRedBlackGS:
		rd.redBlack(sweeps, b, x)
	default:
		panic(fmt.Sprintf("ssamg: relaxation type %d not set up", int(rd.typ)))
	}
}

// jacobi applies x <- x + w*D^-1*(b - A x) as one simultaneous update per
// sweep; the plain variant has all weights at 1.
func (rd *relaxData) jacobi(sweeps int, b, x *sstruct.Vector) {
	for sweep := 0; sweep < sweeps; sweep++ {
		rd.mv.Residual(x, b, rd.t)
		for n := range x.Loc {
			x.Loc[n] += rd.wrow[n] * rd.t.Loc[n] / rd.diag[n]
		}
	}
}

// redBlack applies one Gauss-Seidel half-sweep per color, red first, with a
// ghost exchange between the half-sweeps so black updates see the fresh red
// values.
func (rd *relaxData) redBlack(sweeps int, b, x *sstruct.Vector) {
	for sweep := 0; sweep < sweeps; sweep++ {
		for color := uint8(0); color < 2; color++ {
			full := rd.mv.Gather(x)
			for n := range x.Loc {
				if rd.color[n] != color {
					continue
				}
				var (
					row = rd.lo + n
					sum float64
				)
				rd.A.DoRow(row, func(_, j int, v float64) {
					if j != row {
						sum += v * full[j]
					}
				})
				x.Loc[n] = (b.Loc[n] - sum) / rd.diag[n]
			}
		}
	}
}
