package ssamg

import (
	"fmt"

	"github.com/cocteautwins/hypre/sstruct"
)

// Solve runs V-cycles on b, refining x in place, until the relative residual
// drops below tolerance, the relative change between iterates does (when
// enabled), or the iteration budget is spent. Reaching the budget is
// reported through the getters, not as an error. Both vectors live on the
// finest grid; they replace the ones bound at Setup. Collective.
func (s *Solver) Solve(b, x *sstruct.Vector) error {
	if !s.setupDone {
		return fmt.Errorf("ssamg: Solve called before Setup")
	}
	var (
		o   = &s.frozen
		lev = s.levels[0]
	)
	lev.b, lev.x = b, x
	if o.ZeroGuess {
		lev.x.Zero()
	}

	lev.matvec.Residual(lev.x, lev.b, lev.t)
	r0 := lev.t.Norm2()

	s.numIterations = 0
	s.norms, s.relNorms = nil, nil
	if o.Logging > 0 {
		s.norms = append(s.norms, r0)
		s.relNorms = append(s.relNorms, 1)
	}
	if r0 == 0 {
		// The initial guess already solves the system exactly
		s.finalRelNorm = 0
		if o.Logging > 0 {
			s.relNorms[0] = 0
		}
		return nil
	}
	s.finalRelNorm = 1
	if o.MaxIter == 0 {
		return nil
	}

	var xPrev *sstruct.Vector
	if o.RelChange {
		xPrev = lev.x.Copy()
	}
	for it := 1; it <= o.MaxIter; it++ {
		s.cycle(0)

		lev.matvec.Residual(lev.x, lev.b, lev.t)
		var (
			rn  = lev.t.Norm2()
			rel = rn / r0
		)
		s.numIterations = it
		s.finalRelNorm = rel
		if o.Logging > 0 {
			s.norms = append(s.norms, rn)
			s.relNorms = append(s.relNorms, rel)
		}
		if rel < o.Tol {
			break
		}
		if o.RelChange {
			// ||x_k - x_{k-1}|| / ||x_k||, all ranks agree on the outcome
			xPrev.Scale(-1)
			xPrev.Axpy(1, lev.x)
			dx := xPrev.Norm2()
			xn := lev.x.Norm2()
			if xn > 0 && dx/xn < o.Tol {
				break
			}
			xPrev.CopyFrom(lev.x)
		}
	}
	return nil
}
