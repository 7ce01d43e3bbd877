package ssamg

// cycle performs one recursive V-cycle starting at level l. Phase order is
// fixed: pre-smooth, residual, restrict, recurse, interpolate correction,
// post-smooth. The coarsest level is "solved" by numCoarseRelax sweeps.
func (s *Solver) cycle(l int) {
	var (
		o   = &s.frozen
		lev = s.levels[l]
	)
	if l == s.numLevels-1 {
		lev.relax.Apply(o.NumCoarseRelax, lev.b, lev.x)
		return
	}

	lev.relax.Apply(o.NumPreRelax, lev.b, lev.x)

	lev.matvec.Residual(lev.x, lev.b, lev.t)

	next := s.levels[l+1]
	next.x.Zero()
	lev.restrict.Apply(1, lev.t, 0, next.b)

	s.cycle(l + 1)

	lev.interp.Apply(1, next.x, 1, lev.x)

	lev.relax.Apply(o.NumPostRelax, lev.b, lev.x)
}
