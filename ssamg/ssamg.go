// Package ssamg implements a semi-structured algebraic multigrid solver for
// distributed sparse linear systems on composite multi-part grids. A
// hierarchy of coarser operators is built by per-part semi-coarsening and
// Galerkin triple products, and V-cycles of relaxation and coarse-grid
// correction drive the residual down until tolerance or iteration budget.
package ssamg

import (
	"fmt"

	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/sstruct"
)

// level owns all state at one hierarchy depth. Index 0 is the finest level;
// its grid, operator and solution vectors are borrowed from the caller, all
// coarser levels are owned by the solver.
type level struct {
	grid    *sstruct.Grid
	A       *sstruct.Matrix
	b, x, t *sstruct.Vector
	matvec  *sstruct.Matvec
	relax   *relaxData

	// Transition l -> l+1, nil on the coarsest level
	P, RT            *sstruct.Matrix
	interp, restrict *sstruct.Matvec
}

// Solver is one solve configuration plus, after Setup, the level hierarchy
// and iteration bookkeeping.
type Solver struct {
	comm *comm.Comm
	opts Options // staged by the setters

	// Populated by Setup
	frozen    Options
	setupDone bool
	nparts    int
	numLevels int
	maxLevels int
	levels    []*level
	cdirs     [][]int     // chosen coarsening direction per level per part
	weights   [][]float64 // relax weight per level per part, maxLevels rows
	dxyz      [][3]float64

	// Populated by Solve
	numIterations int
	finalRelNorm  float64
	norms         []float64 // ||r_k||, retained only when logging > 0
	relNorms      []float64 // ||r_k||/||r_0||
}

func New(c *comm.Comm) *Solver {
	return &Solver{
		comm: c,
		opts: DefaultOptions(),
	}
}

// Destroy releases the hierarchy, coarsest level first so no transfer
// operator or relaxation context outlives the level it references. The
// finest level's grid, operator and vectors are borrowed and left alone.
func (s *Solver) Destroy() {
	for l := len(s.levels) - 1; l >= 0; l-- {
		s.levels[l] = nil
	}
	s.levels = nil
	s.cdirs = nil
	s.weights = nil
	s.setupDone = false
}

func (s *Solver) Comm() *comm.Comm { return s.comm }

// Setters: pure stores, validated lazily at Setup time

func (s *Solver) SetTol(tol float64)            { s.opts.Tol = tol }
func (s *Solver) SetMaxIter(maxIter int)        { s.opts.MaxIter = maxIter }
func (s *Solver) SetRelChange(relChange bool)   { s.opts.RelChange = relChange }
func (s *Solver) SetZeroGuess(zeroGuess bool)   { s.opts.ZeroGuess = zeroGuess }
func (s *Solver) SetMaxLevels(maxLevels int)    { s.opts.MaxLevels = maxLevels }
func (s *Solver) SetRelaxType(rt RelaxType)     { s.opts.RelaxType = rt }
func (s *Solver) SetRelaxWeight(w float64)      { s.opts.RelaxWeight = w }
func (s *Solver) SetNumPreRelax(n int)          { s.opts.NumPreRelax = n }
func (s *Solver) SetNumPostRelax(n int)         { s.opts.NumPostRelax = n }
func (s *Solver) SetNumCoarseRelax(n int)       { s.opts.NumCoarseRelax = n }
func (s *Solver) SetLogging(logging int)        { s.opts.Logging = logging }
func (s *Solver) SetPrintLevel(printLevel int)  { s.opts.PrintLevel = printLevel }
func (s *Solver) SetDxyz(dxyz [][3]float64)     { s.opts.Dxyz = dxyz }

// Options returns the staged configuration
func (s *Solver) Options() Options { return s.opts }

// NumLevels is the number of active hierarchy levels built by Setup
func (s *Solver) NumLevels() int { return s.numLevels }

// NumIterations is the number of cycles taken by the last Solve
func (s *Solver) NumIterations() int { return s.numIterations }

// CoarseningDirections returns, per level transition, the chosen coarsening
// axis of each part (-1 where a part could not be coarsened). The record has
// exactly NumLevels()-1 rows and is fixed once Setup completes.
func (s *Solver) CoarseningDirections() (cdirs [][]int) {
	cdirs = make([][]int, len(s.cdirs))
	for l := range s.cdirs {
		cdirs[l] = append([]int(nil), s.cdirs[l]...)
	}
	return
}

// FinalRelativeResidualNorm reports ||r_k||/||r_0|| after the last Solve.
// Requesting it from a configuration with MaxIter == 0 is a configuration
// error: no iteration history can exist.
func (s *Solver) FinalRelativeResidualNorm() (float64, error) {
	maxIter := s.opts.MaxIter
	if s.setupDone {
		maxIter = s.frozen.MaxIter
	}
	if maxIter == 0 {
		return 0, fmt.Errorf("ssamg: relative residual norm requested with max_iter == 0")
	}
	return s.finalRelNorm, nil
}

// ResidualNorms returns the absolute and relative residual norm history of
// the last Solve, entry 0 being the initial residual. Empty unless
// logging > 0.
func (s *Solver) ResidualNorms() (norms, relNorms []float64) {
	norms = append([]float64(nil), s.norms...)
	relNorms = append([]float64(nil), s.relNorms...)
	return
}

// PrintLogging renders the accumulated convergence history on rank 0. It is
// a no-op unless printLevel > 0 and logging > 1.
func (s *Solver) PrintLogging() {
	var (
		o     = s.effectiveOptions()
		convr = 1.0
	)
	if s.comm.Rank() != 0 || o.PrintLevel <= 0 || o.Logging <= 1 {
		return
	}
	fmt.Printf("Iters         ||r||_2   conv.rate  ||r||_2/||r0||_2\n")
	if len(s.norms) == 0 {
		return
	}
	fmt.Printf("% 5d    %e    %f     %e\n", 0, s.norms[0], convr, s.relNorms[0])
	i := o.PrintLevel
	for ; i < len(s.norms); i += o.PrintLevel {
		convr = s.norms[i] / s.norms[i-1]
		fmt.Printf("% 5d    %e    %f     %e\n", i, s.norms[i], convr, s.relNorms[i])
	}
	if last := len(s.norms) - 1; i != last+o.PrintLevel && last > 0 {
		fmt.Printf("% 5d    %e    %f     %e\n", last, s.norms[last], convr, s.relNorms[last])
	}
}

func (s *Solver) effectiveOptions() Options {
	if s.setupDone {
		return s.frozen
	}
	return s.opts
}
