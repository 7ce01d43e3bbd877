package ssamg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocteautwins/hypre/comm"
	"github.com/cocteautwins/hypre/model_problems"
	"github.com/cocteautwins/hypre/sstruct"
)

func poisson2D(c *comm.Comm, n int) (*sstruct.Grid, *sstruct.Matrix, *sstruct.Vector, *sstruct.Vector) {
	g := sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(n, n, 1)})
	A := model_problems.PoissonOperator(g)
	b := model_problems.ConstantRHS(g, 1)
	x := sstruct.NewVector(g)
	return g, A, b, x
}

func TestSettersRoundTrip(t *testing.T) {
	s := New(comm.Self())
	s.SetTol(1.e-9)
	s.SetMaxIter(123)
	s.SetRelChange(true)
	s.SetZeroGuess(true)
	s.SetMaxLevels(7)
	s.SetRelaxType(RelaxRedBlackGS)
	s.SetRelaxWeight(0.85)
	s.SetNumPreRelax(2)
	s.SetNumPostRelax(3)
	s.SetNumCoarseRelax(9)
	s.SetLogging(2)
	s.SetPrintLevel(1)
	dxyz := [][3]float64{{0.5, 1, 2}}
	s.SetDxyz(dxyz)

	o := s.Options()
	assert.Equal(t, 1.e-9, o.Tol)
	assert.Equal(t, 123, o.MaxIter)
	assert.Equal(t, true, o.RelChange)
	assert.Equal(t, true, o.ZeroGuess)
	assert.Equal(t, 7, o.MaxLevels)
	assert.Equal(t, RelaxRedBlackGS, o.RelaxType)
	assert.Equal(t, 0.85, o.RelaxWeight)
	assert.Equal(t, 2, o.NumPreRelax)
	assert.Equal(t, 3, o.NumPostRelax)
	assert.Equal(t, 9, o.NumCoarseRelax)
	assert.Equal(t, 2, o.Logging)
	assert.Equal(t, 1, o.PrintLevel)
	assert.Equal(t, dxyz, o.Dxyz)
}

func TestPoissonVCycleConvergence(t *testing.T) {
	c := comm.Self()
	_, A, b, x := poisson2D(c, 32)

	s := New(c)
	s.SetTol(1.e-6)
	s.SetMaxIter(50)
	s.SetRelaxType(RelaxWeightedJacobi)
	s.SetZeroGuess(true)
	s.SetLogging(1)
	require.NoError(t, s.Setup(A, b, x))
	require.NoError(t, s.Solve(b, x))

	rel, err := s.FinalRelativeResidualNorm()
	require.NoError(t, err)
	assert.Less(t, rel, 1.e-6)
	assert.LessOrEqual(t, s.NumIterations(), 50)
	assert.Greater(t, s.NumLevels(), 1)

	// Residual norms decrease monotonically (within floating point slack)
	norms, relNorms := s.ResidualNorms()
	require.Equal(t, s.NumIterations()+1, len(norms))
	require.Equal(t, len(norms), len(relNorms))
	for i := 1; i < len(norms); i++ {
		assert.LessOrEqual(t, norms[i], norms[i-1]*1.01)
	}

	// One coarsening-direction row per level transition; uniform spacing
	// ties break to the lowest axis, then the doubled spacing alternates
	cdirs := s.CoarseningDirections()
	require.Equal(t, s.NumLevels()-1, len(cdirs))
	assert.Equal(t, 0, cdirs[0][0])
	assert.Equal(t, 1, cdirs[1][0])
}

func TestRedBlackGaussSeidelConvergence(t *testing.T) {
	c := comm.Self()
	_, A, b, x := poisson2D(c, 16)

	s := New(c)
	s.SetTol(1.e-8)
	s.SetMaxIter(50)
	s.SetRelaxType(RelaxRedBlackGS)
	s.SetZeroGuess(true)
	require.NoError(t, s.Setup(A, b, x))
	require.NoError(t, s.Solve(b, x))
	rel, err := s.FinalRelativeResidualNorm()
	require.NoError(t, err)
	assert.Less(t, rel, 1.e-8)
}

func TestSingleLevelReducesToSmoother(t *testing.T) {
	// With one level the cycle is exactly numCoarseRelax smoother sweeps
	var (
		n = 6
		c = comm.Self()
		g = sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(n, 1, 1)})
	)
	ab := sstruct.NewBuilder(g)
	for i := 0; i < n; i++ {
		cell := [3]int{i, 0, 0}
		ab.SetStencil(0, cell, [3]int{0, 0, 0}, 2)
		ab.SetStencil(0, cell, [3]int{-1, 0, 0}, -1)
		ab.SetStencil(0, cell, [3]int{1, 0, 0}, -1)
	}
	var (
		A = ab.Assemble()
		b = model_problems.ConstantRHS(g, 1)
		x = sstruct.NewVector(g)
	)

	s := New(c)
	s.SetMaxLevels(1)
	s.SetMaxIter(1)
	s.SetNumCoarseRelax(3)
	s.SetRelaxType(RelaxWeightedJacobi)
	s.SetZeroGuess(true)
	require.NoError(t, s.Setup(A, b, x))
	assert.Equal(t, 1, s.NumLevels())
	assert.Equal(t, 0, len(s.CoarseningDirections()))
	require.NoError(t, s.Solve(b, x))

	// Dense reference: three sweeps of x <- x + (2/3) D^-1 (b - A x)
	var (
		w   = 2.0 / 3.0
		ref = make([]float64, n)
	)
	for sweep := 0; sweep < 3; sweep++ {
		r := make([]float64, n)
		for i := 0; i < n; i++ {
			ax := 2 * ref[i]
			if i > 0 {
				ax -= ref[i-1]
			}
			if i < n-1 {
				ax -= ref[i+1]
			}
			r[i] = 1 - ax
		}
		for i := 0; i < n; i++ {
			ref[i] += w * r[i] / 2
		}
	}
	for i := 0; i < n; i++ {
		assert.InDelta(t, ref[i], x.Loc[i], 1.e-14)
	}
}

func TestZeroInitialResidualShortCircuit(t *testing.T) {
	c := comm.Self()
	_, A, _, x := poisson2D(c, 8)
	b := sstruct.NewVector(A.Grid()) // zero forcing

	s := New(c)
	s.SetZeroGuess(true)
	s.SetLogging(1)
	require.NoError(t, s.Setup(A, b, x))
	require.NoError(t, s.Solve(b, x))
	assert.Equal(t, 0, s.NumIterations())
	rel, err := s.FinalRelativeResidualNorm()
	require.NoError(t, err)
	assert.Equal(t, 0., rel)
	_, relNorms := s.ResidualNorms()
	require.Equal(t, 1, len(relNorms))
	assert.Equal(t, 0., relNorms[0])
}

func TestFinalRelNormWithZeroMaxIter(t *testing.T) {
	c := comm.Self()
	_, A, b, x := poisson2D(c, 8)

	s := New(c)
	s.SetMaxIter(0)
	require.NoError(t, s.Setup(A, b, x))
	require.NoError(t, s.Solve(b, x))
	assert.Equal(t, 0, s.NumIterations())
	_, err := s.FinalRelativeResidualNorm()
	assert.Error(t, err)
}

func TestSetupErrors(t *testing.T) {
	c := comm.Self()
	// Operator with no active rows
	{
		g := sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(4, 1, 1)})
		A := sstruct.NewBuilder(g).Assemble()
		s := New(c)
		err := s.Setup(A, sstruct.NewVector(g), sstruct.NewVector(g))
		assert.ErrorContains(t, err, "no active rows")
	}
	// Zero diagonal is fatal for point relaxation
	{
		g := sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(2, 1, 1)})
		ab := sstruct.NewBuilder(g)
		ab.Set(0, 1, 1)
		ab.Set(1, 0, 1)
		ab.Set(1, 1, 2)
		s := New(c)
		err := s.Setup(ab.Assemble(), sstruct.NewVector(g), sstruct.NewVector(g))
		assert.ErrorContains(t, err, "zero diagonal")
	}
	// Spacing for the wrong number of parts
	{
		g := sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(4, 4, 1)})
		A := model_problems.PoissonOperator(g)
		s := New(c)
		s.SetDxyz([][3]float64{{1, 1, 1}, {1, 1, 1}})
		err := s.Setup(A, sstruct.NewVector(g), sstruct.NewVector(g))
		assert.ErrorContains(t, err, "spacing")
	}
	// Solve before Setup
	{
		s := New(c)
		assert.Error(t, s.Solve(nil, nil))
	}
}

func TestAnisotropicSpacingPicksFinerAxis(t *testing.T) {
	c := comm.Self()
	g := sstruct.NewGrid(c, []*sstruct.Part{sstruct.NewPart(8, 8, 1)})
	A := model_problems.PoissonOperator(g)

	s := New(c)
	s.SetDxyz([][3]float64{{2, 1, 1}})
	require.NoError(t, s.Setup(A, sstruct.NewVector(g), sstruct.NewVector(g)))
	cdirs := s.CoarseningDirections()
	require.NotEmpty(t, cdirs)
	assert.Equal(t, 1, cdirs[0][0])
}

func TestStatsIdempotent(t *testing.T) {
	c := comm.Self()
	_, A, b, x := poisson2D(c, 8)
	s := New(c)
	require.NoError(t, s.Setup(A, b, x))

	snap1, err := s.GatherStats()
	require.NoError(t, err)
	snap2, err := s.GatherStats()
	require.NoError(t, err)
	assert.Equal(t, snap1, snap2)

	require.NotEmpty(t, snap1.Levels)
	l0 := snap1.Levels[0]
	assert.Equal(t, 64, l0.Rows)
	assert.Equal(t, 64, l0.DOFs)
	assert.Equal(t, 1, l0.Parts)
	assert.Equal(t, 5, l0.MaxStencil)
	assert.Equal(t, 64, l0.NonzeroRows)
}

func TestParallelSolveMatchesSerial(t *testing.T) {
	var (
		serialIters int
		serialRel   float64
	)
	{
		c := comm.Self()
		_, A, b, x := poisson2D(c, 16)
		s := New(c)
		s.SetRelaxType(RelaxWeightedJacobi)
		s.SetZeroGuess(true)
		require.NoError(t, s.Setup(A, b, x))
		require.NoError(t, s.Solve(b, x))
		serialIters = s.NumIterations()
		serialRel, _ = s.FinalRelativeResidualNorm()
	}
	w := comm.NewWorld(4)
	err := w.Run(func(c *comm.Comm) error {
		_, A, b, x := poisson2D(c, 16)
		s := New(c)
		s.SetRelaxType(RelaxWeightedJacobi)
		s.SetZeroGuess(true)
		if err := s.Setup(A, b, x); err != nil {
			return err
		}
		if err := s.Solve(b, x); err != nil {
			return err
		}
		assert.Equal(t, serialIters, s.NumIterations())
		rel, err := s.FinalRelativeResidualNorm()
		assert.NoError(t, err)
		assert.InDelta(t, serialRel, rel, 1.e-9)
		return nil
	})
	assert.NoError(t, err)
}

func TestRelChangeTermination(t *testing.T) {
	c := comm.Self()
	_, A, b, x := poisson2D(c, 16)
	s := New(c)
	s.SetRelaxType(RelaxWeightedJacobi)
	s.SetZeroGuess(true)
	s.SetRelChange(true)
	s.SetTol(1.e-4)
	require.NoError(t, s.Setup(A, b, x))
	require.NoError(t, s.Solve(b, x))
	assert.Less(t, s.NumIterations(), 200)
}

func TestDestroy(t *testing.T) {
	c := comm.Self()
	_, A, b, x := poisson2D(c, 8)
	s := New(c)
	require.NoError(t, s.Setup(A, b, x))
	s.Destroy()
	assert.Error(t, s.Solve(b, x))
}
