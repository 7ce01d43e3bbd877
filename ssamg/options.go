package ssamg

import "fmt"

// RelaxType selects the smoother applied at every level. The choice is made
// once per solver configuration, not per level.
type RelaxType int

const (
	RelaxJacobi RelaxType = iota
	RelaxWeightedJacobi
	RelaxRedBlackGS
)

func (rt RelaxType) String() string {
	switch rt {
	case RelaxJacobi:
		return "Jacobi"
	case RelaxWeightedJacobi:
		return "Weighted Jacobi"
	case RelaxRedBlackGS:
		return "Red-Black Gauss-Seidel"
	}
	return fmt.Sprintf("RelaxType(%d)", int(rt))
}

// Options is the user-tunable solver configuration. Setters on the Solver
// stage values here; Setup freezes a copy, so the configuration driving a
// solve cannot change mid-iteration.
type Options struct {
	Tol            float64
	MaxIter        int
	RelChange      bool
	ZeroGuess      bool
	MaxLevels      int // 0 picks the deepest possible hierarchy
	RelaxType      RelaxType
	RelaxWeight    float64 // 0 picks a default for the relaxation type
	NumPreRelax    int
	NumPostRelax   int
	NumCoarseRelax int // negative picks a default at setup
	Logging        int
	PrintLevel     int
	Dxyz           [][3]float64 // per-part physical spacing, nil = unit
}

func DefaultOptions() Options {
	return Options{
		Tol:            1.0e-06,
		MaxIter:        200,
		MaxLevels:      0,
		RelaxType:      RelaxJacobi,
		NumPreRelax:    1,
		NumPostRelax:   1,
		NumCoarseRelax: -1,
	}
}

// validate runs the lazy parameter checks deferred from the setters
func (o Options) validate(nparts int) error {
	if o.Tol < 0 {
		return fmt.Errorf("ssamg: negative tolerance %g", o.Tol)
	}
	if o.MaxIter < 0 {
		return fmt.Errorf("ssamg: negative max iteration count %d", o.MaxIter)
	}
	if o.MaxLevels < 0 {
		return fmt.Errorf("ssamg: negative max level count %d", o.MaxLevels)
	}
	if o.NumPreRelax < 0 || o.NumPostRelax < 0 {
		return fmt.Errorf("ssamg: negative sweep count (pre %d, post %d)",
			o.NumPreRelax, o.NumPostRelax)
	}
	switch o.RelaxType {
	case RelaxJacobi, RelaxWeightedJacobi, RelaxRedBlackGS:
	default:
		return fmt.Errorf("ssamg: unknown relaxation type %d", int(o.RelaxType))
	}
	if o.Dxyz != nil && len(o.Dxyz) != nparts {
		return fmt.Errorf("ssamg: spacing set for %d parts, grid has %d",
			len(o.Dxyz), nparts)
	}
	return nil
}

// defaultWeight is the relaxation factor used when the user supplies none.
// The weighted family gets the classic 2/3 damping; estimating a sharper
// per-part weight spectrally is the linear algebra layer's concern.
func (o Options) defaultWeight() float64 {
	if o.RelaxWeight > 0 {
		return o.RelaxWeight
	}
	if o.RelaxType == RelaxWeightedJacobi {
		return 2.0 / 3.0
	}
	return 1.0
}
