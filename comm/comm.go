// Package comm provides an in-process SPMD communicator: a fixed-size World
// of ranks, each running as its own goroutine, synchronizing through blocking
// collective calls. The interface follows the MPI collectives the solver
// needs (barrier, reductions, variable-length all-gather); all calls must be
// made by every rank in the same order, in lockstep.
package comm

import (
	"fmt"
	"sync"
)

// Op selects the combining operation of a reduction
type Op uint8

const (
	OpSum Op = iota
	OpMin
	OpMax
)

type World struct {
	np     int
	bar    *barrier
	fslots [][]float64
	islots [][]int
}

func NewWorld(np int) (w *World) {
	if np < 1 {
		panic("comm: world size must be at least 1")
	}
	w = &World{
		np:     np,
		bar:    newBarrier(np),
		fslots: make([][]float64, np),
		islots: make([][]int, np),
	}
	return
}

func (w *World) Size() int { return w.np }

func (w *World) Comm(rank int) *Comm {
	if rank < 0 || rank >= w.np {
		panic(fmt.Sprintf("comm: rank %d out of range [0,%d)", rank, w.np))
	}
	return &Comm{w: w, rank: rank}
}

// Run executes f once per rank, each on its own goroutine, and blocks until
// all ranks return. The first non-nil error (by rank order) is returned.
func (w *World) Run(f func(c *Comm) error) error {
	var (
		wg   sync.WaitGroup
		errs = make([]error, w.np)
	)
	for n := 0; n < w.np; n++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			errs[rank] = f(w.Comm(rank))
		}(n)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Self returns a communicator over a single-rank world, for serial use
func Self() *Comm {
	return NewWorld(1).Comm(0)
}

// Comm is one rank's handle on a World. A Comm must only be used from the
// goroutine of its rank.
type Comm struct {
	w    *World
	rank int
}

func (c *Comm) Rank() int { return c.rank }
func (c *Comm) Size() int { return c.w.np }

func (c *Comm) Barrier() { c.w.bar.await() }

func combine(op Op, dst, src []float64) {
	if len(src) != len(dst) {
		panic(fmt.Sprintf("comm: mismatched reduction lengths %d and %d", len(dst), len(src)))
	}
	switch op {
	case OpSum:
		for i, v := range src {
			dst[i] += v
		}
	case OpMin:
		for i, v := range src {
			if v < dst[i] {
				dst[i] = v
			}
		}
	case OpMax:
		for i, v := range src {
			if v > dst[i] {
				dst[i] = v
			}
		}
	default:
		panic("comm: unknown reduction op")
	}
}

// AllReduce combines vals element-wise across all ranks; every rank receives
// the combined result. Every rank iterates the contributions in rank order,
// so all ranks compute bit-identical results.
func (c *Comm) AllReduce(op Op, vals []float64) (out []float64) {
	w := c.w
	w.fslots[c.rank] = vals
	w.bar.await()
	out = make([]float64, len(vals))
	copy(out, w.fslots[0])
	for n := 1; n < w.np; n++ {
		combine(op, out, w.fslots[n])
	}
	w.bar.await() // contributions read on all ranks, slots reusable
	return
}

// AllReduce1 is AllReduce for a single value
func (c *Comm) AllReduce1(op Op, val float64) float64 {
	return c.AllReduce(op, []float64{val})[0]
}

// Reduce combines vals across all ranks; only rank 0 receives the result,
// all other ranks return nil.
func (c *Comm) Reduce(op Op, vals []float64) (out []float64) {
	w := c.w
	w.fslots[c.rank] = vals
	w.bar.await()
	if c.rank == 0 {
		out = make([]float64, len(vals))
		copy(out, w.fslots[0])
		for n := 1; n < w.np; n++ {
			combine(op, out, w.fslots[n])
		}
	}
	w.bar.await()
	return
}

// AllGatherv concatenates each rank's loc slice in rank order; every rank
// receives the full concatenation. If dst is large enough it is reused.
func (c *Comm) AllGatherv(loc []float64, dst []float64) (out []float64) {
	w := c.w
	w.fslots[c.rank] = loc
	w.bar.await()
	total := 0
	for n := 0; n < w.np; n++ {
		total += len(w.fslots[n])
	}
	if cap(dst) >= total {
		out = dst[:total]
	} else {
		out = make([]float64, total)
	}
	at := 0
	for n := 0; n < w.np; n++ {
		at += copy(out[at:], w.fslots[n])
	}
	w.bar.await()
	return
}

// AllGathervInt is AllGatherv for int slices
func (c *Comm) AllGathervInt(loc []int) (out []int) {
	w := c.w
	w.islots[c.rank] = loc
	w.bar.await()
	total := 0
	for n := 0; n < w.np; n++ {
		total += len(w.islots[n])
	}
	out = make([]int, total)
	at := 0
	for n := 0; n < w.np; n++ {
		at += copy(out[at:], w.islots[n])
	}
	w.bar.await()
	return
}

// barrier is a cyclic barrier over np participants
type barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	np    int
	count int
	gen   int
}

func newBarrier(np int) (b *barrier) {
	b = &barrier{np: np}
	b.cond = sync.NewCond(&b.mu)
	return
}

func (b *barrier) await() {
	b.mu.Lock()
	gen := b.gen
	b.count++
	if b.count == b.np {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		b.mu.Unlock()
		return
	}
	for gen == b.gen {
		b.cond.Wait()
	}
	b.mu.Unlock()
}
