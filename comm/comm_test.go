package comm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectives(t *testing.T) {
	// AllReduce over four ranks
	{
		w := NewWorld(4)
		results := make([][]float64, 4)
		err := w.Run(func(c *Comm) error {
			vals := []float64{float64(c.Rank()), 1, float64(-c.Rank())}
			results[c.Rank()] = c.AllReduce(OpSum, vals)
			return nil
		})
		assert.NoError(t, err)
		for n := 0; n < 4; n++ {
			assert.Equal(t, []float64{6, 4, -6}, results[n])
		}
	}
	// Reduce delivers to rank 0 only
	{
		w := NewWorld(3)
		results := make([][]float64, 3)
		err := w.Run(func(c *Comm) error {
			results[c.Rank()] = c.Reduce(OpMax, []float64{float64(c.Rank())})
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, []float64{2}, results[0])
		assert.Nil(t, results[1])
		assert.Nil(t, results[2])
	}
	// Min reduction
	{
		w := NewWorld(2)
		err := w.Run(func(c *Comm) error {
			out := c.AllReduce1(OpMin, float64(10-c.Rank()))
			assert.Equal(t, 9., out)
			return nil
		})
		assert.NoError(t, err)
	}
}

func TestAllGatherv(t *testing.T) {
	w := NewWorld(3)
	err := w.Run(func(c *Comm) error {
		// Rank n contributes n+1 values
		loc := make([]float64, c.Rank()+1)
		for i := range loc {
			loc[i] = float64(c.Rank())
		}
		out := c.AllGatherv(loc, nil)
		assert.Equal(t, []float64{0, 1, 1, 2, 2, 2}, out)

		iloc := []int{c.Rank()}
		iout := c.AllGathervInt(iloc)
		assert.Equal(t, []int{0, 1, 2}, iout)
		return nil
	})
	assert.NoError(t, err)
}

func TestBackToBackCollectives(t *testing.T) {
	// Successive collectives must not interfere through slot reuse
	w := NewWorld(4)
	err := w.Run(func(c *Comm) error {
		for iter := 0; iter < 100; iter++ {
			s := c.AllReduce1(OpSum, 1)
			assert.Equal(t, 4., s)
			c.Barrier()
			m := c.AllReduce1(OpMax, float64(c.Rank()))
			assert.Equal(t, 3., m)
		}
		return nil
	})
	assert.NoError(t, err)
}

func TestSelf(t *testing.T) {
	c := Self()
	assert.Equal(t, 0, c.Rank())
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, 5., c.AllReduce1(OpSum, 5))
}
