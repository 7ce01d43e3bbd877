package utils

import "fmt"

// RowPartition splits a global row range into contiguous bands, one per rank,
// with a maximum imbalance of one row between any two bands.
type RowPartition struct {
	GlobalSize int // GlobalSize is partitioned into NumRanks bands
	NumRanks   int
	Bands      [][2]int // Beginning and end row of each band, half open
}

func NewRowPartition(numRanks, globalSize int) (rp *RowPartition) {
	rp = &RowPartition{
		GlobalSize: globalSize,
		NumRanks:   numRanks,
		Bands:      make([][2]int, numRanks),
	}
	for n := 0; n < numRanks; n++ {
		rp.Bands[n] = rp.split1D(n)
	}
	return
}

func (rp *RowPartition) split1D(rank int) (band [2]int) {
	// Splits the row range into NumRanks pieces, spreading the remainder
	// over the first bands so no band is more than one row larger
	var (
		nBand            = rp.GlobalSize / rp.NumRanks
		startAdd, endAdd int
		remainder        = rp.GlobalSize % rp.NumRanks
	)
	if remainder != 0 {
		if rank+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = rank
			endAdd = 1
		}
	}
	band[0] = rank*nBand + startAdd
	band[1] = band[0] + nBand + endAdd
	return
}

func (rp *RowPartition) Band(rank int) (lo, hi int) {
	lo, hi = rp.Bands[rank][0], rp.Bands[rank][1]
	return
}

func (rp *RowPartition) BandSize(rank int) (size int) {
	lo, hi := rp.Band(rank)
	size = hi - lo
	return
}

// Owner returns the rank whose band contains row
func (rp *RowPartition) Owner(row int) (rank int) {
	if row < 0 || row >= rp.GlobalSize {
		panic(fmt.Sprintf("row %d out of range [0,%d)", row, rp.GlobalSize))
	}
	// Initial guess, then walk to the containing band
	rank = int(float64(rp.NumRanks*row) / float64(rp.GlobalSize))
	for !(rp.Bands[rank][0] <= row && rp.Bands[rank][1] > row) {
		if rp.Bands[rank][0] > row {
			rank--
		} else {
			rank++
		}
	}
	return
}
