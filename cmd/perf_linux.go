//go:build linux
// +build linux

package cmd

import (
	"fmt"

	perf "github.com/hodgesds/perf-utils"

	"github.com/cocteautwins/hypre/comm"
)

// countInstructions wraps f with a hardware instruction counter on rank 0
func countInstructions(c *comm.Comm, f func() error) error {
	if c.Rank() != 0 {
		return f()
	}
	pv, err := perf.CPUInstructions(f)
	if err != nil {
		// Counters can be unavailable (perf_event_paranoid), the solve
		// result still stands
		fmt.Printf("perf counters unavailable: %s\n", err.Error())
		return nil
	}
	fmt.Printf("CPU instructions: %d\n", pv.Value)
	return nil
}
