// Package slots computes the fixed appointment grid for one calendar day.
// Pure computation, no I/O.
package slots

import "fmt"

const (
	// Grid boundaries: every half hour from 09:00 inclusive to 17:00
	// exclusive, 16 cells per day.
	openHour  = 9
	closeHour = 17

	// GridSize is the number of cells per day.
	GridSize = (closeHour - openHour) * 2
)

// Report lists the full grid and the subset still free, both ascending.
type Report struct {
	All       []string
	Available []string
}

// Grid returns the 16 half-hour cells (09:00 ... 16:30) in ascending order.
func Grid() []string {
	out := make([]string, 0, GridSize)
	for hour := openHour; hour < closeHour; hour++ {
		for _, minute := range []int{0, 30} {
			out = append(out, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return out
}

// Compute subtracts booked times from the grid. Entries that are not valid
// grid cells (malformed times, empty strings, off-grid values) are skipped
// rather than failing the whole computation. Declared duration does not
// widen occupancy: every booking holds exactly one cell.
func Compute(bookedTimes []string) Report {
	all := Grid()

	valid := make(map[string]bool, len(all))
	for _, cell := range all {
		valid[cell] = true
	}

	booked := make(map[string]bool, len(bookedTimes))
	for _, t := range bookedTimes {
		if valid[t] {
			booked[t] = true
		}
	}

	available := make([]string, 0, len(all))
	for _, cell := range all {
		if !booked[cell] {
			available = append(available, cell)
		}
	}

	return Report{All: all, Available: available}
}

// ValidCell reports whether t names a cell on the grid.
func ValidCell(t string) bool {
	for _, cell := range Grid() {
		if cell == t {
			return true
		}
	}
	return false
}
