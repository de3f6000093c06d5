package slots

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridShape(t *testing.T) {
	grid := Grid()

	require.Len(t, grid, 16)
	assert.Equal(t, "09:00", grid[0])
	assert.Equal(t, "16:30", grid[len(grid)-1])
	assert.True(t, sort.StringsAreSorted(grid), "grid must be strictly ascending")

	seen := make(map[string]bool)
	for _, cell := range grid {
		assert.False(t, seen[cell], "duplicate cell %s", cell)
		seen[cell] = true
	}
}

func TestComputeSubtractsBooked(t *testing.T) {
	rep := Compute([]string{"09:00", "14:30"})

	assert.Len(t, rep.All, 16)
	assert.Len(t, rep.Available, 14)
	assert.NotContains(t, rep.Available, "09:00")
	assert.NotContains(t, rep.Available, "14:30")
	assert.Contains(t, rep.Available, "09:30")
	assert.True(t, sort.StringsAreSorted(rep.Available))
}

func TestComputeEmpty(t *testing.T) {
	rep := Compute(nil)

	assert.Equal(t, rep.All, rep.Available)
}

func TestComputeSkipsMalformedEntries(t *testing.T) {
	rep := Compute([]string{"", "9:00", "26:00", "lunch", "10:15", "10:30"})

	// Only 10:30 is a real grid cell; everything else is ignored.
	assert.Len(t, rep.Available, 15)
	assert.NotContains(t, rep.Available, "10:30")
	assert.Contains(t, rep.Available, "10:00")
}

func TestComputeFullyBooked(t *testing.T) {
	rep := Compute(Grid())

	assert.Empty(t, rep.Available)
	assert.Len(t, rep.All, 16)
}

func TestValidCell(t *testing.T) {
	assert.True(t, ValidCell("09:00"))
	assert.True(t, ValidCell("16:30"))
	assert.False(t, ValidCell("17:00"))
	assert.False(t, ValidCell("09:15"))
	assert.False(t, ValidCell(""))
}
