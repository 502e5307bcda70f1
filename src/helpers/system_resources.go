package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Sizing for the in-memory price history buffers. The history store shrinks
// its ring buffers when the process heap crosses the limit computed here, so
// the budget only needs to be roughly right.
// -----------------------------------------------------------------------------

const (
	historyMemoryFraction = 0.75
	minMemoryLimitMB      = 512
)

// GetRecommendedMemoryLimit returns the history memory budget in MB:
// 75% of physical RAM, floored at 512MB on machines that have that much.
func GetRecommendedMemoryLimit() int {
	totalMB := GetTotalSystemMemoryMB()
	if totalMB == 0 {
		fmt.Println("Warning: Could not determine system memory. Defaulting to 512MB.")
		return minMemoryLimitMB
	}

	limit := int(float64(totalMB) * historyMemoryFraction)
	if limit < minMemoryLimitMB {
		if totalMB < minMemoryLimitMB {
			// Constrained host: hand the buffers whatever exists
			return totalMB
		}
		return minMemoryLimitMB
	}

	return limit
}
