package utils

import "math"

// -----------------------------------------------------------------------------

// Constants for data retention and memory management.
// Crypto markets trade around the clock, so a day of history at the default
// 60s refresh interval is 1440 points.
const (
	DefaultRetentionDays = 7

	pointsPerDay = 1440
)

// -----------------------------------------------------------------------------

// CalculateMaxDataPoints calculates max buffered points based on retention days.
func CalculateMaxDataPoints(days int) int {
	return int(math.Ceil(float64(days) * pointsPerDay))
}
