package nutrition

import "math"

// Round1 rounds x to one decimal place, with halves rounding up.
func Round1(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Floor(x*10+0.5) / 10
}
