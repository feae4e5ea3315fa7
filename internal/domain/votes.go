package domain

import "math"

// NeededSkipVotes returns the number of distinct skip votes that force
// advancement past the current song: unanimity for rooms of one or two
// authenticated listeners, ceil(sqrt(n)) above that so the threshold stays
// attainable as rooms grow.
func NeededSkipVotes(n int) int {
	if n <= 2 {
		return n
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}
