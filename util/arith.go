package util

import "math"

// AddInt returns `a + b` and whether the sum fits into `limit`.
// Both operands must be non-negative. A negative `limit` stands for `math.MaxInt`.
func AddInt(a, b, limit int) (int, bool) {
	if limit < 0 {
		limit = math.MaxInt
	}
	if a < 0 || b < 0 || a > limit || b > limit-a {
		return a, false
	}

	return a + b, true
}
