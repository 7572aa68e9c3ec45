// Package rolling implements the incremental gap-aware rolling stdev engine.
// It maintains a bounded FIFO window of contiguous hourly samples per
// security and derives population standard deviations in O(1) per sample
// from running sums.
package rolling

import "math"

// Accumulator keeps the running sum and sum of squares of the values
// currently held in one window field. Push and Evict are O(1); variance is
// derived without re-reading the window.
type Accumulator struct {
	sum        float64
	sumSquares float64
}

// Push adds v to the running sums.
func (a *Accumulator) Push(v float64) {
	a.sum += v
	a.sumSquares += v * v
}

// Evict removes v from the running sums. The caller must guarantee v was
// previously pushed and not yet evicted; the window's FIFO order enforces
// this. Violating the precondition silently corrupts the sums.
func (a *Accumulator) Evict(v float64) {
	a.sum -= v
	a.sumSquares -= v * v
}

// Variance returns the population variance of the n values currently
// accumulated, floored at zero to absorb floating-point cancellation when
// the true variance is at or near zero.
func (a *Accumulator) Variance(n int) float64 {
	if n <= 0 {
		return 0
	}
	mean := a.sum / float64(n)
	v := a.sumSquares/float64(n) - mean*mean
	return math.Max(0, v)
}

// Stdev returns the population standard deviation of the n accumulated
// values. Never NaN: the variance is clamped before the square root.
func (a *Accumulator) Stdev(n int) float64 {
	return math.Sqrt(a.Variance(n))
}

// Sum returns the current running sum.
func (a *Accumulator) Sum() float64 { return a.sum }

// SumSquares returns the current running sum of squares.
func (a *Accumulator) SumSquares() float64 { return a.sumSquares }

// Reset clears the running sums.
func (a *Accumulator) Reset() {
	a.sum = 0
	a.sumSquares = 0
}

// Restore sets the running sums from persisted state.
func (a *Accumulator) Restore(sum, sumSquares float64) {
	a.sum = sum
	a.sumSquares = sumSquares
}
