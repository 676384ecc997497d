package service

import (
	"math"
	"math/rand"
	"time"
)

// RandomSource supplies uniform draws in [0,1) for the synthetic facility metrics.
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a seeded generator. A zero seed is replaced by the
// current time, so every refresh draws fresh values.
func NewRandomSource(seed int64) RandomSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// roundHalfUp matches the dashboard's rounding of .5 towards +Inf.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampFloat(lo, hi, v float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
