package transfer

import (
	"math/rand/v2"
	"time"
)

// Clock schedules settlements.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

// RandomSource decides settlement outcomes with uniform draws in [0, 1).
type RandomSource interface {
	Float64() float64
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
