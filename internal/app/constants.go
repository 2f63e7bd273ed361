package app

import "time"

// Timings are the pacing delays of the staged sequences.
type Timings struct {
	// InitialRock is how long both players show rock before janken opens.
	InitialRock time.Duration
	// Reveal is how long a janken or duel outcome stays on screen.
	Reveal time.Duration
	// Buffer separates hiding the hands from entering the duel.
	Buffer time.Duration
}

// DefaultTimings are the stock delays between staged steps.
var DefaultTimings = Timings{
	InitialRock: 1200 * time.Millisecond,
	Reveal:      2 * time.Second,
	Buffer:      250 * time.Millisecond,
}

// withDefaults fills unset delays from DefaultTimings.
func (t Timings) withDefaults() Timings {
	if t.InitialRock <= 0 {
		t.InitialRock = DefaultTimings.InitialRock
	}
	if t.Reveal <= 0 {
		t.Reveal = DefaultTimings.Reveal
	}
	if t.Buffer <= 0 {
		t.Buffer = DefaultTimings.Buffer
	}
	return t
}

