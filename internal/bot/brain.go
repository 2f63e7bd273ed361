package bot

import (
	"math/rand"
	"time"

	"attimuite/internal/domain"
)

// Chooser is the random source a brain draws from. *rand.Rand satisfies it.
type Chooser interface {
	Intn(n int) int
}

// Brain decides the agent's draws.
type Brain interface {
	Hand() domain.Hand
	Direction() domain.Direction
}

// UniformBrain draws every hand and direction with equal probability.
type UniformBrain struct {
	rng Chooser
}

// NewUniformBrain uses rng, or a time-seeded source when rng is nil.
func NewUniformBrain(rng Chooser) *UniformBrain {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &UniformBrain{rng: rng}
}

func (b *UniformBrain) Hand() domain.Hand {
	return domain.AllHands[b.rng.Intn(len(domain.AllHands))]
}

func (b *UniformBrain) Direction() domain.Direction {
	return domain.AllDirections[b.rng.Intn(len(domain.AllDirections))]
}
