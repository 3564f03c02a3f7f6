package engine

import "math/rand/v2"

// Dice produces the number of steps a player may move
type Dice interface {
	Roll() int
}

// StandardDice rolls Count dice with Sides faces each and sums them
type StandardDice struct {
	Count int
	Sides int
	rng   *rand.Rand
}

// NewStandardDice returns a pair of six-sided dice driven by the given source
func NewStandardDice(rng *rand.Rand) *StandardDice {
	return &StandardDice{Count: 2, Sides: 6, rng: rng}
}

// Roll sums one throw of every die
func (d *StandardDice) Roll() int {
	total := 0
	for i := 0; i < d.Count; i++ {
		total += d.rng.IntN(d.Sides) + 1
	}
	return total
}

// FixedDice always rolls the same value
type FixedDice int

func (d FixedDice) Roll() int {
	return int(d)
}
