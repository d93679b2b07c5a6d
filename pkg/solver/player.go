package solver

import (
	"math/rand"

	"github.com/ehrlich-b/cfrsolver/pkg/game"
)

// FrozenPlayer is an immutable-for-play snapshot of a RegretTable: an
// independent deep copy taken at a point in time, so later mutations to
// the learner's live table never affect it. It only ever reads its own
// copy; GetMove is its sole exported operation.
type FrozenPlayer[A game.Action] struct {
	regrets map[string][]float64
	rng     *rand.Rand
}

// Freeze takes a snapshot of table, usable as a Player from this point
// forward regardless of further training on table.
func Freeze[A game.Action](table *RegretTable, seed int64) *FrozenPlayer[A] {
	return &FrozenPlayer[A]{
		regrets: table.snapshot(),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// GetMove derives the regret-matching strategy for infoSet from the frozen
// snapshot (uniform if the infoset was never visited during training, or
// if its recorded action count no longer matches, which can only happen
// if the caller passes a different game variant than the one trained) and
// samples an action from it.
func (p *FrozenPlayer[A]) GetMove(playerIndex int, infoSet string, actions []A) A {
	strat := p.strategyFor(infoSet, len(actions))
	u := p.rng.Float64()
	cum := 0.0
	for i, pr := range strat {
		cum += pr
		if cum >= u {
			return actions[i]
		}
	}
	return actions[len(actions)-1]
}

func (p *FrozenPlayer[A]) strategyFor(infoSet string, n int) []float64 {
	vec, ok := p.regrets[infoSet]
	if !ok || len(vec) != n {
		return uniform(n)
	}
	strat := make([]float64, n)
	sum := 0.0
	for i, r := range vec {
		if r > 0 {
			strat[i] = r
			sum += r
		}
	}
	if sum <= 0 {
		return uniform(n)
	}
	for i := range strat {
		strat[i] /= sum
	}
	return strat
}

func uniform(n int) []float64 {
	strat := make([]float64, n)
	u := 1.0 / float64(n)
	for i := range strat {
		strat[i] = u
	}
	return strat
}

// RandomPlayer picks uniformly among the legal actions; the baseline
// opponent the evaluator measures the frozen player against.
type RandomPlayer[A game.Action] struct {
	rng *rand.Rand
}

// NewRandomPlayer returns a uniform-random player seeded with seed.
func NewRandomPlayer[A game.Action](seed int64) *RandomPlayer[A] {
	return &RandomPlayer[A]{rng: rand.New(rand.NewSource(seed))}
}

// GetMove returns a uniformly sampled action from actions.
func (p *RandomPlayer[A]) GetMove(playerIndex int, infoSet string, actions []A) A {
	return actions[p.rng.Intn(len(actions))]
}
