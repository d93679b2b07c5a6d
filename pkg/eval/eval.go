// Package eval measures a frozen player's quality by sampling full plays
// against reference opponents.
package eval

import (
	"math/rand"

	"github.com/ehrlich-b/cfrsolver/pkg/game"
)

// Results holds the average player-0 payoff from each of the five sampled
// matchups, plus the improvement metric the trainer logs.
type Results struct {
	CurrentVsRandomAsP0 float64 // current player seated as P0 against random
	RandomVsCurrentAsP1 float64 // current player seated as P1 against random; still reported as P0's average payoff
	SelfPlaySanity      float64 // current vs current, both seats; should hover near zero (zero-sum symmetry)
	CurrentVsOldAsP0    float64 // current seated as P0 against the previous snapshot
	CurrentVsOldAsP1    float64 // current seated as P1 against the previous snapshot

	// Improvement is avg(current vs old as P0) - avg(current vs old as P1):
	// positive means the new snapshot outplays the old one regardless of
	// seat.
	Improvement float64
}

// Run samples rounds full plays for each of five fixed matchups (current
// vs random in both seats, current vs itself, and current vs the previous
// snapshot in both seats) and returns their average player-0 payoffs.
// prototype is never mutated; each play begins from its own deep copy.
func Run[A game.Action](prototype game.Game[A], current, old, random game.Player[A], rounds int, rng *rand.Rand) Results {
	var r Results
	r.CurrentVsRandomAsP0 = averagePayout(prototype, [2]game.Player[A]{current, random}, rounds, rng)
	r.RandomVsCurrentAsP1 = averagePayout(prototype, [2]game.Player[A]{random, current}, rounds, rng)
	r.SelfPlaySanity = averagePayout(prototype, [2]game.Player[A]{current, current}, rounds, rng)
	r.CurrentVsOldAsP0 = averagePayout(prototype, [2]game.Player[A]{current, old}, rounds, rng)
	r.CurrentVsOldAsP1 = averagePayout(prototype, [2]game.Player[A]{old, current}, rounds, rng)
	r.Improvement = r.CurrentVsOldAsP0 - r.CurrentVsOldAsP1
	return r
}

// averagePayout plays rounds full games of prototype with seats[0]/seats[1]
// as the two players and returns the mean payoff awarded to player 0.
func averagePayout[A game.Action](prototype game.Game[A], seats [2]game.Player[A], rounds int, rng *rand.Rand) float64 {
	if rounds <= 0 {
		return 0
	}
	var total float64
	for i := 0; i < rounds; i++ {
		total += playOnce(prototype, seats, rng)
	}
	return total / float64(rounds)
}

// playOnce runs one full hand from a fresh deep copy of prototype and
// returns player 0's payout.
func playOnce[A game.Action](prototype game.Game[A], seats [2]game.Player[A], rng *rand.Rand) float64 {
	g := prototype.DeepCopy()
	g.BeginGame(rng)
	for !g.IsTerminal() {
		p := g.PlayerToAct()
		actions := g.Actions()
		infoSet := g.InformationSet()
		a := seats[p].GetMove(p, infoSet, actions)
		g.MakeMove(a)
	}
	return g.Payout()[0]
}
