// Package game defines the small polymorphic contract every concrete game
// implements so the CFR learner (pkg/solver) can traverse it without knowing
// anything about cards, dice, or bidding.
package game

import "math/rand"

// Action is the opaque per-game move symbol the learner reasons about. It
// must be equality-comparable (map lookups, regret-vector indexing) and
// convertible to a stable string for logs, tests, and checkpoint replay.
type Action interface {
	comparable
	String() string
}

// Game is the contract a two-player zero-sum extensive-form game with
// imperfect information implements. A is the game's action alphabet.
//
// Invariants an implementation must uphold:
//   - PlayerToAct returns 0 or 1 while IsTerminal is false.
//   - IsTerminal implies Payout returns a length-2 zero-sum pair.
//   - DeepCopy yields a value indistinguishable from the original under
//     every other method on this interface; the shared prototype is never
//     mutated by a worker's copy.
//   - InformationSet is a total function of everything the acting player
//     knows; two states the acting player cannot distinguish yield the
//     same string, and the string never contains a tab or newline.
//   - Actions is deterministic in the current state and empty iff terminal.
type Game[A Action] interface {
	// BeginGame deals private information and resets history and turn. rng
	// is the calling worker's own generator; implementations must never
	// reach for a package-global source of randomness.
	BeginGame(rng *rand.Rand)

	// NumPlayers always returns 2 for the games in this module.
	NumPlayers() int

	// PlayerToAct returns the index of the player whose turn it is. Its
	// value is meaningless once IsTerminal is true.
	PlayerToAct() int

	// Actions returns the ordered, deterministic list of legal moves from
	// the current state. Empty if and only if the state is terminal.
	Actions() []A

	// MakeMove applies a to the current state. It panics if the state is
	// already terminal or a is not currently legal: both are programmer
	// errors, not conditions a caller can recover from.
	MakeMove(a A)

	// IsTerminal reports whether the hand/round has ended.
	IsTerminal() bool

	// Payout returns the zero-sum payoff for both players. It panics if
	// called on a non-terminal state.
	Payout() [2]float64

	// InformationSet returns the string identifying what the acting
	// player currently knows. Stable across runs; required for checkpoint
	// compatibility.
	InformationSet() string

	// DeepCopy returns an independent copy of the game, safe to mutate
	// without affecting the receiver.
	DeepCopy() Game[A]
}

// Player is the surface consumed by evaluators: given whose turn it is, the
// information set they face, and the actions on offer, choose one.
type Player[A Action] interface {
	GetMove(playerIndex int, infoSet string, actions []A) A
}
