// Package liarsdice implements the two-player five-dice bidding game used
// as the second CFR training workload. The move alphabet and
// information-set shape follow the sibling kuhn13 package's conventions
// (small comparable Action type with a String method, "<private>|<public>"
// info-set strings) so the two games read as one family.
package liarsdice

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/ehrlich-b/cfrsolver/pkg/game"
)

const (
	nPlayers  = 2
	nDice     = 5
	nMaxBids  = 20
	windowLen = 3
)

// ActionKind distinguishes a bid from the two terminal claims.
type ActionKind uint8

const (
	KindBid ActionKind = iota
	KindChallenge
	KindSpotOn
)

// Action is either a (count, face) bid or one of the two reserved terminal
// sentinels, CHALLENGE and SPOT_ON. It is a plain comparable struct, so two
// Actions with equal fields compare equal without custom Equal methods.
type Action struct {
	Kind  ActionKind
	Count int // 1..6, meaningful only when Kind == KindBid
	Face  int // 1..6, meaningful only when Kind == KindBid
}

// Bid constructs a bid action for count c of face f.
func Bid(c, f int) Action { return Action{Kind: KindBid, Count: c, Face: f} }

// Challenge is the CHALLENGE terminal action.
var Challenge = Action{Kind: KindChallenge}

// SpotOn is the SPOT_ON terminal action.
var SpotOn = Action{Kind: KindSpotOn}

// String renders the action for logs, tests, and information-set strings.
func (a Action) String() string {
	switch a.Kind {
	case KindChallenge:
		return "CHALLENGE"
	case KindSpotOn:
		return "SPOT_ON"
	default:
		return fmt.Sprintf("%dx%d", a.Count, a.Face)
	}
}

func (a Action) greaterThan(other Action) bool {
	if a.Count != other.Count {
		return a.Count > other.Count
	}
	return a.Face > other.Face
}

var _ game.Game[Action] = (*Game)(nil)

// Game is a single round of Liar's Dice between two five-dice players.
type Game struct {
	hands    [2][5]int
	toAct    int
	terminal bool
	winner   int
	bidsMade int
	lastBid  Action
	hasBid   bool
	window   [windowLen]Action // most-recent first; zero value pads empty slots
}

// New returns a Liar's Dice game prototype.
func New() *Game {
	return &Game{}
}

// BeginGame rolls five dice per player (faces 1..6, i.i.d. uniform) using
// the caller-owned rng and resets bidding state.
func (g *Game) BeginGame(rng *rand.Rand) {
	for p := 0; p < nPlayers; p++ {
		for d := 0; d < nDice; d++ {
			g.hands[p][d] = rng.Intn(6) + 1
		}
	}
	g.toAct = 0
	g.terminal = false
	g.winner = -1
	g.bidsMade = 0
	g.lastBid = Action{}
	g.hasBid = false
	g.window = [windowLen]Action{}
}

// NumPlayers always returns 2.
func (g *Game) NumPlayers() int { return 2 }

// PlayerToAct returns whose turn it is; meaningless once terminal.
func (g *Game) PlayerToAct() int { return g.toAct }

// Actions returns the legal moves from the current state: once the bid cap
// is reached only CHALLENGE/SPOT_ON remain; a bid whose
// count cannot possibly be truthful given the acting player's own hand and
// the number of opposing dice prunes every option but CHALLENGE; otherwise
// every bid strictly greater than the last (lexicographic on count then
// face), plus CHALLENGE/SPOT_ON once a last bid exists.
func (g *Game) Actions() []Action {
	if g.terminal {
		return nil
	}
	if g.bidsMade >= nMaxBids {
		return []Action{Challenge, SpotOn}
	}
	if !g.hasBid {
		acts := make([]Action, 0, 36)
		for c := 1; c <= 6; c++ {
			for f := 1; f <= 6; f++ {
				acts = append(acts, Bid(c, f))
			}
		}
		return acts
	}

	ownCount := countFaceCached(g.hands[g.toAct], g.lastBid.Face)
	maxPossible := (nPlayers-1)*nDice + ownCount
	if g.lastBid.Count > maxPossible {
		return []Action{Challenge}
	}

	acts := make([]Action, 0, 37)
	for c := 1; c <= 6; c++ {
		for f := 1; f <= 6; f++ {
			cand := Bid(c, f)
			if cand.greaterThan(g.lastBid) {
				acts = append(acts, cand)
			}
		}
	}
	acts = append(acts, Challenge, SpotOn)
	return acts
}

func isLegal(actions []Action, a Action) bool {
	for _, cand := range actions {
		if cand == a {
			return true
		}
	}
	return false
}

// MakeMove applies a. Bids advance the turn and the bid counter; CHALLENGE
// and SPOT_ON resolve the round and end it. The sliding window is updated
// for terminal actions too (storing the CHALLENGE/SPOT_ON sentinel into the
// most-recent slot); this never affects payoff since the game ends on the
// same move, but the behaviour is preserved deliberately rather than
// special-cased away.
func (g *Game) MakeMove(a Action) {
	if g.terminal {
		panic("liarsdice: make move in terminal state")
	}
	if !isLegal(g.Actions(), a) {
		panic(fmt.Sprintf("liarsdice: invalid action %s", a))
	}

	actor := g.toAct
	switch a.Kind {
	case KindBid:
		g.bidsMade++
		g.lastBid = a
		g.hasBid = true
		g.pushWindow(a)
		g.toAct = 1 - actor
	case KindChallenge:
		actual := totalFaceCount(g.hands, g.lastBid.Face)
		if actual >= g.lastBid.Count {
			g.winner = 1 - actor // bidder was truthful (or exactly met): bidder wins
		} else {
			g.winner = actor
		}
		g.pushWindow(a)
		g.terminal = true
	case KindSpotOn:
		actual := totalFaceCount(g.hands, g.lastBid.Face)
		if actual == g.lastBid.Count {
			g.winner = actor
		} else {
			g.winner = 1 - actor
		}
		g.pushWindow(a)
		g.terminal = true
	}
}

func (g *Game) pushWindow(a Action) {
	g.window[2] = g.window[1]
	g.window[1] = g.window[0]
	g.window[0] = a
}

// IsTerminal reports whether the round has resolved.
func (g *Game) IsTerminal() bool { return g.terminal }

// Payout returns ±1 for winner/loser. Panics if not terminal.
func (g *Game) Payout() [2]float64 {
	if !g.terminal {
		panic("liarsdice: payout on non-terminal state")
	}
	var payout [2]float64
	payout[g.winner] = 1
	payout[1-g.winner] = -1
	return payout
}

// InformationSet returns the acting player's own hand, an explicit
// turn-limit marker, and the most-recent-first sliding three-bid window.
// This deliberately omits a player-index tag: the same string can be
// reached by either seat holding the same hand at the same point in the
// bidding, which is intentional game symmetry, not a collision bug (see
// DESIGN.md).
func (g *Game) InformationSet() string {
	var b strings.Builder
	b.WriteString(handToken(g.hands[g.toAct]))
	b.WriteByte('|')
	if g.bidsMade >= nMaxBids {
		b.WriteString("lim1")
	} else {
		b.WriteString("lim0")
	}
	b.WriteByte('|')
	for i, a := range g.window {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(windowToken(a))
	}
	return b.String()
}

func windowToken(a Action) string {
	switch a.Kind {
	case KindBid:
		if a.Count == 0 {
			return "000"
		}
		return fmt.Sprintf("c%df%d", a.Count, a.Face)
	case KindChallenge:
		return "CHAL"
	case KindSpotOn:
		return "SPOT"
	default:
		return "000"
	}
}

func handToken(hand [5]int) string {
	sorted := append([]int(nil), hand[:]...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	var b strings.Builder
	for _, d := range sorted {
		b.WriteByte(byte('0' + d))
	}
	return b.String()
}

// DeepCopy returns an independent copy of the game. Every field is a
// scalar or a fixed-size array (no slices or maps), so a value copy already
// suffices.
func (g *Game) DeepCopy() game.Game[Action] {
	cp := *g
	return &cp
}

// faceCountCache memoises (sorted-hand, face) -> count. It is process-wide
// and never invalidated: the mapping is a pure function of its key, and
// Actions() calls it on the hot path for every decision. Benign recompute
// races under concurrent first-access are acceptable.
var faceCountCache sync.Map // key uint32 -> int

func encodeHand(hand [5]int) uint32 {
	sorted := append([]int(nil), hand[:]...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	var v uint32
	for _, d := range sorted {
		v = v*10 + uint32(d)
	}
	return v
}

func countFaceCached(hand [5]int, face int) int {
	key := encodeHand(hand)*10 + uint32(face)
	if v, ok := faceCountCache.Load(key); ok {
		return v.(int)
	}
	count := 0
	for _, d := range hand {
		if d == face {
			count++
		}
	}
	faceCountCache.Store(key, count)
	return count
}

func totalFaceCount(hands [2][5]int, face int) int {
	return countFaceCached(hands[0], face) + countFaceCached(hands[1], face)
}
