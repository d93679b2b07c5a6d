package liarsdice

import (
	"math/rand"
	"strings"
	"testing"
)

func TestBeginGameRollsValidDice(t *testing.T) {
	g := New()
	g.BeginGame(rand.New(rand.NewSource(1)))

	for p := 0; p < nPlayers; p++ {
		for _, d := range g.hands[p] {
			if d < 1 || d > 6 {
				t.Fatalf("rolled out-of-range die %d", d)
			}
		}
	}
	if g.IsTerminal() {
		t.Fatalf("freshly begun game reported terminal")
	}
	if len(g.Actions()) != 36 {
		t.Fatalf("opening Actions() = %d, want 36 (all count/face bids)", len(g.Actions()))
	}
}

func TestActionsAfterBidExcludeLesserBids(t *testing.T) {
	g := New()
	g.BeginGame(rand.New(rand.NewSource(1)))
	g.MakeMove(Bid(2, 3))

	for _, a := range g.Actions() {
		if a.Kind == KindBid && !a.greaterThan(Bid(2, 3)) {
			t.Fatalf("Actions() included non-greater bid %v after bidding 2x3", a)
		}
	}
	foundChallenge, foundSpotOn := false, false
	for _, a := range g.Actions() {
		if a == Challenge {
			foundChallenge = true
		}
		if a == SpotOn {
			foundSpotOn = true
		}
	}
	if !foundChallenge || !foundSpotOn {
		t.Fatalf("Actions() missing CHALLENGE/SPOT_ON once a bid exists")
	}
}

func TestActionsPrunesImpossibleBidToChallengeOnly(t *testing.T) {
	g := &Game{
		hands:   [2][5]int{{1, 1, 1, 1, 1}, {2, 2, 2, 2, 2}},
		toAct:   1,
		lastBid: Bid(10, 1),
		hasBid:  true,
	}
	got := g.Actions()
	if len(got) != 1 || got[0] != Challenge {
		t.Fatalf("Actions() = %v, want only [CHALLENGE] when the bid exceeds possible dice", got)
	}
}

func TestActionsAtBidCapOnlyOffersTerminals(t *testing.T) {
	g := &Game{
		hands:    [2][5]int{{1, 2, 3, 4, 5}, {6, 5, 4, 3, 2}},
		lastBid:  Bid(3, 4),
		hasBid:   true,
		bidsMade: nMaxBids,
	}
	got := g.Actions()
	if len(got) != 2 || got[0] != Challenge || got[1] != SpotOn {
		t.Fatalf("Actions() at bid cap = %v, want [CHALLENGE SPOT_ON]", got)
	}
}

func TestChallengeResolvesByActualCount(t *testing.T) {
	g := &Game{
		hands:   [2][5]int{{4, 4, 1, 1, 1}, {4, 2, 3, 5, 6}}, // three 4s total
		toAct:   1,
		lastBid: Bid(2, 4),
		hasBid:  true,
	}
	g.MakeMove(Challenge)
	if !g.IsTerminal() {
		t.Fatalf("expected terminal after CHALLENGE")
	}
	// actual (3) >= bid count (2): the bidder (player 0) was truthful, bidder wins.
	if g.winner != 0 {
		t.Fatalf("winner = %d, want 0 (the bidder)", g.winner)
	}
	payout := g.Payout()
	if payout[0] != 1 || payout[1] != -1 {
		t.Fatalf("Payout() = %v, want [1 -1]", payout)
	}
}

func TestChallengeResolvesInChallengersFavorWhenBidWasFalse(t *testing.T) {
	g := &Game{
		hands:   [2][5]int{{2, 2, 2, 2, 2}, {2, 2, 2, 2, 2}}, // zero 1s anywhere
		toAct:   1,
		lastBid: Bid(1, 1),
		hasBid:  true,
	}
	g.MakeMove(Challenge)
	if g.winner != 1 {
		t.Fatalf("winner = %d, want 1 (the challenger, bid was false)", g.winner)
	}
}

func TestSpotOnRequiresExactMatch(t *testing.T) {
	g := &Game{
		hands:   [2][5]int{{4, 4, 1, 1, 1}, {4, 2, 3, 5, 6}}, // three 4s total
		toAct:   1,
		lastBid: Bid(3, 4),
		hasBid:  true,
	}
	g.MakeMove(SpotOn)
	if g.winner != 1 {
		t.Fatalf("winner = %d, want 1 (exact match)", g.winner)
	}
}

func TestZeroSumAcrossResolutions(t *testing.T) {
	for _, kind := range []Action{Challenge, SpotOn} {
		g := &Game{
			hands:   [2][5]int{{4, 4, 1, 1, 1}, {4, 2, 3, 5, 6}},
			toAct:   1,
			lastBid: Bid(3, 4),
			hasBid:  true,
		}
		g.MakeMove(kind)
		payout := g.Payout()
		if payout[0]+payout[1] != 0 {
			t.Fatalf("kind %v: payout %v not zero-sum", kind, payout)
		}
	}
}

func TestMakeMoveRejectsIllegalAction(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on illegal action")
		}
	}()
	g := New()
	g.BeginGame(rand.New(rand.NewSource(1)))
	g.MakeMove(Challenge) // no bid exists yet, CHALLENGE is illegal
}

func TestInformationSetHasNoTabOrNewline(t *testing.T) {
	g := New()
	g.BeginGame(rand.New(rand.NewSource(1)))
	g.MakeMove(Bid(1, 1))
	s := g.InformationSet()
	if strings.ContainsAny(s, "\t\n") {
		t.Fatalf("InformationSet() = %q contains forbidden whitespace", s)
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {
	g := New()
	g.BeginGame(rand.New(rand.NewSource(1)))
	cp := g.DeepCopy()
	cp.MakeMove(Bid(1, 1))

	if len(g.Actions()) != 36 {
		t.Fatalf("original game mutated by copy's MakeMove")
	}
}

func TestCountFaceCached(t *testing.T) {
	hand := [5]int{1, 1, 2, 3, 6}
	if got := countFaceCached(hand, 1); got != 2 {
		t.Fatalf("countFaceCached(face=1) = %d, want 2", got)
	}
	if got := countFaceCached(hand, 6); got != 1 {
		t.Fatalf("countFaceCached(face=6) = %d, want 1", got)
	}
	if got := countFaceCached(hand, 4); got != 0 {
		t.Fatalf("countFaceCached(face=4) = %d, want 0", got)
	}
}
