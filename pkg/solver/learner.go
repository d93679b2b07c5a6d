package solver

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ehrlich-b/cfrsolver/pkg/game"
)

// Config holds the learner's operator-facing knobs: how much opponent
// sampling explores uniformly at random, and how many goroutines traverse
// in parallel. It is deliberately small; iteration counts and checkpoint
// cadence live one level up in pkg/trainer, which drives this learner in
// steps.
type Config struct {
	// Epsilon is the probability a non-training-player's sampled action is
	// replaced by a uniform-random legal action.
	Epsilon float64
	// Parallelism bounds how many self-play workers run at once.
	Parallelism int
}

// DefaultConfig returns ε=0.05 and a parallelism of 32.
func DefaultConfig() Config {
	return Config{Epsilon: 0.05, Parallelism: 32}
}

// Validate checks the config is usable.
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("solver: epsilon must be in [0,1], got %v", c.Epsilon)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("solver: parallelism must be > 0, got %d", c.Parallelism)
	}
	return nil
}

// Learner runs external-sampling CFR with optimistic-initialisation regret
// matching over a Game[A]. A single Learner owns one RegretTable, shared
// read/write by every parallel self-play worker it launches from Train.
type Learner[A game.Action] struct {
	cfg     Config
	table   *RegretTable
	seedMu  sync.Mutex
	seedRNG *rand.Rand
}

// New constructs a Learner with a fresh regret table. seed drives only the
// sequence of per-worker RNG seeds handed out by Train, never the
// traversal RNG itself directly: each worker gets its own generator, never
// a shared one.
func New[A game.Action](cfg Config, seed int64) *Learner[A] {
	return &Learner[A]{
		cfg:     cfg,
		table:   NewRegretTable(),
		seedRNG: rand.New(rand.NewSource(seed)),
	}
}

// Table returns the learner's shared regret table.
func (l *Learner[A]) Table() *RegretTable { return l.table }

func (l *Learner[A]) nextWorkerSeed() int64 {
	l.seedMu.Lock()
	defer l.seedMu.Unlock()
	return l.seedRNG.Int63()
}

// Train launches iterations self-play rollouts against prototype, each on
// its own deep copy and its own RNG, bounded to cfg.Parallelism concurrent
// workers via an errgroup. onProgress, if non-nil, is called after every
// progressEvery completed iterations with the number completed so far;
// progressEvery<=0 disables progress callbacks. Workers never return
// errors (a traversal panics rather than failing softly), so the errgroup
// here only ever serves as a bounded-concurrency fan-out, not error
// propagation.
func (l *Learner[A]) Train(prototype game.Game[A], iterations, progressEvery int, onProgress func(completed int)) {
	if iterations <= 0 {
		return
	}
	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(l.cfg.Parallelism)

	var completed atomic.Int64
	for i := 0; i < iterations; i++ {
		i := i
		g.Go(func() error {
			l.runIteration(prototype, i)
			if onProgress != nil && progressEvery > 0 {
				c := completed.Add(1)
				if c%int64(progressEvery) == 0 {
					onProgress(int(c))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
}

// runIteration plays one full self-play hand: the training player
// alternates by iteration parity (t = i mod numPlayers).
func (l *Learner[A]) runIteration(prototype game.Game[A], iteration int) {
	rng := rand.New(rand.NewSource(l.nextWorkerSeed()))
	g := prototype.DeepCopy()
	g.BeginGame(rng)
	t := iteration % g.NumPlayers()
	l.traverse(g, [2]float64{1, 1}, t, rng)
}

// traverse is the recursive external-sampling CFR step. The control flow
// already confines the regret update at the bottom to training-player
// nodes: every non-training-player node is diverted to single-action
// sampling before the regret update is ever reached, so no separate
// `if p == t` guard is needed (see DESIGN.md).
func (l *Learner[A]) traverse(g game.Game[A], reach [2]float64, t int, rng *rand.Rand) [2]float64 {
	if g.IsTerminal() {
		return g.Payout()
	}

	p := g.PlayerToAct()
	actions := g.Actions()
	infoset := g.InformationSet()

	if p != t {
		a := l.sampleOpponentAction(infoset, actions, rng)
		g.MakeMove(a)
		return l.traverse(g, reach, t, rng)
	}

	if len(actions) == 1 {
		g.MakeMove(actions[0])
		return l.traverse(g, reach, t, rng)
	}

	strategy := l.table.GetStrategy(infoset, len(actions))
	childUtil := make([][2]float64, len(actions))
	var nodeUtil [2]float64
	for i, a := range actions {
		child := g.DeepCopy()
		child.MakeMove(a)
		childReach := reach
		childReach[p] *= strategy[i]
		u := l.traverse(child, childReach, t, rng)
		childUtil[i] = u
		nodeUtil[0] += strategy[i] * u[0]
		nodeUtil[1] += strategy[i] * u[1]
	}

	oppReach := 1.0
	for i := 0; i < len(reach); i++ {
		if i != p {
			oppReach *= reach[i]
		}
	}

	deltas := make([]float64, len(actions))
	for i := range actions {
		regret := childUtil[i][p] - nodeUtil[p]
		deltas[i] = oppReach * regret
	}
	l.table.UpdateRegrets(infoset, deltas)

	return nodeUtil
}

// sampleOpponentAction implements external sampling with ε-exploration for
// the non-training player: with probability ε it picks a uniform-random
// legal action instead of following the learned strategy.
func (l *Learner[A]) sampleOpponentAction(infoset string, actions []A, rng *rand.Rand) A {
	if rng.Float64() < l.cfg.Epsilon {
		return actions[rng.Intn(len(actions))]
	}
	idx := l.table.GetMove(rng, infoset, len(actions))
	return actions[idx]
}
