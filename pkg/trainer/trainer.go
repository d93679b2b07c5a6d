// Package trainer drives the outer train/save/freeze/evaluate loop over a
// Game and Learner. It is the only package under pkg/ that imports zerolog
// directly; pkg/solver and pkg/eval stay library-shaped and quiet.
package trainer

import (
	"fmt"
	"math/rand"
	"os"
	"reflect"

	"github.com/rs/zerolog"

	"github.com/ehrlich-b/cfrsolver/pkg/eval"
	"github.com/ehrlich-b/cfrsolver/pkg/game"
	"github.com/ehrlich-b/cfrsolver/pkg/solver"
)

// Config holds the operator controls the core accepts from its host: step
// size between checkpoints/evaluations, total iteration budget, and where
// checkpoints live.
type Config struct {
	// StepSize is K, the number of training iterations run between each
	// save/freeze/evaluate cycle.
	StepSize int
	// MaxIterations is the training-iteration budget for Run; the loop stops
	// at the first step boundary at which at least this many have been
	// completed, so the total can exceed it by up to StepSize-1.
	MaxIterations int
	// EvalRounds is M, the number of sampled full plays per matchup in the
	// evaluation step.
	EvalRounds int
	// CheckpointDir is the directory the checkpoint file is written under;
	// its name is derived from the game and learner type names.
	CheckpointDir string
	// Seed drives evaluation RNGs and the learner's own worker seeds.
	Seed int64

	Learner solver.Config
}

// DefaultConfig returns a config suitable for a short interactive run:
// step size 10,000, no iteration cap (caller decides when to stop calling
// Step), 1,000 evaluation rounds, checkpoints in the working directory.
func DefaultConfig() Config {
	return Config{
		StepSize:      10_000,
		MaxIterations: 0,
		EvalRounds:    1_000,
		CheckpointDir: ".",
		Seed:          1,
		Learner:       solver.DefaultConfig(),
	}
}

// Validate checks the config is internally consistent.
func (c Config) Validate() error {
	if c.StepSize <= 0 {
		return fmt.Errorf("trainer: step size must be > 0, got %d", c.StepSize)
	}
	if c.EvalRounds <= 0 {
		return fmt.Errorf("trainer: eval rounds must be > 0, got %d", c.EvalRounds)
	}
	if c.CheckpointDir == "" {
		return fmt.Errorf("trainer: checkpoint dir must be set")
	}
	return c.Learner.Validate()
}

// Trainer runs the train/save/freeze/evaluate loop for one (Game, Learner)
// pairing: derive a checkpoint filename, attempt to load it, freeze a
// baseline, then repeatedly train/save/freeze/evaluate.
type Trainer[A game.Action] struct {
	cfg        Config
	prototype  game.Game[A]
	learner    *solver.Learner[A]
	checkpoint string
	logger     zerolog.Logger

	baseline  *solver.FrozenPlayer[A]
	completed int
	evalRNG   *rand.Rand
}

// New constructs a Trainer for prototype, deriving the checkpoint path from
// the game's and learner's concrete type names and attempting to load any
// existing checkpoint. A missing checkpoint is skipped silently; an
// unreadable one is logged once. Either way the table starts empty rather
// than construction failing.
func New[A game.Action](cfg Config, prototype game.Game[A], logger zerolog.Logger) (*Trainer[A], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	learner := solver.New[A](cfg.Learner, cfg.Seed)
	checkpointPath := checkpointFilename(cfg.CheckpointDir, prototype, learner)

	t := &Trainer[A]{
		cfg:        cfg,
		prototype:  prototype,
		learner:    learner,
		checkpoint: checkpointPath,
		logger:     logger,
		evalRNG:    rand.New(rand.NewSource(cfg.Seed ^ 0x5eed)),
	}

	if _, err := os.Stat(checkpointPath); err == nil {
		if err := solver.LoadCheckpoint(learner.Table(), checkpointPath); err != nil {
			t.logger.Warn().Err(err).Str("path", checkpointPath).Msg("could not load checkpoint, starting from an empty table")
		} else {
			t.logger.Info().Str("path", checkpointPath).Int("infosets", learner.Table().Size()).Msg("loaded checkpoint")
		}
	}

	t.baseline = solver.Freeze[A](learner.Table(), cfg.Seed^0xbaba5e)
	return t, nil
}

// checkpointFilename derives a stable filename from the game's and
// learner's concrete type names, with every character outside
// [A-Za-z0-9._] replaced by '_', e.g.
// "kuhn13.Game_solver.Learner_github.com_ehrlich_b_cfrsolver_pkg_game_kuhn13.Action_.checkpoint".
func checkpointFilename[A game.Action](dir string, prototype game.Game[A], learner *solver.Learner[A]) string {
	gameName := reflect.TypeOf(prototype).Elem().String()
	learnerName := reflect.TypeOf(learner).Elem().String()
	return fmt.Sprintf("%s/%s_%s.checkpoint", dir, sanitize(gameName), sanitize(learnerName))
}

func sanitize(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// Step runs one training step of size cfg.StepSize: it trains K more
// iterations, saves, and freezes the new current snapshot, then evaluates
// it before returning the results. The previous current snapshot becomes
// the new baseline for the next call's evaluation.
func (t *Trainer[A]) Step() (eval.Results, error) {
	old := t.baseline

	t.learner.Train(t.prototype, t.cfg.StepSize, t.cfg.StepSize/10, func(completed int) {
		t.logger.Debug().Int("iteration", t.completed+completed).Msg("training progress")
	})
	t.completed += t.cfg.StepSize

	if err := solver.SaveCheckpoint(t.learner.Table(), t.checkpoint); err != nil {
		return eval.Results{}, fmt.Errorf("trainer: save checkpoint: %w", err)
	}
	t.logger.Info().Str("path", t.checkpoint).Int("iterations", t.completed).Msg("saved checkpoint")

	current := solver.Freeze[A](t.learner.Table(), t.cfg.Seed^int64(t.completed))
	t.baseline = current

	random := solver.NewRandomPlayer[A](t.cfg.Seed ^ int64(t.completed) ^ 0x5a1ad)
	results := eval.Run[A](t.prototype, current, old, random, t.cfg.EvalRounds, t.evalRNG)

	t.logger.Info().
		Int("iterations", t.completed).
		Float64("vs_random_as_p0", results.CurrentVsRandomAsP0).
		Float64("vs_random_as_p1", results.RandomVsCurrentAsP1).
		Float64("self_play_sanity", results.SelfPlaySanity).
		Float64("improvement", results.Improvement).
		Msg("evaluation complete")

	return results, nil
}

// Run calls Step until cfg.MaxIterations training iterations have been
// completed (MaxIterations<=0 means run forever, until the caller's
// process is killed between steps; every step leaves a consistent
// checkpoint on disk, so a kill between steps loses nothing already
// saved).
func (t *Trainer[A]) Run() error {
	for t.cfg.MaxIterations <= 0 || t.completed < t.cfg.MaxIterations {
		if _, err := t.Step(); err != nil {
			return err
		}
	}
	return nil
}

// CheckpointPath returns the derived checkpoint file path.
func (t *Trainer[A]) CheckpointPath() string { return t.checkpoint }

// Completed returns the number of training iterations run so far.
func (t *Trainer[A]) Completed() int { return t.completed }

// Current returns the most recently frozen snapshot.
func (t *Trainer[A]) Current() *solver.FrozenPlayer[A] { return t.baseline }
