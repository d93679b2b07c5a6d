// Command cfrtrain drives the trainer loop for one of the two bundled
// games from the command line.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/ehrlich-b/cfrsolver/pkg/game/kuhn13"
	"github.com/ehrlich-b/cfrsolver/pkg/game/liarsdice"
	"github.com/ehrlich-b/cfrsolver/pkg/solver"
	"github.com/ehrlich-b/cfrsolver/pkg/trainer"
)

func main() {
	gameName := flag.String("game", "kuhn13", "which game to train: kuhn13 or liarsdice")
	stepSize := flag.Int("step", 10000, "training iterations between each save/evaluate cycle")
	maxIterations := flag.Int("max-iterations", 0, "total training iterations before stopping (0 = run forever)")
	evalRounds := flag.Int("eval-rounds", 1000, "number of sampled plays per evaluation matchup")
	epsilon := flag.Float64("epsilon", 0.05, "opponent exploration rate")
	parallelism := flag.Int("parallelism", 32, "bounded worker pool size")
	checkpointDir := flag.String("checkpoint-dir", ".", "directory checkpoints are written to")
	seed := flag.Int64("seed", 1, "seed for worker/evaluation RNG sequences")
	verbose := flag.Bool("verbose", false, "log at debug level instead of info")

	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cfg := trainer.Config{
		StepSize:      *stepSize,
		MaxIterations: *maxIterations,
		EvalRounds:    *evalRounds,
		CheckpointDir: *checkpointDir,
		Seed:          *seed,
		Learner: solver.Config{
			Epsilon:     *epsilon,
			Parallelism: *parallelism,
		},
	}

	if err := run(*gameName, cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "cfrtrain: %v\n", err)
		os.Exit(1)
	}
}

func run(gameName string, cfg trainer.Config, logger zerolog.Logger) error {
	switch gameName {
	case "kuhn13":
		t, err := trainer.New[kuhn13.Action](cfg, kuhn13.New(), logger)
		if err != nil {
			return err
		}
		return t.Run()
	case "liarsdice":
		t, err := trainer.New[liarsdice.Action](cfg, liarsdice.New(), logger)
		if err != nil {
			return err
		}
		return t.Run()
	default:
		return fmt.Errorf("unknown game %q (want kuhn13 or liarsdice)", gameName)
	}
}
