package trainer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ehrlich-b/cfrsolver/pkg/game/kuhn13"
	"github.com/ehrlich-b/cfrsolver/pkg/solver"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckpointDir = "."
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestValidateRejectsNonPositiveStepSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for step size <= 0")
	}
}

func TestNewStartsEmptyWhenNoCheckpointExists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	cfg.StepSize = 50
	cfg.EvalRounds = 20
	cfg.Learner.Parallelism = 2

	tr, err := New[kuhn13.Action](cfg, kuhn13.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.Completed() != 0 {
		t.Fatalf("Completed() = %d, want 0 for a fresh trainer", tr.Completed())
	}
}

func TestCheckpointFilenameIsDerivedFromTypeNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckpointDir = t.TempDir()

	tr, err := New[kuhn13.Action](cfg, kuhn13.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	path := tr.CheckpointPath()
	if !strings.Contains(filepath.Base(path), "kuhn13") {
		t.Fatalf("checkpoint path %q does not mention the game type", path)
	}
}

func TestStepAdvancesIterationsAndSavesCheckpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	cfg.StepSize = 200
	cfg.EvalRounds = 50
	cfg.Learner.Parallelism = 2

	tr, err := New[kuhn13.Action](cfg, kuhn13.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := tr.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if tr.Completed() != 200 {
		t.Fatalf("Completed() = %d, want 200 after one step", tr.Completed())
	}

	reloaded := solver.NewRegretTable()
	if err := solver.LoadCheckpoint(reloaded, tr.CheckpointPath()); err != nil {
		t.Fatalf("LoadCheckpoint() after Step() error = %v", err)
	}
	if reloaded.Size() == 0 {
		t.Fatalf("Step() did not persist a non-empty checkpoint")
	}
}

func TestRunStopsAtMaxIterations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CheckpointDir = t.TempDir()
	cfg.StepSize = 100
	cfg.MaxIterations = 250
	cfg.EvalRounds = 20
	cfg.Learner.Parallelism = 2

	tr, err := New[kuhn13.Action](cfg, kuhn13.New(), zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := tr.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if tr.Completed() < cfg.MaxIterations {
		t.Fatalf("Completed() = %d, want >= %d", tr.Completed(), cfg.MaxIterations)
	}
}
