package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Orchestrator runs a set of stages in dependency order. Unlike the
// swallow-and-continue orchestration it replaces, the graph is explicit:
// every dependency is declared, and whether a failure stops the run is a
// per-stage policy instead of an accident of ordering.
type Orchestrator struct {
	stages []Stage
	log    zerolog.Logger
}

// NewOrchestrator validates the stage graph: unique names, known
// dependencies, no cycles. Stages run in an order consistent with their
// declared dependencies, preserving registration order between independent
// stages.
func NewOrchestrator(log zerolog.Logger, stages ...Stage) (*Orchestrator, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("no stages registered")
	}

	byName := make(map[string]int, len(stages))
	for i, s := range stages {
		if s.Name == "" {
			return nil, fmt.Errorf("stage %d has no name", i)
		}
		if s.Run == nil {
			return nil, fmt.Errorf("stage %s has no run func", s.Name)
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate stage name %s", s.Name)
		}
		byName[s.Name] = i
	}

	ordered, err := topoSort(stages, byName)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{stages: ordered, log: log}, nil
}

// Run executes the graph. A fail-fast stage failure aborts the run and is
// returned as the error; soft failures only show up in the report.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{Started: time.Now()}
	defer func() { report.Finished = time.Now() }()

	status := make(map[string]StageStatus, len(o.stages))
	var abort error

	for _, stage := range o.stages {
		if abort != nil {
			status[stage.Name] = StageSkipped
			report.Results = append(report.Results, StageResult{Name: stage.Name, Status: StageSkipped})
			continue
		}

		skipped := false
		for _, dep := range stage.DependsOn {
			switch status[dep] {
			case StageSkipped:
				skipped = true
			case StageFailed:
				o.log.Warn().
					Str("stage", stage.Name).
					Str("dependency", dep).
					Msg("dependency failed, proceeding against possibly-stale state")
			}
		}
		if skipped {
			status[stage.Name] = StageSkipped
			report.Results = append(report.Results, StageResult{Name: stage.Name, Status: StageSkipped})
			continue
		}

		o.log.Info().Str("stage", stage.Name).Msg("stage starting")
		start := time.Now()
		err := stage.Run(ctx)
		result := StageResult{
			Name:     stage.Name,
			Status:   StageSucceeded,
			Duration: time.Since(start),
		}

		if err != nil {
			result.Status = StageFailed
			result.Err = err
			o.log.Error().Err(err).Str("stage", stage.Name).Msg("stage failed")
			if stage.Policy == PolicyFailFast {
				abort = fmt.Errorf("stage %s: %w", stage.Name, err)
			}
		} else {
			o.log.Info().
				Str("stage", stage.Name).
				Dur("duration", result.Duration).
				Msg("stage complete")
		}

		status[stage.Name] = result.Status
		report.Results = append(report.Results, result)
	}

	return report, abort
}

func topoSort(stages []Stage, byName map[string]int) ([]Stage, error) {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)

	state := make([]int, len(stages))
	ordered := make([]Stage, 0, len(stages))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle through stage %s", stages[i].Name)
		}
		state[i] = visiting

		for _, dep := range stages[i].DependsOn {
			j, ok := byName[dep]
			if !ok {
				return fmt.Errorf("stage %s depends on unknown stage %s", stages[i].Name, dep)
			}
			if err := visit(j); err != nil {
				return err
			}
		}

		state[i] = done
		ordered = append(ordered, stages[i])
		return nil
	}

	for i := range stages {
		if err := visit(i); err != nil {
			return nil, err
		}
	}

	return ordered, nil
}
