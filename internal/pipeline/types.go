package pipeline

import (
	"context"
	"time"
)

// Policy controls what a stage failure does to the rest of the run.
type Policy string

const (
	// PolicyFailFast aborts the run: stages after the failure are skipped.
	PolicyFailFast Policy = "fail_fast"
	// PolicyFailSoft records the failure and keeps going; dependents run
	// against whatever state the failed stage left behind, with a warning.
	PolicyFailSoft Policy = "fail_soft"
)

// StageFunc does the actual work of a stage.
type StageFunc func(ctx context.Context) error

// Stage is one node of the run graph. Dependencies are declared by name and
// must be registered before the stage that needs them.
type Stage struct {
	Name      string
	DependsOn []string
	Policy    Policy
	Run       StageFunc
}

// StageStatus is the terminal state of a stage within one run.
type StageStatus string

const (
	StageSucceeded StageStatus = "succeeded"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageResult records how one stage ended.
type StageResult struct {
	Name     string
	Status   StageStatus
	Err      error
	Duration time.Duration
}

// Report collects the per-stage outcomes of a run.
type Report struct {
	Started  time.Time
	Finished time.Time
	Results  []StageResult
}

// HasFailures reports whether any stage failed (soft or otherwise).
func (r *Report) HasFailures() bool {
	for _, res := range r.Results {
		if res.Status == StageFailed {
			return true
		}
	}
	return false
}

// Result returns the outcome of a named stage, if it ran.
func (r *Report) Result(name string) (StageResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return StageResult{}, false
}
