package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hefangdw/invhealth/internal/quality"
	"github.com/hefangdw/invhealth/internal/repository"
	"github.com/hefangdw/invhealth/internal/snapshot"
)

// Stage names of the standard daily run.
const (
	StageFactAvailability = "fact_availability"
	StageHealthSnapshot   = "health_snapshot"
	StageQualityCheck     = "quality_check"
)

// NewFactAvailabilityStage checks that the warehouse holds inventory and
// sales rows for the date before computing. Whether its failure aborts the
// run is the caller's policy choice: the historical behavior is to proceed
// against stale facts with a warning (fail-soft).
func NewFactAvailabilityStage(facts repository.FactStore, dateID int, policy Policy, log zerolog.Logger) Stage {
	return Stage{
		Name:   StageFactAvailability,
		Policy: policy,
		Run: func(ctx context.Context) error {
			avail, err := facts.FactAvailability(ctx, dateID)
			if err != nil {
				return err
			}
			if avail.InventoryRows == 0 {
				return fmt.Errorf("no inventory facts for %d", dateID)
			}
			if avail.SalesRows == 0 {
				// A day with zero eligible-channel sales is possible but
				// suspicious enough to surface.
				log.Warn().Int("date_id", dateID).Msg("no sales facts in trailing window")
			}

			log.Info().
				Int("date_id", dateID).
				Int("inventory_rows", avail.InventoryRows).
				Int("sales_rows", avail.SalesRows).
				Msg("facts available")
			return nil
		},
	}
}

// NewHealthSnapshotStage wraps the compute-grade-replace cycle. It always
// fails fast: a half-computed snapshot must abort before anything depends
// on it, and the transactional replace guarantees nothing partial is
// visible.
func NewHealthSnapshotStage(manager *snapshot.Manager, dateID int, onResult func(*snapshot.Result)) Stage {
	return Stage{
		Name:      StageHealthSnapshot,
		DependsOn: []string{StageFactAvailability},
		Policy:    PolicyFailFast,
		Run: func(ctx context.Context) error {
			result, err := manager.Run(ctx, dateID)
			if err != nil {
				return err
			}
			if onResult != nil {
				onResult(result)
			}
			return nil
		},
	}
}

// NewQualityCheckStage validates the freshly written snapshot. Findings are
// warnings, not failures, so the stage itself is fail-soft.
func NewQualityCheckStage(checker *quality.Checker, dateID int, onFindings func([]quality.Finding)) Stage {
	return Stage{
		Name:      StageQualityCheck,
		DependsOn: []string{StageHealthSnapshot},
		Policy:    PolicyFailSoft,
		Run: func(ctx context.Context) error {
			findings, err := checker.Run(ctx, dateID)
			if err != nil {
				return err
			}
			if onFindings != nil {
				onFindings(findings)
			}
			return nil
		},
	}
}
