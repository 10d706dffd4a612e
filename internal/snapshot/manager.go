package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/hefangdw/invhealth/internal/cache"
	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/health"
	"github.com/hefangdw/invhealth/internal/repository"
)

// Manager runs the compute-grade-replace cycle for one snapshot date and
// guarantees exactly one record set per (product, date): the persisted set
// after a successful run equals this run's output, with any prior rows for
// the date replaced atomically.
type Manager struct {
	engine *health.Engine
	grader *health.Grader
	store  repository.HealthRecordStore
	cache  cache.SnapshotCache
	log    zerolog.Logger
}

// Result summarizes a completed run for logging and reporting.
type Result struct {
	DateID        int
	Records       int
	Duration      time.Duration
	Statuses      []domain.StatusCount
	Grades        []domain.GradeCount
	Replenishment domain.ReplenishmentSummary
}

func NewManager(engine *health.Engine, grader *health.Grader, store repository.HealthRecordStore, c cache.SnapshotCache, log zerolog.Logger) *Manager {
	if c == nil {
		c = cache.NewNoopSnapshotCache()
	}

	return &Manager{
		engine: engine,
		grader: grader,
		store:  store,
		cache:  c,
		log:    log,
	}
}

// Run computes, grades and persists the health record set for a date.
// Nothing is written unless the whole cycle succeeds; a failed run leaves
// any prior snapshot for the date untouched.
func (m *Manager) Run(ctx context.Context, dateID int) (*Result, error) {
	start := time.Now()
	m.log.Info().Int("date_id", dateID).Msg("starting health snapshot run")

	records, err := m.engine.Compute(ctx, dateID)
	if err != nil {
		return nil, fmt.Errorf("health computation for %d: %w", dateID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no eligible products for %d: %w", dateID, health.ErrNoRecords)
	}

	if err := m.grader.Grade(records); err != nil {
		return nil, fmt.Errorf("grading snapshot %d: %w", dateID, err)
	}

	if err := m.store.ReplaceSnapshot(ctx, dateID, records); err != nil {
		return nil, fmt.Errorf("replacing snapshot %d: %w", dateID, err)
	}

	result := &Result{
		DateID:   dateID,
		Records:  len(records),
		Duration: time.Since(start),
	}

	// Summaries are informational; their failure does not fail the run.
	if result.Statuses, err = m.store.StatusSummary(ctx, dateID); err != nil {
		m.log.Warn().Err(err).Int("date_id", dateID).Msg("status summary unavailable")
	}
	if result.Grades, err = m.store.GradeSummary(ctx, dateID); err != nil {
		m.log.Warn().Err(err).Int("date_id", dateID).Msg("grade summary unavailable")
	}
	if result.Replenishment, err = m.store.ReplenishmentSummary(ctx, dateID); err != nil {
		m.log.Warn().Err(err).Int("date_id", dateID).Msg("replenishment summary unavailable")
	}

	m.refreshCache(ctx, result)
	m.logSummary(result)

	return result, nil
}

// Summary returns the per-date digest, serving the cached copy when one
// exists and rebuilding it from the warehouse otherwise. A rebuilt digest
// re-primes the cache.
func (m *Manager) Summary(ctx context.Context, dateID int) (*cache.SnapshotSummary, error) {
	cached, ok, err := m.cache.GetSummary(ctx, dateID)
	if err != nil {
		m.log.Warn().Err(err).Int("date_id", dateID).Msg("summary cache read failed")
	} else if ok {
		return cached, nil
	}

	statuses, err := m.store.StatusSummary(ctx, dateID)
	if err != nil {
		return nil, fmt.Errorf("loading status summary for %d: %w", dateID, err)
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("no snapshot for %d", dateID)
	}
	grades, err := m.store.GradeSummary(ctx, dateID)
	if err != nil {
		return nil, fmt.Errorf("loading grade summary for %d: %w", dateID, err)
	}
	replenishment, err := m.store.ReplenishmentSummary(ctx, dateID)
	if err != nil {
		return nil, fmt.Errorf("loading replenishment summary for %d: %w", dateID, err)
	}

	records := 0
	for _, s := range statuses {
		records += s.SKUCount
	}

	summary := &cache.SnapshotSummary{
		SnapshotDate:  dateID,
		Records:       records,
		Statuses:      statuses,
		Grades:        grades,
		Replenishment: replenishment,
		ComputedAt:    time.Now(),
	}
	if err := m.cache.SetSummary(ctx, summary); err != nil {
		m.log.Warn().Err(err).Int("date_id", dateID).Msg("summary cache refresh failed")
	}

	return summary, nil
}

func (m *Manager) refreshCache(ctx context.Context, result *Result) {
	if err := m.cache.InvalidateDate(ctx, result.DateID); err != nil {
		m.log.Warn().Err(err).Int("date_id", result.DateID).Msg("cache invalidation failed")
		return
	}

	summary := &cache.SnapshotSummary{
		SnapshotDate:  result.DateID,
		Records:       result.Records,
		Statuses:      result.Statuses,
		Grades:        result.Grades,
		Replenishment: result.Replenishment,
		ComputedAt:    time.Now(),
	}
	if err := m.cache.SetSummary(ctx, summary); err != nil {
		m.log.Warn().Err(err).Int("date_id", result.DateID).Msg("cache refresh failed")
	}
}

func (m *Manager) logSummary(result *Result) {
	ev := m.log.Info().
		Int("date_id", result.DateID).
		Int("records", result.Records).
		Dur("duration", result.Duration)

	for _, s := range result.Statuses {
		ev = ev.Int(string(s.Status), s.SKUCount)
	}
	for _, g := range result.Grades {
		ev = ev.Int("grade_"+string(g.Grade), g.SKUCount)
	}

	ev.
		Int64("suggest_positive", result.Replenishment.PositiveSuggest).
		Int64("suggest_negative", result.Replenishment.NegativeSuggest).
		Int("sku_surplus", result.Replenishment.SKUWithNegative).
		Msg("snapshot run complete")
}
