package repository

import (
	"context"

	"github.com/hefangdw/invhealth/internal/domain"
)

// FactStore supplies the read-only fact and dimension aggregates the health
// computation consumes for one snapshot date. Extraction and refresh of the
// underlying rows belong to the upstream ETL, not to this engine.
type FactStore interface {
	// InventorySnapshot returns the per-product inventory aggregate for a
	// snapshot date, summed over the eligible stores.
	InventorySnapshot(ctx context.Context, dateID int) ([]domain.InventoryFact, error)

	// SalesWindow returns the per-product trailing-window sales aggregate
	// ending at the snapshot date, keyed by product id.
	SalesWindow(ctx context.Context, dateID int) (map[int64]domain.SalesFact, error)

	// Products returns the full product dimension keyed by product id,
	// non-main products included, so callers can tell a deliberate
	// exclusion apart from a genuinely missing dimension row.
	Products(ctx context.Context) (map[int64]domain.Product, error)

	// FactAvailability reports how many fact rows exist for a date.
	FactAvailability(ctx context.Context, dateID int) (domain.FactAvailability, error)
}

// SnapshotFilter narrows snapshot reads for exports and diagnostics.
type SnapshotFilter struct {
	CategoryIDs []int64
	Statuses    []string
	Grades      []string
}

// HealthRecordStore persists and reads the computed health records. Writes
// happen only through ReplaceSnapshot, which swaps the full record set for a
// date atomically.
type HealthRecordStore interface {
	ReplaceSnapshot(ctx context.Context, dateID int, records []domain.HealthRecord) error
	Snapshot(ctx context.Context, dateID int, filter SnapshotFilter) ([]domain.HealthRecord, error)
	AvailableDates(ctx context.Context, limit int) ([]int, error)
	StatusSummary(ctx context.Context, dateID int) ([]domain.StatusCount, error)
	GradeSummary(ctx context.Context, dateID int) ([]domain.GradeCount, error)
	ReplenishmentSummary(ctx context.Context, dateID int) (domain.ReplenishmentSummary, error)
}
