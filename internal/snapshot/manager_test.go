package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hefangdw/invhealth/internal/cache"
	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/health"
	"github.com/hefangdw/invhealth/internal/repository"
)

type stubFactStore struct {
	inventory []domain.InventoryFact
	sales     map[int64]domain.SalesFact
	products  map[int64]domain.Product
}

func (s *stubFactStore) InventorySnapshot(ctx context.Context, dateID int) ([]domain.InventoryFact, error) {
	return s.inventory, nil
}

func (s *stubFactStore) SalesWindow(ctx context.Context, dateID int) (map[int64]domain.SalesFact, error) {
	return s.sales, nil
}

func (s *stubFactStore) Products(ctx context.Context) (map[int64]domain.Product, error) {
	return s.products, nil
}

func (s *stubFactStore) FactAvailability(ctx context.Context, dateID int) (domain.FactAvailability, error) {
	return domain.FactAvailability{InventoryRows: len(s.inventory), SalesRows: len(s.sales)}, nil
}

type recordingHealthStore struct {
	replacedDate    int
	replaced        []domain.HealthRecord
	replaceErr      error
	replaceAttempts int
	summaryCalls    int
}

func (r *recordingHealthStore) ReplaceSnapshot(ctx context.Context, dateID int, records []domain.HealthRecord) error {
	r.replaceAttempts++
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.replacedDate = dateID
	r.replaced = append([]domain.HealthRecord(nil), records...)
	return nil
}

func (r *recordingHealthStore) Snapshot(ctx context.Context, dateID int, filter repository.SnapshotFilter) ([]domain.HealthRecord, error) {
	return r.replaced, nil
}

func (r *recordingHealthStore) AvailableDates(ctx context.Context, limit int) ([]int, error) {
	return []int{r.replacedDate}, nil
}

func (r *recordingHealthStore) StatusSummary(ctx context.Context, dateID int) ([]domain.StatusCount, error) {
	r.summaryCalls++
	if len(r.replaced) == 0 {
		return nil, nil
	}
	return []domain.StatusCount{{Status: domain.StatusNeedsRestock, SKUCount: len(r.replaced)}}, nil
}

func (r *recordingHealthStore) GradeSummary(ctx context.Context, dateID int) ([]domain.GradeCount, error) {
	return []domain.GradeCount{{Grade: domain.GradeS, SKUCount: 1}}, nil
}

func (r *recordingHealthStore) ReplenishmentSummary(ctx context.Context, dateID int) (domain.ReplenishmentSummary, error) {
	return domain.ReplenishmentSummary{}, nil
}

type recordingCache struct {
	stored *cache.SnapshotSummary
	gets   int
	sets   int
}

func (c *recordingCache) GetSummary(ctx context.Context, dateID int) (*cache.SnapshotSummary, bool, error) {
	c.gets++
	if c.stored != nil && c.stored.SnapshotDate == dateID {
		return c.stored, true, nil
	}
	return nil, false, nil
}

func (c *recordingCache) SetSummary(ctx context.Context, summary *cache.SnapshotSummary) error {
	c.sets++
	c.stored = summary
	return nil
}

func (c *recordingCache) InvalidateDate(ctx context.Context, dateID int) error {
	if c.stored != nil && c.stored.SnapshotDate == dateID {
		c.stored = nil
	}
	return nil
}

func newTestManager(facts *stubFactStore, store *recordingHealthStore) *Manager {
	return newTestManagerWithCache(facts, store, cache.NewNoopSnapshotCache())
}

func newTestManagerWithCache(facts *stubFactStore, store *recordingHealthStore, c cache.SnapshotCache) *Manager {
	cfg := config.BusinessConfig{}
	engine := health.NewEngine(facts, health.NewCalculator(cfg), zerolog.Nop()).
		WithClock(func() time.Time { return time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC) })
	return NewManager(engine, health.NewGrader(cfg), store, c, zerolog.Nop())
}

func TestManagerRunPersistsGradedSnapshot(t *testing.T) {
	facts := &stubFactStore{
		inventory: []domain.InventoryFact{
			{ProductID: 1, TotalQty: 100},
			{ProductID: 2, TotalQty: 40},
		},
		sales: map[int64]domain.SalesFact{
			1: {ProductID: 1, SalesQty30: 60, SalesQty7: 14, SalesAmt30: decimal.NewFromInt(1800)},
			2: {ProductID: 2, SalesQty30: 10, SalesQty7: 2, SalesAmt30: decimal.NewFromInt(200)},
		},
		products: map[int64]domain.Product{
			1: {ProductID: 1, IsMainProduct: true},
			2: {ProductID: 2, IsMainProduct: true},
		},
	}
	store := &recordingHealthStore{}

	result, err := newTestManager(facts, store).Run(context.Background(), 20260830)
	require.NoError(t, err)

	assert.Equal(t, 20260830, result.DateID)
	assert.Equal(t, 2, result.Records)
	require.Len(t, store.replaced, 2)
	assert.Equal(t, 20260830, store.replacedDate)

	// Persisted in rank order with grading already applied.
	assert.Equal(t, int64(1), store.replaced[0].ProductID)
	assert.Equal(t, 1, store.replaced[0].SalesRank)
	assert.Equal(t, domain.GradeS, store.replaced[0].SKUGrade)
	assert.NotEmpty(t, store.replaced[0].SalesTrend)
	assert.Equal(t, 2, store.replaced[1].SalesRank)

	assert.NotEmpty(t, result.Statuses)
	assert.NotEmpty(t, result.Grades)
}

func TestManagerRunNoEligibleProducts(t *testing.T) {
	facts := &stubFactStore{
		sales:    map[int64]domain.SalesFact{},
		products: map[int64]domain.Product{},
	}
	store := &recordingHealthStore{}

	_, err := newTestManager(facts, store).Run(context.Background(), 20260830)
	require.Error(t, err)
	assert.ErrorIs(t, err, health.ErrNoRecords)
	assert.Zero(t, store.replaceAttempts, "nothing may be written for an empty record set")
}

func TestManagerSummaryBuildsAndPrimesCache(t *testing.T) {
	store := &recordingHealthStore{
		replaced: []domain.HealthRecord{{ProductID: 1}, {ProductID: 2}},
	}
	c := &recordingCache{}
	m := newTestManagerWithCache(&stubFactStore{}, store, c)

	first, err := m.Summary(context.Background(), 20260830)
	require.NoError(t, err)
	assert.Equal(t, 20260830, first.SnapshotDate)
	assert.Equal(t, 2, first.Records)
	assert.Equal(t, 1, store.summaryCalls)
	assert.Equal(t, 1, c.sets)

	second, err := m.Summary(context.Background(), 20260830)
	require.NoError(t, err)
	assert.Same(t, first, second, "second read must come from the cache")
	assert.Equal(t, 1, store.summaryCalls, "cache hit must not touch the warehouse")
	assert.Equal(t, 2, c.gets)
}

func TestManagerSummaryUnknownDate(t *testing.T) {
	store := &recordingHealthStore{}
	m := newTestManagerWithCache(&stubFactStore{}, store, &recordingCache{})

	_, err := m.Summary(context.Background(), 20190101)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no snapshot for 20190101")
}

func TestManagerRunReplaceFailure(t *testing.T) {
	facts := &stubFactStore{
		inventory: []domain.InventoryFact{{ProductID: 1, TotalQty: 10}},
		sales:     map[int64]domain.SalesFact{},
		products:  map[int64]domain.Product{1: {ProductID: 1, IsMainProduct: true}},
	}
	store := &recordingHealthStore{replaceErr: errors.New("deadlock detected")}

	_, err := newTestManager(facts, store).Run(context.Background(), 20260830)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replacing snapshot 20260830")
}
