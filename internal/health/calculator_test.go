package health

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
)

var testEtlTime = time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)

func testProduct(id int64) domain.Product {
	return domain.Product{
		ProductID:     id,
		ProductCode:   "HF001",
		ProductName:   "Silver pendant",
		CategoryID:    134,
		CategoryName:  "Necklaces",
		IsMainProduct: true,
	}
}

func compute(t *testing.T, inv domain.InventoryFact, sales domain.SalesFact) domain.HealthRecord {
	t.Helper()
	calc := NewCalculator(config.BusinessConfig{})
	return calc.Compute(20260830, testEtlTime, testProduct(inv.ProductID), inv, sales)
}

func TestComputeNeedsRestock(t *testing.T) {
	rec := compute(t,
		domain.InventoryFact{ProductID: 1, TotalQty: 100},
		domain.SalesFact{ProductID: 1, SalesQty30: 60, SalesQty7: 14},
	)

	assert.True(t, rec.DailyAvgSales.Equal(decimal.NewFromInt(2)), "daily avg = %s", rec.DailyAvgSales)
	assert.True(t, rec.TurnoverDays.Equal(decimal.NewFromInt(50)), "turnover = %s", rec.TurnoverDays)
	assert.Equal(t, domain.StatusNeedsRestock, rec.InventoryStatus)
	assert.Equal(t, 2, rec.StatusPriority)
	assert.Equal(t, int64(80), rec.SuggestQty)

	require.True(t, rec.SalesVelocity.Valid)
	assert.True(t, rec.SalesVelocity.Decimal.Equal(decimal.NewFromInt(1)))
}

func TestComputeDiscontinued(t *testing.T) {
	rec := compute(t,
		domain.InventoryFact{ProductID: 2},
		domain.SalesFact{ProductID: 2},
	)

	assert.Equal(t, domain.StatusDiscontinued, rec.InventoryStatus)
	assert.Equal(t, 6, rec.StatusPriority)
	assert.Equal(t, int64(0), rec.SuggestQty)
	assert.True(t, rec.TurnoverDays.Equal(decimal.NewFromInt(9999)), "turnover = %s", rec.TurnoverDays)
	assert.False(t, rec.SalesVelocity.Valid)
	assert.True(t, rec.DailyAvgSales.IsZero())
}

func TestComputeDeadStock(t *testing.T) {
	rec := compute(t,
		domain.InventoryFact{ProductID: 3, TotalQty: 40},
		domain.SalesFact{ProductID: 3},
	)

	assert.Equal(t, domain.StatusDeadStock, rec.InventoryStatus)
	assert.Equal(t, 5, rec.StatusPriority)
	assert.Equal(t, int64(0), rec.SuggestQty)
	assert.True(t, rec.TurnoverDays.Equal(decimal.NewFromInt(9999)))
}

func TestComputeOverstockedSuggestsNothing(t *testing.T) {
	// turnover = 190 / 2 = 95 days, past the 90-day target
	rec := compute(t,
		domain.InventoryFact{ProductID: 4, TotalQty: 190},
		domain.SalesFact{ProductID: 4, SalesQty30: 60, SalesQty7: 14},
	)

	assert.Equal(t, domain.StatusOverstocked, rec.InventoryStatus)
	assert.Equal(t, 4, rec.StatusPriority)
	assert.Equal(t, int64(0), rec.SuggestQty)
}

func TestComputeUrgentShortage(t *testing.T) {
	// turnover = 10 / 2 = 5 days
	rec := compute(t,
		domain.InventoryFact{ProductID: 5, TotalQty: 10},
		domain.SalesFact{ProductID: 5, SalesQty30: 60, SalesQty7: 21},
	)

	assert.Equal(t, domain.StatusUrgentShortage, rec.InventoryStatus)
	assert.Equal(t, 1, rec.StatusPriority)
	// (90 - 5) * 2 = 170
	assert.Equal(t, int64(170), rec.SuggestQty)
}

func TestComputeNormalBoundary(t *testing.T) {
	// turnover = 180 / 2 = exactly 90 days: still normal, still suggests 0
	rec := compute(t,
		domain.InventoryFact{ProductID: 6, TotalQty: 180},
		domain.SalesFact{ProductID: 6, SalesQty30: 60},
	)

	assert.Equal(t, domain.StatusNormal, rec.InventoryStatus)
	assert.Equal(t, 3, rec.StatusPriority)
	assert.Equal(t, int64(0), rec.SuggestQty)
}

func TestComputeNegativeSuggestNotClamped(t *testing.T) {
	// Heavy returns and in-transit purchases push the suggestion below
	// zero: (90-50)*2 - 30 - 100 = -50, a deliberate surplus signal.
	rec := compute(t,
		domain.InventoryFact{ProductID: 7, TotalQty: 100, PurchaseRemQty: 100},
		domain.SalesFact{ProductID: 7, SalesQty30: 60, ReturnQty30: 30},
	)

	assert.Equal(t, domain.StatusNeedsRestock, rec.InventoryStatus)
	assert.Equal(t, int64(-50), rec.SuggestQty)
}

func TestComputeVelocityRounding(t *testing.T) {
	// avg7 = 9/7 = 1.2857..., avg30 = 1 -> velocity rounds to 1.29
	rec := compute(t,
		domain.InventoryFact{ProductID: 8, TotalQty: 30},
		domain.SalesFact{ProductID: 8, SalesQty30: 30, SalesQty7: 9},
	)

	require.True(t, rec.SalesVelocity.Valid)
	assert.Equal(t, "1.29", rec.SalesVelocity.Decimal.StringFixed(2))
}

func TestComputeTurnoverRoundedOnlyInStoredValue(t *testing.T) {
	// raw turnover = 100 / (70/30) = 42.857..., stored as 42.9
	rec := compute(t,
		domain.InventoryFact{ProductID: 9, TotalQty: 100},
		domain.SalesFact{ProductID: 9, SalesQty30: 70, SalesQty7: 16},
	)

	assert.Equal(t, "42.9", rec.TurnoverDays.StringFixed(1))
	assert.Equal(t, domain.StatusNeedsRestock, rec.InventoryStatus)
	// (90 - 42.857...) * (70/30) = 110.0
	assert.Equal(t, int64(110), rec.SuggestQty)
}

func TestComputeNegativeFactsPassThrough(t *testing.T) {
	rec := compute(t,
		domain.InventoryFact{ProductID: 10, TotalQty: -5},
		domain.SalesFact{ProductID: 10, SalesQty30: 30, SalesQty7: 7},
	)

	// Negative quantities are carried through uncorrected.
	assert.Equal(t, int64(-5), rec.TotalQty)
	assert.Equal(t, domain.StatusUrgentShortage, rec.InventoryStatus)
}

func TestComputeCarriesFactsAndDimension(t *testing.T) {
	rec := compute(t,
		domain.InventoryFact{ProductID: 11, TotalQty: 100, WarehouseQty: 60, CloudQty: 40, PurchaseRemQty: 5},
		domain.SalesFact{
			ProductID:      11,
			SalesQty30:     60,
			SalesQty7:      14,
			SalesAmt30:     decimal.NewFromInt(1800),
			ReturnQty30:    3,
			ReturnAmount30: decimal.NewFromInt(90),
		},
	)

	assert.Equal(t, 20260830, rec.SnapshotDate)
	assert.Equal(t, "HF001", rec.ProductCode)
	assert.Equal(t, int64(60), rec.WarehouseQty)
	assert.Equal(t, int64(40), rec.CloudQty)
	assert.Equal(t, int64(5), rec.PurchaseRemQty)
	assert.Equal(t, int64(3), rec.ReturnQty30)
	assert.True(t, rec.SalesAmt30.Equal(decimal.NewFromInt(1800)))
	assert.Equal(t, testEtlTime, rec.EtlTime)
	// Rank and shares belong to the grading pass.
	assert.Equal(t, 0, rec.SalesRank)
	assert.Equal(t, domain.GradeC, rec.SKUGrade)
}
