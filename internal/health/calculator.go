package health

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
)

// Calculator derives the per-product health metrics and status
// classification from the joined inventory and sales aggregates. It is pure:
// the same inputs always produce the same record.
type Calculator struct {
	cfg config.BusinessConfig
}

// NewCalculator creates a calculator with the given business constants.
// Zero-valued windows and thresholds fall back to the standard defaults.
func NewCalculator(cfg config.BusinessConfig) *Calculator {
	if cfg.BaselineWindowDays <= 0 {
		cfg.BaselineWindowDays = 30
	}
	if cfg.RecentWindowDays <= 0 {
		cfg.RecentWindowDays = 7
	}
	if cfg.UrgentDays <= 0 {
		cfg.UrgentDays = 30
	}
	if cfg.RestockDays <= 0 {
		cfg.RestockDays = 70
	}
	if cfg.TargetTurnoverDays <= 0 {
		cfg.TargetTurnoverDays = 90
	}
	if cfg.TurnoverSentinel <= 0 {
		cfg.TurnoverSentinel = 9999
	}

	return &Calculator{cfg: cfg}
}

// Compute builds the health record for one product. Rank, shares, grade and
// trend stay at their zero values until the grading pass fills them in.
func (c *Calculator) Compute(dateID int, etlTime time.Time, p domain.Product, inv domain.InventoryFact, sales domain.SalesFact) domain.HealthRecord {
	rec := domain.HealthRecord{
		SnapshotDate:   dateID,
		ProductID:      p.ProductID,
		ProductCode:    p.ProductCode,
		ProductName:    p.ProductName,
		CategoryID:     p.CategoryID,
		CategoryName:   p.CategoryName,
		PropertyID:     p.PropertyID,
		PropertyName:   p.PropertyName,
		SeriesID:       p.SeriesID,
		SeriesName:     p.SeriesName,
		PriceList:      p.PriceList,
		TotalQty:       inv.TotalQty,
		WarehouseQty:   inv.WarehouseQty,
		CloudQty:       inv.CloudQty,
		PurchaseRemQty: inv.PurchaseRemQty,
		SalesQty30:     sales.SalesQty30,
		SalesAmt30:     sales.SalesAmt30,
		SalesQty7:      sales.SalesQty7,
		ReturnQty30:    sales.ReturnQty30,
		ReturnAmount30: sales.ReturnAmount30,
		SKUGrade:       domain.GradeC,
		EtlTime:        etlTime,
	}

	baseline := decimal.NewFromInt(int64(c.cfg.BaselineWindowDays))
	recent := decimal.NewFromInt(int64(c.cfg.RecentWindowDays))

	// 1. Daily averages over both windows. The raw (unrounded) baseline
	// average also feeds turnover and the replenishment suggestion.
	avgBaseline := decimal.NewFromInt(sales.SalesQty30).Div(baseline)
	avgRecent := decimal.NewFromInt(sales.SalesQty7).Div(recent)
	rec.DailyAvgSales = avgBaseline.Round(2)
	rec.DailyAvgSales7 = avgRecent.Round(2)

	// 2. Velocity: recent pace over baseline pace. Null without a baseline.
	if sales.SalesQty30 > 0 {
		rec.SalesVelocity = decimal.NullDecimal{
			Decimal: avgRecent.Div(avgBaseline).Round(2),
			Valid:   true,
		}
	}

	// 3. Turnover days at the baseline pace. No sales means the sentinel.
	// Classification and the suggestion below use the raw value; only the
	// stored column is rounded.
	var turnover decimal.Decimal
	if sales.SalesQty30 > 0 {
		turnover = decimal.NewFromInt(inv.TotalQty).Div(avgBaseline)
		rec.TurnoverDays = turnover.Round(1)
	} else {
		rec.TurnoverDays = decimal.NewFromInt(c.cfg.TurnoverSentinel)
	}

	// 4. Status classification, first match wins.
	rec.InventoryStatus = c.classify(inv.TotalQty, sales.SalesQty30, turnover)
	rec.StatusPriority = rec.InventoryStatus.Priority()

	// 5. Suggested replenishment up to the turnover target, net of returns
	// expected back and purchases already in transit. Negative values are a
	// surplus signal and are deliberately not clamped.
	target := decimal.NewFromInt(int64(c.cfg.TargetTurnoverDays))
	if sales.SalesQty30 > 0 && turnover.LessThan(target) {
		suggest := target.Sub(turnover).
			Mul(avgBaseline).
			Sub(decimal.NewFromInt(sales.ReturnQty30)).
			Sub(decimal.NewFromInt(inv.PurchaseRemQty))
		rec.SuggestQty = suggest.Round(0).IntPart()
	}

	return rec
}

func (c *Calculator) classify(totalQty, salesQty30 int64, turnover decimal.Decimal) domain.InventoryStatus {
	switch {
	case totalQty > 0 && salesQty30 == 0:
		return domain.StatusDeadStock
	case totalQty == 0 && salesQty30 == 0:
		return domain.StatusDiscontinued
	case turnover.LessThan(decimal.NewFromInt(int64(c.cfg.UrgentDays))):
		return domain.StatusUrgentShortage
	case turnover.LessThan(decimal.NewFromInt(int64(c.cfg.RestockDays))):
		return domain.StatusNeedsRestock
	case turnover.LessThanOrEqual(decimal.NewFromInt(int64(c.cfg.TargetTurnoverDays))):
		return domain.StatusNormal
	default:
		return domain.StatusOverstocked
	}
}
