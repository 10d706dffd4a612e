package health

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
)

// ErrNoRecords is returned when grading is asked to run over an empty
// record set: there is nothing to rank.
var ErrNoRecords = errors.New("no health records to grade")

var (
	velocityAccelerating = decimal.NewFromFloat(1.3)
	velocityStable       = decimal.NewFromFloat(1.0)
	velocityCooling      = decimal.NewFromFloat(0.7)
)

// Grader ranks a snapshot's records by trailing sales amount and assigns
// the Pareto concentration grade and the demand-trend label.
type Grader struct {
	hot     decimal.Decimal
	core    decimal.Decimal
	regular decimal.Decimal
}

// NewGrader creates a grader with the given Pareto breakpoints. Zero-valued
// breakpoints fall back to the standard 30/70/90 split.
func NewGrader(cfg config.BusinessConfig) *Grader {
	if cfg.ParetoHotShare <= 0 {
		cfg.ParetoHotShare = 0.30
	}
	if cfg.ParetoCoreShare <= 0 {
		cfg.ParetoCoreShare = 0.70
	}
	if cfg.ParetoRegularShare <= 0 {
		cfg.ParetoRegularShare = 0.90
	}

	return &Grader{
		hot:     decimal.NewFromFloat(cfg.ParetoHotShare),
		core:    decimal.NewFromFloat(cfg.ParetoCoreShare),
		regular: decimal.NewFromFloat(cfg.ParetoRegularShare),
	}
}

// Grade mutates the records in place: sales rank, own and cumulative share,
// grade and trend. The slice is reordered to rank order, which makes the
// persisted order deterministic. Ties on sales amount break by ascending
// product id so grade boundaries are stable across re-runs.
func (g *Grader) Grade(records []domain.HealthRecord) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	sort.Slice(records, func(i, j int) bool {
		cmp := records[i].SalesAmt30.Cmp(records[j].SalesAmt30)
		if cmp != 0 {
			return cmp > 0
		}
		return records[i].ProductID < records[j].ProductID
	})

	total := decimal.Zero
	for i := range records {
		total = total.Add(records[i].SalesAmt30)
	}

	hundred := decimal.NewFromInt(100)
	cumulative := decimal.Zero

	for i := range records {
		rec := &records[i]
		before := cumulative
		cumulative = cumulative.Add(rec.SalesAmt30)

		rec.SalesRank = i + 1
		if total.IsPositive() {
			rec.SalesRatio = rec.SalesAmt30.Div(total).Mul(hundred).Round(2)
			rec.CumulativeRatio = cumulative.Div(total).Mul(hundred).Round(2)
		} else {
			rec.SalesRatio = decimal.Zero
			rec.CumulativeRatio = decimal.Zero
		}

		rec.SKUGrade = g.gradeFor(total, rec.SalesAmt30, before, cumulative)
		rec.SalesTrend = trendFor(rec.SalesVelocity)
	}

	return nil
}

// gradeFor applies the Pareto breakpoints. The S boundary is evaluated on
// the cumulative amount before the current record, so the records that
// together contribute the top share are all captured as S even when a
// single record's own share exceeds the boundary. A and B use the
// cumulative amount including the current record.
func (g *Grader) gradeFor(total, own, before, after decimal.Decimal) domain.SKUGrade {
	switch {
	case !total.IsPositive() || own.IsZero():
		return domain.GradeC
	case before.LessThan(total.Mul(g.hot)):
		return domain.GradeS
	case after.LessThanOrEqual(total.Mul(g.core)):
		return domain.GradeA
	case after.LessThanOrEqual(total.Mul(g.regular)):
		return domain.GradeB
	default:
		return domain.GradeC
	}
}

func trendFor(velocity decimal.NullDecimal) domain.SalesTrend {
	if !velocity.Valid {
		return domain.TrendNoSales
	}

	v := velocity.Decimal
	switch {
	case v.GreaterThanOrEqual(velocityAccelerating):
		return domain.TrendAccelerating
	case v.GreaterThanOrEqual(velocityStable):
		return domain.TrendStable
	case v.GreaterThanOrEqual(velocityCooling):
		return domain.TrendCooling
	default:
		return domain.TrendDecliningSharply
	}
}
