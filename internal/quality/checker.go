package quality

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Severity of a finding. Data-quality anomalies are never fatal to a run;
// they are surfaced for the merchandising team to chase upstream.
type Severity string

const (
	SeverityOK      Severity = "ok"
	SeverityWarning Severity = "warning"
)

// Finding is one check's outcome for a snapshot date.
type Finding struct {
	Name     string   `json:"name"`
	Severity Severity `json:"severity"`
	Count    int64    `json:"count"`
	Detail   string   `json:"detail"`
}

// Checker runs the post-run data-quality validations over the warehouse:
// key uniqueness, completeness against the eligible universe, negative
// quantities and share monotonicity.
type Checker struct {
	db  *sqlx.DB
	log zerolog.Logger
}

func NewChecker(db *sqlx.DB, log zerolog.Logger) *Checker {
	return &Checker{db: db, log: log}
}

type check struct {
	name   string
	detail string
	query  string
}

// Each query counts violations for the snapshot date; zero means the check
// passes.
var checks = []check{
	{
		name:   "duplicate_keys",
		detail: "products with more than one record for the date",
		query: `
			SELECT COUNT(*) FROM (
				SELECT product_id
				FROM ads_inventory_health
				WHERE snapshot_date = $1
				GROUP BY product_id
				HAVING COUNT(*) > 1
			) d`,
	},
	{
		name:   "missing_records",
		detail: "main products with inventory facts but no health record",
		query: `
			SELECT COUNT(*) FROM (
				SELECT i.product_id
				FROM dws_inventory_daily i
				JOIN dim_product p ON p.product_id = i.product_id AND p.is_main_product
				WHERE i.date_id = $1
				GROUP BY i.product_id
			) eligible
			WHERE NOT EXISTS (
				SELECT 1 FROM ads_inventory_health h
				WHERE h.snapshot_date = $1 AND h.product_id = eligible.product_id
			)`,
	},
	{
		name:   "negative_quantities",
		detail: "records carrying negative on-hand or in-transit quantities",
		query: `
			SELECT COUNT(*)
			FROM ads_inventory_health
			WHERE snapshot_date = $1
				AND (total_qty < 0 OR warehouse_qty < 0 OR cloud_qty < 0 OR purchase_rem_qty < 0)`,
	},
	{
		name:   "missing_dimension_rows",
		detail: "inventory facts whose product has no dimension row",
		query: `
			SELECT COUNT(DISTINCT i.product_id)
			FROM dws_inventory_daily i
			LEFT JOIN dim_product p ON p.product_id = i.product_id
			WHERE i.date_id = $1 AND p.product_id IS NULL`,
	},
	{
		name:   "share_monotonicity",
		detail: "rank positions where the cumulative share decreases",
		query: `
			SELECT COUNT(*) FROM (
				SELECT cumulative_ratio
					- LAG(cumulative_ratio) OVER (ORDER BY sales_rank) AS delta
				FROM ads_inventory_health
				WHERE snapshot_date = $1
			) d
			WHERE d.delta < 0`,
	},
	{
		name:   "priority_totality",
		detail: "records whose priority falls outside the 1-6 status table",
		query: `
			SELECT COUNT(*)
			FROM ads_inventory_health
			WHERE snapshot_date = $1
				AND (status_priority < 1 OR status_priority > 6)`,
	},
}

// Run executes every check for the date and returns the findings in check
// order. Warnings are logged as they are found.
func (c *Checker) Run(ctx context.Context, dateID int) ([]Finding, error) {
	findings := make([]Finding, 0, len(checks))

	for _, chk := range checks {
		var count int64
		if err := c.db.GetContext(ctx, &count, chk.query, dateID); err != nil {
			return nil, fmt.Errorf("quality check %s: %w", chk.name, err)
		}

		f := Finding{
			Name:     chk.name,
			Severity: SeverityOK,
			Count:    count,
			Detail:   chk.detail,
		}
		if count > 0 {
			f.Severity = SeverityWarning
			c.log.Warn().
				Str("check", chk.name).
				Int64("count", count).
				Int("date_id", dateID).
				Msg(chk.detail)
		}
		findings = append(findings, f)
	}

	return findings, nil
}

// HasWarnings reports whether any finding is a warning.
func HasWarnings(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			return true
		}
	}
	return false
}
