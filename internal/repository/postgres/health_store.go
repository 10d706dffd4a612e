package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/repository"
)

// snapshotLockClass namespaces the advisory lock keys this store takes, so
// they cannot collide with other advisory-lock users of the same database.
const snapshotLockClass = int64(0x68656c74) // "helt"

const insertBatchSize = 500

const healthColumns = `
	snapshot_date, product_id, product_code, product_name,
	category_id, category_name, property_id, property_name,
	series_id, series_name, price_list,
	total_qty, warehouse_qty, cloud_qty, purchase_rem_qty,
	sales_qty_30d, sales_amt_30d, sales_qty_7d, return_qty_30d, return_amount_30d,
	daily_avg_sales, daily_avg_sales_7d, sales_velocity, turnover_days,
	inventory_status, status_priority,
	sales_rank, sales_ratio, cumulative_ratio, sku_grade, sales_trend,
	suggest_qty, etl_time`

type healthStore struct {
	db  *DB
	log zerolog.Logger
}

// NewHealthStore creates a HealthRecordStore over ads_inventory_health.
func NewHealthStore(db *DB, log zerolog.Logger) repository.HealthRecordStore {
	return &healthStore{db: db, log: log}
}

// ReplaceSnapshot swaps the full record set for a date in one transaction:
// take the per-date advisory lock, delete whatever a prior run left, insert
// the new set. Any failure rolls the delete back too, so readers only ever
// see a fully-committed date.
func (s *healthStore) ReplaceSnapshot(ctx context.Context, dateID int, records []domain.HealthRecord) error {
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock($1, $2)`, snapshotLockClass, int64(dateID)); err != nil {
			return fmt.Errorf("acquiring snapshot lock for %d: %w", dateID, err)
		}

		res, err := tx.ExecContext(ctx,
			`DELETE FROM ads_inventory_health WHERE snapshot_date = $1`, dateID)
		if err != nil {
			return fmt.Errorf("clearing snapshot %d: %w", dateID, err)
		}
		if deleted, err := res.RowsAffected(); err == nil && deleted > 0 {
			s.log.Info().Int("date_id", dateID).Int64("rows", deleted).Msg("replaced prior snapshot rows")
		}

		insert := fmt.Sprintf(`INSERT INTO ads_inventory_health (%s) VALUES (%s)`,
			healthColumns, namedPlaceholders(healthColumns))

		for start := 0; start < len(records); start += insertBatchSize {
			end := start + insertBatchSize
			if end > len(records) {
				end = len(records)
			}
			if _, err := tx.NamedExecContext(ctx, insert, records[start:end]); err != nil {
				return fmt.Errorf("inserting snapshot %d rows %d-%d: %w", dateID, start, end, err)
			}
		}

		return nil
	})
}

// namedPlaceholders turns the column list into the matching :name bind list.
func namedPlaceholders(columns string) string {
	fields := strings.Fields(strings.ReplaceAll(columns, ",", " "))
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = ":" + f
	}
	return strings.Join(names, ", ")
}

func (s *healthStore) Snapshot(ctx context.Context, dateID int, filter repository.SnapshotFilter) ([]domain.HealthRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM ads_inventory_health WHERE snapshot_date = $1`, healthColumns)

	args := []interface{}{dateID}
	argCounter := 2

	var conditions []string
	if len(filter.CategoryIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("category_id = ANY($%d::bigint[])", argCounter))
		args = append(args, pq.Array(filter.CategoryIDs))
		argCounter++
	}
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("inventory_status = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Statuses))
		argCounter++
	}
	if len(filter.Grades) > 0 {
		conditions = append(conditions, fmt.Sprintf("sku_grade = ANY($%d::text[])", argCounter))
		args = append(args, pq.Array(filter.Grades))
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sales_rank"

	var records []domain.HealthRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("reading snapshot %d: %w", dateID, err)
	}

	return records, nil
}

func (s *healthStore) AvailableDates(ctx context.Context, limit int) ([]int, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT DISTINCT snapshot_date
		FROM ads_inventory_health
		ORDER BY snapshot_date DESC
		LIMIT $1
	`

	var dates []int
	if err := s.db.SelectContext(ctx, &dates, query, limit); err != nil {
		return nil, fmt.Errorf("listing snapshot dates: %w", err)
	}

	return dates, nil
}

func (s *healthStore) StatusSummary(ctx context.Context, dateID int) ([]domain.StatusCount, error) {
	query := `
		SELECT
			inventory_status,
			COUNT(*) AS sku_count,
			COALESCE(SUM(total_qty), 0) AS total_qty
		FROM ads_inventory_health
		WHERE snapshot_date = $1
		GROUP BY inventory_status
		ORDER BY MIN(status_priority)
	`

	var counts []domain.StatusCount
	if err := s.db.SelectContext(ctx, &counts, query, dateID); err != nil {
		return nil, fmt.Errorf("summarizing statuses for %d: %w", dateID, err)
	}

	return counts, nil
}

func (s *healthStore) GradeSummary(ctx context.Context, dateID int) ([]domain.GradeCount, error) {
	query := `
		SELECT
			sku_grade,
			COUNT(*) AS sku_count,
			COALESCE(SUM(sales_qty_30d), 0) AS sales_qty
		FROM ads_inventory_health
		WHERE snapshot_date = $1
		GROUP BY sku_grade
		ORDER BY array_position(ARRAY['S','A','B','C'], sku_grade)
	`

	var counts []domain.GradeCount
	if err := s.db.SelectContext(ctx, &counts, query, dateID); err != nil {
		return nil, fmt.Errorf("summarizing grades for %d: %w", dateID, err)
	}

	return counts, nil
}

func (s *healthStore) ReplenishmentSummary(ctx context.Context, dateID int) (domain.ReplenishmentSummary, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE purchase_rem_qty > 0) AS sku_with_rem,
			COALESCE(SUM(purchase_rem_qty), 0) AS total_rem_qty,
			COALESCE(SUM(suggest_qty) FILTER (WHERE suggest_qty > 0), 0) AS positive_suggest,
			COALESCE(SUM(suggest_qty) FILTER (WHERE suggest_qty < 0), 0) AS negative_suggest,
			COALESCE(SUM(suggest_qty), 0) AS net_suggest,
			COUNT(*) FILTER (WHERE suggest_qty < 0) AS sku_with_negative
		FROM ads_inventory_health
		WHERE snapshot_date = $1
	`

	var summary domain.ReplenishmentSummary
	if err := s.db.GetContext(ctx, &summary, query, dateID); err != nil {
		return domain.ReplenishmentSummary{}, fmt.Errorf("summarizing replenishment for %d: %w", dateID, err)
	}

	return summary, nil
}
