package postgres

import (
	"context"
	"fmt"

	"github.com/hefangdw/invhealth/internal/config"
	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/repository"
)

type factStore struct {
	db  *DB
	cfg config.BusinessConfig
}

// NewFactStore creates a FactStore over the warehouse's dws fact tables and
// the product dimension.
func NewFactStore(db *DB, cfg config.BusinessConfig) repository.FactStore {
	return &factStore{db: db, cfg: cfg}
}

func (s *factStore) InventorySnapshot(ctx context.Context, dateID int) ([]domain.InventoryFact, error) {
	query := `
		SELECT
			i.product_id,
			COALESCE(SUM(i.qty), 0) AS total_qty,
			COALESCE(SUM(CASE WHEN st.store_code = $2 THEN i.qty ELSE 0 END), 0) AS warehouse_qty,
			COALESCE(SUM(CASE WHEN st.is_cloud_store THEN i.qty ELSE 0 END), 0) AS cloud_qty,
			COALESCE(SUM(i.purchase_rem_qty), 0) AS purchase_rem_qty
		FROM dws_inventory_daily i
		LEFT JOIN dim_store st ON st.store_id = i.store_id
		WHERE i.date_id = $1
			AND (st.store_code = $2 OR st.is_cloud_store)
		GROUP BY i.product_id
	`

	var facts []domain.InventoryFact
	if err := s.db.SelectContext(ctx, &facts, query, dateID, s.cfg.WarehouseStoreCode); err != nil {
		return nil, fmt.Errorf("loading inventory snapshot for %d: %w", dateID, err)
	}

	return facts, nil
}

func (s *factStore) SalesWindow(ctx context.Context, dateID int) (map[int64]domain.SalesFact, error) {
	baselineStart, err := domain.ShiftDateID(dateID, -s.cfg.BaselineWindowDays)
	if err != nil {
		return nil, err
	}
	recentStart, err := domain.ShiftDateID(dateID, -s.cfg.RecentWindowDays)
	if err != nil {
		return nil, err
	}

	// The upper bound keeps a re-run for a past date from seeing sales rows
	// that arrived later.
	query := `
		SELECT
			product_id,
			COALESCE(SUM(sales_qty), 0) AS sales_qty_30d,
			COALESCE(SUM(sales_amount), 0) AS sales_amt_30d,
			COALESCE(SUM(CASE WHEN date_id >= $2 THEN sales_qty ELSE 0 END), 0) AS sales_qty_7d,
			COALESCE(SUM(return_qty), 0) AS return_qty_30d,
			COALESCE(SUM(return_amount), 0) AS return_amount_30d
		FROM dws_sales_daily
		WHERE date_id >= $1
			AND date_id <= $3
			AND (store_code LIKE $4 || '%' OR is_cloud_store)
		GROUP BY product_id
	`

	var facts []domain.SalesFact
	if err := s.db.SelectContext(ctx, &facts, query,
		baselineStart, recentStart, dateID, s.cfg.EcommercePrefix); err != nil {
		return nil, fmt.Errorf("loading sales window for %d: %w", dateID, err)
	}

	byProduct := make(map[int64]domain.SalesFact, len(facts))
	for _, f := range facts {
		byProduct[f.ProductID] = f
	}

	return byProduct, nil
}

func (s *factStore) Products(ctx context.Context) (map[int64]domain.Product, error) {
	query := `
		SELECT
			product_id, product_code, product_name,
			category_id, category_name, property_id, property_name,
			series_id, series_name, price_list, is_main_product
		FROM dim_product
	`

	var products []domain.Product
	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("loading product dimension: %w", err)
	}

	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	return byID, nil
}

func (s *factStore) FactAvailability(ctx context.Context, dateID int) (domain.FactAvailability, error) {
	baselineStart, err := domain.ShiftDateID(dateID, -s.cfg.BaselineWindowDays)
	if err != nil {
		return domain.FactAvailability{}, err
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM dws_inventory_daily WHERE date_id = $1) AS inventory_rows,
			(SELECT COUNT(*) FROM dws_sales_daily WHERE date_id >= $2 AND date_id <= $1) AS sales_rows
	`

	var avail domain.FactAvailability
	if err := s.db.GetContext(ctx, &avail, query, dateID, baselineStart); err != nil {
		return domain.FactAvailability{}, fmt.Errorf("checking fact availability for %d: %w", dateID, err)
	}

	return avail, nil
}
