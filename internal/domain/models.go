package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one row of the product dimension. It is refreshed out-of-band
// and treated as immutable for the duration of a computation run.
type Product struct {
	ProductID     int64           `json:"product_id" db:"product_id"`
	ProductCode   string          `json:"product_code" db:"product_code"`
	ProductName   string          `json:"product_name" db:"product_name"`
	CategoryID    int64           `json:"category_id" db:"category_id"`
	CategoryName  string          `json:"category_name" db:"category_name"`
	PropertyID    int64           `json:"property_id" db:"property_id"`
	PropertyName  string          `json:"property_name" db:"property_name"`
	SeriesID      int64           `json:"series_id" db:"series_id"`
	SeriesName    string          `json:"series_name" db:"series_name"`
	PriceList     decimal.Decimal `json:"price_list" db:"price_list"`
	IsMainProduct bool            `json:"is_main_product" db:"is_main_product"`
}

// InventoryFact aggregates on-hand quantities for one product on one snapshot
// date, summed over the eligible stores (main warehouse or cloud stores).
type InventoryFact struct {
	ProductID      int64 `json:"product_id" db:"product_id"`
	TotalQty       int64 `json:"total_qty" db:"total_qty"`
	WarehouseQty   int64 `json:"warehouse_qty" db:"warehouse_qty"`
	CloudQty       int64 `json:"cloud_qty" db:"cloud_qty"`
	PurchaseRemQty int64 `json:"purchase_rem_qty" db:"purchase_rem_qty"`
}

// SalesFact aggregates trailing-window sales for one product over the
// eligible channels (e-commerce or cloud stores). Returns are tracked
// separately from gross sales, never netted.
type SalesFact struct {
	ProductID      int64           `json:"product_id" db:"product_id"`
	SalesQty30     int64           `json:"sales_qty_30d" db:"sales_qty_30d"`
	SalesAmt30     decimal.Decimal `json:"sales_amt_30d" db:"sales_amt_30d"`
	SalesQty7      int64           `json:"sales_qty_7d" db:"sales_qty_7d"`
	ReturnQty30    int64           `json:"return_qty_30d" db:"return_qty_30d"`
	ReturnAmount30 decimal.Decimal `json:"return_amount_30d" db:"return_amount_30d"`
}

// HealthRecord is the derived entity the engine produces: one row per
// (product_id, snapshot_date). Rank, shares, grade and trend are filled in
// by the grading pass; everything else by the health computation.
type HealthRecord struct {
	SnapshotDate int   `json:"snapshot_date" db:"snapshot_date"`
	ProductID    int64 `json:"product_id" db:"product_id"`

	ProductCode  string          `json:"product_code" db:"product_code"`
	ProductName  string          `json:"product_name" db:"product_name"`
	CategoryID   int64           `json:"category_id" db:"category_id"`
	CategoryName string          `json:"category_name" db:"category_name"`
	PropertyID   int64           `json:"property_id" db:"property_id"`
	PropertyName string          `json:"property_name" db:"property_name"`
	SeriesID     int64           `json:"series_id" db:"series_id"`
	SeriesName   string          `json:"series_name" db:"series_name"`
	PriceList    decimal.Decimal `json:"price_list" db:"price_list"`

	TotalQty       int64 `json:"total_qty" db:"total_qty"`
	WarehouseQty   int64 `json:"warehouse_qty" db:"warehouse_qty"`
	CloudQty       int64 `json:"cloud_qty" db:"cloud_qty"`
	PurchaseRemQty int64 `json:"purchase_rem_qty" db:"purchase_rem_qty"`

	SalesQty30     int64           `json:"sales_qty_30d" db:"sales_qty_30d"`
	SalesAmt30     decimal.Decimal `json:"sales_amt_30d" db:"sales_amt_30d"`
	SalesQty7      int64           `json:"sales_qty_7d" db:"sales_qty_7d"`
	ReturnQty30    int64           `json:"return_qty_30d" db:"return_qty_30d"`
	ReturnAmount30 decimal.Decimal `json:"return_amount_30d" db:"return_amount_30d"`

	DailyAvgSales  decimal.Decimal     `json:"daily_avg_sales" db:"daily_avg_sales"`
	DailyAvgSales7 decimal.Decimal     `json:"daily_avg_sales_7d" db:"daily_avg_sales_7d"`
	SalesVelocity  decimal.NullDecimal `json:"sales_velocity" db:"sales_velocity"`
	TurnoverDays   decimal.Decimal     `json:"turnover_days" db:"turnover_days"`

	InventoryStatus InventoryStatus `json:"inventory_status" db:"inventory_status"`
	StatusPriority  int             `json:"status_priority" db:"status_priority"`

	SalesRank       int             `json:"sales_rank" db:"sales_rank"`
	SalesRatio      decimal.Decimal `json:"sales_ratio" db:"sales_ratio"`
	CumulativeRatio decimal.Decimal `json:"cumulative_ratio" db:"cumulative_ratio"`
	SKUGrade        SKUGrade        `json:"sku_grade" db:"sku_grade"`
	SalesTrend      SalesTrend      `json:"sales_trend" db:"sales_trend"`

	SuggestQty int64     `json:"suggest_qty" db:"suggest_qty"`
	EtlTime    time.Time `json:"etl_time" db:"etl_time"`
}

// FactAvailability reports how many fact rows the warehouse holds for a
// snapshot date, used by the availability stage before computing.
type FactAvailability struct {
	InventoryRows int `db:"inventory_rows"`
	SalesRows     int `db:"sales_rows"`
}

// StatusCount is one row of the per-status snapshot breakdown.
type StatusCount struct {
	Status   InventoryStatus `json:"inventory_status" db:"inventory_status"`
	SKUCount int             `json:"sku_count" db:"sku_count"`
	TotalQty int64           `json:"total_qty" db:"total_qty"`
}

// GradeCount is one row of the per-grade snapshot breakdown.
type GradeCount struct {
	Grade    SKUGrade `json:"sku_grade" db:"sku_grade"`
	SKUCount int      `json:"sku_count" db:"sku_count"`
	SalesQty int64    `json:"sales_qty" db:"sales_qty"`
}

// ReplenishmentSummary aggregates the suggested quantities of a snapshot,
// keeping surplus (negative) and shortage (positive) signals apart.
type ReplenishmentSummary struct {
	SKUWithRem      int   `json:"sku_with_rem" db:"sku_with_rem"`
	TotalRemQty     int64 `json:"total_rem_qty" db:"total_rem_qty"`
	PositiveSuggest int64 `json:"positive_suggest" db:"positive_suggest"`
	NegativeSuggest int64 `json:"negative_suggest" db:"negative_suggest"`
	NetSuggest      int64 `json:"net_suggest" db:"net_suggest"`
	SKUWithNegative int   `json:"sku_with_negative" db:"sku_with_negative"`
}
