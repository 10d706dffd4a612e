package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/repository"
)

// header is the column order merchandising expects, matching the persisted
// snapshot schema.
var header = []string{
	"snapshot_date", "product_id", "product_code", "product_name",
	"category_id", "category_name", "property_name", "series_name", "price_list",
	"total_qty", "warehouse_qty", "cloud_qty", "purchase_rem_qty",
	"sales_qty_30d", "sales_amt_30d", "sales_qty_7d", "return_qty_30d",
	"daily_avg_sales", "daily_avg_sales_7d", "sales_velocity", "turnover_days",
	"inventory_status", "status_priority",
	"sales_rank", "sales_ratio", "cumulative_ratio", "sku_grade", "sales_trend",
	"suggest_qty", "etl_time",
}

// Exporter writes a persisted snapshot out for merchandising, as CSV or as
// an XLSX workbook.
type Exporter struct {
	store repository.HealthRecordStore
}

func NewExporter(store repository.HealthRecordStore) *Exporter {
	return &Exporter{store: store}
}

// WriteCSV streams the snapshot for a date, rank order, and returns the row
// count.
func (e *Exporter) WriteCSV(ctx context.Context, dateID int, filter repository.SnapshotFilter, w io.Writer) (int, error) {
	records, err := e.store.Snapshot(ctx, dateID, filter)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing csv header: %w", err)
	}
	for i := range records {
		if err := cw.Write(recordRow(&records[i])); err != nil {
			return 0, fmt.Errorf("writing csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(records), nil
}

// WriteCSVFile writes the snapshot to a file at path. The close error is
// checked so a short flush on a full disk is not reported as success.
func (e *Exporter) WriteCSVFile(ctx context.Context, dateID int, filter repository.SnapshotFilter, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", path, err)
	}

	rows, err := e.WriteCSV(ctx, dateID, filter, f)
	if cerr := f.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("closing %s: %w", path, cerr)
	}
	if err != nil {
		return 0, err
	}

	return rows, nil
}

// WriteXLSX writes the snapshot to an XLSX file at path and returns the row
// count.
func (e *Exporter) WriteXLSX(ctx context.Context, dateID int, filter repository.SnapshotFilter, path string) (int, error) {
	records, err := e.store.Snapshot(ctx, dateID, filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return 0, err
		}
	}

	for i := range records {
		row := recordRow(&records[i])
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return 0, err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("saving xlsx %s: %w", path, err)
	}

	return len(records), nil
}

func recordRow(rec *domain.HealthRecord) []string {
	velocity := ""
	if rec.SalesVelocity.Valid {
		velocity = rec.SalesVelocity.Decimal.StringFixed(2)
	}

	return []string{
		strconv.Itoa(rec.SnapshotDate),
		strconv.FormatInt(rec.ProductID, 10),
		rec.ProductCode,
		rec.ProductName,
		strconv.FormatInt(rec.CategoryID, 10),
		rec.CategoryName,
		rec.PropertyName,
		rec.SeriesName,
		rec.PriceList.StringFixed(2),
		strconv.FormatInt(rec.TotalQty, 10),
		strconv.FormatInt(rec.WarehouseQty, 10),
		strconv.FormatInt(rec.CloudQty, 10),
		strconv.FormatInt(rec.PurchaseRemQty, 10),
		strconv.FormatInt(rec.SalesQty30, 10),
		rec.SalesAmt30.StringFixed(2),
		strconv.FormatInt(rec.SalesQty7, 10),
		strconv.FormatInt(rec.ReturnQty30, 10),
		rec.DailyAvgSales.StringFixed(2),
		rec.DailyAvgSales7.StringFixed(2),
		velocity,
		rec.TurnoverDays.StringFixed(1),
		string(rec.InventoryStatus),
		strconv.Itoa(rec.StatusPriority),
		strconv.Itoa(rec.SalesRank),
		rec.SalesRatio.StringFixed(2),
		rec.CumulativeRatio.StringFixed(2),
		string(rec.SKUGrade),
		string(rec.SalesTrend),
		strconv.FormatInt(rec.SuggestQty, 10),
		rec.EtlTime.Format(time.RFC3339),
	}
}
