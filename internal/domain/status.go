package domain

import "strings"

// InventoryStatus classifies a product's stock position for a snapshot date.
type InventoryStatus string

const (
	StatusUrgentShortage InventoryStatus = "urgent_shortage"
	StatusNeedsRestock   InventoryStatus = "needs_restock"
	StatusNormal         InventoryStatus = "normal"
	StatusOverstocked    InventoryStatus = "overstocked"
	StatusDeadStock      InventoryStatus = "dead_stock"
	StatusDiscontinued   InventoryStatus = "discontinued"
)

var statusPriorities = map[InventoryStatus]int{
	StatusUrgentShortage: 1,
	StatusNeedsRestock:   2,
	StatusNormal:         3,
	StatusOverstocked:    4,
	StatusDeadStock:      5,
	StatusDiscontinued:   6,
}

var statusLabels = map[InventoryStatus]string{
	StatusUrgentShortage: "Urgent shortage",
	StatusNeedsRestock:   "Needs restock",
	StatusNormal:         "Normal",
	StatusOverstocked:    "Overstocked",
	StatusDeadStock:      "Dead stock",
	StatusDiscontinued:   "Discontinued",
}

// AllStatuses lists every status in ascending priority order.
var AllStatuses = []InventoryStatus{
	StatusUrgentShortage,
	StatusNeedsRestock,
	StatusNormal,
	StatusOverstocked,
	StatusDeadStock,
	StatusDiscontinued,
}

// Priority returns the numeric urgency of a status (1 highest, 6 lowest).
// Unknown statuses sort last.
func (s InventoryStatus) Priority() int {
	if p, ok := statusPriorities[s]; ok {
		return p
	}

	return len(statusPriorities) + 1
}

// Label returns a human-readable label for the status.
func (s InventoryStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}

	return string(s)
}

// ParseInventoryStatus returns the status for a given value or label
// (case-insensitive).
func ParseInventoryStatus(v string) (InventoryStatus, bool) {
	needle := strings.ToLower(strings.TrimSpace(v))
	for s, label := range statusLabels {
		if needle == string(s) || needle == strings.ToLower(label) {
			return s, true
		}
	}

	return "", false
}

// SKUGrade is the Pareto-style sales-concentration grade.
type SKUGrade string

const (
	GradeS SKUGrade = "S"
	GradeA SKUGrade = "A"
	GradeB SKUGrade = "B"
	GradeC SKUGrade = "C"
)

// AllGrades lists the grades from highest to lowest concentration.
var AllGrades = []SKUGrade{GradeS, GradeA, GradeB, GradeC}

// SalesTrend labels the demand direction derived from sales velocity.
type SalesTrend string

const (
	TrendAccelerating     SalesTrend = "accelerating"
	TrendStable           SalesTrend = "stable"
	TrendCooling          SalesTrend = "cooling"
	TrendDecliningSharply SalesTrend = "declining_sharply"
	TrendNoSales          SalesTrend = "no_sales"
)
