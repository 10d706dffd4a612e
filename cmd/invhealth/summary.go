package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/hefangdw/invhealth/internal/cache"
	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/quality"
	"github.com/hefangdw/invhealth/internal/snapshot"
)

var divider = strings.Repeat("=", 60)

const summaryDurationUnit = 10 * time.Millisecond

// printRunSummary renders the post-run digest merchandising reads off the
// scheduler logs: status distribution, grade distribution, replenishment
// totals with the surplus (negative) side broken out.
func printRunSummary(result *snapshot.Result) {
	printSummaryHeader(result.DateID)
	printDistributions(result.Statuses, result.Grades, result.Replenishment)
	fmt.Printf("\n%d records in %s\n%s\n", result.Records, result.Duration.Round(summaryDurationUnit), divider)
}

// printDateSummary renders a stored digest, whether it came from cache or
// was rebuilt from the warehouse.
func printDateSummary(s *cache.SnapshotSummary) {
	printSummaryHeader(s.SnapshotDate)
	printDistributions(s.Statuses, s.Grades, s.Replenishment)
	fmt.Printf("\n%d records, computed %s\n%s\n", s.Records, s.ComputedAt.Format(time.RFC3339), divider)
}

func printSummaryHeader(dateID int) {
	fmt.Printf("\n%s\n", divider)
	fmt.Printf("Inventory health summary (%d)\n", dateID)
	fmt.Println(divider)
}

func printDistributions(statuses []domain.StatusCount, grades []domain.GradeCount, r domain.ReplenishmentSummary) {
	fmt.Println("\nStatus distribution")
	fmt.Printf("%-18s %8s %12s\n", "status", "SKUs", "on-hand qty")
	for _, s := range statuses {
		fmt.Printf("%-18s %8d %12d\n", s.Status.Label(), s.SKUCount, s.TotalQty)
	}

	fmt.Println("\nGrade distribution")
	fmt.Printf("%-6s %8s %12s\n", "grade", "SKUs", "sales qty")
	for _, g := range grades {
		fmt.Printf("%-6s %8d %12d\n", g.Grade, g.SKUCount, g.SalesQty)
	}

	fmt.Println("\nReplenishment")
	fmt.Printf("  SKUs with purchases in transit: %d (%d units)\n", r.SKUWithRem, r.TotalRemQty)
	fmt.Printf("  suggested restock:  %d units\n", r.PositiveSuggest)
	fmt.Printf("  surplus signalled:  %d units across %d SKUs\n", r.NegativeSuggest, r.SKUWithNegative)
	fmt.Printf("  net suggestion:     %d units\n", r.NetSuggest)
}

func printFindings(findings []quality.Finding) {
	if len(findings) == 0 {
		return
	}

	fmt.Println("\nQuality checks")
	for _, f := range findings {
		marker := "ok  "
		if f.Severity == quality.SeverityWarning {
			marker = "WARN"
		}
		fmt.Printf("  [%s] %-24s %6d  %s\n", marker, f.Name, f.Count, f.Detail)
	}
}
