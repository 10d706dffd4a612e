package health

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hefangdw/invhealth/internal/domain"
	"github.com/hefangdw/invhealth/internal/repository"
)

// Engine joins the inventory, sales and product aggregates for a snapshot
// date and derives one health record per eligible product. Eligible means
// present in the inventory aggregate and flagged as a main product: the
// inventory aggregate is the driving side of the join, so a product with
// sales but no inventory row is excluded.
type Engine struct {
	facts repository.FactStore
	calc  *Calculator
	now   func() time.Time
	log   zerolog.Logger
}

// NewEngine creates an engine over the given fact store.
func NewEngine(facts repository.FactStore, calc *Calculator, log zerolog.Logger) *Engine {
	return &Engine{
		facts: facts,
		calc:  calc,
		now:   time.Now,
		log:   log,
	}
}

// WithClock overrides the timestamp source, mainly for deterministic tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Compute produces the full health record set for a snapshot date, ordered
// by product id. Data-quality anomalies (missing dimension rows, negative
// quantities) are logged and skipped or passed through, never fatal.
func (e *Engine) Compute(ctx context.Context, dateID int) ([]domain.HealthRecord, error) {
	var (
		inventory []domain.InventoryFact
		sales     map[int64]domain.SalesFact
		products  map[int64]domain.Product
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		inventory, err = e.facts.InventorySnapshot(gctx, dateID)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = e.facts.SalesWindow(gctx, dateID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = e.facts.Products(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading facts for %d: %w", dateID, err)
	}

	sort.Slice(inventory, func(i, j int) bool {
		return inventory[i].ProductID < inventory[j].ProductID
	})

	etlTime := e.now()
	records := make([]domain.HealthRecord, 0, len(inventory))
	var missingDim, notMain, negativeQty int

	for _, inv := range inventory {
		product, ok := products[inv.ProductID]
		if !ok {
			missingDim++
			e.log.Warn().
				Int64("product_id", inv.ProductID).
				Int("date_id", dateID).
				Msg("inventory row without product dimension, skipping")
			continue
		}
		if !product.IsMainProduct {
			notMain++
			continue
		}

		if inv.TotalQty < 0 || inv.PurchaseRemQty < 0 {
			// Passed through uncorrected; the quality checker reports these.
			negativeQty++
			e.log.Warn().
				Int64("product_id", inv.ProductID).
				Int64("total_qty", inv.TotalQty).
				Int64("purchase_rem_qty", inv.PurchaseRemQty).
				Msg("negative inventory quantity")
		}

		records = append(records, e.calc.Compute(dateID, etlTime, product, inv, sales[inv.ProductID]))
	}

	var salesOrphans int
	for productID := range sales {
		if _, ok := productIDInInventory(inventory, productID); !ok {
			salesOrphans++
			e.log.Warn().
				Int64("product_id", productID).
				Int("date_id", dateID).
				Msg("sales aggregate without inventory row, excluded")
		}
	}

	e.log.Info().
		Int("date_id", dateID).
		Int("records", len(records)).
		Int("missing_dimension", missingDim).
		Int("not_main_product", notMain).
		Int("negative_qty", negativeQty).
		Int("sales_without_inventory", salesOrphans).
		Msg("health computation complete")

	return records, nil
}

func productIDInInventory(inventory []domain.InventoryFact, productID int64) (int, bool) {
	i := sort.Search(len(inventory), func(i int) bool {
		return inventory[i].ProductID >= productID
	})
	if i < len(inventory) && inventory[i].ProductID == productID {
		return i, true
	}

	return -1, false
}
