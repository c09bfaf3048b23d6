package command

import (
	"errors"
	"testing"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
	"github.com/pickerpack/fulfillment/internal/inventory/repository"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

func newPutawayEnv(t *testing.T) (*PutawayHandler, domain.CatalogRepository, domain.Ledger) {
	t.Helper()
	db := testutil.NewDB(t, &domain.SKU{}, &domain.Bin{}, &domain.LockTag{})
	catalog := repository.NewGormCatalogRepository(db)
	ledger := repository.NewGormLedger(db)
	return NewPutawayHandler(catalog, ledger), catalog, ledger
}

func seedCatalog(t *testing.T, catalog domain.CatalogRepository, capacity int) {
	t.Helper()
	if err := catalog.CreateSKU(&domain.SKU{Code: "SKU-1", Name: "Widget", UnitOfMeasure: "each"}); err != nil {
		t.Fatalf("failed to create sku: %v", err)
	}
	if err := catalog.CreateBin(&domain.Bin{Code: "BIN-1", Warehouse: "WH1", Capacity: capacity, Status: domain.BinOpen}); err != nil {
		t.Fatalf("failed to create bin: %v", err)
	}
}

func TestPutawayMintsInStockTags(t *testing.T) {
	handler, catalog, _ := newPutawayEnv(t)
	seedCatalog(t, catalog, 10)

	result, err := handler.Handle(PutawayCommand{SKUCode: "SKU-1", BinCode: "BIN-1", Quantity: 3})
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if len(result.Tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(result.Tags))
	}
	for _, tag := range result.Tags {
		if tag.Status != domain.TagInStock {
			t.Errorf("expected InStock tag, got %s", tag.Status)
		}
	}

	bin, err := catalog.FindBinByCode("BIN-1")
	if err != nil {
		t.Fatalf("FindBinByCode failed: %v", err)
	}
	if bin.CurrentQuantity != 3 {
		t.Errorf("expected bin count 3, got %d", bin.CurrentQuantity)
	}
}

func TestPutawayRejectsOverCapacity(t *testing.T) {
	handler, catalog, ledger := newPutawayEnv(t)
	seedCatalog(t, catalog, 3)

	if _, err := handler.Handle(PutawayCommand{SKUCode: "SKU-1", BinCode: "BIN-1", Quantity: 2}); err != nil {
		t.Fatalf("first putaway failed: %v", err)
	}

	_, err := handler.Handle(PutawayCommand{SKUCode: "SKU-1", BinCode: "BIN-1", Quantity: 2})
	if !errors.Is(err, domain.ErrBinOverCapacity) {
		t.Fatalf("expected ErrBinOverCapacity, got %v", err)
	}

	// The rejected putaway mints nothing and leaves the count alone.
	bin, err := catalog.FindBinByCode("BIN-1")
	if err != nil {
		t.Fatalf("FindBinByCode failed: %v", err)
	}
	if bin.CurrentQuantity != 2 {
		t.Errorf("expected bin count 2, got %d", bin.CurrentQuantity)
	}
	sku, _ := catalog.FindSKUByCode("SKU-1")
	inStock, err := ledger.CountInStock(sku.ID, bin.ID)
	if err != nil {
		t.Fatalf("CountInStock failed: %v", err)
	}
	if inStock != 2 {
		t.Errorf("expected 2 InStock tags, got %d", inStock)
	}
}

func TestPutawayUnlimitedWhenCapacityUnset(t *testing.T) {
	handler, catalog, _ := newPutawayEnv(t)
	seedCatalog(t, catalog, 0)

	if _, err := handler.Handle(PutawayCommand{SKUCode: "SKU-1", BinCode: "BIN-1", Quantity: 50}); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
}
