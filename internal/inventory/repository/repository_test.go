package repository

import (
	"testing"

	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

func newLedgerDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewDB(t, &domain.SKU{}, &domain.Bin{}, &domain.LockTag{})
}

func seedPool(t *testing.T, db *gorm.DB, quantity int) (skuID, binID uint) {
	t.Helper()

	sku := domain.SKU{Code: "SKU-APPLE", Name: "Apple", UnitOfMeasure: "each"}
	if err := db.Create(&sku).Error; err != nil {
		t.Fatalf("failed to create sku: %v", err)
	}
	bin := domain.Bin{Code: "A1-01", Warehouse: "WH1", Capacity: 100, Status: domain.BinOpen}
	if err := db.Create(&bin).Error; err != nil {
		t.Fatalf("failed to create bin: %v", err)
	}

	ledger := NewGormLedger(db)
	if _, err := ledger.Putaway(sku.ID, bin.ID, "BATCH-1", quantity); err != nil {
		t.Fatalf("failed to seed pool: %v", err)
	}
	return sku.ID, bin.ID
}

func TestPutawayMintsInStockTags(t *testing.T) {
	db := newLedgerDB(t)
	skuID, binID := seedPool(t, db, 5)

	ledger := NewGormLedger(db)
	count, err := ledger.CountInStock(skuID, binID)
	if err != nil {
		t.Fatalf("CountInStock failed: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 tags in stock, got %d", count)
	}

	tags, err := ledger.ListTags(skuID, binID, domain.TagInStock, 10, 0)
	if err != nil {
		t.Fatalf("ListTags failed: %v", err)
	}
	seen := make(map[string]bool)
	for _, tag := range tags {
		if seen[tag.TagCode] {
			t.Errorf("duplicate tag code %s", tag.TagCode)
		}
		seen[tag.TagCode] = true
	}

	var bin domain.Bin
	if err := db.First(&bin, binID).Error; err != nil {
		t.Fatalf("failed to load bin: %v", err)
	}
	if bin.CurrentQuantity != 5 {
		t.Errorf("expected bin quantity 5, got %d", bin.CurrentQuantity)
	}
}

func TestAllocateClaimsExactlyOnce(t *testing.T) {
	db := newLedgerDB(t)
	skuID, binID := seedPool(t, db, 8)

	ledger := NewGormLedger(db)

	first, err := ledger.Allocate(skuID, binID, 5)
	if err != nil {
		t.Fatalf("first allocation failed: %v", err)
	}
	if len(first) != 5 {
		t.Fatalf("expected 5 tags, got %d", len(first))
	}

	second, err := ledger.Allocate(skuID, binID, 5)
	if err != nil {
		t.Fatalf("second allocation failed: %v", err)
	}
	if len(second) != 3 {
		t.Fatalf("expected 3 remaining tags, got %d", len(second))
	}

	// No tag may appear in both allocations.
	claimed := make(map[uint]bool)
	for _, tag := range first {
		claimed[tag.ID] = true
	}
	for _, tag := range second {
		if claimed[tag.ID] {
			t.Errorf("tag %d allocated twice", tag.ID)
		}
	}

	count, err := ledger.CountInStock(skuID, binID)
	if err != nil {
		t.Fatalf("CountInStock failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty pool, got %d in stock", count)
	}
}

func TestAllocateShortfallIsNotAnError(t *testing.T) {
	db := newLedgerDB(t)
	skuID, binID := seedPool(t, db, 3)

	ledger := NewGormLedger(db)
	tags, err := ledger.Allocate(skuID, binID, 5)
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}
	if len(tags) != 3 {
		t.Errorf("expected 3 tags, got %d", len(tags))
	}
}

func TestAllocationConservesTagCount(t *testing.T) {
	db := newLedgerDB(t)
	skuID, binID := seedPool(t, db, 10)

	ledger := NewGormLedger(db)
	allocated, err := ledger.Allocate(skuID, binID, 4)
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}

	var total, inStock, inAllocated int64
	db.Model(&domain.LockTag{}).Count(&total)
	db.Model(&domain.LockTag{}).Where("status = ?", domain.TagInStock).Count(&inStock)
	db.Model(&domain.LockTag{}).Where("status = ?", domain.TagAllocated).Count(&inAllocated)

	if total != 10 {
		t.Errorf("tag count changed: %d", total)
	}
	if inStock != 6 || inAllocated != 4 {
		t.Errorf("expected 6 in stock and 4 allocated, got %d/%d", inStock, inAllocated)
	}

	// Release returns them to the pool.
	ids := make([]uint, 0, len(allocated))
	for _, tag := range allocated {
		ids = append(ids, tag.ID)
	}
	if err := ledger.Release(ids); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	count, _ := ledger.CountInStock(skuID, binID)
	if count != 10 {
		t.Errorf("expected full pool after release, got %d", count)
	}
}

func TestMarkScannedIsTerminal(t *testing.T) {
	db := newLedgerDB(t)
	skuID, binID := seedPool(t, db, 1)

	ledger := NewGormLedger(db)
	tags, err := ledger.Allocate(skuID, binID, 1)
	if err != nil || len(tags) != 1 {
		t.Fatalf("allocation failed: %v (%d tags)", err, len(tags))
	}

	if err := ledger.MarkScanned(tags[0].ID); err != nil {
		t.Fatalf("MarkScanned failed: %v", err)
	}
	if err := ledger.MarkScanned(tags[0].ID); err != nil {
		t.Fatalf("repeated MarkScanned failed: %v", err)
	}

	tag, err := ledger.FindTagByCode(tags[0].TagCode)
	if err != nil {
		t.Fatalf("FindTagByCode failed: %v", err)
	}
	if tag.Status != domain.TagScanned {
		t.Errorf("expected Scanned, got %s", tag.Status)
	}

	// A scanned tag can never be claimed again.
	more, err := ledger.Allocate(skuID, binID, 1)
	if err != nil {
		t.Fatalf("allocation failed: %v", err)
	}
	if len(more) != 0 {
		t.Errorf("scanned tag re-entered the pool")
	}
}
