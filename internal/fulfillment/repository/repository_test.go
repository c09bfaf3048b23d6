package repository

import (
	"testing"

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

func TestAdvanceItemProgressCountsFromStoredValue(t *testing.T) {
	db := testutil.NewDB(t, &domain.Task{}, &domain.TaskItem{}, &domain.TaskItemLockTag{})
	repo := NewGormTaskRepository(db)

	item := &domain.TaskItem{
		TaskID:   1,
		SKUID:    1,
		SKUCode:  "SKU-1",
		BinID:    1,
		BinCode:  "BIN-1",
		Quantity: 3,
		Status:   domain.TaskItemPending,
	}
	if err := repo.CreateItem(item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	count, err := repo.AdvanceItemProgress(item.ID)
	if err != nil {
		t.Fatalf("AdvanceItemProgress failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	// Another writer moves the counter between our calls; the next
	// advance must build on the stored value, not on what this handle
	// last saw.
	if err := db.Model(&domain.TaskItem{}).
		Where("id = ?", item.ID).
		Update("quantity_scanned", 2).Error; err != nil {
		t.Fatalf("failed to move counter: %v", err)
	}

	count, err = repo.AdvanceItemProgress(item.ID)
	if err != nil {
		t.Fatalf("AdvanceItemProgress failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected count 3 after external update, got %d", count)
	}

	var stored domain.TaskItem
	if err := db.First(&stored, item.ID).Error; err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	if stored.Status != domain.TaskItemCompleted {
		t.Errorf("expected item Completed at full count, got %s", stored.Status)
	}
}

func TestAdvanceItemProgressStopsAtQuantity(t *testing.T) {
	db := testutil.NewDB(t, &domain.Task{}, &domain.TaskItem{}, &domain.TaskItemLockTag{})
	repo := NewGormTaskRepository(db)

	item := &domain.TaskItem{
		TaskID:   1,
		SKUID:    1,
		SKUCode:  "SKU-1",
		BinID:    1,
		BinCode:  "BIN-1",
		Quantity: 1,
		Status:   domain.TaskItemPending,
	}
	if err := repo.CreateItem(item); err != nil {
		t.Fatalf("failed to create item: %v", err)
	}

	for i := 0; i < 3; i++ {
		count, err := repo.AdvanceItemProgress(item.ID)
		if err != nil {
			t.Fatalf("advance %d failed: %v", i, err)
		}
		if count != 1 {
			t.Errorf("advance %d: expected count pinned at 1, got %d", i, count)
		}
	}
}
