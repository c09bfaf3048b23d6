package command

import (
	"testing"

	"gorm.io/gorm"

	invdomain "github.com/pickerpack/fulfillment/internal/inventory/domain"
	invrepo "github.com/pickerpack/fulfillment/internal/inventory/repository"

	"github.com/pickerpack/fulfillment/internal/fulfillment/assign"
	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
	"github.com/pickerpack/fulfillment/internal/fulfillment/repository"
	"github.com/pickerpack/fulfillment/internal/testutil"
)

type env struct {
	db     *gorm.DB
	orders domain.OrderRepository
	tasks  domain.TaskRepository
	ledger invdomain.Ledger

	create   *CreateOrderHandler
	scan     *ProcessScanHandler
	complete *CompleteTaskHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db := testutil.NewDB(t,
		&invdomain.SKU{},
		&invdomain.Bin{},
		&invdomain.LockTag{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.Task{},
		&domain.TaskItem{},
		&domain.TaskItemLockTag{},
	)

	orders := repository.NewGormOrderRepository(db)
	tasks := repository.NewGormTaskRepository(db)
	ledger := invrepo.NewGormLedger(db)

	return &env{
		db:       db,
		orders:   orders,
		tasks:    tasks,
		ledger:   ledger,
		create:   NewCreateOrderHandler(db, orders, tasks, ledger, assign.NewRoundRobin()),
		scan:     NewProcessScanHandler(db, tasks, ledger),
		complete: NewCompleteTaskHandler(db, tasks, orders, nil),
	}
}

// seedStock creates the sku and bin if needed and puts quantity units
// away, returning the pair's ids.
func (e *env) seedStock(t *testing.T, skuCode, binCode string, quantity int) (uint, uint) {
	t.Helper()

	var sku invdomain.SKU
	err := e.db.Where("code = ?", skuCode).First(&sku).Error
	if err != nil {
		sku = invdomain.SKU{Code: skuCode, Name: skuCode, UnitOfMeasure: "each"}
		if err := e.db.Create(&sku).Error; err != nil {
			t.Fatalf("failed to create sku: %v", err)
		}
	}

	var bin invdomain.Bin
	err = e.db.Where("code = ?", binCode).First(&bin).Error
	if err != nil {
		bin = invdomain.Bin{Code: binCode, Warehouse: "WH1", Capacity: 1000, Status: invdomain.BinOpen}
		if err := e.db.Create(&bin).Error; err != nil {
			t.Fatalf("failed to create bin: %v", err)
		}
	}

	if quantity > 0 {
		if _, err := e.ledger.Putaway(sku.ID, bin.ID, "", quantity); err != nil {
			t.Fatalf("failed to seed stock: %v", err)
		}
	}
	return sku.ID, bin.ID
}

// createSimpleOrder seeds stock and creates a one-line order assigned
// to the sole worker in the pool.
func (e *env) createSimpleOrder(t *testing.T, orderNumber string, workerID uint, quantity int) *CreateOrderResult {
	t.Helper()

	skuID, binID := e.seedStock(t, "SKU-"+orderNumber, "BIN-"+orderNumber, quantity)
	result, err := e.create.Handle(CreateOrderCommand{
		OrderNumber: orderNumber,
		Warehouse:   "WH1",
		Items: []OrderItemSpec{
			{SKUID: skuID, SKUCode: "SKU-" + orderNumber, BinID: binID, BinCode: "BIN-" + orderNumber, Quantity: quantity},
		},
		WorkerPool: []uint{workerID},
	})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return result
}
