package command

import (
	"fmt"

	"gorm.io/gorm"

	invdomain "github.com/pickerpack/fulfillment/internal/inventory/domain"

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

// ProcessScanCommand advances a pick task by one decoded barcode.
type ProcessScanCommand struct {
	TaskID   uint
	WorkerID uint
	Code     string
}

// ScanResult reports the outcome of a scan. Matched=false means the
// code does not belong to this task, a normal negative result.
type ScanResult struct {
	Matched         bool   `json:"matched"`
	TaskID          uint   `json:"task_id,omitempty"`
	ItemID          uint   `json:"item_id,omitempty"`
	SKU             string `json:"sku,omitempty"`
	Action          string `json:"action,omitempty"`
	Quantity        int    `json:"quantity,omitempty"`
	QuantityScanned int    `json:"quantity_scanned,omitempty"`
	Message         string `json:"message"`
}

// ProcessScanHandler is the scan state machine: it matches a decoded
// tag code to a reservation row, flips it Unscanned->Scanned, and moves
// the owning item's progress counter. The counter only moves on a
// genuine transition, so re-scanning the same physical tag cannot
// inflate progress.
type ProcessScanHandler struct {
	db     *gorm.DB
	tasks  domain.TaskRepository
	ledger invdomain.Ledger
}

// NewProcessScanHandler creates a new process scan handler.
func NewProcessScanHandler(db *gorm.DB, tasks domain.TaskRepository, ledger invdomain.Ledger) *ProcessScanHandler {
	return &ProcessScanHandler{db: db, tasks: tasks, ledger: ledger}
}

// Handle executes the scan command. One transaction per scan; the
// progress counter is incremented in the database, so parallel scans
// of different tags on the same item each count exactly once.
func (h *ProcessScanHandler) Handle(cmd ProcessScanCommand) (*ScanResult, error) {
	if cmd.Code == "" {
		return nil, fmt.Errorf("scan code is required")
	}

	var result ScanResult
	err := h.db.Transaction(func(tx *gorm.DB) error {
		tasks := h.tasks.WithTx(tx)

		task, err := tasks.FindAssigned(cmd.TaskID, cmd.WorkerID)
		if err != nil {
			return err
		}

		reservation, item, err := tasks.FindReservation(task.ID, cmd.Code)
		if err != nil {
			return fmt.Errorf("failed to look up reservation: %w", err)
		}
		if reservation == nil {
			result = ScanResult{
				Matched: false,
				TaskID:  task.ID,
				Message: "Lock tag not found in this task",
			}
			return nil
		}

		flipped, err := tasks.ClaimReservationScan(reservation.ID)
		if err != nil {
			return fmt.Errorf("failed to mark reservation scanned: %w", err)
		}
		if !flipped {
			// Already scanned: idempotent, progress unchanged.
			result = ScanResult{
				Matched:         true,
				TaskID:          task.ID,
				ItemID:          item.ID,
				SKU:             item.SKUCode,
				Action:          "already_scanned",
				Quantity:        item.Quantity,
				QuantityScanned: item.QuantityScanned,
				Message:         fmt.Sprintf("Scanned %d/%d", item.QuantityScanned, item.Quantity),
			}
			return nil
		}

		if err := h.ledger.WithTx(tx).MarkScanned(reservation.LockTagID); err != nil {
			return fmt.Errorf("failed to consume lock tag: %w", err)
		}

		newCount, err := tasks.AdvanceItemProgress(item.ID)
		if err != nil {
			return fmt.Errorf("failed to update item progress: %w", err)
		}

		result = ScanResult{
			Matched:         true,
			TaskID:          task.ID,
			ItemID:          item.ID,
			SKU:             item.SKUCode,
			Action:          "scanned",
			Quantity:        item.Quantity,
			QuantityScanned: newCount,
			Message:         fmt.Sprintf("Scanned %d/%d", newCount, item.Quantity),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
