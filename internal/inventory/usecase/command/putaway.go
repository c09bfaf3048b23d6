package command

import (
	"errors"
	"fmt"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
)

// PutawayCommand receives stock into a bin, minting one lock tag per
// physical unit.
type PutawayCommand struct {
	SKUCode  string
	BinCode  string
	BatchID  string
	Quantity int
}

// PutawayResult reports the minted tags.
type PutawayResult struct {
	SKU  *domain.SKU      `json:"sku"`
	Bin  *domain.Bin      `json:"bin"`
	Tags []domain.LockTag `json:"tags"`
}

// PutawayHandler handles putaway commands.
type PutawayHandler struct {
	catalog domain.CatalogRepository
	ledger  domain.Ledger
}

// NewPutawayHandler creates a new putaway handler.
func NewPutawayHandler(catalog domain.CatalogRepository, ledger domain.Ledger) *PutawayHandler {
	return &PutawayHandler{catalog: catalog, ledger: ledger}
}

// Handle executes the putaway command.
func (h *PutawayHandler) Handle(cmd PutawayCommand) (*PutawayResult, error) {
	if cmd.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	sku, err := h.catalog.FindSKUByCode(cmd.SKUCode)
	if err != nil {
		return nil, fmt.Errorf("unknown sku %s: %w", cmd.SKUCode, err)
	}
	bin, err := h.catalog.FindBinByCode(cmd.BinCode)
	if err != nil {
		return nil, fmt.Errorf("unknown bin %s: %w", cmd.BinCode, err)
	}

	// Capacity is enforced inside the minting transaction, where the
	// bin count cannot move under us.
	tags, err := h.ledger.Putaway(sku.ID, bin.ID, cmd.BatchID, cmd.Quantity)
	if err != nil {
		if errors.Is(err, domain.ErrBinOverCapacity) {
			return nil, fmt.Errorf("bin %s: %w", bin.Code, domain.ErrBinOverCapacity)
		}
		return nil, fmt.Errorf("putaway failed: %w", err)
	}

	bin.CurrentQuantity += cmd.Quantity
	return &PutawayResult{SKU: sku, Bin: bin, Tags: tags}, nil
}
