package command

import (
	"fmt"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
)

// CreateSKUCommand registers a new stock keeping unit.
type CreateSKUCommand struct {
	Code          string
	Name          string
	Description   string
	Category      string
	UnitOfMeasure string
}

// CreateSKUHandler handles create SKU commands.
type CreateSKUHandler struct {
	catalog domain.CatalogRepository
}

// NewCreateSKUHandler creates a new create SKU handler.
func NewCreateSKUHandler(catalog domain.CatalogRepository) *CreateSKUHandler {
	return &CreateSKUHandler{catalog: catalog}
}

// Handle executes the create SKU command.
func (h *CreateSKUHandler) Handle(cmd CreateSKUCommand) (*domain.SKU, error) {
	if cmd.Code == "" || cmd.Name == "" {
		return nil, fmt.Errorf("code and name are required")
	}
	if cmd.UnitOfMeasure == "" {
		cmd.UnitOfMeasure = "each"
	}

	sku := &domain.SKU{
		Code:          cmd.Code,
		Name:          cmd.Name,
		Description:   cmd.Description,
		Category:      cmd.Category,
		UnitOfMeasure: cmd.UnitOfMeasure,
	}
	if err := h.catalog.CreateSKU(sku); err != nil {
		return nil, fmt.Errorf("failed to create sku: %w", err)
	}
	return sku, nil
}

// CreateBinCommand registers a new storage bin.
type CreateBinCommand struct {
	Code      string
	Warehouse string
	Zone      string
	Capacity  int
	Status    string
}

// CreateBinHandler handles create bin commands.
type CreateBinHandler struct {
	catalog domain.CatalogRepository
}

// NewCreateBinHandler creates a new create bin handler.
func NewCreateBinHandler(catalog domain.CatalogRepository) *CreateBinHandler {
	return &CreateBinHandler{catalog: catalog}
}

// Handle executes the create bin command.
func (h *CreateBinHandler) Handle(cmd CreateBinCommand) (*domain.Bin, error) {
	if cmd.Code == "" || cmd.Warehouse == "" {
		return nil, fmt.Errorf("code and warehouse are required")
	}
	if cmd.Capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative")
	}
	if cmd.Status == "" {
		cmd.Status = domain.BinClosed
	}

	bin := &domain.Bin{
		Code:      cmd.Code,
		Warehouse: cmd.Warehouse,
		Zone:      cmd.Zone,
		Capacity:  cmd.Capacity,
		Status:    cmd.Status,
	}
	if err := h.catalog.CreateBin(bin); err != nil {
		return nil, fmt.Errorf("failed to create bin: %w", err)
	}
	return bin, nil
}
