package query

import (
	"fmt"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
)

// StockLevelQuery reports the available unit count for a sku in a bin.
type StockLevelQuery struct {
	SKUCode string
	BinCode string
}

// StockLevelResult is the answer to a stock level query.
type StockLevelResult struct {
	SKUCode string `json:"sku_code"`
	BinCode string `json:"bin_code"`
	InStock int64  `json:"in_stock"`
}

// StockLevelHandler handles stock level queries.
type StockLevelHandler struct {
	catalog domain.CatalogRepository
	ledger  domain.Ledger
}

// NewStockLevelHandler creates a new stock level handler.
func NewStockLevelHandler(catalog domain.CatalogRepository, ledger domain.Ledger) *StockLevelHandler {
	return &StockLevelHandler{catalog: catalog, ledger: ledger}
}

// Handle executes the stock level query.
func (h *StockLevelHandler) Handle(q StockLevelQuery) (*StockLevelResult, error) {
	sku, err := h.catalog.FindSKUByCode(q.SKUCode)
	if err != nil {
		return nil, fmt.Errorf("unknown sku %s: %w", q.SKUCode, err)
	}
	bin, err := h.catalog.FindBinByCode(q.BinCode)
	if err != nil {
		return nil, fmt.Errorf("unknown bin %s: %w", q.BinCode, err)
	}

	count, err := h.ledger.CountInStock(sku.ID, bin.ID)
	if err != nil {
		return nil, err
	}
	return &StockLevelResult{
		SKUCode: sku.Code,
		BinCode: bin.Code,
		InStock: count,
	}, nil
}

// ListTagsQuery lists lock tags for a sku/bin pool, optionally
// filtered by status.
type ListTagsQuery struct {
	SKUID  uint
	BinID  uint
	Status string
	Limit  int
	Offset int
}

// ListTagsHandler handles list tags queries.
type ListTagsHandler struct {
	ledger domain.Ledger
}

// NewListTagsHandler creates a new list tags handler.
func NewListTagsHandler(ledger domain.Ledger) *ListTagsHandler {
	return &ListTagsHandler{ledger: ledger}
}

// Handle executes the list tags query.
func (h *ListTagsHandler) Handle(q ListTagsQuery) ([]domain.LockTag, error) {
	return h.ledger.ListTags(q.SKUID, q.BinID, q.Status, q.Limit, q.Offset)
}
