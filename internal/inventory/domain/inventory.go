package domain

import (
	"time"

	"gorm.io/gorm"
)

// Lock tag lifecycle. A tag is one countable physical unit: minted
// InStock at putaway, Allocated when reserved for a task item, Scanned
// once picked. Scanned is terminal.
const (
	TagInStock   = "InStock"
	TagAllocated = "Allocated"
	TagScanned   = "Scanned"
)

// Bin status
const (
	BinOpen   = "Open"
	BinClosed = "Closed"
	BinInUse  = "InUse"
	BinFull   = "Full"
)

// SKU is a stock-keeping-unit definition. Reference data, immutable
// after creation.
type SKU struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Code          string    `json:"code" gorm:"uniqueIndex;not null"`
	Name          string    `json:"name" gorm:"not null"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	UnitOfMeasure string    `json:"unit_of_measure" gorm:"not null;default:'each'"`
	CreatedAt     time.Time `json:"created_at"`
}

func (SKU) TableName() string {
	return "skus"
}

// Bin is a physical storage location.
type Bin struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Code            string         `json:"code" gorm:"uniqueIndex;not null"`
	Warehouse       string         `json:"warehouse" gorm:"not null;index"`
	Zone            string         `json:"zone"`
	Capacity        int            `json:"capacity" gorm:"not null;default:0"`
	CurrentQuantity int            `json:"current_quantity" gorm:"not null;default:0"`
	Status          string         `json:"status" gorm:"not null;default:'Closed'"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Bin) TableName() string {
	return "bins"
}

// LockTag is the atomic unit of physical inventory: a unique tag code
// bound to exactly one SKU and one Bin at creation.
type LockTag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TagCode   string    `json:"tag_code" gorm:"uniqueIndex;not null"`
	SKUID     uint      `json:"sku_id" gorm:"column:sku_id;not null;index:idx_lock_tags_pool"`
	BinID     uint      `json:"bin_id" gorm:"not null;index:idx_lock_tags_pool"`
	BatchID   string    `json:"batch_id"`
	Status    string    `json:"status" gorm:"not null;default:'InStock';index:idx_lock_tags_pool"`
	CreatedAt time.Time `json:"created_at"`
}

func (LockTag) TableName() string {
	return "lock_tags"
}

// CatalogRepository defines the contract for SKU and Bin reference data.
type CatalogRepository interface {
	CreateSKU(sku *SKU) error
	FindSKUByID(id uint) (*SKU, error)
	FindSKUByCode(code string) (*SKU, error)
	ListSKUs(limit, offset int) ([]SKU, error)
	CreateBin(bin *Bin) error
	FindBinByID(id uint) (*Bin, error)
	FindBinByCode(code string) (*Bin, error)
	ListBins(warehouse string, limit, offset int) ([]Bin, error)
}

// Ledger defines the contract for lock tag allocation. Allocate is the
// single place physical inventory gets reserved; no two callers may
// ever claim the same tag.
type Ledger interface {
	// WithTx returns a Ledger bound to an enclosing transaction, so
	// allocation can join a larger atomic unit of work.
	WithTx(tx *gorm.DB) Ledger

	// Putaway mints quantity new InStock tags bound to the sku and bin.
	Putaway(skuID, binID uint, batchID string, quantity int) ([]LockTag, error)

	// Allocate reserves up to quantity InStock tags of the sku in the
	// bin, transitioning each to Allocated. The returned set may be
	// shorter than requested; callers decide how to treat a shortfall.
	Allocate(skuID, binID uint, quantity int) ([]LockTag, error)

	// Release returns Allocated tags to the InStock pool.
	Release(tagIDs []uint) error

	// MarkScanned consumes a tag during picking. Terminal, idempotent.
	MarkScanned(tagID uint) error

	CountInStock(skuID, binID uint) (int64, error)
	FindTagByCode(code string) (*LockTag, error)
	ListTags(skuID, binID uint, status string, limit, offset int) ([]LockTag, error)
}
