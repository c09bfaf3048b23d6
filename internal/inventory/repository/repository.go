package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/inventory/domain"
)

// GormCatalogRepository persists SKU and Bin reference data.
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.SKU{}, &domain.Bin{})
}

func (r *GormCatalogRepository) CreateSKU(sku *domain.SKU) error {
	return r.db.Create(sku).Error
}

func (r *GormCatalogRepository) FindSKUByID(id uint) (*domain.SKU, error) {
	var sku domain.SKU
	if err := r.db.First(&sku, id).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *GormCatalogRepository) FindSKUByCode(code string) (*domain.SKU, error) {
	var sku domain.SKU
	if err := r.db.Where("code = ?", code).First(&sku).Error; err != nil {
		return nil, err
	}
	return &sku, nil
}

func (r *GormCatalogRepository) ListSKUs(limit, offset int) ([]domain.SKU, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var skus []domain.SKU
	err := r.db.Limit(limit).Offset(offset).Find(&skus).Error
	return skus, err
}

func (r *GormCatalogRepository) CreateBin(bin *domain.Bin) error {
	return r.db.Create(bin).Error
}

func (r *GormCatalogRepository) FindBinByID(id uint) (*domain.Bin, error) {
	var bin domain.Bin
	if err := r.db.First(&bin, id).Error; err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *GormCatalogRepository) FindBinByCode(code string) (*domain.Bin, error) {
	var bin domain.Bin
	if err := r.db.Where("code = ?", code).First(&bin).Error; err != nil {
		return nil, err
	}
	return &bin, nil
}

func (r *GormCatalogRepository) ListBins(warehouse string, limit, offset int) ([]domain.Bin, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var bins []domain.Bin
	q := r.db.Limit(limit).Offset(offset)
	if warehouse != "" {
		q = q.Where("warehouse = ?", warehouse)
	}
	err := q.Find(&bins).Error
	return bins, err
}

// GormLedger owns the lock tag pool.
type GormLedger struct {
	db *gorm.DB
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db}
}

func (r *GormLedger) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.LockTag{})
}

func (r *GormLedger) WithTx(tx *gorm.DB) domain.Ledger {
	return &GormLedger{db: tx}
}

func (r *GormLedger) Putaway(skuID, binID uint, batchID string, quantity int) ([]domain.LockTag, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("putaway quantity must be positive")
	}

	tags := make([]domain.LockTag, 0, quantity)
	err := r.db.Transaction(func(tx *gorm.DB) error {
		// The guarded increment goes first: it takes the bin row lock,
		// so concurrent putaways serialize and the capacity check
		// always sees the committed count.
		res := tx.Model(&domain.Bin{}).
			Where("id = ? AND (capacity <= 0 OR current_quantity + ? <= capacity)", binID, quantity).
			Update("current_quantity", gorm.Expr("current_quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrBinOverCapacity
		}

		for i := 0; i < quantity; i++ {
			tag := domain.LockTag{
				TagCode: newTagCode(),
				SKUID:   skuID,
				BinID:   binID,
				BatchID: batchID,
				Status:  domain.TagInStock,
			}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
			tags = append(tags, tag)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("putaway failed: %w", err)
	}
	return tags, nil
}

// Allocate claims up to quantity InStock tags in primary-key order.
// Each claim is a conditional update guarded by the tag still being
// InStock, so concurrent allocations against the same pool can never
// both take the same tag. The returned set may be shorter than
// requested; a shortfall is not an error here.
func (r *GormLedger) Allocate(skuID, binID uint, quantity int) ([]domain.LockTag, error) {
	if quantity <= 0 {
		return nil, nil
	}

	var claimed []domain.LockTag
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var candidates []domain.LockTag
		if err := tx.
			Where("sku_id = ? AND bin_id = ? AND status = ?", skuID, binID, domain.TagInStock).
			Order("id").
			Limit(quantity).
			Find(&candidates).Error; err != nil {
			return err
		}

		for _, tag := range candidates {
			res := tx.Model(&domain.LockTag{}).
				Where("id = ? AND status = ?", tag.ID, domain.TagInStock).
				Update("status", domain.TagAllocated)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				tag.Status = domain.TagAllocated
				claimed = append(claimed, tag)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("allocation failed: %w", err)
	}
	return claimed, nil
}

func (r *GormLedger) Release(tagIDs []uint) error {
	if len(tagIDs) == 0 {
		return nil
	}
	return r.db.Model(&domain.LockTag{}).
		Where("id IN ? AND status = ?", tagIDs, domain.TagAllocated).
		Update("status", domain.TagInStock).Error
}

func (r *GormLedger) MarkScanned(tagID uint) error {
	return r.db.Model(&domain.LockTag{}).
		Where("id = ?", tagID).
		Update("status", domain.TagScanned).Error
}

func (r *GormLedger) CountInStock(skuID, binID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.LockTag{}).
		Where("sku_id = ? AND bin_id = ? AND status = ?", skuID, binID, domain.TagInStock).
		Count(&count).Error
	return count, err
}

func (r *GormLedger) FindTagByCode(code string) (*domain.LockTag, error) {
	var tag domain.LockTag
	if err := r.db.Where("tag_code = ?", code).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *GormLedger) ListTags(skuID, binID uint, status string, limit, offset int) ([]domain.LockTag, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.Limit(limit).Offset(offset)
	if skuID != 0 {
		q = q.Where("sku_id = ?", skuID)
	}
	if binID != 0 {
		q = q.Where("bin_id = ?", binID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var tags []domain.LockTag
	err := q.Order("id").Find(&tags).Error
	return tags, err
}

func newTagCode() string {
	return "LT-" + strings.ToUpper(uuid.New().String()[:8])
}
