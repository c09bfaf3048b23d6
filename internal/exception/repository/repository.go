package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/exception/domain"
)

// GormExceptionRepository persists worker-reported exceptions.
type GormExceptionRepository struct {
	db *gorm.DB
}

func NewGormExceptionRepository(db *gorm.DB) *GormExceptionRepository {
	return &GormExceptionRepository{db: db}
}

func (r *GormExceptionRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Exception{})
}

func (r *GormExceptionRepository) Create(exc *domain.Exception) error {
	return r.db.Create(exc).Error
}

func (r *GormExceptionRepository) FindByID(id uint) (*domain.Exception, error) {
	var exc domain.Exception
	if err := r.db.First(&exc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrExceptionNotFound
		}
		return nil, err
	}
	return &exc, nil
}

func (r *GormExceptionRepository) Update(exc *domain.Exception) error {
	return r.db.Save(exc).Error
}

func (r *GormExceptionRepository) List(userID uint, status, exceptionType string, limit, offset int) ([]domain.Exception, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.db.Limit(limit).Offset(offset)
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if exceptionType != "" {
		q = q.Where("type = ?", exceptionType)
	}

	var exceptions []domain.Exception
	err := q.Order("created_at DESC").Find(&exceptions).Error
	return exceptions, err
}
