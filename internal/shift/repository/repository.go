package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pickerpack/fulfillment/internal/shift/domain"
)

// GormShiftRepository implements domain.ShiftRepository using GORM.
type GormShiftRepository struct {
	db *gorm.DB
}

// NewGormShiftRepository creates a new GORM shift repository.
func NewGormShiftRepository(db *gorm.DB) *GormShiftRepository {
	return &GormShiftRepository{db: db}
}

func (r *GormShiftRepository) Create(shift *domain.Shift) error {
	return r.db.Create(shift).Error
}

func (r *GormShiftRepository) FindByID(id uint) (*domain.Shift, error) {
	var shift domain.Shift
	if err := r.db.First(&shift, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShiftNotFound
		}
		return nil, err
	}
	return &shift, nil
}

func (r *GormShiftRepository) ActiveByUser(userID uint) (*domain.Shift, error) {
	var shift domain.Shift
	err := r.db.Where("user_id = ? AND status = ?", userID, domain.ShiftActive).
		Order("started_at DESC").
		First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShiftNotStarted
		}
		return nil, err
	}
	return &shift, nil
}

func (r *GormShiftRepository) End(shiftID uint, at time.Time) error {
	return r.db.Model(&domain.Shift{}).
		Where("id = ? AND status = ?", shiftID, domain.ShiftActive).
		Updates(map[string]interface{}{
			"status":   domain.ShiftEnded,
			"ended_at": at,
		}).Error
}

func (r *GormShiftRepository) ListByUser(userID uint, limit int) ([]domain.Shift, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var shifts []domain.Shift
	err := r.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&shifts).Error
	return shifts, err
}

// GormGeofenceRepository implements domain.GeofenceRepository using GORM.
type GormGeofenceRepository struct {
	db *gorm.DB
}

// NewGormGeofenceRepository creates a new GORM geofence repository.
func NewGormGeofenceRepository(db *gorm.DB) *GormGeofenceRepository {
	return &GormGeofenceRepository{db: db}
}

func (r *GormGeofenceRepository) Upsert(setting *domain.GeofenceSetting) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "warehouse"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"latitude", "longitude", "radius_meters", "enabled", "updated_at",
		}),
	}).Create(setting).Error
}

func (r *GormGeofenceRepository) ByWarehouse(warehouse string) (*domain.GeofenceSetting, error) {
	var setting domain.GeofenceSetting
	if err := r.db.Where("warehouse = ?", warehouse).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGeofenceNotConfigured
		}
		return nil, err
	}
	return &setting, nil
}

func (r *GormGeofenceRepository) Delete(warehouse string) error {
	return r.db.Where("warehouse = ?", warehouse).Delete(&domain.GeofenceSetting{}).Error
}

func (r *GormGeofenceRepository) List() ([]domain.GeofenceSetting, error) {
	var settings []domain.GeofenceSetting
	err := r.db.Order("warehouse").Find(&settings).Error
	return settings, err
}
