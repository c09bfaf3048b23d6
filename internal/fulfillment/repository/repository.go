package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pickerpack/fulfillment/internal/fulfillment/domain"
)

// GormOrderRepository persists orders and order items.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Order{}, &domain.OrderItem{})
}

func (r *GormOrderRepository) WithTx(tx *gorm.DB) domain.OrderRepository {
	return &GormOrderRepository{db: tx}
}

func (r *GormOrderRepository) Create(order *domain.Order) error {
	return r.db.Create(order).Error
}

func (r *GormOrderRepository) CreateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

func (r *GormOrderRepository) SetTaskID(orderID, taskID uint) error {
	return r.db.Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("task_id", taskID).Error
}

func (r *GormOrderRepository) FindByID(id uint) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByNumber(orderNumber string) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByTaskID(taskID uint) (*domain.Order, error) {
	var order domain.Order
	if err := r.db.Where("task_id = ?", taskID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormOrderRepository) ItemsByOrderID(orderID uint) ([]domain.OrderItem, error) {
	var items []domain.OrderItem
	err := r.db.Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, err
}

func (r *GormOrderRepository) ListByWorker(workerID uint, status string) ([]domain.Order, error) {
	q := r.db.Where("assigned_to = ?", workerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []domain.Order
	err := q.Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) PackingQueue(workerID uint) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.
		Where("assigned_to = ? AND status = ?", workerID, domain.OrderPicked).
		Order("picked_at ASC").
		Find(&orders).Error
	return orders, err
}

// MarkPicked is guarded by the current status so a replayed cascade
// cannot overwrite picked_at.
func (r *GormOrderRepository) MarkPicked(orderID uint, at time.Time) error {
	return r.db.Model(&domain.Order{}).
		Where("id = ? AND status <> ?", orderID, domain.OrderPicked).
		Updates(map[string]interface{}{
			"status":    domain.OrderPicked,
			"picked_at": at,
		}).Error
}

func (r *GormOrderRepository) MarkItemsPicked(orderID uint) error {
	return r.db.Model(&domain.OrderItem{}).
		Where("order_id = ?", orderID).
		Update("status", domain.OrderItemPicked).Error
}

// GormTaskRepository persists tasks, task items and reservation rows.
type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Task{}, &domain.TaskItem{}, &domain.TaskItemLockTag{})
}

func (r *GormTaskRepository) WithTx(tx *gorm.DB) domain.TaskRepository {
	return &GormTaskRepository{db: tx}
}

func (r *GormTaskRepository) Create(task *domain.Task) error {
	return r.db.Create(task).Error
}

func (r *GormTaskRepository) CreateItem(item *domain.TaskItem) error {
	return r.db.Create(item).Error
}

func (r *GormTaskRepository) CreateReservations(reservations []domain.TaskItemLockTag) error {
	if len(reservations) == 0 {
		return nil
	}
	return r.db.Create(&reservations).Error
}

func (r *GormTaskRepository) FindByID(id uint) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) FindAssigned(taskID, workerID uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.Where("id = ? AND assigned_to = ?", taskID, workerID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) ListByWorker(workerID uint, status, taskType string, limit, offset int) ([]domain.Task, int64, error) {
	q := r.db.Model(&domain.Task{}).Where("assigned_to = ?", workerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if taskType != "" {
		q = q.Where("type = ?", taskType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tasks []domain.Task
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tasks).Error
	return tasks, total, err
}

func (r *GormTaskRepository) PickingQueue(workerID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.
		Where("type = ? AND assigned_to = ? AND status <> ?",
			domain.TaskTypePick, workerID, domain.TaskCompleted).
		Order("created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) ItemsByTaskID(taskID uint) ([]domain.TaskItem, error) {
	var items []domain.TaskItem
	err := r.db.Where("task_id = ?", taskID).Order("id").Find(&items).Error
	return items, err
}

func (r *GormTaskRepository) ReservationsByItemID(taskItemID uint) ([]domain.TaskItemLockTag, error) {
	var reservations []domain.TaskItemLockTag
	err := r.db.Where("task_item_id = ?", taskItemID).Order("id").Find(&reservations).Error
	return reservations, err
}

func (r *GormTaskRepository) FindReservation(taskID uint, lockTagCode string) (*domain.TaskItemLockTag, *domain.TaskItem, error) {
	var reservation domain.TaskItemLockTag
	err := r.db.
		Joins("JOIN task_items ON task_items.id = task_item_lock_tags.task_item_id").
		Where("task_items.task_id = ? AND task_item_lock_tags.lock_tag_code = ?", taskID, lockTagCode).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var item domain.TaskItem
	if err := r.db.First(&item, reservation.TaskItemID).Error; err != nil {
		return nil, nil, err
	}
	return &reservation, &item, nil
}

func (r *GormTaskRepository) ClaimReservationScan(reservationID uint) (bool, error) {
	res := r.db.Model(&domain.TaskItemLockTag{}).
		Where("id = ? AND scanned = ?", reservationID, false).
		Update("scanned", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// AdvanceItemProgress increments the counter as a database expression
// guarded by quantity_scanned < quantity, so the increment cannot lose
// a concurrent writer's update and cannot pass Quantity.
func (r *GormTaskRepository) AdvanceItemProgress(taskItemID uint) (int, error) {
	res := r.db.Model(&domain.TaskItem{}).
		Where("id = ? AND quantity_scanned < quantity", taskItemID).
		Update("quantity_scanned", gorm.Expr("quantity_scanned + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	var item domain.TaskItem
	if err := r.db.First(&item, taskItemID).Error; err != nil {
		return 0, err
	}

	if item.QuantityScanned >= item.Quantity && item.Status != domain.TaskItemCompleted {
		if err := r.db.Model(&domain.TaskItem{}).
			Where("id = ?", taskItemID).
			Update("status", domain.TaskItemCompleted).Error; err != nil {
			return 0, err
		}
	}
	return item.QuantityScanned, nil
}

func (r *GormTaskRepository) Complete(taskID uint, at time.Time) error {
	return r.db.Model(&domain.Task{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":       domain.TaskCompleted,
			"completed_at": at,
		}).Error
}

func (r *GormTaskRepository) CountCompletedByWorkerSince(workerID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Task{}).
		Where("assigned_to = ? AND status = ? AND completed_at >= ?",
			workerID, domain.TaskCompleted, since).
		Count(&count).Error
	return count, err
}

func (r *GormTaskRepository) CountOpenByWorker(workerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Task{}).
		Where("assigned_to = ? AND status IN ?",
			workerID, []string{domain.TaskPending, domain.TaskAssigned, domain.TaskInProgress}).
		Count(&count).Error
	return count, err
}

func (r *GormTaskRepository) SumScannedByWorker(workerID uint) (int64, error) {
	var total int64
	err := r.db.Model(&domain.TaskItem{}).
		Select("COALESCE(SUM(quantity_scanned), 0)").
		Where("task_id IN (?)",
			r.db.Model(&domain.Task{}).Select("id").Where("assigned_to = ?", workerID)).
		Scan(&total).Error
	return total, err
}
