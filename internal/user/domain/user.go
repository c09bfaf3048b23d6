package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Role types, ordered by privilege. ASM is the assistant store manager.
const (
	RolePickerPacker = "PickerPacker"
	RoleASM          = "ASM"
	RoleStoreManager = "StoreManager"
	RoleOpsAdmin     = "OpsAdmin"
)

// Account status. Rejected accounts may sign up again; every other
// status owns the phone number.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
	StatusInactive = "Inactive"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPhoneTaken         = errors.New("phone number already registered")
	ErrInvalidCredentials = errors.New("invalid employee id or pin")
	ErrPendingApproval    = errors.New("account is pending approval")
	ErrAccountInactive    = errors.New("account is not active")
	ErrAlreadyReviewed    = errors.New("signup has already been reviewed")
)

// User is a warehouse worker account. EmployeeID is the badge number
// workers log in with; the PIN is stored only as a bcrypt hash.
type User struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	EmployeeID string         `json:"employee_id" gorm:"uniqueIndex"`
	FullName   string         `json:"full_name" gorm:"not null"`
	Phone      string         `json:"phone" gorm:"uniqueIndex;not null"`
	PinHash    string         `json:"-" gorm:"not null"`
	Role       string         `json:"role" gorm:"not null;default:'PickerPacker'"`
	Status     string         `json:"status" gorm:"not null;default:'Pending'"`
	Warehouse  string         `json:"warehouse" gorm:"not null"`
	ApprovedAt *time.Time     `json:"approved_at,omitempty"`
	ApprovedBy *uint          `json:"approved_by,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// CanManageWorkers reports whether the role may review signups and
// manage worker accounts.
func (u *User) CanManageWorkers() bool {
	return u.Role == RoleASM || u.Role == RoleStoreManager || u.Role == RoleOpsAdmin
}

// UserRepository defines the contract for user data access.
type UserRepository interface {
	Create(user *User) error
	FindByID(id uint) (*User, error)
	FindByEmployeeID(employeeID string) (*User, error)
	FindByPhone(phone string) (*User, error)
	FindAll(status string, limit, offset int) ([]User, error)
	Update(user *User) error
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
}
