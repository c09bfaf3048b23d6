package domain

import (
	"errors"
	"time"
)

// Exception types a worker can raise from the floor.
const (
	TypeDamage         = "Damage"
	TypeMissing        = "Missing"
	TypeWrongItem      = "WrongItem"
	TypeTagReplacement = "TagReplacement"
	TypeOverstock      = "Overstock"
	TypeUnderstock     = "Understock"
	TypeOther          = "Other"
)

// Review lifecycle. Resolved and Rejected are terminal.
const (
	StatusPending  = "Pending"
	StatusInReview = "InReview"
	StatusResolved = "Resolved"
	StatusRejected = "Rejected"
)

// MaxPhotos caps the evidence photos attached to one report.
const MaxPhotos = 5

var (
	ErrExceptionNotFound = errors.New("exception not found")
	ErrAlreadyReviewed   = errors.New("exception has already been reviewed")
	ErrUnknownType       = errors.New("unknown exception type")
	ErrInvalidStatus     = errors.New("invalid review status")
)

// Exception is a worker-reported problem on the floor: damaged or
// missing stock, a wrong item in a bin, a tag that needs replacing.
// Which reference fields are set depends on the type; photos are
// stored as opaque URIs.
type Exception struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Type        string     `json:"type" gorm:"not null;index"`
	Status      string     `json:"status" gorm:"not null;default:'Pending';index"`
	UserID      uint       `json:"user_id" gorm:"not null;index"`
	TaskID      *uint      `json:"task_id,omitempty"`
	SKUID       *uint      `json:"sku_id,omitempty"`
	LockTagID   *uint      `json:"lock_tag_id,omitempty"`
	BinID       *uint      `json:"bin_id,omitempty"`
	Description string     `json:"description" gorm:"not null"`
	PhotoURIs   []string   `json:"photo_uris,omitempty" gorm:"serializer:json"`
	Quantity    int        `json:"quantity,omitempty"`
	OldTagCode  string     `json:"old_tag_code,omitempty"`
	NewTagCode  string     `json:"new_tag_code,omitempty"`
	Resolution  string     `json:"resolution,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy  *uint      `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Exception) TableName() string {
	return "exceptions"
}

// ValidType reports whether t names a known exception type.
func ValidType(t string) bool {
	switch t {
	case TypeDamage, TypeMissing, TypeWrongItem, TypeTagReplacement,
		TypeOverstock, TypeUnderstock, TypeOther:
		return true
	}
	return false
}

// Reviewed reports whether a status is a terminal review outcome.
func Reviewed(status string) bool {
	return status == StatusResolved || status == StatusRejected
}

// ExceptionRepository defines the contract for exception data access.
type ExceptionRepository interface {
	Create(exc *Exception) error
	FindByID(id uint) (*Exception, error)
	Update(exc *Exception) error

	// List returns exceptions newest first. userID 0 lists every
	// worker's reports.
	List(userID uint, status, exceptionType string, limit, offset int) ([]Exception, error)
}
