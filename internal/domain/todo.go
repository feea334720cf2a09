package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo is a single task. A nil CategoryID places it in the owner's
// unspecified bucket; Order is its position within (UserID, CategoryID).
type Todo struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index:idx_todos_user_order,priority:1"`
	Title          string     `gorm:"size:255;not null"`
	Description    *string    `gorm:"type:text"`
	CategoryID     *uuid.UUID `gorm:"type:uuid;index"`
	DateCreated    time.Time  `gorm:"not null"`
	DateToComplete *time.Time
	Order          int  `gorm:"column:sort_order;not null;default:0;index:idx_todos_user_order,priority:2"`
	Completed      bool `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Category *Category
}

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.DateCreated.IsZero() {
		t.DateCreated = time.Now()
	}
	return nil
}
