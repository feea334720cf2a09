package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultCategoryEmoji = "📌"

// Category groups a user's todos. Order is the category's position among
// the owner's categories.
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name,priority:1;index"`
	Emoji       string    `gorm:"size:10;not null"`
	Name        string    `gorm:"size:255;not null;uniqueIndex:idx_categories_user_name,priority:2"`
	Description *string   `gorm:"type:text"`
	Color       string    `gorm:"size:16;not null"`
	Order       int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Todos []Todo `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
