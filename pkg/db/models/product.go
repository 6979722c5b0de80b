package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog listing shown on the storefront.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID  int       `gorm:"column:category_id;not null"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	PriceCents  int       `gorm:"column:price_cents;not null"`
	Image       string    `gorm:"column:image;not null;default:''"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	Category    *Category `gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
