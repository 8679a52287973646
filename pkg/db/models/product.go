package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog listing.
type Product struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name            string           `gorm:"column:name;not null"`
	Slug            string           `gorm:"column:slug;not null;uniqueIndex"`
	SKU             *string          `gorm:"column:sku"`
	Description     *string          `gorm:"column:description"`
	CategoryID      *uuid.UUID       `gorm:"column:category_id;type:uuid;index"`
	Category        *Category        `gorm:"foreignKey:CategoryID"`
	Price           decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal  `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	Quantity        int              `gorm:"column:quantity;not null;default:0"`
	Images          []string         `gorm:"column:images;type:jsonb;serializer:json"`
	Variants        []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	IsActive        bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured      bool             `gorm:"column:is_featured;not null;default:false"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductVariant is a selectable color/size combination with an optional
// price add-on over the base price.
type ProductVariant struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	Color      *string         `gorm:"column:color"`
	Size       *string         `gorm:"column:size"`
	PriceDelta decimal.Decimal `gorm:"column:price_delta;type:numeric(12,2);not null;default:0"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
