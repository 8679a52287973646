package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartRecord is the single active cart owned by a customer or guest session.
// Exactly one of CustomerID / SessionToken is set.
type CartRecord struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID   *uuid.UUID `gorm:"column:customer_id;type:uuid;uniqueIndex"`
	SessionToken *string    `gorm:"column:session_token;uniqueIndex"`
	Items        []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the table named after the domain, not the Go type.
func (CartRecord) TableName() string {
	return "carts"
}

func (c *CartRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem snapshots a product line at the moment it was added.
type CartItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID          uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Name            string          `gorm:"column:name;not null"`
	Slug            string          `gorm:"column:slug;not null"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	Color           *string         `gorm:"column:color"`
	Size            *string         `gorm:"column:size"`
	Quantity        int             `gorm:"column:quantity;not null"`
	ImageURL        *string         `gorm:"column:image_url"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
