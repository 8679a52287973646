package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WishlistItem links a customer to a liked product, keeping the reduced
// projection the wishlist page renders without re-resolving the product.
type WishlistItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index:wishlist_items_customer_idx;uniqueIndex:wishlist_items_customer_product_key"`
	ProductID       uuid.UUID       `gorm:"column:product_id;type:uuid;not null;uniqueIndex:wishlist_items_customer_product_key"`
	Name            string          `gorm:"column:name;not null"`
	Slug            string          `gorm:"column:slug;not null"`
	Price           decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	CategoryName    *string         `gorm:"column:category_name"`
	ImageURL        *string         `gorm:"column:image_url"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
