package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/enums"
)

// Order is the persisted result of a checkout submission. Billing fields and
// item snapshots are frozen at submission time; later product edits do not
// affect past orders.
type Order struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID     *uuid.UUID          `gorm:"column:customer_id;type:uuid;index"`
	SessionToken   *string             `gorm:"column:session_token;index"`
	BillingName    string              `gorm:"column:billing_name;not null"`
	BillingPhone   string              `gorm:"column:billing_phone;not null"`
	District       string              `gorm:"column:district;not null"`
	Address        string              `gorm:"column:address;not null"`
	Notes          *string             `gorm:"column:notes"`
	Subtotal       decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	ShippingCharge decimal.Decimal     `gorm:"column:shipping_charge;type:numeric(12,2);not null"`
	Total          decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethod  enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash_on_delivery'"`
	Status         enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	TrackingCode   *string             `gorm:"column:tracking_code"`
	Items          []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem captures the snapshot of each cart line inside an order.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	Name            string          `gorm:"column:name;not null"`
	Color           *string         `gorm:"column:color"`
	Size            *string         `gorm:"column:size"`
	UnitPrice       decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(5,2);not null;default:0"`
	Quantity        int             `gorm:"column:quantity;not null"`
	LineTotal       decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	ImageURL        *string         `gorm:"column:image_url"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (o *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
