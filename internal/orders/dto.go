package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// ItemDTO is one snapshotted order line.
type ItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *uuid.UUID      `json:"productId,omitempty"`
	Name            string          `json:"name"`
	Color           *string         `json:"color,omitempty"`
	Size            *string         `json:"size,omitempty"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
}

// OrderDTO is the client representation of an order.
type OrderDTO struct {
	ID             uuid.UUID           `json:"id"`
	BillingName    string              `json:"billingName"`
	BillingPhone   string              `json:"billingPhone"`
	District       string              `json:"district"`
	Address        string              `json:"address"`
	Notes          *string             `json:"notes,omitempty"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	ShippingCharge decimal.Decimal     `json:"shippingCharge"`
	Total          decimal.Decimal     `json:"total"`
	PaymentMethod  enums.PaymentMethod `json:"paymentMethod"`
	Status         enums.OrderStatus   `json:"status"`
	TrackingCode   *string             `json:"trackingCode,omitempty"`
	Items          []ItemDTO           `json:"items"`
	PlacedAt       time.Time           `json:"placedAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

// ListDTO is one page of orders with pagination metadata.
type ListDTO struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Page `json:"pagination"`
}

// CourierStatusDTO reports the courier-side delivery status for a booked
// order.
type CourierStatusDTO struct {
	OrderID        uuid.UUID `json:"orderId"`
	TrackingCode   string    `json:"trackingCode"`
	DeliveryStatus string    `json:"deliveryStatus"`
}

// UpdateStatusRequest is the admin status-transition payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// ToDTO converts an order row with items to its client representation.
func ToDTO(order *models.Order) *OrderDTO {
	items := make([]ItemDTO, 0, len(order.Items))
	for i := range order.Items {
		line := &order.Items[i]
		items = append(items, ItemDTO{
			ID:              line.ID,
			ProductID:       line.ProductID,
			Name:            line.Name,
			Color:           line.Color,
			Size:            line.Size,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			Quantity:        line.Quantity,
			LineTotal:       line.LineTotal,
			ImageURL:        line.ImageURL,
		})
	}

	return &OrderDTO{
		ID:             order.ID,
		BillingName:    order.BillingName,
		BillingPhone:   order.BillingPhone,
		District:       order.District,
		Address:        order.Address,
		Notes:          order.Notes,
		Subtotal:       order.Subtotal,
		ShippingCharge: order.ShippingCharge,
		Total:          order.Total,
		PaymentMethod:  order.PaymentMethod,
		Status:         order.Status,
		TrackingCode:   order.TrackingCode,
		Items:          items,
		PlacedAt:       order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
}
