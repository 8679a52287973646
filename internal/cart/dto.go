package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/checkout"
	"github.com/trendora/trendora-backend/pkg/db/models"
)

// ItemDTO is one cart line as the storefront renders it.
type ItemDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"productId"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalUnitPrice  decimal.Decimal `json:"finalUnitPrice"`
	Color           *string         `json:"color,omitempty"`
	Size            *string         `json:"size,omitempty"`
	Quantity        int             `json:"quantity"`
	LineTotal       decimal.Decimal `json:"lineTotal"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	AddedAt         time.Time       `json:"addedAt"`
}

// CartDTO is the full cart with recomputed totals and the persisted
// sidebar flag.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	Items     []ItemDTO       `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	IsOpen    bool            `json:"isOpen"`
}

// AddItemRequest is the storefront add-to-cart payload.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	Color     *string   `json:"color" validate:"omitempty,max=60"`
	Size      *string   `json:"size" validate:"omitempty,max=60"`
	// Quiet suppresses the sidebar flag, used by the buy-now flow.
	Quiet bool `json:"quiet"`
}

// UpdateQuantityRequest sets a line's quantity. Values below 1 are ignored.
type UpdateQuantityRequest struct {
	Quantity int     `json:"quantity" validate:"required"`
	Color    *string `json:"color" validate:"omitempty,max=60"`
	Size     *string `json:"size" validate:"omitempty,max=60"`
}

func toCartDTO(record *models.CartRecord, isOpen bool) *CartDTO {
	items := make([]ItemDTO, 0, len(record.Items))
	count := 0
	subtotal := decimal.Zero
	for i := range record.Items {
		line := &record.Items[i]
		final := checkout.DiscountedUnitPrice(line.UnitPrice, line.DiscountPercent)
		lineTotal := checkout.LineTotal(line.UnitPrice, line.DiscountPercent, line.Quantity)
		items = append(items, ItemDTO{
			ID:              line.ID,
			ProductID:       line.ProductID,
			Name:            line.Name,
			Slug:            line.Slug,
			UnitPrice:       line.UnitPrice,
			DiscountPercent: line.DiscountPercent,
			FinalUnitPrice:  final,
			Color:           line.Color,
			Size:            line.Size,
			Quantity:        line.Quantity,
			LineTotal:       lineTotal,
			ImageURL:        line.ImageURL,
			AddedAt:         line.CreatedAt,
		})
		count += line.Quantity
		subtotal = subtotal.Add(lineTotal)
	}

	return &CartDTO{
		ID:        record.ID,
		Items:     items,
		ItemCount: count,
		Subtotal:  subtotal,
		IsOpen:    isOpen,
	}
}
