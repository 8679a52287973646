package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/checkout"
	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// VariantDTO is one selectable color/size combination.
type VariantDTO struct {
	ID         uuid.UUID       `json:"id"`
	Color      *string         `json:"color,omitempty"`
	Size       *string         `json:"size,omitempty"`
	PriceDelta decimal.Decimal `json:"priceDelta"`
}

// ProductDTO is the full product representation for detail pages and the
// admin console.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	SKU             *string         `json:"sku,omitempty"`
	Description     *string         `json:"description,omitempty"`
	CategoryID      *uuid.UUID      `json:"categoryId,omitempty"`
	CategoryName    *string         `json:"categoryName,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalPrice      decimal.Decimal `json:"finalPrice"`
	Quantity        int             `json:"quantity"`
	InStock         bool            `json:"inStock"`
	Images          []string        `json:"images"`
	Variants        []VariantDTO    `json:"variants"`
	IsActive        bool            `json:"isActive"`
	IsFeatured      bool            `json:"isFeatured"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Summary is the reduced projection rendered on grid/listing pages.
type Summary struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalPrice      decimal.Decimal `json:"finalPrice"`
	InStock         bool            `json:"inStock"`
	IsFeatured      bool            `json:"isFeatured"`
	CategoryName    *string         `json:"categoryName,omitempty"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
}

// ListDTO is one page of the catalog.
type ListDTO struct {
	Products   []Summary       `json:"products"`
	Pagination pagination.Page `json:"pagination"`
}

// ToDTO maps a loaded product (with category and variants preloaded) to its
// full representation.
func ToDTO(p *models.Product) ProductDTO {
	variants := make([]VariantDTO, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, VariantDTO{
			ID:         v.ID,
			Color:      v.Color,
			Size:       v.Size,
			PriceDelta: v.PriceDelta,
		})
	}

	var categoryName *string
	if p.Category != nil {
		name := p.Category.Name
		categoryName = &name
	}

	images := p.Images
	if images == nil {
		images = []string{}
	}

	return ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		SKU:             p.SKU,
		Description:     p.Description,
		CategoryID:      p.CategoryID,
		CategoryName:    categoryName,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		FinalPrice:      checkout.DiscountedUnitPrice(p.Price, p.DiscountPercent),
		Quantity:        p.Quantity,
		InStock:         p.Quantity > 0,
		Images:          images,
		Variants:        variants,
		IsActive:        p.IsActive,
		IsFeatured:      p.IsFeatured,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// ToSummary maps a loaded product to its listing projection.
func ToSummary(p *models.Product) Summary {
	var categoryName *string
	if p.Category != nil {
		name := p.Category.Name
		categoryName = &name
	}
	var imageURL *string
	if len(p.Images) > 0 {
		url := p.Images[0]
		imageURL = &url
	}

	return Summary{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Price:           p.Price,
		DiscountPercent: p.DiscountPercent,
		FinalPrice:      checkout.DiscountedUnitPrice(p.Price, p.DiscountPercent),
		InStock:         p.Quantity > 0,
		IsFeatured:      p.IsFeatured,
		CategoryName:    categoryName,
		ImageURL:        imageURL,
	}
}

// VariantInput is a variant row on the admin product form.
type VariantInput struct {
	Color      *string         `json:"color"`
	Size       *string         `json:"size"`
	PriceDelta decimal.Decimal `json:"priceDelta"`
}

// CreateProductRequest is the admin console's new-product form.
type CreateProductRequest struct {
	Name            string          `json:"name" validate:"required,min=2,max=200"`
	SKU             string          `json:"sku" validate:"omitempty,max=64"`
	Description     string          `json:"description" validate:"omitempty,max=5000"`
	CategoryID      *uuid.UUID      `json:"categoryId"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	Quantity        int             `json:"quantity" validate:"gte=0"`
	Images          []string        `json:"images" validate:"omitempty,dive,url"`
	Variants        []VariantInput  `json:"variants"`
	IsActive        *bool           `json:"isActive"`
	IsFeatured      *bool           `json:"isFeatured"`
}

// UpdateProductRequest carries the editable product fields. Nil leaves the
// field unchanged; Variants, when present, replaces the whole set.
type UpdateProductRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=2,max=200"`
	SKU             *string          `json:"sku" validate:"omitempty,max=64"`
	Description     *string          `json:"description" validate:"omitempty,max=5000"`
	CategoryID      *uuid.UUID       `json:"categoryId"`
	Price           *decimal.Decimal `json:"price"`
	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	Quantity        *int             `json:"quantity" validate:"omitempty,gte=0"`
	Images          []string         `json:"images" validate:"omitempty,dive,url"`
	Variants        []VariantInput   `json:"variants"`
	IsActive        *bool            `json:"isActive"`
	IsFeatured      *bool            `json:"isFeatured"`
}
