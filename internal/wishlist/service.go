package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/checkout"
	"github.com/trendora/trendora-backend/pkg/db"
	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// EntryDTO is one wishlist row, the reduced product projection the
// wishlist page renders.
type EntryDTO struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"productId"`
	Name            string          `json:"name"`
	Slug            string          `json:"slug"`
	Price           decimal.Decimal `json:"price"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalPrice      decimal.Decimal `json:"finalPrice"`
	CategoryName    *string         `json:"categoryName,omitempty"`
	ImageURL        *string         `json:"imageUrl,omitempty"`
	AddedAt         time.Time       `json:"addedAt"`
}

// ListDTO is one wishlist page with pagination metadata.
type ListDTO struct {
	Items      []EntryDTO      `json:"items"`
	Pagination pagination.Page `json:"pagination"`
}

// ToggleResult reports what a toggle did.
type ToggleResult struct {
	ProductID uuid.UUID `json:"productId"`
	Added     bool      `json:"added"`
}

// Service exposes wishlist operations for signed-in customers.
type Service interface {
	Toggle(ctx context.Context, customerID, productID uuid.UUID) (*ToggleResult, error)
	Contains(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
	List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListDTO, error)
}

type wishlistRepository interface {
	Find(ctx context.Context, customerID, productID uuid.UUID) (*models.WishlistItem, error)
	Create(ctx context.Context, item *models.WishlistItem) error
	Delete(ctx context.Context, customerID, productID uuid.UUID) error
	List(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.WishlistItem, int64, error)
}

type catalogReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	Repo    wishlistRepository
	Catalog catalogReader
}

type service struct {
	repo    wishlistRepository
	catalog catalogReader
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("wishlist repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog}, nil
}

// Toggle removes the product when present and adds it otherwise, so calling
// it twice always restores the prior state.
func (s *service) Toggle(ctx context.Context, customerID, productID uuid.UUID) (*ToggleResult, error) {
	if customerID == uuid.Nil || productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer and product are required")
	}

	_, err := s.repo.Find(ctx, customerID, productID)
	switch {
	case err == nil:
		if err := s.repo.Delete(ctx, customerID, productID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove wishlist entry")
		}
		return &ToggleResult{ProductID: productID, Added: false}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up wishlist entry")
	}

	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	entry := projectProduct(customerID, product)
	if err := s.repo.Create(ctx, entry); err != nil {
		// A concurrent toggle may have inserted first; treat it as added.
		if db.IsUniqueViolation(err, "") {
			return &ToggleResult{ProductID: productID, Added: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add wishlist entry")
	}
	return &ToggleResult{ProductID: productID, Added: true}, nil
}

func (s *service) Contains(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	_, err := s.repo.Find(ctx, customerID, productID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "look up wishlist entry")
}

func (s *service) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListDTO, error) {
	params = pagination.Normalize(params)
	rows, total, err := s.repo.List(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist")
	}

	items := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		items = append(items, toEntryDTO(&rows[i]))
	}
	return &ListDTO{Items: items, Pagination: pagination.NewPage(params, total)}, nil
}

func projectProduct(customerID uuid.UUID, product *models.Product) *models.WishlistItem {
	entry := &models.WishlistItem{
		CustomerID:      customerID,
		ProductID:       product.ID,
		Name:            product.Name,
		Slug:            product.Slug,
		Price:           product.Price,
		DiscountPercent: product.DiscountPercent,
	}
	if product.Category != nil {
		name := product.Category.Name
		entry.CategoryName = &name
	}
	if len(product.Images) > 0 {
		image := product.Images[0]
		entry.ImageURL = &image
	}
	return entry
}

func toEntryDTO(item *models.WishlistItem) EntryDTO {
	return EntryDTO{
		ID:              item.ID,
		ProductID:       item.ProductID,
		Name:            item.Name,
		Slug:            item.Slug,
		Price:           item.Price,
		DiscountPercent: item.DiscountPercent,
		FinalPrice:      checkout.DiscountedUnitPrice(item.Price, item.DiscountPercent),
		CategoryName:    item.CategoryName,
		ImageURL:        item.ImageURL,
		AddedAt:         item.CreatedAt,
	}
}
