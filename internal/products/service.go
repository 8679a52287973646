package products

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Service exposes catalog operations for the storefront and the console.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	Related(ctx context.Context, slug string, limit int) ([]Summary, error)
	Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type catalogRepository interface {
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input ListInput) ([]models.Product, int64, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo catalogRepository
}

type service struct {
	repo catalogRepository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListDTO, error) {
	rows, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	summaries := make([]Summary, 0, len(rows))
	for i := range rows {
		summaries = append(summaries, ToSummary(&rows[i]))
	}
	return &ListDTO{
		Products:   summaries,
		Pagination: pagination.NewPage(input.Pagination, total),
	}, nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug is required")
	}
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	dto := ToDTO(product)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(product)
	return &dto, nil
}

// Related lists other active products from the same category.
func (s *service) Related(ctx context.Context, slug string, limit int) ([]Summary, error) {
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	input := ListInput{Pagination: pagination.Params{Page: 1, Limit: limit}}
	if product.Category != nil {
		input.Filters.CategorySlug = product.Category.Slug
	}
	rows, _, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list related products")
	}

	out := make([]Summary, 0, len(rows))
	for i := range rows {
		if rows[i].ID == product.ID {
			continue
		}
		out = append(out, ToSummary(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateProductRequest) (*ProductDTO, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	if err := validateDiscount(req.DiscountPercent); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, req.Name, uuid.Nil)
	if err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:            strings.TrimSpace(req.Name),
		Slug:            slug,
		CategoryID:      req.CategoryID,
		Price:           req.Price,
		DiscountPercent: req.DiscountPercent,
		Quantity:        req.Quantity,
		Images:          req.Images,
		IsActive:        true,
	}
	if sku := strings.TrimSpace(req.SKU); sku != "" {
		product.SKU = &sku
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		product.Description = &desc
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		product.IsFeatured = *req.IsFeatured
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.ProductVariant{
			Color:      v.Color,
			Size:       v.Size,
			PriceDelta: v.PriceDelta,
		})
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return s.Get(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil && strings.TrimSpace(*req.Name) != product.Name {
		name := strings.TrimSpace(*req.Name)
		slug, err := s.uniqueSlug(ctx, name, id)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
		updates["slug"] = slug
	}
	if req.SKU != nil {
		updates["sku"] = req.SKU
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.CategoryID != nil {
		updates["category_id"] = req.CategoryID
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
		}
		updates["price"] = *req.Price
	}
	if req.DiscountPercent != nil {
		if err := validateDiscount(*req.DiscountPercent); err != nil {
			return nil, err
		}
		updates["discount_percent"] = *req.DiscountPercent
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
		}
		updates["quantity"] = *req.Quantity
	}
	if req.Images != nil {
		updates["images"] = req.Images
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}

	if req.Variants != nil {
		variants := make([]models.ProductVariant, 0, len(req.Variants))
		for _, v := range req.Variants {
			variants = append(variants, models.ProductVariant{
				Color:      v.Color,
				Size:       v.Size,
				PriceDelta: v.PriceDelta,
			})
		}
		if err := s.repo.ReplaceVariants(ctx, id, variants); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replace variants")
		}
	}

	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadProduct(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	return product, nil
}

// uniqueSlug derives a URL slug from the name, suffixing a counter when the
// base form is already taken.
func (s *service) uniqueSlug(ctx context.Context, name string, excludeID uuid.UUID) (string, error) {
	base := Slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name must contain letters or digits")
	}

	slug := base
	for attempt := 2; ; attempt++ {
		taken, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check slug")
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

// Slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func validateDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	return nil
}
