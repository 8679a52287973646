package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
)

// Service exposes cart operations for the storefront.
type Service interface {
	Get(ctx context.Context, owner Owner) (*CartDTO, error)
	AddItem(ctx context.Context, owner Owner, req AddItemRequest) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, owner Owner, productID uuid.UUID, req UpdateQuantityRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, color, size *string) (*CartDTO, error)
	Clear(ctx context.Context, owner Owner) error
	SetSidebar(ctx context.Context, owner Owner, open bool)
	AdoptGuestCart(ctx context.Context, sessionToken string, customerID uuid.UUID) error
}

type cartRepository interface {
	FindOrCreate(ctx context.Context, owner Owner) (*models.CartRecord, error)
	Find(ctx context.Context, owner Owner) (*models.CartRecord, error)
	AddItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
	AdoptGuestCart(ctx context.Context, sessionToken string, customerID uuid.UUID) error
}

type catalogReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type flagStore interface {
	Read(ctx context.Context, key string, dest any, fallback any) bool
	Write(ctx context.Context, key string, value any)
}

type cartFlags struct {
	IsOpen bool `json:"isOpen"`
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo    cartRepository
	Catalog catalogReader
	Flags   flagStore
}

type service struct {
	repo    cartRepository
	catalog catalogReader
	flags   flagStore
}

// NewService builds a cart service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog reader is required")
	}
	if params.Flags == nil {
		return nil, fmt.Errorf("flag store is required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog, flags: params.Flags}, nil
}

func (s *service) Get(ctx context.Context, owner Owner) (*CartDTO, error) {
	record, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}
	return toCartDTO(record, s.sidebarOpen(ctx, owner)), nil
}

func (s *service) AddItem(ctx context.Context, owner Owner, req AddItemRequest) (*CartDTO, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.catalog.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	color, size, err := resolveVariant(product, req.Color, req.Size)
	if err != nil {
		return nil, err
	}

	record, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	if existing := findLine(record.Items, product.ID, color, size); existing != nil {
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+req.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge cart line")
		}
	} else {
		item := snapshotLine(record.ID, product, color, size, req.Quantity)
		if err := s.repo.AddItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart line")
		}
	}

	if !req.Quiet {
		s.SetSidebar(ctx, owner, true)
	}
	return s.Get(ctx, owner)
}

func (s *service) UpdateQuantity(ctx context.Context, owner Owner, productID uuid.UUID, req UpdateQuantityRequest) (*CartDTO, error) {
	record, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	// Quantities below 1 are ignored rather than rejected so repeated
	// decrement clicks can never empty a line by accident.
	if req.Quantity >= 1 {
		line := findLine(record.Items, productID, req.Color, req.Size)
		if line == nil {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		if err := s.repo.UpdateItemQuantity(ctx, line.ID, req.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
	}
	return s.Get(ctx, owner)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, color, size *string) (*CartDTO, error) {
	record, err := s.loadCart(ctx, owner)
	if err != nil {
		return nil, err
	}

	line := findLine(record.Items, productID, color, size)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if err := s.repo.RemoveItem(ctx, line.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart line")
	}
	return s.Get(ctx, owner)
}

func (s *service) Clear(ctx context.Context, owner Owner) error {
	record, err := s.loadCart(ctx, owner)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx, record.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	s.SetSidebar(ctx, owner, false)
	return nil
}

func (s *service) SetSidebar(ctx context.Context, owner Owner, open bool) {
	if !owner.Valid() {
		return
	}
	s.flags.Write(ctx, owner.FlagKey(), cartFlags{IsOpen: open})
}

func (s *service) AdoptGuestCart(ctx context.Context, sessionToken string, customerID uuid.UUID) error {
	if strings.TrimSpace(sessionToken) == "" || customerID == uuid.Nil {
		return nil
	}
	if err := s.repo.AdoptGuestCart(ctx, sessionToken, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adopt guest cart")
	}
	return nil
}

func (s *service) loadCart(ctx context.Context, owner Owner) (*models.CartRecord, error) {
	if !owner.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart owner is required")
	}
	record, err := s.repo.FindOrCreate(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return record, nil
}

func (s *service) sidebarOpen(ctx context.Context, owner Owner) bool {
	var flags cartFlags
	s.flags.Read(ctx, owner.FlagKey(), &flags, cartFlags{})
	return flags.IsOpen
}

// resolveVariant checks a requested color/size against the product's variant
// set. Products without variants accept only empty selections.
func resolveVariant(product *models.Product, color, size *string) (*string, *string, error) {
	color = normalizeSelection(color)
	size = normalizeSelection(size)

	if len(product.Variants) == 0 {
		if color != nil || size != nil {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no variants")
		}
		return nil, nil, nil
	}
	if color == nil && size == nil {
		return nil, nil, nil
	}

	for i := range product.Variants {
		v := &product.Variants[i]
		if equalVariant(v.Color, color) && equalVariant(v.Size, size) {
			return color, size, nil
		}
	}
	return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown product variant")
}

func normalizeSelection(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// snapshotLine captures the product's current price, the variant add-on, and
// the first image so later catalog edits do not rewrite carts.
func snapshotLine(cartID uuid.UUID, product *models.Product, color, size *string, quantity int) *models.CartItem {
	unitPrice := product.Price
	if color != nil || size != nil {
		for i := range product.Variants {
			v := &product.Variants[i]
			if equalVariant(v.Color, color) && equalVariant(v.Size, size) {
				unitPrice = unitPrice.Add(v.PriceDelta)
				break
			}
		}
	}

	item := &models.CartItem{
		CartID:          cartID,
		ProductID:       product.ID,
		Name:            product.Name,
		Slug:            product.Slug,
		UnitPrice:       unitPrice,
		DiscountPercent: product.DiscountPercent,
		Color:           color,
		Size:            size,
		Quantity:        quantity,
	}
	if len(product.Images) > 0 {
		image := product.Images[0]
		item.ImageURL = &image
	}
	return item
}
