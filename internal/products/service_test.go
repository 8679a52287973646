package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	bySlug   map[string]*models.Product
	byID     map[uuid.UUID]*models.Product
	updates  map[string]any
	variants []models.ProductVariant
	deleted  []uuid.UUID
	listRows []models.Product
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		bySlug: map[string]*models.Product{},
		byID:   map[uuid.UUID]*models.Product{},
	}
}

func (s *stubCatalogRepo) add(p *models.Product) {
	s.bySlug[p.Slug] = p
	s.byID[p.ID] = p
}

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = uuid.New()
	s.add(product)
	return product, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubCatalogRepo) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	p, ok := s.bySlug[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubCatalogRepo) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	p, ok := s.bySlug[slug]
	if !ok {
		return false, nil
	}
	return p.ID != excludeID, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	return nil
}

func (s *stubCatalogRepo) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	s.variants = variants
	return nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubCatalogRepo) List(ctx context.Context, input ListInput) ([]models.Product, int64, error) {
	return s.listRows, int64(len(s.listRows)), nil
}

func newTestService(t *testing.T, repo *stubCatalogRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Premium Cotton Panjabi": "premium-cotton-panjabi",
		"  T-Shirt (XL) 2024!  ": "t-shirt-xl-2024",
		"---":                    "",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCreateGeneratesUniqueSlug(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	first, err := svc.Create(context.Background(), CreateProductRequest{
		Name:  "Summer Dress",
		Price: decimal.NewFromInt(1200),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Slug != "summer-dress" {
		t.Fatalf("slug = %q", first.Slug)
	}

	second, err := svc.Create(context.Background(), CreateProductRequest{
		Name:  "Summer Dress",
		Price: decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatalf("create duplicate name: %v", err)
	}
	if second.Slug != "summer-dress-2" {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}
}

func TestCreateValidatesPricing(t *testing.T) {
	svc := newTestService(t, newStubCatalogRepo())

	_, err := svc.Create(context.Background(), CreateProductRequest{
		Name:  "Broken",
		Price: decimal.NewFromInt(-5),
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative price, got %v", err)
	}

	_, err = svc.Create(context.Background(), CreateProductRequest{
		Name:            "Broken",
		Price:           decimal.NewFromInt(100),
		DiscountPercent: decimal.NewFromInt(150),
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for discount > 100, got %v", err)
	}
}

func TestGetBySlugHidesInactive(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	repo.add(&models.Product{
		ID:       uuid.New(),
		Name:     "Retired",
		Slug:     "retired",
		Price:    decimal.NewFromInt(100),
		IsActive: false,
	})

	_, err := svc.GetBySlug(context.Background(), "retired")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("inactive products must read as missing, got %v", err)
	}
}

func TestGetBySlugComputesFinalPrice(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	repo.add(&models.Product{
		ID:              uuid.New(),
		Name:            "Discounted",
		Slug:            "discounted",
		Price:           decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10),
		Quantity:        3,
		IsActive:        true,
	})

	dto, err := svc.GetBySlug(context.Background(), "discounted")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !dto.FinalPrice.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("final price = %s, want 900", dto.FinalPrice)
	}
	if !dto.InStock {
		t.Fatal("expected in stock")
	}
}

func TestRelatedExcludesSelf(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	self := &models.Product{ID: uuid.New(), Name: "Self", Slug: "self", IsActive: true}
	repo.add(self)
	repo.listRows = []models.Product{
		*self,
		{ID: uuid.New(), Name: "Other", Slug: "other", IsActive: true},
	}

	related, err := svc.Related(context.Background(), "self", 4)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(related) != 1 || related[0].Slug != "other" {
		t.Fatalf("unexpected related set: %+v", related)
	}
}

func TestUpdateRenameRefreshesSlug(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	product := &models.Product{ID: uuid.New(), Name: "Old Name", Slug: "old-name", IsActive: true}
	repo.add(product)

	name := "New Name"
	if _, err := svc.Update(context.Background(), product.ID, UpdateProductRequest{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if repo.updates["slug"] != "new-name" {
		t.Fatalf("slug not refreshed: %v", repo.updates)
	}
}

func TestUpdateReplacesVariants(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	product := &models.Product{ID: uuid.New(), Name: "Shirt", Slug: "shirt", IsActive: true}
	repo.add(product)

	color := "Navy"
	size := "L"
	if _, err := svc.Update(context.Background(), product.ID, UpdateProductRequest{
		Variants: []VariantInput{{Color: &color, Size: &size}},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(repo.variants) != 1 || *repo.variants[0].Color != "Navy" {
		t.Fatalf("variants not replaced: %+v", repo.variants)
	}
}

func TestListMapsSummaries(t *testing.T) {
	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	repo.listRows = []models.Product{
		{
			ID:       uuid.New(),
			Name:     "Grid Item",
			Slug:     "grid-item",
			Price:    decimal.NewFromInt(500),
			Quantity: 0,
			IsActive: true,
			Images:   []string{"https://cdn.example.com/grid.jpg"},
		},
	}

	list, err := svc.List(context.Background(), ListInput{Pagination: pagination.Params{Page: 1, Limit: 12}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list.Products) != 1 {
		t.Fatalf("expected one product, got %d", len(list.Products))
	}
	item := list.Products[0]
	if item.InStock {
		t.Fatal("zero quantity must read as out of stock")
	}
	if item.ImageURL == nil || *item.ImageURL != "https://cdn.example.com/grid.jpg" {
		t.Fatal("first image must become the thumbnail")
	}
	if list.Pagination.TotalItems != 1 {
		t.Fatalf("pagination meta: %+v", list.Pagination)
	}
}
