package wishlist

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

type wishKey struct {
	customer uuid.UUID
	product  uuid.UUID
}

type stubWishlistRepo struct {
	entries map[wishKey]*models.WishlistItem
}

func newStubWishlistRepo() *stubWishlistRepo {
	return &stubWishlistRepo{entries: map[wishKey]*models.WishlistItem{}}
}

func (s *stubWishlistRepo) Find(_ context.Context, customerID, productID uuid.UUID) (*models.WishlistItem, error) {
	entry, ok := s.entries[wishKey{customerID, productID}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return entry, nil
}

func (s *stubWishlistRepo) Create(_ context.Context, item *models.WishlistItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.entries[wishKey{item.CustomerID, item.ProductID}] = item
	return nil
}

func (s *stubWishlistRepo) Delete(_ context.Context, customerID, productID uuid.UUID) error {
	delete(s.entries, wishKey{customerID, productID})
	return nil
}

func (s *stubWishlistRepo) List(_ context.Context, customerID uuid.UUID, _ pagination.Params) ([]models.WishlistItem, int64, error) {
	var rows []models.WishlistItem
	for key, entry := range s.entries {
		if key.customer == customerID {
			rows = append(rows, *entry)
		}
	}
	return rows, int64(len(rows)), nil
}

type stubCatalog struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func newFixture(t *testing.T) (Service, *stubWishlistRepo, *stubCatalog) {
	t.Helper()
	repo := newStubWishlistRepo()
	catalog := &stubCatalog{products: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(ServiceParams{Repo: repo, Catalog: catalog})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, catalog
}

func seedProduct(catalog *stubCatalog) *models.Product {
	product := &models.Product{
		ID:              uuid.New(),
		Name:            "Summer Dress",
		Slug:            "summer-dress",
		Price:           decimal.NewFromInt(1000),
		DiscountPercent: decimal.NewFromInt(10),
		Images:          []string{"https://cdn.example.com/dress.jpg"},
		Category:        &models.Category{Name: "Dresses"},
		IsActive:        true,
	}
	catalog.products[product.ID] = product
	return product
}

func TestToggleIsAnInvolution(t *testing.T) {
	svc, repo, catalog := newFixture(t)
	product := seedProduct(catalog)
	customerID := uuid.New()

	first, err := svc.Toggle(context.Background(), customerID, product.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.Added {
		t.Fatal("first toggle did not add")
	}
	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}

	second, err := svc.Toggle(context.Background(), customerID, product.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.Added {
		t.Fatal("second toggle did not remove")
	}
	if len(repo.entries) != 0 {
		t.Fatalf("entries = %d after double toggle, want 0", len(repo.entries))
	}
}

func TestToggleStoresProjection(t *testing.T) {
	svc, repo, catalog := newFixture(t)
	product := seedProduct(catalog)
	customerID := uuid.New()

	if _, err := svc.Toggle(context.Background(), customerID, product.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	entry := repo.entries[wishKey{customerID, product.ID}]
	if entry == nil {
		t.Fatal("entry not stored")
	}
	if entry.Name != product.Name || entry.Slug != product.Slug {
		t.Fatalf("projection = %+v", entry)
	}
	if entry.CategoryName == nil || *entry.CategoryName != "Dresses" {
		t.Fatalf("category name = %v, want Dresses", entry.CategoryName)
	}
	if entry.ImageURL == nil || *entry.ImageURL != product.Images[0] {
		t.Fatalf("image = %v, want %s", entry.ImageURL, product.Images[0])
	}
}

func TestToggleUnknownProduct(t *testing.T) {
	svc, _, _ := newFixture(t)

	_, err := svc.Toggle(context.Background(), uuid.New(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestContains(t *testing.T) {
	svc, _, catalog := newFixture(t)
	product := seedProduct(catalog)
	customerID := uuid.New()

	found, err := svc.Contains(context.Background(), customerID, product.ID)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if found {
		t.Fatal("empty wishlist reported the product")
	}

	if _, err := svc.Toggle(context.Background(), customerID, product.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	found, err = svc.Contains(context.Background(), customerID, product.ID)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found {
		t.Fatal("wishlist missing toggled product")
	}
}

func TestListComputesFinalPrice(t *testing.T) {
	svc, _, catalog := newFixture(t)
	product := seedProduct(catalog)
	customerID := uuid.New()

	if _, err := svc.Toggle(context.Background(), customerID, product.ID); err != nil {
		t.Fatalf("Toggle: %v", err)
	}

	page, err := svc.List(context.Background(), customerID, pagination.Params{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(page.Items))
	}
	if !page.Items[0].FinalPrice.Equal(decimal.NewFromInt(900)) {
		t.Fatalf("final price = %s, want 900", page.Items[0].FinalPrice)
	}
	if page.Pagination.TotalItems != 1 {
		t.Fatalf("total = %d, want 1", page.Pagination.TotalItems)
	}
}
