package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/db/models"
)

func TestFindOrCreateIsIdempotent(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	owner := GuestOwner("guest-token-1")

	first, err := repo.FindOrCreate(context.Background(), owner)
	if err != nil {
		t.Fatalf("first FindOrCreate: %v", err)
	}
	second, err := repo.FindOrCreate(context.Background(), owner)
	if err != nil {
		t.Fatalf("second FindOrCreate: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("owner got two carts: %s and %s", first.ID, second.ID)
	}
}

func TestFindPreloadsItems(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	owner := CustomerOwner(uuid.New())

	record, err := repo.FindOrCreate(context.Background(), owner)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}

	for _, name := range []string{"first", "second", "third"} {
		item := &models.CartItem{
			CartID:    record.ID,
			ProductID: uuid.New(),
			Name:      name,
			Slug:      name,
			UnitPrice: decimal.NewFromInt(100),
			Quantity:  1,
		}
		if err := repo.AddItem(context.Background(), item); err != nil {
			t.Fatalf("AddItem(%s): %v", name, err)
		}
	}

	loaded, err := repo.Find(context.Background(), owner)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(loaded.Items) != 3 {
		t.Fatalf("items = %d, want 3", len(loaded.Items))
	}
}

func TestClearKeepsCartRow(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	owner := CustomerOwner(uuid.New())

	record, err := repo.FindOrCreate(context.Background(), owner)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	item := &models.CartItem{
		CartID:    record.ID,
		ProductID: uuid.New(),
		Name:      "dress",
		Slug:      "dress",
		UnitPrice: decimal.NewFromInt(100),
		Quantity:  2,
	}
	if err := repo.AddItem(context.Background(), item); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if err := repo.Clear(context.Background(), record.ID); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	loaded, err := repo.Find(context.Background(), owner)
	if err != nil {
		t.Fatalf("Find after clear: %v", err)
	}
	if len(loaded.Items) != 0 {
		t.Fatalf("items = %d, want 0", len(loaded.Items))
	}
}

func TestAdoptGuestCartMergesLines(t *testing.T) {
	repo := NewRepository(openTestDB(t))
	token := "guest-token-merge"
	customerID := uuid.New()
	sharedProduct := uuid.New()

	guest, err := repo.FindOrCreate(context.Background(), GuestOwner(token))
	if err != nil {
		t.Fatalf("guest FindOrCreate: %v", err)
	}
	target, err := repo.FindOrCreate(context.Background(), CustomerOwner(customerID))
	if err != nil {
		t.Fatalf("customer FindOrCreate: %v", err)
	}

	seed := func(cartID, productID uuid.UUID, name string, qty int) {
		t.Helper()
		item := &models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Name:      name,
			Slug:      name,
			UnitPrice: decimal.NewFromInt(500),
			Quantity:  qty,
		}
		if err := repo.AddItem(context.Background(), item); err != nil {
			t.Fatalf("AddItem(%s): %v", name, err)
		}
	}
	seed(guest.ID, sharedProduct, "shared", 2)
	seed(guest.ID, uuid.New(), "guest-only", 1)
	seed(target.ID, sharedProduct, "shared", 3)

	if err := repo.AdoptGuestCart(context.Background(), token, customerID); err != nil {
		t.Fatalf("AdoptGuestCart: %v", err)
	}

	merged, err := repo.Find(context.Background(), CustomerOwner(customerID))
	if err != nil {
		t.Fatalf("Find merged: %v", err)
	}
	if len(merged.Items) != 2 {
		t.Fatalf("merged lines = %d, want 2", len(merged.Items))
	}
	for _, item := range merged.Items {
		if item.ProductID == sharedProduct && item.Quantity != 5 {
			t.Fatalf("shared quantity = %d, want 5", item.Quantity)
		}
	}

	if _, err := repo.Find(context.Background(), GuestOwner(token)); err == nil {
		t.Fatal("guest cart survived adoption")
	}
}
