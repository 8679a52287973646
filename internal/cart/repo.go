package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
)

// Repository encapsulates cart persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindOrCreate returns the owner's cart, creating an empty one if absent.
// Items come back ordered by insertion time.
func (r *Repository) FindOrCreate(ctx context.Context, owner Owner) (*models.CartRecord, error) {
	record, err := r.Find(ctx, owner)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.CartRecord{}
	if owner.IsGuest() {
		token := owner.SessionToken
		fresh.SessionToken = &token
	} else {
		customerID := owner.CustomerID
		fresh.CustomerID = &customerID
	}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		return nil, err
	}
	fresh.Items = []models.CartItem{}
	return fresh, nil
}

// Find loads the owner's cart with its items, or gorm.ErrRecordNotFound.
func (r *Repository) Find(ctx context.Context, owner Owner) (*models.CartRecord, error) {
	query := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	if owner.IsGuest() {
		query = query.Where("session_token = ?", owner.SessionToken)
	} else {
		query = query.Where("customer_id = ?", owner.CustomerID)
	}

	var record models.CartRecord
	if err := query.First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// AddItem appends a line item to the cart.
func (r *Repository) AddItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItemQuantity sets the quantity of a single line item.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
}

// RemoveItem deletes a single line item.
func (r *Repository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error
}

// Clear removes every line item from the cart, keeping the cart row.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.CartItem{}, "cart_id = ?", cartID).Error
}

// AdoptGuestCart moves a guest cart's items into the customer's cart when a
// guest signs in mid-session. Lines for products already in the customer cart
// merge by quantity; the guest cart row is removed afterwards.
func (r *Repository) AdoptGuestCart(ctx context.Context, sessionToken string, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := r.WithTx(tx)

		guest, err := repo.Find(ctx, GuestOwner(sessionToken))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		target, err := repo.FindOrCreate(ctx, CustomerOwner(customerID))
		if err != nil {
			return err
		}

		for i := range guest.Items {
			line := guest.Items[i]
			if existing := findLine(target.Items, line.ProductID, line.Color, line.Size); existing != nil {
				if err := repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+line.Quantity); err != nil {
					return err
				}
				continue
			}
			moved := line
			moved.ID = uuid.Nil
			moved.CartID = target.ID
			if err := repo.AddItem(ctx, &moved); err != nil {
				return err
			}
		}

		if err := repo.Clear(ctx, guest.ID); err != nil {
			return err
		}
		return tx.Delete(&models.CartRecord{}, "id = ?", guest.ID).Error
	})
}

func findLine(items []models.CartItem, productID uuid.UUID, color, size *string) *models.CartItem {
	for i := range items {
		if items[i].ProductID == productID && equalVariant(items[i].Color, color) && equalVariant(items[i].Size, size) {
			return &items[i]
		}
	}
	return nil
}

func equalVariant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
