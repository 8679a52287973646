package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/internal/cart"
	"github.com/trendora/trendora-backend/internal/orders"
	"github.com/trendora/trendora-backend/internal/products"
	"github.com/trendora/trendora-backend/pkg/db/models"
)

// Store persists a checkout atomically: order row plus item snapshots, stock
// decrements, and the cart wipe all commit or roll back together.
type Store struct {
	db      *gorm.DB
	carts   *cart.Repository
	catalog *products.Repository
	orders  *orders.Repository
}

// NewStore builds a checkout store over the shared GORM DB.
func NewStore(db *gorm.DB, carts *cart.Repository, catalog *products.Repository, orderRepo *orders.Repository) *Store {
	return &Store{db: db, carts: carts, catalog: catalog, orders: orderRepo}
}

// Persist writes the order inside one transaction. Stock is decremented per
// line; products.ErrInsufficientStock aborts the whole submission.
func (s *Store) Persist(ctx context.Context, order *models.Order, cartID uuid.UUID) (*models.Order, error) {
	var created *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		catalog := s.catalog.WithTx(tx)
		for i := range order.Items {
			line := &order.Items[i]
			if line.ProductID == nil {
				continue
			}
			if err := catalog.AdjustQuantity(ctx, *line.ProductID, -line.Quantity); err != nil {
				return err
			}
		}

		var err error
		created, err = s.orders.WithTx(tx).Create(ctx, order)
		if err != nil {
			return err
		}

		return s.carts.WithTx(tx).Clear(ctx, cartID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
