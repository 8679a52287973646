package orders

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// ListFilters narrows the admin order listing.
type ListFilters struct {
	Status *enums.OrderStatus
	// Search matches against billing name and phone.
	Search string
}

// Repository encapsulates order persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided GORM DB.
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

// Create inserts the order with its item snapshots.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByCustomer returns one page of a customer's orders, newest first.
func (r *Repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) ([]models.Order, int64, error) {
	return r.list(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("customer_id = ?", customerID)
	})
}

// ListBySession returns one page of a guest session's orders, newest first.
func (r *Repository) ListBySession(ctx context.Context, sessionToken string, params pagination.Params) ([]models.Order, int64, error) {
	return r.list(ctx, params, func(query *gorm.DB) *gorm.DB {
		return query.Where("session_token = ?", sessionToken)
	})
}

// List returns one page of all orders for the admin console.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, int64, error) {
	return r.list(ctx, params, func(query *gorm.DB) *gorm.DB {
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if search := strings.TrimSpace(filters.Search); search != "" {
			pattern := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(billing_name) LIKE ? OR billing_phone LIKE ?", pattern, pattern)
		}
		return query
	})
}

func (r *Repository) list(ctx context.Context, params pagination.Params, scope func(*gorm.DB) *gorm.DB) ([]models.Order, int64, error) {
	params = pagination.Normalize(params)
	query := scope(r.db.WithContext(ctx).Model(&models.Order{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update applies the column updates to an order row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountByStatus returns order counts grouped by lifecycle status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error) {
	type row struct {
		Status enums.OrderStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[enums.OrderStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Total
	}
	return out, nil
}
