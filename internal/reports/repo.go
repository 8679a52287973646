package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
)

// Totals holds the dashboard headline figures.
type Totals struct {
	Orders    int64
	Revenue   decimal.Decimal
	Customers int64
	Products  int64
}

// DailySales is one row of the per-day sales report.
type DailySales struct {
	Day     string
	Orders  int64
	Revenue decimal.Decimal
}

// Repository aggregates figures across the orders, users, and products tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reports repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Totals computes the headline dashboard figures. Cancelled orders count
// toward the order total but not toward revenue.
func (r *Repository) Totals(ctx context.Context) (*Totals, error) {
	totals := &Totals{Revenue: decimal.Zero}

	if err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&totals.Orders).Error; err != nil {
		return nil, err
	}

	var revenue *decimal.Decimal
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status <> ?", enums.OrderStatusCancelled).
		Select("SUM(total)").
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue != nil {
		totals.Revenue = *revenue
	}

	err = r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.UserRoleCustomer).
		Count(&totals.Customers).Error
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&totals.Products).Error; err != nil {
		return nil, err
	}
	return totals, nil
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

// SalesBetween returns per-day order counts and revenue for the inclusive
// date range, oldest day first. Cancelled orders are excluded.
func (r *Repository) SalesBetween(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	type row struct {
		Day     string
		Orders  int64
		Revenue decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status <> ?", enums.OrderStatusCancelled).
		Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1)).
		Select("DATE(created_at) AS day, COUNT(*) AS orders, SUM(total) AS revenue").
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]DailySales, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailySales{Day: r.Day, Orders: r.Orders, Revenue: r.Revenue})
	}
	return out, nil
}
