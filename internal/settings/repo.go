package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
)

// Repository encapsulates the single site-settings row.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a settings repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get loads the settings row, creating the seeded default when the table is
// empty so the storefront always has something to render.
func (r *Repository) Get(ctx context.Context) (*models.SiteSettings, error) {
	var row models.SiteSettings
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&row).Error
	if err == nil {
		return &row, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	seeded := &models.SiteSettings{
		SiteName:              "Trendora",
		DeliveryChargeInside:  60,
		DeliveryChargeOutside: 120,
	}
	if err := r.db.WithContext(ctx).Create(seeded).Error; err != nil {
		return nil, err
	}
	return seeded, nil
}

// Update applies the column updates to the settings row.
func (r *Repository) Update(ctx context.Context, updates map[string]any) (*models.SiteSettings, error) {
	row, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return row, nil
	}
	err = r.db.WithContext(ctx).
		Model(&models.SiteSettings{}).
		Where("id = ?", row.ID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx)
}
