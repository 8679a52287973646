package banners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
)

// BannerDTO is one homepage slide.
type BannerDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     *string   `json:"title,omitempty"`
	ImageURL  string    `json:"imageUrl"`
	LinkURL   *string   `json:"linkUrl,omitempty"`
	Position  int       `json:"position"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateBannerRequest is the admin console's new-banner form.
type CreateBannerRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	ImageURL string  `json:"imageUrl" validate:"required,url"`
	LinkURL  *string `json:"linkUrl" validate:"omitempty,url"`
	Position int     `json:"position" validate:"min=0"`
}

// UpdateBannerRequest carries the editable fields. Nil leaves unchanged.
type UpdateBannerRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=200"`
	ImageURL *string `json:"imageUrl" validate:"omitempty,url"`
	LinkURL  *string `json:"linkUrl" validate:"omitempty,url"`
	Position *int    `json:"position" validate:"omitempty,min=0"`
	IsActive *bool   `json:"isActive"`
}

// Repository encapsulates banner persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a banner repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive returns the slides the storefront renders, in display order.
func (r *Repository) ListActive(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListAll returns every banner for the admin console.
func (r *Repository) ListAll(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	err := r.db.WithContext(ctx).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// FindByID loads one banner.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	var row models.Banner
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts a banner.
func (r *Repository) Create(ctx context.Context, banner *models.Banner) (*models.Banner, error) {
	if err := r.db.WithContext(ctx).Create(banner).Error; err != nil {
		return nil, err
	}
	return banner, nil
}

// Update applies the column updates to a banner row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Banner{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete removes a banner.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Banner{}, "id = ?", id).Error
}

// Service exposes banner operations.
type Service interface {
	ListActive(ctx context.Context) ([]BannerDTO, error)
	ListAll(ctx context.Context) ([]BannerDTO, error)
	Create(ctx context.Context, req CreateBannerRequest) (*BannerDTO, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateBannerRequest) (*BannerDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type bannerRepository interface {
	ListActive(ctx context.Context) ([]models.Banner, error)
	ListAll(ctx context.Context) ([]models.Banner, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Banner, error)
	Create(ctx context.Context, banner *models.Banner) (*models.Banner, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the banner service.
type ServiceParams struct {
	Repo bannerRepository
}

type service struct {
	repo bannerRepository
}

// NewService builds a banner service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("banner repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) ListActive(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	return toDTOs(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]BannerDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	return toDTOs(rows), nil
}

func (s *service) Create(ctx context.Context, req CreateBannerRequest) (*BannerDTO, error) {
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}

	banner := &models.Banner{
		Title:    req.Title,
		ImageURL: imageURL,
		LinkURL:  req.LinkURL,
		Position: req.Position,
		IsActive: true,
	}
	created, err := s.repo.Create(ctx, banner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create banner")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateBannerRequest) (*BannerDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		updates["title"] = req.Title
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.LinkURL != nil {
		updates["link_url"] = req.LinkURL
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update banner")
	}

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete banner")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Banner, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "banner id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "banner not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load banner")
	}
	return row, nil
}

func toDTO(row *models.Banner) BannerDTO {
	return BannerDTO{
		ID:        row.ID,
		Title:     row.Title,
		ImageURL:  row.ImageURL,
		LinkURL:   row.LinkURL,
		Position:  row.Position,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
}

func toDTOs(rows []models.Banner) []BannerDTO {
	out := make([]BannerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out
}
