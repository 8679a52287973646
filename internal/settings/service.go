package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/checkout"
	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
)

const cacheKey = "settings:site"

// Service exposes site settings to the storefront and the admin console.
// Reads go through the cache; admin updates invalidate it.
type Service interface {
	Get(ctx context.Context) (*SettingsDTO, error)
	Pixel(ctx context.Context) (*PixelDTO, error)
	Update(ctx context.Context, req UpdateRequest) (*SettingsDTO, error)
	ShippingRates(ctx context.Context) checkout.ShippingRates
}

type settingsRepository interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Update(ctx context.Context, updates map[string]any) (*models.SiteSettings, error)
}

type cache interface {
	Read(ctx context.Context, key string, dest any, fallback any) bool
	Write(ctx context.Context, key string, value any)
	Invalidate(ctx context.Context, key string)
}

// ServiceParams groups dependencies for the settings service.
type ServiceParams struct {
	Repo  settingsRepository
	Cache cache
}

type service struct {
	repo  settingsRepository
	cache cache
}

// NewService builds a settings service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	return &service{repo: params.Repo, cache: params.Cache}, nil
}

func (s *service) Get(ctx context.Context) (*SettingsDTO, error) {
	var cached SettingsDTO
	if s.cache.Read(ctx, cacheKey, &cached, nil) {
		return &cached, nil
	}

	row, err := s.repo.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load settings")
	}
	dto := toDTO(row)
	s.cache.Write(ctx, cacheKey, dto)
	return dto, nil
}

func (s *service) Pixel(ctx context.Context) (*PixelDTO, error) {
	dto, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	pixel := &PixelDTO{Enabled: dto.PixelEnabled && dto.PixelID != nil}
	if pixel.Enabled {
		pixel.PixelID = dto.PixelID
	}
	return pixel, nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*SettingsDTO, error) {
	updates := map[string]any{}
	setIf(updates, "site_name", req.SiteName)
	setIf(updates, "description", req.Description)
	setIf(updates, "contact_email", req.ContactEmail)
	setIf(updates, "contact_phone", req.ContactPhone)
	setIf(updates, "contact_address", req.ContactAddress)
	setIf(updates, "facebook_url", req.FacebookURL)
	setIf(updates, "instagram_url", req.InstagramURL)
	setIf(updates, "youtube_url", req.YoutubeURL)
	setIf(updates, "tiktok_url", req.TiktokURL)
	setIf(updates, "logo_url", req.LogoURL)
	setIf(updates, "payment_badge_url", req.PaymentBadgeURL)
	setIf(updates, "delivery_charge_inside", req.DeliveryChargeInside)
	setIf(updates, "delivery_charge_outside", req.DeliveryChargeOutside)
	setIf(updates, "pixel_id", req.PixelID)
	setIf(updates, "pixel_enabled", req.PixelEnabled)

	row, err := s.repo.Update(ctx, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update settings")
	}

	s.cache.Invalidate(ctx, cacheKey)
	return toDTO(row), nil
}

// ShippingRates resolves the delivery charges, falling back to the stock
// defaults when settings cannot be loaded so checkout keeps working.
func (s *service) ShippingRates(ctx context.Context) checkout.ShippingRates {
	dto, err := s.Get(ctx)
	if err != nil {
		return checkout.DefaultShippingRates()
	}
	return checkout.ShippingRates{
		InsideDhaka:  decimal.NewFromInt(int64(dto.DeliveryChargeInside)),
		OutsideDhaka: decimal.NewFromInt(int64(dto.DeliveryChargeOutside)),
	}
}

func setIf[T any](updates map[string]any, column string, value *T) {
	if value != nil {
		updates[column] = *value
	}
}
