package settings

import (
	"time"

	"github.com/trendora/trendora-backend/pkg/db/models"
)

// SettingsDTO is the full settings document the admin console edits.
type SettingsDTO struct {
	SiteName              string    `json:"siteName"`
	Description           *string   `json:"description,omitempty"`
	ContactEmail          *string   `json:"contactEmail,omitempty"`
	ContactPhone          *string   `json:"contactPhone,omitempty"`
	ContactAddress        *string   `json:"contactAddress,omitempty"`
	FacebookURL           *string   `json:"facebookUrl,omitempty"`
	InstagramURL          *string   `json:"instagramUrl,omitempty"`
	YoutubeURL            *string   `json:"youtubeUrl,omitempty"`
	TiktokURL             *string   `json:"tiktokUrl,omitempty"`
	LogoURL               *string   `json:"logoUrl,omitempty"`
	PaymentBadgeURL       *string   `json:"paymentBadgeUrl,omitempty"`
	DeliveryChargeInside  int       `json:"deliveryChargeInside"`
	DeliveryChargeOutside int       `json:"deliveryChargeOutside"`
	PixelID               *string   `json:"pixelId,omitempty"`
	PixelEnabled          bool      `json:"pixelEnabled"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// PixelDTO is the public slice of settings the storefront needs to fire
// page-view events.
type PixelDTO struct {
	PixelID *string `json:"pixelId,omitempty"`
	Enabled bool    `json:"enabled"`
}

// UpdateRequest carries the editable settings fields. Nil leaves unchanged.
type UpdateRequest struct {
	SiteName              *string `json:"siteName" validate:"omitempty,min=1,max=120"`
	Description           *string `json:"description" validate:"omitempty,max=2000"`
	ContactEmail          *string `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone          *string `json:"contactPhone" validate:"omitempty,max=30"`
	ContactAddress        *string `json:"contactAddress" validate:"omitempty,max=500"`
	FacebookURL           *string `json:"facebookUrl" validate:"omitempty,url"`
	InstagramURL          *string `json:"instagramUrl" validate:"omitempty,url"`
	YoutubeURL            *string `json:"youtubeUrl" validate:"omitempty,url"`
	TiktokURL             *string `json:"tiktokUrl" validate:"omitempty,url"`
	LogoURL               *string `json:"logoUrl" validate:"omitempty,url"`
	PaymentBadgeURL       *string `json:"paymentBadgeUrl" validate:"omitempty,url"`
	DeliveryChargeInside  *int    `json:"deliveryChargeInside" validate:"omitempty,min=0"`
	DeliveryChargeOutside *int    `json:"deliveryChargeOutside" validate:"omitempty,min=0"`
	PixelID               *string `json:"pixelId" validate:"omitempty,max=64"`
	PixelEnabled          *bool   `json:"pixelEnabled"`
}

func toDTO(row *models.SiteSettings) *SettingsDTO {
	return &SettingsDTO{
		SiteName:              row.SiteName,
		Description:           row.Description,
		ContactEmail:          row.ContactEmail,
		ContactPhone:          row.ContactPhone,
		ContactAddress:        row.ContactAddress,
		FacebookURL:           row.FacebookURL,
		InstagramURL:          row.InstagramURL,
		YoutubeURL:            row.YoutubeURL,
		TiktokURL:             row.TiktokURL,
		LogoURL:               row.LogoURL,
		PaymentBadgeURL:       row.PaymentBadgeURL,
		DeliveryChargeInside:  row.DeliveryChargeInside,
		DeliveryChargeOutside: row.DeliveryChargeOutside,
		PixelID:               row.PixelID,
		PixelEnabled:          row.PixelEnabled,
		UpdatedAt:             row.UpdatedAt,
	}
}
