package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteSettings is the single global configuration row the storefront reads
// at startup. Admin updates write back to the same row.
type SiteSettings struct {
	ID                    uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SiteName              string    `gorm:"column:site_name;not null"`
	Description           *string   `gorm:"column:description"`
	ContactEmail          *string   `gorm:"column:contact_email"`
	ContactPhone          *string   `gorm:"column:contact_phone"`
	ContactAddress        *string   `gorm:"column:contact_address"`
	FacebookURL           *string   `gorm:"column:facebook_url"`
	InstagramURL          *string   `gorm:"column:instagram_url"`
	YoutubeURL            *string   `gorm:"column:youtube_url"`
	TiktokURL             *string   `gorm:"column:tiktok_url"`
	LogoURL               *string   `gorm:"column:logo_url"`
	PaymentBadgeURL       *string   `gorm:"column:payment_badge_url"`
	DeliveryChargeInside  int       `gorm:"column:delivery_charge_inside;not null;default:60"`
	DeliveryChargeOutside int       `gorm:"column:delivery_charge_outside;not null;default:120"`
	PixelID               *string   `gorm:"column:pixel_id"`
	PixelEnabled          bool      `gorm:"column:pixel_enabled;not null;default:false"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *SiteSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
