package settings

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/trendora/trendora-backend/pkg/db/models"
)

type stubSettingsRepo struct {
	row       *models.SiteSettings
	getCalls  int
	lastWrite map[string]any
}

func newStubSettingsRepo() *stubSettingsRepo {
	return &stubSettingsRepo{
		row: &models.SiteSettings{
			SiteName:              "Trendora",
			DeliveryChargeInside:  60,
			DeliveryChargeOutside: 120,
		},
	}
}

func (s *stubSettingsRepo) Get(_ context.Context) (*models.SiteSettings, error) {
	s.getCalls++
	return s.row, nil
}

func (s *stubSettingsRepo) Update(_ context.Context, updates map[string]any) (*models.SiteSettings, error) {
	s.lastWrite = updates
	if name, ok := updates["site_name"].(string); ok {
		s.row.SiteName = name
	}
	if charge, ok := updates["delivery_charge_inside"].(int); ok {
		s.row.DeliveryChargeInside = charge
	}
	if pixel, ok := updates["pixel_id"].(string); ok {
		s.row.PixelID = &pixel
	}
	if enabled, ok := updates["pixel_enabled"].(bool); ok {
		s.row.PixelEnabled = enabled
	}
	return s.row, nil
}

type memCache struct {
	values map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}}
}

func (m *memCache) Read(_ context.Context, key string, dest any, _ any) bool {
	raw, ok := m.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (m *memCache) Write(_ context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	m.values[key] = raw
}

func (m *memCache) Invalidate(_ context.Context, key string) {
	delete(m.values, key)
}

func newFixture(t *testing.T) (Service, *stubSettingsRepo, *memCache) {
	t.Helper()
	repo := newStubSettingsRepo()
	cache := newMemCache()
	svc, err := NewService(ServiceParams{Repo: repo, Cache: cache})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo, cache
}

func TestGetReadsThroughCache(t *testing.T) {
	svc, repo, _ := newFixture(t)

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("second Get: %v", err)
	}

	if repo.getCalls != 1 {
		t.Fatalf("repo hits = %d, want 1 (second read served from cache)", repo.getCalls)
	}
}

func TestUpdateInvalidatesCache(t *testing.T) {
	svc, repo, cache := newFixture(t)

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	name := "Trendora BD"
	if _, err := svc.Update(context.Background(), UpdateRequest{SiteName: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(cache.values) != 0 {
		t.Fatal("cache not invalidated by update")
	}
	if repo.lastWrite["site_name"] != "Trendora BD" {
		t.Fatalf("updates = %v, want site_name", repo.lastWrite)
	}

	dto, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if dto.SiteName != "Trendora BD" {
		t.Fatalf("site name = %q, want updated value", dto.SiteName)
	}
}

func TestShippingRatesFollowSettings(t *testing.T) {
	svc, repo, _ := newFixture(t)
	repo.row.DeliveryChargeInside = 80
	repo.row.DeliveryChargeOutside = 150

	rates := svc.ShippingRates(context.Background())
	if !rates.InsideDhaka.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("inside = %s, want 80", rates.InsideDhaka)
	}
	if !rates.OutsideDhaka.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("outside = %s, want 150", rates.OutsideDhaka)
	}
}

func TestPixelHiddenUntilEnabled(t *testing.T) {
	svc, _, cache := newFixture(t)

	pixel, err := svc.Pixel(context.Background())
	if err != nil {
		t.Fatalf("Pixel: %v", err)
	}
	if pixel.Enabled || pixel.PixelID != nil {
		t.Fatalf("pixel = %+v, want disabled", pixel)
	}

	id := "1234567890"
	enabled := true
	if _, err := svc.Update(context.Background(), UpdateRequest{PixelID: &id, PixelEnabled: &enabled}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	cache.values = map[string][]byte{}

	pixel, err = svc.Pixel(context.Background())
	if err != nil {
		t.Fatalf("Pixel after enable: %v", err)
	}
	if !pixel.Enabled || pixel.PixelID == nil || *pixel.PixelID != id {
		t.Fatalf("pixel = %+v, want enabled with id", pixel)
	}
}
