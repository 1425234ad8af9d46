package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type memSettingsStore struct {
	saved *models.StoreSettings
	gets  int
}

func (m *memSettingsStore) Get(context.Context) (*models.StoreSettings, error) {
	m.gets++
	return m.saved, nil
}

func (m *memSettingsStore) Save(_ context.Context, s *models.StoreSettings) error {
	cp := *s
	m.saved = &cp
	return nil
}

type memSettingsCache struct {
	cached      *models.StoreSettings
	readErr     error
	invalidated int
}

func (m *memSettingsCache) Get(context.Context) (*models.StoreSettings, error) {
	return m.cached, m.readErr
}

func (m *memSettingsCache) Set(_ context.Context, s *models.StoreSettings) error {
	cp := *s
	m.cached = &cp
	return nil
}

func (m *memSettingsCache) Invalidate(context.Context) error {
	m.cached = nil
	m.invalidated++
	return nil
}

func storeConfig() config.StoreConfig {
	return config.StoreConfig{
		Name:              "Crumbs",
		Currency:          "INR",
		TaxRate:           "5",
		DeliveryFee:       "50",
		PackagingFee:      "0",
		FreeDeliveryAbove: "999",
		DefaultPincodes:   []string{"560001"},
	}
}

func TestDefaultSettings(t *testing.T) {
	s, err := DefaultSettings(storeConfig())
	require.NoError(t, err)
	assert.Equal(t, "999", s.FreeDeliveryAbove.String())
	assert.Equal(t, models.CurrencyINR, s.Currency)
	assert.NotEmpty(t, s.DeliverySlots)

	cfg := storeConfig()
	cfg.TaxRate = "five"
	_, err = DefaultSettings(cfg)
	assert.ErrorContains(t, err, "STORE_TAX_RATE")
}

func TestSettingsService_GetFallsBackToDefaultsAndCaches(t *testing.T) {
	store, cache := &memSettingsStore{}, &memSettingsCache{}
	svc, err := NewSettingsService(store, cache, storeConfig())
	require.NoError(t, err)

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Crumbs", s.StoreName)
	require.NotNil(t, cache.cached)

	_, err = svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, store.gets)
}

func TestSettingsService_CacheErrorReadsStore(t *testing.T) {
	store := &memSettingsStore{saved: &models.StoreSettings{StoreName: "Saved", Currency: models.CurrencyCAD}}
	cache := &memSettingsCache{readErr: errors.New("redis down")}
	svc, err := NewSettingsService(store, cache, storeConfig())
	require.NoError(t, err)

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Saved", s.StoreName)
}

func TestSettingsService_UpdateInvalidatesCache(t *testing.T) {
	store, cache := &memSettingsStore{}, &memSettingsCache{}
	svc, err := NewSettingsService(store, cache, storeConfig())
	require.NoError(t, err)
	_, err = svc.Get(context.Background())
	require.NoError(t, err)

	in, _ := DefaultSettings(storeConfig())
	in.TaxRate = decimal.NewFromInt(12)
	_, err = svc.Update(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	s, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12", s.TaxRate.String())
}

func TestSettingsService_UpdateValidates(t *testing.T) {
	store := &memSettingsStore{}
	svc, err := NewSettingsService(store, nil, storeConfig())
	require.NoError(t, err)

	in, _ := DefaultSettings(storeConfig())
	in.Currency = "USD"
	in.DeliveryFee = decimal.NewFromInt(-1)
	_, err = svc.Update(context.Background(), in)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("currency"))
	assert.True(t, verr.Has("deliveryFee"))
	assert.Nil(t, store.saved)
}
