package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/metrics"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type settingsStore interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Save(ctx context.Context, s *models.StoreSettings) error
}

type settingsCache interface {
	Get(ctx context.Context) (*models.StoreSettings, error)
	Set(ctx context.Context, s *models.StoreSettings) error
	Invalidate(ctx context.Context) error
}

// SettingsService resolves the store settings from Postgres, fronted by
// Redis, falling back to the configured defaults until an admin saves any.
// Callers pass the returned value explicitly into pricing and imports.
type SettingsService struct {
	repo     settingsStore
	cache    settingsCache
	defaults models.StoreSettings
}

// NewSettingsService builds the service. cache may be nil.
func NewSettingsService(repo settingsStore, cache settingsCache, cfg config.StoreConfig) (*SettingsService, error) {
	defaults, err := DefaultSettings(cfg)
	if err != nil {
		return nil, err
	}
	return &SettingsService{repo: repo, cache: cache, defaults: defaults}, nil
}

// DefaultSettings converts the environment defaults into a settings document.
func DefaultSettings(cfg config.StoreConfig) (models.StoreSettings, error) {
	s := models.StoreSettings{
		StoreName:       cfg.Name,
		Currency:        models.Currency(cfg.Currency),
		WhatsAppNumber:  cfg.WhatsAppNumber,
		DefaultPincodes: nonNil(cfg.DefaultPincodes),
		DeliverySlots:   []string{"09:00-12:00", "12:00-15:00", "15:00-18:00", "18:00-21:00"},
	}
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"STORE_TAX_RATE", cfg.TaxRate, &s.TaxRate},
		{"STORE_DELIVERY_FEE", cfg.DeliveryFee, &s.DeliveryFee},
		{"STORE_PACKAGING_FEE", cfg.PackagingFee, &s.PackagingFee},
		{"STORE_FREE_DELIVERY_ABOVE", cfg.FreeDeliveryAbove, &s.FreeDeliveryAbove},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return s, fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}
	return s, nil
}

// Get returns the effective settings.
func (s *SettingsService) Get(ctx context.Context) (models.StoreSettings, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			metrics.CacheLookups.WithLabelValues("settings", "error").Inc()
			log.Warn().Err(err).Msg("settings cache read failed")
		case cached != nil:
			metrics.CacheLookups.WithLabelValues("settings", "hit").Inc()
			return *cached, nil
		default:
			metrics.CacheLookups.WithLabelValues("settings", "miss").Inc()
		}
	}

	saved, err := s.repo.Get(ctx)
	if err != nil {
		return models.StoreSettings{}, err
	}
	out := s.defaults
	if saved != nil {
		out = *saved
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, &out); err != nil {
			log.Warn().Err(err).Msg("settings cache write failed")
		}
	}
	return out, nil
}

// Update validates and saves new settings, then drops the cached copy.
func (s *SettingsService) Update(ctx context.Context, in models.StoreSettings) (models.StoreSettings, error) {
	in.DefaultPincodes = nonNil(in.DefaultPincodes)
	in.DeliverySlots = nonNil(in.DeliverySlots)
	if err := validation.ValidateStruct(in); err != nil {
		return models.StoreSettings{}, err
	}
	if err := s.repo.Save(ctx, &in); err != nil {
		return models.StoreSettings{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("settings cache invalidate failed")
		}
	}
	log.Info().Str("store", in.StoreName).Msg("store settings updated")
	return in, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
