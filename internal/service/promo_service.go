package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/pricing"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type promoStore interface {
	Create(ctx context.Context, p *models.PromoCode) error
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
	List(ctx context.Context) ([]models.PromoCode, error)
	SetActive(ctx context.Context, code string, active bool) error
}

// PromoCheck is the outcome of validating a code against a subtotal.
type PromoCheck struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

type PromoService struct {
	repo promoStore
	now  func() time.Time
}

func NewPromoService(repo promoStore) *PromoService {
	return &PromoService{repo: repo, now: time.Now}
}

func (s *PromoService) Create(ctx context.Context, p *models.PromoCode) (*models.PromoCode, error) {
	if err := validation.ValidateStruct(p); err != nil {
		return nil, err
	}
	if p.Type == models.PromoPercent && p.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, invalid("value", "max", "value must be at most 100 for a percent code")
	}
	if p.ValidFrom != nil && p.ValidTo != nil && p.ValidFrom.After(*p.ValidTo) {
		return nil, invalid("validFrom", "ltefield", "validFrom must not be after validTo")
	}
	p.UsedCount = 0
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PromoService) List(ctx context.Context) ([]models.PromoCode, error) {
	return s.repo.List(ctx)
}

func (s *PromoService) SetActive(ctx context.Context, code string, active bool) error {
	return s.repo.SetActive(ctx, code, active)
}

// Check computes the discount code would give on subtotal right now.
func (s *PromoService) Check(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoCheck, error) {
	p, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	d, err := pricing.ApplyPromo(p, subtotal, s.now())
	if err != nil {
		return nil, err
	}
	return &PromoCheck{Code: p.Code, Discount: d}, nil
}
