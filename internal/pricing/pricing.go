// Package pricing computes product prices and order totals. Every function
// is pure: store settings and promo codes are passed in by the caller.
package pricing

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/models"
)

var (
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidWeight   = errors.New("weight must be greater than 0")

	ErrPromoInvalid    = errors.New("promo code is not valid")
	ErrPromoInactive   = fmt.Errorf("%w: inactive", ErrPromoInvalid)
	ErrPromoNotStarted = fmt.Errorf("%w: not yet active", ErrPromoInvalid)
	ErrPromoExpired    = fmt.Errorf("%w: expired", ErrPromoInvalid)
	ErrPromoExhausted  = fmt.Errorf("%w: usage limit reached", ErrPromoInvalid)
	ErrPromoMinOrder   = fmt.Errorf("%w: order total below minimum", ErrPromoInvalid)
)

var hundred = decimal.NewFromInt(100)

// FinalPrice is base reduced by discount percent, rounded to 2 decimals.
func FinalPrice(base decimal.Decimal, discount int) (decimal.Decimal, error) {
	if discount < 0 || discount > 100 {
		return decimal.Zero, ErrInvalidDiscount
	}
	factor := hundred.Sub(decimal.NewFromInt(int64(discount))).Div(hundred)
	return base.Mul(factor).Round(2), nil
}

// Savings is how much discount takes off base.
func Savings(base decimal.Decimal, discount int) (decimal.Decimal, error) {
	final, err := FinalPrice(base, discount)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Round(2).Sub(final), nil
}

// Settings are the store parameters an order total depends on.
type Settings struct {
	TaxRate           decimal.Decimal // percent
	DeliveryFee       decimal.Decimal
	PackagingFee      decimal.Decimal
	FreeDeliveryAbove decimal.Decimal // zero disables free delivery
}

// SettingsFrom extracts the pricing parameters from the store settings.
func SettingsFrom(s models.StoreSettings) Settings {
	return Settings{
		TaxRate:           s.TaxRate,
		DeliveryFee:       s.DeliveryFee,
		PackagingFee:      s.PackagingFee,
		FreeDeliveryAbove: s.FreeDeliveryAbove,
	}
}

// Line is one cart entry priced at the product's current final price.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	// WeightKg multiplies the unit price for products sold by weight.
	WeightKg decimal.NullDecimal
}

// Total is unit price × quantity × weight, where weight defaults to 1.
func (l Line) Total() decimal.Decimal {
	t := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	if l.WeightKg.Valid {
		t = t.Mul(l.WeightKg.Decimal)
	}
	return t.Round(2)
}

func (l Line) validate() error {
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if l.WeightKg.Valid && !l.WeightKg.Decimal.IsPositive() {
		return ErrInvalidWeight
	}
	return nil
}

// Breakdown is a priced order.
type Breakdown struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	Discount     decimal.Decimal `json:"discount"`
	Tax          decimal.Decimal `json:"tax"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	PackagingFee decimal.Decimal `json:"packagingFee"`
	Total        decimal.Decimal `json:"total"`
}

// Quote prices lines under s. promo may be nil. Tax is charged on the
// subtotal before the promo discount, and delivery is free for pickup or
// when the subtotal reaches the free delivery threshold.
func Quote(lines []Line, s Settings, promo *models.PromoCode, method models.DeliveryMethod, now time.Time) (Breakdown, error) {
	var b Breakdown
	for _, l := range lines {
		if err := l.validate(); err != nil {
			return Breakdown{}, err
		}
		b.Subtotal = b.Subtotal.Add(l.Total())
	}

	if promo != nil {
		d, err := ApplyPromo(promo, b.Subtotal, now)
		if err != nil {
			return Breakdown{}, err
		}
		b.Discount = d
	}

	b.Tax = b.Subtotal.Mul(s.TaxRate).Div(hundred).Round(2)
	b.PackagingFee = s.PackagingFee.Round(2)
	b.DeliveryFee = DeliveryFee(b.Subtotal, s, method)

	b.Total = b.Subtotal.Add(b.DeliveryFee).Add(b.PackagingFee).Add(b.Tax).Sub(b.Discount)
	if b.Total.IsNegative() {
		b.Total = decimal.Zero
	}
	return b, nil
}

// DeliveryFee returns the fee for an order of subtotal delivered by method.
func DeliveryFee(subtotal decimal.Decimal, s Settings, method models.DeliveryMethod) decimal.Decimal {
	if method == models.DeliveryPickup {
		return decimal.Zero
	}
	if s.FreeDeliveryAbove.IsPositive() && subtotal.GreaterThanOrEqual(s.FreeDeliveryAbove) {
		return decimal.Zero
	}
	return s.DeliveryFee.Round(2)
}

// ApplyPromo returns the discount p gives on subtotal at now. Percent codes
// are capped by MaxDiscount when set; no code discounts more than subtotal.
func ApplyPromo(p *models.PromoCode, subtotal decimal.Decimal, now time.Time) (decimal.Decimal, error) {
	switch {
	case !p.IsActive:
		return decimal.Zero, ErrPromoInactive
	case p.ValidFrom != nil && now.Before(*p.ValidFrom):
		return decimal.Zero, ErrPromoNotStarted
	case p.ValidTo != nil && now.After(*p.ValidTo):
		return decimal.Zero, ErrPromoExpired
	case p.UsageLimit > 0 && p.UsedCount >= p.UsageLimit:
		return decimal.Zero, ErrPromoExhausted
	case subtotal.LessThan(p.MinOrder):
		return decimal.Zero, ErrPromoMinOrder
	}

	var d decimal.Decimal
	switch p.Type {
	case models.PromoPercent:
		d = subtotal.Mul(p.Value).Div(hundred)
		if p.MaxDiscount.IsPositive() && d.GreaterThan(p.MaxDiscount) {
			d = p.MaxDiscount
		}
	case models.PromoFlat:
		d = p.Value
	default:
		return decimal.Zero, ErrPromoInvalid
	}

	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	return d.Round(2), nil
}
