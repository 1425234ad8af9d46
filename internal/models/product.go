package models

import (
	"slices"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Currency enumerates the currencies a product can be priced in.
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyCAD Currency = "CAD"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyINR || c == CurrencyCAD
}

// Symbol returns the display prefix used in customer-facing messages.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyCAD:
		return "C$"
	default:
		return "₹"
	}
}

// Product is the canonical catalog record. Imports, the admin form and the
// storefront all work with this shape regardless of where the data came from.
type Product struct {
	ID               string              `db:"id" json:"id"`
	Name             string              `db:"name" json:"name" validate:"required"`
	Description      string              `db:"description" json:"description" validate:"required"`
	Category         string              `db:"category" json:"category" validate:"required"`
	BasePrice        decimal.Decimal     `db:"base_price" json:"basePrice" validate:"gte=0.01,lte=9999999999.99,decimals=2"`
	Currency         Currency            `db:"currency" json:"currency" validate:"oneof=INR CAD"`
	Discount         int                 `db:"discount" json:"discount" validate:"min=0,max=100"`
	Stock            *int                `db:"stock" json:"stock,omitempty" validate:"omitempty,min=0,max=2147483647"`
	Featured         bool                `db:"featured" json:"featured"`
	Tags             pq.StringArray      `db:"tags" json:"tags"`
	DeliveryPincodes pq.StringArray      `db:"delivery_pincodes" json:"deliveryPincodes"`
	SEOKeywords      pq.StringArray      `db:"seo_keywords" json:"seoKeywords"`
	MinOrder         decimal.NullDecimal `db:"min_order" json:"minOrder" validate:"omitempty,gte=0,lte=999999.99,decimals=2"`
	MaxOrder         decimal.NullDecimal `db:"max_order" json:"maxOrder" validate:"omitempty,gte=0,lte=999999.99,decimals=2"`
	AvailableFrom    *time.Time          `db:"available_from" json:"availableFrom,omitempty"`
	AvailableTo      *time.Time          `db:"available_to" json:"availableTo,omitempty"`
	Images           pq.StringArray      `db:"images" json:"images" validate:"min=1,dive,http_url"`
	Details          pq.StringArray      `db:"details" json:"details"`
	Views            int64               `db:"views" json:"views"`
	IsActive         bool                `db:"is_active" json:"isActive"`
	ImportJobID      *string             `db:"import_job_id" json:"importJobId,omitempty"`
	CreatedAt        time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time           `db:"updated_at" json:"updatedAt"`
}

// FinalPrice is the base price after the percentage discount, rounded to 2dp.
func (p *Product) FinalPrice() decimal.Decimal {
	if p.Discount <= 0 {
		return p.BasePrice.Round(2)
	}
	factor := decimal.NewFromInt(100 - int64(p.Discount)).Div(decimal.NewFromInt(100))
	return p.BasePrice.Mul(factor).Round(2)
}

// Savings is the amount taken off the base price by the discount.
func (p *Product) Savings() decimal.Decimal {
	return p.BasePrice.Round(2).Sub(p.FinalPrice())
}

// PrimaryImage returns the first image, which the storefront shows as the cover.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// InStock reports whether qty units can be sold. A nil stock means unlimited.
func (p *Product) InStock(qty int) bool {
	return p.Stock == nil || *p.Stock >= qty
}

// SoldByWeight reports whether the product declares kg order bounds.
func (p *Product) SoldByWeight() bool {
	return p.MinOrder.Valid || p.MaxOrder.Valid
}

// AcceptsWeight checks kg against the product's min/max order bounds.
func (p *Product) AcceptsWeight(kg decimal.Decimal) bool {
	if p.MinOrder.Valid && kg.LessThan(p.MinOrder.Decimal) {
		return false
	}
	if p.MaxOrder.Valid && kg.GreaterThan(p.MaxOrder.Decimal) {
		return false
	}
	return true
}

// AvailableOn reports whether the product can be delivered on day.
// Bounds are inclusive and compared by calendar date.
func (p *Product) AvailableOn(day time.Time) bool {
	d := truncateDay(day)
	if p.AvailableFrom != nil && d.Before(truncateDay(*p.AvailableFrom)) {
		return false
	}
	if p.AvailableTo != nil && d.After(truncateDay(*p.AvailableTo)) {
		return false
	}
	return true
}

// DeliversTo checks pincode against the product's own list, falling back to
// the store-wide defaults when the product list is empty.
func (p *Product) DeliversTo(pincode string, defaults []string) bool {
	if len(p.DeliveryPincodes) > 0 {
		return slices.Contains(p.DeliveryPincodes, pincode)
	}
	return slices.Contains(defaults, pincode)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
