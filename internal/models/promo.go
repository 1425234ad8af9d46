package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PromoType string

const (
	PromoPercent PromoType = "percent"
	PromoFlat    PromoType = "flat"
)

// PromoCode is a checkout discount. A zero MaxDiscount or UsageLimit means
// no cap.
type PromoCode struct {
	Code        string          `db:"code" json:"code" validate:"required,max=32"`
	Type        PromoType       `db:"type" json:"type" validate:"oneof=percent flat"`
	Value       decimal.Decimal `db:"value" json:"value" validate:"gt=0"`
	MinOrder    decimal.Decimal `db:"min_order" json:"minOrder" validate:"gte=0"`
	MaxDiscount decimal.Decimal `db:"max_discount" json:"maxDiscount" validate:"gte=0"`
	UsageLimit  int             `db:"usage_limit" json:"usageLimit" validate:"min=0"`
	UsedCount   int             `db:"used_count" json:"usedCount"`
	ValidFrom   *time.Time      `db:"valid_from" json:"validFrom,omitempty"`
	ValidTo     *time.Time      `db:"valid_to" json:"validTo,omitempty"`
	IsActive    bool            `db:"is_active" json:"isActive"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}
