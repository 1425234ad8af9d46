package models

import (
	"database/sql/driver"
	"errors"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// StoreSettings are the admin-editable storefront parameters. They are
// stored as a single JSONB document and passed explicitly into pricing.
type StoreSettings struct {
	StoreName         string          `json:"storeName" validate:"required"`
	Currency          Currency        `json:"currency" validate:"oneof=INR CAD"`
	TaxRate           decimal.Decimal `json:"taxRate" validate:"gte=0"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee" validate:"gte=0"`
	PackagingFee      decimal.Decimal `json:"packagingFee" validate:"gte=0"`
	FreeDeliveryAbove decimal.Decimal `json:"freeDeliveryAbove" validate:"gte=0"`
	WhatsAppNumber    string          `json:"whatsappNumber"`
	DefaultPincodes   []string        `json:"defaultPincodes"`
	DeliverySlots     []string        `json:"deliverySlots"`
	Announcement      string          `json:"announcement,omitempty"`
}

// Value implements driver.Valuer.
func (s StoreSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *StoreSettings) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return errors.New("store settings: unsupported column type")
}
