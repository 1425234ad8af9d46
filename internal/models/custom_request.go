package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CustomRequestStatus string

const (
	CustomRequestPending   CustomRequestStatus = "pending"
	CustomRequestReviewing CustomRequestStatus = "reviewing"
	CustomRequestQuoted    CustomRequestStatus = "quoted"
	CustomRequestAccepted  CustomRequestStatus = "accepted"
	CustomRequestRejected  CustomRequestStatus = "rejected"
)

func (s CustomRequestStatus) Valid() bool {
	switch s {
	case CustomRequestPending, CustomRequestReviewing, CustomRequestQuoted, CustomRequestAccepted, CustomRequestRejected:
		return true
	}
	return false
}

// CustomRequest is a bespoke cake enquiry. The bakery answers it with a quote
// outside the regular checkout.
type CustomRequest struct {
	ID              string              `db:"id" json:"id"`
	UserID          *string             `db:"user_id" json:"userId,omitempty"`
	Name            string              `db:"name" json:"name"`
	Phone           string              `db:"phone" json:"phone"`
	Email           string              `db:"email" json:"email,omitempty"`
	Occasion        string              `db:"occasion" json:"occasion,omitempty"`
	Flavor          string              `db:"flavor" json:"flavor,omitempty"`
	WeightKg        decimal.NullDecimal `db:"weight_kg" json:"weightKg"`
	DesignNotes     string              `db:"design_notes" json:"designNotes"`
	ReferenceImages pq.StringArray      `db:"reference_images" json:"referenceImages"`
	DeliveryDate    *time.Time          `db:"delivery_date" json:"deliveryDate,omitempty"`
	Pincode         string              `db:"pincode" json:"pincode,omitempty"`
	Budget          decimal.NullDecimal `db:"budget" json:"budget"`
	Status          CustomRequestStatus `db:"status" json:"status"`
	QuotedPrice     decimal.NullDecimal `db:"quoted_price" json:"quotedPrice"`
	AdminNotes      string              `db:"admin_notes" json:"adminNotes,omitempty"`
	CreatedAt       time.Time           `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time           `db:"updated_at" json:"updatedAt"`
}
