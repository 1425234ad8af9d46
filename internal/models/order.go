package models

import (
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

func (s OrderStatus) rank() int {
	switch s {
	case OrderPending:
		return 0
	case OrderProcessing:
		return 1
	case OrderCompleted:
		return 2
	}
	return -1
}

// CanTransitionTo reports whether an order in status s may move to next.
// Orders only move forward, or to cancelled from any non-terminal status.
// Setting the current status again is allowed and treated as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	return next.rank() > s.rank()
}

// Tracking step keys, in the order a customer sees them.
const (
	StepPlaced         = "placed"
	StepConfirmed      = "confirmed"
	StepBaking         = "baking"
	StepOutForDelivery = "out_for_delivery"
	StepDelivered      = "delivered"
)

// TrackingStepOrder lists every tracking step in display order.
var TrackingStepOrder = []string{StepPlaced, StepConfirmed, StepBaking, StepOutForDelivery, StepDelivered}

// TrackingSteps maps a step key to whether it has been reached.
type TrackingSteps map[string]bool

// NewTrackingSteps returns the steps of a freshly placed order.
func NewTrackingSteps() TrackingSteps {
	steps := make(TrackingSteps, len(TrackingStepOrder))
	for _, k := range TrackingStepOrder {
		steps[k] = false
	}
	steps[StepPlaced] = true
	return steps
}

// IsStep reports whether key names a known tracking step.
func IsStep(key string) bool {
	for _, k := range TrackingStepOrder {
		if k == key {
			return true
		}
	}
	return false
}

// Advance marks the steps implied by status as reached. Steps already set are
// never cleared, so a manual override survives later status changes.
func (t TrackingSteps) Advance(status OrderStatus) TrackingSteps {
	out := make(TrackingSteps, len(TrackingStepOrder))
	for _, k := range TrackingStepOrder {
		out[k] = t[k]
	}
	var reached []string
	switch status {
	case OrderPending:
		reached = []string{StepPlaced}
	case OrderProcessing:
		reached = []string{StepPlaced, StepConfirmed, StepBaking}
	case OrderCompleted:
		reached = TrackingStepOrder
	}
	for _, k := range reached {
		out[k] = true
	}
	return out
}

// Value implements driver.Valuer for the JSONB column.
func (t TrackingSteps) Value() (driver.Value, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(t)
}

// Scan implements sql.Scanner for the JSONB column.
func (t *TrackingSteps) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TrackingSteps{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("tracking steps: unsupported column type")
	}
	steps := TrackingSteps{}
	if err := json.Unmarshal(raw, &steps); err != nil {
		return err
	}
	*t = steps
	return nil
}

type DeliveryMethod string

const (
	DeliveryHome   DeliveryMethod = "delivery"
	DeliveryPickup DeliveryMethod = "pickup"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentUPI    PaymentMethod = "upi"
	PaymentOnline PaymentMethod = "online"
)

// Customer is the contact and address block captured at checkout.
type Customer struct {
	Name    string `db:"customer_name" json:"name" validate:"required"`
	Phone   string `db:"customer_phone" json:"phone" validate:"required,min=7,max=20"`
	Email   string `db:"customer_email" json:"email" validate:"omitempty,email"`
	Address string `db:"address" json:"address"`
	City    string `db:"city" json:"city"`
	Pincode string `db:"pincode" json:"pincode"`
}

// DeliverySchedule is the requested delivery (or pickup) window.
type DeliverySchedule struct {
	Method DeliveryMethod `db:"delivery_method" json:"method" validate:"oneof=delivery pickup"`
	Date   time.Time      `db:"delivery_date" json:"date" validate:"required"`
	Slot   string         `db:"delivery_slot" json:"slot"`
}

// Order is a submitted cart. Item prices are snapshots taken at submission
// and never follow later product edits.
type Order struct {
	ID               string        `db:"id" json:"id"`
	OrderRef         string        `db:"order_ref" json:"orderRef"`
	UserID           *string       `db:"user_id" json:"userId,omitempty"`
	Customer         `json:"customer"`
	DeliverySchedule `json:"schedule"`
	PaymentMethod    PaymentMethod   `db:"payment_method" json:"paymentMethod"`
	PromoCode        *string         `db:"promo_code" json:"promoCode,omitempty"`
	Currency         Currency        `db:"currency" json:"currency"`
	Subtotal         decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount         decimal.Decimal `db:"discount" json:"discount"`
	Tax              decimal.Decimal `db:"tax" json:"tax"`
	DeliveryFee      decimal.Decimal `db:"delivery_fee" json:"deliveryFee"`
	PackagingFee     decimal.Decimal `db:"packaging_fee" json:"packagingFee"`
	Total            decimal.Decimal `db:"total" json:"total"`
	Status           OrderStatus     `db:"status" json:"status"`
	TrackingSteps    TrackingSteps   `db:"tracking_steps" json:"trackingSteps"`
	Notes            string          `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updatedAt"`

	Items []OrderItem `db:"-" json:"items"`
}

// OrderItem is one cart line frozen at order time.
type OrderItem struct {
	ID        int                 `db:"id" json:"-"`
	OrderID   string              `db:"order_id" json:"-"`
	ProductID string              `db:"product_id" json:"productId"`
	Name      string              `db:"name" json:"name"`
	Image     string              `db:"image" json:"image,omitempty"`
	UnitPrice decimal.Decimal     `db:"unit_price" json:"unitPrice"`
	BasePrice decimal.Decimal     `db:"base_price" json:"basePrice"`
	Discount  int                 `db:"discount" json:"discount"`
	Quantity  int                 `db:"quantity" json:"quantity"`
	WeightKg  decimal.NullDecimal `db:"weight_kg" json:"weightKg"`
	Message   string              `db:"message" json:"message,omitempty"`
	LineTotal decimal.Decimal     `db:"line_total" json:"lineTotal"`
}
