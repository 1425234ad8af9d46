package whatsapp

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeURIComponent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello world", "hello%20world"},
		{"a+b=c&d", "a%2Bb%3Dc%26d"},
		{"it's (fine)!*~", "it's%20(fine)!*~"},
		{"line\nbreak", "line%0Abreak"},
		{"₹450", "%E2%82%B9450"},
		{"#1/2?", "%231%2F2%3F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncodeURIComponent(tt.in), tt.in)
	}
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("+91 98765-43210", "Order ORD-1 total ₹450")
	assert.Equal(t, "https://wa.me/919876543210?text=Order%20ORD-1%20total%20%E2%82%B9450", got)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "Order ORD-1 total ₹450", u.Query().Get("text"))

	assert.True(t, strings.HasPrefix(BuildURL("", "hi"), "https://wa.me/?text="))
}

func TestComposeOrderMessage(t *testing.T) {
	msg := ComposeOrderMessage(OrderMessage{
		StoreName:      "Sweet Crumbs",
		OrderRef:       "SC-20261016-AB12",
		CustomerName:   "Asha",
		Phone:          "9876543210",
		CurrencySymbol: "₹",
		Items: []Item{
			{Name: "Chocolate Truffle Cake", Quantity: 1, WeightKg: decimal.NewNullDecimal(decimal.RequireFromString("1.5")), LineTotal: decimal.RequireFromString("1213.65"), Message: "Happy Birthday"},
			{Name: "Brownie", Quantity: 3, LineTotal: decimal.NewFromInt(180)},
		},
		Subtotal:     decimal.RequireFromString("1393.65"),
		Discount:     decimal.RequireFromString("139.37"),
		PromoCode:    "SWEET10",
		PackagingFee: decimal.NewFromInt(20),
		Tax:          decimal.RequireFromString("69.68"),
		Total:        decimal.RequireFromString("1343.96"),
		DeliveryDate: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		DeliverySlot: "10:00-13:00",
		Address:      "12 MG Road, Bengaluru",
		Pincode:      "560001",
		PaymentLabel: "Cash on delivery",
	})

	for _, want := range []string{
		"Order Ref: SC-20261016-AB12\n",
		"1. Chocolate Truffle Cake x1 (1.5 kg) - ₹1213.65\n   Message: Happy Birthday\n",
		"2. Brownie x3 - ₹180.00\n",
		"Discount (SWEET10): -₹139.37\n",
		"Delivery: FREE\n",
		"Total: ₹1343.96\n",
		"Delivery: Tue, 20 Oct 2026, 10:00-13:00\n",
		"Address: 12 MG Road, Bengaluru - 560001\n",
		"Payment: Cash on delivery",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestComposeOrderMessage_Pickup(t *testing.T) {
	msg := ComposeOrderMessage(OrderMessage{
		StoreName:      "Sweet Crumbs",
		CurrencySymbol: "C$",
		Pickup:         true,
		DeliveryDate:   time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		Total:          decimal.NewFromInt(12),
		PaymentLabel:   "UPI",
	})
	assert.Contains(t, msg, "Pickup: Tue, 20 Oct 2026\n")
	assert.NotContains(t, msg, "Address:")
	assert.NotContains(t, msg, "Delivery:")
	assert.Contains(t, msg, "Total: C$12.00")
}
