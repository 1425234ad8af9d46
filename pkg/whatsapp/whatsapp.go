// Package whatsapp builds the prefilled wa.me links customers use to send
// their order to the bakery.
package whatsapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const baseURL = "https://wa.me/"

// Item is one order line as shown in the message.
type Item struct {
	Name      string
	Quantity  int
	WeightKg  decimal.NullDecimal
	LineTotal decimal.Decimal
	Message   string
}

// OrderMessage carries everything the checkout message shows.
type OrderMessage struct {
	StoreName      string
	OrderRef       string
	CustomerName   string
	Phone          string
	Items          []Item
	CurrencySymbol string
	Subtotal       decimal.Decimal
	Discount       decimal.Decimal
	PromoCode      string
	DeliveryFee    decimal.Decimal
	PackagingFee   decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	Pickup         bool
	DeliveryDate   time.Time
	DeliverySlot   string
	Address        string
	Pincode        string
	PaymentLabel   string
	Notes          string
}

// ComposeOrderMessage renders the order summary sent over WhatsApp.
func ComposeOrderMessage(m OrderMessage) string {
	money := func(v decimal.Decimal) string { return m.CurrencySymbol + v.StringFixed(2) }

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! I would like to place an order.\n\n", m.StoreName)
	fmt.Fprintf(&b, "Order Ref: %s\n", m.OrderRef)
	fmt.Fprintf(&b, "Name: %s\n", m.CustomerName)
	fmt.Fprintf(&b, "Phone: %s\n\n", m.Phone)

	b.WriteString("Items:\n")
	for i, it := range m.Items {
		fmt.Fprintf(&b, "%d. %s x%d", i+1, it.Name, it.Quantity)
		if it.WeightKg.Valid {
			fmt.Fprintf(&b, " (%s kg)", it.WeightKg.Decimal.String())
		}
		fmt.Fprintf(&b, " - %s\n", money(it.LineTotal))
		if it.Message != "" {
			fmt.Fprintf(&b, "   Message: %s\n", it.Message)
		}
	}

	fmt.Fprintf(&b, "\nSubtotal: %s\n", money(m.Subtotal))
	if m.Discount.IsPositive() {
		if m.PromoCode != "" {
			fmt.Fprintf(&b, "Discount (%s): -%s\n", m.PromoCode, money(m.Discount))
		} else {
			fmt.Fprintf(&b, "Discount: -%s\n", money(m.Discount))
		}
	}
	if !m.Pickup {
		if m.DeliveryFee.IsZero() {
			b.WriteString("Delivery: FREE\n")
		} else {
			fmt.Fprintf(&b, "Delivery: %s\n", money(m.DeliveryFee))
		}
	}
	if m.PackagingFee.IsPositive() {
		fmt.Fprintf(&b, "Packaging: %s\n", money(m.PackagingFee))
	}
	if m.Tax.IsPositive() {
		fmt.Fprintf(&b, "Tax: %s\n", money(m.Tax))
	}
	fmt.Fprintf(&b, "Total: %s\n\n", money(m.Total))

	window := m.DeliveryDate.Format("Mon, 02 Jan 2006")
	if m.DeliverySlot != "" {
		window += ", " + m.DeliverySlot
	}
	if m.Pickup {
		fmt.Fprintf(&b, "Pickup: %s\n", window)
	} else {
		fmt.Fprintf(&b, "Delivery: %s\n", window)
		fmt.Fprintf(&b, "Address: %s", m.Address)
		if m.Pincode != "" {
			fmt.Fprintf(&b, " - %s", m.Pincode)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Payment: %s", m.PaymentLabel)
	if m.Notes != "" {
		fmt.Fprintf(&b, "\nNotes: %s", m.Notes)
	}
	return b.String()
}

// BuildURL returns the wa.me link for number with text prefilled. Non-digit
// characters in number are dropped; an empty number lets the customer pick
// the chat.
func BuildURL(number, text string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return baseURL + digits.String() + "?text=" + EncodeURIComponent(text)
}

const upperhex = "0123456789ABCDEF"

// EncodeURIComponent percent-encodes s the way browsers do for URI
// components: only letters, digits and - _ . ! ~ * ' ( ) are kept.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
