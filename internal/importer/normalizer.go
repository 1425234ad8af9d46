package importer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/models"
)

// Defaults fills fields a row leaves empty. It comes from the store settings
// of the import request.
type Defaults struct {
	Currency models.Currency
}

// issue is a problem with one product field found while normalizing.
type issue struct {
	field   string
	message string
}

// Normalize converts a raw row to a product. Values that cannot be coerced
// are reported as messages rather than replaced by zero values.
func Normalize(row RawRow, d Defaults) (models.Product, []string) {
	p, issues := normalize(sourceOf(row), d)
	msgs := make([]string, len(issues))
	for i, is := range issues {
		msgs[i] = is.message
	}
	return p, msgs
}

func normalize(src source, d Defaults) (models.Product, []issue) {
	n := &normalizer{src: src}

	p := models.Product{
		Name:        n.text(colName),
		Description: n.text(colDescription),
		Category:    n.text(colCategory),
		IsActive:    true,
	}

	if price, ok := n.decimal(colBasePrice); ok {
		p.BasePrice = price
	} else if !n.failed(colBasePrice) {
		n.add(colBasePrice, "%s is required", src.label(colBasePrice))
	}

	p.Currency = d.Currency
	if cur := n.text(colCurrency); cur != "" {
		p.Currency = models.Currency(strings.ToUpper(cur))
	}
	if p.Currency == "" {
		p.Currency = models.CurrencyINR
	}

	if v, ok := n.integer(colDiscount); ok {
		p.Discount = v
	}
	if v, ok := n.integer(colStock); ok {
		p.Stock = &v
	}
	p.Featured = n.boolean(colFeatured)

	p.Tags = n.list(colTags, SplitList)
	p.DeliveryPincodes = n.list(colDeliveryPincodes, SplitList)
	p.SEOKeywords = n.list(colSEOKeywords, SplitList)
	p.Details = n.list(colDetails, SplitFirstDelimiter)

	if v, ok := n.decimal(colMinOrder); ok {
		p.MinOrder = decimal.NewNullDecimal(v)
	}
	if v, ok := n.decimal(colMaxOrder); ok {
		p.MaxOrder = decimal.NewNullDecimal(v)
	}
	p.AvailableFrom = n.date(colAvailableFrom)
	p.AvailableTo = n.date(colAvailableTo)

	// The Image URL column is the cover; Images adds the gallery.
	images := n.list(colImages, SplitFirstDelimiter)
	if primary := n.text(colImageURL); primary != "" {
		images = clean(append([]string{primary}, images...))
	}
	p.Images = images

	return p, n.issues
}

// Whole-number columns are INTEGER in Postgres.
var (
	minInteger = decimal.NewFromInt(math.MinInt32)
	maxInteger = decimal.NewFromInt(math.MaxInt32)
)

type normalizer struct {
	src    source
	issues []issue
}

func (n *normalizer) add(c column, format string, args ...any) {
	n.issues = append(n.issues, issue{field: c.json, message: fmt.Sprintf(format, args...)})
}

func (n *normalizer) failed(c column) bool {
	for _, is := range n.issues {
		if is.field == c.json {
			return true
		}
	}
	return false
}

func (n *normalizer) raw(c column) (string, bool) {
	s, ok, err := n.src.scalar(c)
	if err != nil {
		n.add(c, "%s", err.Error())
		return "", false
	}
	return s, ok
}

func (n *normalizer) text(c column) string {
	s, _ := n.raw(c)
	return s
}

func (n *normalizer) decimal(c column) (decimal.Decimal, bool) {
	s, ok := n.raw(c)
	if !ok {
		return decimal.Decimal{}, false
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		n.add(c, "%s must be a number, got %q", n.src.label(c), s)
		return decimal.Decimal{}, false
	}
	return v, true
}

func (n *normalizer) integer(c column) (int, bool) {
	v, ok := n.decimal(c)
	if !ok {
		return 0, false
	}
	if !v.IsInteger() {
		n.add(c, "%s must be a whole number, got %s", n.src.label(c), v.String())
		return 0, false
	}
	if v.LessThan(minInteger) || v.GreaterThan(maxInteger) {
		n.add(c, "%s is out of range, got %s", n.src.label(c), v.String())
		return 0, false
	}
	return int(v.IntPart()), true
}

func (n *normalizer) boolean(c column) bool {
	s, ok := n.raw(c)
	return ok && strings.EqualFold(s, "true")
}

func (n *normalizer) list(c column, split func(string) []string) []string {
	items, err := n.src.list(c, split)
	if err != nil {
		n.add(c, "%s", err.Error())
		return []string{}
	}
	return items
}

var dateLayouts = []string{"2006-01-02", time.RFC3339}

func (n *normalizer) date(c column) *time.Time {
	s, ok := n.raw(c)
	if !ok {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			day := truncateDay(t)
			return &day
		}
	}
	n.add(c, "%s must be a date (YYYY-MM-DD), got %q", n.src.label(c), s)
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
