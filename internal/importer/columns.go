package importer

import "strings"

// column ties a product field to its spreadsheet header and JSON property.
type column struct {
	header string
	json   string
}

var (
	colName             = column{"Name", "name"}
	colDescription      = column{"Description", "description"}
	colCategory         = column{"Category", "category"}
	colBasePrice        = column{"Base Price", "basePrice"}
	colCurrency         = column{"Currency", "currency"}
	colDiscount         = column{"Discount", "discount"}
	colStock            = column{"Stock", "stock"}
	colFeatured         = column{"Featured", "featured"}
	colTags             = column{"Tags", "tags"}
	colDeliveryPincodes = column{"Delivery Pincodes", "deliveryPincodes"}
	colSEOKeywords      = column{"SEO Keywords", "seoKeywords"}
	colMinOrder         = column{"Min Order", "minOrder"}
	colMaxOrder         = column{"Max Order", "maxOrder"}
	colImageURL         = column{"Image URL", "imageUrl"}
	colImages           = column{"Images", "images"}
	colDetails          = column{"Details", "details"}
	colAvailableFrom    = column{"Available From", "availableFrom"}
	colAvailableTo      = column{"Available To", "availableTo"}
)

// templateColumns is the header of the CSV and spreadsheet templates, in order.
var templateColumns = []column{
	colName, colDescription, colCategory, colBasePrice, colCurrency, colDiscount,
	colStock, colFeatured, colTags, colDeliveryPincodes, colSEOKeywords,
	colMinOrder, colMaxOrder, colImageURL, colImages, colDetails,
}

// byField finds a column by its product JSON name.
var byField = func() map[string]column {
	m := map[string]column{}
	for _, c := range append(templateColumns, colAvailableFrom, colAvailableTo) {
		m[c.json] = c
	}
	return m
}()

// Header returns the template header names in order.
func Header() []string {
	out := make([]string, len(templateColumns))
	for i, c := range templateColumns {
		out[i] = c.header
	}
	return out
}

// fieldKey folds "Base Price", "basePrice" and "base_price" to one key.
func fieldKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c column) key() string { return fieldKey(c.json) }
