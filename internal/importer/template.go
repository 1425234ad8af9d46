package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"
)

type sampleProduct struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Category         string   `json:"category"`
	BasePrice        string   `json:"-"`
	Currency         string   `json:"currency"`
	Discount         int      `json:"discount"`
	Stock            *int     `json:"stock,omitempty"`
	Featured         bool     `json:"featured"`
	Tags             []string `json:"tags"`
	DeliveryPincodes []string `json:"deliveryPincodes"`
	SEOKeywords      []string `json:"seoKeywords"`
	MinOrder         string   `json:"-"`
	MaxOrder         string   `json:"-"`
	ImageURL         string   `json:"imageUrl"`
	Images           []string `json:"images"`
	Details          []string `json:"details"`
}

func intPtr(i int) *int { return &i }

var samples = []sampleProduct{
	{
		Name:             "Chocolate Truffle Cake",
		Description:      "Moist chocolate sponge layered with dark chocolate ganache.",
		Category:         "Cakes",
		BasePrice:        "899",
		Currency:         "INR",
		Discount:         10,
		Stock:            intPtr(20),
		Featured:         true,
		Tags:             []string{"chocolate", "birthday", "bestseller"},
		DeliveryPincodes: []string{"560001", "560034"},
		SEOKeywords:      []string{"chocolate cake", "truffle cake"},
		MinOrder:         "0.5",
		MaxOrder:         "5",
		ImageURL:         "https://images.example.com/products/chocolate-truffle.jpg",
		Images: []string{
			"https://images.example.com/products/chocolate-truffle.jpg",
			"https://images.example.com/products/chocolate-truffle-slice.jpg",
		},
		Details: []string{"Belgian dark chocolate", "Serves 8 to 10 per kg", "Eggless on request"},
	},
	{
		Name:             "Butter Croissant (Pack of 4)",
		Description:      "Flaky all-butter croissants baked fresh every morning.",
		Category:         "Breads & Pastries",
		BasePrice:        "240",
		Currency:         "INR",
		Tags:             []string{"breakfast", "french"},
		DeliveryPincodes: []string{},
		SEOKeywords:      []string{"croissant"},
		ImageURL:         "https://images.example.com/products/butter-croissant.jpg",
		Images:           []string{"https://images.example.com/products/butter-croissant.jpg"},
		Details:          []string{"Made with cultured butter"},
	},
}

// Template writes a two-product sample import file in the given format.
func Template(format Format, w io.Writer) error {
	switch format {
	case FormatCSV:
		return csvTemplate(w)
	case FormatJSON:
		return jsonTemplate(w)
	case FormatXLSX:
		return xlsxTemplate(w)
	}
	return formatErr("unsupported import format %q", format)
}

func (s sampleProduct) cells() []string {
	stock := ""
	if s.Stock != nil {
		stock = itoa(*s.Stock)
	}
	featured := "false"
	if s.Featured {
		featured = "true"
	}
	return []string{
		s.Name, s.Description, s.Category, s.BasePrice, s.Currency, itoa(s.Discount),
		stock, featured,
		strings.Join(s.Tags, ","), strings.Join(s.DeliveryPincodes, ","), strings.Join(s.SEOKeywords, ","),
		s.MinOrder, s.MaxOrder, s.ImageURL,
		strings.Join(s.Images, ";"), strings.Join(s.Details, ";"),
	}
}

func csvTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(s.cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalJSON writes the decimal fields as JSON numbers and leaves out
// empty kg bounds.
func (s sampleProduct) MarshalJSON() ([]byte, error) {
	type plain sampleProduct
	out := struct {
		plain
		BasePrice json.Number  `json:"basePrice"`
		MinOrder  *json.Number `json:"minOrder,omitempty"`
		MaxOrder  *json.Number `json:"maxOrder,omitempty"`
	}{plain: plain(s), BasePrice: json.Number(s.BasePrice)}
	if s.MinOrder != "" {
		n := json.Number(s.MinOrder)
		out.MinOrder = &n
	}
	if s.MaxOrder != "" {
		n := json.Number(s.MaxOrder)
		out.MaxOrder = &n
	}
	return json.Marshal(out)
}

func jsonTemplate(w io.Writer) error {
	data, err := json.MarshalIndent(samples, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

const templateSheet = "Products"

func xlsxTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return err
	}
	rows := [][]string{Header()}
	for _, s := range samples {
		rows = append(rows, s.cells())
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(templateSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
