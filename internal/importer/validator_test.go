package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_api/internal/models"
)

var inr = Defaults{Currency: models.CurrencyINR}

const validHeader = "Name,Description,Category,Base Price,Image URL\n"

func mustParseCSV(t *testing.T, body string) []RawRow {
	t.Helper()
	rows, err := Parse(FormatCSV, strings.NewReader(body))
	require.NoError(t, err)
	return rows
}

func TestValidate_MissingImageURL(t *testing.T) {
	rows := mustParseCSV(t, validHeader+
		"Rum Cake,Dark rum soaked fruit cake,Cakes,650,https://cdn.example.com/rum.jpg\n"+
		"Brownie,Fudgy walnut brownie,Brownies,120,\n")

	valid, errs := Validate(rows, inr)

	require.Len(t, valid, 1)
	assert.Equal(t, "Rum Cake", valid[0].Name)
	require.Len(t, errs, 1)
	assert.Equal(t, "Row 3: Image URL is required", errs[0])
}

func TestValidate_GarbledPriceIsRejected(t *testing.T) {
	prices := []string{"abc", "12,50", "NaN", "₹450", "--1"}
	for _, price := range prices {
		t.Run(price, func(t *testing.T) {
			rows := mustParseCSV(t, validHeader+
				"Rum Cake,Fruit cake,Cakes,\""+price+"\",https://cdn.example.com/rum.jpg\n")

			valid, errs := Validate(rows, inr)

			assert.Empty(t, valid)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], "Row 2: Base Price must be a number")
		})
	}
}

func TestValidate_RowRules(t *testing.T) {
	header := "Name,Description,Category,Base Price,Currency,Discount,Stock,Min Order,Max Order,Image URL,Images,Available From,Available To\n"
	img := "https://cdn.example.com/a.jpg"

	tests := []struct {
		name string
		row  string
		want string
	}{
		{"zero_price", "A,B,C,0,,,,,," + img + ",,,", "Base Price must be greater than or equal to 0.01"},
		{"price_rounds_to_zero", "A,B,C,0.004,,,,,," + img + ",,,", "Base Price must be greater than or equal to 0.01"},
		{"price_three_decimals", "A,B,C,1.234,,,,,," + img + ",,,", "Base Price must have at most 2 decimal places"},
		{"price_overflow", "A,B,C,99999999999,,,,,," + img + ",,,", "Base Price must be less than or equal to 9999999999.99"},
		{"discount_wraps_int64", "A,B,C,10,,18446744073709551666,,,," + img + ",,,", "Discount is out of range"},
		{"stock_overflow", "A,B,C,10,,,3000000000,,," + img + ",,,", "Stock is out of range"},
		{"max_order_overflow", "A,B,C,10,,,,,1000000," + img + ",,,", "Max Order must be less than or equal to 999999.99"},
		{"min_order_three_decimals", "A,B,C,10,,,,0.125,," + img + ",,,", "Min Order must have at most 2 decimal places"},
		{"missing_price", "A,B,C,,,,,,," + img + ",,,", "Base Price is required"},
		{"discount_over_100", "A,B,C,10,,150,,,," + img + ",,,", "Discount must be at most 100"},
		{"negative_discount", "A,B,C,10,,-5,,,," + img + ",,,", "Discount must be at least 0"},
		{"fractional_discount", "A,B,C,10,,2.5,,,," + img + ",,,", "Discount must be a whole number"},
		{"negative_stock", "A,B,C,10,,,-1,,," + img + ",,,", "Stock must be at least 0"},
		{"negative_min_order", "A,B,C,10,,,,-1,," + img + ",,,", "Min Order must be greater than or equal to 0"},
		{"min_above_max", "A,B,C,10,,,,3,1," + img + ",,,", "Min Order must not exceed Max Order"},
		{"bad_currency", "A,B,C,10,USD,,,,," + img + ",,,", "Currency must be one of: INR CAD"},
		{"ftp_image", "A,B,C,10,,,,,,ftp://cdn/a.jpg,,,", "Image URL must be an http(s) URL"},
		{"bad_gallery", "A,B,C,10,,,,,," + img + ",not-a-url,,", "Images must contain only http(s) URLs"},
		{"bad_date", "A,B,C,10,,,,,," + img + ",,soon,", "Available From must be a date"},
		{"window_reversed", "A,B,C,10,,,,,," + img + ",,2026-12-31,2026-12-01", "Available From must not be after Available To"},
		{"missing_name", ",B,C,10,,,,,," + img + ",,,", "Name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := mustParseCSV(t, header+tt.row+"\n")
			valid, errs := Validate(rows, inr)
			assert.Empty(t, valid)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestValidate_CollectsAllProblemsOfARow(t *testing.T) {
	rows := mustParseCSV(t, validHeader+",,,abc,\n")

	_, errs := Validate(rows, inr)

	require.Len(t, errs, 1)
	for _, want := range []string{"Name is required", "Description is required", "Category is required", "Base Price must be a number", "Image URL is required"} {
		assert.Contains(t, errs[0], want)
	}
}

func TestNormalize_Coercion(t *testing.T) {
	header := "Name,Description,Category,Base Price,Currency,Discount,Stock,Featured,Tags,Min Order,Image URL,Images,Details\n"
	rows := mustParseCSV(t, header+
		`Plum Cake,Fruit cake,Cakes,450.50,cad,15,3,TRUE,"xmas| rum ;xmas",0.5,https://a/1.jpg,"https://a/1.jpg, https://a/2.jpg","Serves 6, 8;Contains nuts"`+"\n")

	p, msgs := Normalize(rows[0], inr)

	require.Empty(t, msgs)
	assert.True(t, decimal.RequireFromString("450.50").Equal(p.BasePrice))
	assert.Equal(t, models.CurrencyCAD, p.Currency)
	assert.Equal(t, 15, p.Discount)
	require.NotNil(t, p.Stock)
	assert.Equal(t, 3, *p.Stock)
	assert.True(t, p.Featured)
	assert.Equal(t, []string{"xmas", "rum"}, []string(p.Tags))
	assert.True(t, p.MinOrder.Valid)
	assert.False(t, p.MaxOrder.Valid)
	assert.Equal(t, []string{"https://a/1.jpg", "https://a/2.jpg"}, []string(p.Images))
	assert.Equal(t, []string{"Serves 6, 8", "Contains nuts"}, []string(p.Details))
	assert.Equal(t, []string{}, []string(p.DeliveryPincodes))
	assert.True(t, p.IsActive)
}

func TestNormalize_FeaturedOnlyTrue(t *testing.T) {
	for value, want := range map[string]bool{"true": true, "True": true, "yes": false, "1": false, "": false} {
		rows := mustParseCSV(t, "Name,Featured\nA,"+value+"\n")
		p, _ := Normalize(rows[0], inr)
		assert.Equal(t, want, p.Featured, value)
	}
}

func TestNormalize_DefaultCurrency(t *testing.T) {
	rows := mustParseCSV(t, "Name\nA\n")
	p, _ := Normalize(rows[0], Defaults{Currency: models.CurrencyCAD})
	assert.Equal(t, models.CurrencyCAD, p.Currency)
}

func TestNormalize_JSONListsMustBeArrays(t *testing.T) {
	rows, err := Parse(FormatJSON, strings.NewReader(`[{
		"name":"A","description":"B","category":"C","basePrice":"10",
		"imageUrl":"https://a/1.jpg","tags":"a,b","deliveryPincodes":[560001,"560002"]
	}]`))
	require.NoError(t, err)

	p, problems := ValidateRow(rows[0], inr)

	require.Len(t, problems, 1)
	assert.Equal(t, "tags must be an array", problems[0])
	assert.Equal(t, []string{"560001", "560002"}, []string(p.DeliveryPincodes))
	assert.True(t, decimal.NewFromInt(10).Equal(p.BasePrice))
}

func TestValidate_JSONRowLabels(t *testing.T) {
	rows, err := Parse(FormatJSON, strings.NewReader(`[
		{"name":"A","description":"B","category":"C","basePrice":10,"images":["https://a/1.jpg"]},
		{"name":"A","description":"B","category":"C","basePrice":"ten","images":["https://a/1.jpg"]}
	]`))
	require.NoError(t, err)

	valid, errs := Validate(rows, inr)

	require.Len(t, valid, 1)
	assert.Equal(t, "https://a/1.jpg", valid[0].PrimaryImage())
	require.Len(t, errs, 1)
	assert.Equal(t, `Row 2: basePrice must be a number, got "ten"`, errs[0])
}

func TestValidate_OutOfRangeRowDoesNotSinkTheBatch(t *testing.T) {
	header := "Name,Description,Category,Base Price,Discount,Stock,Image URL\n"
	rows := mustParseCSV(t, header+
		"Rum Cake,Fruit cake,Cakes,650,10,5,https://cdn.example.com/rum.jpg\n"+
		"Brownie,Walnut brownie,Brownies,120,18446744073709551666,,https://cdn.example.com/b.jpg\n"+
		"Bun,Soft bun,Breads,30,,3000000000,https://cdn.example.com/bun.jpg\n")

	valid, errs := Validate(rows, inr)

	require.Len(t, valid, 1)
	assert.Equal(t, 10, valid[0].Discount)
	require.Len(t, errs, 2)
	assert.True(t, strings.HasPrefix(errs[0], "Row 3: Discount is out of range"), errs[0])
	assert.True(t, strings.HasPrefix(errs[1], "Row 4: Stock is out of range"), errs[1])
}
