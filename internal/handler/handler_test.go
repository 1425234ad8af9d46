package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_api/internal/config"
	"github.com/GTDGit/bakery_api/internal/importer"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/pricing"
	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/service"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"not_found", utils.ErrOrderNotFound, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found"},
		{"wrapped_detail", fmt.Errorf("%w: Truffle Cake", utils.ErrOutOfStock), http.StatusConflict, "OUT_OF_STOCK", "Not enough stock: Truffle Cake"},
		{"payment", utils.ErrPaymentUnavailable, http.StatusUnprocessableEntity, "PAYMENT_UNAVAILABLE", ""},
		{"promo", pricing.ErrPromoExpired, http.StatusBadRequest, "PROMO_INVALID", "Promo code is not valid: expired"},
		{"validation", &validation.Error{Fields: []validation.FieldError{{Field: "phone", Tag: "required", Message: "phone is required"}}}, http.StatusBadRequest, "VALIDATION_ERROR", ""},
		{"import_format", &importer.Error{Kind: importer.InvalidFormat, Message: "expected a JSON array"}, http.StatusBadRequest, "INVALID_FORMAT", "expected a JSON array"},
		{"import_commit", &importer.Error{Kind: importer.CommitFailure, Message: "import failed, no products were saved", Err: errors.New("deadlock")}, http.StatusInternalServerError, "COMMIT_FAILURE", "import failed, no products were saved"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR", "Something failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err, "Something failed")

			assert.Equal(t, tt.status, w.Code)
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
		})
	}
}

type staticSettings struct{}

func (staticSettings) Get(context.Context) (models.StoreSettings, error) {
	return models.StoreSettings{StoreName: "Crumbs", Currency: models.CurrencyINR, DefaultPincodes: []string{"560001"}}, nil
}

type stubBatchWriter struct {
	saved []models.Product
}

func (s *stubBatchWriter) CreateBatch(_ context.Context, products []models.Product, _ *models.ImportJob, _ *models.OutboxEvent) error {
	s.saved = append(s.saved, products...)
	return nil
}

type stubNotifier struct{ imported int }

func (n *stubNotifier) NotifyOrderCreated(*models.Order)                {}
func (n *stubNotifier) NotifyOrderStatusChanged(*models.Order)          {}
func (n *stubNotifier) NotifyProductsImported(_ string, count int)      { n.imported += count }
func (n *stubNotifier) NotifyCustomRequestCreated(*models.CustomRequest) {}

type stubDeliverer struct{}

func (stubDeliverer) DeliverByID(context.Context, string) error { return nil }

const importCSV = `Name,Description,Category,Base Price,Currency,Discount,Stock,Featured,Tags,Delivery Pincodes,SEO Keywords,Min Order,Max Order,Image URL,Images,Details
Truffle Cake,Dark chocolate layers,Cakes,650,INR,10,5,true,chocolate,560001,truffle,,,https://cdn.example.com/truffle.jpg,,Eggless
Plain Bun,Soft bun,Breads,30,INR,0,,false,,,,,,,,
`

func multipartBody(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func importRouter(writer *stubBatchWriter) *gin.Engine {
	svc := service.NewImportService(writer, stubDeliverer{}, staticSettings{}, &stubNotifier{}, config.ImportConfig{MaxRows: 100})
	h := NewImportHandler(svc, 1<<20)
	r := gin.New()
	r.POST("/import", h.ImportProducts)
	r.GET("/template", h.DownloadTemplate)
	return r
}

func TestImportHandler_Commit(t *testing.T) {
	writer := &stubBatchWriter{}
	body, ct := multipartBody(t, "products.csv", importCSV, nil)
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	importRouter(writer).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res service.ImportResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &res))
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Rejected)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Row 3: "), res.Errors[0])
	assert.Len(t, writer.saved, 1)
}

func TestImportHandler_DryRunWithFormatOverride(t *testing.T) {
	writer := &stubBatchWriter{}
	body, ct := multipartBody(t, "export.txt", importCSV, map[string]string{"format": "csv", "dryRun": "true"})
	req := httptest.NewRequest(http.MethodPost, "/import", body)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	importRouter(writer).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, writer.saved)
}

func TestImportHandler_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		code     string
	}{
		{"unknown_extension", "products.txt", importCSV, http.StatusBadRequest, "INVALID_FORMAT"},
		{"json_object", "products.json", `{"name":"x"}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"no_valid_rows", "products.json", `[{"name":"x"}]`, http.StatusUnprocessableEntity, "NO_VALID_ROWS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.filename, tt.content, nil)
			req := httptest.NewRequest(http.MethodPost, "/import", body)
			req.Header.Set("Content-Type", ct)

			w := httptest.NewRecorder()
			importRouter(&stubBatchWriter{}).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			env := decode(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/import", strings.NewReader(""))
	w := httptest.NewRecorder()
	importRouter(&stubBatchWriter{}).ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandler_Template(t *testing.T) {
	w := httptest.NewRecorder()
	importRouter(&stubBatchWriter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/template?format=csv", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products-template.csv")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Name,"), w.Body.String())

	w = httptest.NewRecorder()
	importRouter(&stubBatchWriter{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/template?format=pdf", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderHandler_RequestChecks(t *testing.T) {
	svc := service.NewOrderService(nil, nil, nil, nil, staticSettings{}, nil, nil)
	h := NewOrderHandler(svc)
	r := gin.New()
	r.POST("/orders/quote", h.Quote)
	r.GET("/orders/:ref", h.Track)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/quote", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_CART", decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders/quote", strings.NewReader(`{`)))
	assert.Equal(t, "INVALID_REQUEST", decode(t, w).Error.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/ORD-20261016-ABC123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type checkoutSettings struct{}

func (checkoutSettings) Get(context.Context) (models.StoreSettings, error) {
	return models.StoreSettings{
		StoreName:       "Crumbs",
		Currency:        models.CurrencyINR,
		WhatsAppNumber:  "+91 98000 00000",
		DefaultPincodes: []string{"560001"},
	}, nil
}

type memOrders struct{ created []*models.Order }

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.created = append(m.created, o)
	return nil
}
func (m *memOrders) GetByID(context.Context, string) (*models.Order, error) {
	return nil, utils.ErrOrderNotFound
}
func (m *memOrders) GetByRef(context.Context, string) (*models.Order, error) {
	return nil, utils.ErrOrderNotFound
}
func (m *memOrders) List(context.Context, repository.OrderFilter) ([]models.Order, int, error) {
	return nil, 0, nil
}
func (m *memOrders) ListByUser(context.Context, string, int, int) ([]models.Order, int, error) {
	return nil, 0, nil
}
func (m *memOrders) UpdateStatus(context.Context, string, models.OrderStatus, models.OrderStatus, models.TrackingSteps) error {
	return nil
}
func (m *memOrders) UpdateTracking(context.Context, string, models.TrackingSteps) error { return nil }
func (m *memOrders) CountByStatus(context.Context) (map[models.OrderStatus]int, error) {
	return map[models.OrderStatus]int{}, nil
}

type memProducts map[string]*models.Product

func (m memProducts) GetByIDs(_ context.Context, ids []string) (map[string]*models.Product, error) {
	out := make(map[string]*models.Product, len(ids))
	for _, id := range ids {
		if p, ok := m[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type noPromos struct{}

func (noPromos) GetByCode(context.Context, string) (*models.PromoCode, error) {
	return nil, utils.ErrPromoNotFound
}

type noNotifications struct{}

func (noNotifications) Create(context.Context, *models.Notification) error { return nil }

func TestOrderHandler_Submit(t *testing.T) {
	orders := &memOrders{}
	products := memProducts{"bun": {
		ID: "bun", Name: "Plain Bun", BasePrice: decimal.NewFromInt(30), Currency: models.CurrencyINR, IsActive: true,
	}}
	svc := service.NewOrderService(orders, products, noPromos{}, noNotifications{}, checkoutSettings{}, nil, nil)
	r := gin.New()
	r.POST("/orders", NewOrderHandler(svc).Submit)

	body := fmt.Sprintf(`{
		"customer": {"name": "Asha", "phone": "9876543210", "address": "12 MG Road", "city": "Bengaluru", "pincode": "560001"},
		"schedule": {"method": "delivery", "date": %q},
		"items": [{"productId": "bun", "quantity": 4}],
		"paymentMethod": "cod"
	}`, time.Now().AddDate(0, 0, 2).Format("2006-01-02"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		OrderID string `json:"orderId"`
		Order   struct {
			ID       string `json:"id"`
			OrderRef string `json:"orderRef"`
		} `json:"order"`
		WhatsAppURL string `json:"whatsappUrl"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	require.Len(t, orders.created, 1)
	assert.NotEmpty(t, data.OrderID)
	assert.Equal(t, orders.created[0].ID, data.OrderID)
	assert.Equal(t, data.Order.ID, data.OrderID)
	assert.True(t, strings.HasPrefix(data.WhatsAppURL, "https://wa.me/919800000000?text="))
}

func TestProductHandler_QueryValidation(t *testing.T) {
	h := NewProductHandler(service.NewProductService(nil, nil, staticSettings{}))
	r := gin.New()
	r.GET("/products", h.GetProducts)
	r.GET("/delivery/check", h.CheckDelivery)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products?minPrice=cheap", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/delivery/check", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/delivery/check?pincode=560001", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var check service.DeliveryCheck
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &check))
	assert.True(t, check.Deliverable)
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }
func (f fakePinger) Ping(context.Context) error        { return f.err }

func TestHealthHandler(t *testing.T) {
	r := gin.New()
	r.GET("/ok", NewHealthHandler(fakePinger{}, fakePinger{errors.New("down")}).GetHealth)
	r.GET("/bad", NewHealthHandler(fakePinger{errors.New("down")}, fakePinger{}).GetHealth)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"disconnected"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bad", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestPageParams(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantPage  int
		wantLimit int
	}{
		{"capped_limit", "page=3&limit=500", 3, maxPageLimit},
		{"garbage_falls_back", "page=-1&limit=x", 1, utils.DefaultPageLimit},
		{"absent", "", 1, utils.DefaultPageLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			page, limit := pageParams(c)

			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
