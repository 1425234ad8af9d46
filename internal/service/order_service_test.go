package service

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_api/internal/events"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/pricing"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
)

var orderNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

func storeSettings() models.StoreSettings {
	return models.StoreSettings{
		StoreName:         "Crumbs",
		Currency:          models.CurrencyINR,
		TaxRate:           decimal.NewFromInt(5),
		DeliveryFee:       decimal.NewFromInt(50),
		PackagingFee:      decimal.NewFromInt(20),
		FreeDeliveryAbove: decimal.NewFromInt(1000),
		WhatsAppNumber:    "+91 98000 00000",
		DefaultPincodes:   []string{"560001"},
		DeliverySlots:     []string{"09:00-12:00"},
	}
}

func catalog() fakeProducts {
	return fakeProducts{
		"cake": {
			ID: "cake", Name: "Truffle Cake", BasePrice: decimal.NewFromInt(500), Discount: 10,
			Currency: models.CurrencyINR, IsActive: true, Images: pq.StringArray{"https://cdn.example.com/t.jpg"},
		},
		"loaf": {
			ID: "loaf", Name: "Sourdough", BasePrice: decimal.NewFromInt(200), Currency: models.CurrencyINR,
			IsActive: true, MinOrder: decimal.NewNullDecimal(decimal.RequireFromString("0.5")),
			MaxOrder: decimal.NewNullDecimal(decimal.NewFromInt(2)),
		},
		"far": {
			ID: "far", Name: "Cupcake", BasePrice: decimal.NewFromInt(80), Currency: models.CurrencyINR,
			IsActive: true, DeliveryPincodes: pq.StringArray{"110001"},
		},
	}
}

type orderFixture struct {
	svc           *OrderService
	orders        *mockOrders
	promos        *mockPromos
	publisher     *mockPublisher
	notifier      *recordingNotifier
	notifications *recordingNotifications
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:        &mockOrders{},
		promos:        &mockPromos{},
		publisher:     &mockPublisher{},
		notifier:      &recordingNotifier{},
		notifications: &recordingNotifications{},
	}
	f.svc = NewOrderService(f.orders, catalog(), f.promos, f.notifications, fakeSettings{s: storeSettings()}, f.publisher, f.notifier)
	f.svc.now = func() time.Time { return orderNow }
	return f
}

func checkout(items ...CartItem) CheckoutInput {
	uid := "user-1"
	return CheckoutInput{
		UserID:        &uid,
		Customer:      models.Customer{Name: "Asha", Phone: "9876543210", Address: "12 MG Road", City: "Bengaluru", Pincode: "560001"},
		Schedule:      ScheduleInput{Method: models.DeliveryHome, Date: "2026-10-18", Slot: "09:00-12:00"},
		Items:         items,
		PaymentMethod: models.PaymentCOD,
	}
}

func TestOrderService_SubmitSnapshotsPricesAndBuildsWhatsAppLink(t *testing.T) {
	f := newOrderFixture()
	var saved *models.Order
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*models.Order) }).
		Return(nil)
	f.publisher.On("Publish", mock.Anything, events.TopicOrderCreated, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Submit(context.Background(), checkout(CartItem{ProductID: "cake", Quantity: 2, Message: "Happy Birthday"}))
	require.NoError(t, err)

	o := res.Order
	assert.Same(t, saved, o)
	assert.Equal(t, o.ID, res.OrderID)
	assert.NotEmpty(t, res.OrderID)
	assert.Equal(t, "900", o.Subtotal.String())
	assert.Equal(t, "45", o.Tax.String())
	assert.Equal(t, "50", o.DeliveryFee.String())
	assert.Equal(t, "20", o.PackagingFee.String())
	assert.Equal(t, "1015", o.Total.String())
	assert.True(t, o.Total.Equal(o.Subtotal.Add(o.DeliveryFee).Add(o.PackagingFee).Add(o.Tax).Sub(o.Discount)))
	assert.Equal(t, models.OrderPending, o.Status)
	assert.True(t, o.TrackingSteps[models.StepPlaced])
	assert.Regexp(t, `^ORD-20261016-[A-Z0-9]{6}$`, o.OrderRef)

	require.Len(t, o.Items, 1)
	assert.Equal(t, "450", o.Items[0].UnitPrice.String())
	assert.Equal(t, "500", o.Items[0].BasePrice.String())
	assert.Equal(t, "https://cdn.example.com/t.jpg", o.Items[0].Image)

	require.True(t, strings.HasPrefix(res.WhatsAppURL, "https://wa.me/919800000000?text="))
	text, err := url.QueryUnescape(strings.TrimPrefix(res.WhatsAppURL, "https://wa.me/919800000000?text="))
	require.NoError(t, err)
	assert.Contains(t, text, o.OrderRef)
	assert.Contains(t, text, "Truffle Cake x2")
	assert.Contains(t, text, "₹1015.00")
	assert.Contains(t, text, "09:00-12:00")

	assert.Equal(t, 1, f.notifier.ordersCreated)
	f.publisher.AssertExpectations(t)
}

func TestOrderService_QuoteFreeDeliveryAndPromo(t *testing.T) {
	f := newOrderFixture()
	f.promos.On("GetByCode", mock.Anything, "FLAT100").Return(&models.PromoCode{
		Code: "FLAT100", Type: models.PromoFlat, Value: decimal.NewFromInt(100), IsActive: true,
	}, nil)

	in := checkout(CartItem{ProductID: "cake", Quantity: 3})
	in.PromoCode = "FLAT100"
	q, err := f.svc.Quote(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "1350", q.Subtotal.String())
	assert.True(t, q.DeliveryFee.IsZero())
	assert.Equal(t, "67.5", q.Tax.String())
	assert.Equal(t, "100", q.Discount.String())
	assert.Equal(t, "1337.5", q.Total.String())
	assert.Equal(t, "FLAT100", q.PromoCode)
}

func TestOrderService_SoldByWeight(t *testing.T) {
	f := newOrderFixture()

	q, err := f.svc.Quote(context.Background(), checkout(CartItem{ProductID: "loaf", Quantity: 1, WeightKg: decimal.NewNullDecimal(decimal.RequireFromString("1.5"))}))
	require.NoError(t, err)
	assert.Equal(t, "300", q.Subtotal.String())

	_, err = f.svc.Quote(context.Background(), checkout(CartItem{ProductID: "loaf", Quantity: 1}))
	assert.ErrorIs(t, err, utils.ErrInvalidWeight)

	_, err = f.svc.Quote(context.Background(), checkout(CartItem{ProductID: "loaf", Quantity: 1, WeightKg: decimal.NewNullDecimal(decimal.NewFromInt(3))}))
	assert.ErrorIs(t, err, utils.ErrInvalidWeight)
}

func TestOrderService_CheckoutRejections(t *testing.T) {
	past := checkout(CartItem{ProductID: "cake", Quantity: 1})
	past.Schedule.Date = "2026-10-15"
	online := checkout(CartItem{ProductID: "cake", Quantity: 1})
	online.PaymentMethod = models.PaymentOnline
	noAddress := checkout(CartItem{ProductID: "cake", Quantity: 1})
	noAddress.Customer.Address = ""
	pickupFar := checkout(CartItem{ProductID: "far", Quantity: 1})
	pickupFar.Schedule.Method = models.DeliveryPickup

	tests := []struct {
		name    string
		in      CheckoutInput
		wantErr error
		invalid string
	}{
		{name: "empty_cart", in: checkout(), wantErr: utils.ErrEmptyCart},
		{name: "unknown_product", in: checkout(CartItem{ProductID: "ghost", Quantity: 1}), wantErr: utils.ErrProductUnavailable},
		{name: "pincode_not_served", in: checkout(CartItem{ProductID: "far", Quantity: 1}), wantErr: utils.ErrPincodeNotServed},
		{name: "online_payment", in: online, wantErr: utils.ErrPaymentUnavailable},
		{name: "zero_quantity", in: checkout(CartItem{ProductID: "cake", Quantity: 0}), invalid: "quantity"},
		{name: "date_in_past", in: past, invalid: "date"},
		{name: "delivery_without_address", in: noAddress, invalid: "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			_, err := f.svc.Submit(context.Background(), tt.in)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.invalid != "" {
				var verr *validation.Error
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.Has(tt.invalid), verr.Error())
			}
			f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}

	t.Run("pickup_ignores_pincode", func(t *testing.T) {
		f := newOrderFixture()
		q, err := f.svc.Quote(context.Background(), pickupFar)
		require.NoError(t, err)
		assert.True(t, q.DeliveryFee.IsZero())
	})
}

func TestOrderService_ExpiredPromo(t *testing.T) {
	f := newOrderFixture()
	ended := orderNow.Add(-time.Hour)

	in := checkout(CartItem{ProductID: "cake", Quantity: 1})
	in.PromoCode = "old"
	f.promos.On("GetByCode", mock.Anything, "old").Return(&models.PromoCode{
		Code: "OLD", Type: models.PromoPercent, Value: decimal.NewFromInt(10), IsActive: true, ValidTo: &ended,
	}, nil)

	_, err := f.svc.Quote(context.Background(), in)
	assert.ErrorIs(t, err, pricing.ErrPromoExpired)
}

func pendingOrder(status models.OrderStatus) *models.Order {
	uid := "user-1"
	return &models.Order{
		ID:            "o1",
		OrderRef:      "ORD-20261016-ABC123",
		UserID:        &uid,
		Status:        status,
		TrackingSteps: models.NewTrackingSteps().Advance(status),
	}
}

func TestOrderService_UpdateStatusForward(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(pendingOrder(models.OrderPending), nil)
	f.orders.On("UpdateStatus", mock.Anything, "o1", models.OrderPending, models.OrderProcessing, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, events.TopicOrderStatusChanged, "o1", mock.Anything).Return(nil)

	o, err := f.svc.UpdateStatus(context.Background(), "o1", models.OrderProcessing)
	require.NoError(t, err)

	assert.Equal(t, models.OrderProcessing, o.Status)
	assert.True(t, o.TrackingSteps[models.StepConfirmed])
	assert.True(t, o.TrackingSteps[models.StepBaking])
	assert.False(t, o.TrackingSteps[models.StepDelivered])
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, "user-1", f.notifications.created[0].UserID)
	assert.Equal(t, models.NotificationOrderStatus, f.notifications.created[0].Type)
	assert.Equal(t, 1, f.notifier.statusChanges)
}

func TestOrderService_UpdateStatusRejectsBackwards(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(pendingOrder(models.OrderCompleted), nil)

	_, err := f.svc.UpdateStatus(context.Background(), "o1", models.OrderProcessing)

	assert.ErrorIs(t, err, utils.ErrInvalidStatusTransition)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatusSameIsNoop(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(pendingOrder(models.OrderProcessing), nil)

	o, err := f.svc.UpdateStatus(context.Background(), "o1", models.OrderProcessing)

	require.NoError(t, err)
	assert.Equal(t, models.OrderProcessing, o.Status)
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifications.created)
}

func TestOrderService_UpdateTracking(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("GetByID", mock.Anything, "o1").Return(pendingOrder(models.OrderProcessing), nil)
	f.orders.On("UpdateTracking", mock.Anything, "o1", mock.Anything).Return(nil)

	o, err := f.svc.UpdateTracking(context.Background(), "o1", map[string]bool{models.StepOutForDelivery: true})
	require.NoError(t, err)
	assert.True(t, o.TrackingSteps[models.StepOutForDelivery])
	assert.True(t, o.TrackingSteps[models.StepBaking])
	assert.Equal(t, models.OrderProcessing, o.Status)

	_, err = f.svc.UpdateTracking(context.Background(), "o1", map[string]bool{"shipped": true})
	assert.ErrorIs(t, err, utils.ErrInvalidTrackingStep)
}

func TestOrderService_TrackRequiresMatchingPhone(t *testing.T) {
	f := newOrderFixture()
	o := pendingOrder(models.OrderPending)
	o.Phone = "+91 98765 43210"
	f.orders.On("GetByRef", mock.Anything, "ORD-20261016-ABC123").Return(o, nil)

	got, err := f.svc.Track(context.Background(), "ORD-20261016-ABC123", "919876543210")
	require.NoError(t, err)
	assert.Equal(t, "o1", got.ID)

	_, err = f.svc.Track(context.Background(), "ORD-20261016-ABC123", "9999999999")
	assert.ErrorIs(t, err, utils.ErrOrderNotFound)
}

func TestOrderService_StatsFillsMissingStatuses(t *testing.T) {
	f := newOrderFixture()
	f.orders.On("CountByStatus", mock.Anything).
		Return(map[models.OrderStatus]int{models.OrderPending: 3, models.OrderCompleted: 7}, nil)

	stats, err := f.svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 0, stats.ByStatus[models.OrderProcessing])
	assert.Len(t, stats.ByStatus, 4)
}
