package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/GTDGit/bakery_api/internal/events"
	"github.com/GTDGit/bakery_api/internal/metrics"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/pricing"
	"github.com/GTDGit/bakery_api/internal/repository"
	"github.com/GTDGit/bakery_api/internal/sse"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
	"github.com/GTDGit/bakery_api/pkg/whatsapp"
)

const dateLayout = "2006-01-02"

type orderStore interface {
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByRef(ctx context.Context, ref string) (*models.Order, error)
	List(ctx context.Context, f repository.OrderFilter) ([]models.Order, int, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error)
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, steps models.TrackingSteps) error
	UpdateTracking(ctx context.Context, id string, steps models.TrackingSteps) error
	CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error)
}

type productLookup interface {
	GetByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error)
}

type promoLookup interface {
	GetByCode(ctx context.Context, code string) (*models.PromoCode, error)
}

type notificationWriter interface {
	Create(ctx context.Context, n *models.Notification) error
}

// CartItem is one line of a checkout request.
type CartItem struct {
	ProductID string              `json:"productId" validate:"required"`
	Quantity  int                 `json:"quantity" validate:"min=1,max=100"`
	WeightKg  decimal.NullDecimal `json:"weightKg"`
	Message   string              `json:"message" validate:"max=200"`
}

// ScheduleInput is the requested delivery window. Date is YYYY-MM-DD.
type ScheduleInput struct {
	Method models.DeliveryMethod `json:"method" validate:"oneof=delivery pickup"`
	Date   string                `json:"date" validate:"required,datetime=2006-01-02"`
	Slot   string                `json:"slot"`
}

// CheckoutInput is the body of a quote or order submission.
type CheckoutInput struct {
	UserID        *string              `json:"-"`
	Customer      models.Customer      `json:"customer"`
	Schedule      ScheduleInput        `json:"schedule"`
	Items         []CartItem           `json:"items" validate:"dive"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" validate:"oneof=cod upi online"`
	PromoCode     string               `json:"promoCode"`
	Notes         string               `json:"notes" validate:"max=500"`
}

// Quote is a priced cart that has not been submitted.
type Quote struct {
	Items     []models.OrderItem `json:"items"`
	Currency  models.Currency    `json:"currency"`
	PromoCode string             `json:"promoCode,omitempty"`
	pricing.Breakdown
}

// SubmitResult is returned to the customer after checkout.
type SubmitResult struct {
	OrderID     string        `json:"orderId"`
	Order       *models.Order `json:"order"`
	WhatsAppURL string        `json:"whatsappUrl"`
}

// OrderService prices carts, records orders and drives their lifecycle.
type OrderService struct {
	orders        orderStore
	products      productLookup
	promos        promoLookup
	notifications notificationWriter
	settings      settingsProvider
	publisher     events.Publisher
	notifier      sse.Notifier
	now           func() time.Time
}

func NewOrderService(
	orders orderStore,
	products productLookup,
	promos promoLookup,
	notifications notificationWriter,
	settings settingsProvider,
	publisher events.Publisher,
	notifier sse.Notifier,
) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if notifier == nil {
		notifier = &sse.NopNotifier{}
	}
	return &OrderService{
		orders:        orders,
		products:      products,
		promos:        promos,
		notifications: notifications,
		settings:      settings,
		publisher:     publisher,
		notifier:      notifier,
		now:           time.Now,
	}
}

type pricedCart struct {
	quote    Quote
	settings models.StoreSettings
	promo    *models.PromoCode
	date     time.Time
}

// Quote prices a cart with the current product prices and store settings.
func (s *OrderService) Quote(ctx context.Context, in CheckoutInput) (*Quote, error) {
	cart, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}
	return &cart.quote, nil
}

// Submit prices the cart and records the order. Item prices are copied into
// the order so later product edits do not change it. The result carries the
// WhatsApp link the customer uses to confirm with the bakery.
func (s *OrderService) Submit(ctx context.Context, in CheckoutInput) (*SubmitResult, error) {
	cart, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}
	if in.PaymentMethod == models.PaymentOnline {
		return nil, utils.ErrPaymentUnavailable
	}

	now := s.now()
	ref, err := utils.NewOrderRef(now)
	if err != nil {
		return nil, err
	}

	q := cart.quote
	o := &models.Order{
		ID:       utils.NewID(),
		OrderRef: ref,
		UserID:   in.UserID,
		Customer: in.Customer,
		DeliverySchedule: models.DeliverySchedule{
			Method: in.Schedule.Method,
			Date:   cart.date,
			Slot:   in.Schedule.Slot,
		},
		PaymentMethod: in.PaymentMethod,
		Currency:      q.Currency,
		Subtotal:      q.Subtotal,
		Discount:      q.Discount,
		Tax:           q.Tax,
		DeliveryFee:   q.DeliveryFee,
		PackagingFee:  q.PackagingFee,
		Total:         q.Total,
		Status:        models.OrderPending,
		TrackingSteps: models.NewTrackingSteps(),
		Notes:         strings.TrimSpace(in.Notes),
		Items:         q.Items,
	}
	if cart.promo != nil {
		o.PromoCode = &cart.promo.Code
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(string(o.PaymentMethod), string(o.Method)).Inc()
	log.Info().
		Str("order_id", o.ID).
		Str("order_ref", o.OrderRef).
		Int("items", len(o.Items)).
		Str("total", o.Total.StringFixed(2)).
		Msg("order placed")

	s.notifier.NotifyOrderCreated(o)
	userID := ""
	if o.UserID != nil {
		userID = *o.UserID
	}
	if err := s.publisher.Publish(ctx, events.TopicOrderCreated, o.ID, events.OrderCreated{
		OrderID:   o.ID,
		OrderRef:  o.OrderRef,
		UserID:    userID,
		Total:     o.Total,
		Currency:  string(o.Currency),
		Items:     len(o.Items),
		Delivery:  string(o.Method),
		CreatedAt: o.CreatedAt,
	}); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("failed to publish order.created")
	}

	return &SubmitResult{
		OrderID:     o.ID,
		Order:       o,
		WhatsAppURL: whatsapp.BuildURL(cart.settings.WhatsAppNumber, whatsapp.ComposeOrderMessage(orderMessage(o, cart.settings))),
	}, nil
}

func (s *OrderService) price(ctx context.Context, in CheckoutInput) (*pricedCart, error) {
	if len(in.Items) == 0 {
		return nil, utils.ErrEmptyCart
	}
	if err := validation.ValidateStruct(in); err != nil {
		return nil, err
	}
	if in.Schedule.Method == models.DeliveryHome {
		if strings.TrimSpace(in.Customer.Address) == "" {
			return nil, invalid("address", "required", "address is required for delivery")
		}
		if strings.TrimSpace(in.Customer.Pincode) == "" {
			return nil, invalid("pincode", "required", "pincode is required for delivery")
		}
	}

	now := s.now()
	date, err := time.Parse(dateLayout, in.Schedule.Date)
	if err != nil {
		return nil, invalid("date", "datetime", "date must be YYYY-MM-DD")
	}
	if date.Before(truncateDay(now)) {
		return nil, invalid("date", "future", "date must not be in the past")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if len(settings.DeliverySlots) > 0 && in.Schedule.Slot != "" && !slices.Contains(settings.DeliverySlots, in.Schedule.Slot) {
		return nil, invalid("slot", "oneof", "slot must be one of "+strings.Join(settings.DeliverySlots, ", "))
	}

	ids := make([]string, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	lines := make([]pricing.Line, 0, len(in.Items))
	for _, it := range in.Items {
		p, ok := products[it.ProductID]
		if !ok || !p.IsActive {
			return nil, fmt.Errorf("%w: %s", utils.ErrProductUnavailable, it.ProductID)
		}
		if p.Currency != settings.Currency {
			return nil, fmt.Errorf("%w: %s is priced in %s", utils.ErrProductUnavailable, p.Name, p.Currency)
		}
		if !p.AvailableOn(date) {
			return nil, fmt.Errorf("%w: %s is not available on %s", utils.ErrProductUnavailable, p.Name, in.Schedule.Date)
		}
		if !p.InStock(it.Quantity) {
			return nil, fmt.Errorf("%w: %s", utils.ErrOutOfStock, p.Name)
		}
		if in.Schedule.Method == models.DeliveryHome && !p.DeliversTo(in.Customer.Pincode, settings.DefaultPincodes) {
			return nil, fmt.Errorf("%w: %s does not deliver to %s", utils.ErrPincodeNotServed, p.Name, in.Customer.Pincode)
		}

		weight := decimal.NullDecimal{}
		if p.SoldByWeight() {
			if !it.WeightKg.Valid || !it.WeightKg.Decimal.IsPositive() || !p.AcceptsWeight(it.WeightKg.Decimal) {
				return nil, fmt.Errorf("%w: %s", utils.ErrInvalidWeight, p.Name)
			}
			weight = it.WeightKg
		}

		line := pricing.Line{UnitPrice: p.FinalPrice(), Quantity: it.Quantity, WeightKg: weight}
		lines = append(lines, line)
		items = append(items, models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.PrimaryImage(),
			UnitPrice: line.UnitPrice,
			BasePrice: p.BasePrice,
			Discount:  p.Discount,
			Quantity:  it.Quantity,
			WeightKg:  weight,
			Message:   strings.TrimSpace(it.Message),
			LineTotal: line.Total(),
		})
	}

	var promo *models.PromoCode
	if code := strings.TrimSpace(in.PromoCode); code != "" {
		promo, err = s.promos.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
	}

	b, err := pricing.Quote(lines, pricing.SettingsFrom(settings), promo, in.Schedule.Method, now)
	if err != nil {
		return nil, err
	}

	q := Quote{Items: items, Currency: settings.Currency, Breakdown: b}
	if promo != nil {
		q.PromoCode = promo.Code
	}
	return &pricedCart{quote: q, settings: settings, promo: promo, date: date}, nil
}

// Get returns an order by id.
func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// Track returns an order by reference for the public tracking page. The
// phone number must match the one given at checkout.
func (s *OrderService) Track(ctx context.Context, ref, phone string) (*models.Order, error) {
	o, err := s.orders.GetByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if digits(o.Phone) != digits(phone) {
		return nil, utils.ErrOrderNotFound
	}
	return o, nil
}

// ListAdmin lists orders for the back office.
func (s *OrderService) ListAdmin(ctx context.Context, f repository.OrderFilter) ([]models.Order, int, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, invalid("status", "oneof", "status must be one of pending, processing, completed, cancelled")
	}
	return s.orders.List(ctx, f)
}

// OrderStats is the dashboard summary of orders per status.
type OrderStats struct {
	Total    int                        `json:"total"`
	ByStatus map[models.OrderStatus]int `json:"byStatus"`
}

// Stats counts orders per status. Statuses without orders report zero.
func (s *OrderService) Stats(ctx context.Context) (*OrderStats, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := &OrderStats{ByStatus: map[models.OrderStatus]int{
		models.OrderPending:    0,
		models.OrderProcessing: 0,
		models.OrderCompleted:  0,
		models.OrderCancelled:  0,
	}}
	for status, n := range counts {
		out.ByStatus[status] = n
		out.Total += n
	}
	return out, nil
}

// ListMine lists the orders placed by a signed-in customer.
func (s *OrderService) ListMine(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	return s.orders.ListByUser(ctx, userID, page, limit)
}

// UpdateStatus moves an order to status. Orders only move forward or to
// cancelled; the tracking steps implied by the new status are marked
// reached. Setting the current status again changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, invalid("status", "oneof", "status must be one of pending, processing, completed, cancelled")
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == status {
		return o, nil
	}
	if !o.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", utils.ErrInvalidStatusTransition, o.Status, status)
	}

	from := o.Status
	steps := o.TrackingSteps.Advance(status)
	if err := s.orders.UpdateStatus(ctx, id, from, status, steps); err != nil {
		return nil, err
	}
	o.Status = status
	o.TrackingSteps = steps
	o.UpdatedAt = s.now()

	metrics.OrderStatusChanges.WithLabelValues(string(status)).Inc()
	log.Info().Str("order_id", id).Str("from", string(from)).Str("to", string(status)).Msg("order status changed")

	s.notifier.NotifyOrderStatusChanged(o)
	if err := s.publisher.Publish(ctx, events.TopicOrderStatusChanged, o.ID, events.OrderStatusChanged{
		OrderID:   o.ID,
		OrderRef:  o.OrderRef,
		From:      string(from),
		To:        string(status),
		ChangedAt: o.UpdatedAt,
	}); err != nil {
		log.Error().Err(err).Str("order_id", id).Msg("failed to publish order.status_changed")
	}
	s.notifyCustomer(ctx, o)
	return o, nil
}

// UpdateTracking overrides individual tracking steps without touching the
// status. Unknown step keys are rejected.
func (s *OrderService) UpdateTracking(ctx context.Context, id string, changes map[string]bool) (*models.Order, error) {
	for k := range changes {
		if !models.IsStep(k) {
			return nil, fmt.Errorf("%w: %s", utils.ErrInvalidTrackingStep, k)
		}
	}
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	steps := make(models.TrackingSteps, len(models.TrackingStepOrder))
	for _, k := range models.TrackingStepOrder {
		steps[k] = o.TrackingSteps[k]
	}
	for k, v := range changes {
		steps[k] = v
	}
	if err := s.orders.UpdateTracking(ctx, id, steps); err != nil {
		return nil, err
	}
	o.TrackingSteps = steps
	s.notifier.NotifyOrderStatusChanged(o)
	return o, nil
}

func (s *OrderService) notifyCustomer(ctx context.Context, o *models.Order) {
	if o.UserID == nil || s.notifications == nil {
		return
	}
	n := &models.Notification{
		ID:      utils.NewID(),
		UserID:  *o.UserID,
		Type:    models.NotificationOrderStatus,
		Title:   "Order " + o.OrderRef,
		Message: statusMessage(o.Status),
		Link:    "/orders/" + o.OrderRef,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		log.Error().Err(err).Str("order_id", o.ID).Msg("failed to notify customer of status change")
	}
}

func statusMessage(s models.OrderStatus) string {
	switch s {
	case models.OrderProcessing:
		return "Your order is confirmed and being baked."
	case models.OrderCompleted:
		return "Your order has been completed. Enjoy!"
	case models.OrderCancelled:
		return "Your order has been cancelled."
	}
	return "Your order has been received."
}

func orderMessage(o *models.Order, settings models.StoreSettings) whatsapp.OrderMessage {
	items := make([]whatsapp.Item, len(o.Items))
	for i, it := range o.Items {
		items[i] = whatsapp.Item{
			Name:      it.Name,
			Quantity:  it.Quantity,
			WeightKg:  it.WeightKg,
			LineTotal: it.LineTotal,
			Message:   it.Message,
		}
	}
	promo := ""
	if o.PromoCode != nil {
		promo = *o.PromoCode
	}
	return whatsapp.OrderMessage{
		StoreName:      settings.StoreName,
		OrderRef:       o.OrderRef,
		CustomerName:   o.Name,
		Phone:          o.Phone,
		Items:          items,
		CurrencySymbol: o.Currency.Symbol(),
		Subtotal:       o.Subtotal,
		Discount:       o.Discount,
		PromoCode:      promo,
		DeliveryFee:    o.DeliveryFee,
		PackagingFee:   o.PackagingFee,
		Tax:            o.Tax,
		Total:          o.Total,
		Pickup:         o.Method == models.DeliveryPickup,
		DeliveryDate:   o.Date,
		DeliverySlot:   o.Slot,
		Address:        joinNonEmpty(", ", o.Address, o.City),
		Pincode:        o.Pincode,
		PaymentLabel:   paymentLabel(o.PaymentMethod),
		Notes:          o.Notes,
	}
}

func paymentLabel(m models.PaymentMethod) string {
	switch m {
	case models.PaymentUPI:
		return "UPI"
	case models.PaymentOnline:
		return "Online"
	}
	return "Cash on Delivery"
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
